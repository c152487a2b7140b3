package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/wonny/optionpulse/internal/contracts"
	"github.com/wonny/optionpulse/internal/pipeline"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "❌ %s\n", message)
}

func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintRunResult prints one symbol run as a table, one row per expiry
func PrintRunResult(w io.Writer, res *pipeline.RunResult) {
	fmt.Fprintln(w)
	PrintDoubleSeparator(w)
	fmt.Fprintf(w, "  %s  (run %s, %.2fs)\n", res.Symbol, res.RunID, res.Duration.Seconds())
	PrintSeparator(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EXPIRY\tATM\tPCR\tVOLUME\tPRICE\tOVERALL\tVIX BAND\tBULL/BEAR/SIDE\tCOA1")
	for _, rec := range res.Records {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%s\t%s\t%s\t%d-%d\t%s\t%s\n",
			rec.ExpiryDate,
			rec.ATMStrike,
			rec.PCR,
			rec.VolumeActionSignal,
			rec.PriceActionSignal,
			rec.OverallMarketSignal,
			rec.VIXLowerStrike,
			rec.VIXUpperStrike,
			formatBreakdown(rec.Breakdown),
			rec.COA1.Signal,
		)
	}
	_ = tw.Flush()

	if len(res.Failed) > 0 {
		PrintSeparator(w)
		expiries := make([]string, 0, len(res.Failed))
		for expiry := range res.Failed {
			expiries = append(expiries, expiry)
		}
		sort.Strings(expiries)
		for _, expiry := range expiries {
			PrintError(w, fmt.Sprintf("%s: %v", expiry, res.Failed[expiry]))
		}
	}
}

func formatBreakdown(b *contracts.SignalBreakdown) string {
	if b == nil {
		return "-"
	}
	return strings.Join([]string{
		fmt.Sprintf("%.0f%%", b.BullishPercentage),
		fmt.Sprintf("%.0f%%", b.BearishPercentage),
		fmt.Sprintf("%.0f%%", b.SidewaysPercentage),
	}, "/")
}

// maskPassword masks the password in the database URL for display
func maskPassword(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at < 0 || scheme < 0 {
		return url
	}
	creds := url[scheme+3 : at]
	colon := strings.Index(creds, ":")
	if colon < 0 {
		return url
	}
	return url[:scheme+3] + creds[:colon] + ":***" + url[at:]
}
