package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/optionpulse/internal/pipeline"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [symbol]",
	Short: "시그널 1회 파생",
	Long: `옵션 체인을 수집하고 시그널을 파생하여 저장합니다.

symbol을 생략하면 symbols.yaml의 모든 심볼을 실행합니다.

Example:
  go run ./cmd/optionpulse run
  go run ./cmd/optionpulse run NIFTY
  go run ./cmd/optionpulse run BANKNIFTY --timeout 2m`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSignals,
}

var runTimeout time.Duration

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runTimeout, "timeout", 90*time.Second, "전체 실행 제한 시간")
}

func runSignals(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		res, err := a.service.Run(ctx, strings.ToUpper(args[0]))
		if res != nil {
			PrintRunResult(out, res)
		}
		if err != nil {
			return fmt.Errorf("run %s: %w", args[0], err)
		}
		return nil
	}

	results, err := a.service.RunAll(ctx)
	printAll(out, results)
	if err != nil {
		PrintError(cmd.ErrOrStderr(), err.Error())
		return err
	}

	PrintSuccess(out, fmt.Sprintf("%d symbols processed", len(results)))
	return nil
}

func printAll(out io.Writer, results []*pipeline.RunResult) {
	for _, res := range results {
		PrintRunResult(out, res)
	}
}
