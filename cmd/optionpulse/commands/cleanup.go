package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/optionpulse/internal/scheduler/jobs"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "오래된 시그널 레코드 삭제",
	Long: `보존 기간이 지난 option_chain_metrics 레코드를 즉시 삭제합니다.

Example:
  go run ./cmd/optionpulse cleanup
  go run ./cmd/optionpulse cleanup --retention 72h`,
	RunE: runCleanup,
}

var cleanupRetention time.Duration

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().DurationVar(&cleanupRetention, "retention", 0, "보존 기간 (기본값: ENGINE_RETENTION)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	retention := a.cfg.Engine.Retention
	if cleanupRetention > 0 {
		retention = cleanupRetention
	}

	job := jobs.NewRetentionJob(a.repo, retention, a.cfg.Engine.RetentionSchedule, a.log)
	if err := job.Run(cmd.Context()); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Removed records older than %s", retention))
	return nil
}
