package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/optionpulse/pkg/config"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "optionpulse",
	Short: "OptionPulse - 옵션 체인 시그널 엔진",
	Long: `OptionPulse Unified CLI

NSE 옵션 체인에서 PCR, 거래량/가격 액션, VIX 밴드, COA1 시그널을 파생합니다.

Usage:
  go run ./cmd/optionpulse [command]

Examples:
  go run ./cmd/optionpulse api
  go run ./cmd/optionpulse run NIFTY
  go run ./cmd/optionpulse scheduler start
  go run ./cmd/optionpulse test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig applies the global flags on top of the environment
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	switch env {
	case "":
	case "development", "staging", "production":
		cfg.Env = env
	default:
		return nil, fmt.Errorf("--env must be one of: development, staging, production")
	}
	if verbose {
		cfg.LogLevel = "debug"
		cfg.LogFormat = "console"
	}

	return cfg, nil
}
