package main

import (
	"os"

	"github.com/wonny/optionpulse/cmd/optionpulse/commands"
)

// main is the entry point for the optionpulse CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/optionpulse [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
