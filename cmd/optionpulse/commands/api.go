package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/optionpulse/internal/api"
	"github.com/wonny/optionpulse/internal/api/handlers"
	"github.com/wonny/optionpulse/internal/api/ws"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버와 WebSocket 스트림을 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 저장된 시그널 조회 엔드포인트 제공
- --with-scheduler 시 5분 주기 파생 작업 실행

Endpoints:
  GET  /health                       - Health check
  GET  /api/signals/{symbol}/latest  - 최신 시그널 (?expiry=)
  GET  /api/signals/{symbol}         - 시그널 이력 (?expiry=&since=&limit=&offset=)
  POST /api/signals/{symbol}/run     - 즉시 파생 실행
  GET  /ws/signals                   - 실시간 스트림 (?symbol=)

Example:
  go run ./cmd/optionpulse api
  go run ./cmd/optionpulse api --port 8090 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본값: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "스케줄러를 함께 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== OptionPulse API Server ===")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// WebSocket hub receives every saved record
	hub := ws.NewHub(a.log)
	go hub.Run(ctx)
	a.service.WithBroadcaster(hub)

	deps := map[string]handlers.Pinger{"postgres": a.db}
	if a.redis.Enabled() {
		deps["redis"] = a.redis
	}
	health := handlers.NewHealthHandler(deps)
	signals := handlers.NewSignalHandler(a.repo, a.service, a.cache, a.log)
	router := api.NewRouter(health, signals, hub, a.log)
	server := api.New(a.cfg, a.log, router)

	if apiWithScheduler {
		sched, err := a.newScheduler()
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Fprintf(out, "   Symbols: %v\n", a.symbols.Names())
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
