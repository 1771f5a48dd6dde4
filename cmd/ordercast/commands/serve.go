package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wonny/ordercast/internal/api"
	"github.com/wonny/ordercast/internal/api/handlers"
	"github.com/wonny/ordercast/internal/scheduler"
)

var (
	servePort          string
	serveWithScheduler bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                 - Health check
  GET  /metrics                - Prometheus metrics (METRICS_ENABLED)
  GET  /api/predict/{item}     - 단품 발주 예측 (JSON)
  GET  /api/explain/{item}     - 계산 근거 (text)
  GET  /api/jobs               - 스케줄 작업 통계
  POST /api/jobs/{name}/run    - 작업 즉시 실행

Query parameters (predict/explain):
  store, date (YYYY-MM-DD), stock, pending, category

Example:
  go run ./cmd/ordercast --demo serve
  go run ./cmd/ordercast serve --port 8080 --with-scheduler`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default PORT)")
	serveCmd.Flags().BoolVar(&serveWithScheduler, "with-scheduler", false, "run the daily scheduler in the same process")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ordercast API Server ===")

	a, err := newApp(commandContext(cmd))
	if err != nil {
		return err
	}
	defer a.close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	// nil 포인터를 인터페이스에 넣지 않도록 분기
	var dbChecker handlers.DatabaseChecker
	if a.db != nil {
		dbChecker = a.db
	}

	var jobCtl handlers.JobController
	var sched *scheduler.Scheduler
	if serveWithScheduler {
		sched, err = a.initScheduler()
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		jobCtl = sched
	}

	h := api.Handlers{
		Prediction: handlers.NewPredictionHandler(a.runner, a.defaultStore(), a.log),
		Ops:        handlers.NewOpsHandler(dbChecker, jobCtl, a.log),
	}
	if a.registry != nil {
		h.Metrics = promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
	}

	server := api.New(a.cfg, a.log, api.NewRouter(h, a.log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	if sched != nil {
		sched.Start()
	}

	a.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Printf("   Default store: %s\n", a.defaultStore())
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		if sched != nil {
			sched.Stop()
		}
		return err
	}

	a.log.Info("Shutting down server...")
	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
