package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/ordercast/internal/feedback"
	"github.com/wonny/ordercast/internal/scheduler"
	"github.com/wonny/ordercast/internal/scheduler/jobs"
)

// accuracyLookbackDays 판매 집계 지연을 감안해 다시 훑는 일수
const accuracyLookbackDays = 3

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `일일 발주 예측 스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/ordercast scheduler start
  go run ./cmd/ordercast scheduler list
  go run ./cmd/ordercast --demo scheduler run order_prediction`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- order_prediction: 매일 06:00 (SCHEDULE_CRON, 전 점포 발주량 예측)
- accuracy_reconcile: 매일 05:30 (ACCURACY_CRON, PostgreSQL 사용 시에만)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler 앱 구성요소로 작업 등록
func (a *app) initScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	predictionJob := jobs.NewOrderPredictionJob(a.runner, a.stores, a.cfg.Scheduler.PredictionCron, a.log)
	if err := sched.AddJob(predictionJob); err != nil {
		return nil, err
	}

	// 정확도 검증은 예측 로그가 PostgreSQL 에 있을 때만
	if a.db != nil {
		zl := a.log.Zerolog()
		reconciler := feedback.NewReconciler(feedback.NewRepository(a.db.Pool, zl), zl)
		accuracyJob := jobs.NewAccuracyReconcileJob(reconciler, accuracyLookbackDays, a.cfg.Scheduler.AccuracyCron, a.log)
		if err := sched.AddJob(accuracyJob); err != nil {
			return nil, err
		}
	}

	return sched, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ordercast Scheduler ===")

	a, err := newApp(commandContext(cmd))
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := a.initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Printf("  - %-20s next %s\n", jobName, next.Format(time.RFC3339))
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(commandContext(cmd))
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := a.initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %-20s %s\n", jobName, stats[jobName].Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	a, err := newApp(commandContext(cmd))
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := a.initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer sched.Stop()

	result, err := sched.RunJobSync(jobName)
	if err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Job %s completed in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}
