package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/feedback"
	"github.com/wonny/ordercast/pkg/logger"
)

// OutcomeReconciler 예측/실판매 대조기 (feedback.Reconciler)
type OutcomeReconciler interface {
	Reconcile(ctx context.Context, from, to time.Time) ([]feedback.Outcome, error)
}

// AccuracyReconcileJob 확정된 판매로 지난 예측 검증
// 판매 집계가 늦게 들어오는 날이 있어 lookbackDays 만큼 다시 훑음
type AccuracyReconcileJob struct {
	reconciler   OutcomeReconciler
	lookbackDays int
	schedule     string
	now          func() time.Time
	logger       *logger.Logger
}

// NewAccuracyReconcileJob creates a new accuracy job
func NewAccuracyReconcileJob(r OutcomeReconciler, lookbackDays int, schedule string, log *logger.Logger) *AccuracyReconcileJob {
	if lookbackDays < 1 {
		lookbackDays = 1
	}
	return &AccuracyReconcileJob{
		reconciler:   r,
		lookbackDays: lookbackDays,
		schedule:     schedule,
		now:          time.Now,
		logger:       log,
	}
}

// Name returns the job name
func (j *AccuracyReconcileJob) Name() string {
	return "accuracy_reconcile"
}

// Schedule returns the cron schedule (기본 매일 05:30)
func (j *AccuracyReconcileJob) Schedule() string {
	return j.schedule
}

// Window 검증 구간 [오늘-lookback, 어제]
func (j *AccuracyReconcileJob) Window() (from, to time.Time) {
	today := contracts.Day(j.now())
	return today.AddDate(0, 0, -j.lookbackDays), today.AddDate(0, 0, -1)
}

// Run 구간 내 미검증 예측 대조 후 카테고리별 요약 로그
func (j *AccuracyReconcileJob) Run(ctx context.Context) error {
	from, to := j.Window()

	outcomes, err := j.reconciler.Reconcile(ctx, from, to)
	if err != nil {
		return fmt.Errorf("accuracy reconcile: %w", err)
	}

	if overall := feedback.Summarize("ALL", outcomes); overall != nil {
		j.logger.WithFields(map[string]interface{}{
			"from":     from.Format("2006-01-02"),
			"to":       to.Format("2006-01-02"),
			"samples":  overall.SampleCount,
			"mae":      overall.MAE,
			"hit_rate": overall.HitRate,
		}).Info("Accuracy reconciled")
	}
	for _, report := range feedback.SummarizeByCategory(outcomes) {
		j.logger.WithFields(map[string]interface{}{
			"category": report.Key,
			"samples":  report.SampleCount,
			"mae":      report.MAE,
			"hit_rate": report.HitRate,
		}).Debug("Category accuracy")
	}

	return nil
}
