package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/ordercast/internal/runner"
	"github.com/wonny/ordercast/pkg/logger"
)

// PredictionRunner 점포 배치 실행기 (runner.Runner)
type PredictionRunner interface {
	Run(ctx context.Context, storeIDs []string, target time.Time) (*runner.Summary, error)
}

// OrderPredictionJob 매일 아침 전 점포 발주량 예측
type OrderPredictionJob struct {
	runner   PredictionRunner
	storeIDs []string
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewOrderPredictionJob creates a new order prediction job
func NewOrderPredictionJob(r PredictionRunner, storeIDs []string, schedule string, log *logger.Logger) *OrderPredictionJob {
	return &OrderPredictionJob{
		runner:   r,
		storeIDs: storeIDs,
		schedule: schedule,
		now:      time.Now,
		logger:   log,
	}
}

// Name returns the job name
func (j *OrderPredictionJob) Name() string {
	return "order_prediction"
}

// Schedule returns the cron schedule (기본 매일 06:00)
func (j *OrderPredictionJob) Schedule() string {
	return j.schedule
}

// Run 오늘 날짜 기준으로 전 점포 예측
func (j *OrderPredictionJob) Run(ctx context.Context) error {
	if len(j.storeIDs) == 0 {
		j.logger.Warn("No stores configured, skipping order prediction")
		return nil
	}

	summary, err := j.runner.Run(ctx, j.storeIDs, j.now())
	if summary != nil {
		j.logger.WithFields(map[string]interface{}{
			"run_id":    summary.RunID,
			"stores":    len(summary.Stores),
			"predicted": summary.Predicted(),
		}).Info("Order prediction finished")
	}
	if err != nil {
		return fmt.Errorf("order prediction: %w", err)
	}
	return nil
}
