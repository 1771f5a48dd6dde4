package scheduler

import (
	"context"
	"time"
)

// historyLimit 작업별 보관 실행 이력 수
const historyLimit = 100

// Job 스케줄 작업 (발주 예측, 정확도 대조 등)
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name 작업 이름 (order_prediction, accuracy_reconcile)
	Name() string

	// Run 1회 실행. 점포 단위 실패는 작업 내부에서 집계하고, 전체 실패만 에러로 반환
	Run(ctx context.Context) error

	// Schedule 초 포함 6필드 cron
	// 예: "0 0 6 * * *" (발주 예측, 매일 06:00), "0 30 5 * * *" (정확도 대조, 05:30)
	Schedule() string
}

// JobResult 작업 1회 실행 결과 (재시도 포함)
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory 최근 실행 이력 (최대 historyLimit 건)
type JobHistory struct {
	Results []JobResult
}

// AddResult 결과 추가, 오래된 이력부터 버림
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Latest 최근 n건 (오래된 순)
func (h *JobHistory) Latest(n int) []JobResult {
	n = min(n, len(h.Results))
	if n <= 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// Failed 실패한 실행만
func (h *JobHistory) Failed() []JobResult {
	failed := make([]JobResult, 0)
	for _, r := range h.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// LastSuccess 마지막 성공 실행 시작 시각 (없으면 nil)
func (h *JobHistory) LastSuccess() *time.Time {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if h.Results[i].Success {
			t := h.Results[i].StartTime
			return &t
		}
	}
	return nil
}

// SuccessRate 성공률 (0.0 ~ 1.0, 이력 없으면 0)
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}
	return float64(len(h.Results)-len(h.Failed())) / float64(len(h.Results))
}
