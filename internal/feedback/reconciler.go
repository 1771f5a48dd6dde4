package feedback

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// PredictionPair 기록된 예측과 실제 판매 한 쌍
type PredictionPair struct {
	StoreID    string    `json:"store_id"`
	ItemID     string    `json:"item_id"`
	CategoryID string    `json:"category_id"`
	TargetDate time.Time `json:"target_date"`
	Predicted  float64   `json:"predicted"` // 보정 후 일 수요 예측
	OrderQty   int       `json:"order_qty"`
	OrderUnit  int       `json:"order_unit"`
	Actual     float64   `json:"actual"` // 해당일 실제 판매
}

// Outcome 예측 1건의 검증 결과
type Outcome struct {
	PredictionPair
	Error        float64   `json:"error"`     // actual - predicted
	AbsError     float64   `json:"abs_error"` // |error|
	APE          *float64  `json:"ape"`       // |error| / actual (actual 0 이면 nil)
	Hit          bool      `json:"hit"`       // |error| <= 발주 단위
	ReconciledAt time.Time `json:"reconciled_at"`
}

// AccuracyReport 정확도 집계
type AccuracyReport struct {
	Key         string    `json:"key"` // ALL 또는 카테고리 코드
	SampleCount int       `json:"sample_count"`
	MAE         float64   `json:"mae"`
	MAPE        *float64  `json:"mape"` // 실제 판매 > 0 인 건만
	HitRate     float64   `json:"hit_rate"`
	MeanError   float64   `json:"mean_error"` // 편향 (+ = 과소 예측)
	UpdatedAt   time.Time `json:"updated_at"`
}

// OutcomeStore 예측 로그/검증 결과 저장소
type OutcomeStore interface {
	GetUnreconciled(ctx context.Context, from, to time.Time) ([]PredictionPair, error)
	SaveOutcomes(ctx context.Context, outcomes []Outcome) error
}

// Reconciler 예측 vs 실제 검증기
// ⭐ SSOT: 발주 예측 정확도 계산 규칙
type Reconciler struct {
	store OutcomeStore
	now   func() time.Time
	log   zerolog.Logger
}

// NewReconciler 새 검증기 생성
func NewReconciler(store OutcomeStore, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		store: store,
		now:   time.Now,
		log:   log.With().Str("component", "feedback.reconciler").Logger(),
	}
}

// Reconcile from~to 기간 중 실제 판매가 확정된 미검증 예측을 검증하고 저장
func (r *Reconciler) Reconcile(ctx context.Context, from, to time.Time) ([]Outcome, error) {
	pairs, err := r.store.GetUnreconciled(ctx, from, to)
	if err != nil {
		return nil, err
	}

	now := r.now()
	outcomes := make([]Outcome, 0, len(pairs))
	for _, p := range pairs {
		o := Evaluate(p)
		o.ReconciledAt = now
		outcomes = append(outcomes, o)
	}

	if len(outcomes) > 0 {
		if err := r.store.SaveOutcomes(ctx, outcomes); err != nil {
			return nil, err
		}
	}

	r.log.Info().
		Time("from", from).
		Time("to", to).
		Int("reconciled", len(outcomes)).
		Msg("reconciliation completed")

	return outcomes, nil
}

// Evaluate 예측 1건 오차 계산
func Evaluate(p PredictionPair) Outcome {
	unit := p.OrderUnit
	if unit < 1 {
		unit = 1
	}

	diff := p.Actual - p.Predicted
	o := Outcome{
		PredictionPair: p,
		Error:          diff,
		AbsError:       math.Abs(diff),
	}
	if p.Actual > 0 {
		ape := o.AbsError / p.Actual
		o.APE = &ape
	}
	o.Hit = o.AbsError <= float64(unit)
	return o
}

// Summarize 전체 정확도
func Summarize(key string, outcomes []Outcome) *AccuracyReport {
	if len(outcomes) == 0 {
		return nil
	}

	var sumAbs, sumErr, sumAPE float64
	var hits, apeCount int
	for _, o := range outcomes {
		sumAbs += o.AbsError
		sumErr += o.Error
		if o.Hit {
			hits++
		}
		if o.APE != nil {
			sumAPE += *o.APE
			apeCount++
		}
	}

	n := float64(len(outcomes))
	report := &AccuracyReport{
		Key:         key,
		SampleCount: len(outcomes),
		MAE:         sumAbs / n,
		HitRate:     float64(hits) / n,
		MeanError:   sumErr / n,
		UpdatedAt:   time.Now(),
	}
	if apeCount > 0 {
		mape := sumAPE / float64(apeCount)
		report.MAPE = &mape
	}
	return report
}

// SummarizeByCategory 카테고리별 정확도 (키 순)
func SummarizeByCategory(outcomes []Outcome) []*AccuracyReport {
	groups := make(map[string][]Outcome)
	for _, o := range outcomes {
		groups[o.CategoryID] = append(groups[o.CategoryID], o)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	reports := make([]*AccuracyReport, 0, len(keys))
	for _, k := range keys {
		reports = append(reports, Summarize(k, groups[k]))
	}
	return reports
}
