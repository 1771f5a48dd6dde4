package contracts

import (
	"strings"
	"time"
)

// PredictRequest 단품 발주량 예측 요청
type PredictRequest struct {
	StoreID      string    `json:"store_id"`
	ItemID       string    `json:"item_id"`
	CategoryID   string    `json:"category_id"`
	TargetDate   time.Time `json:"target_date"`
	CurrentStock float64   `json:"current_stock"`
	PendingQty   float64   `json:"pending_qty"` // 발주 후 미입고 수량
}

// Confidence 결과 신뢰도 라벨
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Adjustment 적용된 배수 한 건 (explain 용)
type Adjustment struct {
	Stage  string  `json:"stage"`  // weekday, volatility, trend, turnover, waste, promotion, association, cap
	Factor float64 `json:"factor"` // 적용 배수 (cap 은 상한 수량)
	Label  string  `json:"label"`  // 구간/상태 라벨
}

// PredictionResult 단품 1건의 최종 예측 결과
// ⭐ SSOT: 엔진 → 스케줄러/대시보드/정확도 추적 전달. 생성 후 변경하지 않음
type PredictionResult struct {
	StoreID    string    `json:"store_id"`
	ItemID     string    `json:"item_id"`
	CategoryID string    `json:"category_id"`
	TargetDate time.Time `json:"target_date"`
	Strategy   string    `json:"strategy"` // 선택된 카테고리 전략

	RawPrediction      float64 `json:"raw_prediction"`      // 7일 단순 평균
	BlendedPrediction  float64 `json:"blended_prediction"`  // 품질 등급별 가중 블렌딩
	WeekdayCoefficient float64 `json:"weekday_coefficient"` // 적용된 요일 계수
	WeekdayAdjusted    float64 `json:"weekday_adjusted"`    // 블렌딩 × 요일 계수
	AdjustedPrediction float64 `json:"adjusted_prediction"` // 추세/회전율/폐기율 보정 후

	SafetyStock  float64 `json:"safety_stock"`
	CurrentStock float64 `json:"current_stock"`
	PendingQty   float64 `json:"pending_qty"`
	BaseOrderQty float64 `json:"base_order_qty"` // 행사/연관 보정 전 필요 수량
	OrderQty     int     `json:"order_qty"`      // 최종 발주 수량 (발주 단위 올림)
	OrderUnit    int     `json:"order_unit"`

	VolatilityMultiplier float64 `json:"volatility_multiplier"`
	TrendMultiplier      float64 `json:"trend_multiplier"`
	TurnoverMultiplier   float64 `json:"turnover_multiplier"`
	WasteMultiplier      float64 `json:"waste_multiplier"`
	PromotionFactor      float64 `json:"promotion_factor"`
	AssociationBoost     float64 `json:"association_boost"`
	PromotionState       string  `json:"promotion_state"`

	Quality     DataQuality  `json:"quality"`
	Confidence  Confidence   `json:"confidence"`
	ModelPath   string       `json:"model_path"` // 예: blend_high+promo_ending+assoc
	Adjustments []Adjustment `json:"adjustments"`
	Defaults    []string     `json:"defaults,omitempty"` // 기본값으로 대체된 신호
	SkipReason  string       `json:"skip_reason,omitempty"`

	StrategyDetail map[string]float64 `json:"strategy_detail,omitempty"` // 카테고리 전략 진단값
}

// AddAdjustment 적용 배수 기록
func (r *PredictionResult) AddAdjustment(stage string, factor float64, label string) {
	r.Adjustments = append(r.Adjustments, Adjustment{Stage: stage, Factor: factor, Label: label})
}

// AddDefault 기본값으로 대체된 신호 기록
func (r *PredictionResult) AddDefault(signal string) {
	for _, d := range r.Defaults {
		if d == signal {
			return
		}
	}
	r.Defaults = append(r.Defaults, signal)
}

// PathParts ModelPath 구성 요소
func (r *PredictionResult) PathParts() []string {
	if r.ModelPath == "" {
		return nil
	}
	return strings.Split(r.ModelPath, "+")
}

// OrderDate 결과의 일자 문자열
func (r *PredictionResult) OrderDate() string {
	return r.TargetDate.Format(DateLayout)
}
