package contracts

import "time"

// DataQuality 예측에 사용된 데이터 품질 등급
type DataQuality string

const (
	QualityHigh   DataQuality = "high"
	QualityMedium DataQuality = "medium"
	QualityLow    DataQuality = "low"
	QualityNoData DataQuality = "no_data"
)

// LagConfidence lag 피처 신뢰도
type LagConfidence string

const (
	LagConfidenceHigh   LagConfidence = "high"
	LagConfidenceMedium LagConfidence = "medium"
	LagConfidenceLow    LagConfidence = "low"
)

// TrendLabel 추세 구간
type TrendLabel string

const (
	TrendStrongUp   TrendLabel = "strong_up"
	TrendUp         TrendLabel = "up"
	TrendStable     TrendLabel = "stable"
	TrendDown       TrendLabel = "down"
	TrendStrongDown TrendLabel = "strong_down"
)

// LagOffsets lag 피처 오프셋 (일)
var LagOffsets = []int{1, 7, 14, 28, 365}

// RollingWindows 이동 통계 구간 (일)
var RollingWindows = []int{7, 14, 28, 90}

// RollingStats 이동 구간 통계
type RollingStats struct {
	Window int     `json:"window"`
	Days   int     `json:"days"` // 실제 사용된 일수 (window 이하)
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// FeatureSet 요청 시점마다 다시 계산되는 시계열 피처
// nil 포인터 = 값 없음 (null)
type FeatureSet struct {
	ItemID     string    `json:"item_id"`
	TargetDate time.Time `json:"target_date"`
	NoData     bool      `json:"no_data"`

	// Lag
	Lags           map[int]*float64 `json:"lags"`
	SameWeekdayAvg *float64         `json:"same_weekday_avg"`
	SameWeekdayN   int              `json:"same_weekday_n"`
	WoWChange      *float64         `json:"wow_change"` // 전주 대비 변화율
	LagConfidence  LagConfidence    `json:"lag_confidence"`

	// Rolling
	Rolling    map[int]RollingStats `json:"rolling"`
	EWM7       *float64             `json:"ewm_7"`
	EWM14      *float64             `json:"ewm_14"`
	CV         *float64             `json:"cv"` // 28일 변동계수
	Trend      *float64             `json:"trend"`
	TrendLabel TrendLabel           `json:"trend_label"`

	// 관측 일수
	HistoryDays  int `json:"history_days"`  // 첫 관측일 ~ 기준일 전일
	ObservedDays int `json:"observed_days"` // 28일 구간 내 실제 기록 일수

	// 행사/재고 보조 피처
	NonPromoAvg    *float64                  `json:"non_promo_avg"`
	PromoAvg       *float64                  `json:"promo_avg"`
	PromoDaysLast7 int                       `json:"promo_days_last_7"`
	PromotionLift  map[PromotionKind]float64 `json:"promotion_lift"`
	Turnover7      *float64                  `json:"turnover_7"`    // 7일 판매 / 평균 재고
	WasteRate30    *float64                  `json:"waste_rate_30"` // 30일 폐기 / (판매 + 폐기)
	FullCaseDays30 int                       `json:"full_case_days_30"`
	StockoutDays30 int                       `json:"stockout_days_30"`
}

// Mean 지정 구간 평균 (구간이 없으면 0)
func (f *FeatureSet) Mean(window int) float64 {
	if f == nil {
		return 0
	}
	if s, ok := f.Rolling[window]; ok {
		return s.Mean
	}
	return 0
}

// DailyAverage 안전재고 계산용 평활 일평균 (EWM7 → 7일 평균)
func (f *FeatureSet) DailyAverage() float64 {
	if f == nil {
		return 0
	}
	if f.EWM7 != nil {
		return *f.EWM7
	}
	return f.Mean(7)
}

// Lag 오프셋 lag 값 (없으면 nil)
func (f *FeatureSet) Lag(offset int) *float64 {
	if f == nil || f.Lags == nil {
		return nil
	}
	return f.Lags[offset]
}

// Float64 값 포인터 생성 헬퍼
func Float64(v float64) *float64 {
	return &v
}

// Value nil-safe 역참조 (nil이면 fallback)
func Value(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
