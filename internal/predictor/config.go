package predictor

import (
	"time"

	"github.com/wonny/ordercast/internal/contracts"
)

// BlendWeights 4개 신호 가중치 (7일 단순평균, 7일 EWM, 동일 요일, 28일 평균)
type BlendWeights struct {
	SMA7    float64
	EWM7    float64
	Weekday float64
	Mean28  float64
}

// TurnoverBand 유통기한 구간별 회전율 판정 기준
type TurnoverBand struct {
	MaxShelfLife int     // 0 = 상한 없음
	Fast         float64 // 이 이상이면 빠른 회전
	Slow         float64 // 미만이면 느린 회전
}

// Config 예측 해석기 설정
type Config struct {
	HighQualityDays   int // 28일 구간 관측 일수 (high 조건)
	MediumQualityDays int

	Weights map[contracts.DataQuality]BlendWeights

	// 변동성 배수 상한
	MaxVolatilityMultiplier float64

	// 추세 배수
	StrongUpMultiplier   float64
	UpMultiplier         float64
	DownMultiplier       float64
	StrongDownMultiplier float64

	// 회전율 보정
	TurnoverBands        []TurnoverBand
	FastMultiplier       float64
	FastLowStockMult     float64 // 재고 일수 < 1
	SlowMultiplier       float64
	SlowExcessMultiplier float64 // 재고 일수 > 2 × 기준
	MinTurnoverMult      float64
	MaxTurnoverMult      float64
	ExcessStockMaxDays   int // 과잉 재고 판정 기준 일수 상한

	DefaultOrderUnit int
}

// DefaultConfig 기본 설정
func DefaultConfig() Config {
	return Config{
		HighQualityDays:   14,
		MediumQualityDays: 7,
		Weights: map[contracts.DataQuality]BlendWeights{
			contracts.QualityHigh:   {SMA7: 0.15, EWM7: 0.35, Weekday: 0.30, Mean28: 0.20},
			contracts.QualityMedium: {SMA7: 0.35, EWM7: 0.30, Weekday: 0.20, Mean28: 0.15},
			contracts.QualityLow:    {SMA7: 0.70, EWM7: 0.20, Weekday: 0.10, Mean28: 0},
		},
		MaxVolatilityMultiplier: 2.5,

		StrongUpMultiplier:   1.15,
		UpMultiplier:         1.08,
		DownMultiplier:       0.92,
		StrongDownMultiplier: 0.85,

		TurnoverBands: []TurnoverBand{
			{MaxShelfLife: 7, Fast: 5, Slow: 1},
			{MaxShelfLife: 30, Fast: 3, Slow: 0.7},
			{MaxShelfLife: 0, Fast: 2, Slow: 0.3},
		},
		FastMultiplier:       1.1,
		FastLowStockMult:     1.2,
		SlowMultiplier:       0.8,
		SlowExcessMultiplier: 0.6,
		MinTurnoverMult:      0.5,
		MaxTurnoverMult:      1.2,
		ExcessStockMaxDays:   7,

		DefaultOrderUnit: 1,
	}
}

// Metrics 예측 지표 기록 (nil 이면 기록하지 않음)
type Metrics interface {
	ObservePrediction(result *contracts.PredictionResult, elapsed time.Duration)
	ObserveError(kind string)
}
