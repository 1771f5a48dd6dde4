package promotion

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/ordercast/internal/contracts"
)

// State 기준일 기준 행사 상태 (호출마다 다시 판정, 저장하지 않음)
type State string

const (
	StateNone         State = "none"
	StateEndingSoon   State = "ending_soon"
	StateStartingSoon State = "starting_soon"
	StateActive       State = "active"
)

// Successor 종료 임박 행사의 후속 행사 유형
type Successor string

const (
	SuccessorNone      Successor = "none"
	SuccessorSame      Successor = "same"
	SuccessorDifferent Successor = "different"
)

// MultiplierSource 행사 배수 출처
type MultiplierSource string

const (
	SourceMeasured MultiplierSource = "measured"
	SourceCategory MultiplierSource = "category"
	SourceFallback MultiplierSource = "fallback"
)

// Config 행사 보정 설정
type Config struct {
	TransitionDays           int                                 // 종료/시작 임박 판정 일수
	EndingFactors            map[int]float64                     // 종료 임박(후속 없음) 남은 일수별 배수
	StartingFactors          map[int]float64                     // 시작 임박 남은 일수별 배수 (0일 = 실측 배수)
	DifferentSuccessorFactor float64                             // 다른 유형 후속 행사
	NormalStockDays          float64                             // 행사 종료 후 정상 재고 목표 일수
	ReflectedPromoDays       int                                 // 최근 7일 중 행사일이 이 이상이면 이미 반영된 것으로 간주
	FallbackMultipliers      map[contracts.PromotionKind]float64 // 카테고리 기본값도 없을 때
}

// DefaultConfig 기본 설정
func DefaultConfig() Config {
	return Config{
		TransitionDays: 3,
		EndingFactors: map[int]float64{
			3: 0.5,
			2: 0.3,
			1: 0.1,
			0: 0.0,
		},
		StartingFactors: map[int]float64{
			3: 1.2,
			2: 1.5,
			1: 2.0,
		},
		DifferentSuccessorFactor: 0.8,
		NormalStockDays:          2,
		ReflectedPromoDays:       4,
		FallbackMultipliers: map[contracts.PromotionKind]float64{
			contracts.PromotionBuyOneGetOne: 2.5,
			contracts.PromotionBuyTwoGetOne: 1.8,
		},
	}
}

// Input 행사 보정 입력
type Input struct {
	Today            time.Time
	Windows          contracts.PromotionWindows
	Features         *contracts.FeatureSet
	CategoryDefaults map[contracts.PromotionKind]float64 // 카테고리 기본 행사 배수 (nil 허용)
	CurrentStock     float64
	PendingQty       float64
}

// Adjustment 행사 보정 결과
type Adjustment struct {
	State            State                   `json:"state"`
	Factor           float64                 `json:"factor"`
	Days             int                     `json:"days"` // 종료 또는 시작까지 남은 일수
	Kind             contracts.PromotionKind `json:"kind,omitempty"`
	Successor        Successor               `json:"successor,omitempty"`
	Multiplier       float64                 `json:"multiplier,omitempty"`
	MultiplierSource MultiplierSource        `json:"multiplier_source,omitempty"`
	SellThrough      *float64                `json:"sell_through,omitempty"` // 종료 임박(후속 없음) 소진 수량
	Label            string                  `json:"label"`
}

// Neutral 보정 없음
func Neutral() Adjustment {
	return Adjustment{State: StateNone, Factor: 1.0, Label: "none"}
}

// Apply 기본 발주 필요량에 보정 적용
// 종료 임박(후속 없음)이면 배수 적용값과 소진 수량 중 작은 값
func (a Adjustment) Apply(base float64) float64 {
	scaled := base * a.Factor
	if a.SellThrough != nil && *a.SellThrough < scaled {
		return *a.SellThrough
	}
	return scaled
}

// Adjuster 행사 상태 판정 및 배수 계산
// ⭐ SSOT: 행사 시작/종료 전이 규칙은 여기서만
type Adjuster struct {
	config Config
	log    zerolog.Logger
}

// NewAdjuster 새 보정기 생성
func NewAdjuster(log zerolog.Logger) *Adjuster {
	return NewAdjusterWithConfig(DefaultConfig(), log)
}

// NewAdjusterWithConfig 커스텀 설정으로 보정기 생성
func NewAdjusterWithConfig(config Config, log zerolog.Logger) *Adjuster {
	return &Adjuster{
		config: config,
		log:    log.With().Str("component", "promotion.adjuster").Logger(),
	}
}

// Adjust 기준일과 가장 가까운 행사 기간으로 상태/배수 결정
// 행사 정보가 없으면 배수 1.0
func (a *Adjuster) Adjust(in Input) Adjustment {
	today := contracts.Day(in.Today)
	cur := activeWindow(in.Windows.Current)
	next := activeWindow(in.Windows.Next)

	if cur != nil && cur.Contains(today) {
		// 행사 첫날은 기간이 짧아도 시작 배수 우선
		if cur.DaysToStart(today) == 0 {
			return a.starting(in, cur, 0)
		}
		daysToEnd := cur.DaysToEnd(today)
		if daysToEnd >= 0 && daysToEnd <= a.config.TransitionDays {
			return a.ending(in, cur, next, daysToEnd)
		}
		return a.active(in, cur)
	}

	if next != nil {
		daysToStart := next.DaysToStart(today)
		if daysToStart >= 0 && daysToStart <= a.config.TransitionDays {
			return a.starting(in, next, daysToStart)
		}
	}

	return Neutral()
}

func activeWindow(w *contracts.PromotionWindow) *contracts.PromotionWindow {
	if w == nil || !w.Active {
		return nil
	}
	return w
}

// ending 종료 임박
func (a *Adjuster) ending(in Input, cur, next *contracts.PromotionWindow, days int) Adjustment {
	adj := Adjustment{
		State:     StateEndingSoon,
		Days:      days,
		Kind:      cur.Kind,
		Successor: successorOf(cur, next),
	}

	switch adj.Successor {
	case SuccessorSame:
		adj.Factor = 1.0
		adj.Label = "promo_continuous"
	case SuccessorDifferent:
		adj.Factor = a.config.DifferentSuccessorFactor
		adj.Label = "promo_switch"
	default:
		adj.Factor = a.endingFactor(days)
		adj.Label = "promo_ending"
		sell := a.sellThrough(in, days)
		adj.SellThrough = &sell
	}

	return adj
}

// endingFactor 남은 일수별 축소 배수 (표에 없으면 가장 가까운 하위 일수)
func (a *Adjuster) endingFactor(days int) float64 {
	for d := days; d >= 0; d-- {
		if f, ok := a.config.EndingFactors[d]; ok {
			return f
		}
	}
	return 0
}

// sellThrough 행사 평균 × 남은 일수 + 정상 평균 × NormalStockDays - 재고 - 미입고 (하한 0)
func (a *Adjuster) sellThrough(in Input, days int) float64 {
	daily := in.Features.DailyAverage()
	promoAvg, normalAvg := daily, daily
	if fs := in.Features; fs != nil {
		promoAvg = contracts.Value(fs.PromoAvg, daily)
		normalAvg = contracts.Value(fs.NonPromoAvg, daily)
	}

	qty := promoAvg*float64(days) + normalAvg*a.config.NormalStockDays - in.CurrentStock - in.PendingQty
	return math.Max(0, qty)
}

// successorOf 현재 행사 종료 다음날까지 이어지는 후속 행사
func successorOf(cur, next *contracts.PromotionWindow) Successor {
	if next == nil {
		return SuccessorNone
	}
	if contracts.DaysBetween(cur.End, next.Start) > 1 {
		return SuccessorNone
	}
	if next.Kind == cur.Kind {
		return SuccessorSame
	}
	return SuccessorDifferent
}

// starting 시작 임박 (0일 = 행사 첫날 → 실측 배수 그대로)
func (a *Adjuster) starting(in Input, w *contracts.PromotionWindow, days int) Adjustment {
	adj := Adjustment{
		State: StateStartingSoon,
		Days:  days,
		Kind:  w.Kind,
		Label: "promo_starting",
	}

	if f, ok := a.config.StartingFactors[days]; ok && days > 0 {
		adj.Factor = f
		return adj
	}

	adj.Multiplier, adj.MultiplierSource = a.Multiplier(in.Features, in.CategoryDefaults, w.Kind)
	adj.Factor = adj.Multiplier
	return adj
}

// active 행사 진행 중 (전이 임박 아님)
func (a *Adjuster) active(in Input, w *contracts.PromotionWindow) Adjustment {
	adj := Adjustment{
		State: StateActive,
		Days:  w.DaysToEnd(in.Today),
		Kind:  w.Kind,
	}
	adj.Multiplier, adj.MultiplierSource = a.Multiplier(in.Features, in.CategoryDefaults, w.Kind)

	// 최근 판매가 이미 행사 수요를 반영하고 있으면 중복 적용하지 않음
	if in.Features != nil && in.Features.PromoDaysLast7 >= a.config.ReflectedPromoDays {
		adj.Factor = 1.0
		adj.Label = "promo_reflected"
		return adj
	}

	adj.Factor = adj.Multiplier
	adj.Label = "promo_active"
	return adj
}

// Multiplier 행사 유형별 배수: 매장 실측 → 카테고리 기본값 → 전체 기본값
func (a *Adjuster) Multiplier(fs *contracts.FeatureSet, categoryDefaults map[contracts.PromotionKind]float64, kind contracts.PromotionKind) (float64, MultiplierSource) {
	if fs != nil {
		if m, ok := fs.PromotionLift[kind]; ok && m > 0 {
			return math.Max(1.0, m), SourceMeasured
		}
	}
	if m, ok := categoryDefaults[kind]; ok && m > 0 {
		return m, SourceCategory
	}
	if m, ok := a.config.FallbackMultipliers[kind]; ok {
		return m, SourceFallback
	}

	a.log.Warn().Str("kind", string(kind)).Msg("unknown promotion kind, no multiplier")
	return 1.0, SourceFallback
}
