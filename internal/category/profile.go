package category

import (
	"fmt"
	"time"

	"github.com/wonny/ordercast/internal/contracts"
)

// Kind 전략 유형 (태그)
type Kind string

const (
	KindAlcohol       Kind = "alcohol"        // 맥주/소주/주류 일반
	KindTobacco       Kind = "tobacco"        // 담배
	KindOrderCalendar Kind = "order_calendar" // 라면/과자 (발주 가능 요일)
	KindShelfLife     Kind = "shelf_life"     // 신선식품/디저트/즉석식품
	KindSteady        Kind = "steady"         // 음료/냉동
	KindNecessity     Kind = "necessity"      // 생활용품/잡화
	KindDefault       Kind = "default"        // 미분류 (반드시 마지막)
)

// ShelfLifeBucket 유통기한 구간별 안전재고 일수
type ShelfLifeBucket struct {
	MaxDays    int     `yaml:"max_days" json:"max_days" validate:"gte=0"` // 0 = 상한 없음
	SafetyDays float64 `yaml:"safety_days" json:"safety_days" validate:"gte=0,lte=30"`
}

// Profile 카테고리 계열 하나의 설정 레코드
// ⭐ SSOT: 카테고리별 안전재고/요일계수/상한 수치는 여기서만
type Profile struct {
	Name       string   `yaml:"name" json:"name" validate:"required"`
	Kind       Kind     `yaml:"kind" json:"kind" validate:"required,oneof=alcohol tobacco order_calendar shelf_life steady necessity default"`
	Categories []string `yaml:"categories" json:"categories" validate:"required_unless=Kind default,dive,required"`
	Food       bool     `yaml:"food" json:"food"` // 폐기율 보정 시 식품 곡선 사용

	// 안전재고 일수
	SafetyDays     float64 `yaml:"safety_days" json:"safety_days" validate:"gte=0,lte=30"`
	PeakSafetyDays float64 `yaml:"peak_safety_days" json:"peak_safety_days" validate:"gte=0,lte=30"`
	PeakWeekdays   []int   `yaml:"peak_weekdays" json:"peak_weekdays" validate:"omitempty,dive,gte=0,lte=6"`

	// 요일 계수 (time.Weekday 인덱스, 0=일). 비어 있으면 호출자 기본값 사용
	WeekdayCoefficients []float64 `yaml:"weekday_coefficients" json:"weekday_coefficients" validate:"omitempty,len=7,dive,gt=0,lte=3"`

	// 최대 재고 (0 = 상한 없음)
	MaxStockDays  float64 `yaml:"max_stock_days" json:"max_stock_days" validate:"gte=0"`
	MaxStockUnits float64 `yaml:"max_stock_units" json:"max_stock_units" validate:"gte=0"`

	// order_calendar
	OrderWeekdays []int `yaml:"order_weekdays" json:"order_weekdays" validate:"omitempty,dive,gte=0,lte=6"`

	// shelf_life
	ShelfLifeBuckets     []ShelfLifeBucket `yaml:"shelf_life_buckets" json:"shelf_life_buckets" validate:"omitempty,dive"`
	DefaultShelfLifeDays int               `yaml:"default_shelf_life_days" json:"default_shelf_life_days" validate:"gte=0"`
	TurnoverAdjust       bool              `yaml:"turnover_adjust" json:"turnover_adjust"`
	TurnoverHigh         float64           `yaml:"turnover_high" json:"turnover_high" default:"5" validate:"gte=0"`
	TurnoverLow          float64           `yaml:"turnover_low" json:"turnover_low" default:"1" validate:"gte=0"`
	TurnoverHighMult     float64           `yaml:"turnover_high_mult" json:"turnover_high_mult" default:"1.1" validate:"gt=0,lte=2"`
	TurnoverLowMult      float64           `yaml:"turnover_low_mult" json:"turnover_low_mult" default:"0.8" validate:"gt=0,lte=2"`

	// tobacco
	FullCaseWeight float64 `yaml:"full_case_weight" json:"full_case_weight" default:"2" validate:"gte=0"`
	StockoutWeight float64 `yaml:"stockout_weight" json:"stockout_weight" default:"3" validate:"gte=0"`
	FrequencyCap   float64 `yaml:"frequency_cap" json:"frequency_cap" default:"0.5" validate:"gte=0,lte=2"`

	// necessity
	MinDailyAverage float64 `yaml:"min_daily_average" json:"min_daily_average" default:"0.3" validate:"gte=0"`
	MinUnits        float64 `yaml:"min_units" json:"min_units" default:"1" validate:"gte=0"`

	// 행사 배수 기본값 (매장 실측값이 없을 때)
	PromotionMultipliers map[contracts.PromotionKind]float64 `yaml:"promotion_multipliers" json:"promotion_multipliers,omitempty" validate:"omitempty,dive,keys,oneof=1+1 2+1,endkeys,gt=0,lte=10"`
}

// IsPeak 기준일이 피크 요일인지
func (p *Profile) IsPeak(wd time.Weekday) bool {
	for _, d := range p.PeakWeekdays {
		if time.Weekday(d) == wd {
			return true
		}
	}
	return false
}

// CanOrder 발주 가능 요일인지 (목록이 비어 있으면 매일 가능)
func (p *Profile) CanOrder(wd time.Weekday) bool {
	if len(p.OrderWeekdays) == 0 {
		return true
	}
	for _, d := range p.OrderWeekdays {
		if time.Weekday(d) == wd {
			return true
		}
	}
	return false
}

// DaysToNextOrder 다음 발주 가능 요일까지 일수 (1~7)
func (p *Profile) DaysToNextOrder(wd time.Weekday) int {
	for gap := 1; gap <= 7; gap++ {
		if p.CanOrder(time.Weekday((int(wd) + gap) % 7)) {
			return gap
		}
	}
	return 1
}

// BucketSafetyDays 유통기한 구간 조회 (구간은 MaxDays 오름차순, 마지막은 상한 없음)
func (p *Profile) BucketSafetyDays(shelfLife int) float64 {
	for _, b := range p.ShelfLifeBuckets {
		if b.MaxDays == 0 || shelfLife <= b.MaxDays {
			return b.SafetyDays
		}
	}
	return p.SafetyDays
}

func codes(ids ...string) []string {
	return ids
}

func codeRange(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("%03d", i))
	}
	return out
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// DefaultProfiles 기본 카테고리 프로파일 (평가 순서 = 슬라이스 순서, default 마지막)
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:                "beer",
			Kind:                KindAlcohol,
			Categories:          codes("049"),
			SafetyDays:          2,
			PeakSafetyDays:      3,
			PeakWeekdays:        []int{int(time.Friday), int(time.Saturday)},
			WeekdayCoefficients: []float64{0.95, 0.85, 0.90, 0.95, 1.05, 1.35, 1.40},
			MaxStockDays:        7,
		},
		{
			Name:                "soju",
			Kind:                KindAlcohol,
			Categories:          codes("050"),
			SafetyDays:          2,
			PeakSafetyDays:      3,
			PeakWeekdays:        []int{int(time.Friday), int(time.Saturday)},
			WeekdayCoefficients: []float64{1.00, 0.90, 0.90, 0.95, 1.05, 1.25, 1.30},
			MaxStockDays:        7,
		},
		{
			Name:          "tobacco",
			Kind:          KindTobacco,
			Categories:    codes("072", "073"),
			SafetyDays:    2,
			MaxStockUnits: 30,
		},
		{
			Name:                 "ramen",
			Kind:                 KindOrderCalendar,
			Categories:           codes("006", "032"),
			OrderWeekdays:        []int{int(time.Monday), int(time.Wednesday), int(time.Friday)},
			PromotionMultipliers: map[contracts.PromotionKind]float64{contracts.PromotionBuyOneGetOne: 3.0, contracts.PromotionBuyTwoGetOne: 2.0},
		},
		{
			Name:                 "snack",
			Kind:                 KindOrderCalendar,
			Categories:           concat(codeRange(15, 20), codes("029", "030")),
			OrderWeekdays:        []int{int(time.Tuesday), int(time.Thursday), int(time.Saturday)},
			PromotionMultipliers: map[contracts.PromotionKind]float64{contracts.PromotionBuyOneGetOne: 3.0, contracts.PromotionBuyTwoGetOne: 2.0},
		},
		{
			Name:       "food",
			Kind:       KindShelfLife,
			Categories: concat(codeRange(1, 5), codes("012")),
			Food:       true,
			ShelfLifeBuckets: []ShelfLifeBucket{
				{MaxDays: 1, SafetyDays: 0.3},
				{MaxDays: 3, SafetyDays: 0.5},
				{MaxDays: 0, SafetyDays: 0.8},
			},
			DefaultShelfLifeDays: 1,
		},
		{
			Name:       "dessert",
			Kind:       KindShelfLife,
			Categories: codes("014"),
			Food:       true,
			ShelfLifeBuckets: []ShelfLifeBucket{
				{MaxDays: 15, SafetyDays: 1.0},
				{MaxDays: 30, SafetyDays: 1.5},
				{MaxDays: 0, SafetyDays: 2.0},
			},
			DefaultShelfLifeDays: 15,
			TurnoverAdjust:       true,
			PromotionMultipliers: map[contracts.PromotionKind]float64{contracts.PromotionBuyOneGetOne: 4.0, contracts.PromotionBuyTwoGetOne: 2.8},
		},
		{
			Name:       "instant_meal",
			Kind:       KindShelfLife,
			Categories: codes("027", "028", "031", "033", "035"),
			Food:       true,
			ShelfLifeBuckets: []ShelfLifeBucket{
				{MaxDays: 7, SafetyDays: 1.0},
				{MaxDays: 30, SafetyDays: 1.5},
				{MaxDays: 180, SafetyDays: 2.0},
				{MaxDays: 0, SafetyDays: 2.5},
			},
			DefaultShelfLifeDays: 30,
			TurnoverAdjust:       true,
			PromotionMultipliers: map[contracts.PromotionKind]float64{contracts.PromotionBuyOneGetOne: 2.0, contracts.PromotionBuyTwoGetOne: 1.5},
		},
		{
			Name:                 "beverage",
			Kind:                 KindSteady,
			Categories:           codeRange(39, 48),
			SafetyDays:           1.5,
			WeekdayCoefficients:  []float64{1.05, 0.95, 0.95, 0.95, 1.00, 1.10, 1.15},
			PromotionMultipliers: map[contracts.PromotionKind]float64{contracts.PromotionBuyOneGetOne: 3.5, contracts.PromotionBuyTwoGetOne: 2.5},
		},
		{
			Name:       "frozen",
			Kind:       KindSteady,
			Categories: codes("034"),
			SafetyDays: 2,
		},
		{
			Name:                "daily_necessity",
			Kind:                KindNecessity,
			Categories:          codes("036", "037", "056", "057", "086"),
			SafetyDays:          2,
			WeekdayCoefficients: []float64{1, 1, 1, 1, 1, 1, 1},
		},
		{
			Name:                "general_merchandise",
			Kind:                KindNecessity,
			Categories:          concat(codes("054", "055"), codeRange(58, 71)),
			SafetyDays:          1,
			WeekdayCoefficients: []float64{1, 1, 1, 1, 1, 1, 1},
		},
		{
			Name:       "alcohol_general",
			Kind:       KindAlcohol,
			Categories: codes("052", "053"),
			SafetyDays: 2,
			// 요일 계수/상한 없음 → 호출자 기본값
		},
		{
			Name:       "default",
			Kind:       KindDefault,
			SafetyDays: 1.5,
		},
	}
}
