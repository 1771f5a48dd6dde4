package category

import (
	"time"

	"github.com/wonny/ordercast/internal/contracts"
)

// Input 안전재고 계산 입력
type Input struct {
	CategoryID    string
	ItemID        string
	DailyAverage  float64 // 평활 일평균 (EWM7 → 7일 평균)
	ShelfLifeDays int     // 0 = 미확인
	CurrentStock  float64
	PendingQty    float64
	TargetDate    time.Time
	Features      *contracts.FeatureSet // 보조 빈도 지표 (nil 허용)
}

// Result 안전재고 계산 결과
// WeekdayCoefficient/MaxStock 이 nil 이면 호출자 기본값 사용
type Result struct {
	SafetyStock        float64
	WeekdayCoefficient *float64
	MaxStock           *float64
	SkipOrder          bool
	SkipReason         string
	Detail             map[string]float64 // 카테고리별 진단값
}

// Strategy 카테고리 계열 하나의 안전재고 규칙
// 계산 불가 상황에서도 에러를 내지 않고 카테고리 기본값으로 대체한다
type Strategy interface {
	Name() string
	Kind() Kind
	Profile() *Profile
	Matches(categoryID string) bool
	Calculate(in Input) Result
}

// base 공통 구현 (매칭, 요일 계수, 상한)
type base struct {
	profile Profile
	members map[string]struct{}
}

func newBase(p Profile) base {
	members := make(map[string]struct{}, len(p.Categories))
	for _, c := range p.Categories {
		members[c] = struct{}{}
	}
	return base{profile: p, members: members}
}

func (b *base) Name() string      { return b.profile.Name }
func (b *base) Kind() Kind        { return b.profile.Kind }
func (b *base) Profile() *Profile { return &b.profile }

func (b *base) Matches(categoryID string) bool {
	_, ok := b.members[categoryID]
	return ok
}

// finish 요일 계수와 최대 재고를 결과에 채움
func (b *base) finish(in Input, res Result) Result {
	if len(b.profile.WeekdayCoefficients) == 7 {
		coef := b.profile.WeekdayCoefficients[in.TargetDate.Weekday()]
		res.WeekdayCoefficient = &coef
	}

	switch {
	case b.profile.MaxStockUnits > 0:
		res.MaxStock = contracts.Float64(b.profile.MaxStockUnits)
	case b.profile.MaxStockDays > 0:
		res.MaxStock = contracts.Float64(nonNegative(in.DailyAverage) * b.profile.MaxStockDays)
	}

	if res.SafetyStock < 0 {
		res.SafetyStock = 0
	}
	return res
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// newStrategy 프로파일 태그로 전략 구현 선택
func newStrategy(p Profile) Strategy {
	switch p.Kind {
	case KindAlcohol:
		return &alcoholStrategy{base: newBase(p)}
	case KindTobacco:
		return &tobaccoStrategy{base: newBase(p)}
	case KindOrderCalendar:
		return &orderCalendarStrategy{base: newBase(p)}
	case KindShelfLife:
		return &shelfLifeStrategy{base: newBase(p)}
	case KindSteady:
		return &steadyStrategy{base: newBase(p)}
	case KindNecessity:
		return &necessityStrategy{base: newBase(p)}
	default:
		return &defaultStrategy{base: newBase(p)}
	}
}
