package contracts

import "time"

// PromotionKind 행사 유형
type PromotionKind string

const (
	PromotionNone PromotionKind = ""
	// PromotionBuyOneGetOne 1+1 행사
	PromotionBuyOneGetOne PromotionKind = "1+1"
	// PromotionBuyTwoGetOne 2+1 행사
	PromotionBuyTwoGetOne PromotionKind = "2+1"
)

// Valid 알려진 행사 유형 여부
func (k PromotionKind) Valid() bool {
	return k == PromotionBuyOneGetOne || k == PromotionBuyTwoGetOne
}

// PromotionWindow 단품 행사 기간
type PromotionWindow struct {
	ItemID string        `json:"item_id"`
	Kind   PromotionKind `json:"kind"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"` // 종료일 포함
	Active bool          `json:"active"`
}

// Contains 날짜가 행사 기간(시작~종료 포함)에 속하는지
func (w *PromotionWindow) Contains(date time.Time) bool {
	if w == nil || !w.Active {
		return false
	}
	d := Day(date)
	return !d.Before(Day(w.Start)) && !d.After(Day(w.End))
}

// DaysToEnd 기준일부터 종료일까지 남은 일수
func (w *PromotionWindow) DaysToEnd(today time.Time) int {
	return DaysBetween(today, w.End)
}

// DaysToStart 기준일부터 시작일까지 남은 일수
func (w *PromotionWindow) DaysToStart(today time.Time) int {
	return DaysBetween(today, w.Start)
}

// PromotionWindows 기준일에 가장 가까운 현재/다음 행사
type PromotionWindows struct {
	Current *PromotionWindow `json:"current,omitempty"`
	Next    *PromotionWindow `json:"next,omitempty"`
}

// Empty 행사 정보가 전혀 없는지
func (p PromotionWindows) Empty() bool {
	return p.Current == nil && p.Next == nil
}

// Contains 현재 또는 다음 행사 기간에 속하는 날짜인지
func (p PromotionWindows) Contains(date time.Time) bool {
	return p.Current.Contains(date) || p.Next.Contains(date)
}
