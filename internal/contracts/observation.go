package contracts

import "time"

// DateLayout 일자 포맷 (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// Observation 하루치 단품 판매 기록
// ⭐ SSOT: 외부 저장소 → 엔진 일별 관측치 전달 (엔진은 읽기만 함)
type Observation struct {
	ItemID        string        `json:"item_id"`
	Date          time.Time     `json:"date"`
	Sold          float64       `json:"sold"`           // 판매 수량
	Received      float64       `json:"received"`       // 입고 수량
	Stock         float64       `json:"stock"`          // 마감 재고
	Disposed      float64       `json:"disposed"`       // 폐기 수량
	CategoryID    string        `json:"category_id"`    // 중분류 코드
	PromotionKind PromotionKind `json:"promotion_kind"` // 행사 없음이면 ""
}

// OnPromotion 해당일 행사 진행 여부
func (o Observation) OnPromotion() bool {
	return o.PromotionKind != PromotionNone
}

// ItemInfo 상품 마스터 정보
type ItemInfo struct {
	ItemID        string `json:"item_id"`
	Name          string `json:"name"`
	CategoryID    string `json:"category_id"`
	ShelfLifeDays int    `json:"shelf_life_days"` // 0 = 미확인
	OrderUnit     int    `json:"order_unit"`      // 발주 입수 단위 (0 = 미설정 → 기본 단위, 1 = 낱개)
}

// Inventory 발주 시점 재고 현황
type Inventory struct {
	ItemID     string  `json:"item_id"`
	Stock      float64 `json:"stock"`
	PendingQty float64 `json:"pending_qty"`
}

// Day 시각 정보를 버린 자정 기준 날짜
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween from → to 사이의 달력 일수 (to가 이전이면 음수)
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}
