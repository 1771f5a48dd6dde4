package commands

import (
	"time"

	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/store"
)

const demoStoreID = "DEMO"

func today() time.Time {
	return contracts.Day(time.Now())
}

// demoItem 데모 상품과 판매 패턴
type demoItem struct {
	info  contracts.ItemInfo
	base  float64
	peaks map[time.Weekday]float64 // 요일별 추가 판매
	stock float64
}

// newDemoStore 기준일 직전 120일 판매 이력을 가진 메모리 점포
// 결정적 패턴이라 같은 날짜면 항상 같은 예측이 나옴
func newDemoStore(target time.Time) *store.MemoryStore {
	items := []demoItem{
		{
			info:  contracts.ItemInfo{ItemID: "8801", Name: "canned beer 500ml", CategoryID: "049", ShelfLifeDays: 180, OrderUnit: 6},
			base:  8,
			peaks: map[time.Weekday]float64{time.Friday: 6, time.Saturday: 8},
			stock: 10,
		},
		{
			info:  contracts.ItemInfo{ItemID: "8802", Name: "cigarettes", CategoryID: "072", ShelfLifeDays: 365, OrderUnit: 10},
			base:  14,
			stock: 25,
		},
		{
			info:  contracts.ItemInfo{ItemID: "8803", Name: "cup ramen", CategoryID: "006", ShelfLifeDays: 150, OrderUnit: 1},
			base:  6,
			peaks: map[time.Weekday]float64{time.Sunday: 2},
			stock: 9,
		},
		{
			info:  contracts.ItemInfo{ItemID: "8804", Name: "lunch box", CategoryID: "001", ShelfLifeDays: 1, OrderUnit: 1},
			base:  5,
			peaks: map[time.Weekday]float64{time.Monday: 1, time.Tuesday: 1, time.Wednesday: 1, time.Thursday: 1, time.Friday: 1},
			stock: 1,
		},
		{
			info:  contracts.ItemInfo{ItemID: "8805", Name: "sports drink", CategoryID: "040", ShelfLifeDays: 240, OrderUnit: 1},
			base:  4,
			stock: 12,
		},
		{
			info:  contracts.ItemInfo{ItemID: "8806", Name: "potato chips", CategoryID: "015", ShelfLifeDays: 120, OrderUnit: 1},
			base:  3,
			peaks: map[time.Weekday]float64{time.Friday: 2, time.Saturday: 2},
			stock: 4,
		},
	}

	m := store.NewMemoryStore()
	target = contracts.Day(target)

	// 8805: 1+1 행사 진행 중, 이틀 뒤 종료
	promoStart := target.AddDate(0, 0, -12)
	promoEnd := target.AddDate(0, 0, 2)
	m.AddPromotion(contracts.PromotionWindow{
		ItemID: "8805", Kind: contracts.PromotionBuyOneGetOne,
		Start: promoStart, End: promoEnd, Active: true,
	})

	for idx, it := range items {
		m.AddItem(it.info)
		m.SetInventory(contracts.Inventory{ItemID: it.info.ItemID, Stock: it.stock})

		for i := 120; i >= 1; i-- {
			d := target.AddDate(0, 0, -i)
			// 0, 1, 2, 1 반복으로 약한 변동
			sold := it.base + it.peaks[d.Weekday()] + float64((i+idx)%4%3)
			o := contracts.Observation{
				ItemID:     it.info.ItemID,
				Date:       d,
				Sold:       sold,
				Received:   sold,
				Stock:      it.stock,
				CategoryID: it.info.CategoryID,
			}
			if it.info.ItemID == "8805" && !d.Before(promoStart) {
				o.Sold *= 1.8
				o.PromotionKind = contracts.PromotionBuyOneGetOne
			}
			if it.info.ShelfLifeDays <= 1 && i%5 == 0 {
				o.Disposed = 1
			}
			m.AddObservations(o)
		}
	}

	// 맥주 판매가 늘면 과자도 같이 팔림
	m.AddRule(contracts.AssociationRule{
		Level: contracts.AssociationCategory, TriggerKey: "049", BoostedKey: "015",
		Support: 0.08, Confidence: 0.45, Lift: 1.6, Correlation: 0.52, SampleSize: 120,
	})
	m.SetTriggerRatio(contracts.AssociationCategory, "049", 1.3)

	return m
}
