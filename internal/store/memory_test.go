package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ordercast/internal/contracts"
)

var today = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return today.AddDate(0, 0, offset)
}

func TestMemoryStore_Observations(t *testing.T) {
	m := NewMemoryStore()
	m.AddObservations(
		contracts.Observation{ItemID: "A", Date: day(-1), Sold: 3},
		contracts.Observation{ItemID: "A", Date: day(-3), Sold: 1},
		contracts.Observation{ItemID: "A", Date: day(-2).Add(15 * time.Hour), Sold: 2},
	)
	// 같은 날짜는 덮어씀
	m.AddObservations(contracts.Observation{ItemID: "A", Date: day(-1), Sold: 4})

	obs, err := m.GetObservations(context.Background(), "A", day(-2), day(-1))
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, day(-2), obs[0].Date)
	assert.Equal(t, 2.0, obs[0].Sold)
	assert.Equal(t, 4.0, obs[1].Sold)

	obs, err = m.GetObservations(context.Background(), "missing", day(-10), day(0))
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestMemoryStore_Items(t *testing.T) {
	m := NewMemoryStore()
	m.AddItem(contracts.ItemInfo{ItemID: "B", CategoryID: "049"})
	m.AddItem(contracts.ItemInfo{ItemID: "A", CategoryID: "072"})

	item, err := m.GetItem(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "072", item.CategoryID)

	_, err = m.GetItem(context.Background(), "Z")
	assert.True(t, errors.Is(err, contracts.ErrItemNotFound))

	items, err := m.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].ItemID)
	assert.Equal(t, "B", items[1].ItemID)
}

func TestNearestWindows(t *testing.T) {
	windows := []contracts.PromotionWindow{
		{ItemID: "A", Kind: contracts.PromotionBuyOneGetOne, Start: day(-10), End: day(5), Active: true},
		{ItemID: "A", Kind: contracts.PromotionBuyTwoGetOne, Start: day(-2), End: day(2), Active: true},
		{ItemID: "A", Kind: contracts.PromotionBuyOneGetOne, Start: day(9), End: day(20), Active: true},
		{ItemID: "A", Kind: contracts.PromotionBuyTwoGetOne, Start: day(3), End: day(8), Active: true},
		{ItemID: "A", Kind: contracts.PromotionBuyOneGetOne, Start: day(1), End: day(4), Active: false},
	}

	got := nearestWindows(windows, today)
	require.NotNil(t, got.Current)
	require.NotNil(t, got.Next)
	assert.Equal(t, day(-2), got.Current.Start)
	assert.Equal(t, day(3), got.Next.Start)

	got = nearestWindows(nil, today)
	assert.True(t, got.Empty())
}

func TestMemoryStore_RulesFilteredByLift(t *testing.T) {
	m := NewMemoryStore()
	m.AddRule(contracts.AssociationRule{Level: contracts.AssociationCategory, TriggerKey: "049", BoostedKey: "015", Lift: 1.1})
	m.AddRule(contracts.AssociationRule{Level: contracts.AssociationCategory, TriggerKey: "049", BoostedKey: "016", Lift: 1.6})

	rules, err := m.GetAssociationRules(context.Background(), 1.2)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "016", rules[0].BoostedKey)
}

func TestMemoryStore_RecentVsBaselineRatio(t *testing.T) {
	m := NewMemoryStore()
	m.AddItem(contracts.ItemInfo{ItemID: "beer-1", CategoryID: "049"})
	for i := 1; i <= BaselineDays; i++ {
		sold := 2.0
		if i <= 3 {
			sold = 8
		}
		m.AddObservations(contracts.Observation{ItemID: "beer-1", Date: day(-i), Sold: sold})
	}
	ctx := context.Background()

	// 카테고리는 상품 마스터에서
	ratio, err := m.GetRecentVsBaselineRatio(ctx, contracts.AssociationCategory, "049", 3)
	require.NoError(t, err)
	require.NotNil(t, ratio)
	baseline := (57*2.0 + 3*8.0) / 60
	assert.InDelta(t, 8/baseline, *ratio, 1e-9)

	ratio, err = m.GetRecentVsBaselineRatio(ctx, contracts.AssociationItem, "beer-1", 3)
	require.NoError(t, err)
	require.NotNil(t, ratio)
	assert.InDelta(t, 8/baseline, *ratio, 1e-9)

	// 데이터 없음 → nil
	ratio, err = m.GetRecentVsBaselineRatio(ctx, contracts.AssociationCategory, "050", 3)
	require.NoError(t, err)
	assert.Nil(t, ratio)

	// 고정값 우선
	m.SetTriggerRatio(contracts.AssociationCategory, "049", 1.7)
	ratio, err = m.GetRecentVsBaselineRatio(ctx, contracts.AssociationCategory, "049", 3)
	require.NoError(t, err)
	assert.Equal(t, 1.7, *ratio)
}

func TestMemoryStore_WeekdayCoefficients(t *testing.T) {
	m := NewMemoryStore()
	for i := 1; i <= WeekdayLearnDays; i++ {
		d := day(-i)
		sold := 5.0
		if d.Weekday() == time.Saturday {
			sold = 10
		}
		m.AddObservations(contracts.Observation{ItemID: "A", Date: d, Sold: sold, CategoryID: "049"})
	}
	ctx := context.Background()

	coefs, ok, err := m.GetWeekdayCoefficients(ctx, "049")
	require.NoError(t, err)
	require.True(t, ok)

	overall := (8*10.0 + 48*5.0) / 56
	assert.InDelta(t, 10/overall, coefs[time.Saturday], 1e-9)
	assert.InDelta(t, 5/overall, coefs[time.Monday], 1e-9)

	// 표본 부족
	_, ok, err = m.GetWeekdayCoefficients(ctx, "050")
	require.NoError(t, err)
	assert.False(t, ok)

	fixed := [7]float64{1, 1, 1, 1, 1, 1.2, 1.3}
	m.SetWeekdayCoefficients("050", fixed)
	coefs, ok, err = m.GetWeekdayCoefficients(ctx, "050")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fixed, coefs)
}

func TestLearnWeekdayCoefficients_TooFewWeeks(t *testing.T) {
	totals := make(dailyTotals)
	for i := 1; i <= 21; i++ {
		totals.add(day(-i), 5)
	}

	_, ok := learnWeekdayCoefficients(totals)
	assert.False(t, ok)
}

func TestMemoryStore_Inventory(t *testing.T) {
	m := NewMemoryStore()
	m.AddObservations(
		contracts.Observation{ItemID: "A", Date: day(-2), Stock: 9},
		contracts.Observation{ItemID: "A", Date: day(-1), Stock: 7},
		contracts.Observation{ItemID: "A", Date: day(0), Stock: 3},
	)
	ctx := context.Background()

	// asOf 당일 기록은 제외
	inv, err := m.GetInventory(ctx, "A", today)
	require.NoError(t, err)
	assert.Equal(t, 7.0, inv.Stock)
	assert.Zero(t, inv.PendingQty)

	m.SetInventory(contracts.Inventory{ItemID: "A", Stock: 4, PendingQty: 6})
	inv, err = m.GetInventory(ctx, "A", today)
	require.NoError(t, err)
	assert.Equal(t, 4.0, inv.Stock)
	assert.Equal(t, 6.0, inv.PendingQty)

	inv, err = m.GetInventory(ctx, "none", today)
	require.NoError(t, err)
	assert.Zero(t, inv.Stock)
}
