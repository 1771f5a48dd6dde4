package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/ordercast/internal/contracts"
)

// MemoryStore 메모리 저장소 (테스트/CLI 데모/fixture)
type MemoryStore struct {
	mu           sync.RWMutex
	items        map[string]contracts.ItemInfo
	observations map[string][]contracts.Observation
	promotions   map[string][]contracts.PromotionWindow
	rules        []contracts.AssociationRule
	ratios       map[string]float64
	weekday      map[string][7]float64
	inventory    map[string]contracts.Inventory
}

// NewMemoryStore 빈 메모리 저장소 생성
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:        make(map[string]contracts.ItemInfo),
		observations: make(map[string][]contracts.Observation),
		promotions:   make(map[string][]contracts.PromotionWindow),
		ratios:       make(map[string]float64),
		weekday:      make(map[string][7]float64),
		inventory:    make(map[string]contracts.Inventory),
	}
}

// AddItem 상품 마스터 등록
func (m *MemoryStore) AddItem(item contracts.ItemInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ItemID] = item
}

// AddObservations 관측치 추가 (같은 날짜는 덮어씀, 날짜순 유지)
func (m *MemoryStore) AddObservations(obs ...contracts.Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range obs {
		o.Date = contracts.Day(o.Date)
		series := m.observations[o.ItemID]
		replaced := false
		for i := range series {
			if series[i].Date.Equal(o.Date) {
				series[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			series = append(series, o)
		}
		m.observations[o.ItemID] = series
	}

	for id := range m.observations {
		series := m.observations[id]
		sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	}
}

// AddPromotion 행사 기간 등록
func (m *MemoryStore) AddPromotion(w contracts.PromotionWindow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promotions[w.ItemID] = append(m.promotions[w.ItemID], w)
}

// AddRule 연관 규칙 등록
func (m *MemoryStore) AddRule(r contracts.AssociationRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, r)
}

// SetTriggerRatio 트리거 비율 고정값 지정 (지정하지 않으면 관측치로 계산)
func (m *MemoryStore) SetTriggerRatio(level contracts.AssociationLevel, key string, ratio float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratios[contracts.TriggerCacheKey(level, key)] = ratio
}

// SetWeekdayCoefficients 요일 계수 고정값 지정 (지정하지 않으면 관측치로 학습)
func (m *MemoryStore) SetWeekdayCoefficients(categoryID string, coefs [7]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weekday[categoryID] = coefs
}

// SetInventory 재고/미입고 고정값 지정
func (m *MemoryStore) SetInventory(inv contracts.Inventory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inventory[inv.ItemID] = inv
}

// GetObservations start~end 관측치 (날짜 오름차순)
func (m *MemoryStore) GetObservations(_ context.Context, itemID string, start, end time.Time) ([]contracts.Observation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, to := contracts.Day(start), contracts.Day(end)
	var out []contracts.Observation
	for _, o := range m.observations[itemID] {
		if o.Date.Before(from) || o.Date.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// GetPromotionWindows 기준일의 현재 행사와 다음 행사
func (m *MemoryStore) GetPromotionWindows(_ context.Context, itemID string, today time.Time) (contracts.PromotionWindows, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return nearestWindows(m.promotions[itemID], today), nil
}

// nearestWindows 진행 중 행사(가장 최근 시작) + 이후 가장 먼저 시작하는 행사
func nearestWindows(windows []contracts.PromotionWindow, today time.Time) contracts.PromotionWindows {
	day := contracts.Day(today)
	var out contracts.PromotionWindows

	for i := range windows {
		w := windows[i]
		if !w.Active {
			continue
		}
		switch {
		case w.Contains(day):
			if out.Current == nil || w.Start.After(out.Current.Start) {
				out.Current = &w
			}
		case contracts.Day(w.Start).After(day):
			if out.Next == nil || w.Start.Before(out.Next.Start) {
				out.Next = &w
			}
		}
	}
	return out
}

// GetAssociationRules lift 이상 규칙
func (m *MemoryStore) GetAssociationRules(_ context.Context, minLift float64) ([]contracts.AssociationRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []contracts.AssociationRule
	for _, r := range m.rules {
		if r.Lift >= minLift {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetRecentVsBaselineRatio 최근 평균 / 60일 기준 평균
func (m *MemoryStore) GetRecentVsBaselineRatio(_ context.Context, level contracts.AssociationLevel, key string, lookbackDays int) (*float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if v, ok := m.ratios[contracts.TriggerCacheKey(level, key)]; ok {
		return &v, nil
	}

	totals := make(dailyTotals)
	for itemID, series := range m.observations {
		for _, o := range series {
			switch level {
			case contracts.AssociationItem:
				if itemID != key {
					continue
				}
			default:
				if m.categoryOf(o) != key {
					continue
				}
			}
			totals.add(o.Date, o.Sold)
		}
	}
	return recentVsBaseline(totals, lookbackDays), nil
}

func (m *MemoryStore) categoryOf(o contracts.Observation) string {
	if o.CategoryID != "" {
		return o.CategoryID
	}
	return m.items[o.ItemID].CategoryID
}

// GetItem 상품 마스터 (없으면 ErrItemNotFound)
func (m *MemoryStore) GetItem(_ context.Context, itemID string) (*contracts.ItemInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[itemID]
	if !ok {
		return nil, contracts.NewItemNotFound(itemID)
	}
	return &item, nil
}

// ListItems 상품 목록 (item_id 순)
func (m *MemoryStore) ListItems(_ context.Context) ([]contracts.ItemInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]contracts.ItemInfo, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

// GetWeekdayCoefficients 지정값 → 관측치 학습값
func (m *MemoryStore) GetWeekdayCoefficients(_ context.Context, categoryID string) ([7]float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if coefs, ok := m.weekday[categoryID]; ok {
		return coefs, true, nil
	}

	totals := make(dailyTotals)
	for _, series := range m.observations {
		for _, o := range series {
			if m.categoryOf(o) == categoryID {
				totals.add(o.Date, o.Sold)
			}
		}
	}
	coefs, ok := learnWeekdayCoefficients(totals)
	return coefs, ok, nil
}

// GetInventory 지정값 → asOf 이전 최신 관측치 재고
func (m *MemoryStore) GetInventory(_ context.Context, itemID string, asOf time.Time) (contracts.Inventory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if inv, ok := m.inventory[itemID]; ok {
		return inv, nil
	}

	inv := contracts.Inventory{ItemID: itemID}
	day := contracts.Day(asOf)
	series := m.observations[itemID]
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Date.Before(day) {
			inv.Stock = series[i].Stock
			break
		}
	}
	return inv, nil
}

var _ contracts.Store = (*MemoryStore)(nil)
