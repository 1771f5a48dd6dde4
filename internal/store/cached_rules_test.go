package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ordercast/internal/contracts"
)

// jsonCache pkg/redis.Cache 와 같은 JSON 직렬화 캐시
type jsonCache struct {
	data    map[string][]byte
	gets    int
	failGet bool
}

func (c *jsonCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.gets++
	if c.failGet {
		return false, errors.New("connection refused")
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *jsonCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

// countingStore 규칙 조회 횟수 집계
type countingStore struct {
	*MemoryStore
	ruleCalls int
}

func (s *countingStore) GetAssociationRules(ctx context.Context, minLift float64) ([]contracts.AssociationRule, error) {
	s.ruleCalls++
	return s.MemoryStore.GetAssociationRules(ctx, minLift)
}

func TestCachedRules_ReadThrough(t *testing.T) {
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	inner.AddRule(contracts.AssociationRule{Level: contracts.AssociationCategory, TriggerKey: "049", BoostedKey: "015", Lift: 1.5, Confidence: 0.4})
	cache := &jsonCache{data: make(map[string][]byte)}

	c := NewCachedRules(inner, cache, "46513", 5*time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := c.GetAssociationRules(ctx, 1.2)
	require.NoError(t, err)
	second, err := c.GetAssociationRules(ctx, 1.2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.ruleCalls)
	assert.Contains(t, cache.data, RulesKey("46513", 1.2))

	// 다른 임계값은 별도 키
	_, err = c.GetAssociationRules(ctx, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.ruleCalls)
}

func TestCachedRules_CacheFailureFallsThrough(t *testing.T) {
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	inner.AddRule(contracts.AssociationRule{Level: contracts.AssociationItem, TriggerKey: "A", BoostedKey: "B", Lift: 2})
	cache := &jsonCache{data: make(map[string][]byte), failGet: true}

	c := NewCachedRules(inner, cache, "46513", time.Minute, zerolog.Nop())

	rules, err := c.GetAssociationRules(context.Background(), 1.2)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.Equal(t, 1, inner.ruleCalls)
}

func TestCachedRules_DelegatesOtherReads(t *testing.T) {
	inner := NewMemoryStore()
	inner.AddItem(contracts.ItemInfo{ItemID: "A", CategoryID: "049"})

	var s contracts.Store = NewCachedRules(inner, &jsonCache{data: make(map[string][]byte)}, "46513", time.Minute, zerolog.Nop())

	item, err := s.GetItem(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "049", item.CategoryID)
}

func TestRulesKey(t *testing.T) {
	assert.Equal(t, "assoc:rules:46513:1.20", RulesKey("46513", 1.2))
}
