package association

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ordercast/internal/contracts"
)

type fakeReader struct {
	rules      []contracts.AssociationRule
	ratios     map[string]float64
	rulesErr   error
	ruleCalls  int
	ratioCalls int
}

func (f *fakeReader) GetAssociationRules(context.Context, float64) ([]contracts.AssociationRule, error) {
	f.ruleCalls++
	return f.rules, f.rulesErr
}

func (f *fakeReader) GetRecentVsBaselineRatio(_ context.Context, level contracts.AssociationLevel, key string, _ int) (*float64, error) {
	f.ratioCalls++
	v, ok := f.ratios[contracts.TriggerCacheKey(level, key)]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newBooster(reader *fakeReader, mutate func(*Config)) (*Booster, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	return NewBoosterWithConfig(cfg, reader, clock.Now, zerolog.Nop()), clock
}

func categoryRule(trigger, boosted string, lift, confidence float64) contracts.AssociationRule {
	return contracts.AssociationRule{
		Level:      contracts.AssociationCategory,
		TriggerKey: trigger,
		BoostedKey: boosted,
		Lift:       lift,
		Confidence: confidence,
		SampleSize: 120,
	}
}

func TestBoost_Disabled(t *testing.T) {
	reader := &fakeReader{
		rules:  []contracts.AssociationRule{categoryRule("049", "015", 3.0, 0.9)},
		ratios: map[string]float64{"category:049": 2.0},
	}
	b, _ := newBooster(reader, func(c *Config) { c.Enabled = false })

	res := b.Boost(context.Background(), "8801", "015")

	assert.Equal(t, 1.0, res.Boost)
	assert.Equal(t, 0, reader.ruleCalls)
}

func TestBoost_Formula(t *testing.T) {
	tests := []struct {
		name       string
		lift       float64
		confidence float64
		ratio      float64
		want       float64
	}{
		{"small boost", 1.3, 0.5, 1.2, 1.03},
		{"capped at ceiling", 2.0, 0.5, 1.4, 1.15},
		{"lift below minimum", 1.1, 0.9, 2.0, 1.0},
		{"confidence below minimum", 2.0, 0.2, 2.0, 1.0},
		{"trigger not surging", 2.0, 0.9, 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{
				rules:  []contracts.AssociationRule{categoryRule("049", "015", tt.lift, tt.confidence)},
				ratios: map[string]float64{"category:049": tt.ratio},
			}
			b, _ := newBooster(reader, nil)

			res := b.Boost(context.Background(), "8801", "015")
			assert.InDelta(t, tt.want, res.Boost, 1e-9)
		})
	}
}

func TestBoost_NeverExceedsCeiling(t *testing.T) {
	for _, lift := range []float64{1.2, 1.5, 2, 5, 50} {
		for _, ratio := range []float64{1.01, 1.5, 2, 10, 1000} {
			reader := &fakeReader{
				rules:  []contracts.AssociationRule{categoryRule("049", "015", lift, 1)},
				ratios: map[string]float64{"category:049": ratio},
			}
			b, _ := newBooster(reader, nil)

			res := b.Boost(context.Background(), "8801", "015")
			assert.LessOrEqual(t, res.Boost, 1.15, "lift %v ratio %v", lift, ratio)
			assert.GreaterOrEqual(t, res.Boost, 1.0)
		}
	}
}

func TestBoost_CategoryBeforeItem(t *testing.T) {
	itemRule := contracts.AssociationRule{
		Level:      contracts.AssociationItem,
		TriggerKey: "8800",
		BoostedKey: "8801",
		Lift:       3.0,
		Confidence: 0.9,
	}

	reader := &fakeReader{
		rules: []contracts.AssociationRule{categoryRule("049", "015", 1.3, 0.5), itemRule},
		ratios: map[string]float64{
			"category:049": 1.2,
			"item:8800":    2.0,
		},
	}
	b, _ := newBooster(reader, nil)

	res := b.Boost(context.Background(), "8801", "015")
	assert.Equal(t, contracts.AssociationCategory, res.Level)
	assert.InDelta(t, 1.03, res.Boost, 1e-9)

	// 카테고리 트리거가 잠잠하면 상품 규칙으로 대체
	reader.ratios["category:049"] = 0.8
	b, _ = newBooster(reader, nil)

	res = b.Boost(context.Background(), "8801", "015")
	assert.Equal(t, contracts.AssociationItem, res.Level)
	assert.Equal(t, "8800", res.TriggerKey)
	assert.InDelta(t, 1.15, res.Boost, 1e-9)
}

func TestBoost_ReaderFailureIsNeutral(t *testing.T) {
	reader := &fakeReader{rulesErr: errors.New("relation does not exist")}
	b, _ := newBooster(reader, nil)

	res := b.Boost(context.Background(), "8801", "015")
	assert.Equal(t, 1.0, res.Boost)
	assert.Equal(t, "none", res.Label)
}

func TestEnsureFresh_TTL(t *testing.T) {
	reader := &fakeReader{
		rules:  []contracts.AssociationRule{categoryRule("049", "015", 1.3, 0.5)},
		ratios: map[string]float64{"category:049": 1.2},
	}
	b, clock := newBooster(reader, nil)
	ctx := context.Background()

	b.Boost(ctx, "8801", "015")
	b.Boost(ctx, "8801", "015")
	require.Equal(t, 1, reader.ruleCalls)
	require.Equal(t, 1, reader.ratioCalls)

	clock.Advance(299 * time.Second)
	b.Boost(ctx, "8801", "015")
	assert.Equal(t, 1, reader.ruleCalls)
	assert.Equal(t, 1, reader.ratioCalls)

	clock.Advance(time.Second)
	b.Boost(ctx, "8801", "015")
	assert.Equal(t, 2, reader.ruleCalls)
	assert.Equal(t, 2, reader.ratioCalls)
}

func TestTTLCache(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache[string, int](time.Minute, clock.Now)

	assert.True(t, c.Stale())

	c.Replace(map[string]int{"a": 1})
	assert.False(t, c.Stale())
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("b", 2)
	assert.Equal(t, 2, c.Len())

	clock.Advance(time.Minute)
	assert.True(t, c.Stale())

	c.Replace(nil)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, clock.now, c.RefreshedAt())

	c.Invalidate()
	assert.True(t, c.Stale())
}
