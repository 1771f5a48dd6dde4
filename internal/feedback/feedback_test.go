package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/store"
)

var target = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type recordingSink struct {
	got []contracts.PredictionResult
}

func (s *recordingSink) Emit(_ context.Context, r contracts.PredictionResult) {
	s.got = append(s.got, r)
}

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	sink := NewMultiSink(a, nil, b, NopSink{})
	assert.Len(t, sink, 3)

	sink.Emit(context.Background(), contracts.PredictionResult{ItemID: "A", OrderQty: 3})

	require.Len(t, a.got, 1)
	require.Len(t, b.got, 1)
	assert.Equal(t, 3, b.got[0].OrderQty)
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSink_Emit(t *testing.T) {
	w := &fakeWriter{}
	sink := newKafkaSink(w, zerolog.Nop())

	res := contracts.PredictionResult{
		StoreID:    "46513",
		ItemID:     "8801234",
		CategoryID: "049",
		TargetDate: target,
		OrderQty:   12,
		ModelPath:  "blend_high+weekday",
	}
	sink.Emit(context.Background(), res)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "46513:8801234", string(w.msgs[0].Key))

	var decoded contracts.PredictionResult
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, 12, decoded.OrderQty)
	assert.Equal(t, "blend_high+weekday", decoded.ModelPath)
	assert.True(t, decoded.TargetDate.Equal(target))

	require.NoError(t, sink.Close())
	assert.True(t, w.closed)
}

func TestMessageKey_StableAcrossTargetDates(t *testing.T) {
	mon := contracts.PredictionResult{StoreID: "46513", ItemID: "8801234", TargetDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)}
	tue := mon
	tue.TargetDate = mon.TargetDate.AddDate(0, 0, 1)
	other := mon
	other.StoreID = "46514"

	assert.Equal(t, []byte("46513:8801234"), MessageKey(mon))
	assert.Equal(t, MessageKey(mon), MessageKey(tue))
	assert.NotEqual(t, MessageKey(mon), MessageKey(other))
}

func TestKafkaSink_WriteFailureDoesNotPanic(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	sink := newKafkaSink(w, zerolog.Nop())

	assert.NotPanics(t, func() {
		sink.Emit(context.Background(), contracts.PredictionResult{ItemID: "A"})
	})
}

func TestNewKafkaSink_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaSink(DefaultKafkaConfig(), zerolog.Nop())
	assert.Error(t, err)

	cfg := DefaultKafkaConfig()
	cfg.Brokers = []string{"localhost:9092"}
	cfg.Topic = ""
	_, err = NewKafkaSink(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		pair    PredictionPair
		wantErr float64
		wantAPE *float64
		wantHit bool
	}{
		{"exact", PredictionPair{Predicted: 5, Actual: 5, OrderUnit: 1}, 0, contracts.Float64(0), true},
		{"under forecast within unit", PredictionPair{Predicted: 4.2, Actual: 5, OrderUnit: 1}, 0.8, contracts.Float64(0.16), true},
		{"over forecast", PredictionPair{Predicted: 10, Actual: 4, OrderUnit: 1}, -6, contracts.Float64(1.5), false},
		{"case unit widens hit band", PredictionPair{Predicted: 10, Actual: 4, OrderUnit: 6}, -6, contracts.Float64(1.5), true},
		{"no sales", PredictionPair{Predicted: 0.5, Actual: 0}, -0.5, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Evaluate(tt.pair)
			assert.InDelta(t, tt.wantErr, o.Error, 1e-9)
			assert.InDelta(t, abs(tt.wantErr), o.AbsError, 1e-9)
			if tt.wantAPE == nil {
				assert.Nil(t, o.APE)
			} else {
				require.NotNil(t, o.APE)
				assert.InDelta(t, *tt.wantAPE, *o.APE, 1e-9)
			}
			assert.Equal(t, tt.wantHit, o.Hit)
		})
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestSummarizeByCategory(t *testing.T) {
	outcomes := []Outcome{
		Evaluate(PredictionPair{CategoryID: "049", Predicted: 10, Actual: 8}),
		Evaluate(PredictionPair{CategoryID: "049", Predicted: 6, Actual: 8}),
		Evaluate(PredictionPair{CategoryID: "072", Predicted: 3, Actual: 0}),
	}

	all := Summarize("ALL", outcomes)
	require.NotNil(t, all)
	assert.Equal(t, 3, all.SampleCount)
	assert.InDelta(t, (2+2+3)/3.0, all.MAE, 1e-9)
	require.NotNil(t, all.MAPE)
	assert.InDelta(t, 0.25, *all.MAPE, 1e-9)

	reports := SummarizeByCategory(outcomes)
	require.Len(t, reports, 2)
	assert.Equal(t, "049", reports[0].Key)
	assert.InDelta(t, 0.0, reports[0].MeanError, 1e-9)
	assert.Equal(t, 0.0, reports[0].HitRate)
	assert.Equal(t, "072", reports[1].Key)
	assert.Nil(t, reports[1].MAPE)

	assert.Nil(t, Summarize("ALL", nil))
}

type fakeOutcomeStore struct {
	pairs []PredictionPair
	saved []Outcome
}

func (s *fakeOutcomeStore) GetUnreconciled(context.Context, time.Time, time.Time) ([]PredictionPair, error) {
	return s.pairs, nil
}

func (s *fakeOutcomeStore) SaveOutcomes(_ context.Context, outcomes []Outcome) error {
	s.saved = append(s.saved, outcomes...)
	return nil
}

func TestReconciler_Reconcile(t *testing.T) {
	fake := &fakeOutcomeStore{pairs: []PredictionPair{
		{StoreID: "46513", ItemID: "A", CategoryID: "049", TargetDate: target, Predicted: 5, Actual: 6, OrderUnit: 1},
		{StoreID: "46513", ItemID: "B", CategoryID: "072", TargetDate: target, Predicted: 9, Actual: 2, OrderUnit: 1},
	}}

	r := NewReconciler(fake, zerolog.Nop())
	fixed := time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	outcomes, err := r.Reconcile(context.Background(), target, target)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, fake.saved, outcomes)
	assert.True(t, outcomes[0].Hit)
	assert.False(t, outcomes[1].Hit)
	assert.Equal(t, fixed, outcomes[0].ReconciledAt)
}

func TestReconciler_NothingToDo(t *testing.T) {
	fake := &fakeOutcomeStore{}
	outcomes, err := NewReconciler(fake, zerolog.Nop()).Reconcile(context.Background(), target, target)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Empty(t, fake.saved)
}

func TestRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = pool.Exec(ctx, store.PostgresSchema)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, PostgresSchema)
	require.NoError(t, err)

	repo := NewRepository(pool, zerolog.Nop())
	res := contracts.PredictionResult{
		StoreID: "test", ItemID: "integration", CategoryID: "999", TargetDate: target,
		Strategy: "default", Quality: contracts.QualityHigh, Confidence: contracts.ConfidenceHigh,
		OrderQty: 3, OrderUnit: 1, ModelPath: "blend_high",
	}
	require.NoError(t, repo.SavePrediction(ctx, res))
	// 재실행은 같은 키 덮어쓰기
	res.OrderQty = 4
	require.NoError(t, repo.SavePrediction(ctx, res))

	_, err = repo.GetUnreconciled(ctx, target, target)
	require.NoError(t, err)
}
