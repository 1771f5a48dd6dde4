package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wonny/ordercast/internal/contracts"
)

// Recorder 예측 엔진 Prometheus 지표
// nil Recorder 는 아무것도 기록하지 않음
type Recorder struct {
	predictions *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	orderQty    *prometheus.HistogramVec
	latency     prometheus.Histogram
}

// New 기본 레지스트리에 등록된 Recorder
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry 지정 레지스트리에 등록된 Recorder (테스트는 prometheus.NewRegistry())
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordercast_predictions_total",
				Help: "Total number of order quantity predictions",
			},
			[]string{"path", "confidence"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ordercast_prediction_errors_total",
				Help: "Total number of predictions rejected by kind",
			},
			[]string{"kind"},
		),
		orderQty: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ordercast_order_quantity",
				Help:    "Final order quantity per prediction",
				Buckets: []float64{0, 1, 2, 3, 5, 8, 12, 20, 30, 50, 100},
			},
			[]string{"strategy"},
		),
		latency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ordercast_predict_duration_seconds",
				Help:    "Duration of a single prediction in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
	}
}

// ObservePrediction 예측 1건 기록
func (r *Recorder) ObservePrediction(result *contracts.PredictionResult, elapsed time.Duration) {
	if r == nil || result == nil {
		return
	}
	r.predictions.WithLabelValues(result.ModelPath, string(result.Confidence)).Inc()
	r.orderQty.WithLabelValues(result.Strategy).Observe(float64(result.OrderQty))
	r.latency.Observe(elapsed.Seconds())
}

// ObserveError 식별 오류 등 예측 실패 기록
func (r *Recorder) ObserveError(kind string) {
	if r == nil {
		return
	}
	r.errorsTotal.WithLabelValues(kind).Inc()
}
