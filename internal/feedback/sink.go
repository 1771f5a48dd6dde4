package feedback

import (
	"context"

	"github.com/wonny/ordercast/internal/contracts"
)

// NopSink 결과를 버림 (피드백 비활성)
type NopSink struct{}

// Emit 아무것도 하지 않음
func (NopSink) Emit(context.Context, contracts.PredictionResult) {}

// MultiSink 여러 싱크로 같은 결과 전달
type MultiSink []contracts.FeedbackSink

// NewMultiSink nil 싱크는 제외하고 묶음
func NewMultiSink(sinks ...contracts.FeedbackSink) MultiSink {
	out := make(MultiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Emit 순서대로 전달
func (m MultiSink) Emit(ctx context.Context, result contracts.PredictionResult) {
	for _, s := range m {
		s.Emit(ctx, result)
	}
}

var (
	_ contracts.FeedbackSink = NopSink{}
	_ contracts.FeedbackSink = MultiSink(nil)
)
