package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/wonny/ordercast/internal/contracts"
)

// messageWriter kafka.Writer 중 사용하는 부분
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig 예측 결과 토픽 설정
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
}

// DefaultKafkaConfig 기본 설정
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Topic:        "ordercast.predictions",
		BatchSize:    100,
		BatchTimeout: time.Second,
	}
}

// KafkaSink 예측 결과를 정확도 추적 토픽으로 발행 (비동기, fire-and-forget)
type KafkaSink struct {
	writer messageWriter
	log    zerolog.Logger
}

// NewKafkaSink 새 싱크 생성
// 키 = store_id:item_id (같은 상품은 같은 파티션)
func NewKafkaSink(cfg KafkaConfig, log zerolog.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	sinkLog := log.With().Str("component", "feedback.kafka").Str("topic", cfg.Topic).Logger()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Gzip,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				sinkLog.Warn().Err(err).Int("messages", len(messages)).Msg("prediction publish failed")
			}
		},
	}

	return newKafkaSink(writer, sinkLog), nil
}

func newKafkaSink(w messageWriter, log zerolog.Logger) *KafkaSink {
	return &KafkaSink{writer: w, log: log}
}

// MessageKey 파티션 키 store:item (날짜 제외 → 같은 단품의 예측은 한 파티션에 순서대로)
func MessageKey(result contracts.PredictionResult) []byte {
	return []byte(result.StoreID + ":" + result.ItemID)
}

// Emit 결과 1건 발행. 실패는 로그만 남김
func (s *KafkaSink) Emit(ctx context.Context, result contracts.PredictionResult) {
	value, err := json.Marshal(result)
	if err != nil {
		s.log.Warn().Err(err).Str("item_id", result.ItemID).Msg("prediction marshal failed")
		return
	}

	msg := kafka.Message{
		Key:   MessageKey(result),
		Value: value,
		Time:  time.Now(),
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.log.Warn().Err(err).Str("item_id", result.ItemID).Msg("prediction publish failed")
	}
}

// Close 버퍼 비우고 연결 종료
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

var _ contracts.FeedbackSink = (*KafkaSink)(nil)
