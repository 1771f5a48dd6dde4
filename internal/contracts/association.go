package contracts

// AssociationLevel 연관 규칙 단위
type AssociationLevel string

const (
	AssociationCategory AssociationLevel = "category"
	AssociationItem     AssociationLevel = "item"
)

// AssociationRule 외부에서 주기적으로 채굴된 연관 규칙 (읽기 전용 스냅샷)
type AssociationRule struct {
	Level       AssociationLevel `json:"level"`
	TriggerKey  string           `json:"trigger_key"` // 급증 여부를 보는 쪽
	BoostedKey  string           `json:"boosted_key"` // 부스트를 받는 쪽
	Support     float64          `json:"support"`
	Confidence  float64          `json:"confidence"`
	Lift        float64          `json:"lift"`
	Correlation float64          `json:"correlation"`
	SampleSize  int              `json:"sample_size"`
}

// TriggerCacheKey 트리거 비율 캐시 키 (단위별 네임스페이스 분리)
func TriggerCacheKey(level AssociationLevel, key string) string {
	return string(level) + ":" + key
}
