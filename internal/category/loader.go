package category

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// ValidationError 프로파일 검증 실패 (기동 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// File 카테고리 프로파일 YAML 파일 구조
type File struct {
	Profiles []Profile `yaml:"profiles" validate:"required,min=1"`
}

// LoadProfiles YAML 파일을 읽어 기본 프로파일에 이름 기준으로 덮어씀
// path 가 비어 있으면 기본 프로파일만 사용
// KnownFields(true) 로 오타/미사용 필드는 즉시 실패
func LoadProfiles(path string) ([]Profile, error) {
	if path == "" {
		return Prepare(DefaultProfiles())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category profiles: %w", err)
	}

	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode category profiles: %w", err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, toValidationError("profiles", err)
	}

	return Prepare(Merge(DefaultProfiles(), file.Profiles))
}

// Merge 이름이 같은 프로파일은 교체, 새 이름은 default 앞에 추가
func Merge(base, overrides []Profile) []Profile {
	out := make([]Profile, len(base))
	copy(out, base)

	for _, o := range overrides {
		replaced := false
		for i := range out {
			if out[i].Name == o.Name {
				out[i] = o
				replaced = true
				break
			}
		}
		if replaced {
			continue
		}

		at := len(out)
		for i := range out {
			if out[i].Kind == KindDefault {
				at = i
				break
			}
		}
		out = append(out, Profile{})
		copy(out[at+1:], out[at:])
		out[at] = o
	}

	return out
}

// Prepare 기본값 채움 → 구조 검증 → 교차 검증 → default 를 마지막으로 정렬
func Prepare(profiles []Profile) ([]Profile, error) {
	out := make([]Profile, len(profiles))
	copy(out, profiles)

	for i := range out {
		if err := defaults.Set(&out[i]); err != nil {
			return nil, fmt.Errorf("profile %q defaults: %w", out[i].Name, err)
		}
		if err := validate.Struct(&out[i]); err != nil {
			return nil, toValidationError(fmt.Sprintf("profiles[%s]", out[i].Name), err)
		}
	}

	if err := Validate(out); err != nil {
		return nil, err
	}

	// default 는 반드시 마지막 (순서는 안정 유지)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind != KindDefault && out[j].Kind == KindDefault
	})

	return out, nil
}

// Validate 프로파일 간 교차 검증
func Validate(profiles []Profile) error {
	names := make(map[string]bool, len(profiles))
	owner := make(map[string]string)
	defaultCount := 0

	for _, p := range profiles {
		field := fmt.Sprintf("profiles[%s]", p.Name)

		if names[p.Name] {
			return ValidationError{field + ".name", "duplicate profile name"}
		}
		names[p.Name] = true

		if p.Kind == KindDefault {
			defaultCount++
			if len(p.Categories) > 0 {
				return ValidationError{field + ".categories", "default profile matches every category, list must be empty"}
			}
			continue
		}

		if len(p.Categories) == 0 {
			return ValidationError{field + ".categories", "required"}
		}
		for _, c := range p.Categories {
			if prev, ok := owner[c]; ok {
				return ValidationError{field + ".categories", fmt.Sprintf("category %s already mapped to %s", c, prev)}
			}
			owner[c] = p.Name
		}

		if err := validateKind(field, p); err != nil {
			return err
		}
	}

	if defaultCount != 1 {
		return ValidationError{"profiles", fmt.Sprintf("exactly one default profile required, got %d", defaultCount)}
	}

	return nil
}

// validateKind 유형별 필수 설정
func validateKind(field string, p Profile) error {
	switch p.Kind {
	case KindTobacco:
		if p.MaxStockUnits <= 0 {
			return ValidationError{field + ".max_stock_units", "must be > 0 for tobacco"}
		}
	case KindOrderCalendar:
		if len(p.OrderWeekdays) == 0 {
			return ValidationError{field + ".order_weekdays", "at least one order weekday required"}
		}
	case KindShelfLife:
		if len(p.ShelfLifeBuckets) == 0 {
			return ValidationError{field + ".shelf_life_buckets", "required"}
		}
		prev := 0
		for i, b := range p.ShelfLifeBuckets {
			last := i == len(p.ShelfLifeBuckets)-1
			if last && b.MaxDays != 0 {
				return ValidationError{field + ".shelf_life_buckets", "last bucket must be unbounded (max_days: 0)"}
			}
			if !last && b.MaxDays <= prev {
				return ValidationError{field + ".shelf_life_buckets", "max_days must be strictly ascending"}
			}
			prev = b.MaxDays
		}
		if p.DefaultShelfLifeDays <= 0 {
			return ValidationError{field + ".default_shelf_life_days", "must be > 0"}
		}
	case KindAlcohol:
		if len(p.PeakWeekdays) > 0 && p.PeakSafetyDays <= 0 {
			return ValidationError{field + ".peak_safety_days", "required when peak_weekdays is set"}
		}
	}
	return nil
}

// toValidationError validator 에러 → 첫 번째 필드 ValidationError
func toValidationError(prefix string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fe.Tag()
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		return ValidationError{Field: prefix + "." + fe.Field(), Message: "failed " + msg}
	}
	return ValidationError{Field: prefix, Message: err.Error()}
}
