package category

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DispatchIsTotalAndMemoized(t *testing.T) {
	r := NewDefaultRegistry(zerolog.Nop())

	for _, p := range DefaultProfiles() {
		for _, c := range p.Categories {
			first := r.Lookup(c)
			second := r.Lookup(c)

			assert.Equal(t, p.Name, first.Name(), "category %s", c)
			assert.Same(t, first, second, "category %s", c)
		}
	}

	for _, unmapped := range []string{"999", "", "1", "abc"} {
		assert.Same(t, r.Default(), r.Lookup(unmapped), "category %q", unmapped)
	}
}

func TestRegistry_DefaultRegisteredLast(t *testing.T) {
	r := NewDefaultRegistry(zerolog.Nop())

	strategies := r.Strategies()
	require.NotEmpty(t, strategies)
	assert.Equal(t, KindDefault, strategies[len(strategies)-1].Kind())
}

func TestRegistry_ConcurrentLookup(t *testing.T) {
	r := NewDefaultRegistry(zerolog.Nop())
	want := r.Lookup("072")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Same(t, want, r.Lookup("072"))
			r.Lookup("888")
		}()
	}
	wg.Wait()
}

func TestPrepare_MovesDefaultLast(t *testing.T) {
	profiles := DefaultProfiles()
	// default 를 맨 앞으로 옮겨도 결과는 마지막
	profiles = append([]Profile{profiles[len(profiles)-1]}, profiles[:len(profiles)-1]...)

	prepared, err := Prepare(profiles)
	require.NoError(t, err)
	assert.Equal(t, KindDefault, prepared[len(prepared)-1].Kind)
	assert.Equal(t, "beer", prepared[0].Name)

	// creasty/defaults 적용 확인
	assert.Equal(t, 0.3, prepared[0].MinDailyAverage)
	assert.Equal(t, 1.1, prepared[0].TurnoverHighMult)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]Profile) []Profile
		field  string
	}{
		{
			name: "duplicate category",
			mutate: func(ps []Profile) []Profile {
				ps[1].Categories = append(ps[1].Categories, "049")
				return ps
			},
			field: "profiles[soju].categories",
		},
		{
			name: "missing default",
			mutate: func(ps []Profile) []Profile {
				return ps[:len(ps)-1]
			},
			field: "profiles",
		},
		{
			name: "two defaults",
			mutate: func(ps []Profile) []Profile {
				return append(ps, Profile{Name: "default2", Kind: KindDefault, SafetyDays: 1})
			},
			field: "profiles",
		},
		{
			name: "weekday table wrong length",
			mutate: func(ps []Profile) []Profile {
				ps[0].WeekdayCoefficients = []float64{1, 1, 1}
				return ps
			},
			field: "profiles[beer].WeekdayCoefficients",
		},
		{
			name: "tobacco without cap",
			mutate: func(ps []Profile) []Profile {
				ps[2].MaxStockUnits = 0
				return ps
			},
			field: "profiles[tobacco].max_stock_units",
		},
		{
			name: "shelf life buckets not ascending",
			mutate: func(ps []Profile) []Profile {
				ps[5].ShelfLifeBuckets = []ShelfLifeBucket{{MaxDays: 3, SafetyDays: 1}, {MaxDays: 2, SafetyDays: 1}, {MaxDays: 0, SafetyDays: 1}}
				return ps
			},
			field: "profiles[food].shelf_life_buckets",
		},
		{
			name: "unknown kind",
			mutate: func(ps []Profile) []Profile {
				ps[0].Kind = "wine"
				return ps
			},
			field: "profiles[beer].Kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.mutate(DefaultProfiles()), zerolog.Nop())
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %T: %v", err, err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadProfiles_OverrideAndAppend(t *testing.T) {
	path := writeYAML(t, `
profiles:
  - name: beer
    kind: alcohol
    categories: ["049"]
    safety_days: 2.5
    weekday_coefficients: [1, 1, 1, 1, 1, 1.2, 1.2]
    max_stock_days: 5
  - name: ice
    kind: steady
    categories: ["099"]
    safety_days: 1
`)

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)

	r, err := NewRegistry(profiles, zerolog.Nop())
	require.NoError(t, err)

	beer := r.Lookup("049")
	assert.Equal(t, 2.5, beer.Profile().SafetyDays)
	assert.Equal(t, 5.0, beer.Profile().MaxStockDays)

	ice := r.Lookup("099")
	assert.Equal(t, "ice", ice.Name())

	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	assert.Equal(t, "ice", names[len(names)-2])
	assert.Equal(t, "default", names[len(names)-1])
}

func TestLoadProfiles_UnknownFieldFails(t *testing.T) {
	path := writeYAML(t, `
profiles:
  - name: beer
    kind: alcohol
    categories: ["049"]
    safty_days: 2
`)

	_, err := LoadProfiles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "safty_days")
}

func TestLoadProfiles_EmptyPathUsesDefaults(t *testing.T) {
	profiles, err := LoadProfiles("")
	require.NoError(t, err)
	assert.Len(t, profiles, len(DefaultProfiles()))
}
