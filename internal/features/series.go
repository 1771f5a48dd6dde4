package features

import (
	"time"

	"github.com/wonny/ordercast/internal/contracts"
)

// dayPoint 달력 하루 (결측일 포함)
type dayPoint struct {
	Date    time.Time
	Sold    float64
	Present bool // 실제 관측치 존재 여부
	Promo   bool
	Imputed bool // 행사 기간 결측 → 비행사 평균으로 대체
	Obs     *contracts.Observation
}

// dailySeries 첫 관측일부터 마지막 관측일까지 빈 날짜 없이 채운 시계열
// 마지막 관측일 이후(아직 적재 전)는 채우지 않음
type dailySeries struct {
	points []dayPoint
	index  map[string]*contracts.Observation
}

// buildSeries 관측치를 달력 시계열로 정렬/보정
// 관측 구간 안의 결측일은 판매 0으로 간주하되, 행사 기간에 속하는 결측일은 비행사 평균으로 대체
func buildSeries(obs []contracts.Observation, target time.Time, windows contracts.PromotionWindows, horizon int) *dailySeries {
	end := contracts.Day(target).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(horizon - 1))

	s := &dailySeries{index: make(map[string]*contracts.Observation, len(obs))}

	var first, last time.Time
	for i := range obs {
		d := contracts.Day(obs[i].Date)
		if d.After(end) || d.Before(start) {
			continue
		}
		s.index[d.Format(contracts.DateLayout)] = &obs[i]
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	if len(s.index) == 0 {
		return s
	}

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		p := dayPoint{Date: d}
		if o, ok := s.index[d.Format(contracts.DateLayout)]; ok {
			p.Present = true
			p.Sold = o.Sold
			p.Promo = o.OnPromotion() || windows.Contains(d)
			p.Obs = o
		} else if windows.Contains(d) {
			p.Promo = true
			p.Imputed = true
		}
		s.points = append(s.points, p)
	}

	nonPromo := s.nonPromoMean()
	for i := range s.points {
		if s.points[i].Imputed {
			s.points[i].Sold = nonPromo
		}
	}

	return s
}

// nonPromoMean 실제 관측된 비행사일 평균 (없으면 관측일 전체 평균)
func (s *dailySeries) nonPromoMean() float64 {
	var np, all []float64
	for _, p := range s.points {
		if !p.Present {
			continue
		}
		all = append(all, p.Sold)
		if !p.Promo {
			np = append(np, p.Sold)
		}
	}
	if m, ok := Mean(np); ok {
		return m
	}
	m, _ := Mean(all)
	return m
}

// lookup 정확히 일치하는 날짜의 관측치
func (s *dailySeries) lookup(d time.Time) (*contracts.Observation, bool) {
	o, ok := s.index[contracts.Day(d).Format(contracts.DateLayout)]
	return o, ok
}

// at 관측 구간 안의 날짜 (결측일은 0 또는 보정값)
func (s *dailySeries) at(d time.Time) (dayPoint, bool) {
	if len(s.points) == 0 {
		return dayPoint{}, false
	}
	i := contracts.DaysBetween(s.points[0].Date, contracts.Day(d))
	if i < 0 || i >= len(s.points) {
		return dayPoint{}, false
	}
	return s.points[i], true
}

// values 마지막 n일 판매량 (n<=0 이면 전체)
func (s *dailySeries) values(n int) []float64 {
	pts := s.tail(n)
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.Sold
	}
	return out
}

// tail 마지막 n일
func (s *dailySeries) tail(n int) []dayPoint {
	if n <= 0 || len(s.points) <= n {
		return s.points
	}
	return s.points[len(s.points)-n:]
}

// empty 관측치가 하나도 없는지
func (s *dailySeries) empty() bool {
	return len(s.points) == 0
}
