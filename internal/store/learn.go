package store

import (
	"time"

	"github.com/wonny/ordercast/internal/contracts"
)

const (
	// BaselineDays 트리거 기준 평균 구간
	BaselineDays = 60
	// WeekdayLearnDays 요일 계수 학습 구간 (8주)
	WeekdayLearnDays = 56
	// MinWeekdaySamples 요일별 최소 표본 주 수
	MinWeekdaySamples = 4
)

// dailyTotals 일자별 판매 합계 (키: YYYY-MM-DD)
type dailyTotals map[string]float64

func (d dailyTotals) add(date time.Time, sold float64) {
	d[contracts.Day(date).Format(contracts.DateLayout)] += sold
}

// latest 가장 최근 일자
func (d dailyTotals) latest() (time.Time, bool) {
	var out time.Time
	for k := range d {
		t, err := time.Parse(contracts.DateLayout, k)
		if err != nil {
			continue
		}
		if t.After(out) {
			out = t
		}
	}
	return out, !out.IsZero()
}

// meanOver end 포함 이전 days 일 평균 (결측일 = 0)
func (d dailyTotals) meanOver(end time.Time, days int) float64 {
	if days <= 0 {
		return 0
	}
	var sum float64
	for i := 0; i < days; i++ {
		sum += d[end.AddDate(0, 0, -i).Format(contracts.DateLayout)]
	}
	return sum / float64(days)
}

// recentVsBaseline 최근 lookback 일 평균 / 60일 기준 평균 (기준 0 이면 nil)
func recentVsBaseline(d dailyTotals, lookback int) *float64 {
	end, ok := d.latest()
	if !ok || lookback <= 0 {
		return nil
	}
	baseline := d.meanOver(end, BaselineDays)
	if baseline <= 0 {
		return nil
	}
	ratio := d.meanOver(end, lookback) / baseline
	return &ratio
}

// learnWeekdayCoefficients 최근 8주 요일 평균 / 전체 평균
// 요일별 표본이 MinWeekdaySamples 미만이거나 전체 평균이 0 이면 ok=false
func learnWeekdayCoefficients(d dailyTotals) ([7]float64, bool) {
	var coefs [7]float64

	end, ok := d.latest()
	if !ok {
		return coefs, false
	}

	var sums [7]float64
	var counts [7]int
	var total float64
	var n int
	for i := 0; i < WeekdayLearnDays; i++ {
		day := end.AddDate(0, 0, -i)
		v, present := d[day.Format(contracts.DateLayout)]
		if !present {
			continue
		}
		sums[day.Weekday()] += v
		counts[day.Weekday()]++
		total += v
		n++
	}

	if n == 0 || total <= 0 {
		return coefs, false
	}
	overall := total / float64(n)

	for wd := 0; wd < 7; wd++ {
		if counts[wd] < MinWeekdaySamples {
			return [7]float64{}, false
		}
		coefs[wd] = (sums[wd] / float64(counts[wd])) / overall
	}
	return coefs, true
}
