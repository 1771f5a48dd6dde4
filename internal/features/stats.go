package features

import "math"

// Rolling 구간 통계 (표본 표준편차, n-1 분모)
// values 길이가 window 보다 짧으면 있는 데이터를 모두 사용
func Rolling(values []float64, window int) (mean, std, minV, maxV float64, n int) {
	tail := lastN(values, window)
	n = len(tail)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	minV, maxV = tail[0], tail[0]
	var sum float64
	for _, v := range tail {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	mean = sum / float64(n)

	if n > 1 {
		var sq float64
		for _, v := range tail {
			d := v - mean
			sq += d * d
		}
		std = math.Sqrt(sq / float64(n-1))
	}

	return mean, std, minV, maxV, n
}

// EWM 지수가중평균 (alpha = 2/(span+1), 가장 오래된 값을 시드로 과거→최근 순회)
func EWM(values []float64, span int) (float64, bool) {
	if len(values) == 0 || span <= 0 {
		return 0, false
	}

	alpha := 2.0 / (float64(span) + 1.0)
	ewm := values[0]
	for _, v := range values[1:] {
		ewm = alpha*v + (1-alpha)*ewm
	}
	return ewm, true
}

// Mean 단순 평균 (빈 슬라이스는 ok=false)
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Sum 합계
func Sum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}

func lastN(values []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
