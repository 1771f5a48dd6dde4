package predictor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/ordercast/internal/contracts"
)

// Explain 예측 결과의 단계별 배수를 사람이 읽을 수 있는 형태로 정리
func Explain(res *contracts.PredictionResult) string {
	if res == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "item %s (category %s, strategy %s) for %s\n",
		res.ItemID, res.CategoryID, res.Strategy, res.OrderDate())
	fmt.Fprintf(&b, "  quality=%s confidence=%s path=%s\n", res.Quality, res.Confidence, res.ModelPath)
	fmt.Fprintf(&b, "  raw 7-day mean        %10.2f\n", res.RawPrediction)
	fmt.Fprintf(&b, "  blended               %10.2f\n", res.BlendedPrediction)
	fmt.Fprintf(&b, "  × weekday %-6.3f      %10.2f\n", res.WeekdayCoefficient, res.WeekdayAdjusted)
	fmt.Fprintf(&b, "  × trend %.3f × turnover %.3f × waste %.3f = %.2f\n",
		res.TrendMultiplier, res.TurnoverMultiplier, res.WasteMultiplier, res.AdjustedPrediction)
	fmt.Fprintf(&b, "  safety stock (× volatility %.3f) %.2f\n", res.VolatilityMultiplier, res.SafetyStock)
	fmt.Fprintf(&b, "  - stock %.2f - pending %.2f = base need %.2f\n", res.CurrentStock, res.PendingQty, res.BaseOrderQty)
	fmt.Fprintf(&b, "  promotion %s × %.3f, association × %.3f\n", stateOrNone(res.PromotionState), res.PromotionFactor, res.AssociationBoost)
	fmt.Fprintf(&b, "  order qty %d (unit %d)\n", res.OrderQty, res.OrderUnit)

	if len(res.Adjustments) > 0 {
		b.WriteString("  adjustments:\n")
		for _, a := range res.Adjustments {
			fmt.Fprintf(&b, "    %-12s %8.3f  %s\n", a.Stage, a.Factor, a.Label)
		}
	}

	if len(res.StrategyDetail) > 0 {
		keys := make([]string, 0, len(res.StrategyDetail))
		for k := range res.StrategyDetail {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("  strategy detail:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "    %-20s %8.3f\n", k, res.StrategyDetail[k])
		}
	}

	if len(res.Defaults) > 0 {
		fmt.Fprintf(&b, "  defaults used: %s\n", strings.Join(res.Defaults, ", "))
	}
	if res.SkipReason != "" {
		fmt.Fprintf(&b, "  order skipped: %s\n", res.SkipReason)
	}

	return b.String()
}

func stateOrNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
