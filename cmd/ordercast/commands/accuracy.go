package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/feedback"
)

var (
	accuracyFrom       string
	accuracyTo         string
	accuracyReportOnly bool
)

// accuracyCmd 예측 정확도 검증
var accuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "예측 vs 실제 판매 정확도 검증",
	Long: `기록된 예측 로그를 실제 판매와 대조해 정확도를 계산합니다.
PostgreSQL (DATABASE_URL) 이 필요합니다.

지표:
- MAE: 평균 절대 오차
- MAPE: 평균 절대 백분율 오차 (실제 판매 > 0 인 건만)
- Hit rate: 오차가 발주 단위 이내인 비율
- Bias: 평균 오차 (+ = 과소 예측)

Example:
  go run ./cmd/ordercast accuracy
  go run ./cmd/ordercast accuracy --from 2026-03-01 --to 2026-03-07
  go run ./cmd/ordercast accuracy --report-only`,
	RunE: runAccuracy,
}

func init() {
	rootCmd.AddCommand(accuracyCmd)

	accuracyCmd.Flags().StringVar(&accuracyFrom, "from", "", "window start YYYY-MM-DD (default: 7 days ago)")
	accuracyCmd.Flags().StringVar(&accuracyTo, "to", "", "window end YYYY-MM-DD (default: yesterday)")
	accuracyCmd.Flags().BoolVar(&accuracyReportOnly, "report-only", false, "summarize stored outcomes without reconciling")
}

func runAccuracy(cmd *cobra.Command, args []string) error {
	to := today().AddDate(0, 0, -1)
	from := to.AddDate(0, 0, -6)

	var err error
	if accuracyFrom != "" {
		if from, err = parseDate(accuracyFrom); err != nil {
			return err
		}
	}
	if accuracyTo != "" {
		if to, err = parseDate(accuracyTo); err != nil {
			return err
		}
	}
	if to.Before(from) {
		return fmt.Errorf("--to %s is before --from %s", to.Format(contracts.DateLayout), from.Format(contracts.DateLayout))
	}

	ctx := commandContext(cmd)
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if a.db == nil {
		return fmt.Errorf("accuracy tracking needs PostgreSQL (set DATABASE_URL and FEEDBACK_ENABLED or --backend postgres)")
	}

	zl := a.log.Zerolog()
	repo := feedback.NewRepository(a.db.Pool, zl)

	PrintHeader("Prediction Accuracy",
		fmt.Sprintf("Period    : %s ~ %s", from.Format(contracts.DateLayout), to.Format(contracts.DateLayout)),
	)

	if !accuracyReportOnly {
		reconciled, err := feedback.NewReconciler(repo, zl).Reconcile(ctx, from, to)
		if err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
		PrintInfo(fmt.Sprintf("Reconciled %d new predictions", len(reconciled)))
	}

	outcomes, err := repo.GetOutcomes(ctx, from, to)
	if err != nil {
		return fmt.Errorf("load outcomes: %w", err)
	}
	if len(outcomes) == 0 {
		PrintWarning("No reconciled predictions in this period")
		return nil
	}

	columns := []string{"KEY", "SAMPLES", "MAE", "MAPE", "HIT", "BIAS"}
	widths := []int{8, 8, 8, 8, 8, 8}
	fmt.Println()
	PrintTableHeader(columns, widths)

	reports := append([]*feedback.AccuracyReport{feedback.Summarize("ALL", outcomes)}, feedback.SummarizeByCategory(outcomes)...)
	for _, r := range reports {
		mape := "-"
		if r.MAPE != nil {
			mape = fmt.Sprintf("%.1f%%", *r.MAPE*100)
		}
		PrintTableRow([]string{
			r.Key,
			fmt.Sprintf("%d", r.SampleCount),
			fmt.Sprintf("%.2f", r.MAE),
			mape,
			fmt.Sprintf("%.1f%%", r.HitRate*100),
			fmt.Sprintf("%+.2f", r.MeanError),
		}, widths)
	}

	return nil
}
