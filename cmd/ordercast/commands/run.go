package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	runDate string
	runJSON bool
)

// runCmd 전 점포 배치 예측 1회
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "점포 전체 발주량 예측 (1회)",
	Long: `설정된 점포의 모든 상품에 대해 발주 수량을 예측합니다.

점포는 병렬, 점포 내 상품은 순차로 처리합니다.
한 점포가 실패해도 나머지 점포는 계속 진행하며, 종료 코드로 실패를 알립니다.

Example:
  go run ./cmd/ordercast --demo run
  go run ./cmd/ordercast run --stores 46513,46704 --date 2026-03-02
  go run ./cmd/ordercast run --json`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "target date YYYY-MM-DD (default: today)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the run summary as JSON")
}

func runBatch(cmd *cobra.Command, args []string) error {
	target, err := parseDate(runDate)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if len(a.stores) == 0 {
		PrintWarning("No stores configured (use --stores or STORE_IDS)")
		return nil
	}

	summary, runErr := a.runner.Run(ctx, a.stores, target)
	if runJSON {
		if err := PrintJSON(summary); err != nil {
			return err
		}
	} else {
		printSummary(summary)
	}

	if runErr != nil {
		return fmt.Errorf("order prediction run: %w", runErr)
	}
	return nil
}
