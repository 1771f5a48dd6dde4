package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/predictor"
	"github.com/wonny/ordercast/internal/runner"
)

var (
	predictStore    string
	predictDate     string
	predictStock    float64
	predictPending  float64
	predictCategory string
	predictJSON     bool
)

// predictCmd 단품 발주량 예측
var predictCmd = &cobra.Command{
	Use:   "predict <item_id>",
	Short: "단품 발주 수량 예측",
	Long: `단품 1건의 발주 수량을 예측합니다.

재고(--stock/--pending)를 지정하지 않으면 저장소의 재고 현황을 사용하고,
없으면 마지막 마감 재고를 사용합니다.

Example:
  go run ./cmd/ordercast --demo predict 8801
  go run ./cmd/ordercast predict 8801 --store 46513 --date 2026-03-02 --stock 4
  go run ./cmd/ordercast --demo predict 8805 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

// explainCmd 예측 근거 설명
var explainCmd = &cobra.Command{
	Use:   "explain <item_id>",
	Short: "발주 수량 계산 근거 출력",
	Long: `단품 예측의 단계별 계산 근거(블렌딩, 요일 계수, 보정 배수,
안전재고, 행사/연관 보정, 상한)를 출력합니다.

Example:
  go run ./cmd/ordercast --demo explain 8805
  go run ./cmd/ordercast explain 8801 --store 46513`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(explainCmd)

	for _, c := range []*cobra.Command{predictCmd, explainCmd} {
		c.Flags().StringVar(&predictStore, "store", "", "store id (default: first configured store)")
		c.Flags().StringVar(&predictDate, "date", "", "target date YYYY-MM-DD (default: today)")
		c.Flags().Float64Var(&predictStock, "stock", 0, "current stock override")
		c.Flags().Float64Var(&predictPending, "pending", 0, "pending (ordered, not received) quantity")
		c.Flags().StringVar(&predictCategory, "category", "", "category id (default: item master)")
	}
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "print the full result as JSON")
}

func runPredict(cmd *cobra.Command, args []string) error {
	res, err := predictOne(cmd, args[0])
	if err != nil {
		return err
	}

	if predictJSON {
		return PrintJSON(res)
	}

	PrintHeader("Order Prediction",
		fmt.Sprintf("Store     : %s", res.StoreID),
		fmt.Sprintf("Item      : %s (category %s)", res.ItemID, res.CategoryID),
		fmt.Sprintf("Target    : %s", res.TargetDate.Format(contracts.DateLayout)),
	)
	printResults([]*contracts.PredictionResult{res})
	fmt.Println()
	PrintSuccess(fmt.Sprintf("Order %d (unit %d, confidence %s)", res.OrderQty, res.OrderUnit, res.Confidence))
	if res.SkipReason != "" {
		PrintInfo("Skipped: " + res.SkipReason)
	}
	return nil
}

func runExplain(cmd *cobra.Command, args []string) error {
	res, err := predictOne(cmd, args[0])
	if err != nil {
		return err
	}
	fmt.Println(predictor.Explain(res))
	return nil
}

// predictOne 플래그로 조회 조건을 만들어 1건 예측
func predictOne(cmd *cobra.Command, itemID string) (*contracts.PredictionResult, error) {
	target, err := parseDate(predictDate)
	if err != nil {
		return nil, err
	}

	ctx := commandContext(cmd)

	a, err := newApp(ctx)
	if err != nil {
		return nil, err
	}
	defer a.close()

	storeID := predictStore
	if storeID == "" {
		storeID = a.defaultStore()
	}
	if storeID == "" {
		return nil, fmt.Errorf("no store given (use --store, --stores or STORE_IDS)")
	}

	q := runner.ItemQuery{
		StoreID:    storeID,
		ItemID:     itemID,
		CategoryID: predictCategory,
		TargetDate: target,
	}
	if cmd.Flags().Changed("stock") || cmd.Flags().Changed("pending") {
		q.Inventory = &contracts.Inventory{ItemID: itemID, Stock: predictStock, PendingQty: predictPending}
	}

	res, err := a.runner.PredictItem(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("predict %s/%s: %w", storeID, itemID, err)
	}
	return res, nil
}
