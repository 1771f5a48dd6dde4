package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	backend  string
	storeIDs []string
	demo     bool
	verbose  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ordercast",
	Short: "ordercast - 점포 단품 발주량 예측 엔진",
	Long: `ordercast Unified CLI

점포별 일 판매 이력으로 단품 발주 수량을 예측합니다.
피처 추출 → 카테고리 전략 → 행사/연관 보정 → 발주 단위 올림.

Usage:
  go run ./cmd/ordercast [command]

Examples:
  go run ./cmd/ordercast --demo predict 8801
  go run ./cmd/ordercast --demo explain 8805
  go run ./cmd/ordercast run --stores 46513,46704
  go run ./cmd/ordercast serve --with-scheduler
  go run ./cmd/ordercast categories`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "store backend override (postgres|sqlite|memory)")
	rootCmd.PersistentFlags().StringSliceVar(&storeIDs, "stores", nil, "store ids (default STORE_IDS)")
	rootCmd.PersistentFlags().BoolVar(&demo, "demo", false, "use the built-in demo store (memory backend)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
