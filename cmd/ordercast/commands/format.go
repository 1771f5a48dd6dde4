package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/wonny/ordercast/internal/contracts"
	"github.com/wonny/ordercast/internal/runner"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader 커맨드 머리말
func PrintHeader(title string, lines ...string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	if len(lines) > 0 {
		PrintSeparator()
		for _, l := range lines {
			fmt.Printf("  %s\n", l)
		}
	}
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintJSON 들여쓰기 JSON 출력
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2
		}
	}
	fmt.Println(strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// parseDate YYYY-MM-DD, 빈 값이면 오늘
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return today(), nil
	}
	t, err := time.Parse(contracts.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

var resultColumns = []string{"ITEM", "CATEGORY", "STRATEGY", "PRED", "SAFETY", "STOCK", "PENDING", "ORDER", "CONF", "PATH"}
var resultWidths = []int{8, 8, 18, 7, 7, 7, 7, 6, 6, 28}

// printResults 예측 결과 표
func printResults(results []*contracts.PredictionResult) {
	PrintTableHeader(resultColumns, resultWidths)
	for _, r := range results {
		PrintTableRow([]string{
			r.ItemID,
			r.CategoryID,
			r.Strategy,
			fmt.Sprintf("%.2f", r.AdjustedPrediction),
			fmt.Sprintf("%.2f", r.SafetyStock),
			fmt.Sprintf("%.0f", r.CurrentStock),
			fmt.Sprintf("%.0f", r.PendingQty),
			fmt.Sprintf("%d", r.OrderQty),
			string(r.Confidence),
			r.ModelPath,
		}, resultWidths)
	}
}

// printSummary 배치 실행 요약
func printSummary(s *runner.Summary) {
	PrintHeader("Order Prediction Run",
		fmt.Sprintf("Run ID    : %s", s.RunID),
		fmt.Sprintf("Target    : %s", s.TargetDate.Format(contracts.DateLayout)),
		fmt.Sprintf("Stores    : %d", len(s.Stores)),
	)

	for _, st := range s.Stores {
		fmt.Println()
		if st.Error != "" {
			PrintError(fmt.Sprintf("Store %s: %s", st.StoreID, st.Error))
		} else {
			fmt.Printf("[Store %s] %d/%d items, order total %d (%s)\n",
				st.StoreID, len(st.Results), st.Requested, st.OrderTotal, st.Duration.Round(time.Millisecond))
		}
		if len(st.Results) > 0 {
			printResults(st.Results)
		}
		if len(st.Failed) > 0 {
			ids := make([]string, 0, len(st.Failed))
			for id := range st.Failed {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Printf("  ✗ %s: %s\n", id, st.Failed[id])
			}
		}
	}

	fmt.Println()
	PrintSeparator()
	fmt.Printf("  Predicted : %d\n", s.Predicted())
	fmt.Printf("  Duration  : %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
	PrintSeparator()
}
