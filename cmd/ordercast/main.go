package main

import (
	"os"

	"github.com/wonny/ordercast/cmd/ordercast/commands"
)

// main is the entry point for the ordercast CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/ordercast [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
