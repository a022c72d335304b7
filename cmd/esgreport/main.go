package main

import (
	"os"

	"github.com/wonny/esgreport/cmd/esgreport/commands"
)

// main is the entry point for the esgreport CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/esgreport [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
