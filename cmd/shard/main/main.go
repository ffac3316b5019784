package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/shard/cmd/shard"
	"github.com/arthur-debert/shard/pkg/output/styles"
)

func main() {
	rootCmd := shard.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		errorStyle := styles.Default().Get("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
