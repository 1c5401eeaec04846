package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docrag/internal/domain"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	root := &cobra.Command{
		Use:           "docrag",
		Short:         "Index a document folder and answer questions about it",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config file (default ./config.yaml or ~/.config/docrag/config.yaml)")

	root.AddCommand(indexCMD(&cfgPath), queryCMD(&cfgPath), serveCMD(&cfgPath))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error category to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrLLMRateLimit):
		return 2
	case errors.Is(err, domain.ErrLLMAuthentication):
		return 3
	case errors.Is(err, domain.ErrLLMInvalidRequest):
		return 4
	case errors.Is(err, domain.ErrLLMUnavailable):
		return 5
	case errors.Is(err, domain.ErrLLM):
		return 6
	default:
		return 1
	}
}
