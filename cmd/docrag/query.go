package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docrag/internal/tui"
)

func queryCMD(cfgPath *string) *cobra.Command {
	var (
		dataset, question string
		topK              int
		timeout           time.Duration
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Answer a question from an indexed dataset; opens an interactive session without --question",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dataset") {
				cfg.Index.Dataset = dataset
			}
			if cmd.Flags().Changed("top-k") {
				cfg.Retrieval.TopK = topK
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			if question == "" {
				m := tui.New(a.service, cfg.Index.Dataset, cfg.Retrieval.TopK, timeout)
				_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
				return err
			}

			answer, chunks, err := a.service.AnswerQuestion(cmd.Context(), question, cfg.Retrieval.TopK)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, answer)
			if len(chunks) > 0 {
				fmt.Fprintln(out, "\nSources:")
				for _, c := range chunks {
					fmt.Fprintf(out, "  %s (chunk %d)\n", c.Source, c.ChunkID)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "dataset name")
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to answer")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of chunks to ground the answer on (1-10)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "per-question deadline in interactive mode")
	return cmd
}
