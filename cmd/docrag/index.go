package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func indexCMD(cfgPath *string) *cobra.Command {
	var (
		dataset, sourceDir, separator string
		chunkSize, maxChunks          int
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild a dataset from a folder of documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("dataset") {
				cfg.Index.Dataset = dataset
			}
			if flags.Changed("source-dir") {
				cfg.Index.SourceDir = sourceDir
			}
			if flags.Changed("chunk-size") {
				cfg.Chunker.ChunkSize = chunkSize
			}
			if flags.Changed("chunk-separator") {
				cfg.Chunker.ChunkSeparator = separator
			}
			if flags.Changed("max-chunks-per-index") {
				cfg.Index.MaxChunksPerIndex = maxChunks
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			docs, chunks, err := a.service.IndexDataset(cmd.Context(), a.indexRequest())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d documents into %d chunks (dataset %q)\n", docs, chunks, a.cfg.Index.Dataset)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "dataset name")
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "folder of documents to index")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "maximum chunk length in characters")
	cmd.Flags().StringVar(&separator, "chunk-separator", "", "preferred split point inside documents")
	cmd.Flags().IntVar(&maxChunks, "max-chunks-per-index", 0, "chunks per index shard")
	return cmd
}
