package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/readloom/readloom/chunker"
	"github.com/readloom/readloom/config"
	"github.com/readloom/readloom/embedder"
	"github.com/readloom/readloom/ingest"
	"github.com/readloom/readloom/reader"
	"github.com/readloom/readloom/tokenizer"
	"github.com/readloom/readloom/vectorstore"
)

var (
	updatedAfterFlag string
	forceFlag        bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync reading history into the vector index",
	Long: `Page the Readwise Reader API across all reading locations, build the
corpus-wide TF-IDF model, and upsert one super-header vector plus semantic
chunk vectors per document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if err := cfg.RequireEnv("READWISE_TOKEN", "PINECONE_API_KEY", "PINECONE_INDEX", "OPENAI_API_KEY"); err != nil {
			return err
		}

		ctx := context.Background()

		counter, err := tokenizer.NewCounter()
		if err != nil {
			return err
		}
		store, err := vectorstore.NewPinecone(ctx, cfg.Env.PineconeAPIKey, cfg.Env.PineconeIndex, log)
		if err != nil {
			return err
		}
		emb := embedder.NewOpenAI(cfg.Env.OpenAIAPIKey, cfg.Embedding.Model, cfg.Embedding.Dimension, counter, log)
		ch := chunker.New(cfg.Chunker, emb, counter, log)
		rd := reader.New(cfg.Env.ReadwiseToken, cfg.Reader.BaseURL, log)

		updatedAfter := updatedAfterFlag
		if updatedAfter == "" {
			updatedAfter = cfg.Env.LastSyncTime
		}

		pipeline := ingest.New(rd, store, emb, ch, counter, cfg.Sparse.MaxTerms, log)
		stats, err := pipeline.Sync(ctx, ingest.Options{
			UpdatedAfter: updatedAfter,
			Force:        forceFlag,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Synced %d documents (%d chunks), skipped %d existing, %d failed\n",
			stats.Processed, stats.Chunks, stats.Skipped, stats.Failed)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&updatedAfterFlag, "updated-after", "", "only fetch documents updated after this ISO-8601 timestamp")
	syncCmd.Flags().BoolVar(&forceFlag, "force", false, "bypass existing-id dedup and reprocess everything")
	rootCmd.AddCommand(syncCmd)
}
