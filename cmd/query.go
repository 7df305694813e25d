package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/readloom/readloom/config"
	"github.com/readloom/readloom/embedder"
	"github.com/readloom/readloom/retriever"
	"github.com/readloom/readloom/rewriter"
	"github.com/readloom/readloom/tokenizer"
	"github.com/readloom/readloom/vectorstore"
)

var (
	topKFlag     int
	minScoreFlag float32
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search your reading history",
	Long: `Rewrite the query, run the header pass to pick candidate documents, then
rank passages within them. Prints the cited context block.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if err := cfg.RequireEnv("PINECONE_API_KEY", "PINECONE_INDEX", "OPENAI_API_KEY"); err != nil {
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

		var rw rewriter.Rewriter = rewriter.Noop{}
		if cfg.Env.GeminiAPIKey != "" {
			rw, err = rewriter.NewGemini(ctx, cfg.Env.GeminiAPIKey, "", log)
			if err != nil {
				return err
			}
		} else {
			log.Warn().Msg("GEMINI_API_KEY not set, querying without rewrite")
		}

		r := retriever.New(store, emb, rw, cfg.Retriever, log)
		results, err := r.Search(ctx, args[0], topKFlag, minScoreFlag)
		if err != nil {
			return err
		}

		formatted, hasSources := retriever.FormatContext(results)
		if !hasSources {
			fmt.Println("No matching notes.")
			return nil
		}
		fmt.Print(formatted)
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&topKFlag, "top-k", 0, "number of passages to return")
	queryCmd.Flags().Float32Var(&minScoreFlag, "min-score", 0, "minimum passage score")
	rootCmd.AddCommand(queryCmd)
}
