package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/schemarag/internal/rag"
)

var (
	askTopK        int
	askShowContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Generate SQL for a natural-language request",
	Long: `Ask embeds the request, retrieves the most similar stored tables and has the
chat model write SQL against them. The SQL is printed to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "Number of tables to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "Print the retrieved table context to stderr")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := newModelClient()
	if err != nil {
		return err
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	topK := cfg.Search.TopK
	if askTopK > 0 {
		topK = askTopK
	}

	asker := &rag.Asker{
		Embedder:  client,
		Store:     st,
		Generator: client,
		Retrier:   newRetrier(),
		Logger:    logger,
		TopK:      topK,
	}

	answer, err := asker.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if len(answer.Tables) == 0 {
		warn("no tables in %s; run ingest first", cfg.Store.Path)
	}
	for _, m := range answer.Tables {
		status("%s (%.3f)", m.ID, m.Score)
	}
	if askShowContext {
		fmt.Fprintln(cmd.ErrOrStderr(), answer.Context)
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer.SQL)
	return nil
}
