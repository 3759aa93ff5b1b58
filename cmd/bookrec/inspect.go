package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/index"
	"github.com/rushteam/bookrec/source"
)

var inspectLimit int

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect the configured data source",
	Long: `Read-only debug views over the configured data source. None of these
commands call the LLM or touch the cache.`,
}

var inspectBooksCmd = &cobra.Command{
	Use:   "books",
	Short: "List books as the engine sees them (normalized ids)",
	Args:  cobra.NoArgs,
	RunE: withSource(func(ctx context.Context, src source.Source, _ []string) (any, error) {
		books, err := src.ListBooks(ctx)
		if err != nil {
			return nil, err
		}
		return limit(books, inspectLimit), nil
	}),
}

var inspectRatingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "List rating entries as the engine sees them",
	Args:  cobra.NoArgs,
	RunE: withSource(func(ctx context.Context, src source.Source, _ []string) (any, error) {
		ratings, err := src.ListRatings(ctx)
		if err != nil {
			return nil, err
		}
		return limit(ratings, inspectLimit), nil
	}),
}

var inspectBookCmd = &cobra.Command{
	Use:   "book <id>",
	Short: "Show one book and the ratings it received",
	Long: `Resolve a book id the same way the API does (canonical string, then the
ObjectId and integer forms) and print the book with its ratings.`,
	Args: cobra.ExactArgs(1),
	RunE: withSource(func(ctx context.Context, src source.Source, args []string) (any, error) {
		snap, err := buildSnapshot(ctx, src)
		if err != nil {
			return nil, err
		}
		i, ok := snap.Corpus.Lookup(args[0])
		if !ok {
			return nil, core.NewDomainError(core.ModuleSource, core.ErrorCodeNotFound, "book "+args[0]+" not found")
		}
		book := snap.Corpus.Book(i)

		ratings := map[string]float64{}
		for u := 0; u < snap.Matrix.Len(); u++ {
			user := snap.Matrix.User(u)
			if snap.Matrix.Rated(user, book.ID) {
				ratings[user] = snap.Matrix.Rating(user, book.ID)
			}
		}
		return struct {
			Book    *core.Book         `json:"book"`
			Ratings map[string]float64 `json:"ratings"`
		}{book, ratings}, nil
	}),
}

var inspectStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Build a snapshot without the LLM and print its stats",
	Args:  cobra.NoArgs,
	RunE: withSource(func(ctx context.Context, src source.Source, _ []string) (any, error) {
		snap, err := buildSnapshot(ctx, src)
		if err != nil {
			return nil, err
		}
		return snap.Stats(), nil
	}),
}

func init() {
	inspectCmd.PersistentFlags().IntVar(&inspectLimit, "limit", 0, "max entries to print (0 = all)")
	inspectCmd.AddCommand(inspectBooksCmd, inspectRatingsCmd, inspectBookCmd, inspectStatsCmd)
	rootCmd.AddCommand(inspectCmd)
}

// withSource 打开数据源执行 fn，把结果以 JSON 打印到 stdout。
func withSource(fn func(ctx context.Context, src source.Source, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		out, err := fn(a.log.WithContext(ctx), a.src, args)
		if err != nil {
			return err
		}
		return printJSON(os.Stdout, out)
	}
}

func buildSnapshot(ctx context.Context, src source.Source) (*index.Snapshot, error) {
	books, err := src.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	ratings, err := src.ListRatings(ctx)
	if err != nil {
		return nil, err
	}
	return index.Build(books, ratings, index.Options{}, 1), nil
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
