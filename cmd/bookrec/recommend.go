package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/engine"
)

const methodHybrid = "hybrid"

var recommendFlags struct {
	user   string
	book   string
	prefs  string
	n      int
	method string
	merged bool
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run a single recommendation query and print JSON",
	Long: `Build a snapshot from the configured data source and run one query.

--method selects content_based, collaborative, ai_enhanced or hybrid (default).
Single methods print a list; hybrid prints one list per method, or with --merged
a single list deduplicated by book id (content first, then collaborative, then
keyword expansion).

Example:
  bookrec recommend --book 64b7f0c2a1b2c3d4e5f60718 --n 3 --method content_based
  bookrec recommend --user u1 --prefs "space opera with politics"`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	f := recommendCmd.Flags()
	f.StringVar(&recommendFlags.user, "user", "", "user id")
	f.StringVar(&recommendFlags.book, "book", "", "book id")
	f.StringVar(&recommendFlags.prefs, "prefs", "", "free-text reading preferences")
	f.IntVar(&recommendFlags.n, "n", 0, "number of recommendations per method (default recommend.default_n)")
	f.StringVar(&recommendFlags.method, "method", methodHybrid, "content_based | collaborative | ai_enhanced | hybrid")
	f.BoolVar(&recommendFlags.merged, "merged", false, "hybrid only: print one deduplicated list")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	flags := recommendFlags
	flags.method = strings.ToLower(strings.TrimSpace(flags.method))
	if err := checkRecommendFlags(flags.method, flags.user, flags.book, flags.prefs, flags.n); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close(ctx)
	ctx = a.log.WithContext(ctx)
	if !cmd.Flags().Changed("n") {
		flags.n = a.cfg.Recommend.DefaultN
	}

	var out any
	switch flags.method {
	case core.MethodContentBased:
		out = a.engine.GetContentBased(ctx, flags.book, flags.n)
	case core.MethodCollaborative:
		out = a.engine.GetCollaborative(ctx, flags.user, flags.n)
	case core.MethodAIEnhanced:
		out = a.engine.GetKeywordExpanded(ctx, flags.prefs, flags.n)
	default:
		res := a.engine.GetHybrid(ctx, engine.HybridRequest{
			UserID:      flags.user,
			BookID:      flags.book,
			Preferences: flags.prefs,
			N:           flags.n,
		})
		out = res
		if flags.merged {
			out = res.Merge()
		}
	}
	return printJSON(os.Stdout, out)
}

// checkRecommendFlags 校验方法名与该方法所需的输入。
func checkRecommendFlags(method, user, book, prefs string, n int) error {
	invalid := func(msg string) error {
		return core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, msg)
	}
	if n < 0 {
		return invalid("--n must not be negative")
	}
	switch method {
	case core.MethodContentBased:
		if book == "" {
			return invalid("--book is required for content_based")
		}
	case core.MethodCollaborative:
		if user == "" {
			return invalid("--user is required for collaborative")
		}
	case core.MethodAIEnhanced:
		if strings.TrimSpace(prefs) == "" {
			return invalid("--prefs is required for ai_enhanced")
		}
	case methodHybrid:
		if user == "" && book == "" && strings.TrimSpace(prefs) == "" {
			return invalid("hybrid needs at least one of --user, --book, --prefs")
		}
	default:
		return invalid(fmt.Sprintf("unknown method %q", method))
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
