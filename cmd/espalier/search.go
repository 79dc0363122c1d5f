package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/pkg/domain"
)

var searchCmd = &cobra.Command{
	Use:   "search <term> [dir]",
	Short: "Search the states reachable from a term for a pattern",
	Long: `Explores the rewrite graph of a term breadth-first and reports the states
matching --pattern, with their substitutions.

Search types:
- =>1 (ONE_STEP): exactly one rewrite
- =>+ (AT_LEAST_ONE_STEP): one or more rewrites
- =>* (ANY_STEPS, default): zero or more rewrites
- =>! (NORMAL_FORM): states where no rule applies`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, opts, err := buildOptions(cmd, args[1:])
		if err != nil {
			return err
		}
		var st domain.SearchType
		if err := st.UnmarshalText([]byte(v.GetString("type"))); err != nil {
			return err
		}
		req := domain.SearchRequest{
			Initial:   args[0],
			Pattern:   v.GetString("pattern"),
			Type:      st,
			MaxDepth:  v.GetInt("max-depth"),
			Strategy:  v.GetString("strategy"),
			Condition: v.GetString("condition"),
		}
		so := cli.SearchOptions{Limit: v.GetInt("limit"), Save: v.GetBool("save")}
		p := newPrinter(opts)
		if v.GetBool("watch") {
			return cli.RunWatch(opts, os.Stdout, cli.SearchJob(opts, req, so, p))
		}
		return cli.RunSearch(cmd.Context(), opts, req, so, p)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	f := searchCmd.Flags()
	f.StringP("pattern", "p", "", "Pattern the reached states must match")
	f.StringP("type", "t", domain.AnySteps.String(), "Search type, by name or arrow")
	f.IntP("max-depth", "d", 0, "Maximum rewrite depth (0 means unbounded)")
	f.StringP("strategy", "s", "", "Only follow rewrites allowed by this strategy")
	f.StringP("condition", "c", "", "Extra condition on solutions, e.g. X = a /\\ Y : S")
	f.IntP("limit", "n", 0, "Report at most this many solutions (0 means all)")
	f.Bool("save", false, "Save the explored graph as a session")
	f.BoolP("watch", "w", false, "Re-run whenever the modules change")
	_ = searchCmd.MarkFlagRequired("pattern")
}
