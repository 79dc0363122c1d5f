package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
	"github.com/aretw0/espalier/pkg/domain"
)

// newRewriteCmd builds one of the reduce/rewrite commands. They share their
// flags and differ in the mode.
func newRewriteCmd(mode domain.RewriteMode, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(mode) + " <term> [dir]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, opts, err := buildOptions(cmd, args[1:])
			if err != nil {
				return err
			}
			req := domain.RewriteRequest{
				Term:     args[0],
				Mode:     mode,
				Bound:    v.GetInt("bound"),
				Strategy: v.GetString("strategy"),
			}
			p := newPrinter(opts)
			if v.GetBool("watch") {
				return cli.RunWatch(opts, os.Stdout, cli.RewriteJob(req, p))
			}
			return cli.RunRewrite(cmd.Context(), opts, req, p)
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "Re-run whenever the modules change")
	switch mode {
	case domain.ModeFRewrite, domain.ModeERewrite:
		cmd.Flags().IntP("bound", "b", 0, "Maximum number of rewrites (0 means no bound)")
	case domain.ModeSRewrite:
		cmd.Flags().IntP("bound", "b", 0, "Maximum number of solutions (0 means all)")
		cmd.Flags().StringP("strategy", "s", "", "Strategy expression to apply")
		_ = cmd.MarkFlagRequired("strategy")
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(
		newRewriteCmd(domain.ModeReduce, "Reduce a term to normal form with the equations"),
		newRewriteCmd(domain.ModeRewrite, "Reduce a term, then apply one rule"),
		newRewriteCmd(domain.ModeFRewrite, "Rewrite a term with the rules, fairly across positions"),
		newRewriteCmd(domain.ModeERewrite, "Rewrite a term until no rule applies"),
		newRewriteCmd(domain.ModeSRewrite, "Apply a strategy to a term and list its results"),
	)
}
