package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/relmap/relmap/graph"
)

func newTreeCmd() *cobra.Command {
	var (
		depth     int
		relType   string
		class     string
		direction string
		impact    bool
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "tree <ci-name-or-sys_id>",
		Short: "Render the relationship tree of a CI",
		Long: `Walk the relationship graph starting at a CI and print it as an
indented tree. With --impact the walk goes upstream only, showing the CIs
that depend on the given one. Class filtering hides nodes from the output
but never stops the walk from passing through them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := graph.Options{
				Depth:       depth,
				Direction:   graph.Direction(direction),
				TypeFilter:  relType,
				ClassFilter: class,
				Impact:      impact,
			}
			w := graph.NewWalker(apiClient.Table, cliLog)
			ctx := context.Background()

			if jsonOut {
				sink := &graph.RecordSink{}
				if err := w.Walk(ctx, args[0], opts, sink); err != nil {
					return err
				}
				formatJSON(sink.Result())
				return nil
			}
			return w.Walk(ctx, args[0], opts, &graph.TreeSink{W: os.Stdout})
		},
	}

	cmd.Flags().IntVar(&depth, "depth", graph.DefaultDepth, "Max traversal depth (1-5)")
	cmd.Flags().StringVar(&relType, "type", "", "Only follow relationship types containing this substring")
	cmd.Flags().StringVar(&class, "class", "", "Only display CIs whose class contains this substring")
	cmd.Flags().StringVar(&direction, "direction", "both", "Traversal direction: upstream|downstream|both")
	cmd.Flags().BoolVar(&impact, "impact", false, "Impact analysis: walk upstream toward dependents")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Structured JSON output instead of tree text")
	return cmd
}
