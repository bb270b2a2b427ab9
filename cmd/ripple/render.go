package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ripple/internal/demo"
	"github.com/vango-dev/ripple/pkg/host/memhost"
	"github.com/vango-dev/ripple/pkg/reactive"
	"github.com/vango-dev/ripple/pkg/vdom"
)

func renderCmd() *cobra.Command {
	var (
		seed  uint64
		items int
		steps int
		stats bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the demo board's HTML",
		Long: `Render the demo board, apply --steps random mutations, and print
the resulting HTML. The same seed always prints the same board.

Examples:
  ripple render
  ripple render --seed=7 --steps=20 --stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			rt := reactive.NewRuntime(reactive.WithLogger(newLogger(cmd.ErrOrStderr(), cfg)))
			h := memhost.New()
			r := vdom.NewRenderer(h,
				vdom.WithRuntime(rt),
				vdom.WithStrictKeys(cfg.Renderer.StrictKeys),
			)

			board := demo.New(rt, seed, items)
			r.Render(board.View(), h.Root())
			rt.Tick()
			mounted := len(h.Ops())

			for range steps {
				board.Step()
				rt.Tick()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, h.HTML())
			if stats {
				info(out, "items: %d (%d done)", len(board.Items()), board.Done())
				info(out, "mount ops: %d, patch ops: %d", mounted, len(h.Ops())-mounted)
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 1, "Seed for the board's items and mutations")
	cmd.Flags().IntVarP(&items, "items", "n", 5, "Initial number of items")
	cmd.Flags().IntVar(&steps, "steps", 0, "Random mutations to apply before printing")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print item and op counts after the HTML")

	return cmd
}
