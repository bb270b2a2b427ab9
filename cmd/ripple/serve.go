package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ripple/internal/demo"
	"github.com/vango-dev/ripple/pkg/reactive"
	"github.com/vango-dev/ripple/pkg/server"
	"github.com/vango-dev/ripple/pkg/vdom"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		interval time.Duration
		seed     uint64
		items    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo board",
		Long: `Serve the demo board over HTTP.

The board mutates every --interval. Open / for the current HTML, or
connect a websocket to /ws to receive the init frame and every ops
frame after it.

Examples:
  ripple serve
  ripple serve --addr=0.0.0.0:9000 --interval=250ms
  RIPPLE_ADDR=:8081 ripple serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg)

			var board *demo.Board
			srv, err := server.New(cfg, func(rt *reactive.Runtime) *vdom.VNode {
				board = demo.New(rt, seed, items)
				return board.View()
			}, server.WithLogger(logger))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if interval > 0 {
				go tick(ctx, srv, board, interval)
			}

			success(cmd.OutOrStdout(), "Serving on http://%s", cfg.Server.Addr)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "Time between board mutations, 0 to disable")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Seed for the board's mutations")
	cmd.Flags().IntVarP(&items, "items", "n", 5, "Initial number of items")

	return cmd
}

// tick steps the board on the runtime loop until ctx is done.
func tick(ctx context.Context, srv *server.Server, board *demo.Board, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !srv.Dispatch(board.Step) {
				srv.Logger().Warn("task queue full, skipping step")
			}
		}
	}
}
