package app

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/blackwell-systems/ghubbattery/internal/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"mcp"},
	Short:   "Serve battery data to plugins over MCP stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout. Plugins such as a
Stream Deck action call get_all_devices and get_battery_stats; the battery
snapshot is refreshed in the background on the configured interval.

Logs go to stderr so they never interleave with protocol messages.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()

	cache := newCache(cfg, log)
	srv := mcp.NewServer(cache, appVersion, log.WithField("component", "mcp"))

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, cancelServe := context.WithCancel(gctx)
	defer cancelServe()

	g.Go(func() error {
		err := cache.Run(serveCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		// stdin closing ends the session; stop the refresh loop with it.
		defer cancelServe()
		return srv.Run(serveCtx, os.Stdin, os.Stdout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Debug("mcp server stopped")
	return nil
}
