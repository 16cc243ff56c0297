package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cupscan/internal/api"
	"cupscan/internal/collector"
	"cupscan/internal/scheduler"
)

// newServeCmd runs the collector, scheduler and HTTP API together.
func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the collector and HTTP API",
		Long: `Start the long-running service: periodic bar collection on a cron
schedule plus the HTTP API for pattern queries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			once, _ := cmd.Flags().GetBool("once")

			client := collector.NewYahooClient(app.Config.Collector.RequestTimeout)
			col := collector.NewCollector(client, app.Store, app.Logger, collector.Options{
				Symbols:  app.Config.Collector.Watchlist(),
				Interval: app.Config.Collector.BarInterval,
				Lookback: app.Config.Collector.Lookback,
				Retries:  app.Config.Collector.MaxRetries,
			})

			sched := scheduler.NewScheduler(col, app.Logger, app.Config.Collector.MarketHoursOnly)
			if app.Config.Collector.Enabled {
				if err := sched.Register(app.Config.Collector.Schedule); err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()
			}
			if once {
				go sched.RunNow()
			}

			server := api.NewServer(app.Config.Server, app.Store, app.Detector, app.Logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				app.Logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
			}

			ctx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}

	cmd.Flags().Bool("once", false, "run a collection pass immediately on start")

	return cmd
}
