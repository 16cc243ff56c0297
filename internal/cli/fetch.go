package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cupscan/internal/collector"
	"cupscan/internal/models"
)

type fetchResult struct {
	Symbol string `json:"symbol"`
	Bars   int    `json:"bars"`
	Error  string `json:"error,omitempty"`
}

// newFetchCmd performs a one-shot collection pass.
func newFetchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [symbol...]",
		Short: "Fetch and store the latest bars",
		Long: `Fetch intraday bars from Yahoo Finance for the given symbols (all
watched symbols by default) and replace the stored window for each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			symbols, err := resolveSymbols(args, app.Config.Collector.Watchlist())
			if err != nil {
				return err
			}

			client := collector.NewYahooClient(app.Config.Collector.RequestTimeout)
			col := collector.NewCollector(client, app.Store, app.Logger, collector.Options{
				Symbols:  symbols,
				Interval: app.Config.Collector.BarInterval,
				Lookback: app.Config.Collector.Lookback,
				Retries:  app.Config.Collector.MaxRetries,
			})

			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
			defer cancel()

			results := make([]fetchResult, 0, len(symbols))
			failed := 0
			for _, symbol := range symbols {
				bars, err := col.CollectSymbol(ctx, symbol)
				if err != nil {
					failed++
					results = append(results, fetchResult{Symbol: symbol, Error: err.Error()})
					if !output.IsJSON() {
						output.Error("✗ %-6s %v", symbol, err)
					}
					continue
				}
				results = append(results, fetchResult{Symbol: symbol, Bars: bars})
				if !output.IsJSON() {
					output.Success("✓ %-6s %d bars stored", symbol, bars)
				}
			}

			if output.IsJSON() {
				return output.JSON(results)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d symbols failed", failed, len(symbols))
			}
			return nil
		},
	}
}

// resolveSymbols normalizes the requested symbols against the watchlist,
// falling back to the full watchlist when none are given.
func resolveSymbols(args []string, watchlist []string) ([]string, error) {
	if len(args) == 0 {
		return watchlist, nil
	}

	watched := make(map[string]bool, len(watchlist))
	for _, s := range watchlist {
		watched[s] = true
	}

	symbols := make([]string, 0, len(args))
	for _, arg := range args {
		symbol := strings.ToUpper(strings.TrimSpace(arg))
		if !watched[symbol] && !models.IsWatched(symbol) {
			return nil, fmt.Errorf("invalid stock symbol '%s'", symbol)
		}
		symbols = append(symbols, symbol)
	}
	return symbols, nil
}
