package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"cupscan/internal/errors"
	"cupscan/internal/logging"
	"cupscan/internal/models"
	"cupscan/internal/store"
	"cupscan/pkg/utils"
)

// Options configures a Collector. Zero values fall back to the built-in
// watchlist and the standard 5-minute bars over a 3-day window.
type Options struct {
	Symbols  []string
	Interval string
	Lookback string
	Retries  int
}

// Collector walks the watchlist, fetches a fresh lookback window for each
// symbol and swaps it into the store.
type Collector struct {
	client   *YahooClient
	store    store.PriceStore
	logger   zerolog.Logger
	symbols  []string
	interval string
	lookback string
	retry    utils.RetryConfig
	breaker  *Breaker
}

// NewCollector creates a collector over the given client and store.
func NewCollector(client *YahooClient, st store.PriceStore, logger zerolog.Logger, opts Options) *Collector {
	symbols := opts.Symbols
	if len(symbols) == 0 {
		symbols = models.WatchedSymbols()
	}
	interval := opts.Interval
	if interval == "" {
		interval = "5m"
	}
	lookback := opts.Lookback
	if lookback == "" {
		lookback = "3d"
	}

	retry := utils.DefaultRetryConfig()
	if opts.Retries > 0 {
		retry.MaxAttempts = opts.Retries
	}

	return &Collector{
		client:   client,
		store:    st,
		logger:   logging.WithComponent(logger, "collector"),
		symbols:  symbols,
		interval: interval,
		lookback: lookback,
		retry:    retry,
		breaker:  NewBreaker(5, 2, 30*time.Second),
	}
}

// Symbols returns the watchlist this collector refreshes.
func (c *Collector) Symbols() []string {
	out := make([]string, len(c.symbols))
	copy(out, c.symbols)
	return out
}

// CollectSymbol fetches a fresh window for one symbol and swaps it into
// the store, returning the number of bars stored.
func (c *Collector) CollectSymbol(ctx context.Context, symbol string) (int, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.Warn().Str("symbol", symbol).Msg("Skipping fetch, upstream suspended")
		return 0, err
	}

	start := time.Now()

	bars, err := utils.RetryWithResult(ctx, c.retry, func() ([]models.Bar, error) {
		return c.client.FetchBars(ctx, symbol, c.interval, c.lookback)
	})
	logging.LogFetch(c.logger, symbol, len(bars), time.Since(start), err)
	if err != nil {
		c.breaker.RecordFailure()
		return 0, err
	}
	c.breaker.RecordSuccess()
	if len(bars) == 0 {
		// Keep the previous window rather than wiping it on a dry fetch.
		return 0, errors.NewDataError("bars", symbol, "empty window returned", errors.ErrNoData)
	}

	if err := c.store.ReplaceBars(ctx, symbol, bars); err != nil {
		return 0, err
	}
	return len(bars), nil
}

// Collect refreshes every watched symbol. A failing symbol does not stop
// the walk; the returned error reports how many symbols failed.
func (c *Collector) Collect(ctx context.Context) error {
	var failed int
	for _, symbol := range c.symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := c.CollectSymbol(ctx, symbol); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return errors.Wrapf(errors.ErrFetchFailed, "%d of %d symbols failed", failed, len(c.symbols))
	}
	return nil
}
