package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cupscan/internal/analysis/patterns"
	"cupscan/internal/models"
	"cupscan/pkg/utils"
)

type scanResult struct {
	models.DetectionResult
	LastClose   float64          `json:"last_close,omitempty"`
	Change      float64          `json:"change_percent,omitempty"`
	LastVolume  int64            `json:"last_volume,omitempty"`
	MatchPoints []patterns.Match `json:"match_points,omitempty"`
}

// newScanCmd runs detection over stored closes.
func newScanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [symbol...]",
		Short: "Scan stored closes for the cup-and-handle pattern",
		Long: `Run cup-and-handle detection over the stored closing prices of the
given symbols (all watched symbols by default).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireStore(app); err != nil {
				return err
			}
			output := NewOutput(cmd)

			symbols, err := resolveSymbols(args, app.Config.Collector.Watchlist())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			results := make([]scanResult, 0, len(symbols))
			skipped := make([]string, 0)
			for _, symbol := range symbols {
				bars, err := app.Store.GetBars(ctx, symbol)
				if err != nil {
					return err
				}
				if len(bars) == 0 {
					skipped = append(skipped, symbol)
					continue
				}

				closes := models.Closes(bars)
				matches, err := app.Detector.Matches(closes)
				if err != nil {
					return err
				}

				// Percent move across the stored window.
				change := 0.0
				if closes[0] != 0 {
					change = (closes[len(closes)-1] - closes[0]) / closes[0] * 100
				}

				results = append(results, scanResult{
					DetectionResult: models.DetectionResult{
						Symbol:    symbol,
						Detected:  len(matches) > 0,
						Matches:   len(matches),
						Samples:   len(closes),
						CheckedAt: time.Now().UTC(),
					},
					LastClose:   closes[len(closes)-1],
					Change:      change,
					LastVolume:  bars[len(bars)-1].Volume,
					MatchPoints: matches,
				})
			}

			if output.IsJSON() {
				return output.JSON(results)
			}

			color.Cyan("🔍 Cup-and-Handle Scan")
			fmt.Println()

			if len(results) > 0 {
				renderScanTable(output, results)
			}
			for _, symbol := range skipped {
				output.Warning("- %-6s no stored data (run 'cupscan fetch')", symbol)
			}

			fmt.Println()
			printMatchPoints(output, results)

			detected := 0
			for _, r := range results {
				if r.Detected {
					detected++
				}
			}
			if detected > 0 {
				color.Green("✓ %d of %d symbols show a cup and handle", detected, len(results))
			} else if len(results) > 0 {
				color.Yellow("No cup-and-handle patterns found")
			}
			return nil
		},
	}
}

func renderScanTable(output *Output, results []scanResult) {
	table := NewTable(output, "SYMBOL", "LAST CLOSE", "CHANGE", "VOLUME", "SAMPLES", "MATCHES", "PATTERN")
	for _, r := range results {
		change := output.Green(utils.FormatPercent(r.Change))
		if r.Change < 0 {
			change = output.Red(utils.FormatPercent(r.Change))
		}
		pattern := output.DimText("-")
		if r.Detected {
			pattern = output.Green("✓ detected")
		}
		table.AddRow(
			r.Symbol,
			utils.FormatUSD(r.LastClose),
			change,
			utils.FormatCompact(float64(r.LastVolume)),
			utils.FormatQuantity(int64(r.Samples)),
			utils.FormatQuantity(int64(r.Matches)),
			pattern,
		)
	}
	table.Render()
}

// printMatchPoints lists the five pattern indices for up to three matches
// per detected symbol.
func printMatchPoints(output *Output, results []scanResult) {
	for _, r := range results {
		if !r.Detected {
			continue
		}
		shown := r.MatchPoints
		if len(shown) > 3 {
			shown = shown[:3]
		}
		for _, m := range shown {
			output.Dim("  %s points: a=%d b=%d c=%d d=%d e=%d", r.Symbol, m.A, m.B, m.C, m.D, m.E)
		}
		if len(r.MatchPoints) > 3 {
			output.Dim("  %s and %d more", r.Symbol, len(r.MatchPoints)-3)
		}
	}
}
