// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"cupscan/internal/models"
)

// PriceStore defines the interface for bar persistence.
type PriceStore interface {
	// Bars
	ReplaceBars(ctx context.Context, symbol string, bars []models.Bar) error
	GetBars(ctx context.Context, symbol string) ([]models.Bar, error)
	GetCloses(ctx context.Context, symbol string) ([]float64, error)
	LatestTimestamp(ctx context.Context, symbol string) (time.Time, error)
	BarCount(ctx context.Context, symbol string) (int, error)
	Symbols(ctx context.Context) ([]string, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
