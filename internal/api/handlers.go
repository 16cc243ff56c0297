package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cupscan/internal/errors"
	"cupscan/internal/logging"
	"cupscan/internal/models"
)

// CheckPatternRequest is the body of POST /check_pattern.
type CheckPatternRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// handleCheckPattern runs cup-and-handle detection over a symbol's stored
// closing prices.
func (s *Server) handleCheckPattern(c *gin.Context) {
	var req CheckPatternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: symbol is required"})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if !models.IsWatched(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("invalid stock symbol '%s'", symbol),
		})
		return
	}

	closes, err := s.store.GetCloses(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, errors.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": fmt.Sprintf("no data found for symbol '%s'", symbol),
			})
			return
		}
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("Failed to load closes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrDatabaseError.Error()})
		return
	}

	matches, err := s.detector.Matches(closes)
	if err != nil {
		if errors.Is(err, errors.ErrConfigInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("Detection failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "detection failed"})
		return
	}
	logging.LogDetection(s.logger, symbol, len(matches) > 0, len(matches), len(closes))

	c.JSON(http.StatusOK, models.DetectionResult{
		Symbol:    symbol,
		Detected:  len(matches) > 0,
		Matches:   len(matches),
		Samples:   len(closes),
		CheckedAt: time.Now().UTC(),
	})
}

// handleHealth reports server and store health.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  errors.ErrDatabaseError.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// symbolStatus describes stored coverage for one watched symbol.
type symbolStatus struct {
	Symbol    string     `json:"symbol"`
	Bars      int        `json:"bars"`
	LatestBar *time.Time `json:"latest_bar,omitempty"`
}

// handleSymbols lists the watchlist with stored bar coverage.
func (s *Server) handleSymbols(c *gin.Context) {
	ctx := c.Request.Context()

	statuses := make([]symbolStatus, 0, len(models.WatchedSymbols()))
	for _, symbol := range models.WatchedSymbols() {
		count, err := s.store.BarCount(ctx, symbol)
		if err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("Failed to count bars")
			c.JSON(http.StatusInternalServerError, gin.H{"error": errors.ErrDatabaseError.Error()})
			return
		}

		status := symbolStatus{Symbol: symbol, Bars: count}
		if count > 0 {
			latest, err := s.store.LatestTimestamp(ctx, symbol)
			if err == nil && !latest.IsZero() {
				ts := latest
				status.LatestBar = &ts
			}
		}
		statuses = append(statuses, status)
	}

	c.JSON(http.StatusOK, gin.H{"symbols": statuses})
}
