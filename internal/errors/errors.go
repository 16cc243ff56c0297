// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrNoData        = errors.New("no data available")
	ErrConfigInvalid = errors.New("invalid configuration")
	ErrDatabaseError = errors.New("database error")
	ErrFetchFailed   = errors.New("market data fetch failed")
)

// ConfigError represents an invalid threshold or settings entry.
type ConfigError struct {
	Section string
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error [%s.%s]: %s", e.Section, e.Key, e.Message)
	}
	return fmt.Sprintf("config error [%s]: %s", e.Section, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfigInvalid
}

// NewConfigError creates a new ConfigError.
func NewConfigError(section, key, message string) *ConfigError {
	return &ConfigError{
		Section: section,
		Key:     key,
		Message: message,
	}
}

// DataError represents a data-related error.
type DataError struct {
	DataType string
	Symbol   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.DataType, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.DataType, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(dataType, symbol, message string, err error) *DataError {
	return &DataError{
		DataType: dataType,
		Symbol:   symbol,
		Message:  message,
		Err:      err,
	}
}

// FetchError represents a failure talking to the market data source.
type FetchError struct {
	Source     string
	Symbol     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch error [%s] %s: status %d: %v", e.Source, e.Symbol, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error [%s] %s: %v", e.Source, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(source, symbol string, statusCode int, err error) *FetchError {
	return &FetchError{
		Source:     source,
		Symbol:     symbol,
		StatusCode: statusCode,
		Err:        err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
