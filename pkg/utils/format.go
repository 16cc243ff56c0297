// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"
)

// FormatUSD formats a dollar amount with thousands separators.
func FormatUSD(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	// Format with 2 decimal places
	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	result := "$" + formatThousands(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// formatThousands groups an integer string into threes from the right.
func formatThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	s = s[:n-3]

	for len(s) > 0 {
		if len(s) >= 3 {
			result = s[len(s)-3:] + "," + result
			s = s[:len(s)-3]
		} else {
			result = s + "," + result
			s = ""
		}
	}

	return result
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatQuantity formats a quantity with commas.
func FormatQuantity(qty int64) string {
	return formatThousands(fmt.Sprintf("%d", qty))
}

// FormatCompact formats a number in compact form (K/M/B).
func FormatCompact(amount float64) string {
	absAmount := amount
	if absAmount < 0 {
		absAmount = -absAmount
	}

	switch {
	case absAmount >= 1e9:
		return fmt.Sprintf("%.2fB", amount/1e9)
	case absAmount >= 1e6:
		return fmt.Sprintf("%.2fM", amount/1e6)
	case absAmount >= 1e3:
		return fmt.Sprintf("%.1fK", amount/1e3)
	}
	return fmt.Sprintf("%.0f", amount)
}
