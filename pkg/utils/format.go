// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatUSD formats a number as a dollar amount with thousands separators.
func FormatUSD(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	result := "$" + groupThousands(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	s = s[:n-3]
	for len(s) > 3 {
		result = s[len(s)-3:] + "," + result
		s = s[:len(s)-3]
	}
	return s + "," + result
}

// ParseDollar parses an engine-formatted dollar string such as "$1,234.56"
// or "-$12.00" into a float. Malformed input parses as 0.
func ParseDollar(s string) float64 {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimPrefix(cleaned, "+")
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats P&L with sign.
func FormatPnL(pnl float64) string {
	formatted := FormatUSD(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatQuantity formats a quantity with thousands separators. Whole
// quantities drop the decimals; fractional ones keep up to four places.
func FormatQuantity(qty float64) string {
	negative := qty < 0
	if negative {
		qty = -qty
	}

	var result string
	if qty == float64(int64(qty)) {
		result = groupThousands(fmt.Sprintf("%d", int64(qty)))
	} else {
		str := strings.TrimRight(fmt.Sprintf("%.4f", qty), "0")
		str = strings.TrimSuffix(str, ".")
		parts := strings.SplitN(str, ".", 2)
		result = groupThousands(parts[0])
		if len(parts) == 2 {
			result += "." + parts[1]
		}
	}
	if negative {
		return "-" + result
	}
	return result
}

// FormatUptime renders a duration the way the engine log viewer shows it,
// e.g. "3d 04:02:09".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours()) / 24
	remainder := d - time.Duration(days)*24*time.Hour
	hours := int(remainder.Hours())
	minutes := int(remainder.Minutes()) % 60
	seconds := int(remainder.Seconds()) % 60
	return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, seconds)
}
