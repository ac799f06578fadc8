package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatPrice renders a price the way it is printed in the price box: two
// decimals followed by the currency, e.g. "3.50 CHF".
func FormatPrice(amount float64, currency string) string {
	s := strconv.FormatFloat(math.Round(amount*100)/100, 'f', 2, 64)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// ParsePrice extracts the amount from a formatted price by keeping only its
// digits and dots.
func ParsePrice(formatted string) (float64, error) {
	var sb strings.Builder
	for _, r := range formatted {
		if (r >= '0' && r <= '9') || r == '.' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return 0, fmt.Errorf("%q is not a formatted price", formatted)
	}
	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a formatted price: %w", formatted, err)
	}
	return v, nil
}

// FormatSheetNumber renders sheet number n with format, where "{n}" is
// replaced by the number, e.g. "#{n}" gives "#3".
func FormatSheetNumber(format string, n int) string {
	if !strings.Contains(format, "{n}") {
		return strconv.Itoa(n)
	}
	return strings.ReplaceAll(format, "{n}", strconv.Itoa(n))
}
