// Package demand implements the numeric normalization of the locale-formatted
// demand column and the two-period blended demand estimate.
package demand

import (
	"strconv"
	"strings"
)

var demandCleaner = strings.NewReplacer("€", "", "EUR", "", " ", "", " ", "")

// Parse converts a locale-formatted currency string (e.g. "1.234,56 €") to a
// float. The dot is a thousands separator and the comma the decimal mark, so
// dots are dropped before the comma is swapped in. Returns nil for empty or
// non-numeric input; a failed parse is never an error for the caller.
func Parse(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = demandCleaner.Replace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
