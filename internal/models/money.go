package models

import "strconv"

// FormatAmount renders an amount with exactly two decimals, rounding the
// binary value the way printf's %.2f does.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
