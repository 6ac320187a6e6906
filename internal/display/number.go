package display

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Quantity formats a resource amount with digit grouping. Whole amounts
// print without a fraction, others with one decimal.
func Quantity(v float64) string {
	if v == math.Trunc(v) {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.1f", v)
}

// Floor formats the whole part of a resource amount.
func Floor(v float64) string {
	return printer.Sprintf("%d", int64(math.Floor(v)))
}

// Seconds formats a countdown in seconds, rounded up.
func Seconds(v float64) string {
	return printer.Sprintf("%ds", int64(math.Ceil(v)))
}

// Minutes formats a duration in whole minutes, at least one.
func Minutes(d time.Duration) string {
	return printer.Sprintf("%d min", max(int64(d/time.Minute), 1))
}

// Percent formats a fraction in [0,1] as a whole percentage.
func Percent(f float64) string {
	return printer.Sprintf("%d%%", int64(math.Round(f*100)))
}
