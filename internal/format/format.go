// Package format renders numbers for the Korean-language pages.
package format

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Korean)

// Number rounds v to an integer and groups thousands: 1234567.4 -> "1,234,567".
func Number(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// Won formats a currency amount: 1234567 -> "1,234,567원".
func Won(v float64) string {
	return Number(v) + "원"
}

// Fixed rounds v half away from zero to places decimals.
func Fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Percent formats a fraction as a percentage with one decimal: 0.1234 -> "12.3%".
func Percent(fraction float64) string {
	return Fixed(fraction*100, 1) + "%"
}

// Delta formats the change from prev to cur with an explicit sign, e.g. "+1,200".
func Delta(cur, prev float64) string {
	d := math.Round(cur - prev)
	switch {
	case d > 0:
		return "+" + Number(d)
	case d < 0:
		return "-" + Number(-d)
	default:
		return "0"
	}
}

// Change is the relative change from prev to cur, or 0 when prev is 0.
func Change(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev
}
