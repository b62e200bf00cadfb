// Package finance holds the loan arithmetic shared by scoring and decisioning.
package finance

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// MonthlyRate converts an annual percentage rate into a monthly fraction.
func MonthlyRate(annualRatePct float64) float64 {
	return annualRatePct / 1200.0
}

// Amortize returns the level monthly payment for principal over tenor months.
// A zero rate reduces to equal installments; a non-positive tenor or principal
// yields zero instead of dividing by zero.
func Amortize(principal float64, tenorMonths int, annualRatePct float64) float64 {
	if tenorMonths <= 0 || principal <= 0 {
		return 0
	}
	n := float64(tenorMonths)
	if annualRatePct == 0 {
		return principal / n
	}
	r := MonthlyRate(annualRatePct)
	growth := math.Pow(1+r, n)
	return principal * r * growth / (growth - 1)
}

// MaxPrincipal inverts Amortize: the largest principal a monthly payment can
// service over tenor months.
func MaxPrincipal(maxPayment float64, tenorMonths int, annualRatePct float64) float64 {
	if tenorMonths <= 0 || maxPayment <= 0 {
		return 0
	}
	n := float64(tenorMonths)
	if annualRatePct == 0 {
		return maxPayment * n
	}
	r := MonthlyRate(annualRatePct)
	growth := math.Pow(1+r, n)
	return maxPayment * (growth - 1) / (r * growth)
}

// Round rounds half away from zero to the given number of places.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Round2 rounds a money amount to kobo precision.
func Round2(v float64) float64 { return Round(v, 2) }

// Round4 is used for ratios such as DTI.
func Round4(v float64) float64 { return Round(v, 4) }

// Naira formats an amount as "₦1,234,567" without decimals.
func Naira(v float64) string {
	return "₦" + Grouped(v)
}

// Grouped formats a whole-number amount with thousands separators.
func Grouped(v float64) string {
	return printer.Sprintf("%.0f", Round(v, 0))
}
