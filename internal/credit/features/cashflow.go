package features

import (
	"cmp"
	"math"
	"slices"
	"time"

	"cloud.google.com/go/civil"

	"credit-decision-workers/internal/models"
)

type monthKey struct {
	year  int
	month time.Month
}

func monthOf(d civil.Date) monthKey {
	return monthKey{year: d.Year, month: d.Month}
}

func compareMonths(a, b monthKey) int {
	if c := cmp.Compare(a.year, b.year); c != 0 {
		return c
	}
	return cmp.Compare(a.month, b.month)
}

// sortedMonths returns the keys in calendar order so that float sums are
// accumulated identically on every run.
func sortedMonths[V any](m map[monthKey]V) []monthKey {
	keys := make([]monthKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareMonths)
	return keys
}

type monthFlow struct {
	credits float64
	debits  float64
}

func (e *Extractor) extractCashFlow(fs *FeatureSet, req *models.ApplicationRequest) {
	flows := make(map[monthKey]*monthFlow)
	for _, acct := range req.Accounts {
		for _, txn := range acct.Transactions {
			d, ok := models.ParseDate(txn.Date)
			if !ok {
				continue
			}
			key := monthOf(d)
			f := flows[key]
			if f == nil {
				f = &monthFlow{}
				flows[key] = f
			}
			switch {
			case txn.IsCredit():
				f.credits += math.Abs(txn.Amount)
			case txn.IsDebit():
				f.debits += math.Abs(txn.Amount)
			}
		}
	}

	if len(flows) > 0 {
		var totalCredits, totalDebits float64
		positive := 0
		debits := make([]float64, 0, len(flows))
		for _, key := range sortedMonths(flows) {
			f := flows[key]
			totalCredits += f.credits
			totalDebits += f.debits
			if f.credits > f.debits {
				positive++
			}
			debits = append(debits, f.debits)
		}

		n := float64(len(flows))
		fs.MonthsObserved = len(flows)
		fs.MonthlyAvgCredits = totalCredits / n
		fs.MonthlyAvgDebits = totalDebits / n
		fs.NetMonthlySurplus = fs.MonthlyAvgCredits - fs.MonthlyAvgDebits
		fs.PositiveCashFlowRatio = float64(positive) / n
		if fs.MonthlyAvgCredits > 0 {
			fs.SurplusRatio = fs.NetMonthlySurplus / fs.MonthlyAvgCredits
			fs.DebitToCreditRatio = fs.MonthlyAvgDebits / fs.MonthlyAvgCredits
		}
		fs.SpendingVolatility = coefficientOfVariation(debits)
	}

	// A statement-wide ratio beats one recomputed from a possibly partial page.
	for _, acct := range req.Accounts {
		si := acct.StatementInsights
		if si != nil && si.AccountSummary != nil && si.AccountSummary.DebitCreditRatio != nil {
			fs.DebitToCreditRatio = *si.AccountSummary.DebitCreditRatio
			break
		}
	}
}

// coefficientOfVariation is the population standard deviation over the mean.
// Fewer than two observations or a non-positive mean yield 0.
func coefficientOfVariation(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	if mean <= 0 {
		return 0
	}
	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance) / mean
}
