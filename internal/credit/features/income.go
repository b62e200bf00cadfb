package features

import (
	"math"

	"cloud.google.com/go/civil"

	"credit-decision-workers/internal/models"
)

func (e *Extractor) extractIncome(fs *FeatureSet, req *models.ApplicationRequest, asOf civil.Date) {
	if inc := primaryIncome(req); inc != nil {
		webhookIncome(fs, inc, asOf)
		return
	}
	e.fallbackIncome(fs, req, asOf)
}

// primaryIncome picks the income record with the highest declared monthly
// income. Ties keep the first account.
func primaryIncome(req *models.ApplicationRequest) *models.IncomeRecord {
	var best *models.IncomeRecord
	for i := range req.Accounts {
		inc := req.Accounts[i].Income
		if inc == nil {
			continue
		}
		if best == nil || inc.MonthlyIncome > best.MonthlyIncome {
			best = inc
		}
	}
	return best
}

func webhookIncome(fs *FeatureSet, inc *models.IncomeRecord, asOf civil.Date) {
	fs.IncomeSource = IncomeSourceWebhook

	var streamTotal, stableTotal, stabilitySum float64
	var dominant *models.IncomeStream
	var latest civil.Date
	haveLatest := false

	for i := range inc.IncomeStreams {
		s := &inc.IncomeStreams[i]
		streamTotal += s.MonthlyAverage
		if s.IsStable() {
			stableTotal += s.MonthlyAverage
		}
		stabilitySum += s.Stability
		if dominant == nil || s.MonthlyAverage > dominant.MonthlyAverage {
			dominant = s
		}
		if d, ok := models.ParseDate(s.LastIncomeDate); ok && (!haveLatest || d.After(latest)) {
			latest, haveLatest = d, true
		}
	}

	fs.IncomeStreamCount = len(inc.IncomeStreams)
	fs.TotalMonthlyIncome = inc.MonthlyIncome
	if fs.TotalMonthlyIncome <= 0 {
		fs.TotalMonthlyIncome = streamTotal
	}
	if streamTotal > 0 {
		fs.StableIncomeRatio = stableTotal / streamTotal
	}
	if fs.IncomeStreamCount > 0 {
		fs.AvgIncomeStability = stabilitySum / float64(fs.IncomeStreamCount)
	}
	if haveLatest {
		days := asOf.DaysSince(latest)
		fs.IncomeRecencyDays = &days
	}
	if dominant != nil && dominant.AverageIncomeAmount > 0 {
		fs.IncomeGrowing = dominant.LastIncomeAmount > dominant.AverageIncomeAmount
	}
	fs.RegularIncomeRatio = regularRatio(inc)
}

func regularRatio(inc *models.IncomeRecord) float64 {
	if inc.AggregatedMonthlyAverage > 0 {
		return clamp01(inc.AggregatedMonthlyAverageRegular / inc.AggregatedMonthlyAverage)
	}
	if total := inc.TotalRegularIncomeAmount + inc.TotalIrregularIncomeAmount; total > 0 {
		return clamp01(inc.TotalRegularIncomeAmount / total)
	}
	return 0
}

// fallbackIncome estimates income from salary-like credit narrations when no
// account carries income data.
func (e *Extractor) fallbackIncome(fs *FeatureSet, req *models.ApplicationRequest, asOf civil.Date) {
	salaryByMonth := make(map[monthKey]float64)
	months := make(map[monthKey]struct{})
	var latest civil.Date
	haveLatest := false

	for _, acct := range req.Accounts {
		for _, txn := range acct.Transactions {
			d, ok := models.ParseDate(txn.Date)
			if !ok {
				continue
			}
			key := monthOf(d)
			months[key] = struct{}{}
			if !txn.IsCredit() || !matchesWord(normalizeWords(txn.Narration), e.features.SalaryKeywords) {
				continue
			}
			salaryByMonth[key] += math.Abs(txn.Amount)
			if !haveLatest || d.After(latest) {
				latest, haveLatest = d, true
			}
		}
	}

	if len(salaryByMonth) == 0 {
		return
	}

	total := 0.0
	for _, key := range sortedMonths(salaryByMonth) {
		total += salaryByMonth[key]
	}
	ratio := float64(len(salaryByMonth)) / float64(len(months))

	fs.IncomeSource = IncomeSourceTransaction
	fs.TotalMonthlyIncome = total / float64(len(salaryByMonth))
	fs.StableIncomeRatio = 1
	fs.IncomeStreamCount = 1
	fs.RegularIncomeRatio = ratio
	fs.AvgIncomeStability = ratio
	days := asOf.DaysSince(latest)
	fs.IncomeRecencyDays = &days
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
