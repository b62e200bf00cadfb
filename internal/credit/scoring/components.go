package scoring

import (
	"credit-decision-workers/internal/credit/features"
	"credit-decision-workers/internal/credit/finance"
)

// tier is one step of a threshold table: values satisfying the bound earn pts.
type tier struct {
	bound float64
	pts   float64
}

// atLeast returns the points of the first tier whose bound v reaches.
func atLeast(v float64, tiers []tier) float64 {
	for _, t := range tiers {
		if v >= t.bound {
			return t.pts
		}
	}
	return 0
}

// atMost returns the points of the first tier whose bound v does not exceed.
func atMost(v float64, tiers []tier) float64 {
	for _, t := range tiers {
		if v <= t.bound {
			return t.pts
		}
	}
	return 0
}

var (
	paymentRateTiers = []tier{{0.95, 70}, {0.90, 55}, {0.80, 35}, {0.70, 15}}
	creditAgeTiers   = []tier{{36, 20}, {24, 15}, {12, 10}}
	stableRatioTiers = []tier{{0.80, 35}, {0.60, 28}, {0.40, 20}, {0.20, 10}}
	recencyTiers     = []tier{{31, 25}, {45, 18}, {60, 10}, {90, 5}}
	surplusTiers     = []tier{{0.30, 30}, {0.20, 24}, {0.10, 16}, {0, 8}}
	debitCreditTiers = []tier{{0.60, 20}, {0.80, 15}, {0.90, 10}, {1.00, 5}}
	volatilityTiers  = []tier{{0.20, 20}, {0.35, 15}, {0.50, 10}, {0.75, 5}}
	combinedDTITiers = []tier{{0.30, 60}, {0.40, 40}, {0.50, 20}}
	existingDTITiers = []tier{{0.20, 40}, {0.30, 25}, {0.40, 10}}
	accountAgeTiers  = []tier{{24, 40}, {18, 32}, {12, 24}, {6, 14}}
	lowBalanceTiers  = []tier{{0, 20}, {5, 15}, {15, 8}}
)

const neutralPaymentRatePoints = 35

func creditHistory(fs *features.FeatureSet) float64 {
	if !fs.HasCreditHistory {
		return 0
	}

	score := float64(neutralPaymentRatePoints)
	if fs.PaymentSuccessRate != nil {
		score = atLeast(*fs.PaymentSuccessRate, paymentRateTiers)
	}

	if age := atLeast(fs.CreditAgeMonths, creditAgeTiers); age > 0 {
		score += age
	} else if fs.CreditAgeMonths > 0 {
		score += 5
	}

	if fs.TotalLoans > 0 {
		score += float64(fs.ClosedLoans) / float64(fs.TotalLoans) * 10
	}
	return score
}

func incomeStability(fs *features.FeatureSet) float64 {
	if fs.TotalMonthlyIncome <= 0 {
		return 0
	}

	score := atLeast(fs.StableIncomeRatio, stableRatioTiers)
	if score == 0 && fs.StableIncomeRatio > 0 {
		score = 5
	}

	if fs.IncomeRecencyDays != nil {
		score += atMost(float64(*fs.IncomeRecencyDays), recencyTiers)
	}

	score += max(0, min(1, fs.AvgIncomeStability)) * 20

	if fs.IncomeGrowing {
		score += 15
	} else {
		score += fs.RegularIncomeRatio * 8
	}

	score += min(2*float64(fs.IncomeStreamCount), 5)
	return score
}

func cashFlowHealth(fs *features.FeatureSet) float64 {
	if fs.MonthlyAvgCredits <= 0 {
		return 0
	}
	return atLeast(fs.SurplusRatio, surplusTiers) +
		fs.PositiveCashFlowRatio*30 +
		atMost(fs.DebitToCreditRatio, debitCreditTiers) +
		atMost(fs.SpendingVolatility, volatilityTiers)
}

func debtServiceCapacity(fs *features.FeatureSet, loan Loan) float64 {
	safe := fs.SafeMonthlyIncome()
	if safe <= 0 {
		return 0
	}
	payment := finance.Amortize(loan.Amount, loan.TenorMonths, loan.AnnualRatePct)
	combined := (payment + fs.MonthlyRecurringDebt) / safe
	existing := fs.MonthlyRecurringDebt / safe

	return atMost(combined, combinedDTITiers) + atMost(existing, existingDTITiers)
}

func accountBehavior(fs *features.FeatureSet) float64 {
	score := atLeast(fs.AccountAgeMonths, accountAgeTiers)
	score += max(0, 30-3*float64(fs.OverdraftCount)-5*float64(fs.BouncedPaymentCount))
	score += atMost(float64(fs.LowBalanceDays), lowBalanceTiers)
	if fs.HighRiskTransactionCount == 0 {
		score += 10
	}
	return score
}
