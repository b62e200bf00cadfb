package features

import (
	"math"
	"strings"

	"cloud.google.com/go/civil"

	"credit-decision-workers/internal/models"
)

func (e *Extractor) extractCreditHistory(fs *FeatureSet, req *models.ApplicationRequest, asOf civil.Date) {
	if req.CreditHistory == nil {
		fs.IsThinFile = true
		return
	}

	var paid, due int
	var oldest civil.Date
	haveOldest := false

	for _, inst := range req.CreditHistory.CreditHistory {
		for _, loan := range inst.History {
			fs.TotalLoans++
			switch loan.Status() {
			case models.LoanStatusOpen:
				fs.OpenLoans++
			case models.LoanStatusClosed:
				fs.ClosedLoans++
			case models.LoanStatusWrittenOff:
				fs.WrittenOffLoans++
			}
			if d, ok := models.ParseDate(loan.DateOpened); ok && (!haveOldest || d.Before(oldest)) {
				oldest, haveOldest = d, true
			}
			for _, installment := range loan.RepaymentSchedule {
				status := strings.ToLower(strings.TrimSpace(installment.Status))
				if status == models.InstallmentPending || status == "" {
					continue
				}
				due++
				if status == models.InstallmentPaid {
					paid++
				}
			}
		}
	}

	fs.HasCreditHistory = fs.TotalLoans > 0
	fs.IsThinFile = fs.TotalLoans < 2
	if due > 0 {
		rate := float64(paid) / float64(due)
		fs.PaymentSuccessRate = &rate
	}
	if haveOldest {
		fs.CreditAgeMonths = math.Max(0, float64(asOf.DaysSince(oldest))/30.0)
	}
}

func (e *Extractor) extractDebt(fs *FeatureSet, req *models.ApplicationRequest) {
	if req.CreditHistory != nil {
		for _, inst := range req.CreditHistory.CreditHistory {
			for _, loan := range inst.History {
				if loan.Status() == models.LoanStatusOpen {
					fs.OutstandingOpenLoanBalance += loan.OpeningBalance
				}
			}
		}
	}

	for _, acct := range req.Accounts {
		if acct.StatementInsights == nil {
			continue
		}
		for _, rt := range acct.StatementInsights.RecurringTransactions {
			text := normalizeWords(rt.Narration + " " + rt.Category)
			if !matchesWord(text, e.features.LoanKeywords) {
				continue
			}
			fs.MonthlyRecurringDebt += monthlyEquivalent(math.Abs(rt.Amount), rt.Frequency)
		}
	}
}

// monthlyEquivalent normalises a recurring amount to a monthly figure.
// Unknown or empty frequencies are treated as monthly.
func monthlyEquivalent(amount float64, frequency string) float64 {
	switch strings.ToLower(strings.TrimSpace(frequency)) {
	case "weekly":
		return amount * 52 / 12
	case "bi-weekly", "biweekly", "fortnightly":
		return amount * 26 / 12
	case "quarterly":
		return amount / 3
	case "annual", "annually", "yearly":
		return amount / 12
	default:
		return amount
	}
}
