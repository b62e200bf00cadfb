// Package features turns a raw application into the typed FeatureSet consumed
// by scoring and decisioning. Extraction never fails: every signal has a
// conservative default when its source data is missing.
package features

import (
	"cloud.google.com/go/civil"

	"credit-decision-workers/internal/credit/policy"
	"credit-decision-workers/internal/models"
)

// Income provenance tags.
const (
	IncomeSourceWebhook     = "income_webhook"
	IncomeSourceTransaction = "transaction_fallback"
	IncomeSourceNone        = "none"
)

// FeatureSet is the complete set of derived signals for one application.
// Pointer fields are nil when the signal is unknown, which is distinct from zero.
type FeatureSet struct {
	// Income
	IncomeSource       string
	TotalMonthlyIncome float64
	StableIncomeRatio  float64
	IncomeStreamCount  int
	AvgIncomeStability float64
	IncomeRecencyDays  *int
	IncomeGrowing      bool
	RegularIncomeRatio float64

	// Cash flow
	MonthlyAvgCredits     float64
	MonthlyAvgDebits      float64
	NetMonthlySurplus     float64
	SurplusRatio          float64
	PositiveCashFlowRatio float64
	DebitToCreditRatio    float64
	SpendingVolatility    float64
	MonthsObserved        int

	// Credit history
	HasCreditHistory   bool
	PaymentSuccessRate *float64
	OpenLoans          int
	ClosedLoans        int
	WrittenOffLoans    int
	TotalLoans         int
	CreditAgeMonths    float64
	IsThinFile         bool

	// Debt
	OutstandingOpenLoanBalance float64
	MonthlyRecurringDebt       float64

	// Behavior
	OverdraftCount           int
	BouncedPaymentCount      int
	HighRiskTransactionCount int
	LowBalanceDays           int
	MinBalance               float64
	AccountAgeMonths         float64
	TotalTransactions        int

	// Statement insights passthrough
	BalanceAfterExpense  *float64
	AverageBalance       *float64
	AvgMonthlyInflow12M  *float64
	AvgMonthlyOutflow12M *float64
}

// IsFallbackIncome reports whether income was estimated from narrations.
func (f *FeatureSet) IsFallbackIncome() bool {
	return f.IncomeSource == IncomeSourceTransaction
}

// SafeMonthlyIncome is the conservative income used for affordability: the
// lower of declared income and observed average credits.
func (f *FeatureSet) SafeMonthlyIncome() float64 {
	if f.TotalMonthlyIncome > 0 {
		return min(f.TotalMonthlyIncome, f.MonthlyAvgCredits)
	}
	return f.MonthlyAvgCredits
}

// Extractor derives FeatureSets using the keyword lists and floors of a policy.
type Extractor struct {
	features       policy.Features
	bounceKeywords []string
}

func NewExtractor(p *policy.Policy) *Extractor {
	return &Extractor{
		features:       p.Features,
		bounceKeywords: p.Knockout.BounceKeywords,
	}
}

// Extract computes every signal for req as of the given evaluation date.
func (e *Extractor) Extract(req *models.ApplicationRequest, asOf civil.Date) *FeatureSet {
	fs := &FeatureSet{IncomeSource: IncomeSourceNone}

	e.extractIncome(fs, req, asOf)
	e.extractCashFlow(fs, req)
	e.extractCreditHistory(fs, req, asOf)
	e.extractDebt(fs, req)
	e.extractBehavior(fs, req, asOf)
	extractInsights(fs, req)

	return fs
}

func extractInsights(fs *FeatureSet, req *models.ApplicationRequest) {
	for _, acct := range req.Accounts {
		si := acct.StatementInsights
		if si == nil {
			continue
		}
		if fs.BalanceAfterExpense == nil && si.BalanceAfterExpense != nil {
			fs.BalanceAfterExpense = copyFloat(si.BalanceAfterExpense)
		}
		if fs.AverageBalance == nil && si.AccountSummary != nil && si.AccountSummary.AverageBalance != nil {
			fs.AverageBalance = copyFloat(si.AccountSummary.AverageBalance)
		}
		if fs.AvgMonthlyInflow12M == nil && si.Inflow != nil && si.Inflow.AverageMonthly12M != nil {
			fs.AvgMonthlyInflow12M = copyFloat(si.Inflow.AverageMonthly12M)
		}
		if fs.AvgMonthlyOutflow12M == nil && si.Outflow != nil && si.Outflow.AverageMonthly12M != nil {
			fs.AvgMonthlyOutflow12M = copyFloat(si.Outflow.AverageMonthly12M)
		}
	}
}

func copyFloat(v *float64) *float64 {
	c := *v
	return &c
}
