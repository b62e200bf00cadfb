// internal/models/application.go
package models

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ApplicationRequest is the fully aggregated bundle the gateway sends for one
// applicant. It is never mutated after decoding.
type ApplicationRequest struct {
	ApplicantID   string              `json:"applicant_id"`
	ApplicantName string              `json:"applicant_name"`
	ApplicantBVN  string              `json:"applicant_bvn"`
	LoanAmount    float64             `json:"loan_amount"`
	TenorMonths   int                 `json:"tenor_months"`
	InterestRate  float64             `json:"interest_rate"` // annual percentage
	Purpose       string              `json:"purpose,omitempty"`
	Accounts      []LinkedAccount     `json:"accounts"`
	CreditHistory *CreditBureauRecord `json:"credit_history,omitempty"`
}

// TermViolation is one loan term outside its allowed range.
type TermViolation struct {
	Field   string
	Message string
}

// CheckTerms reports the requested-term rules a JSON schema does not carry:
// a positive amount and tenor and a non-negative rate.
func (r *ApplicationRequest) CheckTerms() []TermViolation {
	var out []TermViolation
	if r.LoanAmount <= 0 {
		out = append(out, TermViolation{Field: "loan_amount", Message: "must be greater than 0"})
	}
	if r.TenorMonths <= 0 {
		out = append(out, TermViolation{Field: "tenor_months", Message: "must be greater than 0"})
	}
	if r.InterestRate < 0 {
		out = append(out, TermViolation{Field: "interest_rate", Message: "must not be negative"})
	}
	return out
}

type LinkedAccount struct {
	AccountID         string             `json:"account_id"`
	Balance           float64            `json:"balance"`
	Transactions      []Transaction      `json:"transactions"`
	Identity          *IdentityRecord    `json:"identity,omitempty"`
	Income            *IncomeRecord      `json:"income,omitempty"`
	StatementInsights *StatementInsights `json:"statement_insights,omitempty"`
}

// Transaction types as reported by the bank aggregator.
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

type Transaction struct {
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	Type      string  `json:"type"`
	Balance   float64 `json:"balance"`
	Narration string  `json:"narration"`
}

func (t Transaction) IsCredit() bool {
	return strings.EqualFold(t.Type, TransactionCredit)
}

func (t Transaction) IsDebit() bool {
	return strings.EqualFold(t.Type, TransactionDebit)
}

// NarrationContains reports whether the lower-cased narration contains any of
// the keywords as a substring. Keywords are expected in lower case.
func (t Transaction) NarrationContains(keywords []string) bool {
	narration := strings.ToLower(t.Narration)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(narration, kw) {
			return true
		}
	}
	return false
}

type IdentityRecord struct {
	FullName string `json:"full_name"`
	BVN      string `json:"bvn"`
}

type IncomeRecord struct {
	IncomeStreams                     []IncomeStream `json:"income_streams"`
	MonthlyIncome                     float64        `json:"monthly_income"`
	AnnualIncome                      float64        `json:"annual_income,omitempty"`
	AggregatedMonthlyAverage          float64        `json:"aggregated_monthly_average"`
	AggregatedMonthlyAverageRegular   float64        `json:"aggregated_monthly_average_regular"`
	AggregatedMonthlyAverageIrregular float64        `json:"aggregated_monthly_average_irregular"`
	TotalRegularIncomeAmount          float64        `json:"total_regular_income_amount"`
	TotalIrregularIncomeAmount        float64        `json:"total_irregular_income_amount"`
	NumberOfIncomeStreams             int            `json:"number_of_income_streams"`
}

// Income stream types.
const (
	IncomeTypeSalary     = "SALARY"
	IncomeTypeWages      = "WAGES"
	IncomeTypeBusiness   = "BUSINESS"
	IncomeTypeInvestment = "INVESTMENT"
	IncomeTypeOther      = "OTHER"
)

type IncomeStream struct {
	IncomeType          string  `json:"income_type"`
	Frequency           string  `json:"frequency,omitempty"`
	MonthlyAverage      float64 `json:"monthly_average"`
	AverageIncomeAmount float64 `json:"average_income_amount"`
	LastIncomeAmount    float64 `json:"last_income_amount"`
	LastIncomeDate      string  `json:"last_income_date"`
	Stability           float64 `json:"stability"`
	PeriodsWithIncome   int     `json:"periods_with_income,omitempty"`
	NumberOfIncomes     int     `json:"number_of_incomes,omitempty"`
}

// IsStable reports whether the stream counts towards the stable-income ratio.
func (s IncomeStream) IsStable() bool {
	t := strings.ToUpper(strings.TrimSpace(s.IncomeType))
	return t == IncomeTypeSalary || t == IncomeTypeWages
}

type StatementInsights struct {
	StartDate             string                 `json:"start_date,omitempty"`
	EndDate               string                 `json:"end_date,omitempty"`
	TransactionCount      int                    `json:"transaction_count,omitempty"`
	BalanceAfterExpense   *float64               `json:"balance_after_expense,omitempty"`
	AccountSummary        *AccountSummary        `json:"account_summary,omitempty"`
	ActivityInsights      *ActivityInsights      `json:"activity_insights,omitempty"`
	Inflow                *FlowSummary           `json:"inflow,omitempty"`
	Outflow               *FlowSummary           `json:"outflow,omitempty"`
	RecurringTransactions []RecurringTransaction `json:"recurring_transactions,omitempty"`
	BalanceTrend          string                 `json:"balance_trend,omitempty"`
}

type AccountSummary struct {
	AverageBalance   *float64 `json:"average_balance,omitempty"`
	DebitCreditRatio *float64 `json:"debit_credit_ratio,omitempty"`
}

type ActivityInsights struct {
	RareFindings map[string]string `json:"rare_findings,omitempty"`
}

type FlowSummary struct {
	AverageMonthly12M *float64 `json:"average_monthly_12m,omitempty"`
}

type RecurringTransaction struct {
	Narration string  `json:"narration"`
	Category  string  `json:"category,omitempty"`
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency,omitempty"`
}

// CreditBureauRecord is BVN-scoped: one per applicant, never per account.
type CreditBureauRecord struct {
	CreditHistory []InstitutionHistory `json:"credit_history"`
}

type InstitutionHistory struct {
	Institution string       `json:"institution"`
	History     []BureauLoan `json:"history"`
}

// Loan statuses reported by the bureau.
const (
	LoanStatusOpen       = "open"
	LoanStatusClosed     = "closed"
	LoanStatusWrittenOff = "written-off"

	PerformanceNonPerforming = "non-performing"
)

type BureauLoan struct {
	LoanStatus        string        `json:"loan_status"`
	PerformanceStatus string        `json:"performance_status,omitempty"`
	OpeningBalance    float64       `json:"opening_balance"`
	DateOpened        string        `json:"date_opened,omitempty"`
	RepaymentSchedule []Installment `json:"repayment_schedule,omitempty"`
}

// Installment statuses.
const (
	InstallmentPaid    = "paid"
	InstallmentFailed  = "failed"
	InstallmentMissed  = "missed"
	InstallmentPending = "pending"
)

type Installment struct {
	DueDate string `json:"due_date,omitempty"`
	Status  string `json:"status"`
}

// IsDelinquent reports a failed or missed installment.
func (i Installment) IsDelinquent() bool {
	s := strings.ToLower(strings.TrimSpace(i.Status))
	return s == InstallmentFailed || s == InstallmentMissed
}

func (l BureauLoan) Status() string {
	return strings.ToLower(strings.TrimSpace(l.LoanStatus))
}

// TotalTransactions counts raw transactions across every linked account.
func (r *ApplicationRequest) TotalTransactions() int {
	n := 0
	for _, a := range r.Accounts {
		n += len(a.Transactions)
	}
	return n
}

// HasIdentity reports whether any account carried bank identity data.
func (r *ApplicationRequest) HasIdentity() bool {
	for _, a := range r.Accounts {
		if a.Identity != nil {
			return true
		}
	}
	return false
}

// ParseDate accepts a calendar date ("2024-01-31") or an RFC 3339 timestamp
// and returns its civil date. Empty or malformed values report false.
func ParseDate(s string) (civil.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, false
	}
	if len(s) >= 10 {
		if d, err := civil.ParseDate(s[:10]); err == nil {
			return d, true
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return civil.DateOf(t.UTC()), true
	}
	return civil.Date{}, false
}
