// Package policy holds the credit policy constants: thresholds, weight sets,
// and keyword lists. A Policy is built once at process start and treated as
// read-only afterwards; every engine receives it by pointer and never writes to it.
package policy

// Policy is the complete set of tunables consulted by the decision pipeline.
type Policy struct {
	Knockout Knockout `yaml:"knockout"`
	Features Features `yaml:"features"`
	Scoring  Scoring  `yaml:"scoring"`
	Decision Decision `yaml:"decision"`
}

type Knockout struct {
	MinIdentityTokenOverlap int            `yaml:"min_identity_token_overlap"`
	FraudFindings           []FraudFinding `yaml:"fraud_findings"`
	MaxConsecutiveFailures  int            `yaml:"max_consecutive_failures"`
	MinAccountAgeMonths     float64        `yaml:"min_account_age_months"`
	MaxOverdrafts           int            `yaml:"max_overdrafts"`
	MaxBouncedPayments      int            `yaml:"max_bounced_payments"`
	BounceKeywords          []string       `yaml:"bounce_keywords"`
	IncomeStalenessDays     int            `yaml:"income_staleness_days"`
	MinMonthlyIncome        float64        `yaml:"min_monthly_income"`
}

// FraudFinding names a statement-insights rare-pattern flag and the detail
// reported when it is detected.
type FraudFinding struct {
	Key    string `yaml:"key"`
	Detail string `yaml:"detail"`
}

type Features struct {
	SalaryKeywords   []string `yaml:"salary_keywords"`
	HighRiskKeywords []string `yaml:"high_risk_keywords"`
	LoanKeywords     []string `yaml:"loan_keywords"`
	LowBalanceFloor  float64  `yaml:"low_balance_floor"`
}

type Scoring struct {
	Baseline int     `yaml:"baseline"`
	Ceiling  int     `yaml:"ceiling"`
	Normal   Weights `yaml:"normal_weights"`
	ThinFile Weights `yaml:"thin_file_weights"`
}

// Span is the number of points distributed across the components.
func (s Scoring) Span() float64 {
	return float64(s.Ceiling - s.Baseline)
}

// Weights is one weight set; the five values must sum to exactly 1.
type Weights struct {
	CreditHistory       float64 `yaml:"credit_history"`
	IncomeStability     float64 `yaml:"income_stability"`
	CashFlowHealth      float64 `yaml:"cash_flow_health"`
	DebtServiceCapacity float64 `yaml:"debt_service_capacity"`
	AccountBehavior     float64 `yaml:"account_behavior"`
}

func (w Weights) values() []float64 {
	return []float64{w.CreditHistory, w.IncomeStability, w.CashFlowHealth, w.DebtServiceCapacity, w.AccountBehavior}
}

type Decision struct {
	RejectFloor            int     `yaml:"reject_floor"`
	ManualFloor            int     `yaml:"manual_floor"`
	ApproveFloor           int     `yaml:"approve_floor"`
	ReviewBuffer           int     `yaml:"review_buffer"`
	HighValueThreshold     float64 `yaml:"high_value_threshold"`
	MinTransactions        int     `yaml:"min_transactions"`
	AffordabilityCap       float64 `yaml:"affordability_cap"`
	MinViableOfferRatio    float64 `yaml:"min_viable_offer_ratio"`
	ThinFileIncomeMultiple float64 `yaml:"thin_file_income_multiple"`
	ThinFileMaxTenor       int     `yaml:"thin_file_max_tenor"`
	StandardTenors         []int   `yaml:"standard_tenors"`
}

// Thresholds returns the score thresholds in the order borderline checks use.
func (d Decision) Thresholds() []int {
	return []int{d.RejectFloor, d.ManualFloor, d.ApproveFloor}
}

// Default returns the production policy.
func Default() *Policy {
	return &Policy{
		Knockout: Knockout{
			MinIdentityTokenOverlap: 2,
			FraudFindings: []FraudFinding{
				{Key: "immediate_large_withdrawal_post_payday", Detail: "Pattern: Immediate large withdrawal post-payday detected"},
				{Key: "identical_debit_vs_credit", Detail: "Pattern: Identical debit vs credit detected (possible round-tripping)"},
				{Key: "cash_deposits_larger_than_salary", Detail: "Pattern: Cash deposits larger than declared salary detected"},
			},
			MaxConsecutiveFailures: 3,
			MinAccountAgeMonths:    3,
			MaxOverdrafts:          10,
			MaxBouncedPayments:     3,
			BounceKeywords:         []string{"insufficient", "bounced", "returned", "unable to process"},
			IncomeStalenessDays:    90,
			MinMonthlyIncome:       30_000,
		},
		Features: Features{
			SalaryKeywords: []string{"salary", "sal", "payroll", "wages", "stipend", "allowance"},
			HighRiskKeywords: []string{
				"bet9ja", "sportybet", "nairabet", "betking", "1xbet", "merrybet",
				"bet", "casino", "gambling", "lotto",
				"loan shark", "quick credit", "fairmoney", "palmcredit", "carbon",
				"branch", "okash", "easemoni",
			},
			LoanKeywords:    []string{"loan", "repayment", "credit", "emi", "installment", "mortgage"},
			LowBalanceFloor: 1_000,
		},
		Scoring: Scoring{
			Baseline: 350,
			Ceiling:  850,
			Normal: Weights{
				CreditHistory:       0.30,
				IncomeStability:     0.25,
				CashFlowHealth:      0.20,
				DebtServiceCapacity: 0.15,
				AccountBehavior:     0.10,
			},
			ThinFile: Weights{
				CreditHistory:       0.00,
				IncomeStability:     0.35,
				CashFlowHealth:      0.30,
				DebtServiceCapacity: 0.20,
				AccountBehavior:     0.15,
			},
		},
		Decision: Decision{
			RejectFloor:            500,
			ManualFloor:            600,
			ApproveFloor:           700,
			ReviewBuffer:           20,
			HighValueThreshold:     500_000,
			MinTransactions:        20,
			AffordabilityCap:       0.35,
			MinViableOfferRatio:    0.30,
			ThinFileIncomeMultiple: 2,
			ThinFileMaxTenor:       6,
			StandardTenors:         []int{3, 6, 9, 12, 15, 18, 21, 24},
		},
	}
}
