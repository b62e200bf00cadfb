// internal/models/decision.go
package models

// Decision outcomes.
const (
	DecisionApproved     = "APPROVED"
	DecisionRejected     = "REJECTED"
	DecisionCounterOffer = "COUNTER_OFFER"
	DecisionManualReview = "MANUAL_REVIEW"
)

// Risk factor severities.
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

// AnalyzeResponse is the decision payload returned for one application.
// List fields are always non-nil so repeated runs encode identically.
type AnalyzeResponse struct {
	ApplicantID          string               `json:"applicant_id"`
	Decision             string               `json:"decision"`
	Score                int                  `json:"score"`
	ScoreBand            string               `json:"score_band"`
	ScoreBreakdown       ScoreBreakdown       `json:"score_breakdown"`
	RiskFactors          []RiskFactor         `json:"risk_factors"`
	ApprovalDetails      *ApprovalDetails     `json:"approval_details"`
	CounterOffer         *CounterOffer        `json:"counter_offer"`
	EligibleTenors       []EligibleTenor      `json:"eligible_tenors"`
	ManualReviewReasons  []string             `json:"manual_review_reasons"`
	RegulatoryCompliance RegulatoryCompliance `json:"regulatory_compliance"`
	Explainability       Explainability       `json:"explainability"`
	Timestamp            string               `json:"timestamp"`
}

// ScoreBreakdown holds earned points per component, not percentages.
type ScoreBreakdown struct {
	CreditHistory       float64 `json:"credit_history"`
	IncomeStability     float64 `json:"income_stability"`
	CashFlowHealth      float64 `json:"cash_flow_health"`
	DebtServiceCapacity float64 `json:"debt_service_capacity"`
	AccountBehavior     float64 `json:"account_behavior"`
	Total               int     `json:"total"`
}

// Components returns the earned points in their fixed reporting order.
func (b ScoreBreakdown) Components() []float64 {
	return []float64{
		b.CreditHistory,
		b.IncomeStability,
		b.CashFlowHealth,
		b.DebtServiceCapacity,
		b.AccountBehavior,
	}
}

type RiskFactor struct {
	Factor   string `json:"factor"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

type ApprovalDetails struct {
	ApprovedAmount float64  `json:"approved_amount"`
	ApprovedTenor  int      `json:"approved_tenor"`
	MonthlyPayment float64  `json:"monthly_payment"`
	InterestRate   float64  `json:"interest_rate"`
	DTIRatio       float64  `json:"dti_ratio"`
	Conditions     []string `json:"conditions"`
}

type CounterOffer struct {
	OfferedAmount  float64 `json:"offered_amount"`
	OfferedTenor   int     `json:"offered_tenor"`
	MonthlyPayment float64 `json:"monthly_payment"`
	Reason         string  `json:"reason"`
}

type EligibleTenor struct {
	Tenor          int     `json:"tenor"`
	MaxAmount      float64 `json:"max_amount"`
	MonthlyPayment float64 `json:"monthly_payment"`
}

type RegulatoryCompliance struct {
	IdentityVerified      bool `json:"identity_verified"`
	CreditBureauChecked   bool `json:"credit_bureau_checked"`
	AffordabilityAssessed bool `json:"affordability_assessed"`
	ThinFile              bool `json:"thin_file"`
}

type Explainability struct {
	PrimaryReason string   `json:"primary_reason"`
	KeyStrengths  []string `json:"key_strengths"`
	KeyWeaknesses []string `json:"key_weaknesses"`
}
