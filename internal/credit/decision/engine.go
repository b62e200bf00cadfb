// Package decision turns a score and feature set into the final lending
// decision: approval, counter-offer, manual review, or rejection.
//
// The outcome only ever moves toward a more conservative state. REJECTED is
// absorbing: once set, later stages never revisit it.
package decision

import (
	"fmt"
	"math"

	"credit-decision-workers/internal/credit/features"
	"credit-decision-workers/internal/credit/finance"
	"credit-decision-workers/internal/credit/policy"
	"credit-decision-workers/internal/credit/scoring"
	"credit-decision-workers/internal/models"
)

type Engine struct {
	cfg policy.Decision
}

func NewEngine(p *policy.Policy) *Engine {
	return &Engine{cfg: p.Decision}
}

// state is threaded through the decision stages.
type state struct {
	decision     string
	risks        []models.RiskFactor
	reviews      []string
	approval     *models.ApprovalDetails
	counterOffer *models.CounterOffer
	effAmount    float64
	effTenor     int
}

func (s *state) rejected() bool { return s.decision == models.DecisionRejected }

// demote turns an approval into a counter-offer; other states are kept.
func (s *state) demote() {
	if s.decision == models.DecisionApproved {
		s.decision = models.DecisionCounterOffer
	}
}

func (s *state) addRisk(factor, severity, detail string) {
	s.risks = append(s.risks, models.RiskFactor{Factor: factor, Severity: severity, Detail: detail})
}

// Decide runs every stage and assembles the response. Timestamp is left for
// the caller to stamp.
func (e *Engine) Decide(req *models.ApplicationRequest, fs *features.FeatureSet, score int, breakdown models.ScoreBreakdown) *models.AnalyzeResponse {
	safe := fs.SafeMonthlyIncome()
	maxPayment := safe * e.cfg.AffordabilityCap

	st := &state{
		decision:  models.DecisionApproved,
		effAmount: req.LoanAmount,
		effTenor:  req.TenorMonths,
	}

	collectRiskFactors(st, fs)
	e.scoreGate(st, score)
	if safe <= 0 {
		st.decision = models.DecisionRejected
		st.addRisk("No verifiable income", models.SeverityHigh,
			"Could not establish a positive monthly income from available data")
	}
	if fs.IsThinFile && !st.rejected() {
		e.thinFileCaps(st, safe)
	}
	if !st.rejected() && safe > 0 {
		e.affordability(st, req, fs, safe, maxPayment)
	}
	if !st.rejected() {
		e.manualReview(st, req, score)
	}

	breakdown.Total = score
	return &models.AnalyzeResponse{
		ApplicantID:         req.ApplicantID,
		Decision:            st.decision,
		Score:               score,
		ScoreBand:           scoring.Band(score),
		ScoreBreakdown:      breakdown,
		RiskFactors:         nonNil(st.risks),
		ApprovalDetails:     st.approval,
		CounterOffer:        st.counterOffer,
		EligibleTenors:      e.eligibleTenors(maxPayment, req.InterestRate, fs.IsThinFile),
		ManualReviewReasons: nonNil(st.reviews),
		RegulatoryCompliance: models.RegulatoryCompliance{
			IdentityVerified:      req.HasIdentity(),
			CreditBureauChecked:   req.CreditHistory != nil,
			AffordabilityAssessed: safe > 0,
			ThinFile:              fs.IsThinFile,
		},
		Explainability: e.explain(fs, score, st.decision),
	}
}

func (e *Engine) scoreGate(st *state, score int) {
	switch {
	case score < e.cfg.RejectFloor:
		st.decision = models.DecisionRejected
	case score < e.cfg.ManualFloor:
		st.decision = models.DecisionManualReview
		st.reviews = append(st.reviews, fmt.Sprintf(
			"Score %d is in the %s band (%d–%d). Requires human assessment.",
			score, scoring.Band(score), e.cfg.RejectFloor, e.cfg.ManualFloor-1))
	case score < e.cfg.ApproveFloor:
		st.decision = models.DecisionCounterOffer
	}
}

func (e *Engine) thinFileCaps(st *state, safe float64) {
	if limit := safe * e.cfg.ThinFileIncomeMultiple; st.effAmount > limit {
		st.effAmount = limit
		st.demote()
		st.addRisk("Thin credit file — loan amount capped", models.SeverityMedium, fmt.Sprintf(
			"No credit history. Amount capped at %g× monthly income (%s)",
			e.cfg.ThinFileIncomeMultiple, finance.Naira(limit)))
	}
	if st.effTenor > e.cfg.ThinFileMaxTenor {
		st.effTenor = e.cfg.ThinFileMaxTenor
		st.demote()
		st.addRisk("Thin credit file — tenor capped", models.SeverityMedium, fmt.Sprintf(
			"No credit history. Tenor capped at %d months", e.cfg.ThinFileMaxTenor))
	}
}

func (e *Engine) affordability(st *state, req *models.ApplicationRequest, fs *features.FeatureSet, safe, maxPayment float64) {
	rate := req.InterestRate
	payment := finance.Amortize(st.effAmount, st.effTenor, rate)

	if payment > maxPayment {
		affordable := finance.MaxPrincipal(maxPayment, st.effTenor, rate)
		if affordable < req.LoanAmount*e.cfg.MinViableOfferRatio {
			st.decision = models.DecisionRejected
			st.addRisk("Insufficient repayment capacity", models.SeverityHigh, fmt.Sprintf(
				"Monthly payment would be %s but capacity is %s",
				finance.Naira(payment), finance.Naira(maxPayment)))
			return
		}
		st.decision = models.DecisionCounterOffer
		st.counterOffer = &models.CounterOffer{
			OfferedAmount:  finance.Round2(affordable),
			OfferedTenor:   st.effTenor,
			MonthlyPayment: finance.Round2(finance.Amortize(affordable, st.effTenor, rate)),
			Reason: fmt.Sprintf(
				"Requested amount exceeds repayment capacity. Maximum affordable at current income: %s",
				finance.Naira(affordable)),
		}
		return
	}

	if st.decision != models.DecisionApproved && st.decision != models.DecisionCounterOffer {
		return
	}
	st.approval = &models.ApprovalDetails{
		ApprovedAmount: finance.Round2(st.effAmount),
		ApprovedTenor:  st.effTenor,
		MonthlyPayment: finance.Round2(payment),
		InterestRate:   rate,
		DTIRatio:       finance.Round4(payment / safe),
		Conditions:     conditions(fs),
	}
	if st.effAmount < req.LoanAmount || st.effTenor != req.TenorMonths {
		st.decision = models.DecisionCounterOffer
	}
}

// reviewTrigger is one named manual-review predicate. Triggers run in order
// and each may contribute one reason.
type reviewTrigger struct {
	name  string
	check func(req *models.ApplicationRequest, score int) (string, bool)
}

func (e *Engine) reviewTriggers() []reviewTrigger {
	return []reviewTrigger{
		{name: "borderline_score", check: func(_ *models.ApplicationRequest, score int) (string, bool) {
			for _, threshold := range e.cfg.Thresholds() {
				if int(math.Abs(float64(score-threshold))) <= e.cfg.ReviewBuffer {
					return fmt.Sprintf("Score (%d) is within %d points of decision threshold (%d)",
						score, e.cfg.ReviewBuffer, threshold), true
				}
			}
			return "", false
		}},
		{name: "high_value", check: func(req *models.ApplicationRequest, _ int) (string, bool) {
			if req.LoanAmount > e.cfg.HighValueThreshold {
				return fmt.Sprintf("Loan amount %s exceeds high-value threshold of %s",
					finance.Naira(req.LoanAmount), finance.Naira(e.cfg.HighValueThreshold)), true
			}
			return "", false
		}},
		{name: "limited_history", check: func(req *models.ApplicationRequest, _ int) (string, bool) {
			if n := req.TotalTransactions(); n < e.cfg.MinTransactions {
				return fmt.Sprintf("Limited transaction history (%d transactions). Assessment may not be fully reliable.", n), true
			}
			return "", false
		}},
	}
}

func (e *Engine) manualReview(st *state, req *models.ApplicationRequest, score int) {
	for _, trig := range e.reviewTriggers() {
		if reason, ok := trig.check(req, score); ok {
			st.reviews = append(st.reviews, reason)
		}
	}
	if len(st.reviews) > 0 && st.decision == models.DecisionApproved {
		st.decision = models.DecisionManualReview
	}
}

func (e *Engine) eligibleTenors(maxPayment, rate float64, thinFile bool) []models.EligibleTenor {
	limit := e.cfg.StandardTenors[len(e.cfg.StandardTenors)-1]
	if thinFile {
		limit = e.cfg.ThinFileMaxTenor
	}
	out := []models.EligibleTenor{}
	for _, tenor := range e.cfg.StandardTenors {
		if tenor > limit {
			break
		}
		amount := finance.MaxPrincipal(maxPayment, tenor, rate)
		if amount <= 0 {
			continue
		}
		out = append(out, models.EligibleTenor{
			Tenor:          tenor,
			MaxAmount:      finance.Round2(amount),
			MonthlyPayment: finance.Round2(finance.Amortize(amount, tenor, rate)),
		})
	}
	return out
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
