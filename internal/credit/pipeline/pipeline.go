// Package pipeline sequences knockout, feature extraction, scoring and
// decisioning for one application.
package pipeline

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"cloud.google.com/go/civil"

	"credit-decision-workers/internal/common/logger"
	"credit-decision-workers/internal/credit/decision"
	"credit-decision-workers/internal/credit/features"
	"credit-decision-workers/internal/credit/knockout"
	"credit-decision-workers/internal/credit/policy"
	"credit-decision-workers/internal/credit/scoring"
	"credit-decision-workers/internal/models"
)

// Outcome is the decision payload plus the signals callers report on.
type Outcome struct {
	Response *models.AnalyzeResponse
	Knockout knockout.Result
	Features *features.FeatureSet // nil on knockout
}

// KnockedOut reports whether the application was stopped before scoring.
func (o *Outcome) KnockedOut() bool { return o.Knockout.Rejected }

type Pipeline struct {
	policy    *policy.Policy
	knockout  *knockout.Engine
	extractor *features.Extractor
	scorer    *scoring.Scorer
	decider   *decision.Engine
	log       logger.Logger
	now       func() time.Time
}

type Option func(*Pipeline)

// WithClock fixes the evaluation clock. Date-relative features and the
// response timestamp both come from it.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New wires every stage from one validated policy. The policy must not be
// modified afterwards.
func New(pol *policy.Policy, log logger.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		policy:    pol,
		knockout:  knockout.NewEngine(pol),
		extractor: features.NewExtractor(pol),
		scorer:    scoring.NewScorer(pol),
		decider:   decision.NewEngine(pol),
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Evaluate runs the full pipeline. Well-formed input never fails; an error
// means a defect and carries the recovered panic.
func (p *Pipeline) Evaluate(req *models.ApplicationRequest) (out *Outcome, err error) {
	if req == nil {
		return nil, errors.New("credit evaluation failed: nil application")
	}
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("credit evaluation panicked", map[string]interface{}{
				"applicantId": req.ApplicantID,
				"panic":       fmt.Sprint(r),
				"stack":       string(debug.Stack()),
			})
			out, err = nil, fmt.Errorf("credit evaluation failed for applicant %s: %v", req.ApplicantID, r)
		}
	}()

	now := p.now().UTC()
	asOf := civil.DateOf(now)
	stamp := now.Format(time.RFC3339)
	log := p.log.With(map[string]interface{}{"applicantId": req.ApplicantID})
	log.Info("pipeline start", map[string]interface{}{
		"loanAmount":   req.LoanAmount,
		"tenorMonths":  req.TenorMonths,
		"interestRate": req.InterestRate,
		"accounts":     len(req.Accounts),
	})

	if ko := p.knockout.Evaluate(req, asOf); ko.Rejected {
		log.Warn("knockout fired", map[string]interface{}{
			"rule":       ko.Rule,
			"reasonCode": ko.ReasonCode,
		})
		resp := p.knockoutResponse(req, ko)
		resp.Timestamp = stamp
		return &Outcome{Response: resp, Knockout: ko}, nil
	}

	fs := p.extractor.Extract(req, asOf)
	log.Debug("features extracted", map[string]interface{}{
		"monthlyIncome":  fs.TotalMonthlyIncome,
		"incomeSource":   fs.IncomeSource,
		"thinFile":       fs.IsThinFile,
		"monthsObserved": fs.MonthsObserved,
	})

	score, breakdown := p.scorer.Score(fs, scoring.Loan{
		Amount:        req.LoanAmount,
		TenorMonths:   req.TenorMonths,
		AnnualRatePct: req.InterestRate,
	})

	log.Debug("score computed", map[string]interface{}{
		"score":     score,
		"breakdown": breakdown.Components(),
	})

	resp := p.decider.Decide(req, fs, score, breakdown)
	resp.Timestamp = stamp

	log.Info("decision made", map[string]interface{}{
		"decision":             resp.Decision,
		"scoreBand":            resp.ScoreBand,
		"manualReviewTriggers": len(resp.ManualReviewReasons),
	})
	return &Outcome{Response: resp, Features: fs}, nil
}

// knockoutResponse is the minimal rejection: floor score, worst band, one
// risk factor, and only the compliance flags checkable before termination.
func (p *Pipeline) knockoutResponse(req *models.ApplicationRequest, ko knockout.Result) *models.AnalyzeResponse {
	floor := p.policy.Scoring.Baseline
	return &models.AnalyzeResponse{
		ApplicantID:    req.ApplicantID,
		Decision:       models.DecisionRejected,
		Score:          floor,
		ScoreBand:      scoring.BandVeryHighRisk,
		ScoreBreakdown: models.ScoreBreakdown{Total: floor},
		RiskFactors: []models.RiskFactor{{
			Factor:   ko.ReasonCode,
			Severity: models.SeverityHigh,
			Detail:   ko.Detail,
		}},
		EligibleTenors:      []models.EligibleTenor{},
		ManualReviewReasons: []string{},
		RegulatoryCompliance: models.RegulatoryCompliance{
			IdentityVerified:    req.HasIdentity(),
			CreditBureauChecked: req.CreditHistory != nil,
		},
		Explainability: models.Explainability{
			PrimaryReason: ko.Detail,
			KeyStrengths:  []string{},
			KeyWeaknesses: []string{ko.Detail},
		},
	}
}
