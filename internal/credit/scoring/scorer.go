// Package scoring converts a FeatureSet into a 350-850 credit score with a
// per-component breakdown of earned points.
package scoring

import (
	"math"

	"credit-decision-workers/internal/credit/features"
	"credit-decision-workers/internal/credit/finance"
	"credit-decision-workers/internal/credit/policy"
	"credit-decision-workers/internal/models"
)

// Score bands, inclusive ranges.
const (
	BandVeryLowRisk  = "VERY_LOW_RISK"
	BandLowRisk      = "LOW_RISK"
	BandMediumRisk   = "MEDIUM_RISK"
	BandHighRisk     = "HIGH_RISK"
	BandVeryHighRisk = "VERY_HIGH_RISK"
)

// Band maps a score to its risk band.
func Band(score int) string {
	switch {
	case score >= 800:
		return BandVeryLowRisk
	case score >= 700:
		return BandLowRisk
	case score >= 600:
		return BandMediumRisk
	case score >= 500:
		return BandHighRisk
	default:
		return BandVeryHighRisk
	}
}

// Loan carries the requested terms that debt-service scoring needs.
type Loan struct {
	Amount        float64
	TenorMonths   int
	AnnualRatePct float64
}

// Components are the raw 0-100 values before weighting.
type Components struct {
	CreditHistory       float64
	IncomeStability     float64
	CashFlowHealth      float64
	DebtServiceCapacity float64
	AccountBehavior     float64
}

type Scorer struct {
	cfg policy.Scoring
}

func NewScorer(p *policy.Policy) *Scorer {
	return &Scorer{cfg: p.Scoring}
}

// Weights returns the weight set the scorer applies to fs.
func (s *Scorer) Weights(fs *features.FeatureSet) policy.Weights {
	if fs.IsThinFile {
		return s.cfg.ThinFile
	}
	return s.cfg.Normal
}

// Score returns the clamped total and the earned points per component.
func (s *Scorer) Score(fs *features.FeatureSet, loan Loan) (int, models.ScoreBreakdown) {
	raw := RawComponents(fs, loan)
	w := s.Weights(fs)
	span := s.cfg.Span()

	points := [5]float64{
		raw.CreditHistory / 100 * w.CreditHistory * span,
		raw.IncomeStability / 100 * w.IncomeStability * span,
		raw.CashFlowHealth / 100 * w.CashFlowHealth * span,
		raw.DebtServiceCapacity / 100 * w.DebtServiceCapacity * span,
		raw.AccountBehavior / 100 * w.AccountBehavior * span,
	}

	sum := 0.0
	for _, p := range points {
		sum += p
	}
	total := int(math.Round(float64(s.cfg.Baseline) + sum))
	total = max(s.cfg.Baseline, min(s.cfg.Ceiling, total))

	return total, models.ScoreBreakdown{
		CreditHistory:       finance.Round2(points[0]),
		IncomeStability:     finance.Round2(points[1]),
		CashFlowHealth:      finance.Round2(points[2]),
		DebtServiceCapacity: finance.Round2(points[3]),
		AccountBehavior:     finance.Round2(points[4]),
		Total:               total,
	}
}

// RawComponents scores each component on its own 0-100 scale.
func RawComponents(fs *features.FeatureSet, loan Loan) Components {
	return Components{
		CreditHistory:       clamp100(creditHistory(fs)),
		IncomeStability:     clamp100(incomeStability(fs)),
		CashFlowHealth:      clamp100(cashFlowHealth(fs)),
		DebtServiceCapacity: clamp100(debtServiceCapacity(fs, loan)),
		AccountBehavior:     clamp100(accountBehavior(fs)),
	}
}

func clamp100(v float64) float64 {
	return max(0, min(100, v))
}
