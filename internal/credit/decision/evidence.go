package decision

import (
	"fmt"

	"credit-decision-workers/internal/credit/features"
	"credit-decision-workers/internal/models"
)

const maxExplanations = 4

func collectRiskFactors(st *state, fs *features.FeatureSet) {
	if fs.OverdraftCount > 3 {
		st.addRisk("Frequent overdrafts", models.SeverityMedium,
			fmt.Sprintf("%d overdraft instances detected", fs.OverdraftCount))
	}
	if fs.BouncedPaymentCount > 0 {
		severity := models.SeverityMedium
		if fs.BouncedPaymentCount > 2 {
			severity = models.SeverityHigh
		}
		st.addRisk("Bounced payments", severity,
			fmt.Sprintf("%d bounced/returned payment(s)", fs.BouncedPaymentCount))
	}
	if fs.HighRiskTransactionCount > 0 {
		st.addRisk("High-risk transactions", models.SeverityMedium,
			"Transactions to gambling platforms or unregulated lenders detected")
	}
	if staleIncome(fs) {
		st.addRisk("Stale income", models.SeverityMedium,
			fmt.Sprintf("Last income received %d days ago", *fs.IncomeRecencyDays))
	}
	if fs.DebitToCreditRatio > 1.0 {
		st.addRisk("Spending exceeds income", models.SeverityHigh,
			fmt.Sprintf("Debit-to-credit ratio: %.2f", fs.DebitToCreditRatio))
	}
	if fs.IsFallbackIncome() {
		st.addRisk("Income estimated from transactions", models.SeverityLow,
			"Income webhook not available. Income estimated from transaction narrations — less accurate than Mono's analysis.")
	}
}

// staleIncome is false when recency is unknown.
func staleIncome(fs *features.FeatureSet) bool {
	return fs.IncomeRecencyDays != nil && *fs.IncomeRecencyDays > 45
}

func conditions(fs *features.FeatureSet) []string {
	out := []string{}
	if fs.IsThinFile {
		out = append(out, "First-time borrower terms apply. Eligible for standard terms after successful repayment history.")
	}
	if fs.IsFallbackIncome() {
		out = append(out, "Income requires verification via payslip or employer confirmation.")
	}
	if fs.HighRiskTransactionCount > 0 {
		out = append(out, "No gambling or informal lending activity during loan tenor.")
	}
	return out
}

func strengths(fs *features.FeatureSet) []string {
	out := []string{}
	if psr := fs.PaymentSuccessRate; psr != nil && *psr >= 0.90 {
		out = append(out, fmt.Sprintf("Strong repayment history (%.0f%% on-time payments)", *psr*100))
	}
	if fs.StableIncomeRatio >= 0.70 {
		out = append(out, "Consistent salary income as primary source")
	}
	if fs.PositiveCashFlowRatio >= 0.80 {
		out = append(out, "Cash flow positive in most months")
	}
	if fs.OverdraftCount == 0 && fs.BouncedPaymentCount == 0 {
		out = append(out, "Clean account — zero overdrafts or bounced payments")
	}
	if fs.AccountAgeMonths >= 18 {
		out = append(out, fmt.Sprintf("%.0f months of verified banking history", fs.AccountAgeMonths))
	}
	return out
}

func weaknesses(fs *features.FeatureSet) []string {
	out := []string{}
	if staleIncome(fs) {
		out = append(out, fmt.Sprintf("Income last received %d days ago", *fs.IncomeRecencyDays))
	}
	if fs.DebitToCreditRatio > 1.0 {
		out = append(out, "Monthly expenses exceed monthly income")
	}
	if fs.SpendingVolatility > 0.5 {
		out = append(out, "Inconsistent spending — high month-to-month variation")
	}
	if fs.IsThinFile {
		out = append(out, "No credit bureau history — first-time borrower")
	}
	if fs.HighRiskTransactionCount > 0 {
		out = append(out, "Transactions to gambling or informal lenders detected")
	}
	return out
}

func (e *Engine) explain(fs *features.FeatureSet, score int, decision string) models.Explainability {
	pros, cons := strengths(fs), weaknesses(fs)

	var primary string
	switch decision {
	case models.DecisionApproved:
		primary = "Applicant meets all credit criteria"
		if len(pros) > 0 {
			primary = pros[0]
		}
	case models.DecisionRejected:
		switch {
		case score < e.cfg.RejectFloor:
			primary = fmt.Sprintf("Credit score (%d) is below the minimum threshold of %d", score, e.cfg.RejectFloor)
		case len(cons) > 0:
			primary = cons[0]
		default:
			primary = "Does not meet lending criteria"
		}
	case models.DecisionCounterOffer:
		primary = "Requested terms adjusted to match verified repayment capacity"
	default:
		primary = "Application requires manual review before a decision can be made"
	}

	return models.Explainability{
		PrimaryReason: primary,
		KeyStrengths:  pros[:min(len(pros), maxExplanations)],
		KeyWeaknesses: cons[:min(len(cons), maxExplanations)],
	}
}
