// Package knockout runs the hard-stop eligibility rules that are evaluated on
// the raw application before any feature extraction or scoring.
package knockout

import (
	"cloud.google.com/go/civil"

	"credit-decision-workers/internal/credit/policy"
	"credit-decision-workers/internal/models"
)

// Reason codes reported on rejection.
const (
	ReasonIdentityNameMismatch       = "IDENTITY_NAME_MISMATCH"
	ReasonIdentityBVNMismatch        = "IDENTITY_BVN_MISMATCH"
	ReasonFraudSignalDetected        = "FRAUD_SIGNAL_DETECTED"
	ReasonActiveDefault              = "ACTIVE_DEFAULT"
	ReasonWrittenOffLoan             = "WRITTEN_OFF_LOAN"
	ReasonConsecutivePaymentFailures = "CONSECUTIVE_PAYMENT_FAILURES"
	ReasonAccountTooNew              = "ACCOUNT_TOO_NEW"
	ReasonExcessiveOverdrafts        = "EXCESSIVE_OVERDRAFTS"
	ReasonExcessiveBouncedPayments   = "EXCESSIVE_BOUNCED_PAYMENTS"
	ReasonNoIncomeDetected           = "NO_INCOME_DETECTED"
	ReasonIncomeStale                = "INCOME_STALE"
	ReasonIncomeBelowMinimum         = "INCOME_BELOW_MINIMUM"
)

// Result is the outcome of a knockout evaluation. A zero Result means passed.
type Result struct {
	Rejected   bool
	Rule       string
	ReasonCode string
	Detail     string
}

func (r Result) Passed() bool { return !r.Rejected }

func reject(code, detail string) Result {
	return Result{Rejected: true, ReasonCode: code, Detail: detail}
}

// Rule is one named predicate. Check returns a rejected Result when it fires.
type Rule struct {
	Name  string
	Check func(req *models.ApplicationRequest, asOf civil.Date) Result
}

// Engine evaluates rules in a fixed order; the first rejection wins.
type Engine struct {
	rules []Rule
}

// NewEngine builds the rule sequence from the policy. Order matters: cheap,
// authoritative checks run first and later rules never see earlier hits.
func NewEngine(p *policy.Policy) *Engine {
	k := p.Knockout
	return &Engine{
		rules: []Rule{
			{Name: "identity", Check: identityRule(k)},
			{Name: "fraud_signals", Check: fraudRule(k)},
			{Name: "active_defaults", Check: defaultsRule(k)},
			{Name: "account_health", Check: accountHealthRule(k)},
			{Name: "income", Check: incomeRule(k)},
		},
	}
}

// Evaluate runs the rules against req as of the given date.
func (e *Engine) Evaluate(req *models.ApplicationRequest, asOf civil.Date) Result {
	for _, rule := range e.rules {
		if res := rule.Check(req, asOf); res.Rejected {
			res.Rule = rule.Name
			return res
		}
	}
	return Result{}
}

// RuleNames lists the rules in evaluation order.
func (e *Engine) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}
