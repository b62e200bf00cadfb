package knockout

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"credit-decision-workers/internal/credit/finance"
	"credit-decision-workers/internal/credit/policy"
	"credit-decision-workers/internal/models"
)

const findingDetected = "Detected"

// identityRule cross-checks the submitted name and BVN against each account's
// bank-reported identity. Name is checked before BVN on every account.
func identityRule(k policy.Knockout) func(*models.ApplicationRequest, civil.Date) Result {
	return func(req *models.ApplicationRequest, _ civil.Date) Result {
		submittedName := strings.ToUpper(strings.TrimSpace(req.ApplicantName))
		submittedBVN := strings.TrimSpace(req.ApplicantBVN)

		for _, acct := range req.Accounts {
			if acct.Identity == nil {
				continue
			}
			bankName := strings.ToUpper(strings.TrimSpace(acct.Identity.FullName))
			bankBVN := strings.TrimSpace(acct.Identity.BVN)

			if bankName != "" && submittedName != "" && sharedTokens(submittedName, bankName) < k.MinIdentityTokenOverlap {
				return reject(ReasonIdentityNameMismatch, fmt.Sprintf(
					"Submitted name '%s' does not match account holder name '%s' on the linked bank account",
					req.ApplicantName, bankName))
			}
			if bankBVN != "" && submittedBVN != "" && bankBVN != submittedBVN {
				return reject(ReasonIdentityBVNMismatch,
					"BVN submitted at application does not match the linked bank account")
			}
		}
		return Result{}
	}
}

func sharedTokens(a, b string) int {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(a) {
		set[tok] = struct{}{}
	}
	common := 0
	for _, tok := range strings.Fields(b) {
		if _, ok := set[tok]; ok {
			common++
			delete(set, tok)
		}
	}
	return common
}

func fraudRule(k policy.Knockout) func(*models.ApplicationRequest, civil.Date) Result {
	return func(req *models.ApplicationRequest, _ civil.Date) Result {
		for _, acct := range req.Accounts {
			si := acct.StatementInsights
			if si == nil || si.ActivityInsights == nil {
				continue
			}
			rare := si.ActivityInsights.RareFindings
			for _, f := range k.FraudFindings {
				if strings.EqualFold(strings.TrimSpace(rare[f.Key]), findingDetected) {
					return reject(ReasonFraudSignalDetected, f.Detail)
				}
			}
		}
		return Result{}
	}
}

// defaultsRule is skipped without a bureau record: no history is thin-file,
// not a default.
func defaultsRule(k policy.Knockout) func(*models.ApplicationRequest, civil.Date) Result {
	return func(req *models.ApplicationRequest, _ civil.Date) Result {
		if req.CreditHistory == nil {
			return Result{}
		}
		for _, inst := range req.CreditHistory.CreditHistory {
			name := inst.Institution
			if name == "" {
				name = "unknown institution"
			}
			for _, loan := range inst.History {
				if strings.EqualFold(strings.TrimSpace(loan.PerformanceStatus), models.PerformanceNonPerforming) {
					return reject(ReasonActiveDefault, fmt.Sprintf("Non-performing loan at %s", name))
				}
				if loan.Status() == models.LoanStatusWrittenOff {
					return reject(ReasonWrittenOffLoan, fmt.Sprintf("Written-off loan at %s", name))
				}
				if run := longestDelinquentRun(loan.RepaymentSchedule); run >= k.MaxConsecutiveFailures {
					return reject(ReasonConsecutivePaymentFailures,
						fmt.Sprintf("%d consecutive missed payments at %s", run, name))
				}
			}
		}
		return Result{}
	}
}

func longestDelinquentRun(schedule []models.Installment) int {
	run, longest := 0, 0
	for _, inst := range schedule {
		if inst.IsDelinquent() {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	return longest
}

func accountHealthRule(k policy.Knockout) func(*models.ApplicationRequest, civil.Date) Result {
	return func(req *models.ApplicationRequest, asOf civil.Date) Result {
		overdrafts, bounced := 0, 0

		for _, acct := range req.Accounts {
			if si := acct.StatementInsights; si != nil {
				if start, ok := models.ParseDate(si.StartDate); ok {
					age := float64(asOf.DaysSince(start)) / 30.0
					if age < k.MinAccountAgeMonths {
						return reject(ReasonAccountTooNew, fmt.Sprintf(
							"Account history is only %.1f months. Minimum required: %s months",
							age, trimFloat(k.MinAccountAgeMonths)))
					}
				}
			}
			for _, txn := range acct.Transactions {
				if txn.Balance < 0 {
					overdrafts++
				}
				if txn.NarrationContains(k.BounceKeywords) {
					bounced++
				}
			}
		}

		if overdrafts > k.MaxOverdrafts {
			return reject(ReasonExcessiveOverdrafts, fmt.Sprintf(
				"%d overdraft instances detected across all accounts (maximum allowed: %d)",
				overdrafts, k.MaxOverdrafts))
		}
		if bounced > k.MaxBouncedPayments {
			return reject(ReasonExcessiveBouncedPayments, fmt.Sprintf(
				"%d bounced/returned payments detected (maximum allowed: %d)",
				bounced, k.MaxBouncedPayments))
		}
		return Result{}
	}
}

// incomeRule only judges accounts that carry income data; missing income is
// estimated later by feature extraction rather than treated as a failure.
func incomeRule(k policy.Knockout) func(*models.ApplicationRequest, civil.Date) Result {
	return func(req *models.ApplicationRequest, asOf civil.Date) Result {
		for _, acct := range req.Accounts {
			inc := acct.Income
			if inc == nil {
				continue
			}
			if len(inc.IncomeStreams) == 0 {
				return reject(ReasonNoIncomeDetected, "No income streams identified in bank statement analysis")
			}

			var latest civil.Date
			found := false
			for _, s := range inc.IncomeStreams {
				if d, ok := models.ParseDate(s.LastIncomeDate); ok && (!found || d.After(latest)) {
					latest, found = d, true
				}
			}
			if found {
				if stale := asOf.DaysSince(latest); stale > k.IncomeStalenessDays {
					return reject(ReasonIncomeStale, fmt.Sprintf(
						"Last income was %d days ago. Maximum allowed gap: %d days", stale, k.IncomeStalenessDays))
				}
			}

			if inc.MonthlyIncome < k.MinMonthlyIncome {
				return reject(ReasonIncomeBelowMinimum, fmt.Sprintf(
					"Monthly income %s is below the minimum threshold of %s",
					finance.Naira(inc.MonthlyIncome), finance.Naira(k.MinMonthlyIncome)))
			}
		}
		return Result{}
	}
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
