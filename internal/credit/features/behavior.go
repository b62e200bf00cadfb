package features

import (
	"math"
	"slices"

	"cloud.google.com/go/civil"

	"credit-decision-workers/internal/models"
)

type datedTxn struct {
	date civil.Date
	txn  models.Transaction
}

func (e *Extractor) extractBehavior(fs *FeatureSet, req *models.ApplicationRequest, asOf civil.Date) {
	lowDays := make(map[civil.Date]struct{})
	var oldestTxn, earliestStart civil.Date
	haveTxn, haveStart, haveBalance := false, false, false

	for _, acct := range req.Accounts {
		if si := acct.StatementInsights; si != nil {
			if d, ok := models.ParseDate(si.StartDate); ok && (!haveStart || d.Before(earliestStart)) {
				earliestStart, haveStart = d, true
			}
		}

		dated := make([]datedTxn, 0, len(acct.Transactions))
		for _, txn := range acct.Transactions {
			fs.TotalTransactions++
			if txn.Balance < 0 {
				fs.OverdraftCount++
			}
			if txn.NarrationContains(e.bounceKeywords) {
				fs.BouncedPaymentCount++
			}
			if txn.IsDebit() && matchesWord(normalizeWords(txn.Narration), e.features.HighRiskKeywords) {
				fs.HighRiskTransactionCount++
			}
			if !haveBalance || txn.Balance < fs.MinBalance {
				fs.MinBalance, haveBalance = txn.Balance, true
			}
			if d, ok := models.ParseDate(txn.Date); ok {
				dated = append(dated, datedTxn{date: d, txn: txn})
				if !haveTxn || d.Before(oldestTxn) {
					oldestTxn, haveTxn = d, true
				}
			}
		}

		for day, balance := range endOfDayBalances(dated) {
			if balance < e.features.LowBalanceFloor {
				lowDays[day] = struct{}{}
			}
		}
	}
	fs.LowBalanceDays = len(lowDays)

	switch {
	case haveStart:
		fs.AccountAgeMonths = math.Max(0, float64(asOf.DaysSince(earliestStart))/30.0)
	case haveTxn:
		fs.AccountAgeMonths = math.Max(0, float64(asOf.DaysSince(oldestTxn))/30.0)
	}
}

// endOfDayBalances keeps the balance after the last transaction of each day.
// Same-day transactions keep their statement order.
func endOfDayBalances(txns []datedTxn) map[civil.Date]float64 {
	slices.SortStableFunc(txns, func(a, b datedTxn) int {
		switch {
		case a.date.Before(b.date):
			return -1
		case a.date.After(b.date):
			return 1
		}
		return 0
	})
	out := make(map[civil.Date]float64, len(txns))
	for _, t := range txns {
		out[t.date] = t.txn.Balance
	}
	return out
}
