package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultWarningThreshold is the spend percentage at which an alert becomes
// warranted. The limit-exceeded wording kicks in at 100 regardless of the
// configured warning threshold.
const DefaultWarningThreshold = 80.0

// PeriodOf returns the evaluation period ("2006-01") containing the instant.
func PeriodOf(t time.Time) string {
	return t.Format("2006-01")
}

// EvaluateAlerts inspects every limit-bearing expense category against the
// current month's spend and returns the alerts that must be created or
// updated. Unchanged alerts are not returned; alerts for categories that
// dropped back below the threshold are left alone (an alert is a monotonic
// record of a detected event, not a live status).
func EvaluateAlerts(categories []Category, transactions []Transaction, existing []Alert, now time.Time) []Alert {
	return EvaluateAlertsWithThreshold(categories, transactions, existing, now, DefaultWarningThreshold)
}

// EvaluateAlertsWithThreshold is EvaluateAlerts with an explicit warning
// threshold (percentage, e.g. 80).
func EvaluateAlertsWithThreshold(categories []Category, transactions []Transaction, existing []Alert, now time.Time, threshold float64) []Alert {
	period := PeriodOf(now)
	byIdentity := make(map[string]Alert, len(existing))
	for _, a := range existing {
		byIdentity[a.CategoryID+"/"+a.Period] = a
	}

	var out []Alert
	for _, c := range categories {
		if !c.HasLimit() {
			continue
		}
		spent := MonthlyCategorySpend(transactions, c.ID, now)
		limit := *c.MonthlyLimit
		// Dividing pre-scaled cents keeps exact percentages exact (110, not
		// 110.00000000000001).
		pct := float64(spent.Cents*100) / float64(limit.Cents)
		if pct < threshold {
			continue
		}
		msg := alertMessage(c.Name, spent, limit, pct)

		prev, ok := byIdentity[c.ID+"/"+period]
		if !ok {
			out = append(out, Alert{
				ID:          uuid.NewString(),
				CategoryID:  c.ID,
				Period:      period,
				Message:     msg,
				AmountSpent: spent,
				LimitAmount: limit,
				Percentage:  pct,
				Date:        DateOf(now),
				CreatedAt:   now.UTC(),
			})
			continue
		}
		if prev.AmountSpent == spent && prev.Percentage == pct && prev.Message == msg {
			// Re-evaluation with unchanged inputs; nothing to do.
			continue
		}
		updated := prev
		updated.AmountSpent = spent
		updated.LimitAmount = limit
		updated.Percentage = pct
		updated.Message = msg
		// A read alert is re-opened only when spend newly crosses the limit.
		if prev.IsRead && prev.Percentage < 100 && pct >= 100 {
			updated.IsRead = false
		}
		out = append(out, updated)
	}
	return out
}

func alertMessage(category string, spent, limit Money, pct float64) string {
	if pct >= 100 {
		return fmt.Sprintf("Limit exceeded! You spent %s of the %s limit for category %s", spent, limit, category)
	}
	return fmt.Sprintf("Warning! You spent %.1f%% of the limit for category %s", pct, category)
}
