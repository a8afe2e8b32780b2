package ledger

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"ProductAdvisor/internal/model"
)

// SpendingVolatility groups all transactions by calendar month and returns the
// coefficient of variation of the monthly totals. Fewer than two months, or a
// zero mean, yields 0.
func SpendingVolatility(txs []model.Transaction) float64 {
	var months []string
	totals := make(map[string]float64)
	for _, t := range txs {
		key := t.Date.Format("2006-01")
		if _, ok := totals[key]; !ok {
			months = append(months, key)
		}
		totals[key] += t.Amount
	}
	if len(months) < 2 {
		return 0
	}

	amounts := make([]float64, len(months))
	for i, m := range months {
		amounts[i] = totals[m]
	}
	mean, variance := stat.PopMeanVariance(amounts, nil)
	if mean == 0 {
		return 0
	}
	return math.Sqrt(variance) / mean
}
