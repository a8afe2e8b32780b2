// Package pipeline chains ledger, signals, benefits and ranking for a client
// and runs that chain over the whole client base.
package pipeline

import (
	"ProductAdvisor/internal/benefit"
	"ProductAdvisor/internal/catalog"
	"ProductAdvisor/internal/ledger"
	"ProductAdvisor/internal/model"
	"ProductAdvisor/internal/ranker"
	"ProductAdvisor/internal/signals"
)

// Result is everything one scoring pass produces for a client. Each slice
// fully replaces the client's previous rows.
type Result struct {
	ClientCode      int
	CurrentProduct  string
	Signals         []model.Signal
	Benefits        []model.ProductBenefit
	Recommendations []model.Recommendation
}

// Score runs the full chain for one client. It is pure: the same view and
// catalog always yield the same Result.
func Score(v *ledger.View, cat *catalog.Catalog) Result {
	benefits := benefit.Calculate(v, cat)
	return Result{
		ClientCode:      v.ClientCode(),
		CurrentProduct:  v.CurrentProduct(),
		Signals:         signals.Detect(v),
		Benefits:        benefits,
		Recommendations: ranker.Rank(v.ClientCode(), v.CurrentProduct(), benefits),
	}
}
