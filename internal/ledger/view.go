// Package ledger derives per-client spending and transfer aggregates.
package ledger

import (
	"sort"

	"ProductAdvisor/internal/model"
)

// CategorySpend is one entry of the ranked category list.
type CategorySpend struct {
	Category string
	Amount   float64
}

// View holds every aggregate the rules read, computed once in New.
// A View is never mutated after construction.
type View struct {
	profile      model.ClientProfile
	transactions []model.Transaction
	transfers    []model.Transfer

	totalSpending   float64
	byCategory      map[string]float64
	topCategories   []CategorySpend
	patterns        map[model.Direction]map[string]float64
	foreignSpending float64
	fxVolume        float64
	fxActivity      float64
	hasLoan         bool
	travelSpending  float64
	inflows         float64
	outflows        float64
	currentProduct  string
	volatility      float64
}

// New computes the view for one client. Empty input yields zero aggregates.
func New(rec *model.ClientRecord) *View {
	v := &View{
		profile:      rec.Profile,
		transactions: rec.Transactions,
		transfers:    rec.Transfers,
		byCategory:   make(map[string]float64),
		patterns: map[model.Direction]map[string]float64{
			model.DirectionIn:  {},
			model.DirectionOut: {},
		},
	}
	v.aggregateTransactions()
	v.aggregateTransfers()
	v.volatility = SpendingVolatility(rec.Transactions)
	return v
}

func (v *View) aggregateTransactions() {
	var order []string
	var latest model.Transaction
	haveLatest := false

	for _, t := range v.transactions {
		if t.Currency == model.BaseCurrency {
			v.totalSpending += t.Amount
			if _, seen := v.byCategory[t.Category]; !seen {
				order = append(order, t.Category)
			}
			v.byCategory[t.Category] += t.Amount
		} else {
			v.foreignSpending += t.Amount * FXRates[t.Currency]
		}
		if t.Product != "" && (!haveLatest || !t.Date.Before(latest.Date)) {
			latest = t
			haveLatest = true
		}
	}
	if haveLatest {
		v.currentProduct = latest.Product
	}

	v.topCategories = make([]CategorySpend, 0, len(order))
	for _, c := range order {
		v.topCategories = append(v.topCategories, CategorySpend{Category: c, Amount: v.byCategory[c]})
	}
	sort.SliceStable(v.topCategories, func(i, j int) bool {
		return v.topCategories[i].Amount > v.topCategories[j].Amount
	})

	for _, c := range TravelCategories {
		v.travelSpending += v.byCategory[c]
	}
}

func (v *View) aggregateTransfers() {
	var kztVolume float64
	for _, t := range v.transfers {
		if contains(LoanTransferTypes, t.Type) {
			v.hasLoan = true
		}
		if t.Currency != model.BaseCurrency {
			continue
		}
		kztVolume += t.Amount
		if contains(FXTransferTypes, t.Type) {
			v.fxVolume += t.Amount
		}
		dir, ok := v.patterns[t.Direction]
		if !ok {
			continue
		}
		dir[t.Type] += t.Amount
	}

	for _, amount := range v.patterns[model.DirectionIn] {
		v.inflows += amount
	}
	for _, amount := range v.patterns[model.DirectionOut] {
		v.outflows += amount
	}
	v.outflows += v.totalSpending

	if denom := v.totalSpending + kztVolume; denom > 0 {
		v.fxActivity = v.fxVolume / denom
		if v.fxActivity > 1 {
			v.fxActivity = 1
		}
	}
}

// Profile returns the client profile.
func (v *View) Profile() model.ClientProfile { return v.profile }

// ClientCode is shorthand for Profile().ClientCode.
func (v *View) ClientCode() int { return v.profile.ClientCode }

// Balance is the average monthly balance in KZT.
func (v *View) Balance() float64 { return v.profile.AvgMonthlyBalance }

// Transactions returns the input transactions. Callers must not modify them.
func (v *View) Transactions() []model.Transaction { return v.transactions }

// Transfers returns the input transfers. Callers must not modify them.
func (v *View) Transfers() []model.Transfer { return v.transfers }

// TotalSpending is the 3-month sum of KZT transactions.
func (v *View) TotalSpending() float64 { return v.totalSpending }

// MonthlySpending is TotalSpending averaged over the observation window.
func (v *View) MonthlySpending() float64 { return v.totalSpending / ObservationMonths }

// CategorySpending returns the KZT spend in one category.
func (v *View) CategorySpending(category string) float64 { return v.byCategory[category] }

// SpendingIn sums the KZT spend over several categories.
func (v *View) SpendingIn(categories []string) float64 {
	var sum float64
	for _, c := range categories {
		sum += v.byCategory[c]
	}
	return sum
}

// SpendingByCategory returns a copy of the per-category KZT spend.
func (v *View) SpendingByCategory() map[string]float64 {
	out := make(map[string]float64, len(v.byCategory))
	for k, a := range v.byCategory {
		out[k] = a
	}
	return out
}

// TopCategories lists categories by spend descending, ties in first-seen order.
func (v *View) TopCategories() []CategorySpend {
	out := make([]CategorySpend, len(v.topCategories))
	copy(out, v.topCategories)
	return out
}

// TransferVolume returns the KZT volume for a direction and transfer type.
func (v *View) TransferVolume(dir model.Direction, transferType string) float64 {
	return v.patterns[dir][transferType]
}

// OutVolume sums the outgoing KZT volume over several transfer types.
func (v *View) OutVolume(types ...string) float64 {
	var sum float64
	for _, t := range types {
		sum += v.patterns[model.DirectionOut][t]
	}
	return sum
}

// ForeignCurrencySpending is the non-KZT spend converted at fixed rates.
func (v *View) ForeignCurrencySpending() float64 { return v.foreignSpending }

// FXActivityScore is the share of fx_buy/fx_sell volume in total KZT activity, in [0,1].
func (v *View) FXActivityScore() float64 { return v.fxActivity }

// HasLoanActivity reports any loan, card repayment or installment transfer.
func (v *View) HasLoanActivity() bool { return v.hasLoan }

// TravelSpending is the KZT spend over travel, hotels and taxi.
func (v *View) TravelSpending() float64 { return v.travelSpending }

// TotalInflows sums incoming KZT transfers.
func (v *View) TotalInflows() float64 { return v.inflows }

// TotalOutflows sums outgoing KZT transfers plus KZT spending.
func (v *View) TotalOutflows() float64 { return v.outflows }

// CashGap is outflows minus inflows; positive when the client spends more than receives.
func (v *View) CashGap() float64 { return v.outflows - v.inflows }

// CurrentProduct is the product of the most recent transaction that names one.
func (v *View) CurrentProduct() string { return v.currentProduct }

// Volatility is the coefficient of variation of month-grouped spend.
func (v *View) Volatility() float64 { return v.volatility }
