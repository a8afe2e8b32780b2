package benefit

import (
	"math"

	"ProductAdvisor/internal/ledger"
	"ProductAdvisor/internal/model"
)

const (
	depositFloor             = 100000.0
	depositSavingsRate       = 0.165
	depositAccumulativeRate  = 0.155
	depositMulticurrencyRate = 0.145
	multicurrencyMinFXScore  = 0.05

	investmentFloor         = 10000.0
	investmentCommission    = 0.005
	investmentTradesPerYear = 12
	investmentGrowthRate    = 0.08

	goldBalanceFloor    = 2000000.0
	goldAllocationShare = 0.10
	goldAllocationMax   = 5000000.0
	goldHedgeRate       = 0.05
)

// depositFunds keeps a two-month spending buffer and never drops below the
// minimum deposit.
func depositFunds(v *ledger.View) float64 {
	return math.Max(v.Balance()-2*v.MonthlySpending(), depositFloor)
}

func deposit(v *ledger.View, p model.Product, rate, conf float64, extra func(details)) (model.ProductBenefit, bool) {
	funds := depositFunds(v)
	interest := funds * rate
	d := newDetails().
		set("deposit_amount", funds).
		set("interest_rate", rate).
		set("annual_interest", interest)
	if extra != nil {
		extra(d)
	}
	return newBenefit(v, p, interest, model.BenefitInterestIncome, d, conf), true
}

func depositSavings(v *ledger.View, p model.Product) (model.ProductBenefit, bool) {
	return deposit(v, p, depositSavingsRate, 0.8, nil)
}

func depositAccumulative(v *ledger.View, p model.Product) (model.ProductBenefit, bool) {
	return deposit(v, p, depositAccumulativeRate, 0.7, nil)
}

// depositMulticurrency is offered only to clients with some FX activity.
func depositMulticurrency(v *ledger.View, p model.Product) (model.ProductBenefit, bool) {
	score := v.FXActivityScore()
	if score <= multicurrencyMinFXScore {
		return model.ProductBenefit{}, false
	}
	return deposit(v, p, depositMulticurrencyRate, confidence(score > 0.1, 0.8, 0.6), func(d details) {
		d.set("fx_activity_score", score)
	})
}

// investment counts only the commission saving; growth is reported but not guaranteed.
func investment(v *ledger.View, p model.Product) (model.ProductBenefit, bool) {
	funds := math.Max(v.Balance()-3*v.MonthlySpending(), investmentFloor)
	commission := funds * investmentCommission * investmentTradesPerYear

	d := newDetails().
		set("investment_amount", funds).
		set("annual_commission_savings", commission).
		set("potential_growth", funds*investmentGrowthRate).
		set("total_guaranteed_benefit", commission)

	return newBenefit(v, p, commission, model.BenefitCommissionSavings, d, 0.6), true
}

func gold(v *ledger.View, p model.Product) (model.ProductBenefit, bool) {
	assets := math.Max(v.Balance(), goldBalanceFloor)
	allocation := math.Min(assets*goldAllocationShare, goldAllocationMax)
	hedge := allocation * goldHedgeRate

	d := newDetails().
		set("liquid_assets", assets).
		set("recommended_allocation", allocation).
		set("inflation_protection_value", hedge)

	return newBenefit(v, p, hedge, model.BenefitInflationHedge, d, 0.5), true
}
