package benefit

import (
	"math"

	"ProductAdvisor/internal/ledger"
	"ProductAdvisor/internal/model"
)

const (
	fxFloorVolume      = 50000.0
	fxSpreadRate       = 0.01
	fxOptimizationRate = 0.005

	loanGapMonths    = 6
	loanMaxAmount    = 2000000.0
	loanMinAmount    = 100000.0
	loanLowRateLimit = 1000000.0
	loanLowRate      = 0.12
	loanHighRate     = 0.21
	loanMarketRate   = 0.25
	loanHighConfGap  = 300000.0
)

// fxExchange falls back to foreign spend, then to a fixed floor, so every
// client gets an estimate.
func fxExchange(v *ledger.View, p model.Product) (model.ProductBenefit, bool) {
	volume := v.OutVolume(ledger.FXTransferTypes...)
	if volume == 0 {
		volume = fxFloorVolume
		if foreign := v.ForeignCurrencySpending(); foreign > 0 {
			volume = foreign
		}
	}

	spread := annual(volume) * fxSpreadRate
	optimization := annual(volume) * fxOptimizationRate
	total := spread + optimization

	d := newDetails().
		set("fx_volume_3m", volume).
		set("annual_fx_volume", annual(volume)).
		set("spread_savings", spread).
		set("optimization_value", optimization).
		set("total_annual_benefit", total)

	conf := confidence(v.FXActivityScore() > 0.1, 0.8, 0.6)
	return newBenefit(v, p, total, model.BenefitFXSavings, d, conf), true
}

func cashLoan(v *ledger.View, p model.Product) (model.ProductBenefit, bool) {
	gap := v.CashGap()
	if gap <= 0 {
		return model.ProductBenefit{}, false
	}
	monthlyGap := gap / ledger.ObservationMonths
	amount := math.Min(monthlyGap*loanGapMonths, loanMaxAmount)
	if amount < loanMinAmount {
		return model.ProductBenefit{}, false
	}

	bankRate := loanHighRate
	if amount <= loanLowRateLimit {
		bankRate = loanLowRate
	}
	savings := amount * (loanMarketRate - bankRate)

	d := newDetails().
		set("cash_gap_3m", gap).
		set("monthly_gap", monthlyGap).
		set("estimated_loan_amount", amount).
		set("bank_rate", bankRate).
		set("market_rate", loanMarketRate).
		set("annual_interest_savings", savings)

	conf := confidence(gap > loanHighConfGap, 0.7, 0.5)
	return newBenefit(v, p, savings, model.BenefitInterestSavings, d, conf), true
}
