package benefit

import (
	"math"

	"ProductAdvisor/internal/ledger"
	"ProductAdvisor/internal/model"
)

const (
	travelCashbackRate = 0.04
	travelFXSavingRate = 0.02

	premiumCategoryRate    = 0.04
	premiumDefaultMonthly  = 50000.0
	premiumMonthlyCap      = 100000.0
	premiumATMSavingsCap   = 360000.0
	premiumTransferFeeRate = 0.01
	premiumHighConfDeposit = 1000000.0

	creditCategoryRate      = 0.10
	creditInterestRate      = 0.02
	creditGraceMonths       = 2
	creditHighConfTop3Spend = 200000.0
)

func travelCard(v *ledger.View, p model.Product) (model.ProductBenefit, bool) {
	travel := v.TravelSpending()
	if travel == 0 {
		return model.ProductBenefit{}, false
	}

	cashback := annual(travel) * travelCashbackRate
	fxSavings := v.ForeignCurrencySpending() * travelFXSavingRate
	total := cashback + fxSavings

	d := newDetails().
		set("travel_spending_3m", travel).
		set("annual_travel_spending", annual(travel)).
		set("annual_cashback", cashback).
		set("fx_savings", fxSavings).
		set("total_annual_benefit", total)

	return newBenefit(v, p, total, model.BenefitCashbackAndSavings, d, confidence(travel > 50000, 0.9, 0.7)), true
}

// premiumCard is always emitted, even at zero benefit.
func premiumCard(v *ledger.View, p model.Product) (model.ProductBenefit, bool) {
	balance := v.Balance()
	deposits := v.TransferVolume(model.DirectionOut, ledger.TransferDepositTopupOut)

	monthly := premiumDefaultMonthly
	if v.TotalSpending() > 0 {
		monthly = v.MonthlySpending()
	}
	potential := math.Max(balance-2*monthly, 0)
	effective := math.Max(deposits, potential)
	tier := mapPremiumTier(effective)

	annualSpend := annual(v.TotalSpending())
	premiumSpend := v.SpendingIn(ledger.PremiumCategories)
	baseRaw := annualSpend * tier.Rate
	premiumRaw := annual(premiumSpend) * premiumCategoryRate

	limit := premiumMonthlyCap * 12
	base, prem, capped := CapProportionally(baseRaw, premiumRaw, limit)
	cashback := base + prem
	if capped {
		cashback = limit
	}

	atmSavings := math.Min(annual(v.TransferVolume(model.DirectionOut, ledger.TransferATMWithdrawal)), premiumATMSavingsCap)
	transferSavings := annual(v.OutVolume(ledger.TransferP2POut, ledger.TransferCardOut)) * premiumTransferFeeRate
	total := cashback + atmSavings + transferSavings

	d := newDetails().
		set("account_balance", balance).
		set("effective_deposit", effective).
		set("deposit_operations", deposits).
		set("potential_deposit", potential).
		set("base_rate", tier.Rate).
		set("annual_spending", annualSpend).
		set("premium_spending", annual(premiumSpend)).
		set("base_cashback_raw", baseRaw).
		set("premium_cashback_raw", premiumRaw).
		set("total_cashback_before_limit", baseRaw+premiumRaw).
		set("annual_cashback_limit", limit).
		set("limit_applied", boolValue(capped)).
		set("final_base_cashback", base).
		set("final_premium_cashback", prem).
		set("final_total_cashback", cashback).
		set("atm_savings", atmSavings).
		set("transfer_savings", transferSavings).
		set("total_annual_benefit", total).
		label("tier", tier.Label)

	conf := confidence(effective > premiumHighConfDeposit, 0.9, 0.6)
	return newBenefit(v, p, total, model.BenefitCashbackAndSavings, d, conf), true
}

func creditCard(v *ledger.View, p model.Product) (model.ProductBenefit, bool) {
	top := v.TopCategories()
	if len(top) < 3 {
		return model.ProductBenefit{}, false
	}
	top = top[:3]

	var top3 float64
	names := make([]string, 0, len(top))
	for _, c := range top {
		top3 += c.Amount
		names = append(names, c.Category)
	}
	top3Cashback := annual(top3) * creditCategoryRate

	online := v.SpendingIn(ledger.OnlineCategories)
	onlineCashback := annual(online) * creditCategoryRate

	creditValue := v.MonthlySpending() * creditGraceMonths * creditInterestRate
	total := top3Cashback + onlineCashback + creditValue

	d := newDetails().
		set("top_3_spending_3m", top3).
		set("top_3_annual_cashback", top3Cashback).
		set("online_spending_3m", online).
		set("online_annual_cashback", onlineCashback).
		set("credit_period_value", creditValue).
		set("total_annual_benefit", total)
	d.Categories = names

	conf := confidence(top3 > creditHighConfTop3Spend, 0.8, 0.6)
	return newBenefit(v, p, total, model.BenefitCashbackAndCredit, d, conf), true
}
