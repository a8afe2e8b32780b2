package model

// Strength grades a behavioral signal.
type Strength string

const (
	StrengthLow    Strength = "low"
	StrengthMedium Strength = "medium"
	StrengthHigh   Strength = "high"
)

// Signal types emitted by the detector, grouped by the product they hint at.
const (
	SignalTravelSpending          = "travel_spending"
	SignalForeignCurrencySpending = "foreign_currency_spending"
	SignalHighBalance             = "high_balance"
	SignalPremiumCategories       = "premium_categories_spending"
	SignalFrequentATM             = "frequent_atm_usage"
	SignalTop3Categories          = "top_3_categories_spending"
	SignalOnlineServices          = "online_services_spending"
	SignalExistingCredit          = "existing_credit_usage"
	SignalFXTrading               = "fx_trading_activity"
	SignalRegularForeignSpending  = "regular_foreign_spending"
	SignalCashFlowGap             = "cash_flow_gap"
	SignalLowBalanceRatio         = "low_balance_ratio"
	SignalSavingsCandidate        = "savings_deposit_candidate"
	SignalAccumulativeCandidate   = "accumulative_deposit_candidate"
	SignalMulticurrencyCandidate  = "multicurrency_deposit_candidate"
	SignalInvestmentCandidate     = "investment_candidate"
	SignalGoldCandidate           = "gold_investment_candidate"
)

// Signal is a detected behavioral observation. Signals are diagnostic only.
type Signal struct {
	ClientCode int
	Type       string
	Value      float64
	Frequency  int
	Strength   Strength
}
