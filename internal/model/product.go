package model

// ProductKind tags a catalog entry with the evaluation rule that prices it.
type ProductKind string

const (
	KindTravelCard           ProductKind = "travel_card"
	KindPremiumCard          ProductKind = "premium_card"
	KindCreditCard           ProductKind = "credit_card"
	KindFXExchange           ProductKind = "fx_exchange"
	KindCashLoan             ProductKind = "cash_loan"
	KindDepositSavings       ProductKind = "deposit_savings"
	KindDepositAccumulative  ProductKind = "deposit_accumulative"
	KindDepositMulticurrency ProductKind = "deposit_multicurrency"
	KindInvestment           ProductKind = "investment"
	KindGold                 ProductKind = "gold"
)

// Kinds lists every known kind in evaluation order.
var Kinds = []ProductKind{
	KindTravelCard,
	KindPremiumCard,
	KindCreditCard,
	KindFXExchange,
	KindCashLoan,
	KindDepositSavings,
	KindDepositAccumulative,
	KindDepositMulticurrency,
	KindInvestment,
	KindGold,
}

// Valid reports whether k is a known product kind.
func (k ProductKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsDeposit reports whether k is one of the deposit variants.
func (k ProductKind) IsDeposit() bool {
	return k == KindDepositSavings || k == KindDepositAccumulative || k == KindDepositMulticurrency
}

// Product is one catalog entry.
type Product struct {
	ID           int         `yaml:"id"`
	Name         string      `yaml:"name"`
	Kind         ProductKind `yaml:"kind"`
	BaseRate     float64     `yaml:"base_rate"`
	CashbackRate float64     `yaml:"cashback_rate"`
	MonthlyLimit *float64    `yaml:"monthly_limit,omitempty"`
	Active       bool        `yaml:"active"`
}
