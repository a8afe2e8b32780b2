// Package benefit prices every catalog product for one client.
//
// Each product family has one rule. A rule either returns a ProductBenefit or
// reports that its precondition failed, in which case the product is omitted.
// Rules never read detected signals.
package benefit

import (
	"ProductAdvisor/internal/catalog"
	"ProductAdvisor/internal/ledger"
	"ProductAdvisor/internal/model"
)

// rule prices one product for the client behind v.
type rule func(v *ledger.View, p model.Product) (model.ProductBenefit, bool)

var rules = map[model.ProductKind]rule{
	model.KindTravelCard:           travelCard,
	model.KindPremiumCard:          premiumCard,
	model.KindCreditCard:           creditCard,
	model.KindFXExchange:           fxExchange,
	model.KindCashLoan:             cashLoan,
	model.KindDepositSavings:       depositSavings,
	model.KindDepositAccumulative:  depositAccumulative,
	model.KindDepositMulticurrency: depositMulticurrency,
	model.KindInvestment:           investment,
	model.KindGold:                 gold,
}

// Calculate evaluates every active catalog product in family order.
// Missing catalog entries and failed preconditions are omitted.
func Calculate(v *ledger.View, cat *catalog.Catalog) []model.ProductBenefit {
	var out []model.ProductBenefit
	for _, kind := range model.Kinds {
		p, ok := cat.Lookup(kind)
		if !ok {
			continue
		}
		b, ok := rules[kind](v, p)
		if !ok {
			continue
		}
		out = append(out, b)
	}
	return out
}

func newBenefit(v *ledger.View, p model.Product, amount float64, benefitType string, d details, confidence float64) model.ProductBenefit {
	return model.ProductBenefit{
		ClientCode:       v.ClientCode(),
		ProductID:        p.ID,
		ProductName:      p.Name,
		Kind:             p.Kind,
		PotentialBenefit: amount,
		BenefitType:      benefitType,
		Details:          d.CalculationDetails,
		Confidence:       confidence,
	}
}

// details accumulates the audit breakdown of one rule.
type details struct {
	model.CalculationDetails
}

func newDetails() details {
	return details{model.CalculationDetails{Values: make(map[string]float64)}}
}

func (d details) set(key string, value float64) details {
	d.Values[key] = value
	return d
}

func (d details) label(key, value string) details {
	if d.Labels == nil {
		d.Labels = make(map[string]string)
	}
	d.Labels[key] = value
	return d
}

func annual(threeMonth float64) float64 { return threeMonth * ledger.AnnualizationFactor }

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func confidence(cond bool, high, low float64) float64 {
	if cond {
		return high
	}
	return low
}
