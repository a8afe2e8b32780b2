// Package signals detects behavioral signals from a client's ledger view.
// Signals are diagnostic output only; benefit pricing never reads them.
package signals

import (
	"strings"

	"ProductAdvisor/internal/ledger"
	"ProductAdvisor/internal/model"
)

// Detect runs every rule group in order: travel, premium, credit, fx, loan,
// deposit, investment, gold.
func Detect(v *ledger.View) []model.Signal {
	d := detector{view: v}
	d.travel()
	d.premium()
	d.credit()
	d.fx()
	d.loan()
	d.deposit()
	d.investment()
	d.gold()
	return d.out
}

type detector struct {
	view *ledger.View
	out  []model.Signal
}

func (d *detector) emit(typ string, value float64, freq int, strength model.Strength) {
	d.out = append(d.out, model.Signal{
		ClientCode: d.view.ClientCode(),
		Type:       typ,
		Value:      value,
		Frequency:  freq,
		Strength:   strength,
	})
}

func highIf(cond bool) model.Strength {
	if cond {
		return model.StrengthHigh
	}
	return model.StrengthMedium
}

func (d *detector) travel() {
	v := d.view
	if spend := v.TravelSpending(); spend > 0 {
		var strength model.Strength
		switch monthly := spend / ledger.ObservationMonths; {
		case monthly > 50000:
			strength = model.StrengthHigh
		case monthly > 20000:
			strength = model.StrengthMedium
		default:
			strength = model.StrengthLow
		}
		d.emit(model.SignalTravelSpending, spend, countCategories(v, ledger.TravelCategories), strength)
	}

	if foreign := v.ForeignCurrencySpending(); foreign > 0 {
		d.emit(model.SignalForeignCurrencySpending, foreign, countForeign(v), highIf(foreign > 100000))
	}
}

func (d *detector) premium() {
	v := d.view
	if balance := v.Balance(); balance > 1000000 {
		d.emit(model.SignalHighBalance, balance, 1, highIf(balance > 6000000))
	}

	if spend := v.SpendingIn(ledger.PremiumCategories); spend > 0 {
		d.emit(model.SignalPremiumCategories, spend, countCategories(v, ledger.PremiumCategories), highIf(spend > 200000))
	}

	if atm := v.TransferVolume(model.DirectionOut, ledger.TransferATMWithdrawal); atm > 0 {
		freq := countTransfers(v, func(t string) bool { return t == ledger.TransferATMWithdrawal })
		d.emit(model.SignalFrequentATM, atm, freq, highIf(atm > 500000))
	}
}

func (d *detector) credit() {
	v := d.view
	if top := v.TopCategories(); len(top) >= 3 {
		top = top[:3]
		var sum float64
		for _, c := range top {
			sum += c.Amount
		}
		d.emit(model.SignalTop3Categories, sum, len(top), highIf(sum > 300000))
	}

	if spend := v.SpendingIn(ledger.OnlineCategories); spend > 0 {
		d.emit(model.SignalOnlineServices, spend, countCategories(v, ledger.OnlineCategories), highIf(spend > 100000))
	}

	if v.HasLoanActivity() {
		payments := v.OutVolume(ledger.TransferCCRepaymentOut, ledger.TransferInstallmentOut)
		freq := countTransfers(v, func(t string) bool {
			return strings.Contains(t, "repayment") || strings.Contains(t, "installment")
		})
		d.emit(model.SignalExistingCredit, payments, freq, model.StrengthHigh)
	}
}

func (d *detector) fx() {
	v := d.view
	if score := v.FXActivityScore(); score > 0 {
		volume := v.OutVolume(ledger.FXTransferTypes...)
		freq := countTransfers(v, func(t string) bool { return t == ledger.TransferFXBuy || t == ledger.TransferFXSell })
		d.emit(model.SignalFXTrading, volume, freq, highIf(score > 0.1))
	}

	if foreign := v.ForeignCurrencySpending(); foreign > 0 {
		d.emit(model.SignalRegularForeignSpending, foreign, countForeign(v), highIf(foreign > 200000))
	}
}

func (d *detector) loan() {
	v := d.view
	if gap := v.CashGap(); gap > 0 {
		d.emit(model.SignalCashFlowGap, gap, 1, highIf(gap > 500000))
	}

	// No spend counts as ten months of cover.
	ratio := 10.0
	if monthly := v.MonthlySpending(); monthly > 0 {
		ratio = v.Balance() / monthly
	}
	if ratio < 2 {
		d.emit(model.SignalLowBalanceRatio, ratio, 1, highIf(ratio < 1))
	}
}

func (d *detector) deposit() {
	v := d.view
	available := v.Balance() - 2*v.MonthlySpending()

	if available > 100000 {
		if v.Volatility() < 0.3 {
			d.emit(model.SignalSavingsCandidate, available, 1, highIf(available > 1000000))
		} else {
			d.emit(model.SignalAccumulativeCandidate, available, 1, model.StrengthMedium)
		}
	}

	if score := v.FXActivityScore(); score > 0.05 && available > 500000 {
		d.emit(model.SignalMulticurrencyCandidate, available, 1, highIf(score > 0.1))
	}
}

func (d *detector) investment() {
	v := d.view
	available := v.Balance() - 3*v.MonthlySpending()
	if available <= 10000 {
		return
	}
	activity := v.TransferVolume(model.DirectionOut, ledger.TransferInvestOut) +
		v.TransferVolume(model.DirectionIn, ledger.TransferInvestIn)
	if activity > 0 {
		d.emit(model.SignalInvestmentCandidate, available, 1, model.StrengthHigh)
	} else {
		d.emit(model.SignalInvestmentCandidate, available, 0, model.StrengthMedium)
	}
}

func (d *detector) gold() {
	v := d.view
	balance := v.Balance()
	if balance <= 2000000 {
		return
	}
	jewelry := v.CategorySpending(ledger.CategoryJewelry)
	if jewelry > 0 || balance > 5000000 {
		d.emit(model.SignalGoldCandidate, balance, 1, highIf(jewelry > 0))
	}
}

func countCategories(v *ledger.View, categories []string) int {
	n := 0
	for _, t := range v.Transactions() {
		for _, c := range categories {
			if t.Category == c {
				n++
				break
			}
		}
	}
	return n
}

func countForeign(v *ledger.View) int {
	n := 0
	for _, t := range v.Transactions() {
		if t.Currency != model.BaseCurrency {
			n++
		}
	}
	return n
}

func countTransfers(v *ledger.View, match func(transferType string) bool) int {
	n := 0
	for _, t := range v.Transfers() {
		if match(t.Type) {
			n++
		}
	}
	return n
}
