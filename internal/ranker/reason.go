package ranker

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"ProductAdvisor/internal/model"
)

// Reason renders the justification line for one benefit from its
// calculation details.
func Reason(b model.ProductBenefit) string {
	d := b.Details
	benefit := money(b.PotentialBenefit)

	switch b.Kind {
	case model.KindTravelCard:
		return fmt.Sprintf("Экономия %s ₸/год на кешбэке с поездок (траты %s ₸ за 3 мес.)",
			benefit, money(d.Value("travel_spending_3m")))
	case model.KindPremiumCard:
		return fmt.Sprintf("Кешбэк %s ₸/год + экономия на комиссиях (тариф %s)",
			money(d.Value("final_total_cashback")), d.Label("tier", "базовый"))
	case model.KindCreditCard:
		categories := "топ-категории"
		if len(d.Categories) > 0 {
			n := min(2, len(d.Categories))
			categories = strings.Join(d.Categories[:n], ", ")
		}
		return fmt.Sprintf("До 10%% кешбэк на %s, экономия %s ₸/год", categories, benefit)
	case model.KindFXExchange:
		return fmt.Sprintf("Экономия %s ₸/год на валютных операциях (оборот %s ₸)",
			benefit, money(d.Value("annual_fx_volume")))
	case model.KindCashLoan:
		return fmt.Sprintf("Экономия %s ₸/год на процентах (лимит до %s ₸)",
			benefit, money(d.Value("estimated_loan_amount")))
	case model.KindDepositSavings, model.KindDepositAccumulative, model.KindDepositMulticurrency:
		return fmt.Sprintf("Доходность %.1f%% годовых, доход %s ₸ с суммы %s ₸",
			d.Value("interest_rate")*100, benefit, money(d.Value("deposit_amount")))
	case model.KindInvestment:
		return fmt.Sprintf("Без комиссий в первый год, экономия %s ₸ на операциях",
			money(d.Value("annual_commission_savings")))
	case model.KindGold:
		return fmt.Sprintf("Защита от инфляции, рекомендуется %s ₸ для диверсификации",
			money(d.Value("recommended_allocation")))
	default:
		return fmt.Sprintf("Потенциальная выгода %s ₸ в год", benefit)
	}
}

// money formats a KZT amount with comma thousands, rounded half to even.
func money(x float64) string {
	return humanize.Comma(int64(math.RoundToEven(x)))
}
