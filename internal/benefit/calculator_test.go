package benefit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProductAdvisor/internal/catalog"
	"ProductAdvisor/internal/ledger"
	"ProductAdvisor/internal/model"
)

func view(balance float64, txs []model.Transaction, trs []model.Transfer) *ledger.View {
	return ledger.New(&model.ClientRecord{
		Profile:      model.ClientProfile{ClientCode: 1, AvgMonthlyBalance: balance},
		Transactions: txs,
		Transfers:    trs,
	})
}

func spend(category string, amount float64) model.Transaction {
	return model.Transaction{
		ClientCode: 1,
		Date:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Category:   category,
		Amount:     amount,
		Currency:   model.BaseCurrency,
	}
}

func byKind(benefits []model.ProductBenefit) map[model.ProductKind]model.ProductBenefit {
	out := make(map[model.ProductKind]model.ProductBenefit, len(benefits))
	for _, b := range benefits {
		out[b.Kind] = b
	}
	return out
}

func kinds(benefits []model.ProductBenefit) []model.ProductKind {
	out := make([]model.ProductKind, 0, len(benefits))
	for _, b := range benefits {
		out = append(out, b.Kind)
	}
	return out
}

func TestCalculate_TravelAndPremiumTier(t *testing.T) {
	v := view(7000000, []model.Transaction{
		spend(ledger.CategoryTravel, 50000),
		spend("Продукты питания", 100000),
	}, nil)
	got := byKind(Calculate(v, catalog.Default()))

	travel, ok := got[model.KindTravelCard]
	require.True(t, ok)
	assert.InDelta(t, 8000, travel.PotentialBenefit, 1e-9)
	assert.Equal(t, 0.7, travel.Confidence)
	assert.Equal(t, model.BenefitCashbackAndSavings, travel.BenefitType)
	assert.Equal(t, 50000.0, travel.Details.Value("travel_spending_3m"))

	premium := got[model.KindPremiumCard]
	assert.Equal(t, "депозит 6М+", premium.Details.Label("tier", ""))
	assert.Equal(t, 0.04, premium.Details.Value("base_rate"))
	assert.Greater(t, premium.Details.Value("effective_deposit"), 6000000.0)
	assert.Equal(t, 0.9, premium.Confidence)
}

func TestCalculate_CreditTop3(t *testing.T) {
	v := view(0, []model.Transaction{
		spend("Продукты питания", 100000),
		spend("Кафе и рестораны", 80000),
		spend("Такси", 60000),
		spend("Кино", 10000),
	}, nil)
	credit, ok := byKind(Calculate(v, catalog.Default()))[model.KindCreditCard]
	require.True(t, ok)

	assert.InDelta(t, 96000, credit.Details.Value("top_3_annual_cashback"), 1e-9)
	assert.InDelta(t, 4000, credit.Details.Value("online_annual_cashback"), 1e-9)
	// 250k over three months, two interest-free months at 2%
	assert.InDelta(t, 250000.0/3*2*0.02, credit.Details.Value("credit_period_value"), 1e-9)
	assert.InDelta(t, 100000+250000.0/3*2*0.02, credit.PotentialBenefit, 1e-9)
	assert.Equal(t, []string{"Продукты питания", "Кафе и рестораны", "Такси"}, credit.Details.Categories)
	assert.Equal(t, 0.8, credit.Confidence)
}

func TestCalculate_CreditNeedsThreeCategories(t *testing.T) {
	v := view(0, []model.Transaction{spend("Продукты питания", 100000), spend("Такси", 60000)}, nil)
	assert.NotContains(t, byKind(Calculate(v, catalog.Default())), model.KindCreditCard)
}

func TestCalculate_SavingsDeposit(t *testing.T) {
	v := view(3000000, []model.Transaction{spend("Продукты питания", 300000)}, nil)
	savings := byKind(Calculate(v, catalog.Default()))[model.KindDepositSavings]

	assert.InDelta(t, 2800000, savings.Details.Value("deposit_amount"), 1e-6)
	assert.InDelta(t, 462000, savings.PotentialBenefit, 1e-6)
	assert.Equal(t, model.BenefitInterestIncome, savings.BenefitType)
}

func TestCalculate_PremiumCapIsProportional(t *testing.T) {
	v := view(10000000, []model.Transaction{
		spend(ledger.CategoryRestaurants, 6000000),
		spend("Продукты питания", 4000000),
	}, nil)
	premium := byKind(Calculate(v, catalog.Default()))[model.KindPremiumCard]
	d := premium.Details

	rawBase := d.Value("base_cashback_raw")
	rawPremium := d.Value("premium_cashback_raw")
	require.Greater(t, rawBase+rawPremium, 1200000.0)

	assert.Equal(t, 1.0, d.Value("limit_applied"))
	assert.InDelta(t, 1200000, d.Value("final_base_cashback")+d.Value("final_premium_cashback"), 1e-6)
	assert.InDelta(t, rawBase/rawPremium, d.Value("final_base_cashback")/d.Value("final_premium_cashback"), 1e-9)
	assert.Equal(t, 1200000.0, d.Value("final_total_cashback"))
}

func TestCalculate_PremiumCapIgnoresCatalogLimit(t *testing.T) {
	products := catalog.DefaultProducts()
	lower := 50000.0
	for i := range products {
		if products[i].Kind == model.KindPremiumCard {
			products[i].MonthlyLimit = &lower
		}
	}
	cat, err := catalog.New(products)
	require.NoError(t, err)

	v := view(10000000, []model.Transaction{
		spend(ledger.CategoryRestaurants, 6000000),
		spend("Продукты питания", 4000000),
	}, nil)
	premium := byKind(Calculate(v, cat))[model.KindPremiumCard]

	assert.Equal(t, 1.0, premium.Details.Value("limit_applied"))
	assert.Equal(t, 1200000.0, premium.Details.Value("final_total_cashback"))
}

func TestCalculate_PremiumFeeSavingsUncapped(t *testing.T) {
	v := view(0, nil, []model.Transfer{
		{Type: ledger.TransferATMWithdrawal, Direction: model.DirectionOut, Amount: 200000, Currency: "KZT"},
		{Type: ledger.TransferP2POut, Direction: model.DirectionOut, Amount: 100000, Currency: "KZT"},
		{Type: ledger.TransferCardOut, Direction: model.DirectionOut, Amount: 50000, Currency: "KZT"},
	})
	premium := byKind(Calculate(v, catalog.Default()))[model.KindPremiumCard]

	assert.Equal(t, 360000.0, premium.Details.Value("atm_savings"))
	assert.InDelta(t, 6000, premium.Details.Value("transfer_savings"), 1e-9)
	assert.InDelta(t, 366000, premium.PotentialBenefit, 1e-9)
}

func TestCalculate_ZeroActivity(t *testing.T) {
	got := Calculate(view(0, nil, nil), catalog.Default())

	assert.Equal(t, []model.ProductKind{
		model.KindPremiumCard,
		model.KindFXExchange,
		model.KindDepositSavings,
		model.KindDepositAccumulative,
		model.KindInvestment,
		model.KindGold,
	}, kinds(got))

	m := byKind(got)
	assert.Zero(t, m[model.KindPremiumCard].PotentialBenefit)
	assert.Equal(t, "базовый", m[model.KindPremiumCard].Details.Label("tier", ""))
	assert.Equal(t, 50000.0, m[model.KindFXExchange].Details.Value("fx_volume_3m"))
	assert.InDelta(t, 3000, m[model.KindFXExchange].PotentialBenefit, 1e-9)
	assert.InDelta(t, 16500, m[model.KindDepositSavings].PotentialBenefit, 1e-9)
	assert.InDelta(t, 15500, m[model.KindDepositAccumulative].PotentialBenefit, 1e-9)
	assert.InDelta(t, 600, m[model.KindInvestment].PotentialBenefit, 1e-9)
	assert.InDelta(t, 10000, m[model.KindGold].PotentialBenefit, 1e-9)
}

func TestCalculate_FXVolumeSources(t *testing.T) {
	foreign := view(0, []model.Transaction{{Category: "Кино", Amount: 100, Currency: "USD"}}, nil)
	fx := byKind(Calculate(foreign, catalog.Default()))[model.KindFXExchange]
	assert.Equal(t, 45000.0, fx.Details.Value("fx_volume_3m"))

	actual := view(0, nil, []model.Transfer{
		{Type: ledger.TransferFXBuy, Direction: model.DirectionOut, Amount: 200000, Currency: "KZT"},
		{Type: ledger.TransferFXSell, Direction: model.DirectionIn, Amount: 900000, Currency: "KZT"},
	})
	fx = byKind(Calculate(actual, catalog.Default()))[model.KindFXExchange]
	assert.Equal(t, 200000.0, fx.Details.Value("fx_volume_3m"))
	assert.InDelta(t, 12000, fx.PotentialBenefit, 1e-9)
	assert.Equal(t, 0.8, fx.Confidence)
}

func TestCalculate_CashLoan(t *testing.T) {
	tests := []struct {
		name     string
		spend    float64
		offered  bool
		rate     float64
		benefit  float64
		confHigh bool
	}{
		{"below minimum", 30000, false, 0, 0, false},
		{"low rate", 150000, true, 0.12, 39000, false},
		{"high rate", 600000, true, 0.21, 48000, true},
		{"capped amount", 3000000, true, 0.21, 80000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := view(0, []model.Transaction{spend("Продукты питания", tt.spend)}, nil)
			loan, ok := byKind(Calculate(v, catalog.Default()))[model.KindCashLoan]
			require.Equal(t, tt.offered, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.rate, loan.Details.Value("bank_rate"))
			assert.InDelta(t, tt.benefit, loan.PotentialBenefit, 1e-6)
			assert.Equal(t, tt.confHigh, loan.Confidence == 0.7)
		})
	}
}

func TestCalculate_NoLoanWithoutGap(t *testing.T) {
	v := view(0, []model.Transaction{spend("Продукты питания", 300000)}, []model.Transfer{
		{Type: "salary_in", Direction: model.DirectionIn, Amount: 500000, Currency: "KZT"},
	})
	assert.NotContains(t, byKind(Calculate(v, catalog.Default())), model.KindCashLoan)
}

func TestCalculate_Multicurrency(t *testing.T) {
	v := view(1000000, []model.Transaction{spend("Продукты питания", 100000)}, []model.Transfer{
		{Type: ledger.TransferFXBuy, Direction: model.DirectionOut, Amount: 10000, Currency: "KZT"},
	})
	multi, ok := byKind(Calculate(v, catalog.Default()))[model.KindDepositMulticurrency]
	require.True(t, ok)
	// fx score 10k/110k is above 5% but below 10%
	assert.Equal(t, 0.6, multi.Confidence)
	assert.InDelta(t, 10000.0/110000.0, multi.Details.Value("fx_activity_score"), 1e-12)
}

func TestCalculate_GoldAllocationCap(t *testing.T) {
	gold := byKind(Calculate(view(80000000, nil, nil), catalog.Default()))[model.KindGold]
	assert.Equal(t, 5000000.0, gold.Details.Value("recommended_allocation"))
	assert.InDelta(t, 250000, gold.PotentialBenefit, 1e-9)
}

func TestCalculate_SkipsInactiveProducts(t *testing.T) {
	products := catalog.DefaultProducts()
	for i := range products {
		if products[i].Kind == model.KindGold || products[i].Kind == model.KindFXExchange {
			products[i].Active = false
		}
	}
	cat, err := catalog.New(products)
	require.NoError(t, err)

	got := byKind(Calculate(view(0, nil, nil), cat))
	assert.NotContains(t, got, model.KindGold)
	assert.NotContains(t, got, model.KindFXExchange)
	assert.Contains(t, got, model.KindInvestment)
}

func TestCapProportionally(t *testing.T) {
	a, b, capped := CapProportionally(300, 100, 1000)
	assert.False(t, capped)
	assert.Equal(t, 300.0, a)
	assert.Equal(t, 100.0, b)

	a, b, capped = CapProportionally(3000, 1000, 1000)
	assert.True(t, capped)
	assert.InDelta(t, 750, a, 1e-9)
	assert.InDelta(t, 250, b, 1e-9)
}

func TestMapPremiumTier(t *testing.T) {
	tests := []struct {
		deposit float64
		want    string
	}{
		{0, "базовый"},
		{999999, "базовый"},
		{1000000, "депозит 1-6М"},
		{5999999, "депозит 1-6М"},
		{6000000, "депозит 6М+"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapPremiumTier(tt.deposit).Label, "deposit %.0f", tt.deposit)
	}
}
