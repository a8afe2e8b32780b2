package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProductAdvisor/internal/model"
	"ProductAdvisor/internal/storage"
)

func candidate(kind model.ProductKind, name string, benefit float64) storage.PushCandidate {
	return storage.PushCandidate{
		Profile: model.ClientProfile{ClientCode: 1, Name: "Айгерим", AvgMonthlyBalance: 500000},
		Recommendation: model.Recommendation{
			ClientCode: 1, Rank: 1, Kind: kind, ProductName: name, PotentialBenefit: benefit,
		},
		Details: model.CalculationDetails{Values: map[string]float64{}},
	}
}

func TestMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 ₸"},
		{999, "999 ₸"},
		{27400, "27 400 ₸"},
		{1234567.5, "1 234 568 ₸"},
		{2.5, "2 ₸"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Money(tt.in), "Money(%v)", tt.in)
	}
}

func TestTemplate_Travel(t *testing.T) {
	pc := candidate(model.KindTravelCard, "Карта для путешествий", 8000)
	pc.Details.Values["travel_spending_3m"] = 50000
	assert.Equal(t,
		"Айгерим, за 3 месяца вы потратили 50 000 ₸ на поездки и такси. С картой для путешествий вернули бы 2 000 ₸ кешбэком. Оформить карту",
		Template(pc))
}

func TestTemplate_PremiumBranchesOnBalance(t *testing.T) {
	pc := candidate(model.KindPremiumCard, "Премиальная карта", 30000)
	assert.Contains(t, Template(pc), "ваши траты в ресторанах")

	pc.Profile.AvgMonthlyBalance = 1500000
	assert.Equal(t,
		"Айгерим, у вас стабильно высокий остаток на счёте. Премиальная карта даст повышенный кешбэк и бесплатные снятия. Экономия 30 000 ₸/год. Подключить",
		Template(pc))
}

func TestTemplate_CreditCategories(t *testing.T) {
	pc := candidate(model.KindCreditCard, "Кредитная карта", 96000)
	assert.Contains(t, Template(pc), "ваши топ-категории — покупки.")

	pc.Details.Categories = []string{"Кафе и рестораны", "Такси", "Кино"}
	assert.Contains(t, Template(pc), "ваши топ-категории — Кафе и рестораны, Такси.")
}

func TestTemplate_DepositRates(t *testing.T) {
	tests := []struct {
		kind model.ProductKind
		rate float64
		want string
	}{
		{model.KindDepositSavings, 0, "16,5%"},
		{model.KindDepositAccumulative, 0, "15,5%"},
		{model.KindDepositMulticurrency, 0, "14,5%"},
		{model.KindDepositSavings, 0.17, "17,0%"},
	}
	for _, tt := range tests {
		pc := candidate(tt.kind, "Депозит", 100000)
		pc.Details.Values["interest_rate"] = tt.rate
		assert.Contains(t, Template(pc), "на депозите "+tt.want+" годовых принесёт 100 000 ₸ дохода", string(tt.kind))
	}
}

func TestTemplate_Fallback(t *testing.T) {
	pc := candidate(model.ProductKind("other"), "Страховка", 1000)
	assert.Equal(t, "Айгерим, рекомендуем Страховка с потенциальной выгодой 1 000 ₸ в год. Узнать условия", Template(pc))
}

type fakePushStore struct {
	candidates []storage.PushCandidate
	failOn     int
	saved      map[int]string
}

func (f *fakePushStore) TopRecommendations(_ context.Context, rank int) ([]storage.PushCandidate, error) {
	if rank != 1 {
		return nil, errors.New("unexpected rank")
	}
	return f.candidates, nil
}

func (f *fakePushStore) SetPushNotification(_ context.Context, code, _ int, text string) error {
	if code == f.failOn {
		return errors.New("locked")
	}
	f.saved[code] = text
	return nil
}

func TestPusher_Run(t *testing.T) {
	a := candidate(model.KindGold, "Золотые слитки", 10000)
	b := candidate(model.KindInvestment, "Инвестиции", 600)
	b.Profile.ClientCode = 2
	c := candidate(model.KindCashLoan, "Кредит наличными", 39000)
	c.Profile.ClientCode = 3

	store := &fakePushStore{candidates: []storage.PushCandidate{a, b, c}, failOn: 2, saved: map[int]string{}}
	n, err := NewPusher(store, nil, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, store.saved[1], "золотые слитки")
	assert.Contains(t, store.saved[3], "39 000 ₸/год")
	assert.NotContains(t, store.saved, 2)
}
