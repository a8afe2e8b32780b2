package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ProductAdvisor/internal/model"
	"ProductAdvisor/internal/storage"
)

// PremiumBalanceThreshold switches the premium card text to the high-balance wording.
const PremiumBalanceThreshold = 1000000.0

// Writer produces the push text for a rank-1 recommendation.
type Writer interface {
	Write(ctx context.Context, pc storage.PushCandidate) string
}

// TemplateWriter renders fixed per-product texts.
type TemplateWriter struct{}

// Write returns the fixed template text for pc.
func (TemplateWriter) Write(_ context.Context, pc storage.PushCandidate) string {
	return Template(pc)
}

// Template renders the fixed push text for pc.
func Template(pc storage.PushCandidate) string {
	name := pc.Profile.Name
	r := pc.Recommendation
	d := pc.Details
	benefit := r.PotentialBenefit

	switch r.Kind {
	case model.KindTravelCard:
		return fmt.Sprintf("%s, за 3 месяца вы потратили %s на поездки и такси. С картой для путешествий вернули бы %s кешбэком. Оформить карту",
			name, Money(d.Value("travel_spending_3m")), Money(benefit/4))
	case model.KindPremiumCard:
		if pc.Profile.AvgMonthlyBalance > PremiumBalanceThreshold {
			return fmt.Sprintf("%s, у вас стабильно высокий остаток на счёте. Премиальная карта даст повышенный кешбэк и бесплатные снятия. Экономия %s/год. Подключить",
				name, Money(benefit))
		}
		return fmt.Sprintf("%s, ваши траты в ресторанах и на покупках дают право на премиальную карту с повышенным кешбэком. Потенциальная выгода %s/год. Оформить",
			name, Money(benefit))
	case model.KindCreditCard:
		cats := d.Categories
		if len(cats) == 0 {
			cats = []string{"покупки"}
		}
		if len(cats) > 2 {
			cats = cats[:2]
		}
		return fmt.Sprintf("%s, ваши топ-категории — %s. Кредитная карта даст до 10%% кешбэк. Выгода %s/год. Оформить карту",
			name, strings.Join(cats, ", "), Money(benefit))
	case model.KindFXExchange:
		return fmt.Sprintf("%s, вы активно работаете с валютой (оборот %s). Выгодный обмен в приложении сэкономит %s/год. Настроить обмен",
			name, Money(d.Value("fx_volume_3m")), Money(benefit))
	case model.KindCashLoan:
		return fmt.Sprintf("%s, если нужны средства на крупные расходы — кредит наличными с гибкими условиями. Экономия на процентах %s/год. Узнать лимит",
			name, Money(benefit))
	case model.KindDepositSavings, model.KindDepositAccumulative, model.KindDepositMulticurrency:
		return fmt.Sprintf("%s, у вас есть свободные средства. Размещение на депозите %s годовых принесёт %s дохода. Открыть вклад",
			name, depositRate(r.Kind, d.Value("interest_rate")), Money(benefit))
	case model.KindInvestment:
		return fmt.Sprintf("%s, попробуйте инвестиции с низким порогом входа и без комиссий на старт. Потенциальная экономия %s/год. Открыть счёт",
			name, Money(benefit))
	case model.KindGold:
		return fmt.Sprintf("%s, для диверсификации портфеля рассмотрите золотые слитки. Защита от инфляции на сумму %s/год. Узнать подробнее",
			name, Money(benefit))
	default:
		return fmt.Sprintf("%s, рекомендуем %s с потенциальной выгодой %s в год. Узнать условия",
			name, r.ProductName, Money(benefit))
	}
}

var defaultDepositRates = map[model.ProductKind]float64{
	model.KindDepositSavings:       0.165,
	model.KindDepositAccumulative:  0.155,
	model.KindDepositMulticurrency: 0.145,
}

// depositRate renders a rate as "16,5%".
func depositRate(kind model.ProductKind, rate float64) string {
	if rate <= 0 {
		rate = defaultDepositRates[kind]
	}
	pct := decimal.NewFromFloat(rate).Shift(2).StringFixedBank(1)
	return strings.Replace(pct, ".", ",", 1) + "%"
}

// Money formats x as "27 400 ₸": space thousands, rounded half to even.
func Money(x float64) string {
	n := decimal.NewFromFloat(x).RoundBank(0).IntPart()
	return strings.ReplaceAll(humanize.Comma(n), ",", " ") + " ₸"
}

// PushStore is the part of the result store the push pass needs.
type PushStore interface {
	TopRecommendations(ctx context.Context, rank int) ([]storage.PushCandidate, error)
	SetPushNotification(ctx context.Context, clientCode, rank int, text string) error
}

// Pusher writes push texts for every client's top recommendation.
type Pusher struct {
	store  PushStore
	writer Writer
	log    zerolog.Logger
}

// NewPusher creates a Pusher. A nil writer falls back to TemplateWriter.
func NewPusher(store PushStore, writer Writer, log zerolog.Logger) *Pusher {
	if writer == nil {
		writer = TemplateWriter{}
	}
	return &Pusher{store: store, writer: writer, log: log.With().Str("component", "pusher").Logger()}
}

// Run generates and stores push texts. It returns how many rows were updated.
// A client whose update fails is logged and skipped.
func (p *Pusher) Run(ctx context.Context) (int, error) {
	candidates, err := p.store.TopRecommendations(ctx, 1)
	if err != nil {
		return 0, fmt.Errorf("load top recommendations: %w", err)
	}

	updated := 0
	for _, pc := range candidates {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		text := p.writer.Write(ctx, pc)
		if err := p.store.SetPushNotification(ctx, pc.Profile.ClientCode, 1, text); err != nil {
			p.log.Error().Err(err).Int("client_code", pc.Profile.ClientCode).Msg("store push notification")
			continue
		}
		updated++
	}

	p.log.Info().Int("candidates", len(candidates)).Int("updated", updated).Msg("push notifications generated")
	return updated, nil
}
