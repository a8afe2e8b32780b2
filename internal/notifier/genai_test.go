package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"ProductAdvisor/internal/model"
)

func TestGenAIWriter_UsesModelText(t *testing.T) {
	var gotPrompt string
	w := newGenAIWriter(func(_ context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "  «Айгерим, откройте вклад 💰»\n", nil
	}, zerolog.Nop())

	pc := candidate(model.KindDepositSavings, "Депозит Сберегательный (защита KDIF)", 82500)
	pc.Recommendation.Reason = "Доходность 16.5% годовых"
	assert.Equal(t, "Айгерим, откройте вклад 💰", w.Write(context.Background(), pc))

	assert.Contains(t, gotPrompt, "РЕКОМЕНДУЕМЫЙ ПРОДУКТ: Депозит Сберегательный (защита KDIF)")
	assert.Contains(t, gotPrompt, "ПОТЕНЦИАЛЬНАЯ ВЫГОДА: 82 500 ₸ в год")
	assert.Contains(t, gotPrompt, "Текущий продукт: Не указан")
	assert.Contains(t, gotPrompt, "ПРИЧИНА РЕКОМЕНДАЦИИ: Доходность 16.5% годовых")
}

func TestGenAIWriter_FallsBack(t *testing.T) {
	pc := candidate(model.KindGold, "Золотые слитки", 10000)
	for name, gen := range map[string]generateFunc{
		"error": func(context.Context, string) (string, error) { return "", errors.New("quota") },
		"empty": func(context.Context, string) (string, error) { return "  \"\" ", nil },
	} {
		w := newGenAIWriter(gen, zerolog.Nop())
		assert.Equal(t, Template(pc), w.Write(context.Background(), pc), name)
	}
}

func TestCleanPush_Trims(t *testing.T) {
	long := strings.Repeat("ж", 300)
	got := cleanPush(long)
	assert.Equal(t, MaxPushLength, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))

	short := strings.Repeat("ж", MaxPushLength)
	assert.Equal(t, short, cleanPush(short))
}

func TestPrompt_ContextDetails(t *testing.T) {
	pc := candidate(model.KindTravelCard, "Карта для путешествий", 8000)
	pc.Recommendation.CurrentProduct = "Кредитная карта"
	pc.Details.Values["travel_spending_3m"] = 50000
	pc.Details.Values["fx_activity_score"] = 0.2
	pc.Details.Categories = []string{"Такси", "Отели", "Кино", "Путешествия"}

	p := Prompt(pc)
	assert.Contains(t, p, "Текущий продукт: Кредитная карта")
	assert.Contains(t, p, "Средний остаток: 500 000 ₸")
	assert.Contains(t, p, "Топ-категории: Такси, Отели, Кино\n")
	assert.Contains(t, p, "Траты на поездки: 50 000 ₸")
	assert.Contains(t, p, "Валютная активность: высокая")
}
