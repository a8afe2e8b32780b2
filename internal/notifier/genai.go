package notifier

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"ProductAdvisor/internal/storage"
)

// MaxPushLength is the rune limit for a generated push text.
const MaxPushLength = 250

const systemPrompt = "Ты — эксперт по написанию персональных банковских уведомлений в дружелюбном тоне."

type generateFunc func(ctx context.Context, prompt string) (string, error)

// GenAIWriter asks a Gemini model for the push text and falls back to the
// template on any failure.
type GenAIWriter struct {
	generate generateFunc
	log      zerolog.Logger
}

// NewGenAIWriter creates a writer backed by the Gemini API.
func NewGenAIWriter(ctx context.Context, apiKey, modelName string, log zerolog.Logger) (*GenAIWriter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		Temperature:       genai.Ptr[float32](0.7),
		MaxOutputTokens:   200,
	}
	generate := func(ctx context.Context, prompt string) (string, error) {
		contents := []*genai.Content{
			{
				Role:  "user",
				Parts: []*genai.Part{{Text: prompt}},
			},
		}
		resp, err := client.Models.GenerateContent(ctx, modelName, contents, cfg)
		if err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}
		return resp.Text(), nil
	}
	return newGenAIWriter(generate, log), nil
}

func newGenAIWriter(generate generateFunc, log zerolog.Logger) *GenAIWriter {
	return &GenAIWriter{generate: generate, log: log.With().Str("component", "genai").Logger()}
}

// Write asks the model for a push text and falls back to the template when
// the call fails or returns nothing usable.
func (w *GenAIWriter) Write(ctx context.Context, pc storage.PushCandidate) string {
	text, err := w.generate(ctx, Prompt(pc))
	if err == nil {
		text = cleanPush(text)
		if text == "" {
			err = fmt.Errorf("empty response")
		}
	}
	if err != nil {
		w.log.Warn().Err(err).Int("client_code", pc.Profile.ClientCode).Msg("falling back to template")
		return Template(pc)
	}
	return text
}

// cleanPush strips wrapping quotes and trims to MaxPushLength runes.
func cleanPush(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"'«»")
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > MaxPushLength {
		runes := []rune(text)
		text = string(runes[:MaxPushLength-3]) + "..."
	}
	return text
}

// Prompt builds the generation request for pc.
func Prompt(pc storage.PushCandidate) string {
	r := pc.Recommendation
	var b strings.Builder
	b.WriteString("Сгенерируй персональное пуш-уведомление для банковского клиента на основе его данных.\n\n")
	b.WriteString("КОНТЕКСТ КЛИЕНТА:\n")
	b.WriteString(clientContext(pc))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "РЕКОМЕНДУЕМЫЙ ПРОДУКТ: %s\n", r.ProductName)
	fmt.Fprintf(&b, "ПОТЕНЦИАЛЬНАЯ ВЫГОДА: %s в год\n", Money(r.PotentialBenefit))
	fmt.Fprintf(&b, "ПРИЧИНА РЕКОМЕНДАЦИИ: %s\n\n", r.Reason)
	b.WriteString(`ТРЕБОВАНИЯ К ТОНУ (TOV):
- На равных, просто и по-человечески
- Обращение на "вы" с маленькой буквы
- Важное — в начало, без воды
- Лёгкий, ненавязчивый тон
- Максимум 1 эмодзи по смыслу
- Длина 180-220 символов

ФОРМАТ ЧИСЕЛ:
- Дробная часть — запятая
- Разряды — пробелы (например: 27 400 ₸)

СТРУКТУРА СООБЩЕНИЯ:
1. Персональное наблюдение по тратам/поведению
2. Конкретная польза продукта
3. Призыв к действию

Сгенерируй ТОЛЬКО текст уведомления без дополнительных комментариев.
`)
	return b.String()
}

func clientContext(pc storage.PushCandidate) string {
	current := pc.Recommendation.CurrentProduct
	if current == "" {
		current = "Не указан"
	}
	parts := []string{
		"Имя: " + pc.Profile.Name,
		"Текущий продукт: " + current,
		"Средний остаток: " + Money(pc.Profile.AvgMonthlyBalance),
	}
	if cats := pc.Details.Categories; len(cats) > 0 {
		if len(cats) > 3 {
			cats = cats[:3]
		}
		parts = append(parts, "Топ-категории: "+strings.Join(cats, ", "))
	}
	if travel := pc.Details.Value("travel_spending_3m"); travel > 0 {
		parts = append(parts, "Траты на поездки: "+Money(travel))
	}
	if pc.Details.Value("fx_activity_score") > 0 {
		parts = append(parts, "Валютная активность: высокая")
	}
	return strings.Join(parts, "\n")
}
