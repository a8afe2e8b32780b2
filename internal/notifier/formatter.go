package notifier

import (
	"fmt"
	"strings"
	"time"

	"ProductAdvisor/internal/model"
	"ProductAdvisor/internal/pipeline"
	"ProductAdvisor/internal/report"
)

// FormatRunSummary formats a scoring pass for the operator chat. rep may be nil.
func FormatRunSummary(sum *pipeline.Summary, rep *report.Summary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>ProductAdvisor</b> | %s\n\n", sum.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Клиентов: %d (успешно %d, ошибок %d)\n", sum.Clients, sum.Succeeded, sum.Failed))
	b.WriteString(fmt.Sprintf("Сигналов: %d | Выгод: %d | Рекомендаций: %d\n", sum.Signals, sum.Benefits, sum.Recommendations))
	b.WriteString(fmt.Sprintf("Длительность: %s\n", sum.Duration().Round(time.Millisecond)))
	if len(sum.FailedClients) > 0 {
		b.WriteString(fmt.Sprintf("⚠️ Ошибки у клиентов: %s\n", joinInts(sum.FailedClients, 20)))
	}

	if rep != nil {
		b.WriteString("\n🏆 <b>Топ продуктов:</b>\n")
		for i, p := range rep.TopProducts {
			b.WriteString(fmt.Sprintf("  %d. %s (%d)\n", i+1, p.Name, p.Count))
		}
		b.WriteString(fmt.Sprintf("\nПокрытие: %.0f%%\n", rep.RecommendationRate*100))
		b.WriteString(fmt.Sprintf("Средняя выгода top-1: %s\n", report.Money(rep.AverageTopBenefit)))
		b.WriteString(fmt.Sprintf("Суммарная выгода top-1: %s\n", report.Money(rep.TotalTopBenefit)))
	}

	b.WriteString(fmt.Sprintf("\nrun_id: <code>%s</code>", sum.RunID))
	return b.String()
}

// FormatShortlist formats one client's ranked recommendations.
func FormatShortlist(clientCode int, recs []model.Recommendation) string {
	if len(recs) == 0 {
		return fmt.Sprintf("Клиент %d: рекомендаций нет", clientCode)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👤 <b>Клиент %d</b>\n", clientCode))
	if cur := recs[0].CurrentProduct; cur != "" {
		b.WriteString(fmt.Sprintf("Текущий продукт: %s\n", cur))
	}
	b.WriteString("\n")
	for _, r := range recs {
		b.WriteString(fmt.Sprintf("%d. %s: %s\n", r.Rank, r.ProductName, report.Money(r.PotentialBenefit)))
		if r.Reason != "" {
			b.WriteString(fmt.Sprintf("   %s\n", r.Reason))
		}
	}
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Команды:\n" +
		"/run - запустить расчёт\n" +
		"/status - последний расчёт\n" +
		"/client <код> - рекомендации клиента\n" +
		"/help - эта справка"
}

func joinInts(xs []int, limit int) string {
	parts := make([]string, 0, len(xs))
	for i, x := range xs {
		if i == limit {
			parts = append(parts, fmt.Sprintf("… +%d", len(xs)-limit))
			break
		}
		parts = append(parts, fmt.Sprint(x))
	}
	return strings.Join(parts, ", ")
}
