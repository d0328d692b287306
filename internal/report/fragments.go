package report

import (
	"fmt"
	"strings"

	"github.com/telegram-work-analyzer/internal/models"
	"github.com/telegram-work-analyzer/internal/stats"
)

// MaxFragmentLength is the Telegram limit for one text message, in UTF-16 code units
const MaxFragmentLength = 4096

const (
	histogramHeader = "\n*По часам*\n```\n"
	codeFence       = "\n```"
)

var markdownV1 = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// EscapeMarkdown escapes text for Telegram legacy Markdown
func EscapeMarkdown(s string) string {
	return markdownV1.Replace(s)
}

// Fragments splits the report into chat messages in delivery order:
// summary, delegation, action plan, automation, top chats, then one per procedure.
// Every fragment fits the transport limit.
func Fragments(analysis *models.AnalysisResult, collection *models.CollectionResult) []string {
	fragments := []string{
		summaryFragment(analysis, collection),
		delegationFragment(analysis),
		actionPlanFragment(analysis),
		automationFragment(analysis),
		topChatsFragment(collection.Stats),
	}
	for i, sop := range analysis.SOPs() {
		fragments = append(fragments, sopFragment(i+1, sop))
	}

	for i, fragment := range fragments {
		fragments[i] = Truncate(fragment, MaxFragmentLength)
	}
	return fragments
}

// Truncate cuts s to at most maxUnits UTF-16 code units without splitting a character.
// A dangling escape backslash left by the cut is dropped.
func Truncate(s string, maxUnits int) string {
	units := 0
	for i, r := range s {
		units += runeUnits(r)
		if units > maxUnits {
			cut := s[:i]
			trailing := len(cut) - len(strings.TrimRight(cut, "\\"))
			if trailing%2 == 1 {
				cut = cut[:len(cut)-1]
			}
			return cut
		}
	}
	return s
}

// TextLength measures s the way Telegram does, in UTF-16 code units
func TextLength(s string) int {
	units := 0
	for _, r := range s {
		units += runeUnits(r)
	}
	return units
}

func runeUnits(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

// trimLines drops trailing lines until s fits maxUnits
func trimLines(s string, maxUnits int) string {
	for s != "" && TextLength(s) > maxUnits {
		idx := strings.LastIndex(s, "\n")
		if idx < 0 {
			return ""
		}
		s = s[:idx]
	}
	return s
}

func summaryFragment(analysis *models.AnalysisResult, collection *models.CollectionResult) string {
	var sb strings.Builder
	s := collection.Stats
	timeAnalysis := analysis.Time()
	metrics := analysis.MetricValues()

	sb.WriteString("📊 *Анализ рабочей коммуникации*\n")
	fmt.Fprintf(&sb, "Период: %d дней, моих сообщений: %d (личные: %d, группы: %d)\n\n",
		collection.Days, s.TotalMyMessages, s.Category(models.CategoryPersonal), s.Groups())

	sb.WriteString("*📋 Резюме*\n")
	if analysis.IsDegraded() && analysis != nil && analysis.RawResponse != "" {
		sb.WriteString(EscapeMarkdown(analysis.RawResponse))
		return sb.String()
	}
	sb.WriteString(orDefault(EscapeMarkdown(analysis.Summary()), "Нет данных"))
	sb.WriteString("\n\n")

	sb.WriteString("*⏰ Пиковые часы*\n")
	sb.WriteString(chatList(timeAnalysis.PeakHours))
	sb.WriteString("\n\n*Потери времени*\n")
	sb.WriteString(chatList(timeAnalysis.WastedTimePatterns))
	sb.WriteString("\n\n*📈 Метрики*\n")
	fmt.Fprintf(&sb, "• Операционка vs Стратегия: %s\n", EscapeMarkdown(orDefault(metrics.OperationalVsStrategic.String(), noMetric)))
	fmt.Fprintf(&sb, "• Время ответа: %s\n", EscapeMarkdown(orDefault(metrics.ResponseTimeEstimate.String(), noMetric)))
	fmt.Fprintf(&sb, "• Переключение контекста: %s", EscapeMarkdown(orDefault(metrics.ContextSwitching.String(), noMetric)))

	return sb.String()
}

func delegationFragment(analysis *models.AnalysisResult) string {
	var sb strings.Builder
	sb.WriteString("🎯 *Возможности для делегирования*\n\n")

	items := analysis.Delegations()
	if len(items) == 0 {
		sb.WriteString("Нет данных")
		return sb.String()
	}
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. *%s*\n", i+1, EscapeMarkdown(orDefault(item.Task.String(), "Задача")))
		if v := item.CurrentTimeSpent.String(); v != "" {
			fmt.Fprintf(&sb, "   Время: %s\n", EscapeMarkdown(v))
		}
		if v := item.CanDelegateTo.String(); v != "" {
			fmt.Fprintf(&sb, "   Кому: %s\n", EscapeMarkdown(v))
		}
		if v := item.Priority.String(); v != "" {
			fmt.Fprintf(&sb, "   Приоритет: %s\n", EscapeMarkdown(v))
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func actionPlanFragment(analysis *models.AnalysisResult) string {
	var sb strings.Builder
	sb.WriteString("✅ *Action Plan*\n\n")

	actions := analysis.Actions()
	if len(actions) == 0 {
		sb.WriteString("Нет данных")
		return sb.String()
	}
	for _, action := range actions {
		fmt.Fprintf(&sb, "*[%s]* %s\n",
			EscapeMarkdown(orDefault(action.Priority.String(), "?")),
			EscapeMarkdown(orDefault(action.Action.String(), "Действие")))
		fmt.Fprintf(&sb, "→ %s\n\n", EscapeMarkdown(orDefault(action.ExpectedResult.String(), "Не указан")))
	}
	return strings.TrimSuffix(sb.String(), "\n\n")
}

func automationFragment(analysis *models.AnalysisResult) string {
	var sb strings.Builder
	sb.WriteString("🤖 *Идеи автоматизации*\n\n")

	ideas := analysis.Automation()
	if len(ideas) == 0 {
		sb.WriteString("Нет идей")
		return sb.String()
	}
	for i, idea := range ideas {
		fmt.Fprintf(&sb, "%d. *%s*", i+1, EscapeMarkdown(orDefault(idea.Idea.String(), "Идея")))
		if v := idea.Impact.String(); v != "" {
			fmt.Fprintf(&sb, " (%s)", EscapeMarkdown(v))
		}
		sb.WriteString("\n")
		if v := idea.Implementation.String(); v != "" {
			fmt.Fprintf(&sb, "   %s\n", EscapeMarkdown(v))
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func topChatsFragment(s models.Stats) string {
	var sb strings.Builder
	sb.WriteString("💬 *Топ чатов по активности*\n\n")

	if len(s.TopChats) == 0 {
		sb.WriteString("Нет данных")
	}
	for i, chat := range s.TopChats {
		fmt.Fprintf(&sb, "%d. %s: %d\n", i+1, EscapeMarkdown(chat.Name), chat.Count)
	}

	// The code block must stay closed, so hours are dropped rather than cut mid-block
	if histogram := stats.Histogram(s); histogram != "" {
		room := MaxFragmentLength - TextLength(sb.String()) - TextLength(histogramHeader) - TextLength(codeFence)
		if body := trimLines(histogram, room); body != "" {
			sb.WriteString(histogramHeader)
			sb.WriteString(body)
			sb.WriteString(codeFence)
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func sopFragment(index int, sop models.SOP) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "📄 *SOP %d: %s*\n\n", index, EscapeMarkdown(orDefault(sop.ProcessName.String(), "Без названия")))
	if v := sop.Description.String(); v != "" {
		fmt.Fprintf(&sb, "%s\n\n", EscapeMarkdown(v))
	}
	fmt.Fprintf(&sb, "*Триггер:* %s\n", EscapeMarkdown(orDefault(sop.Triggers.String(), "Не указан")))
	fmt.Fprintf(&sb, "*Ответственный:* %s\n", EscapeMarkdown(orDefault(sop.Owner.String(), "Не назначен")))
	if len(sop.ToolsNeeded) > 0 {
		fmt.Fprintf(&sb, "*Инструменты:* %s\n", EscapeMarkdown(strings.Join(sop.ToolsNeeded, ", ")))
	}

	sb.WriteString("\n*Шаги:*\n")
	if len(sop.Steps) == 0 {
		sb.WriteString("Нет шагов")
	}
	for i, step := range sop.Steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, EscapeMarkdown(step))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func chatList(items []string) string {
	if len(items) == 0 {
		return "Нет данных"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + EscapeMarkdown(item)
	}
	return strings.Join(lines, "\n")
}
