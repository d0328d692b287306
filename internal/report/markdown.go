// Package report renders an analysis into Markdown documents, JSON dumps and chat fragments.
package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/telegram-work-analyzer/internal/models"
	"github.com/telegram-work-analyzer/internal/stats"
)

const (
	noData    = "*Нет данных*"
	noIdeas   = "*Нет идей*"
	noSteps   = "*Нет шагов*"
	noMetric  = "N/A"
	sepLine   = "\n---\n\n"
	slugLimit = 50
)

var (
	slugStrip    = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s\p{Z}-]`)
	slugCollapse = regexp.MustCompile(`[\s\p{Z}_-]+`)
)

// MainReport renders the long-form report
func MainReport(analysis *models.AnalysisResult, collection *models.CollectionResult, generated time.Time) string {
	timeAnalysis := analysis.Time()
	comm := analysis.Communication()
	metrics := analysis.MetricValues()
	s := collection.Stats

	var sb strings.Builder

	sb.WriteString("# 📊 Анализ рабочей коммуникации\n")
	fmt.Fprintf(&sb, "**Период:** %d дней\n", collection.Days)
	fmt.Fprintf(&sb, "**Дата отчёта:** %s\n", generated.Format("02.01.2006 15:04"))
	sb.WriteString(sepLine)

	sb.WriteString("## 📋 Резюме\n\n")
	sb.WriteString(orDefault(analysis.Summary(), noData))
	sb.WriteString("\n")
	sb.WriteString(sepLine)

	sb.WriteString("## ⏰ Анализ времени\n\n")
	sb.WriteString("### Пиковые часы активности\n")
	sb.WriteString(bulletList(timeAnalysis.PeakHours))
	sb.WriteString("\n\n### Паттерны потери времени\n")
	sb.WriteString(bulletList(timeAnalysis.WastedTimePatterns))
	sb.WriteString("\n\n### Рекомендации\n")
	sb.WriteString(bulletList(timeAnalysis.Recommendations))
	sb.WriteString("\n")
	sb.WriteString(sepLine)

	sb.WriteString("## 🎯 Возможности для делегирования\n\n")
	sb.WriteString(delegationTable(analysis.Delegations()))
	sb.WriteString("\n")
	sb.WriteString(sepLine)

	sb.WriteString("## 💬 Паттерны коммуникации\n\n")
	sb.WriteString("### Повторяющиеся объяснения (нужна документация)\n")
	sb.WriteString(bulletList(comm.RepetitiveExplanations))
	sb.WriteString("\n\n### Узкие места (где застревают процессы)\n")
	sb.WriteString(bulletList(comm.Bottlenecks))
	sb.WriteString("\n\n### Как улучшить\n")
	sb.WriteString(bulletList(comm.Improvements))
	sb.WriteString("\n")
	sb.WriteString(sepLine)

	sb.WriteString("## 🤖 Идеи автоматизации\n\n")
	sb.WriteString(automationTable(analysis.Automation()))
	sb.WriteString("\n")
	sb.WriteString(sepLine)

	sb.WriteString("## 📈 Метрики\n\n")
	sb.WriteString("| Метрика | Значение |\n")
	sb.WriteString("|---------|----------|\n")
	fmt.Fprintf(&sb, "| Операционка vs Стратегия | %s |\n", cell(orDefault(metrics.OperationalVsStrategic.String(), noMetric)))
	fmt.Fprintf(&sb, "| Время ответа | %s |\n", cell(orDefault(metrics.ResponseTimeEstimate.String(), noMetric)))
	fmt.Fprintf(&sb, "| Переключение контекста | %s |\n", cell(orDefault(metrics.ContextSwitching.String(), noMetric)))
	sb.WriteString(sepLine)

	sb.WriteString("## 📊 Статистика из данных\n\n")
	fmt.Fprintf(&sb, "- **Всего сообщений:** %d\n", s.TotalMyMessages)
	fmt.Fprintf(&sb, "- **Личные чаты:** %d\n", s.Category(models.CategoryPersonal))
	fmt.Fprintf(&sb, "- **Группы:** %d\n", s.Groups())
	sb.WriteString("\n### Топ-10 чатов по активности\n")
	sb.WriteString(topChatsList(s.TopChats))
	sb.WriteString("\n\n### Распределение по часам\n```\n")
	sb.WriteString(orDefault(stats.Histogram(s), "Нет данных"))
	sb.WriteString("\n```\n")

	// Keep the unparsed answer readable when the structured sections are empty
	if analysis.IsDegraded() && analysis != nil && strings.TrimSpace(analysis.RawResponse) != "" {
		sb.WriteString(sepLine)
		sb.WriteString("## 📝 Ответ модели (не удалось разобрать структуру)\n\n")
		sb.WriteString(analysis.RawResponse)
		sb.WriteString("\n")
	}

	return sb.String()
}

// SOPDocument renders one procedure document
func SOPDocument(sop models.SOP, generated time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# SOP: %s\n\n", orDefault(sop.ProcessName.String(), "Без названия"))
	fmt.Fprintf(&sb, "## Описание\n%s\n\n", sop.Description)
	fmt.Fprintf(&sb, "## Триггер\n%s\n\n", orDefault(sop.Triggers.String(), "Не указан"))
	fmt.Fprintf(&sb, "## Ответственный\n%s\n\n", orDefault(sop.Owner.String(), "Не назначен"))
	fmt.Fprintf(&sb, "## Необходимые инструменты\n%s\n\n", bulletList(sop.ToolsNeeded))
	fmt.Fprintf(&sb, "## Шаги выполнения\n\n%s\n", numberedList(sop.Steps))
	fmt.Fprintf(&sb, "\n---\n*Создано автоматически: %s*\n", generated.Format("02.01.2006"))

	return sb.String()
}

// ActionPlan renders the prioritized action plan document
func ActionPlan(analysis *models.AnalysisResult, generated time.Time) string {
	var sb strings.Builder

	sb.WriteString("# 🎯 Action Plan\n")
	fmt.Fprintf(&sb, "**Дата:** %s\n", generated.Format("02.01.2006"))
	sb.WriteString(sepLine)

	actions := analysis.Actions()
	if len(actions) == 0 {
		sb.WriteString(noData)
		sb.WriteString("\n")
		return sb.String()
	}

	for _, action := range actions {
		fmt.Fprintf(&sb, "## [%s] %s\n\n",
			orDefault(action.Priority.String(), "?"),
			orDefault(action.Action.String(), "Действие"))
		fmt.Fprintf(&sb, "**Ожидаемый результат:** %s\n", orDefault(action.ExpectedResult.String(), "Не указан"))
		sb.WriteString(sepLine)
	}

	return sb.String()
}

// SOPFilename returns the file name of the index-th (1-based) procedure document.
// Different names may map to the same file; the later document wins.
func SOPFilename(index int, processName string) string {
	if strings.TrimSpace(processName) == "" {
		processName = "process"
	}
	return fmt.Sprintf("SOP_%02d_%s.md", index, Slugify(processName))
}

// Slugify lowercases text, drops punctuation, joins words with underscores and caps the length
func Slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = slugStrip.ReplaceAllString(text, "")
	text = slugCollapse.ReplaceAllString(text, "_")

	runes := []rune(text)
	if len(runes) > slugLimit {
		runes = runes[:slugLimit]
	}
	return string(runes)
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return noData
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func numberedList(items []string) string {
	if len(items) == 0 {
		return noSteps
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

func delegationTable(items []models.Delegation) string {
	if len(items) == 0 {
		return noData
	}

	var sb strings.Builder
	sb.WriteString("| Задача | Время | Кому делегировать | Приоритет |\n")
	sb.WriteString("|--------|-------|-------------------|------------|\n")
	for _, item := range items {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			cell(item.Task.String()),
			cell(item.CurrentTimeSpent.String()),
			cell(item.CanDelegateTo.String()),
			cell(item.Priority.String()))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func automationTable(items []models.AutomationIdea) string {
	if len(items) == 0 {
		return noIdeas
	}

	var sb strings.Builder
	sb.WriteString("| Идея | Импакт | Реализация |\n")
	sb.WriteString("|------|--------|------------|\n")
	for _, item := range items {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n",
			cell(item.Idea.String()),
			cell(item.Impact.String()),
			cell(item.Implementation.String()))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func topChatsList(top []models.ChatCount) string {
	if len(top) == 0 {
		return noData
	}
	lines := make([]string, len(top))
	for i, chat := range top {
		lines[i] = fmt.Sprintf("- **%s**: %d сообщений", chat.Name, chat.Count)
	}
	return strings.Join(lines, "\n")
}

// cell keeps a value inside one Markdown table cell
func cell(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
