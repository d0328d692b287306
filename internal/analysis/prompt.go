package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/telegram-work-analyzer/internal/models"
	"github.com/telegram-work-analyzer/internal/stats"
)

const (
	// MaxSampleMessages is the number of the user's messages sampled per chat
	MaxSampleMessages = 30

	// MaxSampleTextLength is the length each sampled message is cut to
	MaxSampleTextLength = 200

	// MaxTranscriptChars is the context budget for the whole transcript sample
	MaxTranscriptChars = 50000
)

// BuildPrompt constructs the analysis request for the model
func BuildPrompt(result *models.CollectionResult) string {
	s := result.Stats
	var sb strings.Builder

	sb.WriteString("Ты — эксперт по продуктивности и бизнес-процессам.\n")
	sb.WriteString(fmt.Sprintf("Проанализируй мою рабочую коммуникацию в Telegram за последние %d дней.\n\n", result.Days))

	sb.WriteString("## ДАННЫЕ ДЛЯ АНАЛИЗА\n\n")
	sb.WriteString("### Статистика\n")
	sb.WriteString(fmt.Sprintf("- Всего моих сообщений: %d\n", s.TotalMyMessages))
	sb.WriteString(fmt.Sprintf("- В личных чатах: %d\n", s.Category(models.CategoryPersonal)))
	sb.WriteString(fmt.Sprintf("- В группах: %d\n", s.Groups()))
	sb.WriteString(fmt.Sprintf("- В каналах: %d\n\n", s.Category(models.CategoryChannel)))

	sb.WriteString("### Топ чатов по моей активности\n")
	sb.WriteString(formatTopChatsJSON(s.TopChats))
	sb.WriteString("\n\n")

	sb.WriteString("### Распределение по часам\n")
	sb.WriteString(stats.Histogram(s))
	sb.WriteString("\n\n")

	sb.WriteString("### Примеры моих сообщений (сгруппированы по чатам)\n")
	sb.WriteString(TranscriptSample(result))
	sb.WriteString("\n\n---\n\n")

	sb.WriteString(taskInstructions)

	return sb.String()
}

// TranscriptSample renders a bounded sample of the user's messages per chat.
// The concatenated text is cut to MaxTranscriptChars characters.
func TranscriptSample(result *models.CollectionResult) string {
	lines := make([]string, 0)

	for _, record := range result.OrderedChats() {
		owned := record.Owned()
		if len(owned) == 0 {
			continue
		}

		sample := owned
		if len(sample) > MaxSampleMessages {
			sample = sample[:MaxSampleMessages]
		}

		lines = append(lines, fmt.Sprintf("\n### %s (%s) — %d сообщений", record.Chat.Name, record.Chat.Category, len(owned)))
		for _, msg := range sample {
			date := msg.Date.UTC().Format("2006-01-02")
			lines = append(lines, fmt.Sprintf("[%s] %s", date, truncate(msg.Text, MaxSampleTextLength)))
		}
	}

	return truncate(strings.Join(lines, "\n"), MaxTranscriptChars)
}

// formatTopChatsJSON renders the ranking as an ordered JSON object
func formatTopChatsJSON(top []models.ChatCount) string {
	if len(top) == 0 {
		return "{}"
	}

	var sb strings.Builder
	sb.WriteString("{\n")
	for i, chat := range top {
		name, _ := json.Marshal(chat.Name)
		sb.WriteString(fmt.Sprintf("  %s: %d", name, chat.Count))
		if i < len(top)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// truncate cuts s to at most maxChars characters
func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

const taskInstructions = `## ЗАДАЧА

Сгенерируй комплексный отчёт в формате JSON:

` + "```json" + `
{
  "executive_summary": "Краткое резюме (3-4 предложения)",

  "time_analysis": {
    "peak_hours": ["часы наибольшей активности"],
    "wasted_time_patterns": ["паттерны потери времени"],
    "recommendations": ["рекомендации по тайм-менеджменту"]
  },

  "delegation_opportunities": [
    {
      "task": "название задачи",
      "current_time_spent": "оценка времени",
      "can_delegate_to": "кому делегировать",
      "priority": "high/medium/low"
    }
  ],

  "sop_candidates": [
    {
      "process_name": "Название процесса",
      "description": "Что это за процесс",
      "steps": ["шаг 1", "шаг 2", "..."],
      "triggers": "когда запускается",
      "owner": "кто должен выполнять",
      "tools_needed": ["инструменты"]
    }
  ],

  "communication_patterns": {
    "repetitive_explanations": ["что объясняешь повторно"],
    "bottlenecks": ["где застревают процессы"],
    "improvements": ["как улучшить коммуникацию"]
  },

  "automation_ideas": [
    {
      "idea": "что автоматизировать",
      "impact": "high/medium/low",
      "implementation": "как реализовать"
    }
  ],

  "metrics": {
    "operational_vs_strategic": "X% / Y%",
    "response_time_estimate": "оценка",
    "context_switching": "оценка частоты переключений"
  },

  "action_plan": [
    {
      "action": "конкретное действие",
      "priority": 1,
      "expected_result": "ожидаемый результат"
    }
  ]
}
` + "```" + `

Будь конкретным. Называй реальные чаты и задачи из данных.
Фокусируйся на actionable insights, а не общих советах.
`
