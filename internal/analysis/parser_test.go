package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telegram-work-analyzer/internal/models"
)

const fullResponse = `{
  "executive_summary": "Много операционки.",
  "time_analysis": {
    "peak_hours": ["10:00-12:00", 21],
    "wasted_time_patterns": ["Повторные согласования"],
    "recommendations": ["Блоки фокуса"]
  },
  "delegation_opportunities": [
    {"task": "Отчёты", "current_time_spent": "3ч/нед", "can_delegate_to": "Ассистент", "priority": "high"}
  ],
  "sop_candidates": [
    {"process_name": "Онбординг клиента", "description": "Запуск", "steps": ["Созвон", "Договор"], "triggers": ["Оплата", "Заявка"], "owner": "Менеджер", "tools_needed": "CRM"}
  ],
  "communication_patterns": {"bottlenecks": ["Согласование бюджета"]},
  "automation_ideas": [{"idea": "Бот статусов", "impact": "medium", "implementation": "n8n"}],
  "metrics": {"operational_vs_strategic": "80% / 20%"},
  "action_plan": [{"action": "Нанять ассистента", "priority": 1, "expected_result": "Минус 5ч"}]
}`

func TestParseResponseFullDocument(t *testing.T) {
	result := ParseResponse(fullResponse)

	require.False(t, result.IsDegraded())
	assert.Equal(t, "Много операционки.", result.Summary())
	assert.Equal(t, models.FlexList{"10:00-12:00", "21"}, result.Time().PeakHours)
	require.Len(t, result.Delegations(), 1)
	assert.Equal(t, "Ассистент", result.Delegations()[0].CanDelegateTo.String())

	require.Len(t, result.SOPs(), 1)
	sop := result.SOPs()[0]
	assert.Equal(t, models.FlexList{"Созвон", "Договор"}, sop.Steps)
	assert.Equal(t, "Оплата, Заявка", sop.Triggers.String())
	assert.Equal(t, models.FlexList{"CRM"}, sop.ToolsNeeded)

	assert.Empty(t, result.Communication().RepetitiveExplanations)
	assert.Equal(t, models.FlexList{"Согласование бюджета"}, result.Communication().Bottlenecks)
	assert.Equal(t, "80% / 20%", result.MetricValues().OperationalVsStrategic.String())
	assert.Empty(t, result.MetricValues().ContextSwitching)

	require.Len(t, result.Actions(), 1)
	assert.Equal(t, "1", result.Actions()[0].Priority.String())
}

func TestParseResponseSurroundedByProse(t *testing.T) {
	text := "Вот анализ:\n```json\n" + fullResponse + "\n```\nНадеюсь, помог."

	embedded := ParseResponse(fullResponse)
	result := ParseResponse(text)

	assert.Equal(t, embedded, result)
}

func TestParseResponseDegraded(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain prose", "Извините, я не могу выполнить анализ."},
		{"empty", ""},
		{"braces reversed", "} nothing here {"},
		{"malformed json", `prefix {"executive_summary": "x", } suffix`},
		{"only opening brace", "{ started but never finished"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseResponse(tt.text)
			assert.Equal(t, &models.AnalysisResult{RawResponse: tt.text}, result)
		})
	}
}

func TestParseResponseDegradedIsIdempotent(t *testing.T) {
	first := ParseResponse("no structure at all")
	second := ParseResponse(first.RawResponse)

	assert.Equal(t, first, second)
	assert.True(t, second.IsDegraded())
}

func TestParseResponseKeepsDecodedSectionsOnTypeMismatch(t *testing.T) {
	result := ParseResponse(`{"executive_summary": "Итог", "time_analysis": "не объект"}`)

	assert.False(t, result.IsDegraded())
	assert.Equal(t, "Итог", result.Summary())
	assert.Empty(t, result.Time().PeakHours)
}
