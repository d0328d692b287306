package analysis

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/telegram-work-analyzer/internal/models"
)

// ParseResponse extracts the JSON report embedded in the model output.
// When no object can be decoded the raw text is kept as a degraded result.
func ParseResponse(text string) *models.AnalysisResult {
	// Try to extract JSON from the response (in case there's extra text)
	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return &models.AnalysisResult{RawResponse: text}
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd+1]), &result); err != nil {
		// A well-formed document with a mistyped section keeps the sections that decoded
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return &models.AnalysisResult{RawResponse: text}
		}
	}

	return &result
}
