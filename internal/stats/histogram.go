package stats

import (
	"fmt"
	"strings"

	"github.com/telegram-work-analyzer/internal/models"
)

// BarUnit is the number of messages one histogram bar character stands for
const BarUnit = 5

// Histogram renders the hours with activity as a text bar chart, one line per hour
func Histogram(s models.Stats) string {
	lines := make([]string, 0, len(s.ByHour))
	for hour, count := range s.ByHour {
		if count == 0 {
			continue
		}
		bar := strings.Repeat("█", count/BarUnit)
		lines = append(lines, fmt.Sprintf("%02d:00 — %3d %s", hour, count, bar))
	}
	return strings.Join(lines, "\n")
}
