package analysis

import (
	"fmt"
	"time"

	"github.com/telegram-work-analyzer/internal/models"
	"github.com/telegram-work-analyzer/internal/stats"
)

var baseTime = time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

// buildCollection creates one chat per entry of owned with that many of the user's messages
// plus an equal number of replies.
func buildCollection(text string, owned ...int) *models.CollectionResult {
	result := models.NewCollectionResult(baseTime.AddDate(0, 0, -30), 30)
	for i, count := range owned {
		name := fmt.Sprintf("Chat %d", i+1)
		record := &models.ChatRecord{Chat: models.ChatEntity{ID: int64(i + 1), Name: name, Category: models.CategoryPersonal}}
		for j := 0; j < count; j++ {
			date := baseTime.Add(-time.Duration(j) * 6 * time.Hour)
			mine := models.Message{Date: date, Text: fmt.Sprintf("%s %d", text, j), IsMine: true, Hour: date.Hour()}
			reply := models.Message{Date: date, Text: "ok", Hour: date.Hour()}
			record.Messages = append(record.Messages, mine, reply)
			record.MyMessages++
			result.MyMessages = append(result.MyMessages, models.OwnedMessage{Message: mine, Chat: name, Category: models.CategoryPersonal})
		}
		record.TotalMessages = len(record.Messages)
		result.AddChat(record)
	}
	result.Stats = stats.Aggregate(result)
	return result
}
