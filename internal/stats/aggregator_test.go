package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telegram-work-analyzer/internal/models"
)

func collection(counts ...int) *models.CollectionResult {
	result := models.NewCollectionResult(time.Now(), 30)
	for i, count := range counts {
		name := fmt.Sprintf("chat-%02d", i)
		category := models.CategoryPersonal
		if i%2 == 1 {
			category = models.CategoryGroup
		}
		record := &models.ChatRecord{Chat: models.ChatEntity{ID: int64(i), Name: name, Category: category}}
		for j := 0; j < count; j++ {
			msg := models.Message{Text: "x", IsMine: true, Hour: j % 24}
			record.Messages = append(record.Messages, msg)
			record.MyMessages++
			result.MyMessages = append(result.MyMessages, models.OwnedMessage{Message: msg, Chat: name, Category: category})
		}
		record.TotalMessages = len(record.Messages)
		result.AddChat(record)
	}
	return result
}

func TestAggregateCounters(t *testing.T) {
	s := Aggregate(collection(40, 5))

	assert.Equal(t, 45, s.TotalMyMessages)
	assert.Equal(t, 40, s.Category(models.CategoryPersonal))
	assert.Equal(t, 5, s.Category(models.CategoryGroup))
	assert.Equal(t, 5, s.Groups())

	total := 0
	for _, count := range s.ByHour {
		total += count
	}
	assert.Equal(t, 45, total)
	assert.Equal(t, 3, s.ByHour[0], "hours 0..23 then 0..15 for the first chat, 0..4 for the second")

	require.Len(t, s.TopChats, 2)
	assert.Equal(t, models.ChatCount{Name: "chat-00", Count: 40}, s.TopChats[0])
	assert.Equal(t, models.ChatCount{Name: "chat-01", Count: 5}, s.TopChats[1])
}

func TestAggregateNil(t *testing.T) {
	s := Aggregate(nil)
	assert.Zero(t, s.TotalMyMessages)
	assert.Empty(t, s.TopChats)
}

func TestTopChatsLimitAndOrder(t *testing.T) {
	s := Aggregate(collection(1, 7, 3, 7, 0, 9, 2, 2, 5, 4, 8, 6, 1))

	require.Len(t, s.TopChats, TopChatsLimit)
	for i := 1; i < len(s.TopChats); i++ {
		assert.GreaterOrEqual(t, s.TopChats[i-1].Count, s.TopChats[i].Count)
	}
	assert.Equal(t, "chat-05", s.TopChats[0].Name)
	// ties keep first-seen order
	assert.Equal(t, "chat-01", s.TopChats[2].Name)
	assert.Equal(t, "chat-03", s.TopChats[3].Name)
}

func TestPeakHours(t *testing.T) {
	var s models.Stats
	s.ByHour[9] = 10
	s.ByHour[14] = 20
	s.ByHour[18] = 10
	s.ByHour[23] = 1

	assert.Equal(t, []int{14, 9, 18}, PeakHours(s, 3))
	assert.Empty(t, PeakHours(models.Stats{}, 3))
}

func TestHistogram(t *testing.T) {
	var s models.Stats
	s.ByHour[9] = 12
	s.ByHour[14] = 4

	assert.Equal(t, "09:00 —  12 ██\n14:00 —   4 ", Histogram(s))
	assert.Empty(t, Histogram(models.Stats{}))
}
