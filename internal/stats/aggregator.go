package stats

import (
	"sort"

	"github.com/telegram-work-analyzer/internal/models"
)

// TopChatsLimit is the maximum number of chats in the activity ranking
const TopChatsLimit = 10

// Aggregate derives counters from a collection
func Aggregate(result *models.CollectionResult) models.Stats {
	s := models.Stats{
		ByCategory: make(map[models.Category]int),
		TopChats:   []models.ChatCount{},
	}
	if result == nil {
		return s
	}

	for _, msg := range result.MyMessages {
		s.TotalMyMessages++
		s.ByCategory[msg.Category]++
		if msg.Hour >= 0 && msg.Hour < len(s.ByHour) {
			s.ByHour[msg.Hour]++
		}
	}

	s.TopChats = TopChats(result.OrderedChats(), TopChatsLimit)
	return s
}

// TopChats ranks chats by the user's message count, keeping first-seen order on ties
func TopChats(records []*models.ChatRecord, limit int) []models.ChatCount {
	ranking := make([]models.ChatCount, 0, len(records))
	for _, record := range records {
		ranking = append(ranking, models.ChatCount{
			Name:  record.Chat.Name,
			Count: record.MyMessages,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Count > ranking[j].Count
	})

	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}

// PeakHours returns the hours with the highest activity, busiest first
func PeakHours(s models.Stats, n int) []int {
	hours := make([]int, 0, len(s.ByHour))
	for hour, count := range s.ByHour {
		if count > 0 {
			hours = append(hours, hour)
		}
	}

	sort.SliceStable(hours, func(i, j int) bool {
		return s.ByHour[hours[i]] > s.ByHour[hours[j]]
	})

	if len(hours) > n {
		hours = hours[:n]
	}
	return hours
}
