package collector

import (
	"fmt"
	"strings"

	"github.com/telegram-work-analyzer/internal/models"
)

// Classify maps a raw entity to its display name and category
func Classify(entity models.Entity) models.ChatEntity {
	return models.ChatEntity{
		ID:       entity.ID,
		Name:     ChatName(entity),
		Category: ChatCategory(entity),
	}
}

// ChatName returns the display name of an entity, never empty
func ChatName(entity models.Entity) string {
	if entity.Kind == models.EntityUser {
		name := strings.TrimSpace(entity.FirstName + " " + entity.LastName)
		if name == "" {
			return fmt.Sprintf("User_%d", entity.ID)
		}
		return name
	}

	if title := strings.TrimSpace(entity.Title); title != "" {
		return title
	}
	return fmt.Sprintf("Chat_%d", entity.ID)
}

// ChatCategory determines the category of an entity
func ChatCategory(entity models.Entity) models.Category {
	switch entity.Kind {
	case models.EntityUser:
		if entity.Bot {
			return models.CategoryBot
		}
		return models.CategoryPersonal
	case models.EntityChat:
		return models.CategoryGroup
	case models.EntityChannel:
		if entity.Megagroup {
			return models.CategorySupergroup
		}
		return models.CategoryChannel
	default:
		return models.CategoryUnknown
	}
}
