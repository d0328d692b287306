package models

import "time"

// ChatEntity is a classified dialog
type ChatEntity struct {
	ID       int64
	Name     string
	Category Category
}

// Message is a collected text message
type Message struct {
	Date   time.Time `json:"date"`
	Text   string    `json:"text"`
	IsMine bool      `json:"is_mine"`
	Hour   int       `json:"hour"`
}

// OwnedMessage is a message sent by the analyzed user with a back-reference to its chat
type OwnedMessage struct {
	Message
	Chat     string   `json:"chat"`
	Category Category `json:"chat_type"`
}

// ChatRecord aggregates the collected messages of one chat
type ChatRecord struct {
	Chat          ChatEntity
	TotalMessages int
	MyMessages    int
	// Messages are kept in fetch order (newest first)
	Messages []Message
}

// Owned returns the messages sent by the analyzed user, in stored order
func (r *ChatRecord) Owned() []Message {
	owned := make([]Message, 0, r.MyMessages)
	for _, msg := range r.Messages {
		if msg.IsMine {
			owned = append(owned, msg)
		}
	}
	return owned
}

// ChatCount pairs a chat name with the number of the user's messages in it
type ChatCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats holds the counters derived from a collection
type Stats struct {
	TotalMyMessages int              `json:"total_my_messages"`
	ByCategory      map[Category]int `json:"by_category"`
	ByHour          [24]int          `json:"by_hour"`
	TopChats        []ChatCount      `json:"top_chats"`
}

// Category returns the owned-message count for a category
func (s Stats) Category(c Category) int {
	return s.ByCategory[c]
}

// Groups returns owned messages in groups and supergroups combined
func (s Stats) Groups() int {
	return s.ByCategory[CategoryGroup] + s.ByCategory[CategorySupergroup]
}

// CollectionResult is the handoff from collection to analysis
type CollectionResult struct {
	// Chats is keyed by display name; a repeated name overwrites the earlier record
	Chats map[string]*ChatRecord
	// Order holds chat names in first-classified order
	Order      []string
	MyMessages []OwnedMessage
	Stats      Stats
	// Since is the collection cutoff
	Since time.Time
	Days  int
}

// NewCollectionResult creates an empty collection
func NewCollectionResult(since time.Time, days int) *CollectionResult {
	return &CollectionResult{
		Chats:      make(map[string]*ChatRecord),
		Order:      []string{},
		MyMessages: []OwnedMessage{},
		Stats:      Stats{ByCategory: make(map[Category]int), TopChats: []ChatCount{}},
		Since:      since,
		Days:       days,
	}
}

// AddChat stores a chat record, keeping the first-seen position of a repeated name
func (c *CollectionResult) AddChat(record *ChatRecord) {
	name := record.Chat.Name
	if _, exists := c.Chats[name]; !exists {
		c.Order = append(c.Order, name)
	}
	c.Chats[name] = record
}

// OrderedChats returns chat records in first-classified order
func (c *CollectionResult) OrderedChats() []*ChatRecord {
	records := make([]*ChatRecord, 0, len(c.Order))
	for _, name := range c.Order {
		if record, ok := c.Chats[name]; ok {
			records = append(records, record)
		}
	}
	return records
}
