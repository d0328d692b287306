package collector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telegram-work-analyzer/internal/models"
)

const myID = 100

var now = time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

type fakeSession struct {
	dialogs  []models.Entity
	history  map[int64][]models.RawMessage
	failures map[int64]error
	requests map[int64]int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		history:  make(map[int64][]models.RawMessage),
		failures: make(map[int64]error),
		requests: make(map[int64]int),
	}
}

func (f *fakeSession) Self(ctx context.Context) (models.Identity, error) {
	return models.Identity{ID: myID, FirstName: "Me"}, nil
}

func (f *fakeSession) Dialogs(ctx context.Context, limit int) ([]models.Entity, error) {
	if len(f.dialogs) > limit {
		return f.dialogs[:limit], nil
	}
	return f.dialogs, nil
}

func (f *fakeSession) Messages(ctx context.Context, entity models.Entity, limit int, fn func(models.RawMessage) bool) error {
	if err := f.failures[entity.ID]; err != nil {
		return err
	}
	for i, msg := range f.history[entity.ID] {
		if i >= limit {
			return nil
		}
		f.requests[entity.ID]++
		if !fn(msg) {
			return nil
		}
	}
	return nil
}

func (f *fakeSession) add(entity models.Entity, msgs ...models.RawMessage) {
	f.dialogs = append(f.dialogs, entity)
	f.history[entity.ID] = append(f.history[entity.ID], msgs...)
}

// history builds n messages newest first, one hour apart, starting at now
func history(n int, sender int64, text string) []models.RawMessage {
	msgs := make([]models.RawMessage, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, models.RawMessage{
			ID:       n - i,
			Date:     now.Add(-time.Duration(i) * time.Hour),
			Text:     text,
			SenderID: sender,
		})
	}
	return msgs
}

func newCollector(session Session, opts Options) *Collector {
	opts.Now = func() time.Time { return now }
	return New(session, opts, zerolog.Nop())
}

func TestCollectSkipsBotsAndEmptyChats(t *testing.T) {
	session := newFakeSession()
	session.add(models.Entity{Kind: models.EntityUser, ID: 1, FirstName: "Bot", Bot: true}, history(5, myID, "/start")...)
	session.add(models.Entity{Kind: models.EntityUser, ID: 2, FirstName: "Anna"}, history(3, myID, "hi")...)
	session.add(models.Entity{Kind: models.EntityChat, ID: 3, Title: "Quiet"})
	session.add(models.Entity{Kind: models.EntityChat, ID: 4, Title: "Media only"}, history(4, 7, "")...)

	result, err := newCollector(session, Options{}).Collect(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Chats, 1)
	assert.Contains(t, result.Chats, "Anna")
	assert.NotContains(t, result.Chats, "Bot")
	assert.NotContains(t, result.Chats, "Quiet")
	assert.NotContains(t, result.Chats, "Media only")
	assert.Zero(t, session.requests[1], "bot history must not be fetched")
	assert.Equal(t, []string{"Anna"}, result.Order)
}

func TestCollectStopsAtCutoff(t *testing.T) {
	session := newFakeSession()
	msgs := []models.RawMessage{
		{ID: 4, Date: now.AddDate(0, 0, -1), Text: "recent", SenderID: myID},
		{ID: 3, Date: now.AddDate(0, 0, -10), Text: "older", SenderID: 5},
		{ID: 2, Date: now.AddDate(0, 0, -31), Text: "too old", SenderID: myID},
		{ID: 1, Date: now.AddDate(0, 0, -2), Text: "never reached", SenderID: myID},
	}
	session.add(models.Entity{Kind: models.EntityUser, ID: 2, FirstName: "Anna"}, msgs...)

	result, err := newCollector(session, Options{Days: 30}).Collect(context.Background())
	require.NoError(t, err)

	record := result.Chats["Anna"]
	require.NotNil(t, record)
	assert.Equal(t, 2, record.TotalMessages)
	assert.Equal(t, 1, record.MyMessages)
	assert.Equal(t, "recent", record.Messages[0].Text)
	assert.Equal(t, "older", record.Messages[1].Text)
	assert.Equal(t, 3, session.requests[2], "walk stops at the first message older than the cutoff")
}

func TestCollectRespectsPerChatCap(t *testing.T) {
	session := newFakeSession()
	session.add(models.Entity{Kind: models.EntityChat, ID: 9, Title: "Busy"}, history(50, myID, "msg")...)

	result, err := newCollector(session, Options{MaxMessagesPerChat: 20}).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, result.Chats["Busy"].TotalMessages)
	assert.Len(t, result.MyMessages, 20)
}

func TestCollectRespectsDialogCap(t *testing.T) {
	session := newFakeSession()
	for i := int64(1); i <= 5; i++ {
		session.add(models.Entity{Kind: models.EntityChat, ID: i, Title: strings.Repeat("c", int(i))}, history(1, myID, "x")...)
	}

	result, err := newCollector(session, Options{MaxChats: 3}).Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Chats, 3)
}

func TestCollectContinuesAfterFetchError(t *testing.T) {
	session := newFakeSession()
	session.add(models.Entity{Kind: models.EntityUser, ID: 1, FirstName: "Anna"}, history(2, myID, "a")...)
	session.add(models.Entity{Kind: models.EntityChat, ID: 2, Title: "Broken"}, history(2, myID, "b")...)
	session.add(models.Entity{Kind: models.EntityChat, ID: 3, Title: "Team"}, history(2, myID, "c")...)
	session.failures[2] = errors.New("FLOOD_WAIT")

	result, err := newCollector(session, Options{}).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Anna", "Team"}, result.Order)
	assert.Equal(t, 4, result.Stats.TotalMyMessages)
}

func TestCollectMessageInvariants(t *testing.T) {
	session := newFakeSession()
	long := strings.Repeat("я", 1500)
	msgs := append(history(30, myID, long), history(30, 42, "reply")...)
	session.add(models.Entity{Kind: models.EntityChannel, ID: 8, Title: "Dev", Megagroup: true}, msgs...)

	result, err := newCollector(session, Options{}).Collect(context.Background())
	require.NoError(t, err)

	for _, record := range result.Chats {
		owned := 0
		for _, msg := range record.Messages {
			assert.LessOrEqual(t, len([]rune(msg.Text)), MaxMessageLength)
			assert.GreaterOrEqual(t, msg.Hour, 0)
			assert.LessOrEqual(t, msg.Hour, 23)
			if msg.IsMine {
				owned++
			}
		}
		assert.Equal(t, record.MyMessages, owned)
	}

	for _, msg := range result.MyMessages {
		assert.Equal(t, "Dev", msg.Chat)
		assert.Equal(t, models.CategorySupergroup, msg.Category)
		assert.True(t, msg.IsMine)
	}
}

func TestCollectUsesLocationForHours(t *testing.T) {
	session := newFakeSession()
	session.add(models.Entity{Kind: models.EntityUser, ID: 2, FirstName: "Anna"},
		models.RawMessage{ID: 1, Date: time.Date(2026, 3, 30, 22, 30, 0, 0, time.UTC), Text: "late", SenderID: myID})

	loc := time.FixedZone("UTC+3", 3*60*60)
	result, err := newCollector(session, Options{Location: loc}).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Chats["Anna"].Messages[0].Hour)
	assert.Equal(t, 1, result.Stats.ByHour[1])
}

func TestCollectNameCollisionOverwrites(t *testing.T) {
	session := newFakeSession()
	session.add(models.Entity{Kind: models.EntityUser, ID: 1, FirstName: "Alex"}, history(1, myID, "first")...)
	session.add(models.Entity{Kind: models.EntityUser, ID: 2, FirstName: "Alex"}, history(2, myID, "second")...)

	result, err := newCollector(session, Options{}).Collect(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Chats, 1)
	assert.Equal(t, []string{"Alex"}, result.Order)
	assert.Equal(t, int64(2), result.Chats["Alex"].Chat.ID)
	assert.Len(t, result.MyMessages, 3)
}
