package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telegram-work-analyzer/internal/models"
)

const sampleExport = `{
  "personal_information": {"user_id": 100, "first_name": "Anna", "username": "anna"},
  "chats": {"list": [
    {"name": "Team", "type": "private_supergroup", "id": 7, "messages": [
      {"id": 1, "type": "message", "date_unixtime": "1700000000", "from_id": "user100", "text": "old"},
      {"id": 2, "type": "service", "date_unixtime": "1700000500", "from_id": "user100", "text": ""},
      {"id": 3, "type": "message", "date_unixtime": "1700001000", "from_id": "user200",
       "text": ["see ", {"type": "link", "text": "https://x.io"}, "!"]}
    ]},
    {"name": "Bob Stone Jr", "type": "personal_chat", "id": 200, "messages": [
      {"id": 10, "type": "message", "date_unixtime": "1700009000", "from_id": "user100", "text": "hi"}
    ]},
    {"name": "Helper", "type": "bot_chat", "id": 300, "messages": []},
    {"name": "News", "type": "public_channel", "id": 400, "messages": [
      {"id": 5, "type": "message", "date": "2023-11-14T22:20:00", "from_id": "channel400", "text": "post"}
    ]},
    {"type": "saved_messages", "id": 1, "messages": []}
  ]}
}`

func openSample(t *testing.T) *Session {
	t.Helper()
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleExport), 0o600))

	session, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	return session
}

func TestSelf(t *testing.T) {
	me, err := openSample(t).Self(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Identity{ID: 100, FirstName: "Anna", Username: "anna"}, me)
}

func TestDialogsOrderedByLatestMessage(t *testing.T) {
	dialogs, err := openSample(t).Dialogs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, dialogs, 5)

	assert.Equal(t, models.Entity{Kind: models.EntityUser, ID: 200, FirstName: "Bob", LastName: "Stone Jr"}, dialogs[0])
	assert.Equal(t, models.Entity{Kind: models.EntityChannel, ID: 7, Title: "Team", Megagroup: true}, dialogs[1])
	assert.Equal(t, models.Entity{Kind: models.EntityChannel, ID: 400, Title: "News"}, dialogs[2])
	assert.True(t, dialogs[3].Bot)
	assert.Equal(t, models.Entity{Kind: models.EntityUser, ID: 100, FirstName: "Anna"}, dialogs[4])
}

func TestDialogsLimit(t *testing.T) {
	dialogs, err := openSample(t).Dialogs(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, dialogs, 2)
}

func TestMessagesNewestFirst(t *testing.T) {
	session := openSample(t)

	var got []models.RawMessage
	err := session.Messages(context.Background(), models.Entity{ID: 7}, 10, func(msg models.RawMessage) bool {
		got = append(got, msg)
		return true
	})
	require.NoError(t, err)

	require.Len(t, got, 2, "service messages are skipped")
	assert.Equal(t, 3, got[0].ID)
	assert.Equal(t, "see https://x.io!", got[0].Text)
	assert.Equal(t, int64(200), got[0].SenderID)
	assert.Equal(t, int64(1700001000), got[0].Date.Unix())
	assert.Equal(t, "old", got[1].Text)
	assert.Equal(t, int64(100), got[1].SenderID)
}

func TestMessagesStopsEarly(t *testing.T) {
	session := openSample(t)

	calls := 0
	err := session.Messages(context.Background(), models.Entity{ID: 7}, 10, func(models.RawMessage) bool {
		calls++
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	calls = 0
	err = session.Messages(context.Background(), models.Entity{ID: 7}, 1, func(models.RawMessage) bool {
		calls++
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestMessagesUnknownDialog(t *testing.T) {
	err := openSample(t).Messages(context.Background(), models.Entity{ID: 999}, 10, func(models.RawMessage) bool { return true })
	assert.Error(t, err)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.json"), zerolog.Nop())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = Open(path, zerolog.Nop())
	assert.Error(t, err)
}

func TestParseSender(t *testing.T) {
	assert.Equal(t, int64(42), parseSender("user42"))
	assert.Equal(t, int64(0), parseSender("channel42"))
	assert.Equal(t, int64(0), parseSender(""))
	assert.Equal(t, int64(0), parseSender("userX"))
}

func TestOpenRequiresAccountInformation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	data := `{"chats": {"list": [{"name": "News", "type": "public_channel", "id": 5, "messages": [
  {"id": 1, "type": "message", "date_unixtime": "1700000000", "from_id": "channel5", "text": "post"}
]}]}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	session, err := Open(path, zerolog.Nop())

	var cfgErr *models.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "TELEGRAM_EXPORT_FILE", cfgErr.Field)
	assert.Contains(t, cfgErr.Reason, "Account information")
	assert.Nil(t, session)
}

func TestChannelPostsAreNotOwned(t *testing.T) {
	session := openSample(t)
	self, err := session.Self(context.Background())
	require.NoError(t, err)

	var senders []int64
	err = session.Messages(context.Background(), models.Entity{Kind: models.EntityChannel, ID: 400}, 10, func(m models.RawMessage) bool {
		senders = append(senders, m.SenderID)
		return true
	})
	require.NoError(t, err)

	require.Len(t, senders, 1)
	assert.NotEqual(t, self.ID, senders[0])
}
