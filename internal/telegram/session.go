package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
	"github.com/telegram-work-analyzer/internal/models"
)

// HistoryPageSize is the largest page messages.getHistory returns
const HistoryPageSize = 100

// maxDialogsPerRequest is the server-side cap of messages.getDialogs
const maxDialogsPerRequest = 100

// rawAPI is the subset of the MTProto API used for reading
type rawAPI interface {
	MessagesGetDialogs(ctx context.Context, request *tg.MessagesGetDialogsRequest) (tg.MessagesDialogsClass, error)
	MessagesGetHistory(ctx context.Context, request *tg.MessagesGetHistoryRequest) (tg.MessagesMessagesClass, error)
}

type peerKey struct {
	kind models.EntityKind
	id   int64
}

// apiSession implements collector.Session over a connected client
type apiSession struct {
	api    rawAPI
	self   *tg.User
	peers  map[peerKey]tg.InputPeerClass
	logger zerolog.Logger
}

func newAPISession(api rawAPI, self *tg.User, logger zerolog.Logger) *apiSession {
	return &apiSession{
		api:    api,
		self:   self,
		peers:  make(map[peerKey]tg.InputPeerClass),
		logger: logger,
	}
}

// Self returns the authorized user
func (s *apiSession) Self(ctx context.Context) (models.Identity, error) {
	return models.Identity{ID: s.self.ID, FirstName: s.self.FirstName, Username: s.self.Username}, nil
}

// Dialogs lists the most recent dialogs in one request, so at most 100
func (s *apiSession) Dialogs(ctx context.Context, limit int) ([]models.Entity, error) {
	if limit <= 0 || limit > maxDialogsPerRequest {
		limit = maxDialogsPerRequest
	}

	resp, err := s.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get dialogs: %w", err)
	}

	var (
		dialogs []tg.DialogClass
		users   []tg.UserClass
		chats   []tg.ChatClass
	)
	switch r := resp.(type) {
	case *tg.MessagesDialogs:
		dialogs, users, chats = r.Dialogs, r.Users, r.Chats
	case *tg.MessagesDialogsSlice:
		dialogs, users, chats = r.Dialogs, r.Users, r.Chats
	default:
		return nil, fmt.Errorf("unexpected dialogs response %T", resp)
	}

	entities, peers := mapDialogs(dialogs, users, chats)
	for key, peer := range peers {
		s.peers[key] = peer
	}

	s.logger.Debug().Int("dialogs", len(entities)).Msg("Dialogs fetched")
	return entities, nil
}

// Messages pages through history newest first until fn stops, limit is reached or history ends
func (s *apiSession) Messages(ctx context.Context, entity models.Entity, limit int, fn func(models.RawMessage) bool) error {
	peer, ok := s.peers[peerKey{kind: entity.Kind, id: entity.ID}]
	if !ok {
		return fmt.Errorf("no access to dialog %d", entity.ID)
	}

	offsetID := 0
	seen := 0
	for limit <= 0 || seen < limit {
		pageSize := HistoryPageSize
		if limit > 0 && limit-seen < pageSize {
			pageSize = limit - seen
		}

		resp, err := s.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     peer,
			OffsetID: offsetID,
			Limit:    pageSize,
		})
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}

		page, err := historyMessages(resp)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}

		for _, class := range page {
			offsetID = class.GetID()
			seen++

			if raw, ok := convertMessage(class, s.self.ID); ok && !fn(raw) {
				return nil
			}
			if limit > 0 && seen >= limit {
				return nil
			}
		}

		if len(page) < pageSize {
			return nil
		}
	}
	return nil
}

// convertMessage maps regular and service messages; service messages carry no text
func convertMessage(class tg.MessageClass, selfID int64) (models.RawMessage, bool) {
	switch msg := class.(type) {
	case *tg.Message:
		return rawMessage(msg, selfID), true
	case *tg.MessageService:
		return models.RawMessage{ID: msg.ID, Date: time.Unix(int64(msg.Date), 0).UTC()}, true
	default:
		return models.RawMessage{}, false
	}
}

// historyMessages unwraps the variants of a history response
func historyMessages(resp tg.MessagesMessagesClass) ([]tg.MessageClass, error) {
	switch r := resp.(type) {
	case *tg.MessagesMessages:
		return r.Messages, nil
	case *tg.MessagesMessagesSlice:
		return r.Messages, nil
	case *tg.MessagesChannelMessages:
		return r.Messages, nil
	case *tg.MessagesMessagesNotModified:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected history response %T", resp)
	}
}

// mapDialogs resolves dialog peers against the returned users and chats, keeping dialog order
func mapDialogs(dialogs []tg.DialogClass, users []tg.UserClass, chats []tg.ChatClass) ([]models.Entity, map[peerKey]tg.InputPeerClass) {
	userByID := make(map[int64]*tg.User, len(users))
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			userByID[user.ID] = user
		}
	}
	chatByID := make(map[int64]tg.ChatClass, len(chats))
	for _, c := range chats {
		chatByID[c.GetID()] = c
	}

	entities := make([]models.Entity, 0, len(dialogs))
	peers := make(map[peerKey]tg.InputPeerClass, len(dialogs))

	for _, d := range dialogs {
		dialog, ok := d.(*tg.Dialog)
		if !ok {
			continue
		}

		var (
			entity models.Entity
			input  tg.InputPeerClass
		)
		switch p := dialog.Peer.(type) {
		case *tg.PeerUser:
			user, ok := userByID[p.UserID]
			if !ok {
				continue
			}
			entity = models.Entity{
				Kind:      models.EntityUser,
				ID:        user.ID,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				Bot:       user.Bot,
			}
			input = &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}
		case *tg.PeerChat:
			entity = models.Entity{Kind: models.EntityChat, ID: p.ChatID}
			if chat, ok := chatByID[p.ChatID].(*tg.Chat); ok {
				entity.Title = chat.Title
			}
			input = &tg.InputPeerChat{ChatID: p.ChatID}
		case *tg.PeerChannel:
			entity = models.Entity{Kind: models.EntityChannel, ID: p.ChannelID}
			switch channel := chatByID[p.ChannelID].(type) {
			case *tg.Channel:
				entity.Title = channel.Title
				entity.Megagroup = channel.Megagroup
				input = &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}
			case *tg.ChannelForbidden:
				entity.Title = channel.Title
				entity.Megagroup = channel.Megagroup
				input = &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}
			default:
				continue
			}
		default:
			continue
		}

		entities = append(entities, entity)
		peers[peerKey{kind: entity.Kind, id: entity.ID}] = input
	}

	return entities, peers
}

// rawMessage converts a message and resolves who sent it
func rawMessage(msg *tg.Message, selfID int64) models.RawMessage {
	raw := models.RawMessage{
		ID:   msg.ID,
		Date: time.Unix(int64(msg.Date), 0).UTC(),
		Text: msg.Message,
	}

	if from, ok := msg.GetFromID(); ok {
		if user, ok := from.(*tg.PeerUser); ok {
			raw.SenderID = user.UserID
		}
		return raw
	}

	switch {
	case msg.Out:
		raw.SenderID = selfID
	default:
		// In a private chat the peer is the other side
		if user, ok := msg.PeerID.(*tg.PeerUser); ok {
			raw.SenderID = user.UserID
		}
	}
	return raw
}
