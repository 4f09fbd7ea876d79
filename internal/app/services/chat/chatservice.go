// Package chatservice implements faculty-student chats: get-or-create by
// participant pair, posting, read tracking and listing.
package chatservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	chatstore "github.com/dalemusser/facultrack/internal/app/store/chats"
	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/chathub"
	"github.com/dalemusser/facultrack/internal/app/system/normalize"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCurrentUserNotFound = errors.New("current user not found")
	ErrRolePair            = errors.New("chats are only allowed between faculty and students")
	ErrChatNotFound        = errors.New("chat not found")
	ErrNotParticipant      = errors.New("not a participant in this chat")
	ErrEmptyContent        = errors.New("message content is required")
)

// Notifier receives chat events after they are stored. *chathub.Hub
// satisfies it.
type Notifier interface {
	Publish(userIDs []primitive.ObjectID, ev chathub.Event)
}

// MessageView is a message with its sender resolved.
type MessageView struct {
	ID        primitive.ObjectID `json:"id"`
	Sender    models.UserSummary `json:"sender"`
	Content   string             `json:"content"`
	Timestamp time.Time          `json:"timestamp"`
	Read      bool               `json:"read"`
}

// ChatView is a chat with participants and senders resolved.
type ChatView struct {
	ID                 primitive.ObjectID   `json:"id"`
	Participants       []models.UserSummary `json:"participants"`
	Messages           []MessageView        `json:"messages"`
	LastMessage        time.Time            `json:"last_message"`
	LastMessageContent string               `json:"last_message_content"`
	Unread             int                  `json:"unread"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

type Service struct {
	users  *userstore.Store
	chats  *chatstore.Store
	notify Notifier
	log    *zap.Logger
}

// New builds the service. notify may be nil.
func New(db *mongo.Database, notify Notifier, logger *zap.Logger) *Service {
	return &Service{
		users:  userstore.New(db),
		chats:  chatstore.New(db),
		notify: notify,
		log:    logger,
	}
}

// ValidRolePair reports whether two roles may chat: one faculty, one student.
func ValidRolePair(a, b string) bool {
	return (a == models.RoleFaculty && b == models.RoleStudent) ||
		(a == models.RoleStudent && b == models.RoleFaculty)
}

func (s *Service) loadUser(ctx context.Context, id primitive.ObjectID, missing error) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, missing
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// GetOrCreate returns the chat between the caller and other, creating it
// when it does not exist yet.
func (s *Service) GetOrCreate(ctx context.Context, currentUserID, otherUserID primitive.ObjectID) (*ChatView, error) {
	other, err := s.loadUser(ctx, otherUserID, ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	me, err := s.loadUser(ctx, currentUserID, ErrCurrentUserNotFound)
	if err != nil {
		return nil, err
	}
	if me.ID == other.ID || !ValidRolePair(me.Role, other.Role) {
		return nil, ErrRolePair
	}

	c, created, err := s.chats.GetOrCreate(ctx, me.ID, other.ID)
	if err != nil {
		return nil, fmt.Errorf("get or create chat: %w", err)
	}
	if created {
		s.log.Info("chat created",
			zap.String("chat_id", c.ID.Hex()),
			zap.String("user_a", c.Participants[0].Hex()),
			zap.String("user_b", c.Participants[1].Hex()))
	}

	views, err := s.populate(ctx, me.ID, []models.Chat{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// PostMessage appends content from sender to the chat.
func (s *Service) PostMessage(ctx context.Context, chatID, senderID primitive.ObjectID, content string) (*MessageView, error) {
	content = normalize.Content(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	c, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("load chat: %w", err)
	}
	if !c.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	m := models.Message{
		ID:        primitive.NewObjectID(),
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Read:      false,
	}
	ok, err := s.chats.AppendMessage(ctx, chatID, m)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	if !ok {
		return nil, ErrChatNotFound
	}

	sums, err := s.users.Summaries(ctx, []primitive.ObjectID{senderID})
	if err != nil {
		return nil, fmt.Errorf("load sender: %w", err)
	}
	view := messageView(m, sums)

	s.publish(c.Participants, chathub.Event{Type: chathub.EventMessage, ChatID: chatID.Hex(), Message: view})
	return &view, nil
}

// MarkRead marks every message the reader did not send as read. changed is
// false, and nothing is written, when there was nothing unread.
func (s *Service) MarkRead(ctx context.Context, chatID, readerID primitive.ObjectID) (bool, error) {
	c, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrChatNotFound
		}
		return false, fmt.Errorf("load chat: %w", err)
	}
	if !c.HasParticipant(readerID) {
		return false, ErrNotParticipant
	}
	if c.UnreadFor(readerID) == 0 {
		return false, nil
	}

	changed, err := s.chats.MarkRead(ctx, chatID, readerID)
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}
	if changed {
		s.publish(c.Participants, chathub.Event{Type: chathub.EventRead, ChatID: chatID.Hex(), ReaderID: readerID.Hex()})
	}
	return changed, nil
}

// List returns the user's chats, most recent activity first.
func (s *Service) List(ctx context.Context, userID primitive.ObjectID) ([]ChatView, error) {
	chats, err := s.chats.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return s.populate(ctx, userID, chats)
}

func (s *Service) publish(to []primitive.ObjectID, ev chathub.Event) {
	if s.notify == nil {
		return
	}
	s.notify.Publish(to, ev)
}

// populate resolves every participant and sender with one user query.
func (s *Service) populate(ctx context.Context, viewer primitive.ObjectID, chats []models.Chat) ([]ChatView, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, c := range chats {
		for _, p := range c.Participants {
			add(p)
		}
		for _, m := range c.Messages {
			add(m.SenderID)
		}
	}

	sums, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}

	out := make([]ChatView, 0, len(chats))
	for _, c := range chats {
		v := ChatView{
			ID:                 c.ID,
			Participants:       make([]models.UserSummary, 0, len(c.Participants)),
			Messages:           make([]MessageView, 0, len(c.Messages)),
			LastMessage:        c.LastMessage,
			LastMessageContent: c.LastMessageContent,
			Unread:             c.UnreadFor(viewer),
			CreatedAt:          c.CreatedAt,
			UpdatedAt:          c.UpdatedAt,
		}
		for _, p := range c.Participants {
			v.Participants = append(v.Participants, summary(p, sums))
		}
		for _, m := range c.Messages {
			v.Messages = append(v.Messages, messageView(m, sums))
		}
		out = append(out, v)
	}
	return out, nil
}

// summary falls back to a bare id for users that no longer exist.
func summary(id primitive.ObjectID, sums map[primitive.ObjectID]models.UserSummary) models.UserSummary {
	if u, ok := sums[id]; ok {
		return u
	}
	return models.UserSummary{ID: id}
}

func messageView(m models.Message, sums map[primitive.ObjectID]models.UserSummary) MessageView {
	return MessageView{
		ID:        m.ID,
		Sender:    summary(m.SenderID, sums),
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Read:      m.Read,
	}
}
