// internal/app/features/chat/chat.go
package chat

import (
	"context"
	"errors"
	"net/http"

	chatservice "github.com/dalemusser/facultrack/internal/app/services/chat"
	"github.com/dalemusser/facultrack/internal/app/system/authz"
	"github.com/dalemusser/facultrack/internal/app/system/inputval"
	"github.com/dalemusser/facultrack/internal/app/system/respond"
	"github.com/dalemusser/facultrack/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, what string, err error) {
	switch {
	case errors.Is(err, chatservice.ErrUserNotFound):
		respond.Message(w, http.StatusNotFound, "User not found")
	case errors.Is(err, chatservice.ErrCurrentUserNotFound):
		respond.Message(w, http.StatusNotFound, "Current user not found")
	case errors.Is(err, chatservice.ErrChatNotFound):
		respond.Message(w, http.StatusNotFound, "Chat not found")
	case errors.Is(err, chatservice.ErrRolePair):
		respond.Message(w, http.StatusForbidden, "Chats are only allowed between faculty and students")
	case errors.Is(err, chatservice.ErrNotParticipant):
		respond.Message(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, chatservice.ErrEmptyContent):
		respond.Message(w, http.StatusBadRequest, "Message content is required")
	default:
		h.ErrLog.ServerError(w, r, what, err)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, key, label string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, key))
	if err != nil {
		respond.Message(w, http.StatusBadRequest, "Invalid "+label+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// ServeList handles GET /api/chat: the caller's chats, most recent first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	chats, err := h.Chat.List(ctx, uid)
	if err != nil {
		h.writeError(w, r, "list chats failed", err)
		return
	}
	respond.OK(w, chats)
}

// ServeChat handles GET /api/chat/{userId}: the chat between the caller and
// userId, created on first use.
func (h *Handler) ServeChat(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	other, ok := pathID(w, r, "userId", "user")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Chat.GetOrCreate(ctx, uid, other)
	if err != nil {
		h.writeError(w, r, "open chat failed", err)
		return
	}
	respond.OK(w, c)
}

type messageInput struct {
	Content string `json:"content" validate:"max=5000" label:"Message"`
}

// HandlePostMessage handles POST /api/chat/{chatId}/messages.
func (h *Handler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	chatID, ok := pathID(w, r, "chatId", "chat")
	if !ok {
		return
	}
	var in messageInput
	if !respond.Decode(w, r, &in) {
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		respond.Invalid(w, res.Messages())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	msg, err := h.Chat.PostMessage(ctx, chatID, uid, in.Content)
	if err != nil {
		h.writeError(w, r, "post message failed", err)
		return
	}
	respond.Created(w, msg)
}

// HandleMarkRead handles PUT /api/chat/{chatId}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	_, _, uid, _ := authz.UserCtx(r)

	chatID, ok := pathID(w, r, "chatId", "chat")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Chat.MarkRead(ctx, chatID, uid); err != nil {
		h.writeError(w, r, "mark chat read failed", err)
		return
	}
	respond.OK(w, map[string]string{"message": "Messages marked as read"})
}
