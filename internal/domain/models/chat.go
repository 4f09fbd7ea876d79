// internal/domain/models/chat.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is a two-party (faculty + student) message thread with read tracking.
//
// NOTE:
//   - Participants are stored sorted; PairKey is derived from them and is
//     unique, so one pair of users has at most one chat.
//   - Messages are append-only and Read only ever flips from false to true.
type Chat struct {
	ID                 primitive.ObjectID   `bson:"_id" json:"id"`
	Participants       []primitive.ObjectID `bson:"participants" json:"participants"`
	PairKey            string               `bson:"pair_key" json:"-"`
	Messages           []Message            `bson:"messages" json:"messages"`
	LastMessage        time.Time            `bson:"last_message" json:"last_message"`
	LastMessageContent string               `bson:"last_message_content" json:"last_message_content"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Message is one entry of a chat.
type Message struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	SenderID  primitive.ObjectID `bson:"sender_id" json:"sender_id"`
	Content   string             `bson:"content" json:"content"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Read      bool               `bson:"read" json:"read"`
}

// HasParticipant reports whether id takes part in the chat.
func (c Chat) HasParticipant(id primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

// Other returns the participant that is not id.
func (c Chat) Other(id primitive.ObjectID) primitive.ObjectID {
	for _, p := range c.Participants {
		if p != id {
			return p
		}
	}
	return primitive.NilObjectID
}

// UnreadFor counts messages that reader has not yet read, i.e. unread
// messages sent by someone else.
func (c Chat) UnreadFor(reader primitive.ObjectID) int {
	n := 0
	for _, m := range c.Messages {
		if m.SenderID != reader && !m.Read {
			n++
		}
	}
	return n
}

// SortedPair orders two ids so the same pair always yields the same key.
func SortedPair(a, b primitive.ObjectID) [2]primitive.ObjectID {
	if a.Hex() > b.Hex() {
		a, b = b, a
	}
	return [2]primitive.ObjectID{a, b}
}

// PairKey is the unique key for the unordered pair {a, b}.
func PairKey(a, b primitive.ObjectID) string {
	p := SortedPair(a, b)
	return p[0].Hex() + ":" + p[1].Hex()
}
