// internal/app/store/chats/chatstore.go
package chatstore

import (
	"context"
	"time"

	"github.com/dalemusser/facultrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("chats")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Chat, error) {
	var c models.Chat
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Chat{}, err
	}
	return c, nil
}

// GetByPair finds the chat between a and b in either order.
func (s *Store) GetByPair(ctx context.Context, a, b primitive.ObjectID) (models.Chat, error) {
	var c models.Chat
	if err := s.c.FindOne(ctx, bson.M{"pair_key": models.PairKey(a, b)}).Decode(&c); err != nil {
		return models.Chat{}, err
	}
	return c, nil
}

// GetOrCreate returns the chat between a and b, creating an empty one when
// none exists. created reports whether this call inserted it. Two racing
// callers both end up with the same chat.
func (s *Store) GetOrCreate(ctx context.Context, a, b primitive.ObjectID) (c models.Chat, created bool, err error) {
	pair := models.SortedPair(a, b)
	key := models.PairKey(a, b)
	now := time.Now().UTC()
	newID := primitive.NewObjectID()

	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"pair_key": key},
		bson.M{"$setOnInsert": bson.M{
			"_id":                  newID,
			"participants":         pair[:],
			"messages":             []models.Message{},
			"last_message":         now,
			"last_message_content": "",
			"created_at":           now,
			"updated_at":           now,
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		if wafflemongo.IsDup(err) {
			c, err = s.GetByPair(ctx, a, b)
			return c, false, err
		}
		return models.Chat{}, false, err
	}
	return c, c.ID == newID, nil
}

// AppendMessage pushes m onto the chat and updates the last-message fields.
// The write only applies when m.SenderID is a participant; false is returned
// otherwise or when the chat does not exist.
func (s *Store) AppendMessage(ctx context.Context, chatID primitive.ObjectID, m models.Message) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": chatID, "participants": m.SenderID},
		bson.M{
			"$push": bson.M{"messages": m},
			"$set": bson.M{
				"last_message":         m.Timestamp,
				"last_message_content": m.Content,
				"updated_at":           m.Timestamp,
			},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// MarkRead sets read=true on every message in the chat not sent by reader.
// Nothing is written when no such message is unread; changed reports
// whether a write happened.
func (s *Store) MarkRead(ctx context.Context, chatID, readerID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":          chatID,
			"participants": readerID,
			"messages": bson.M{"$elemMatch": bson.M{
				"sender_id": bson.M{"$ne": readerID},
				"read":      false,
			}},
		},
		bson.M{"$set": bson.M{
			"messages.$[m].read": true,
			"updated_at":         time.Now().UTC(),
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{
				"m.sender_id": bson.M{"$ne": readerID},
				"m.read":      false,
			}},
		}),
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// ListForUser returns the user's chats, most recent activity first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Chat, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"participants": userID},
		options.Find().SetSort(bson.D{{Key: "last_message", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Chat{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteForUser removes every chat the user takes part in.
// Returns the number of documents deleted.
func (s *Store) DeleteForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"participants": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
