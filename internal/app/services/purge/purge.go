// Package purge removes users together with everything that references
// them: section membership, chats, concerns and the user document itself.
package purge

import (
	"context"
	"errors"
	"fmt"

	chatstore "github.com/dalemusser/facultrack/internal/app/store/chats"
	concernstore "github.com/dalemusser/facultrack/internal/app/store/concerns"
	programstore "github.com/dalemusser/facultrack/internal/app/store/programs"
	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrUserNotFound is returned by User when the id does not exist.
var ErrUserNotFound = errors.New("user not found")

// Result counts what a purge removed.
type Result struct {
	Users    int64 `json:"users"`
	Programs int64 `json:"programs_updated"`
	Chats    int64 `json:"chats"`
	Concerns int64 `json:"concerns"`
}

func (r *Result) add(o Result) {
	r.Users += o.Users
	r.Programs += o.Programs
	r.Chats += o.Chats
	r.Concerns += o.Concerns
}

type Service struct {
	db       *mongo.Database
	users    *userstore.Store
	programs *programstore.Store
	chats    *chatstore.Store
	concerns *concernstore.Store
	log      *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		users:    userstore.New(db),
		programs: programstore.New(db),
		chats:    chatstore.New(db),
		concerns: concernstore.New(db),
		log:      logger,
	}
}

// User deletes one user and its references in a single transaction.
func (s *Service) User(ctx context.Context, id primitive.ObjectID) (Result, error) {
	var res Result
	err := txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		res = Result{}
		n, err := s.programs.RemoveMember(ctx, id)
		if err != nil {
			return fmt.Errorf("remove from sections: %w", err)
		}
		res.Programs = n

		if res.Chats, err = s.chats.DeleteForUser(ctx, id); err != nil {
			return fmt.Errorf("delete chats: %w", err)
		}
		if res.Concerns, err = s.concerns.DeleteByStudent(ctx, id); err != nil {
			return fmt.Errorf("delete concerns: %w", err)
		}
		if res.Users, err = s.users.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if res.Users == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// CleanupInvalidUsers purges every user missing a name or email, or with an
// unknown role. A failure on one user is logged and the rest continue.
func (s *Service) CleanupInvalidUsers(ctx context.Context) (Result, error) {
	ids, err := s.users.InvalidIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("find invalid users: %w", err)
	}

	var total Result
	for _, id := range ids {
		res, err := s.User(ctx, id)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				continue
			}
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			s.log.Warn("purge invalid user failed", zap.String("user_id", id.Hex()), zap.Error(err))
			continue
		}
		total.add(res)
	}
	if total.Users > 0 {
		s.log.Info("purged invalid users",
			zap.Int64("users", total.Users),
			zap.Int64("programs_updated", total.Programs),
			zap.Int64("chats", total.Chats),
			zap.Int64("concerns", total.Concerns))
	}
	return total, nil
}
