package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/builder"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// UserStore persists users.
type UserStore struct {
	db *builder.DB
}

// Create inserts a user and returns the stored row with all defaults
// applied. Duplicate email or username surfaces as ErrDuplicateKey.
func (s *UserStore) Create(ctx context.Context, user models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = newID()
	}
	if err := models.ValidateUser(&user); err != nil {
		return nil, err
	}

	rows, err := builder.Insert[models.User](s.db).
		Values(user).
		ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// ByID fetches a user by primary key.
func (s *UserStore) ByID(ctx context.Context, id string) (*models.User, error) {
	return builder.Select[models.User](s.db).
		Where(builder.Eq("id", id)).
		First(ctx)
}

// ByEmail fetches a user by unique email.
func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return builder.Select[models.User](s.db).
		Where(builder.Eq("email", email)).
		First(ctx)
}

// ByUsername fetches a user by unique username.
func (s *UserStore) ByUsername(ctx context.Context, username string) (*models.User, error) {
	return builder.Select[models.User](s.db).
		Where(builder.Eq("username", username)).
		First(ctx)
}

// Update applies a partial update and returns the updated row. Fields not
// present in the update keep their stored values.
func (s *UserStore) Update(ctx context.Context, id string, update models.UpdateUser) (*models.User, error) {
	changes := update.Changes()
	if len(changes) == 0 {
		return s.ByID(ctx, id)
	}
	changes["updated_at"] = time.Now().UTC()

	rows, err := builder.Update[models.User](s.db).
		SetMap(changes).
		Where(builder.Eq("id", id)).
		ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, runtime.ErrNotFound
	}
	return &rows[0], nil
}

// Delete removes a user. Sessions, accounts, two-factor records, API keys
// and posts cascade in the database.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	affected, err := builder.Delete[models.User](s.db).
		Where(builder.Eq("id", id)).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected == 0 {
		return runtime.ErrNotFound
	}
	return nil
}

// AddFollowers atomically adjusts followers_count, clamped at zero.
func (s *UserStore) AddFollowers(ctx context.Context, id string, delta int) error {
	return s.addCounter(ctx, id, "followers_count", delta)
}

// AddFollowing atomically adjusts following_count, clamped at zero.
func (s *UserStore) AddFollowing(ctx context.Context, id string, delta int) error {
	return s.addCounter(ctx, id, "following_count", delta)
}

// AddSaves atomically adjusts saves_count, clamped at zero.
func (s *UserStore) AddSaves(ctx context.Context, id string, delta int) error {
	return s.addCounter(ctx, id, "saves_count", delta)
}

// AddPosts atomically adjusts posts_count, clamped at zero.
func (s *UserStore) AddPosts(ctx context.Context, id string, delta int) error {
	return s.addCounter(ctx, id, "posts_count", delta)
}

// SavePost appends a post to the user's saved list. Saving an already saved
// post leaves the list unchanged.
func (s *UserStore) SavePost(ctx context.Context, id, postID string) error {
	affected, err := s.db.Runtime().Exec(ctx,
		`UPDATE "user" SET saved_post_ids = array_append(array_remove(saved_post_ids, $1), $1), updated_at = now() WHERE id = $2`,
		postID, id)
	if err != nil {
		return runtime.MapError(err)
	}
	if affected == 0 {
		return runtime.ErrNotFound
	}
	return nil
}

// UnsavePost removes a post from the user's saved list.
func (s *UserStore) UnsavePost(ctx context.Context, id, postID string) error {
	affected, err := s.db.Runtime().Exec(ctx,
		`UPDATE "user" SET saved_post_ids = array_remove(saved_post_ids, $1), updated_at = now() WHERE id = $2`,
		postID, id)
	if err != nil {
		return runtime.MapError(err)
	}
	if affected == 0 {
		return runtime.ErrNotFound
	}
	return nil
}

func (s *UserStore) addCounter(ctx context.Context, id, column string, delta int) error {
	affected, err := builder.Update[models.User](s.db).
		SetExpr(column, fmt.Sprintf("GREATEST(%s + (%d), 0)", column, delta)).
		Where(builder.Eq("id", id)).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected == 0 {
		return runtime.ErrNotFound
	}
	return nil
}
