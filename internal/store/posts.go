package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/builder"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// PostStore persists posts.
type PostStore struct {
	db *builder.DB
}

// Create inserts a post. The updated_at column has no database default, so
// a zero value is filled in here.
func (s *PostStore) Create(ctx context.Context, post models.Post) (*models.Post, error) {
	if post.ID == "" {
		post.ID = newID()
	}
	if post.UpdatedAt.IsZero() {
		post.UpdatedAt = time.Now().UTC()
	}
	if err := models.ValidatePost(&post); err != nil {
		return nil, err
	}

	rows, err := builder.Insert[models.Post](s.db).
		Values(post).
		ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// ByID fetches a post by primary key.
func (s *PostStore) ByID(ctx context.Context, id string) (*models.Post, error) {
	return builder.Select[models.Post](s.db).
		Where(builder.Eq("id", id)).
		First(ctx)
}

// ByIDWithMedia fetches a post with its media preloaded.
func (s *PostStore) ByIDWithMedia(ctx context.Context, id string) (*models.Post, error) {
	return builder.Select[models.Post](s.db).
		Where(builder.Eq("id", id)).
		Preload("Media").
		First(ctx)
}

// FeedByUser pages through a user's posts, newest first. The query walks
// the posts_userId_idx and posts_createdAt_idx indexes.
func (s *PostStore) FeedByUser(ctx context.Context, userID string, limit, offset int) ([]models.Post, error) {
	q := builder.Select[models.Post](s.db).
		Where(builder.Eq("user_id", userID)).
		OrderByDesc("created_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q.All(ctx)
}

// Update applies a partial update and returns the updated row.
func (s *PostStore) Update(ctx context.Context, id string, update models.UpdatePost) (*models.Post, error) {
	changes := update.Changes()
	if len(changes) == 0 {
		return s.ByID(ctx, id)
	}
	changes["updated_at"] = time.Now().UTC()

	rows, err := builder.Update[models.Post](s.db).
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

// Delete removes a post. Its media rows cascade in the database.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	affected, err := builder.Delete[models.Post](s.db).
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

// AddLikes atomically adjusts likes_count, clamped at zero.
func (s *PostStore) AddLikes(ctx context.Context, id string, delta int) error {
	return s.addCounter(ctx, id, "likes_count", delta)
}

// AddSaves atomically adjusts saves_count, clamped at zero.
func (s *PostStore) AddSaves(ctx context.Context, id string, delta int) error {
	return s.addCounter(ctx, id, "saves_count", delta)
}

// AddComments atomically adjusts comments_count, clamped at zero.
func (s *PostStore) AddComments(ctx context.Context, id string, delta int) error {
	return s.addCounter(ctx, id, "comments_count", delta)
}

func (s *PostStore) addCounter(ctx context.Context, id, column string, delta int) error {
	affected, err := builder.Update[models.Post](s.db).
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
