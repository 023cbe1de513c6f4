package store

import (
	"context"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/builder"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// PostMediaStore persists media items attached to posts.
type PostMediaStore struct {
	db *builder.DB
}

// Create inserts a media item after checking the video metadata rule.
func (s *PostMediaStore) Create(ctx context.Context, media models.PostMedia) (*models.PostMedia, error) {
	if media.ID == "" {
		media.ID = newID()
	}
	if err := models.ValidatePostMedia(&media); err != nil {
		return nil, err
	}

	rows, err := builder.Insert[models.PostMedia](s.db).
		Values(media).
		ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// ByID fetches a media item by primary key.
func (s *PostMediaStore) ByID(ctx context.Context, id string) (*models.PostMedia, error) {
	return builder.Select[models.PostMedia](s.db).
		Where(builder.Eq("id", id)).
		First(ctx)
}

// ByPost lists a post's media in creation order.
func (s *PostMediaStore) ByPost(ctx context.Context, postID string) ([]models.PostMedia, error) {
	return builder.Select[models.PostMedia](s.db).
		Where(builder.Eq("post_id", postID)).
		OrderByAsc("created_at").
		All(ctx)
}

// Update applies a partial update and returns the updated row.
func (s *PostMediaStore) Update(ctx context.Context, id string, update models.UpdatePostMedia) (*models.PostMedia, error) {
	changes := update.Changes()
	if len(changes) == 0 {
		return s.ByID(ctx, id)
	}

	rows, err := builder.Update[models.PostMedia](s.db).
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

// SetAvailability flips the media_availability flag, used when a media file
// is taken down or restored in storage.
func (s *PostMediaStore) SetAvailability(ctx context.Context, id string, available bool) (*models.PostMedia, error) {
	return s.Update(ctx, id, models.UpdatePostMedia{MediaAvailability: &available})
}

// Delete removes a media item by primary key.
func (s *PostMediaStore) Delete(ctx context.Context, id string) error {
	affected, err := builder.Delete[models.PostMedia](s.db).
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
