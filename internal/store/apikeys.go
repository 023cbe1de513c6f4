package store

import (
	"context"
	"time"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/builder"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// ApiKeyStore persists API keys and their request accounting.
type ApiKeyStore struct {
	db *builder.DB
}

// Create inserts an API key. Neither timestamp column has a database
// default, so zero values are filled in here.
func (s *ApiKeyStore) Create(ctx context.Context, key models.ApiKey) (*models.ApiKey, error) {
	if key.ID == "" {
		key.ID = newID()
	}
	now := time.Now().UTC()
	if key.CreatedAt.IsZero() {
		key.CreatedAt = now
	}
	if key.UpdatedAt.IsZero() {
		key.UpdatedAt = now
	}

	rows, err := builder.Insert[models.ApiKey](s.db).
		Values(key).
		ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// ByID fetches an API key by primary key.
func (s *ApiKeyStore) ByID(ctx context.Context, id string) (*models.ApiKey, error) {
	return builder.Select[models.ApiKey](s.db).
		Where(builder.Eq("id", id)).
		First(ctx)
}

// ByKey fetches an API key by its key material.
func (s *ApiKeyStore) ByKey(ctx context.Context, key string) (*models.ApiKey, error) {
	return builder.Select[models.ApiKey](s.db).
		Where(builder.Eq("key", key)).
		First(ctx)
}

// ByUser lists a user's API keys, newest first.
func (s *ApiKeyStore) ByUser(ctx context.Context, userID string) ([]models.ApiKey, error) {
	return builder.Select[models.ApiKey](s.db).
		Where(builder.Eq("user_id", userID)).
		OrderByDesc("created_at").
		All(ctx)
}

// Update applies a partial update and returns the updated row.
func (s *ApiKeyStore) Update(ctx context.Context, id string, update models.UpdateApiKey) (*models.ApiKey, error) {
	changes := update.Changes()
	if len(changes) == 0 {
		return s.ByID(ctx, id)
	}
	changes["updated_at"] = time.Now().UTC()

	rows, err := builder.Update[models.ApiKey](s.db).
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

// RecordRequest accounts for one request against a key in a single
// statement: request_count goes up, remaining goes down without crossing
// zero, and last_request is stamped.
func (s *ApiKeyStore) RecordRequest(ctx context.Context, id string) (*models.ApiKey, error) {
	rows, err := builder.Update[models.ApiKey](s.db).
		SetExpr("request_count", "COALESCE(request_count, 0) + 1").
		SetExpr("remaining", "CASE WHEN remaining IS NULL THEN NULL ELSE GREATEST(remaining - 1, 0) END").
		SetExpr("last_request", "now()").
		SetExpr("updated_at", "now()").
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

// StartWindow begins a fresh accounting window: request_count restarts at
// one and last_request is stamped.
func (s *ApiKeyStore) StartWindow(ctx context.Context, id string) (*models.ApiKey, error) {
	rows, err := builder.Update[models.ApiKey](s.db).
		Set("request_count", 1).
		SetExpr("remaining", "CASE WHEN remaining IS NULL THEN NULL ELSE GREATEST(remaining - 1, 0) END").
		SetExpr("last_request", "now()").
		SetExpr("updated_at", "now()").
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

// Refill restores the remaining budget of a key and stamps last_refill_at.
func (s *ApiKeyStore) Refill(ctx context.Context, id string, remaining int) (*models.ApiKey, error) {
	rows, err := builder.Update[models.ApiKey](s.db).
		Set("remaining", remaining).
		SetExpr("last_refill_at", "now()").
		SetExpr("updated_at", "now()").
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

// Delete removes an API key by primary key.
func (s *ApiKeyStore) Delete(ctx context.Context, id string) error {
	affected, err := builder.Delete[models.ApiKey](s.db).
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
