package store

import (
	"context"
	"time"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/builder"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// SessionStore persists login sessions.
type SessionStore struct {
	db *builder.DB
}

// Create inserts a session. The updated_at column has no database default,
// so a zero value is filled in here.
func (s *SessionStore) Create(ctx context.Context, session models.Session) (*models.Session, error) {
	if session.ID == "" {
		session.ID = newID()
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now().UTC()
	}

	rows, err := builder.Insert[models.Session](s.db).
		Values(session).
		ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// ByID fetches a session by primary key.
func (s *SessionStore) ByID(ctx context.Context, id string) (*models.Session, error) {
	return builder.Select[models.Session](s.db).
		Where(builder.Eq("id", id)).
		First(ctx)
}

// ByToken fetches a session by its unique token.
func (s *SessionStore) ByToken(ctx context.Context, token string) (*models.Session, error) {
	return builder.Select[models.Session](s.db).
		Where(builder.Eq("token", token)).
		First(ctx)
}

// ByUser lists a user's sessions, newest first.
func (s *SessionStore) ByUser(ctx context.Context, userID string) ([]models.Session, error) {
	return builder.Select[models.Session](s.db).
		Where(builder.Eq("user_id", userID)).
		OrderByDesc("created_at").
		All(ctx)
}

// Update applies a partial update and returns the updated row.
func (s *SessionStore) Update(ctx context.Context, id string, update models.UpdateSession) (*models.Session, error) {
	changes := update.Changes()
	if len(changes) == 0 {
		return s.ByID(ctx, id)
	}
	changes["updated_at"] = time.Now().UTC()

	rows, err := builder.Update[models.Session](s.db).
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

// Delete removes a session by primary key.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	affected, err := builder.Delete[models.Session](s.db).
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

// DeleteByToken removes a session by its token.
func (s *SessionStore) DeleteByToken(ctx context.Context, token string) error {
	affected, err := builder.Delete[models.Session](s.db).
		Where(builder.Eq("token", token)).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected == 0 {
		return runtime.ErrNotFound
	}
	return nil
}

// DeleteByUser removes all sessions of a user and returns how many were
// deleted.
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return builder.Delete[models.Session](s.db).
		Where(builder.Eq("user_id", userID)).
		Exec(ctx)
}

// DeleteExpired removes sessions whose expiry is in the past.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	return builder.Delete[models.Session](s.db).
		Where(builder.Lt("expires_at", time.Now().UTC())).
		Exec(ctx)
}
