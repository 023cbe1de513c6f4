package store

import (
	"context"
	"time"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/builder"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// VerificationStore persists pending verification tokens.
type VerificationStore struct {
	db *builder.DB
}

// Create inserts a verification token.
func (s *VerificationStore) Create(ctx context.Context, verification models.Verification) (*models.Verification, error) {
	if verification.ID == "" {
		verification.ID = newID()
	}

	rows, err := builder.Insert[models.Verification](s.db).
		Values(verification).
		ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// ByID fetches a verification by primary key.
func (s *VerificationStore) ByID(ctx context.Context, id string) (*models.Verification, error) {
	return builder.Select[models.Verification](s.db).
		Where(builder.Eq("id", id)).
		First(ctx)
}

// ByIdentifier fetches the most recent live token for an identifier.
func (s *VerificationStore) ByIdentifier(ctx context.Context, identifier string) (*models.Verification, error) {
	return builder.Select[models.Verification](s.db).
		Where(builder.Eq("identifier", identifier)).
		And(builder.Gt("expires_at", time.Now().UTC())).
		OrderByDesc("created_at").
		Limit(1).
		First(ctx)
}

// Delete removes a verification by primary key.
func (s *VerificationStore) Delete(ctx context.Context, id string) error {
	affected, err := builder.Delete[models.Verification](s.db).
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

// DeleteByIdentifier removes every token for an identifier, used when a
// token is consumed or superseded.
func (s *VerificationStore) DeleteByIdentifier(ctx context.Context, identifier string) (int64, error) {
	return builder.Delete[models.Verification](s.db).
		Where(builder.Eq("identifier", identifier)).
		Exec(ctx)
}

// DeleteExpired removes tokens whose expiry is in the past.
func (s *VerificationStore) DeleteExpired(ctx context.Context) (int64, error) {
	return builder.Delete[models.Verification](s.db).
		Where(builder.Lt("expires_at", time.Now().UTC())).
		Exec(ctx)
}
