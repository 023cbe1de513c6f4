package store

import (
	"context"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/builder"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// TwoFactorStore persists TOTP secrets and backup codes.
type TwoFactorStore struct {
	db *builder.DB
}

// Create inserts a two-factor record.
func (s *TwoFactorStore) Create(ctx context.Context, record models.TwoFactor) (*models.TwoFactor, error) {
	if record.ID == "" {
		record.ID = newID()
	}

	rows, err := builder.Insert[models.TwoFactor](s.db).
		Values(record).
		ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// ByID fetches a two-factor record by primary key.
func (s *TwoFactorStore) ByID(ctx context.Context, id string) (*models.TwoFactor, error) {
	return builder.Select[models.TwoFactor](s.db).
		Where(builder.Eq("id", id)).
		First(ctx)
}

// ByUser fetches the two-factor record of a user.
func (s *TwoFactorStore) ByUser(ctx context.Context, userID string) (*models.TwoFactor, error) {
	return builder.Select[models.TwoFactor](s.db).
		Where(builder.Eq("user_id", userID)).
		First(ctx)
}

// SetSecret replaces the secret and backup codes of a user's record.
func (s *TwoFactorStore) SetSecret(ctx context.Context, userID, secret, backupCodes string) (*models.TwoFactor, error) {
	rows, err := builder.Update[models.TwoFactor](s.db).
		Set("secret", secret).
		Set("backup_codes", backupCodes).
		Where(builder.Eq("user_id", userID)).
		ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, runtime.ErrNotFound
	}
	return &rows[0], nil
}

// Delete removes a two-factor record by primary key.
func (s *TwoFactorStore) Delete(ctx context.Context, id string) error {
	affected, err := builder.Delete[models.TwoFactor](s.db).
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

// DeleteByUser removes a user's two-factor records, used when two-factor is
// disabled on the profile.
func (s *TwoFactorStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return builder.Delete[models.TwoFactor](s.db).
		Where(builder.Eq("user_id", userID)).
		Exec(ctx)
}
