package store

import (
	"context"
	"time"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/builder"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// AccountStore persists provider accounts.
type AccountStore struct {
	db *builder.DB
}

// Create inserts an account. The updated_at column has no database default,
// so a zero value is filled in here.
func (s *AccountStore) Create(ctx context.Context, account models.Account) (*models.Account, error) {
	if account.ID == "" {
		account.ID = newID()
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = time.Now().UTC()
	}

	rows, err := builder.Insert[models.Account](s.db).
		Values(account).
		ExecReturning(ctx)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

// ByID fetches an account by primary key.
func (s *AccountStore) ByID(ctx context.Context, id string) (*models.Account, error) {
	return builder.Select[models.Account](s.db).
		Where(builder.Eq("id", id)).
		First(ctx)
}

// ByUser lists a user's accounts.
func (s *AccountStore) ByUser(ctx context.Context, userID string) ([]models.Account, error) {
	return builder.Select[models.Account](s.db).
		Where(builder.Eq("user_id", userID)).
		OrderByAsc("provider_id").
		All(ctx)
}

// ByProvider fetches the account a provider knows under the given external
// account id.
func (s *AccountStore) ByProvider(ctx context.Context, providerID, accountID string) (*models.Account, error) {
	return builder.Select[models.Account](s.db).
		Where(builder.Eq("provider_id", providerID)).
		And(builder.Eq("account_id", accountID)).
		First(ctx)
}

// Update applies a partial update and returns the updated row.
func (s *AccountStore) Update(ctx context.Context, id string, update models.UpdateAccount) (*models.Account, error) {
	changes := update.Changes()
	if len(changes) == 0 {
		return s.ByID(ctx, id)
	}
	changes["updated_at"] = time.Now().UTC()

	rows, err := builder.Update[models.Account](s.db).
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

// Delete removes an account by primary key.
func (s *AccountStore) Delete(ctx context.Context, id string) error {
	affected, err := builder.Delete[models.Account](s.db).
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
