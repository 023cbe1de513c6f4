// Package store implements the persistence operations for every entity.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/rebblit/rebblit-db/internal/models"
	"github.com/rebblit/rebblit-db/pkg/builder"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// Store bundles the per-entity stores over one connection.
type Store struct {
	db *builder.DB

	Users         *UserStore
	Sessions      *SessionStore
	Accounts      *AccountStore
	Verifications *VerificationStore
	TwoFactors    *TwoFactorStore
	ApiKeys       *ApiKeyStore
	Posts         *PostStore
	PostMedia     *PostMediaStore
}

// New creates a Store over the given runtime DB. All models are registered
// as a side effect.
func New(rt *runtime.DB) (*Store, error) {
	if err := models.RegisterAll(); err != nil {
		return nil, err
	}
	return newStore(builder.New(rt)), nil
}

func newStore(db *builder.DB) *Store {
	return &Store{
		db:            db,
		Users:         &UserStore{db: db},
		Sessions:      &SessionStore{db: db},
		Accounts:      &AccountStore{db: db},
		Verifications: &VerificationStore{db: db},
		TwoFactors:    &TwoFactorStore{db: db},
		ApiKeys:       &ApiKeyStore{db: db},
		Posts:         &PostStore{db: db},
		PostMedia:     &PostMediaStore{db: db},
	}
}

// DB exposes the underlying query builder DB.
func (s *Store) DB() *builder.DB {
	return s.db
}

// WithTx runs fn against a store bound to a single transaction. Every
// operation on the passed store runs on that transaction; it commits when
// fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	rt := s.db.Runtime()
	tx, err := rt.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(newStore(builder.New(rt.WithTx(tx)))); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// newID generates an identifier for rows created without one.
func newID() string {
	return uuid.NewString()
}
