package builder

import (
	"github.com/rebblit/rebblit-db/pkg/registry"
	"github.com/rebblit/rebblit-db/pkg/runtime"
)

// DB wraps runtime.DB and provides query builder methods.
type DB struct {
	db *runtime.DB
}

// New creates a new query builder DB from a runtime DB.
func New(db *runtime.DB) *DB {
	return &DB{db: db}
}

// Runtime returns the underlying runtime.DB.
func (d *DB) Runtime() *runtime.DB {
	return d.db
}

// Select creates a new type-safe SELECT query.
// Usage: builder.Select[User](db).Where(...).All(ctx)
func Select[T any](d *DB) *SelectQuery[T] {
	var model T

	table, err := registry.GetOrRegister(model)
	return &SelectQuery[T]{
		db:      d,
		table:   table,
		err:     err,
		columns: []string{"*"},
	}
}

// Insert creates a new type-safe INSERT query.
// Usage: builder.Insert[User](db).Values(user).Exec(ctx)
func Insert[T any](d *DB) *InsertQuery[T] {
	var model T

	table, err := registry.GetOrRegister(model)
	return &InsertQuery[T]{
		db:    d,
		table: table,
		err:   err,
	}
}

// Update creates a new type-safe UPDATE query.
// Usage: builder.Update[User](db).Set("name", "John").Where(...).Exec(ctx)
func Update[T any](d *DB) *UpdateQuery[T] {
	var model T

	table, err := registry.GetOrRegister(model)
	return &UpdateQuery[T]{
		db:    d,
		table: table,
		err:   err,
		sets:  make(map[string]interface{}),
		exprs: make(map[string]string),
	}
}

// Delete creates a new type-safe DELETE query.
// Usage: builder.Delete[User](db).Where(...).Exec(ctx)
func Delete[T any](d *DB) *DeleteQuery[T] {
	var model T

	table, err := registry.GetOrRegister(model)
	return &DeleteQuery[T]{
		db:    d,
		table: table,
		err:   err,
	}
}
