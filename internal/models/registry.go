package models

import (
	"fmt"

	"github.com/rebblit/rebblit-db/pkg/registry"
	"github.com/rebblit/rebblit-db/pkg/schema"
)

func init() {
	// Enum types and table-name overrides must be in place before any
	// model is parsed.
	schema.RegisterEnum(GenderEnum)
	schema.RegisterEnum(ProfileTypeEnum)
	schema.RegisterEnum(MediaTypeEnum)

	schema.RegisterTableName("ApiKey", "apikey")
	schema.RegisterTableName("Post", "posts")
}

// All returns one instance of every persistent model, referenced tables
// before referencing ones.
func All() []any {
	return []any{
		User{},
		Session{},
		Account{},
		Verification{},
		TwoFactor{},
		ApiKey{},
		Post{},
		PostMedia{},
	}
}

// RegisterAll registers every model in the global schema registry.
func RegisterAll() error {
	for _, model := range All() {
		if err := registry.Register(model); err != nil {
			return fmt.Errorf("failed to register model: %w", err)
		}
	}
	return nil
}

// Tables returns the metadata of every registered model in registration
// order.
func Tables() ([]*schema.TableMetadata, error) {
	if err := RegisterAll(); err != nil {
		return nil, err
	}

	var tables []*schema.TableMetadata
	for _, model := range All() {
		table, err := registry.GetOrRegister(model)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}
