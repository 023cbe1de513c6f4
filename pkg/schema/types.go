package schema

import (
	"database/sql"
	"reflect"
	"time"
)

// GoTypeToPostgreSQL maps a Go type to its PostgreSQL equivalent. Returns
// empty string when the tag must carry an explicit SQL type.
func GoTypeToPostgreSQL(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t {
	case reflect.TypeOf(time.Time{}):
		return "timestamp"
	case reflect.TypeOf(JSONB{}):
		return "jsonb"
	case reflect.TypeOf(StringArray{}):
		return "text[]"
	case reflect.TypeOf(sql.NullString{}):
		return "text"
	case reflect.TypeOf(sql.NullInt64{}):
		return "bigint"
	case reflect.TypeOf(sql.NullBool{}):
		return "boolean"
	case reflect.TypeOf(sql.NullTime{}):
		return "timestamp"
	}

	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.Int8, reflect.Int16:
		return "smallint"
	case reflect.Int32, reflect.Int:
		return "integer"
	case reflect.Int64:
		return "bigint"
	case reflect.Float32:
		return "real"
	case reflect.Float64:
		return "double precision"
	case reflect.String:
		return "text"
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "bytea"
		}
		if elem := GoTypeToPostgreSQL(t.Elem()); elem != "" {
			return elem + "[]"
		}
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return "jsonb"
		}
	case reflect.Struct:
		// Embedded record types are stored as jsonb documents.
		return "jsonb"
	}

	return ""
}

// IsNullable reports whether a Go type represents a nullable column.
func IsNullable(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		return true
	}

	switch t {
	case reflect.TypeOf(sql.NullString{}),
		reflect.TypeOf(sql.NullInt64{}),
		reflect.TypeOf(sql.NullBool{}),
		reflect.TypeOf(sql.NullTime{}):
		return true
	}

	return false
}
