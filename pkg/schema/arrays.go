package schema

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// StringArray is a custom type for PostgreSQL text[] columns that handles
// both native pgx array scanning and the text format ({a,b,c}) returned in
// simple-protocol mode.
type StringArray []string

// Value implements driver.Valuer for database writes.
// Formats the array as a PostgreSQL array literal: {value1,value2}.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return formatPostgresArray(a), nil
}

// Scan implements sql.Scanner for database reads.
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return a.scanString(string(v))
	case string:
		return a.scanString(v)
	case []string:
		*a = v
		return nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("failed to scan StringArray: non-string element %T", item)
			}
			out = append(out, s)
		}
		*a = out
		return nil
	default:
		return fmt.Errorf("failed to scan StringArray: unsupported type %T", src)
	}
}

// scanString parses the PostgreSQL text representation of a text[] value.
func (a *StringArray) scanString(src string) error {
	src = strings.TrimSpace(src)
	if src == "" || src == "{}" {
		*a = StringArray{}
		return nil
	}
	if !strings.HasPrefix(src, "{") || !strings.HasSuffix(src, "}") {
		return fmt.Errorf("failed to scan StringArray: malformed literal %q", src)
	}

	body := src[1 : len(src)-1]
	var (
		out      []string
		current  strings.Builder
		inQuotes bool
		escaped  bool
	)
	flush := func() {
		out = append(out, current.String())
		current.Reset()
	}
	for _, r := range body {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	*a = out
	return nil
}

// formatPostgresArray formats values as a PostgreSQL array literal.
func formatPostgresArray(values []string) string {
	if len(values) == 0 {
		return "{}"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		escaped := strings.ReplaceAll(v, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		parts[i] = `"` + escaped + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}
