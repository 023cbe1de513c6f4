package builder

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rebblit/rebblit-db/pkg/registry"
	"github.com/rebblit/rebblit-db/pkg/schema"
)

// loadRelationships loads all preloaded relationships for a set of results.
func (q *SelectQuery[T]) loadRelationships(ctx context.Context, results interface{}) error {
	if len(q.preloads) == 0 {
		return nil
	}

	resultsVal := reflect.ValueOf(results)
	if resultsVal.Kind() != reflect.Ptr {
		return fmt.Errorf("results must be a pointer to slice")
	}

	resultsVal = resultsVal.Elem()
	if resultsVal.Kind() != reflect.Slice {
		return fmt.Errorf("results must be a pointer to slice")
	}

	if resultsVal.Len() == 0 {
		return nil
	}

	for _, fieldName := range q.preloads {
		rel := q.table.GetRelationship(fieldName)
		if rel == nil {
			return fmt.Errorf("relationship %s not found on %s", fieldName, q.table.Name)
		}

		if err := q.loadRelationship(ctx, resultsVal, rel); err != nil {
			return fmt.Errorf("failed to load relationship %s: %w", fieldName, err)
		}
	}

	return nil
}

// loadRelationship loads a specific relationship for all results.
func (q *SelectQuery[T]) loadRelationship(ctx context.Context, results reflect.Value, rel *schema.RelationshipMetadata) error {
	switch rel.Type {
	case schema.BelongsTo:
		return q.loadBelongsTo(ctx, results, rel)
	case schema.HasOne, schema.HasMany:
		return q.loadHasRelation(ctx, results, rel)
	default:
		return fmt.Errorf("unsupported relationship type: %s", rel.Type)
	}
}

// targetMetadata resolves the related table's metadata.
func targetMetadata(rel *schema.RelationshipMetadata) (*schema.TableMetadata, error) {
	if rel.TargetType != nil {
		return registry.Get(rel.TargetType)
	}
	return registry.GetByName(rel.TargetTable)
}

// loadBelongsTo loads belongsTo relationships.
// Example: PostMedia belongsTo Post (post_media.post_id -> posts.id)
func (q *SelectQuery[T]) loadBelongsTo(ctx context.Context, results reflect.Value, rel *schema.RelationshipMetadata) error {
	targetTable, err := targetMetadata(rel)
	if err != nil {
		return fmt.Errorf("target table %s not registered: %w", rel.TargetTable, err)
	}

	// Collect foreign key values across all results.
	foreignKeys := make([]interface{}, 0, results.Len())
	foreignKeyMap := make(map[interface{}][]int)

	for i := 0; i < results.Len(); i++ {
		item := results.Index(i)
		if item.Kind() == reflect.Ptr {
			item = item.Elem()
		}

		fkField := item.FieldByName(toPascalCase(rel.ForeignKey))
		if !fkField.IsValid() {
			continue
		}

		if fkField.Kind() == reflect.Ptr {
			if fkField.IsNil() {
				continue
			}
			fkField = fkField.Elem()
		}
		fkValue := fkField.Interface()
		if isZeroValue(fkValue) {
			continue
		}

		if _, exists := foreignKeyMap[fkValue]; !exists {
			foreignKeys = append(foreignKeys, fkValue)
		}
		foreignKeyMap[fkValue] = append(foreignKeyMap[fkValue], i)
	}

	if len(foreignKeys) == 0 {
		return nil
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = ANY($1)", quoteIdent(targetTable.Name), rel.References)
	rows, err := q.db.db.Query(ctx, sql, foreignKeys)
	if err != nil {
		return fmt.Errorf("failed to query related records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		related := reflect.New(targetTable.GoType)
		if err := scanIntoStruct(rows, related.Interface(), targetTable); err != nil {
			return fmt.Errorf("failed to scan related record: %w", err)
		}

		idField := related.Elem().FieldByName(toPascalCase(rel.References))
		if !idField.IsValid() {
			continue
		}

		for _, idx := range foreignKeyMap[idField.Interface()] {
			item := results.Index(idx)
			if item.Kind() == reflect.Ptr {
				item = item.Elem()
			}

			relationField := item.FieldByName(rel.SourceField)
			if !relationField.IsValid() || !relationField.CanSet() {
				continue
			}

			if relationField.Kind() == reflect.Ptr {
				relationField.Set(related)
			} else {
				relationField.Set(related.Elem())
			}
		}
	}

	return rows.Err()
}

// loadHasRelation loads hasOne and hasMany relationships.
// Example: Post hasMany PostMedia (post_media.post_id -> posts.id)
func (q *SelectQuery[T]) loadHasRelation(ctx context.Context, results reflect.Value, rel *schema.RelationshipMetadata) error {
	targetTable, err := targetMetadata(rel)
	if err != nil {
		return fmt.Errorf("target table %s not registered: %w", rel.TargetTable, err)
	}

	// Collect primary key values across all results.
	primaryKeys := make([]interface{}, 0, results.Len())
	pkMap := make(map[interface{}]int)

	for i := 0; i < results.Len(); i++ {
		item := results.Index(i)
		if item.Kind() == reflect.Ptr {
			item = item.Elem()
		}

		pkField := item.FieldByName(toPascalCase(rel.References))
		if !pkField.IsValid() {
			continue
		}

		if pkField.Kind() == reflect.Ptr {
			if pkField.IsNil() {
				continue
			}
			pkField = pkField.Elem()
		}
		pkValue := pkField.Interface()

		primaryKeys = append(primaryKeys, pkValue)
		pkMap[pkValue] = i

		if rel.Type == schema.HasMany {
			relationField := item.FieldByName(rel.SourceField)
			if relationField.IsValid() && relationField.CanSet() && relationField.IsNil() {
				relationField.Set(reflect.MakeSlice(relationField.Type(), 0, 0))
			}
		}
	}

	if len(primaryKeys) == 0 {
		return nil
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = ANY($1)", quoteIdent(targetTable.Name), rel.ForeignKey)
	rows, err := q.db.db.Query(ctx, sql, primaryKeys)
	if err != nil {
		return fmt.Errorf("failed to query related records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		related := reflect.New(targetTable.GoType)
		if err := scanIntoStruct(rows, related.Interface(), targetTable); err != nil {
			return fmt.Errorf("failed to scan related record: %w", err)
		}

		fkField := related.Elem().FieldByName(toPascalCase(rel.ForeignKey))
		if !fkField.IsValid() {
			continue
		}
		if fkField.Kind() == reflect.Ptr {
			if fkField.IsNil() {
				continue
			}
			fkField = fkField.Elem()
		}

		idx, exists := pkMap[fkField.Interface()]
		if !exists {
			continue
		}

		item := results.Index(idx)
		if item.Kind() == reflect.Ptr {
			item = item.Elem()
		}

		relationField := item.FieldByName(rel.SourceField)
		if !relationField.IsValid() || !relationField.CanSet() {
			continue
		}

		switch {
		case rel.Type == schema.HasMany && relationField.Kind() == reflect.Slice:
			var elem reflect.Value
			if relationField.Type().Elem().Kind() == reflect.Ptr {
				elem = related
			} else {
				elem = related.Elem()
			}
			relationField.Set(reflect.Append(relationField, elem))
		case relationField.Kind() == reflect.Ptr:
			relationField.Set(related)
		default:
			relationField.Set(related.Elem())
		}
	}

	return rows.Err()
}

// commonInitialisms contains Go initialisms that should be all uppercase.
var commonInitialisms = map[string]bool{
	"API":  true,
	"ID":   true,
	"IP":   true,
	"JSON": true,
	"OTP":  true,
	"SQL":  true,
	"TTL":  true,
	"UID":  true,
	"URI":  true,
	"URL":  true,
	"UUID": true,
}

// toPascalCase converts snake_case to PascalCase for field names.
// Handles Go initialisms properly (e.g., "user_id" -> "UserID", not "UserId").
func toPascalCase(s string) string {
	if s == "" {
		return ""
	}

	var parts []string
	var current []rune
	for _, ch := range s {
		if ch == '_' {
			if len(current) > 0 {
				parts = append(parts, string(current))
				current = nil
			}
		} else {
			current = append(current, ch)
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}

	final := ""
	for _, part := range parts {
		upper := ""
		for _, ch := range part {
			upper += string(toUpper(ch))
		}
		if commonInitialisms[upper] {
			final += upper
		} else {
			final += string(toUpper(rune(part[0]))) + part[1:]
		}
	}

	return final
}

// toUpper converts a character to uppercase.
func toUpper(ch rune) rune {
	if ch >= 'a' && ch <= 'z' {
		return ch - 32
	}
	return ch
}

// isZeroValue checks if a value is the zero value for its type.
func isZeroValue(v interface{}) bool {
	if v == nil {
		return true
	}

	val := reflect.ValueOf(v)
	switch val.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return val.IsNil()
	default:
		return val.IsZero()
	}
}
