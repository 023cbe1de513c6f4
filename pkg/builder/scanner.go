package builder

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/rebblit/rebblit-db/pkg/schema"
)

// scanIntoStruct scans a database row into a struct.
func scanIntoStruct(rows pgx.Rows, dest interface{}, table *schema.TableMetadata) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr {
		return fmt.Errorf("dest must be a pointer to struct")
	}

	destValue = destValue.Elem()
	if destValue.Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct")
	}

	fieldDescriptions := rows.FieldDescriptions()

	scanTargets := make([]interface{}, len(fieldDescriptions))
	jsonbTargets := make(map[int]*jsonbScanTarget)
	columnMap := make(map[string]int)

	for i, fd := range fieldDescriptions {
		columnMap[fd.Name] = i
	}

	for _, col := range table.Columns {
		idx, ok := columnMap[col.Name]
		if !ok {
			continue
		}

		field := destValue.FieldByName(col.GoField)
		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// JSONB columns without a Scanner get scanned into raw bytes and
		// unmarshaled into the typed field afterwards.
		if col.IsJSONB && !implementsScanner(field.Type()) {
			target := &jsonbScanTarget{field: field}
			scanTargets[idx] = target
			jsonbTargets[idx] = target
		} else {
			scanTargets[idx] = field.Addr().Interface()
		}
	}

	// Columns with no matching struct field still need a scan slot.
	var dummy interface{}
	for i := range scanTargets {
		if scanTargets[i] == nil {
			scanTargets[i] = &dummy
		}
	}

	if err := rows.Scan(scanTargets...); err != nil {
		return fmt.Errorf("failed to scan row: %w", err)
	}

	for _, target := range jsonbTargets {
		if err := target.unmarshalIntoField(); err != nil {
			return fmt.Errorf("failed to unmarshal JSONB: %w", err)
		}
	}

	return nil
}

// jsonbScanTarget is an intermediate scan target for JSONB columns
// that don't implement sql.Scanner.
type jsonbScanTarget struct {
	field reflect.Value
	data  []byte
}

// Scan implements sql.Scanner for intermediate JSONB scanning.
func (j *jsonbScanTarget) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	switch v := value.(type) {
	case []byte:
		j.data = v
	case string:
		j.data = []byte(v)
	default:
		// pgx already decoded it; marshal back to JSON for re-decoding.
		var err error
		j.data, err = json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal decoded JSONB: %w", err)
		}
	}
	return nil
}

// unmarshalIntoField unmarshals the scanned JSON data into the target field.
func (j *jsonbScanTarget) unmarshalIntoField() error {
	if j.data == nil {
		return nil
	}

	targetPtr := j.field.Addr().Interface()
	return json.Unmarshal(j.data, targetPtr)
}

// implementsScanner checks if a type implements sql.Scanner.
func implementsScanner(t reflect.Type) bool {
	scannerType := reflect.TypeOf((*interface{ Scan(interface{}) error })(nil)).Elem()

	if t.Implements(scannerType) {
		return true
	}
	if reflect.PointerTo(t).Implements(scannerType) {
		return true
	}
	return false
}

// implementsValuer checks if a type implements driver.Valuer.
func implementsValuer(t reflect.Type) bool {
	valuerType := reflect.TypeOf((*driver.Valuer)(nil)).Elem()

	if t.Implements(valuerType) {
		return true
	}
	if reflect.PointerTo(t).Implements(valuerType) {
		return true
	}
	return false
}

// structToValues converts a struct to column names and values for INSERT.
// Zero-valued fields whose column has a database default are omitted, so
// defaults like gen_random_uuid() and CURRENT_TIMESTAMP apply server-side.
// Pointer fields separate omitted from explicit zero on such columns: nil
// defers to the default while a non-nil pointer is written even when it
// points at the zero value. JSONB columns are marshaled to JSON
// automatically.
func structToValues(model interface{}, table *schema.TableMetadata) ([]string, []interface{}, error) {
	modelValue := reflect.ValueOf(model)
	if modelValue.Kind() == reflect.Ptr {
		modelValue = modelValue.Elem()
	}

	if modelValue.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct")
	}

	var columns []string
	var values []interface{}

	for _, col := range table.Columns {
		field := modelValue.FieldByName(col.GoField)
		if !field.IsValid() {
			continue
		}

		if col.Default != nil && field.IsZero() {
			continue
		}

		columns = append(columns, col.Name)

		fieldValue := field.Interface()

		if col.IsJSONB && !implementsValuer(field.Type()) {
			jsonVal, err := marshalJSONB(fieldValue)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to marshal JSONB field %s: %w", col.GoField, err)
			}
			values = append(values, jsonVal)
		} else {
			values = append(values, fieldValue)
		}
	}

	return columns, values, nil
}

// marshalJSONB marshals a value to a JSON string for JSONB columns.
// Returns string because pgx correctly handles string->jsonb conversion,
// while []byte might be incorrectly encoded as bytea.
func marshalJSONB(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		value = v.Elem().Interface()
	}

	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}
