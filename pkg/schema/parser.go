package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

const (
	// StructTagKey is the key used in struct tags (e.g., `db:"..."`).
	StructTagKey = "db"
)

// Parser parses struct definitions to extract table metadata.
type Parser struct {
	cache map[reflect.Type]*TableMetadata
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{
		cache: make(map[reflect.Type]*TableMetadata),
	}
}

var (
	namesMu          sync.RWMutex
	customTableNames = make(map[string]string) // struct name → table name

	enumsMu         sync.RWMutex
	registeredEnums = make(map[string]EnumType) // enum type name → definition
)

// RegisterTableName registers a custom table name for a struct type.
// Without a registration the table name is the snake_case struct name.
func RegisterTableName(structName, tableName string) {
	namesMu.Lock()
	customTableNames[structName] = tableName
	namesMu.Unlock()
}

// RegisterEnum registers a PostgreSQL enum type so columns can reference it
// via the enum(name) tag option.
func RegisterEnum(e EnumType) {
	enumsMu.Lock()
	registeredEnums[e.Name] = e
	enumsMu.Unlock()
}

// LookupEnum returns a registered enum type by name.
func LookupEnum(name string) (EnumType, bool) {
	enumsMu.RLock()
	e, ok := registeredEnums[name]
	enumsMu.RUnlock()
	return e, ok
}

// Parse extracts TableMetadata from a Go struct type.
func (p *Parser) Parse(modelType reflect.Type) (*TableMetadata, error) {
	for modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", modelType.Kind())
	}
	if cached, ok := p.cache[modelType]; ok {
		return cached, nil
	}

	table := &TableMetadata{
		Name:        extractTableName(modelType),
		GoType:      modelType,
		Columns:     make([]ColumnMetadata, 0),
		ForeignKeys: make([]ForeignKeyMetadata, 0),
		Indexes:     make([]IndexMetadata, 0),
		Constraints: make([]ConstraintMetadata, 0),
	}

	seenEnums := make(map[string]bool)

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		if !field.IsExported() {
			continue
		}
		tagValue := field.Tag.Get(StructTagKey)
		if tagValue == "" || tagValue == "-" {
			continue
		}

		opts, err := parseTag(tagValue)
		if err != nil {
			return nil, fmt.Errorf("failed to parse tag for field %s: %w", field.Name, err)
		}

		if isRelationshipTag(opts) {
			rel, err := parseRelationship(field, opts, table)
			if err != nil {
				return nil, fmt.Errorf("failed to parse relationship for field %s: %w", field.Name, err)
			}
			table.Relationships = append(table.Relationships, *rel)
			continue
		}

		column, err := createColumnMetadata(field, opts, i)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}

		if opts.Has("primaryKey") {
			if table.PrimaryKey == nil {
				table.PrimaryKey = &PrimaryKeyMetadata{
					Columns: []string{column.Name},
					Name:    table.Name + "_pkey",
				}
			} else {
				table.PrimaryKey.Columns = append(table.PrimaryKey.Columns, column.Name)
			}
		}

		// Attach referenced enum types once per table so the planner can
		// emit CREATE TYPE before CREATE TABLE.
		if column.EnumType != "" && !seenEnums[column.EnumType] {
			enum, ok := LookupEnum(column.EnumType)
			if !ok {
				return nil, fmt.Errorf("field %s references unregistered enum type %q", field.Name, column.EnumType)
			}
			table.EnumTypes = append(table.EnumTypes, enum)
			seenEnums[column.EnumType] = true
		}

		// Secondary indexes. UNIQUE columns already get an implicit index.
		if opts.Has("index") || opts.Has("uniqueIndex") {
			idx := IndexMetadata{
				Name:    opts.Get("index"),
				Columns: []string{column.Name},
				Unique:  opts.Has("uniqueIndex"),
			}
			if idx.Unique {
				idx.Name = opts.Get("uniqueIndex")
			}
			if idx.Name == "" {
				idx.Name = fmt.Sprintf("%s_%s_idx", table.Name, column.Name)
			}
			table.Indexes = append(table.Indexes, idx)
		}

		if fk := parseForeignKey(opts, table.Name, column.Name); fk != nil {
			table.ForeignKeys = append(table.ForeignKeys, *fk)
		}

		table.Columns = append(table.Columns, column)
	}

	p.cache[modelType] = table
	return table, nil
}

func extractTableName(modelType reflect.Type) string {
	namesMu.RLock()
	name, ok := customTableNames[modelType.Name()]
	namesMu.RUnlock()
	if ok {
		return name
	}
	return ToSnakeCase(modelType.Name())
}

// createColumnMetadata creates a ColumnMetadata from a struct field.
func createColumnMetadata(field reflect.StructField, opts *TagOptions, position int) (ColumnMetadata, error) {
	column := ColumnMetadata{
		Name:     opts.Name,
		GoField:  field.Name,
		GoType:   field.Type,
		Position: position,
	}

	switch {
	case opts.Has("enum"):
		enumName := opts.Get("enum")
		if enumName == "" {
			return column, fmt.Errorf("enum option requires a type name")
		}
		column.SQLType = enumName
		column.EnumType = enumName
	default:
		if sqlType := opts.GetSQLType(); sqlType != "" {
			column.SQLType = sqlType
		} else {
			column.SQLType = GoTypeToPostgreSQL(field.Type)
		}
	}
	if column.SQLType == "" {
		return column, fmt.Errorf("cannot map Go type %s to a PostgreSQL type", field.Type)
	}

	column.IsJSONB = column.SQLType == "jsonb"
	// An explicit notNull tag wins over pointer-type inference, so an
	// optional Go field can still back a NOT NULL DEFAULT column. Without
	// the tag, pointer and sql.Null* fields stay nullable.
	column.Nullable = !opts.Has("notNull") && !opts.Has("primaryKey")
	if defaultVal := opts.Get("default"); defaultVal != "" {
		column.Default = &defaultVal
	}
	column.Unique = opts.Has("unique")

	return column, nil
}

// parseForeignKey extracts a foreign key reference from fk(table.column)
// plus optional onDelete/onUpdate actions.
func parseForeignKey(opts *TagOptions, tableName, columnName string) *ForeignKeyMetadata {
	fkStr := opts.Get("fk")
	if fkStr == "" {
		return nil
	}

	parts := strings.SplitN(fkStr, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil
	}

	return &ForeignKeyMetadata{
		Name:              fmt.Sprintf("fk_%s_%s_%s", tableName, columnName, parts[0]),
		Columns:           []string{columnName},
		ReferencedTable:   parts[0],
		ReferencedColumns: []string{parts[1]},
		OnDelete:          parseReferenceAction(opts.Get("onDelete")),
		OnUpdate:          parseReferenceAction(opts.Get("onUpdate")),
	}
}

// parseReferenceAction converts a string to ReferenceAction.
func parseReferenceAction(action string) ReferenceAction {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case "CASCADE":
		return Cascade
	case "RESTRICT":
		return Restrict
	case "SETNULL", "SET NULL":
		return SetNull
	case "SETDEFAULT", "SET DEFAULT":
		return SetDefault
	default:
		return NoAction
	}
}

func isRelationshipTag(opts *TagOptions) bool {
	return opts.Has("belongsTo") || opts.Has("hasOne") || opts.Has("hasMany")
}

// parseRelationship parses a belongsTo/hasOne/hasMany navigation field.
func parseRelationship(field reflect.StructField, opts *TagOptions, sourceTable *TableMetadata) (*RelationshipMetadata, error) {
	rel := &RelationshipMetadata{
		SourceTable: sourceTable.Name,
		SourceField: field.Name,
	}

	switch {
	case opts.Has("belongsTo"):
		rel.Type = BelongsTo
	case opts.Has("hasOne"):
		rel.Type = HasOne
	case opts.Has("hasMany"):
		rel.Type = HasMany
	}

	fieldType := field.Type
	if fieldType.Kind() == reflect.Slice {
		fieldType = fieldType.Elem()
	}
	for fieldType.Kind() == reflect.Ptr {
		fieldType = fieldType.Elem()
	}
	if fieldType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("relationship field must point at a struct, got %s", fieldType.Kind())
	}

	rel.TargetType = fieldType
	rel.TargetTable = extractTableName(fieldType)

	rel.ForeignKey = opts.Get("foreignKey")
	if rel.ForeignKey == "" {
		switch rel.Type {
		case BelongsTo:
			rel.ForeignKey = ToSnakeCase(fieldType.Name()) + "_id"
		case HasOne, HasMany:
			rel.ForeignKey = ToSnakeCase(sourceTable.GoType.Name()) + "_id"
		}
	}

	rel.References = opts.Get("references")
	if rel.References == "" {
		rel.References = "id"
	}

	return rel, nil
}

// TagOptions represents parsed tag options.
type TagOptions struct {
	Name    string            // column name (first element)
	Options map[string]string // other options
}

// parseTag parses a struct tag value into TagOptions.
// Format: "column_name,option1,option2(value),option3:value"
func parseTag(tag string) (*TagOptions, error) {
	parts := splitTag(tag)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty tag value")
	}
	opts := &TagOptions{
		Name:    parts[0],
		Options: make(map[string]string),
	}
	for _, opt := range parts[1:] {
		if idx := strings.Index(opt, "("); idx != -1 {
			if !strings.HasSuffix(opt, ")") {
				return nil, fmt.Errorf("invalid option format: %s", opt)
			}
			opts.Options[opt[:idx]] = opt[idx+1 : len(opt)-1]
		} else if idx := strings.Index(opt, ":"); idx != -1 {
			opts.Options[opt[:idx]] = opt[idx+1:]
		} else {
			opts.Options[opt] = ""
		}
	}
	return opts, nil
}

// Has checks if an option exists.
func (t *TagOptions) Has(key string) bool {
	_, ok := t.Options[key]
	return ok
}

// Get returns the value of an option.
func (t *TagOptions) Get(key string) string {
	return t.Options[key]
}

// GetSQLType returns an explicit SQL type from the tag options, if present.
func (t *TagOptions) GetSQLType() string {
	pgTypes := []string{
		"uuid", "varchar", "text", "char",
		"smallint", "integer", "bigint",
		"numeric", "decimal", "real", "double precision",
		"boolean", "bool",
		"date", "time", "timestamp", "timestamptz", "interval",
		"json", "jsonb",
		"bytea",
		"text[]", "integer[]",
	}
	for _, pgType := range pgTypes {
		if t.Has(pgType) {
			if value := t.Get(pgType); value != "" {
				return fmt.Sprintf("%s(%s)", pgType, value)
			}
			return pgType
		}
	}
	return ""
}

// splitTag splits a tag value by commas, honoring nested parentheses.
func splitTag(tag string) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	for _, ch := range tag {
		switch ch {
		case '(':
			depth++
			current.WriteRune(ch)
		case ')':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(current.String()))
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, strings.TrimSpace(current.String()))
	}
	return parts
}

// ToSnakeCase converts a string from PascalCase to snake_case.
func ToSnakeCase(s string) string {
	var result strings.Builder
	for i, ch := range s {
		if i > 0 && ch >= 'A' && ch <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(ch)
	}
	return strings.ToLower(result.String())
}
