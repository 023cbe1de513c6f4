// Package schema turns annotated Go structs into PostgreSQL table metadata.
package schema

import "reflect"

// TableMetadata describes a single database table.
type TableMetadata struct {
	Name          string
	GoType        reflect.Type
	Columns       []ColumnMetadata
	PrimaryKey    *PrimaryKeyMetadata
	ForeignKeys   []ForeignKeyMetadata
	Indexes       []IndexMetadata
	Constraints   []ConstraintMetadata
	Relationships []RelationshipMetadata
	EnumTypes     []EnumType
}

// ColumnMetadata describes a single column.
type ColumnMetadata struct {
	Name     string
	GoField  string
	GoType   reflect.Type
	Position int
	SQLType  string
	EnumType string // non-empty when SQLType is a registered enum type
	Nullable bool
	Default  *string
	Unique   bool
	IsJSONB  bool
}

// PrimaryKeyMetadata describes a table's primary key.
type PrimaryKeyMetadata struct {
	Name    string
	Columns []string
}

// ReferenceAction is a foreign key ON DELETE / ON UPDATE action.
type ReferenceAction string

const (
	NoAction   ReferenceAction = "NO ACTION"
	Cascade    ReferenceAction = "CASCADE"
	Restrict   ReferenceAction = "RESTRICT"
	SetNull    ReferenceAction = "SET NULL"
	SetDefault ReferenceAction = "SET DEFAULT"
)

// ForeignKeyMetadata describes a foreign key constraint.
type ForeignKeyMetadata struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	OnDelete          ReferenceAction
	OnUpdate          ReferenceAction
}

// IndexMetadata describes a secondary index.
type IndexMetadata struct {
	Name    string
	Columns []string
	Unique  bool
	Type    string // btree when empty
	Where   string // partial index predicate
}

// ConstraintType distinguishes table constraints.
type ConstraintType string

const (
	UniqueConstraint ConstraintType = "UNIQUE"
	CheckConstraint  ConstraintType = "CHECK"
)

// ConstraintMetadata describes a CHECK or multi-column UNIQUE constraint.
type ConstraintMetadata struct {
	Name       string
	Type       ConstraintType
	Columns    []string
	Expression string
}

// EnumType is a closed set of string values backed by a PostgreSQL enum.
type EnumType struct {
	Name   string
	Values []string
}

// Contains reports whether v is a member of the enum's closed set.
func (e EnumType) Contains(v string) bool {
	for _, val := range e.Values {
		if val == v {
			return true
		}
	}
	return false
}

// RelationType is the kind of a relationship declaration.
type RelationType string

const (
	BelongsTo RelationType = "belongsTo"
	HasOne    RelationType = "hasOne"
	HasMany   RelationType = "hasMany"
)

// RelationshipMetadata mirrors a foreign key as navigable structure: the
// forward many-to-one side (belongsTo) and the backward one-to-many side
// (hasMany). It carries no invariants of its own.
type RelationshipMetadata struct {
	Type        RelationType
	SourceTable string
	SourceField string
	TargetTable string
	TargetType  reflect.Type
	ForeignKey  string
	References  string
}

// IsPrimaryKey reports whether the named column is part of the primary key.
func (t *TableMetadata) IsPrimaryKey(column string) bool {
	if t.PrimaryKey == nil {
		return false
	}
	for _, c := range t.PrimaryKey.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Column returns the column with the given name, or nil.
func (t *TableMetadata) Column(name string) *ColumnMetadata {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns all column names in declaration order.
func (t *TableMetadata) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// GetRelationship returns a relationship by source field name.
func (t *TableMetadata) GetRelationship(fieldName string) *RelationshipMetadata {
	for i := range t.Relationships {
		if t.Relationships[i].SourceField == fieldName {
			return &t.Relationships[i]
		}
	}
	return nil
}

// GetRelationshipsByType returns all relationships of a specific type.
func (t *TableMetadata) GetRelationshipsByType(relType RelationType) []RelationshipMetadata {
	var result []RelationshipMetadata
	for _, rel := range t.Relationships {
		if rel.Type == relType {
			result = append(result, rel)
		}
	}
	return result
}
