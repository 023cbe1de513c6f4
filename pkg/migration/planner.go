package migration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rebblit/rebblit-db/pkg/schema"
)

// quoteIdent quotes a PostgreSQL identifier so reserved names like "user"
// are safe in DDL.
func quoteIdent(name string) string {
	return `"` + name + `"`
}

// PlannerOptions configures migration generation behavior.
type PlannerOptions struct {
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE and CREATE INDEX
	// statements so generated migrations are idempotent.
	// Default: true
	IfNotExists bool
}

// Planner generates SQL migration statements from table metadata.
type Planner struct {
	options PlannerOptions
}

// NewPlanner creates a new migration planner with default options.
func NewPlanner() *Planner {
	return &Planner{
		options: PlannerOptions{IfNotExists: true},
	}
}

// NewPlannerWithOptions creates a new migration planner with custom options.
func NewPlannerWithOptions(opts PlannerOptions) *Planner {
	return &Planner{options: opts}
}

// GenerateSchema generates up and down SQL creating the full schema.
// Enum types are created before any table that uses them, tables are
// ordered so a table comes after every table it references, and the down
// migration drops everything in reverse.
func (p *Planner) GenerateSchema(tables []*schema.TableMetadata) (upSQL, downSQL string, err error) {
	ordered, err := SortByDependency(tables)
	if err != nil {
		return "", "", err
	}

	var upStatements []string
	var downStatements []string

	// Enum types first, deduplicated across tables.
	seenEnums := make(map[string]bool)
	var enums []schema.EnumType
	for _, table := range ordered {
		for _, enumType := range table.EnumTypes {
			if seenEnums[enumType.Name] {
				continue
			}
			seenEnums[enumType.Name] = true
			enums = append(enums, enumType)
		}
	}
	for _, enumType := range enums {
		upStatements = append(upStatements, p.generateCreateEnumType(enumType))
	}

	for _, table := range ordered {
		upStatements = append(upStatements, p.generateCreateTable(table))
	}

	// Reverse order for the down migration: tables before the enums and
	// referencing tables before referenced ones.
	for i := len(ordered) - 1; i >= 0; i-- {
		downStatements = append(downStatements, p.generateDropTable(ordered[i].Name))
	}
	for i := len(enums) - 1; i >= 0; i-- {
		downStatements = append(downStatements, p.generateDropEnumType(enums[i].Name))
	}

	up := strings.Join(upStatements, "\n\n") + "\n"
	down := strings.Join(downStatements, "\n\n") + "\n"
	return up, down, nil
}

// SortByDependency orders tables so every table appears after the tables
// it references. Ties break on name for deterministic output.
func SortByDependency(tables []*schema.TableMetadata) ([]*schema.TableMetadata, error) {
	byName := make(map[string]*schema.TableMetadata, len(tables))
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
		names = append(names, t.Name)
	}
	sort.Strings(names)

	var ordered []*schema.TableMetadata
	state := make(map[string]int) // 0 unvisited, 1 visiting, 2 done

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("circular foreign key dependency involving table %s", name)
		}
		state[name] = 1

		table := byName[name]
		deps := make([]string, 0, len(table.ForeignKeys))
		for _, fk := range table.ForeignKeys {
			if fk.ReferencedTable != name {
				deps = append(deps, fk.ReferencedTable)
			}
		}
		sort.Strings(deps)
		for _, dep := range deps {
			if _, known := byName[dep]; !known {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		state[name] = 2
		ordered = append(ordered, table)
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// generateCreateTable generates a CREATE TABLE statement with its indexes.
func (p *Planner) generateCreateTable(table *schema.TableMetadata) string {
	var parts []string

	// Single-column primary keys are declared inline.
	var singlePKColumn string
	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) == 1 {
		singlePKColumn = table.PrimaryKey.Columns[0]
	}

	for _, col := range table.Columns {
		colDef := p.generateColumnDefinition(col)

		if singlePKColumn != "" && col.Name == singlePKColumn {
			colDef += " PRIMARY KEY"
		}

		parts = append(parts, "    "+colDef)
	}

	if table.PrimaryKey != nil && len(table.PrimaryKey.Columns) > 1 {
		pkCols := strings.Join(table.PrimaryKey.Columns, ", ")
		parts = append(parts, fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)", table.PrimaryKey.Name, pkCols))
	}

	for _, fk := range table.ForeignKeys {
		parts = append(parts, "    "+p.generateForeignKeyDefinition(fk))
	}

	for _, constraint := range table.Constraints {
		switch constraint.Type {
		case schema.CheckConstraint:
			parts = append(parts, fmt.Sprintf("    CONSTRAINT %s CHECK %s", constraint.Name, constraint.Expression))
		case schema.UniqueConstraint:
			// Single-column UNIQUE is declared inline on the column.
			if len(constraint.Columns) > 1 {
				cols := strings.Join(constraint.Columns, ", ")
				parts = append(parts, fmt.Sprintf("    CONSTRAINT %s UNIQUE (%s)", constraint.Name, cols))
			}
		}
	}

	createClause := "CREATE TABLE"
	if p.options.IfNotExists {
		createClause = "CREATE TABLE IF NOT EXISTS"
	}
	sql := fmt.Sprintf("%s %s (\n%s\n);", createClause, quoteIdent(table.Name), strings.Join(parts, ",\n"))

	var indexStatements []string
	for _, idx := range table.Indexes {
		indexStatements = append(indexStatements, p.generateCreateIndex(table.Name, idx))
	}

	if len(indexStatements) > 0 {
		sql += "\n\n" + strings.Join(indexStatements, "\n")
	}

	return sql
}

// generateColumnDefinition generates a column definition.
func (p *Planner) generateColumnDefinition(col schema.ColumnMetadata) string {
	parts := []string{col.Name, col.SQLType}

	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}

	if col.Default != nil {
		parts = append(parts, "DEFAULT", *col.Default)
	}

	if col.Unique {
		parts = append(parts, "UNIQUE")
	}

	return strings.Join(parts, " ")
}

// generateForeignKeyDefinition generates a foreign key constraint.
func (p *Planner) generateForeignKeyDefinition(fk schema.ForeignKeyMetadata) string {
	localCols := strings.Join(fk.Columns, ", ")
	refCols := strings.Join(fk.ReferencedColumns, ", ")

	parts := []string{
		fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s)", fk.Name, localCols),
		fmt.Sprintf("REFERENCES %s (%s)", quoteIdent(fk.ReferencedTable), refCols),
	}

	if fk.OnDelete != schema.NoAction && fk.OnDelete != "" {
		parts = append(parts, "ON DELETE "+string(fk.OnDelete))
	}

	if fk.OnUpdate != schema.NoAction && fk.OnUpdate != "" {
		parts = append(parts, "ON UPDATE "+string(fk.OnUpdate))
	}

	return strings.Join(parts, " ")
}

// generateCreateIndex generates a CREATE INDEX statement.
func (p *Planner) generateCreateIndex(tableName string, idx schema.IndexMetadata) string {
	var parts []string

	if idx.Unique {
		parts = append(parts, "CREATE UNIQUE INDEX")
	} else {
		parts = append(parts, "CREATE INDEX")
	}

	if p.options.IfNotExists {
		parts = append(parts, "IF NOT EXISTS")
	}

	parts = append(parts, idx.Name, "ON", quoteIdent(tableName))

	if idx.Type != "" && idx.Type != "btree" {
		parts = append(parts, "USING", idx.Type)
	}

	parts = append(parts, fmt.Sprintf("(%s)", strings.Join(idx.Columns, ", ")))

	if idx.Where != "" {
		parts = append(parts, "WHERE", idx.Where)
	}

	return strings.Join(parts, " ") + ";"
}

// generateDropTable generates a DROP TABLE statement.
func (p *Planner) generateDropTable(tableName string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteIdent(tableName))
}

// generateCreateEnumType generates a CREATE TYPE statement for an enum.
// PostgreSQL has no CREATE TYPE IF NOT EXISTS, so under the IfNotExists
// option the statement is wrapped in a DO block that swallows
// duplicate_object, keeping re-applied migrations from failing on the type.
func (p *Planner) generateCreateEnumType(enumType schema.EnumType) string {
	quotedValues := make([]string, len(enumType.Values))
	for i, val := range enumType.Values {
		quotedValues[i] = fmt.Sprintf("'%s'", val)
	}

	create := fmt.Sprintf("CREATE TYPE %s AS ENUM (%s)", enumType.Name, strings.Join(quotedValues, ", "))
	if !p.options.IfNotExists {
		return create + ";"
	}
	return fmt.Sprintf("DO $$ BEGIN\n    %s;\nEXCEPTION WHEN duplicate_object THEN NULL;\nEND $$;", create)
}

// generateDropEnumType generates a DROP TYPE statement for an enum.
func (p *Planner) generateDropEnumType(enumName string) string {
	return fmt.Sprintf("DROP TYPE IF EXISTS %s;", enumName)
}
