package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rebblit/rebblit-db/pkg/schema"
)

// Generator generates migration files on disk.
type Generator struct {
	migrationsDir string
}

// NewGenerator creates a new migration file generator.
func NewGenerator(migrationsDir string) *Generator {
	return &Generator{migrationsDir: migrationsDir}
}

// Generate creates up/down migration files for the given tables.
func (g *Generator) Generate(name string, tables []*schema.TableMetadata) (*MigrationFile, error) {
	if err := os.MkdirAll(g.migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := GenerateVersion()

	planner := NewPlanner()
	upSQL, downSQL, err := planner.GenerateSchema(tables)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	migrationFile := &MigrationFile{
		Version:  version,
		Name:     name,
		UpPath:   filepath.Join(g.migrationsDir, GenerateFileName(version, name, "up")),
		DownPath: filepath.Join(g.migrationsDir, GenerateFileName(version, name, "down")),
	}

	if err := os.WriteFile(migrationFile.UpPath, []byte(upSQL), 0644); err != nil {
		return nil, fmt.Errorf("failed to write up migration: %w", err)
	}

	if err := os.WriteFile(migrationFile.DownPath, []byte(downSQL), 0644); err != nil {
		return nil, fmt.Errorf("failed to write down migration: %w", err)
	}

	return migrationFile, nil
}

// GenerateEmpty creates empty migration files for manual editing.
func (g *Generator) GenerateEmpty(name string) (*MigrationFile, error) {
	if err := os.MkdirAll(g.migrationsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version := GenerateVersion()

	migrationFile := &MigrationFile{
		Version:  version,
		Name:     name,
		UpPath:   filepath.Join(g.migrationsDir, GenerateFileName(version, name, "up")),
		DownPath: filepath.Join(g.migrationsDir, GenerateFileName(version, name, "down")),
	}

	upSQL := fmt.Sprintf("-- Migration: %s\n-- Created at: %s\n\n-- Write your UP migration here\n", name, version)
	downSQL := fmt.Sprintf("-- Migration: %s\n-- Created at: %s\n\n-- Write your DOWN migration here\n", name, version)

	if err := os.WriteFile(migrationFile.UpPath, []byte(upSQL), 0644); err != nil {
		return nil, fmt.Errorf("failed to write up migration: %w", err)
	}

	if err := os.WriteFile(migrationFile.DownPath, []byte(downSQL), 0644); err != nil {
		return nil, fmt.Errorf("failed to write down migration: %w", err)
	}

	return migrationFile, nil
}

// ListMigrations lists all migration files in the migrations directory,
// sorted by version.
func (g *Generator) ListMigrations() ([]MigrationFile, error) {
	entries, err := os.ReadDir(g.migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []MigrationFile{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	fileMap := make(map[string]*MigrationFile)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileName := entry.Name()

		// Filename format: {version}_{name}.{direction}.sql
		parts := strings.SplitN(fileName, "_", 2)
		if len(parts) != 2 {
			continue
		}

		version := parts[0]
		rest := parts[1]

		if name, ok := strings.CutSuffix(rest, ".up.sql"); ok {
			if _, exists := fileMap[version]; !exists {
				fileMap[version] = &MigrationFile{Version: version, Name: name}
			}
			fileMap[version].UpPath = filepath.Join(g.migrationsDir, fileName)
		} else if name, ok := strings.CutSuffix(rest, ".down.sql"); ok {
			if _, exists := fileMap[version]; !exists {
				fileMap[version] = &MigrationFile{Version: version, Name: name}
			}
			fileMap[version].DownPath = filepath.Join(g.migrationsDir, fileName)
		}
	}

	var migrations []MigrationFile
	for _, mf := range fileMap {
		// Only include migrations that have both up and down files.
		if mf.UpPath != "" && mf.DownPath != "" {
			migrations = append(migrations, *mf)
		}
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// ReadMigration reads the SQL content from a migration file pair.
func (g *Generator) ReadMigration(file MigrationFile) (*Migration, error) {
	upSQL, err := os.ReadFile(file.UpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read up migration: %w", err)
	}

	downSQL, err := os.ReadFile(file.DownPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read down migration: %w", err)
	}

	return &Migration{
		Version: file.Version,
		Name:    file.Name,
		UpSQL:   string(upSQL),
		DownSQL: string(downSQL),
	}, nil
}
