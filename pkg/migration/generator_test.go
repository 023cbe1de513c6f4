package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerator_GenerateEmpty(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir)

	mf, err := gen.GenerateEmpty("add_saved_count")
	if err != nil {
		t.Fatalf("GenerateEmpty failed: %v", err)
	}

	if mf.Name != "add_saved_count" {
		t.Errorf("expected name add_saved_count, got %s", mf.Name)
	}
	if len(mf.Version) != 14 {
		t.Errorf("expected 14-character timestamp version, got %q", mf.Version)
	}

	for _, path := range []string{mf.UpPath, mf.DownPath} {
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading %s failed: %v", path, err)
		}
		if !strings.Contains(string(content), "add_saved_count") {
			t.Errorf("expected migration name in %s", path)
		}
	}

	expectedUp := mf.Version + "_add_saved_count.up.sql"
	if filepath.Base(mf.UpPath) != expectedUp {
		t.Errorf("expected up file %s, got %s", expectedUp, filepath.Base(mf.UpPath))
	}
}

func TestGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir)

	tables := parseTables(t, article{}, author{})

	mf, err := gen.Generate("init", tables)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	upSQL, err := os.ReadFile(mf.UpPath)
	if err != nil {
		t.Fatalf("reading up migration failed: %v", err)
	}
	if !strings.Contains(string(upSQL), `CREATE TABLE IF NOT EXISTS "author"`) {
		t.Errorf("up migration missing author table:\n%s", upSQL)
	}

	downSQL, err := os.ReadFile(mf.DownPath)
	if err != nil {
		t.Fatalf("reading down migration failed: %v", err)
	}
	if !strings.Contains(string(downSQL), `DROP TABLE IF EXISTS "article";`) {
		t.Errorf("down migration missing article drop:\n%s", downSQL)
	}
}

func TestGenerator_ListMigrations(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir)

	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	write("20260101000000_init.up.sql", "CREATE TABLE a (id text);")
	write("20260101000000_init.down.sql", "DROP TABLE a;")
	write("20260201000000_add_posts.up.sql", "CREATE TABLE b (id text);")
	write("20260201000000_add_posts.down.sql", "DROP TABLE b;")
	// Orphan without a down file must be skipped.
	write("20260301000000_broken.up.sql", "CREATE TABLE c (id text);")
	write("notes.txt", "not a migration")

	migrations, err := gen.ListMigrations()
	if err != nil {
		t.Fatalf("ListMigrations failed: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != "20260101000000" || migrations[0].Name != "init" {
		t.Errorf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].Version != "20260201000000" || migrations[1].Name != "add_posts" {
		t.Errorf("unexpected second migration: %+v", migrations[1])
	}
}

func TestGenerator_ListMigrationsMissingDir(t *testing.T) {
	gen := NewGenerator(filepath.Join(t.TempDir(), "does-not-exist"))

	migrations, err := gen.ListMigrations()
	if err != nil {
		t.Fatalf("ListMigrations failed: %v", err)
	}
	if len(migrations) != 0 {
		t.Errorf("expected no migrations, got %d", len(migrations))
	}
}

func TestGenerator_ReadMigration(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(dir)

	up := filepath.Join(dir, "20260101000000_init.up.sql")
	down := filepath.Join(dir, "20260101000000_init.down.sql")
	if err := os.WriteFile(up, []byte("CREATE TABLE a (id text);"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.WriteFile(down, []byte("DROP TABLE a;"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	mig, err := gen.ReadMigration(MigrationFile{
		Version:  "20260101000000",
		Name:     "init",
		UpPath:   up,
		DownPath: down,
	})
	if err != nil {
		t.Fatalf("ReadMigration failed: %v", err)
	}
	if mig.UpSQL != "CREATE TABLE a (id text);" {
		t.Errorf("unexpected up SQL: %q", mig.UpSQL)
	}
	if mig.DownSQL != "DROP TABLE a;" {
		t.Errorf("unexpected down SQL: %q", mig.DownSQL)
	}
}

func TestSplitSQL(t *testing.T) {
	sql := `-- comment line
CREATE TABLE a (
    id text PRIMARY KEY
);

CREATE INDEX a_idx ON a (id);
`
	statements := splitSQL(sql)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(statements), statements)
	}
	if !strings.HasPrefix(statements[0], "CREATE TABLE a") {
		t.Errorf("unexpected first statement: %q", statements[0])
	}
	if statements[1] != "CREATE INDEX a_idx ON a (id)" {
		t.Errorf("unexpected second statement: %q", statements[1])
	}
}

func TestSplitSQL_QuotedSemicolons(t *testing.T) {
	t.Run("dollar-quoted block stays one statement", func(t *testing.T) {
		sql := `DO $$ BEGIN
    CREATE TYPE mood AS ENUM ('happy', 'sad');
EXCEPTION WHEN duplicate_object THEN NULL;
END $$;

CREATE TABLE b (
    id text PRIMARY KEY
);
`
		statements := splitSQL(sql)
		if len(statements) != 2 {
			t.Fatalf("expected 2 statements, got %d: %v", len(statements), statements)
		}
		if !strings.HasPrefix(statements[0], "DO $$ BEGIN") || !strings.HasSuffix(statements[0], "END $$") {
			t.Errorf("expected intact DO block, got %q", statements[0])
		}
		if !strings.Contains(statements[0], "CREATE TYPE mood AS ENUM ('happy', 'sad');") {
			t.Errorf("expected CREATE TYPE inside the DO block, got %q", statements[0])
		}
		if !strings.HasPrefix(statements[1], "CREATE TABLE b") {
			t.Errorf("unexpected second statement: %q", statements[1])
		}
	})

	t.Run("semicolon inside string literal", func(t *testing.T) {
		statements := splitSQL(`INSERT INTO t (v) VALUES ('a;b');`)
		if len(statements) != 1 {
			t.Fatalf("expected 1 statement, got %d: %v", len(statements), statements)
		}
		if statements[0] != `INSERT INTO t (v) VALUES ('a;b')` {
			t.Errorf("unexpected statement: %q", statements[0])
		}
	})
}
