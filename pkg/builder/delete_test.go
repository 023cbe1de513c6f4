package builder

import (
	"strings"
	"testing"
)

func TestDeleteQuery_ToSQL(t *testing.T) {
	db := New(nil)

	t.Run("delete with where", func(t *testing.T) {
		sql, args, err := Delete[entry](db).
			Where(Eq("id", "e1")).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		expected := `DELETE FROM "entry" WHERE id = $1`
		if sql != expected {
			t.Errorf("expected %q, got %q", expected, sql)
		}
		if len(args) != 1 {
			t.Errorf("expected 1 arg, got %d", len(args))
		}
	})

	t.Run("delete expired rows", func(t *testing.T) {
		sql, _, err := Delete[entry](db).
			Where(Lt("created_at", "2026-01-01")).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if !strings.Contains(sql, "created_at < $1") {
			t.Errorf("expected range condition, got %q", sql)
		}
	})

	t.Run("reserved table name is quoted", func(t *testing.T) {
		sql, _, err := Delete[user](db).
			Where(Eq("id", "u1")).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if !strings.HasPrefix(sql, `DELETE FROM "user"`) {
			t.Errorf("expected quoted table name, got %q", sql)
		}
	})

	t.Run("returning", func(t *testing.T) {
		sql, _, err := Delete[entry](db).
			Where(Eq("user_id", "u1")).
			Returning("id").
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if !strings.HasSuffix(sql, "RETURNING id") {
			t.Errorf("expected RETURNING clause, got %q", sql)
		}
	})
}
