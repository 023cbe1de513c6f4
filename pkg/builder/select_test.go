package builder

import (
	"testing"
	"time"
)

// user exercises the reserved-word quoting path: "user" must be quoted in
// every generated statement.
type user struct {
	ID        string    `db:"id,text,primaryKey"`
	Email     string    `db:"email,text,notNull,unique"`
	Username  string    `db:"username,text,notNull,unique"`
	CreatedAt time.Time `db:"created_at,timestamp,notNull,default(now())"`
}

type entry struct {
	ID         string    `db:"id,text,primaryKey"`
	UserID     string    `db:"user_id,text,notNull,fk(user.id),onDelete(cascade)"`
	Title      string    `db:"title,text,notNull"`
	LikesCount int       `db:"likes_count,integer,notNull,default(0)"`
	CreatedAt  time.Time `db:"created_at,timestamp,notNull,default(now())"`
}

func TestSelectQuery_ToSQL(t *testing.T) {
	db := New(nil)

	t.Run("basic select", func(t *testing.T) {
		sql, args, err := Select[entry](db).ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if sql != `SELECT * FROM "entry"` {
			t.Errorf("unexpected SQL: %q", sql)
		}
		if len(args) != 0 {
			t.Errorf("expected no args, got %d", len(args))
		}
	})

	t.Run("reserved table name is quoted", func(t *testing.T) {
		sql, _, err := Select[user](db).Where(Eq("email", "a@b.c")).ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		expected := `SELECT * FROM "user" WHERE email = $1`
		if sql != expected {
			t.Errorf("expected %q, got %q", expected, sql)
		}
	})

	t.Run("order limit offset", func(t *testing.T) {
		sql, args, err := Select[entry](db).
			Where(Eq("user_id", "u1")).
			OrderByDesc("created_at").
			Limit(20).
			Offset(40).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		expected := `SELECT * FROM "entry" WHERE user_id = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 40`
		if sql != expected {
			t.Errorf("expected %q, got %q", expected, sql)
		}
		if len(args) != 1 {
			t.Errorf("expected 1 arg, got %d", len(args))
		}
	})

	t.Run("columns and distinct", func(t *testing.T) {
		sql, _, err := Select[entry](db).
			Columns("id", "title").
			Distinct().
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if sql != `SELECT DISTINCT id, title FROM "entry"` {
			t.Errorf("unexpected SQL: %q", sql)
		}
	})

	t.Run("for update", func(t *testing.T) {
		sql, _, err := Select[entry](db).
			Where(Eq("id", "e1")).
			ForUpdate().
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if sql != `SELECT * FROM "entry" WHERE id = $1 FOR UPDATE` {
			t.Errorf("unexpected SQL: %q", sql)
		}
	})

	t.Run("and or chaining", func(t *testing.T) {
		sql, args, err := Select[entry](db).
			Where(Eq("user_id", "u1")).
			And(Gt("likes_count", 5)).
			Or(Eq("title", "pinned")).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		expected := `SELECT * FROM "entry" WHERE user_id = $1 AND likes_count > $2 OR title = $3`
		if sql != expected {
			t.Errorf("expected %q, got %q", expected, sql)
		}
		if len(args) != 3 {
			t.Errorf("expected 3 args, got %d", len(args))
		}
	})
}
