package builder

import (
	"strings"
	"testing"
	"time"
)

func TestInsertQuery_ToSQL(t *testing.T) {
	db := New(nil)

	t.Run("defaulted zero columns are omitted", func(t *testing.T) {
		sql, args, err := Insert[entry](db).
			Values(entry{ID: "e1", UserID: "u1", Title: "hello"}).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}

		// likes_count and created_at are zero and have defaults, so the
		// server-side defaults must apply.
		expected := `INSERT INTO "entry" (id, user_id, title) VALUES ($1, $2, $3)`
		if sql != expected {
			t.Errorf("expected %q, got %q", expected, sql)
		}
		if len(args) != 3 {
			t.Errorf("expected 3 args, got %d", len(args))
		}
	})

	t.Run("set values override defaults", func(t *testing.T) {
		now := time.Now()
		sql, args, err := Insert[entry](db).
			Values(entry{ID: "e1", UserID: "u1", Title: "hello", LikesCount: 7, CreatedAt: now}).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}

		if !strings.Contains(sql, "likes_count") || !strings.Contains(sql, "created_at") {
			t.Errorf("expected non-zero defaulted columns to be included, got %q", sql)
		}
		if len(args) != 5 {
			t.Errorf("expected 5 args, got %d", len(args))
		}
	})

	t.Run("reserved table name is quoted", func(t *testing.T) {
		sql, _, err := Insert[user](db).
			Values(user{ID: "u1", Email: "a@b.c", Username: "amira"}).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if !strings.HasPrefix(sql, `INSERT INTO "user" `) {
			t.Errorf("expected quoted table name, got %q", sql)
		}
	})

	t.Run("multi-row insert", func(t *testing.T) {
		sql, args, err := Insert[entry](db).
			Values(
				entry{ID: "e1", UserID: "u1", Title: "first"},
				entry{ID: "e2", UserID: "u1", Title: "second"},
			).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if !strings.Contains(sql, "($1, $2, $3), ($4, $5, $6)") {
			t.Errorf("expected two placeholder groups, got %q", sql)
		}
		if len(args) != 6 {
			t.Errorf("expected 6 args, got %d", len(args))
		}
	})

	t.Run("on conflict do nothing", func(t *testing.T) {
		sql, _, err := Insert[entry](db).
			Values(entry{ID: "e1", UserID: "u1", Title: "hello"}).
			OnConflictDoNothing("id").
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if !strings.Contains(sql, "ON CONFLICT (id) DO NOTHING") {
			t.Errorf("expected ON CONFLICT clause, got %q", sql)
		}
	})

	t.Run("returning", func(t *testing.T) {
		sql, _, err := Insert[entry](db).
			Values(entry{ID: "e1", UserID: "u1", Title: "hello"}).
			Returning("*").
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if !strings.HasSuffix(sql, "RETURNING *") {
			t.Errorf("expected RETURNING clause, got %q", sql)
		}
	})

	t.Run("no values", func(t *testing.T) {
		if _, _, err := Insert[entry](db).ToSQL(); err == nil {
			t.Fatal("expected error for insert with no values")
		}
	})
}

type clip struct {
	ID       string        `db:"id,text,primaryKey"`
	Visible  *bool         `db:"visible,boolean,notNull,default(true)"`
	Settings *clipSettings `db:"settings,jsonb,notNull,default(jsonb_build_object('searchable', true))"`
}

type clipSettings struct {
	Searchable bool `json:"searchable"`
}

func TestInsertQuery_PointerDefaults(t *testing.T) {
	db := New(nil)

	t.Run("nil pointers defer to column defaults", func(t *testing.T) {
		sql, args, err := Insert[clip](db).
			Values(clip{ID: "c1"}).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		expected := `INSERT INTO "clip" (id) VALUES ($1)`
		if sql != expected {
			t.Errorf("expected %q, got %q", expected, sql)
		}
		if len(args) != 1 {
			t.Errorf("expected 1 arg, got %d", len(args))
		}
	})

	t.Run("explicit false survives a true default", func(t *testing.T) {
		visible := false
		sql, args, err := Insert[clip](db).
			Values(clip{ID: "c1", Visible: &visible}).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if !strings.Contains(sql, "visible") {
			t.Fatalf("expected visible column to be written, got %q", sql)
		}
		if len(args) != 2 {
			t.Fatalf("expected 2 args, got %d", len(args))
		}
		got, ok := args[1].(*bool)
		if !ok || got == nil || *got {
			t.Errorf("expected explicit false arg, got %v", args[1])
		}
	})

	t.Run("explicit all-false document survives its default", func(t *testing.T) {
		sql, args, err := Insert[clip](db).
			Values(clip{ID: "c1", Settings: &clipSettings{}}).
			ToSQL()
		if err != nil {
			t.Fatalf("ToSQL failed: %v", err)
		}
		if !strings.Contains(sql, "settings") {
			t.Fatalf("expected settings column to be written, got %q", sql)
		}
		jsonArg, ok := args[1].(string)
		if !ok {
			t.Fatalf("expected JSONB arg to be a string, got %T", args[1])
		}
		if !strings.Contains(jsonArg, `"searchable":false`) {
			t.Errorf("unexpected JSON payload: %s", jsonArg)
		}
	})
}

type captioned struct {
	ID      string        `db:"id,text,primaryKey"`
	Caption captionRecord `db:"caption,jsonb,notNull"`
}

type captionRecord struct {
	FullText string   `json:"full_text"`
	Hashtags []string `json:"hashtags,omitempty"`
}

func TestStructToValues_JSONB(t *testing.T) {
	db := New(nil)

	sql, args, err := Insert[captioned](db).
		Values(captioned{ID: "c1", Caption: captionRecord{FullText: "sunset", Hashtags: []string{"sky"}}}).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL failed: %v", err)
	}
	if !strings.Contains(sql, "caption") {
		t.Errorf("expected caption column, got %q", sql)
	}

	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	jsonArg, ok := args[1].(string)
	if !ok {
		t.Fatalf("expected JSONB arg to be a string, got %T", args[1])
	}
	if !strings.Contains(jsonArg, `"full_text":"sunset"`) {
		t.Errorf("unexpected JSON payload: %s", jsonArg)
	}
}
