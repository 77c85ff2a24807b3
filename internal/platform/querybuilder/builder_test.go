package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelect_ToSQL(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("id", "name").
		From("squads").
		Where(Eq("owner_id", "u-1"), IsNull("deleted_at")).
		OrderBy("created_at DESC").
		Limit(20).
		Offset(40).
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "SELECT id, name FROM squads WHERE owner_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC LIMIT 20 OFFSET 40"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"u-1"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestSelect_InRenumbersPlaceholders(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("id").
		From("squad_members").
		Where(Eq("squad_id", "s-1"), In("role", []any{"owner", "member"})).
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "SELECT id FROM squad_members WHERE squad_id = $1 AND role IN ($2, $3)"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"s-1", "owner", "member"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestSelect_EmptyInMatchesNothing(t *testing.T) {
	t.Parallel()

	sql, _, err := Select("id").From("users").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}
	if want := "SELECT id FROM users WHERE 1=0"; sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
}

func TestInsert_WithSuffix(t *testing.T) {
	t.Parallel()

	sql, args, err := InsertInto("chat_messages").
		Columns("id", "room_id", "body").
		Values("m-1", "r-1", "hello").
		Suffix("RETURNING created_at").
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "INSERT INTO chat_messages (id, room_id, body) VALUES ($1, $2, $3) RETURNING created_at"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if len(args) != 3 {
		t.Fatalf("args = %v", args)
	}
}

func TestUpdate_SetExprAndWhere(t *testing.T) {
	t.Parallel()

	sql, args, err := Update("squad_members").
		Set("role", "owner").
		SetExpr("updated_at", "NOW()").
		Where(Eq("squad_id", "s-1"), Eq("user_id", "u-2")).
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "UPDATE squad_members SET role = $1, updated_at = NOW() WHERE squad_id = $2 AND user_id = $3"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"owner", "s-1", "u-2"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestDelete_RequiresWhere(t *testing.T) {
	t.Parallel()

	if _, _, err := DeleteFrom("score_entries").ToSQL(); err == nil {
		t.Fatal("expected error for delete without conditions")
	}

	sql, args, err := DeleteFrom("score_entries").
		Where(Eq("leaderboard_id", "lb-1"), Eq("user_id", "u-2")).
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "DELETE FROM score_entries WHERE leaderboard_id = $1 AND user_id = $2"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"lb-1", "u-2"}) {
		t.Fatalf("args = %v", args)
	}
}

func TestInsertModel_ReadsDBTags(t *testing.T) {
	t.Parallel()

	type row struct {
		ID      string `db:"id"`
		Name    string `db:"name"`
		Skipped string `db:"-"`
		NoTag   string
	}

	sql, args, err := InsertModel("squads", row{ID: "s-1", Name: "alpha"}, "")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}

	want := "INSERT INTO squads (id, name) VALUES ($1, $2)"
	if sql != want {
		t.Fatalf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"s-1", "alpha"}) {
		t.Fatalf("args = %v", args)
	}
}
