package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "week").
		From("matches").
		Where(Eq("week", 5), IsNull("result")).
		WhereIf(false, Eq("locked", true)).
		OrderBy("lockout_at", "id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, week FROM matches WHERE week = $1 AND result IS NULL ORDER BY lockout_at, id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != 5 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyIn(t *testing.T) {
	query, args, err := Select("id").From("predictions").Where(In("match_id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM predictions WHERE 1=0" || len(args) != 0 {
		t.Fatalf("unexpected query=%q args=%+v", query, args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("predictions").
		Columns("user_id", "match_id", "pick").
		Values(int64(1), int64(2), "HOME").
		Suffix("ON CONFLICT (user_id, match_id) DO UPDATE SET pick = EXCLUDED.pick RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO predictions (user_id, match_id, pick) VALUES ($1, $2, $3) ON CONFLICT (user_id, match_id) DO UPDATE SET pick = EXCLUDED.pick RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != "HOME" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("users").
		Set("points", 12).
		SetIf(false, "blanks", func() any { return 1 }).
		SetExpr("current_week", "GREATEST(current_week, ?)", 6).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(3))).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE users SET points = $1, current_week = GREATEST(current_week, $2), updated_at = NOW() WHERE id = $3 RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != 12 || args[1] != 6 || args[2] != int64(3) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel_SkipsReadonly(t *testing.T) {
	type row struct {
		ID   int64  `db:"id,readonly"`
		Name string `db:"name"`
		skip string
	}

	query, args, err := InsertModel("users", row{ID: 9, Name: "Ada", skip: "x"}, "RETURNING id")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}
	if query != "INSERT INTO users (name) VALUES ($1) RETURNING id" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 1 || args[0] != "Ada" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
