package filter

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/model"
	"github.com/goliatone/go-formfields/pkg/query"
)

func openPosts(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	stmts := []string{
		`CREATE TABLE posts (
			id INTEGER PRIMARY KEY,
			title TEXT,
			status TEXT,
			active TEXT,
			author_id INTEGER,
			created_at TEXT
		)`,
		`INSERT INTO posts (id, title, status, active, author_id, created_at) VALUES
			(1, NULL, 'draft',     '0', 1, '2024-03-04 09:00:00'),
			(2, '',   'published', '1', 2, '2024-03-05 10:00:00'),
			(3, 0,    'published', '1', 1, '2024-03-05 23:30:00'),
			(4, 'x',  'draft',     '1', 2, '2024-03-07 08:00:00')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}
	return db
}

func ids(t *testing.T, db *sql.DB, q query.Query) []int64 {
	t.Helper()
	rows, err := query.Select(context.Background(), db, query.SQLite, q.OrderBy("id", false))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["id"].(int64))
	}
	return out
}

func filtersRequest(values map[string]any) model.Request {
	return model.NewRequest(map[string]any{Param: values}, nil)
}

func TestParamNaming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filter Filter
		want   string
	}{
		{NewIsNotEmpty("Title"), "filters[is_not_empty_title]"},
		{NewText("Title"), "filters[text_title]"},
		{NewBelongsTo("Author"), "filters[belongs_to_author_id]"},
		{NewDateRange("Created At"), "filters[date_range_created_at]"},
	}
	for _, tt := range tests {
		if got := tt.filter.ParamName(); got != tt.want {
			t.Fatalf("ParamName() = %q, want %q", got, tt.want)
		}
	}
}

func TestIsNotEmptyKeepsOnlyPresentValues(t *testing.T) {
	t.Parallel()

	db := openPosts(t)
	f := NewIsNotEmpty("Title")
	base := query.From("posts", "id")

	got := ids(t, db, f.Apply(base, filtersRequest(map[string]any{"is_not_empty_title": "1"})))
	if diff := cmp.Diff([]int64{4}, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	sqlText, _, err := f.Apply(base, filtersRequest(map[string]any{"is_not_empty_title": "1"})).ToSQL(query.SQLite)
	if err != nil {
		t.Fatalf("ToSQL: %v", err)
	}
	want := "SELECT id FROM posts WHERE (title IS NOT NULL AND title != ? AND title != ?)"
	if sqlText != want {
		t.Fatalf("sql = %s", sqlText)
	}

	falsy := f.Apply(base, filtersRequest(map[string]any{"is_not_empty_title": "0"}))
	if diff := cmp.Diff([]int64{1, 2, 3, 4}, ids(t, db, falsy)); diff != "" {
		t.Fatalf("falsy value must not filter (-want +got):\n%s", diff)
	}
}

func TestFiltersWithoutValueAreNoOps(t *testing.T) {
	t.Parallel()

	db := openPosts(t)
	base := query.From("posts", "id").WhereNotNull("status")
	baseSQL, baseArgs, _ := base.ToSQL(query.SQLite)
	baseIDs := ids(t, db, base)

	filters := []Filter{
		NewText("Title"),
		NewSelect("Status"),
		NewSwitch("Active"),
		NewIsNotEmpty("Title"),
		NewDate("Created At"),
		NewDateRange("Created At"),
		NewBelongsTo("Author"),
	}
	requests := []model.Request{
		nil,
		model.NewRequest(nil, nil),
		filtersRequest(map[string]any{"text_title": "", "select_status": "  ", "date_range_created_at": map[string]any{"from": ""}}),
	}

	for _, req := range requests {
		for _, f := range filters {
			got := f.Apply(base, req)
			gotSQL, gotArgs, err := got.ToSQL(query.SQLite)
			if err != nil {
				t.Fatalf("%s: ToSQL: %v", f.Slug(), err)
			}
			if gotSQL != baseSQL || !cmp.Equal(gotArgs, baseArgs) {
				t.Fatalf("%s: query changed: %s", f.Slug(), gotSQL)
			}
			if diff := cmp.Diff(baseIDs, ids(t, db, got)); diff != "" {
				t.Fatalf("%s: result set changed (-want +got):\n%s", f.Slug(), diff)
			}
		}
	}
}

func TestFilterKinds(t *testing.T) {
	t.Parallel()

	db := openPosts(t)
	base := query.From("posts", "id")

	tests := []struct {
		name   string
		filter Filter
		values map[string]any
		want   []int64
	}{
		{name: "text", filter: NewText("Title"), values: map[string]any{"text_title": "x"}, want: []int64{4}},
		{name: "text escapes wildcards", filter: NewText("Title"), values: map[string]any{"text_title": "%"}, want: []int64{}},
		{name: "select", filter: NewSelect("Status"), values: map[string]any{"select_status": "draft"}, want: []int64{1, 4}},
		{name: "select multiple", filter: NewSelect("Status", field.Multiple()), values: map[string]any{"select_status": []any{"draft", "published"}}, want: []int64{1, 2, 3, 4}},
		{name: "switch on", filter: NewSwitch("Active"), values: map[string]any{"switch_active": "1"}, want: []int64{2, 3, 4}},
		{name: "switch off", filter: NewSwitch("Active"), values: map[string]any{"switch_active": "0"}, want: []int64{1}},
		{name: "date", filter: NewDate("Created At"), values: map[string]any{"date_created_at": "2024-03-05"}, want: []int64{2, 3}},
		{name: "date range", filter: NewDateRange("Created At"), values: map[string]any{"date_range_created_at": map[string]any{"from": "2024-03-05", "to": "2024-03-07"}}, want: []int64{2, 3, 4}},
		{name: "date range open end", filter: NewDateRange("Created At"), values: map[string]any{"date_range_created_at": map[string]any{"to": "2024-03-04"}}, want: []int64{1}},
		{name: "belongs to", filter: NewBelongsTo("Author"), values: map[string]any{"belongs_to_author_id": "2"}, want: []int64{2, 4}},
	}

	for _, tt := range tests {
		got := ids(t, db, tt.filter.Apply(base, filtersRequest(tt.values)))
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("%s: rows mismatch (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestDefaultValueActivatesFilter(t *testing.T) {
	t.Parallel()

	db := openPosts(t)
	f := NewSelect("Status", field.Default("published"))
	got := ids(t, db, f.Apply(query.From("posts", "id"), nil))
	if diff := cmp.Diff([]int64{2, 3}, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyAndActive(t *testing.T) {
	t.Parallel()

	db := openPosts(t)
	filters := []Filter{NewSelect("Status"), NewIsNotEmpty("Title"), NewText("Title")}
	req := filtersRequest(map[string]any{"select_status": "draft", "is_not_empty_title": "1"})

	got := ids(t, db, Apply(query.From("posts", "id"), req, filters...))
	if diff := cmp.Diff([]int64{4}, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	active := Active(req, filters...)
	slugs := make([]string, 0, len(active))
	for _, f := range active {
		slugs = append(slugs, f.Slug())
	}
	if diff := cmp.Diff([]string{"select_status", "is_not_empty_title"}, slugs); diff != "" {
		t.Fatalf("active mismatch (-want +got):\n%s", diff)
	}
}

func TestParsedFormRequest(t *testing.T) {
	t.Parallel()

	db := openPosts(t)
	req := model.ParseForm(map[string][]string{"filters[is_not_empty_title]": {"1"}}, nil)
	got := ids(t, db, NewIsNotEmpty("Title").Apply(query.From("posts", "id"), req))
	if diff := cmp.Diff([]int64{4}, got); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}
