package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfields/pkg/orchestrator"
)

const definitions = `resources:
  - name: Comment
    titleField: body
    fields:
      - kind: text
        label: Body
  - name: Post
    perPage: 5
    fields:
      - kind: text
        label: Title
      - kind: select
        label: Status
        choices:
          - {value: draft, label: Draft}
      - kind: has-many
        label: Comments
        hideOn: [index]
    filters:
      - kind: is_not_empty
        label: Title
    tags:
      - label: Drafts
        where:
          - {column: status, value: draft}
`

func schemaDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "blog.yaml"), []byte(definitions), 0o600); err != nil {
		t.Fatalf("write definitions: %v", err)
	}
	return dir
}

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("formfields %v: %v\n%s", args, err, out.String())
	}
	return out.Bytes()
}

func TestResourcesCommand(t *testing.T) {
	out := run(t, "resources", "--schema", schemaDir(t))

	var got []resourceSummary
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	keys := make([]string, 0, len(got))
	for _, r := range got {
		keys = append(keys, r.Key)
	}
	if diff := cmp.Diff([]string{"comment-resource", "post-resource"}, keys); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
}

func TestQueryCommand(t *testing.T) {
	out := run(t, "query", "--schema", schemaDir(t),
		"--resource", "post-resource",
		"--tag", "drafts",
		"--input", "filters[is_not_empty_title]=1&page=2",
	)

	var got statement
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	want := statement{
		SQL:  "SELECT * FROM posts WHERE status = ? AND (title IS NOT NULL AND title != ? AND title != ?) ORDER BY id DESC LIMIT 5 OFFSET 5",
		Args: []any{"draft", "", float64(0)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("statement (-want +got):\n%s", diff)
	}
}

func TestFormCommand(t *testing.T) {
	dir := schemaDir(t)
	record := filepath.Join(dir, "post.json")
	if err := os.WriteFile(record, []byte(`{"attributes": {"id": 1, "title": "Stored", "status": "draft"}}`), 0o600); err != nil {
		t.Fatalf("write record: %v", err)
	}

	out := run(t, "form", "--schema", dir,
		"--resource", "post-resource",
		"--record", record,
		"--old", "title=Changed&comments[1][body]=second",
	)

	var view orchestrator.FormView
	if err := json.Unmarshal(out, &view); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if view.Action != "edit" || len(view.Fields) != 3 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Fields[0].Value != "Changed" {
		t.Fatalf("title = %v", view.Fields[0].Value)
	}
	comments := view.Fields[2]
	if len(comments.Rows) != 2 || comments.Rows[1].Fields[0].Value != "second" {
		t.Fatalf("unexpected rows: %+v", comments.Rows)
	}
}

func TestIndexCommand(t *testing.T) {
	dir := schemaDir(t)
	dsn := filepath.Join(dir, "blog.db")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE posts (id INTEGER PRIMARY KEY, title TEXT, status TEXT)`,
		`INSERT INTO posts (id, title, status) VALUES (1, 'a', 'draft'), (2, 'b', 'published')`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec: %v", err)
		}
	}
	db.Close()

	out := run(t, "index", "--schema", dir, "--resource", "post-resource", "--db", dsn, "--tag", "drafts")

	var view orchestrator.IndexView
	if err := json.Unmarshal(out, &view); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(view.Rows) != 1 || view.Rows[0].Fields[1].Display != "Draft" {
		t.Fatalf("unexpected rows: %+v", view.Rows)
	}
}

func TestMissingResource(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"form", "--schema", schemaDir(t), "--resource", "nope"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for an unknown resource")
	}
}
