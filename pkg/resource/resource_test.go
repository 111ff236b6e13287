package resource

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/filter"
	"github.com/goliatone/go-formfields/pkg/model"
	"github.com/goliatone/go-formfields/pkg/query"
	"github.com/goliatone/go-formfields/pkg/querytag"
)

func names(fields []field.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.FieldName())
	}
	return out
}

func TestNewDerivesConventions(t *testing.T) {
	t.Parallel()

	res := New("BlogComment")
	if res.Key() != "blog-comment-resource" {
		t.Fatalf("Key() = %q", res.Key())
	}
	if res.Table() != "blog_comments" {
		t.Fatalf("Table() = %q", res.Table())
	}
	if res.Title() != "Blog Comments" {
		t.Fatalf("Title() = %q", res.Title())
	}
	if diff := cmp.Diff(DefaultActions, res.ActiveActions()); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestContextFields(t *testing.T) {
	t.Parallel()

	res := New("Post", Fields(
		field.NewText("Title"),
		field.NewText("Body", field.HideOnIndex()),
		field.NewPassword("Secret", field.HideOnDetail()),
		field.NewDate("Created At", field.HideOnForm()),
	))

	if diff := cmp.Diff([]string{"title", "secret", "created_at"}, names(res.IndexFields())); diff != "" {
		t.Fatalf("index fields (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"title", "body", "secret"}, names(res.FormFields())); diff != "" {
		t.Fatalf("form fields (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"title", "body", "created_at"}, names(res.DetailFields())); diff != "" {
		t.Fatalf("detail fields (-want +got):\n%s", diff)
	}
}

func TestRegistryResolvesRelations(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	comment := New("Comment", TitleField("body"), Fields(
		field.NewText("Body"),
		field.NewBelongsTo("Author"),
		field.NewDate("Created At", field.HideOnForm()),
	))
	reg.MustRegister(comment)

	comments := field.NewHasMany("Comments", field.WithRegistry(reg))
	post := New("Post", Fields(field.NewText("Title"), comments))
	reg.MustRegister(post)

	if got := len(comments.Fields()); got != len(comment.FormFields()) {
		t.Fatalf("inherited %d children, want %d", got, len(comment.FormFields()))
	}

	bound, ok := comments.Resource()
	if !ok || bound != field.Resource(comment) {
		t.Fatalf("Resource() = %v, %v", bound, ok)
	}
	if comments.ResourceTitleField() != "body" {
		t.Fatalf("ResourceTitleField() = %q", comments.ResourceTitleField())
	}

	body, ok := post.Field("comments.body")
	if !ok {
		t.Fatalf("expected nested field lookup")
	}
	if body.Name(2) != "comments[2][body]" {
		t.Fatalf("nested name = %q", body.Name(2))
	}

	// relation fields in registered resources resolve without an explicit
	// registry option
	authorField, _ := comment.Field("author_id")
	if _, ok := authorField.Resource(); ok {
		t.Fatalf("author-resource is not registered")
	}
	if authorField.(*field.BelongsTo).BindingState() != field.ResolutionFailed {
		t.Fatalf("state = %v", authorField.(*field.BelongsTo).BindingState())
	}
}

func TestRegistryRejectsDuplicatesAndSharedFields(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustRegister(New("Post"))
	if err := reg.Register(New("Post")); err == nil {
		t.Fatalf("expected duplicate error")
	}

	shared := field.NewText("Body")
	if err := reg.Register(New("Page", Fields(field.NewGroup("Main", field.Fields(shared)), field.NewGroup("Side", field.Fields(shared))))); !errors.Is(err, field.ErrCyclicTree) {
		t.Fatalf("expected ErrCyclicTree, got %v", err)
	}
	if reg.Has("page-resource") {
		t.Fatalf("failed registration must not be stored")
	}

	if _, err := reg.Resolve("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegistryValidate(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustRegister(New("User", Fields(
		field.NewHasOne("Profile", field.ResourceMode(), field.Fields(field.NewText("Bio"))),
	)))

	err := reg.Validate()
	var cfgErr *field.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Key != "profile-resource" {
		t.Fatalf("unexpected key %q", cfgErr.Key)
	}

	ok := NewRegistry()
	ok.MustRegister(New("Profile", Fields(field.NewText("Bio"))))
	ok.MustRegister(New("User", Fields(field.NewHasOne("Profile", field.ResourceMode()))))
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if diff := cmp.Diff([]string{"profile-resource", "user-resource"}, ok.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	policy := func(ability string, actor any, _ model.Model) bool {
		return actor == "admin" || ability == "show"
	}
	res := New("Post", Actions(ActionShow, ActionEdit), WithPolicy(policy))

	if err := res.Authorize(ActionCreate, "admin", nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("inactive action allowed: %v", err)
	}
	if err := res.Authorize(ActionEdit, "guest", nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("policy ignored: %v", err)
	}
	if err := res.Authorize(ActionEdit, "admin", nil); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if err := res.Authorize(ActionShow, "guest", nil); err != nil {
		t.Fatalf("Authorize show: %v", err)
	}
	if err := New("Page").Authorize(ActionDelete, nil, nil); err != nil {
		t.Fatalf("resource without policy: %v", err)
	}
}

func TestIndexQuery(t *testing.T) {
	t.Parallel()

	res := New("Post",
		Filters(filter.NewIsNotEmpty("Title"), filter.NewSelect("Status")),
		QueryTags(
			querytag.New("Featured", func(q query.Query) query.Query { return q.WhereEqual("featured", 1) }),
			querytag.New("Hidden", func(q query.Query) query.Query { return q.WhereEqual("hidden", 1) },
				querytag.CanSee(func(any) bool { return false })),
		),
		Sort("created_at", true),
	)
	req := model.NewRequest(map[string]any{"filters": map[string]any{"select_status": "draft"}}, nil)

	tests := []struct {
		tag  string
		want string
	}{
		{tag: "", want: "SELECT * FROM posts WHERE status = ? ORDER BY created_at DESC"},
		{tag: "featured", want: "SELECT * FROM posts WHERE featured = ? AND status = ? ORDER BY created_at DESC"},
		{tag: "hidden", want: "SELECT * FROM posts WHERE status = ? ORDER BY created_at DESC"},
	}
	for _, tt := range tests {
		got, _, err := res.IndexQuery(req, tt.tag, nil).ToSQL(query.SQLite)
		if err != nil {
			t.Fatalf("ToSQL: %v", err)
		}
		if got != tt.want {
			t.Fatalf("tag %q:\n got %s\nwant %s", tt.tag, got, tt.want)
		}
	}
}
