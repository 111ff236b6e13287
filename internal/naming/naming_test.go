package naming

import "testing"

func TestConventions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{name: "field from label", fn: FieldFromLabel, in: "Created At", want: "created_at"},
		{name: "camel label", fn: Camel, in: "Blog Comments", want: "blogComments"},
		{name: "foreign key appended", fn: WithForeignKey, in: "author", want: "author_id"},
		{name: "foreign key snake", fn: WithForeignKey, in: "blogAuthor", want: "blog_author_id"},
		{name: "foreign key kept", fn: WithForeignKey, in: "owner_id", want: "owner_id"},
		{name: "relation stripped", fn: RelationName, in: "blog_author_id", want: "blogAuthor"},
		{name: "relation untouched", fn: RelationName, in: "comments", want: "comments"},
		{name: "resource key", fn: ResourceKey, in: "comments", want: "comment-resource"},
		{name: "resource key camel", fn: ResourceKey, in: "blogAuthor", want: "blog-author-resource"},
		{name: "resource key empty", fn: ResourceKey, in: "  ", want: ""},
		{name: "table", fn: Table, in: "Category", want: "categories"},
		{name: "slug", fn: Slug, in: "Only Active", want: "only-active"},
		{name: "label", fn: Label, in: "publishedAt", want: "Published At"},
		{name: "label snake", fn: Label, in: "author_id", want: "Author Id"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.fn(tc.in); got != tc.want {
				t.Fatalf("%s(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
			}
		})
	}
}

func TestRelationRoundTrip(t *testing.T) {
	t.Parallel()

	for _, explicit := range []string{"author", "blogAuthor", "primaryContactPerson"} {
		field := WithForeignKey(Camel(explicit))
		if !HasForeignKey(field) {
			t.Fatalf("expected %q to carry the foreign key marker", field)
		}
		if got := RelationName(field); got != Camel(explicit) {
			t.Fatalf("round trip for %q: got %q", explicit, got)
		}
	}
}
