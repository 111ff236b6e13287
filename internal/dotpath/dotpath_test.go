package dotpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"cta.headline": "flat",
		"author":       map[string]any{"email": "a@example.com"},
		"comments": []any{
			map[string]any{"body": "first"},
			map[string]any{"body": "second"},
		},
		"filters": map[string]any{"is_not_empty_title": "1"},
	}

	cases := map[string]any{
		"cta.headline":               "flat",
		"author.email":               "a@example.com",
		"comments.1.body":            "second",
		"filters.is_not_empty_title": "1",
	}
	for path, want := range cases {
		got, ok := Lookup(values, path)
		if !ok {
			t.Fatalf("expected %q to resolve", path)
		}
		if got != want {
			t.Fatalf("%q: got %v, want %v", path, got, want)
		}
	}

	for _, missing := range []string{"", "author.name", "comments.5.body", "comments.x"} {
		if _, ok := Lookup(values, missing); ok {
			t.Fatalf("expected %q to be absent", missing)
		}
	}
}

func TestSetAndBrackets(t *testing.T) {
	t.Parallel()

	values := map[string]any{}
	Set(values, "comments[0][body]", "hello")
	Set(values, "filters[is_not_empty_title]", "1")

	want := map[string]any{
		"comments": map[string]any{"0": map[string]any{"body": "hello"}},
		"filters":  map[string]any{"is_not_empty_title": "1"},
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}

	if got, ok := Lookup(values, "comments.0.body"); !ok || got != "hello" {
		t.Fatalf("expected numeric map key lookup, got %v (ok=%v)", got, ok)
	}
	if got := FromBrackets("tags[]"); got != "tags" {
		t.Fatalf("FromBrackets(tags[]) = %q", got)
	}
}

func TestLookupTypedContainers(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"labels": map[string]string{"en": "Post"},
		"tags":   []string{"go", "admin"},
		"rows":   []map[string]any{{"id": 7}},
	}
	if got, ok := Lookup(values, "labels.en"); !ok || got != "Post" {
		t.Fatalf("labels.en = %v (ok=%v)", got, ok)
	}
	if got, ok := Lookup(values, "tags.1"); !ok || got != "admin" {
		t.Fatalf("tags.1 = %v (ok=%v)", got, ok)
	}
	if got, ok := Lookup(values, "rows.0.id"); !ok || got != 7 {
		t.Fatalf("rows.0.id = %v (ok=%v)", got, ok)
	}
	if _, ok := Lookup(values, "tags.-1"); ok {
		t.Fatalf("expected negative index to be absent")
	}
}
