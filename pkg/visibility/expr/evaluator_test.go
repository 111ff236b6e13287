package expr

import (
	"testing"

	"github.com/goliatone/go-formfields/pkg/visibility"
)

func TestEvaluator(t *testing.T) {
	t.Parallel()

	record := map[string]any{"status": "published", "views": int64(120)}
	resolve := func(key string) (any, bool) {
		v, ok := record[key]
		return v, ok
	}

	tests := []struct {
		name string
		rule string
		ctx  visibility.Context
		want bool
	}{
		{name: "empty rule", rule: "  ", want: true},
		{name: "truthy", rule: "featured", ctx: visibility.Context{Values: map[string]any{"featured": true}}, want: true},
		{name: "negation", rule: "!featured", ctx: visibility.Context{Values: map[string]any{"featured": "0"}}, want: false},
		{name: "string bool", rule: "featured == true", ctx: visibility.Context{Values: map[string]any{"featured": "true"}}, want: true},
		{name: "string equality", rule: `status == "rejected"`, ctx: visibility.Context{Values: map[string]any{"status": "rejected"}}, want: true},
		{name: "bare identifier literal", rule: `status != draft`, ctx: visibility.Context{Values: map[string]any{"status": "draft"}}, want: false},
		{name: "flattened dotted key", rule: `author.email != ""`, ctx: visibility.Context{Values: map[string]any{"author.email": "a@b.c"}}, want: true},
		{name: "nested map", rule: `author.email == "a@b.c"`, ctx: visibility.Context{Values: map[string]any{"author": map[string]any{"email": "a@b.c"}}}, want: true},
		{name: "indexed path", rule: `comments.1.body == "second"`, ctx: visibility.Context{Values: map[string]any{"comments": []any{map[string]any{"body": "first"}, map[string]any{"body": "second"}}}}, want: true},
		{name: "missing is null", rule: "reason == null", want: true},
		{name: "present is not null", rule: "featured != null", ctx: visibility.Context{Values: map[string]any{"featured": false}}, want: true},
		{name: "greater or equal", rule: "score >= 3", ctx: visibility.Context{Values: map[string]any{"score": "3"}}, want: true},
		{name: "greater", rule: "score > 3", ctx: visibility.Context{Values: map[string]any{"score": 3}}, want: false},
		{name: "less", rule: "score<3", ctx: visibility.Context{Values: map[string]any{"score": 2.5}}, want: true},
		{name: "less or equal missing", rule: "score <= 3", want: false},
		{name: "missing is not zero", rule: "score == 0", want: false},
		{name: "missing differs from zero", rule: "score != 0", want: true},
		{name: "blank is not zero", rule: "score == 0", ctx: visibility.Context{Values: map[string]any{"score": " "}}, want: false},
		{name: "text is not zero", rule: "score == 0", ctx: visibility.Context{Values: map[string]any{"score": "abc"}}, want: false},
		{name: "text differs from zero", rule: "score != 0", ctx: visibility.Context{Values: map[string]any{"score": "abc"}}, want: true},
		{name: "false is not zero", rule: "score == 0", ctx: visibility.Context{Values: map[string]any{"score": false}}, want: false},
		{name: "zero string equals zero", rule: "score == 0", ctx: visibility.Context{Values: map[string]any{"score": "0"}}, want: true},
		{name: "string ordering", rule: `published_at < "2024-06-01"`, ctx: visibility.Context{Values: map[string]any{"published_at": "2024-03-05"}}, want: true},
		{name: "resolve fallback", rule: `status == "published" && views > 100`, ctx: visibility.Context{Resolve: resolve}, want: true},
		{name: "values shadow resolve", rule: `status == "published"`, ctx: visibility.Context{Values: map[string]any{"status": "draft"}, Resolve: resolve}, want: false},
		{name: "extras", rule: `extras.role == "admin"`, ctx: visibility.Context{Extras: map[string]any{"role": "admin"}}, want: true},
		{name: "conjunction mismatch", rule: `featured && role == "admin"`, ctx: visibility.Context{Values: map[string]any{"featured": true, "role": "editor"}}, want: false},
		{name: "disjunction", rule: `featured || (role == "admin")`, ctx: visibility.Context{Values: map[string]any{"featured": false, "role": "admin"}}, want: true},
	}

	eval := New()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := eval.Eval("field", tt.rule, tt.ctx)
			if err != nil {
				t.Fatalf("Eval(%q) returned error: %v", tt.rule, err)
			}
			if got != tt.want {
				t.Fatalf("Eval(%q) = %v, want %v", tt.rule, got, tt.want)
			}
		})
	}
}

func TestEvaluatorErrors(t *testing.T) {
	t.Parallel()

	eval := New()
	rules := []string{
		`status = "draft"`,
		`a & b`,
		`status == "open`,
		`(featured`,
		`score >`,
		`reason > null`,
		`featured > true`,
		`score == =`,
		`"open" == status`,
	}
	for _, rule := range rules {
		if _, err := eval.Eval("field", rule, visibility.Context{Values: map[string]any{"featured": true}}); err == nil {
			t.Fatalf("Eval(%q) expected error", rule)
		}
	}
}

func TestCompileReuse(t *testing.T) {
	t.Parallel()

	pred, err := Compile(`views > -1 && title != ""`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, tc := range []struct {
		values map[string]any
		want   bool
	}{
		{values: map[string]any{"views": uint8(0), "title": "x"}, want: true},
		{values: map[string]any{"views": -2, "title": "x"}, want: false},
		{values: map[string]any{"title": "x"}, want: false},
	} {
		got, err := pred(visibility.Context{Values: tc.values})
		if err != nil {
			t.Fatalf("eval %v: %v", tc.values, err)
		}
		if got != tc.want {
			t.Fatalf("eval %v = %v, want %v", tc.values, got, tc.want)
		}
	}
}
