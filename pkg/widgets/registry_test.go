package widgets

import (
	"testing"

	"github.com/goliatone/go-formfields/pkg/field"
)

func TestResolveExplicitComponentWins(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	f := field.NewSwitcher("Active", field.Component("fancy-toggle"))
	if got, ok := reg.Resolve(f); !ok || got != "fancy-toggle" {
		t.Fatalf("expected explicit component to win, got %q (ok=%v)", got, ok)
	}
}

func TestResolveBuiltins(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	cases := []struct {
		name   string
		field  field.Field
		expect string
	}{
		{name: "text", field: field.NewText("Title"), expect: WidgetText},
		{name: "rich text", field: field.NewText("Body", field.AllowHTML()), expect: WidgetRichText},
		{name: "number", field: field.NewNumber("Views"), expect: WidgetNumber},
		{name: "password", field: field.NewPassword("Password"), expect: WidgetPassword},
		{name: "select", field: field.NewSelect("Status"), expect: WidgetSelect},
		{name: "multi select", field: field.NewSelect("Labels", field.Multiple()), expect: WidgetMultiSelect},
		{name: "belongs to", field: field.NewBelongsTo("Author"), expect: WidgetSelect},
		{name: "belongs to many", field: field.NewBelongsToMany("Tags"), expect: WidgetMultiSelect},
		{name: "date", field: field.NewDate("Published At"), expect: WidgetDate},
		{name: "datetime", field: field.NewDate("Starts At", field.WithTime()), expect: WidgetDateTime},
		{name: "switcher", field: field.NewSwitcher("Active"), expect: WidgetSwitcher},
		{name: "file", field: field.NewFile("Avatar"), expect: WidgetFile},
		{name: "has one", field: field.NewHasOne("Profile", field.Fields(field.NewText("Bio"))), expect: WidgetHasOne},
		{name: "has many", field: field.NewHasMany("Comments", field.Fields(field.NewText("Body"))), expect: WidgetHasMany},
		{name: "resource mode", field: field.NewHasMany("Comments", field.ResourceMode()), expect: WidgetResourceTable},
		{name: "group", field: field.NewGroup("Meta"), expect: WidgetGroup},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := reg.Resolve(tc.field)
			if !ok || got != tc.expect {
				t.Fatalf("Resolve() = %q (ok=%v), want %q", got, ok, tc.expect)
			}
		})
	}
}

func TestRegisterCustomPriority(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register("markdown", 95, func(f field.Field) bool { return f.FieldName() == "body" })
	if got, _ := reg.Resolve(field.NewText("Body", field.AllowHTML())); got != "markdown" {
		t.Fatalf("custom matcher lost: %q", got)
	}

	empty := &Registry{}
	if _, ok := empty.Resolve(field.NewText("Title")); ok {
		t.Fatalf("empty registry resolved a component")
	}
}

func TestRegisterTiesKeepRegistrationOrder(t *testing.T) {
	t.Parallel()

	reg := &Registry{}
	always := func(field.Field) bool { return true }
	reg.Register("second-low", 1, always)
	reg.Register("first", 5, always)
	reg.Register("second", 5, always)
	reg.Register("  ", 10, always)

	if got, _ := reg.Resolve(field.NewText("Title")); got != "first" {
		t.Fatalf("Resolve() = %q, want first", got)
	}
}
