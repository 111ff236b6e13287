package visibility_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/model"
	"github.com/goliatone/go-formfields/pkg/visibility"
	"github.com/goliatone/go-formfields/pkg/visibility/expr"
)

type actor struct{ admin bool }

func isAdmin(a any) bool {
	u, ok := a.(actor)
	return ok && u.admin
}

func TestCheckerDefaultsToVisible(t *testing.T) {
	t.Parallel()

	checker := visibility.NewChecker(expr.New())
	ok, err := checker.Visible(field.NewText("Title"), visibility.Scope{})
	if err != nil || !ok {
		t.Fatalf("Visible() = %v, %v", ok, err)
	}
}

func TestCheckerCombinesPredicates(t *testing.T) {
	t.Parallel()

	reason := field.NewText("Reason",
		field.ShowWhen("status", "=", "rejected"),
		field.CanSee(isAdmin),
	)
	checker := visibility.NewChecker(expr.New())

	tests := []struct {
		name   string
		status string
		actor  any
		want   bool
	}{
		{name: "both pass", status: "rejected", actor: actor{admin: true}, want: true},
		{name: "condition fails", status: "published", actor: actor{admin: true}, want: false},
		{name: "actor rejected", status: "rejected", actor: actor{}, want: false},
		{name: "no actor", status: "rejected", want: false},
	}
	for _, tt := range tests {
		record := model.NewRecord(map[string]any{"status": tt.status})
		got, err := checker.Visible(reason, visibility.Scope{Model: record, Actor: tt.actor})
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: Visible() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCheckerDependentFieldValues(t *testing.T) {
	t.Parallel()

	reason := field.NewText("Reason", field.ShowWhen("status", "==", "rejected"))
	checker := visibility.NewChecker(expr.New())
	record := model.NewRecord(map[string]any{"status": "published"})

	ok, err := checker.Visible(reason, visibility.Scope{
		Model:  record,
		Values: map[string]any{"status": "rejected"},
	})
	if err != nil || !ok {
		t.Fatalf("current values must win over stored attributes: %v, %v", ok, err)
	}
}

func TestCheckerReevaluatesLiveState(t *testing.T) {
	t.Parallel()

	record := model.NewRecord(map[string]any{"views": 5})
	popular := field.NewText("Badge", field.ShowWhen("views", ">", 100))
	checker := visibility.NewChecker(expr.New())

	if ok, _ := checker.Visible(popular, visibility.Scope{Model: record}); ok {
		t.Fatalf("expected hidden")
	}
	record.Attributes["views"] = 500
	if ok, _ := checker.Visible(popular, visibility.Scope{Model: record}); !ok {
		t.Fatalf("expected visible after record changed")
	}
}

func TestCheckerShowWhenFunc(t *testing.T) {
	t.Parallel()

	f := field.NewText("Notes", field.ShowWhenFunc(func(m model.Model) bool {
		if m == nil {
			return false
		}
		v, _ := m.Attribute("id")
		return v != nil
	}))
	checker := visibility.NewChecker(nil)

	if ok, _ := checker.Visible(f, visibility.Scope{}); ok {
		t.Fatalf("expected hidden on create")
	}
	if ok, _ := checker.Visible(f, visibility.Scope{Model: model.NewRecord(map[string]any{"id": 1})}); !ok {
		t.Fatalf("expected visible on edit")
	}
}

func TestCheckerWithoutEvaluator(t *testing.T) {
	t.Parallel()

	f := field.NewText("Reason", field.ShowWhenRule("status == \"rejected\""))
	_, err := visibility.NewChecker(nil).Visible(f, visibility.Scope{})
	if !errors.Is(err, visibility.ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator, got %v", err)
	}
}

func TestCheckerFilter(t *testing.T) {
	t.Parallel()

	fields := []field.Field{
		field.NewText("Title"),
		field.NewText("Secret", field.CanSee(isAdmin)),
		field.NewText("Body", field.HideOnIndex()),
		field.NewText("Reason", field.ShowWhen("status", "!=", "published")),
	}
	checker := visibility.NewChecker(expr.New())
	record := model.NewRecord(map[string]any{"status": "published"})

	visible, err := checker.Filter(fields, visibility.Scope{
		Model:   record,
		Actor:   actor{},
		Context: field.ContextIndex,
	})
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	got := make([]string, 0, len(visible))
	for _, f := range visible {
		got = append(got, f.FieldName())
	}
	if diff := cmp.Diff([]string{"title"}, got); diff != "" {
		t.Fatalf("visible fields mismatch (-want +got):\n%s", diff)
	}
}
