package filter

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formfields/internal/phpdate"
	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/model"
	"github.com/goliatone/go-formfields/pkg/query"
	"github.com/goliatone/go-formfields/pkg/value"
)

// Text matches a substring with LIKE.
type Text struct{ base }

// NewText builds a substring filter.
func NewText(label string, opts ...field.Option) *Text {
	return &Text{base{kind: KindText, input: field.NewText(label, opts...)}}
}

func (f *Text) Apply(q query.Query, req model.Request) query.Query {
	v, ok := f.Value(req)
	if !ok {
		return q
	}
	return q.Where(query.Like(f.Column(), "%"+escapeLike(fmt.Sprint(v))+"%"))
}

// Select matches one value, or any of several when the input is multiple.
type Select struct{ base }

// NewSelect builds an equality filter with fixed choices.
func NewSelect(label string, opts ...field.Option) *Select {
	return &Select{base{kind: KindSelect, input: field.NewSelect(label, opts...)}}
}

func (f *Select) Apply(q query.Query, req model.Request) query.Query {
	v, ok := f.Value(req)
	if !ok {
		return q
	}
	if list, ok := v.([]any); ok {
		return q.Where(query.In(f.Column(), list...))
	}
	return q.Where(query.Eq(f.Column(), v))
}

// Switch matches the switcher's on or off value.
type Switch struct{ base }

// NewSwitch builds a boolean filter.
func NewSwitch(label string, opts ...field.Option) *Switch {
	return &Switch{base{kind: KindSwitch, input: field.NewSwitcher(label, opts...)}}
}

func (f *Switch) Apply(q query.Query, req model.Request) query.Query {
	v, ok := f.Value(req)
	if !ok {
		return q
	}
	s := f.input.(*field.Switcher)
	if value.Checked(s, v) {
		return q.Where(query.Eq(f.Column(), s.OnValue()))
	}
	return q.Where(query.Eq(f.Column(), s.OffValue()))
}

// IsNotEmpty keeps rows whose column is neither NULL, "" nor 0 when its
// value is truthy.
type IsNotEmpty struct{ base }

// NewIsNotEmpty builds a presence filter.
func NewIsNotEmpty(label string, opts ...field.Option) *IsNotEmpty {
	return &IsNotEmpty{base{kind: KindIsNotEmpty, input: field.NewSwitcher(label, opts...)}}
}

func (f *IsNotEmpty) Apply(q query.Query, req model.Request) query.Query {
	v, ok := f.Value(req)
	if !ok || !value.Truthy(v) {
		return q
	}
	col := f.Column()
	return q.WhereGroup(query.And(
		query.NotNull(col),
		query.NotEq(col, ""),
		query.NotEq(col, 0),
	))
}

// Date matches every timestamp on the submitted day.
type Date struct{ base }

// NewDate builds a single-day filter.
func NewDate(label string, opts ...field.Option) *Date {
	return &Date{base{kind: KindDate, input: field.NewDate(label, opts...)}}
}

func (f *Date) Apply(q query.Query, req model.Request) query.Query {
	v, ok := f.Value(req)
	if !ok {
		return q
	}
	day, ok := phpdate.Parse(v)
	if !ok {
		return q
	}
	from := phpdate.Format(day, "Y-m-d") + " 00:00:00"
	to := phpdate.Format(day, "Y-m-d") + " 23:59:59"
	return q.Where(query.Between(f.Column(), from, to))
}

// DateRange matches between filters[<slug>][from] and filters[<slug>][to];
// either bound may be omitted.
type DateRange struct{ base }

// NewDateRange builds a range filter.
func NewDateRange(label string, opts ...field.Option) *DateRange {
	return &DateRange{base{kind: KindDateRange, input: field.NewDate(label, opts...)}}
}

// Bounds returns the parsed bounds formatted as storage timestamps.
func (f *DateRange) Bounds(req model.Request) (from, to string) {
	if req == nil {
		return "", ""
	}
	if v, ok := req.Input(f.ParamPath() + ".from"); ok {
		if t, ok := phpdate.Parse(v); ok {
			from = phpdate.Format(t, "Y-m-d") + " 00:00:00"
		}
	}
	if v, ok := req.Input(f.ParamPath() + ".to"); ok {
		if t, ok := phpdate.Parse(v); ok {
			to = phpdate.Format(t, "Y-m-d") + " 23:59:59"
		}
	}
	return from, to
}

func (f *DateRange) Apply(q query.Query, req model.Request) query.Query {
	if _, ok := f.Value(req); !ok {
		return q
	}
	from, to := f.Bounds(req)
	switch {
	case from != "" && to != "":
		return q.Where(query.Between(f.Column(), from, to))
	case from != "":
		return q.Where(query.Gte(f.Column(), from))
	case to != "":
		return q.Where(query.Lte(f.Column(), to))
	}
	return q
}

// BelongsTo matches the foreign key ("author" filters author_id).
type BelongsTo struct{ base }

// NewBelongsTo builds a relation filter.
func NewBelongsTo(label string, opts ...field.Option) *BelongsTo {
	return &BelongsTo{base{kind: KindBelongsTo, input: field.NewBelongsTo(label, opts...)}}
}

func (f *BelongsTo) Apply(q query.Query, req model.Request) query.Query {
	v, ok := f.Value(req)
	if !ok {
		return q
	}
	if list, ok := v.([]any); ok {
		return q.Where(query.In(f.Column(), list...))
	}
	return q.Where(query.Eq(f.Column(), v))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var (
	_ Filter = (*Text)(nil)
	_ Filter = (*Select)(nil)
	_ Filter = (*Switch)(nil)
	_ Filter = (*IsNotEmpty)(nil)
	_ Filter = (*Date)(nil)
	_ Filter = (*DateRange)(nil)
	_ Filter = (*BelongsTo)(nil)
)
