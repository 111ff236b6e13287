package field

import (
	"strings"

	"github.com/goliatone/go-formfields/internal/phpdate"
)

// Date format defaults, expressed with PHP date tokens.
const (
	DefaultDateFormat          = "Y-m-d H:i:s"
	DefaultDateInputFormat     = "Y-m-d"
	DefaultDateTimeInputFormat = `Y-m-d\TH:i`
)

// Text is a single-line text input.
type Text struct{ Node }

// NewText builds a text field.
func NewText(label string, opts ...Option) *Text {
	return build(KindText, label, newSettings(opts)).(*Text)
}

// Number is a numeric input.
type Number struct{ Node }

// NewNumber builds a number field.
func NewNumber(label string, opts ...Option) *Number {
	return build(KindNumber, label, newSettings(opts)).(*Number)
}

// Password never echoes stored or submitted values back to the form.
type Password struct{ Node }

// NewPassword builds a password field.
func NewPassword(label string, opts ...Option) *Password {
	return build(KindPassword, label, newSettings(opts)).(*Password)
}

// Select picks one (or, with Multiple, several) of a fixed set of choices.
type Select struct{ Node }

// NewSelect builds a select field.
func NewSelect(label string, opts ...Option) *Select {
	return build(KindSelect, label, newSettings(opts)).(*Select)
}

// Choices returns a copy of the configured choices.
func (s *Select) Choices() []Choice { return append([]Choice(nil), s.cfg.choices...) }

// Multiple reports whether several values may be selected.
func (s *Select) Multiple() bool { return s.cfg.multiple }

// ChoiceLabel returns the label of the choice matching value, or value itself.
func (s *Select) ChoiceLabel(value string) string {
	for _, c := range s.cfg.choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// Date renders stored timestamps in an editable and a display format.
type Date struct{ Node }

// NewDate builds a date field.
func NewDate(label string, opts ...Option) *Date {
	return build(KindDate, label, newSettings(opts)).(*Date)
}

// Format returns the display format.
func (d *Date) Format() string {
	if d.cfg.format != "" {
		return d.cfg.format
	}
	return DefaultDateFormat
}

// InputFormat returns the format used to populate the input.
func (d *Date) InputFormat() string {
	switch {
	case d.cfg.inputFormat != "":
		return d.cfg.inputFormat
	case d.cfg.withTime:
		return DefaultDateTimeInputFormat
	default:
		return DefaultDateInputFormat
	}
}

// InputType returns the HTML input type.
func (d *Date) InputType() string {
	if d.cfg.withTime {
		return "datetime-local"
	}
	return "date"
}

// FormatDisplay formats a stored value for index and detail pages.
func (d *Date) FormatDisplay(value any) string { return phpdate.Format(value, d.Format()) }

// FormatInput formats a stored value for the form input.
func (d *Date) FormatInput(value any) string { return phpdate.Format(value, d.InputFormat()) }

// Switcher is a boolean toggle submitting OnValue or OffValue.
type Switcher struct{ Node }

// NewSwitcher builds a switcher field.
func NewSwitcher(label string, opts ...Option) *Switcher {
	return build(KindSwitcher, label, newSettings(opts)).(*Switcher)
}

// OnValue returns the checked value, "1" unless configured.
func (s *Switcher) OnValue() string {
	if s.cfg.onValue != "" {
		return s.cfg.onValue
	}
	return "1"
}

// OffValue returns the unchecked value, "0" unless configured.
func (s *Switcher) OffValue() string {
	if s.cfg.offValue != "" {
		return s.cfg.offValue
	}
	return "0"
}

// File is an upload input whose stored value is a path under Dir.
type File struct{ Node }

// NewFile builds a file field.
func NewFile(label string, opts ...Option) *File {
	return build(KindFile, label, newSettings(opts)).(*File)
}

// Dir returns the upload directory.
func (f *File) Dir() string { return f.cfg.dir }

// URL returns the public URL of a stored path.
func (f *File) URL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	path = strings.TrimLeft(path, "/")
	if f.cfg.dir != "" && !strings.HasPrefix(path, f.cfg.dir+"/") {
		path = f.cfg.dir + "/" + path
	}
	if f.cfg.baseURL == "" {
		return "/" + path
	}
	return f.cfg.baseURL + "/" + path
}

// BelongsTo edits a foreign key on the owning model ("author" -> "author_id").
type BelongsTo struct{ Node }

// NewBelongsTo builds a belongs-to relation field.
func NewBelongsTo(label string, opts ...Option) *BelongsTo {
	return build(KindBelongsTo, label, newSettings(opts)).(*BelongsTo)
}

func (*BelongsTo) relationship() {}
func (*BelongsTo) belongsTo()    {}

// HasOne embeds the form of a single related record.
type HasOne struct{ Node }

// NewHasOne builds a has-one relation field. Without Fields it inherits the
// bound resource's form fields.
func NewHasOne(label string, opts ...Option) *HasOne {
	return build(KindHasOne, label, newSettings(opts)).(*HasOne)
}

func (*HasOne) relationship() {}
func (*HasOne) toOne()        {}
func (*HasOne) container()    {}

// HasMany embeds one form row per related record.
type HasMany struct{ Node }

// NewHasMany builds a has-many relation field. Without Fields it inherits the
// bound resource's form fields.
func NewHasMany(label string, opts ...Option) *HasMany {
	return build(KindHasMany, label, newSettings(opts)).(*HasMany)
}

func (*HasMany) relationship() {}
func (*HasMany) toMany()       {}
func (*HasMany) container()    {}

// BelongsToMany selects related records through a pivot table. Its children,
// if any, describe pivot columns and are never inherited.
type BelongsToMany struct{ Node }

// NewBelongsToMany builds a many-to-many relation field.
func NewBelongsToMany(label string, opts ...Option) *BelongsToMany {
	return build(KindBelongsToMany, label, newSettings(opts)).(*BelongsToMany)
}

func (*BelongsToMany) relationship() {}
func (*BelongsToMany) manyToMany()   {}
func (*BelongsToMany) container()    {}

// Group lays out its children together without adding a name segment.
type Group struct{ Node }

// NewGroup builds a layout group; declare its children with Fields.
func NewGroup(label string, opts ...Option) *Group {
	return build(KindGroup, label, newSettings(opts)).(*Group)
}

func (*Group) container() {}

var (
	_ BelongsToRelation  = (*BelongsTo)(nil)
	_ OneToOneRelation   = (*HasOne)(nil)
	_ OneToManyRelation  = (*HasMany)(nil)
	_ ManyToManyRelation = (*BelongsToMany)(nil)
	_ HasFields          = (*HasOne)(nil)
	_ HasFields          = (*HasMany)(nil)
	_ HasFields          = (*BelongsToMany)(nil)
	_ HasFields          = (*Group)(nil)
)
