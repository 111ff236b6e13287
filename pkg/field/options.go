package field

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formfields/pkg/model"
)

// Option customises a field at construction time.
type Option func(*settings)

// Choice is a select option.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type settings struct {
	name        string
	resource    Resource
	titleField  string
	value       func(model.Model) any
	def         *string
	nullable    bool
	oldKey      string
	resourceKey string
	registry    Registry

	children    []Field
	hasChildren bool

	showRule string
	showFn   func(model.Model) bool
	canSee   func(actor any) bool

	hint       string
	component  string
	attributes map[string]string
	noWrapper  bool
	hidden     map[Context]bool

	resourceMode bool
	fullPage     bool

	format      string
	inputFormat string
	withTime    bool

	onValue  string
	offValue string

	choices  []Choice
	multiple bool

	dir     string
	baseURL string

	allowHTML bool
}

func newSettings(opts []Option) settings {
	var cfg settings
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (s settings) clone() settings {
	out := s
	if s.def != nil {
		def := *s.def
		out.def = &def
	}
	if s.attributes != nil {
		out.attributes = make(map[string]string, len(s.attributes))
		for k, v := range s.attributes {
			out.attributes[k] = v
		}
	}
	if s.hidden != nil {
		out.hidden = make(map[Context]bool, len(s.hidden))
		for k, v := range s.hidden {
			out.hidden[k] = v
		}
	}
	out.choices = append([]Choice(nil), s.choices...)
	out.children = nil
	return out
}

// Name sets the column (or relation key) explicitly instead of deriving it
// from the label.
func Name(name string) Option {
	return func(s *settings) { s.name = strings.TrimSpace(name) }
}

// WithResource binds a relation to a resource explicitly.
func WithResource(res Resource) Option {
	return func(s *settings) { s.resource = res }
}

// TitleField sets the related attribute displayed in place of the key.
func TitleField(name string) Option {
	return func(s *settings) { s.titleField = strings.TrimSpace(name) }
}

// Value replaces stored-value resolution with a callback.
func Value(fn func(model.Model) any) Option {
	return func(s *settings) { s.value = fn }
}

// Default declares the value used when nothing was submitted or stored.
func Default(value string) Option {
	return func(s *settings) { s.def = &value }
}

// Nullable resolves missing values to an empty string instead of nil.
func Nullable() Option {
	return func(s *settings) { s.nullable = true }
}

// OldKey overrides the dotted path used to read the previous submission.
func OldKey(path string) Option {
	return func(s *settings) { s.oldKey = strings.TrimSpace(path) }
}

// ResourceKey overrides the registry key derived from the relation name.
func ResourceKey(key string) Option {
	return func(s *settings) { s.resourceKey = strings.TrimSpace(key) }
}

// WithRegistry sets the registry used for lazy resource resolution and for
// inheriting children at construction.
func WithRegistry(reg Registry) Option {
	return func(s *settings) { s.registry = reg }
}

// Fields declares the children of a container kind explicitly.
func Fields(children ...Field) Option {
	return func(s *settings) {
		s.children = append(s.children, children...)
		s.hasChildren = true
	}
}

// ShowWhen shows the field only when column compares to value. Supported
// operators: =, ==, !=, >, <, >=, <=.
func ShowWhen(column, operator string, value any) Option {
	op := strings.TrimSpace(operator)
	if op == "=" {
		op = "=="
	}
	rule := fmt.Sprintf("%s %s %s", strings.TrimSpace(column), op, literal(value))
	return ShowWhenRule(rule)
}

// ShowWhenRule shows the field when the expression evaluates to true. Rules
// added more than once are joined with &&.
func ShowWhenRule(rule string) Option {
	return func(s *settings) {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			return
		}
		if s.showRule == "" {
			s.showRule = rule
			return
		}
		s.showRule = "(" + s.showRule + ") && (" + rule + ")"
	}
}

// ShowWhenFunc shows the field when fn returns true for the current model.
func ShowWhenFunc(fn func(model.Model) bool) Option {
	return func(s *settings) { s.showFn = fn }
}

// CanSee restricts the field to actors accepted by fn.
func CanSee(fn func(actor any) bool) Option {
	return func(s *settings) { s.canSee = fn }
}

// Hint sets the help text rendered next to the input.
func Hint(text string) Option {
	return func(s *settings) { s.hint = strings.TrimSpace(text) }
}

// Attr sets an HTML attribute on the rendered input.
func Attr(key, value string) Option {
	return func(s *settings) {
		key = strings.TrimSpace(key)
		if key == "" {
			return
		}
		if s.attributes == nil {
			s.attributes = make(map[string]string)
		}
		s.attributes[key] = value
	}
}

// Component overrides the component chosen for the field.
func Component(name string) Option {
	return func(s *settings) { s.component = strings.TrimSpace(name) }
}

// Container toggles the label/wrapper element around the input.
func Container(enabled bool) Option {
	return func(s *settings) { s.noWrapper = !enabled }
}

// HideOnIndex excludes the field from index listings.
func HideOnIndex() Option { return hideOn(ContextIndex) }

// HideOnForm excludes the field from create/edit forms.
func HideOnForm() Option { return hideOn(ContextForm) }

// HideOnDetail excludes the field from detail pages.
func HideOnDetail() Option { return hideOn(ContextDetail) }

func hideOn(ctx Context) Option {
	return func(s *settings) {
		if s.hidden == nil {
			s.hidden = make(map[Context]bool)
		}
		s.hidden[ctx] = true
	}
}

// ResourceMode renders a one-to-one or one-to-many relation through its
// resource. The resource must be resolvable; see RequireResource.
func ResourceMode() Option {
	return func(s *settings) { s.resourceMode = true }
}

// FullPage renders a relation on its own page.
func FullPage() Option {
	return func(s *settings) { s.fullPage = true }
}

// Format sets the display format of date fields (PHP date tokens).
func Format(format string) Option {
	return func(s *settings) { s.format = format }
}

// InputFormat sets the editable format of date fields (PHP date tokens).
func InputFormat(format string) Option {
	return func(s *settings) { s.inputFormat = format }
}

// WithTime switches a date field to a datetime-local input.
func WithTime() Option {
	return func(s *settings) { s.withTime = true }
}

// OnValue sets the value a switcher submits when checked.
func OnValue(value string) Option {
	return func(s *settings) { s.onValue = value }
}

// OffValue sets the value a switcher submits when unchecked.
func OffValue(value string) Option {
	return func(s *settings) { s.offValue = value }
}

// Choices sets the options of a select field.
func Choices(choices ...Choice) Option {
	return func(s *settings) { s.choices = append(s.choices, choices...) }
}

// Multiple allows selecting several values.
func Multiple() Option {
	return func(s *settings) { s.multiple = true }
}

// Storage sets the upload directory and the public base URL of a file field.
func Storage(dir, baseURL string) Option {
	return func(s *settings) {
		s.dir = strings.Trim(strings.TrimSpace(dir), "/")
		s.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// AllowHTML keeps sanitised HTML in display values instead of escaping it.
func AllowHTML() Option {
	return func(s *settings) { s.allowHTML = true }
}

func literal(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strconv.Quote(fmt.Sprint(v))
	}
}
