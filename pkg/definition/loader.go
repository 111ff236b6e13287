// Package definition loads resource definitions from JSON or YAML documents
// and registers them.
//
// Files are read in lexical order. Inline relations without explicit fields
// inherit the form fields of their target, so targets are registered before
// the resources embedding them; otherwise file and document order is kept.
package definition

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/filter"
	"github.com/goliatone/go-formfields/pkg/query"
	"github.com/goliatone/go-formfields/pkg/querytag"
	"github.com/goliatone/go-formfields/pkg/resource"
	"github.com/goliatone/go-formfields/pkg/visibility/expr"
)

// Option customises loading.
type Option func(*loader)

// WithLogger sets the logger used to report loaded resources.
func WithLogger(logger *zap.Logger) Option {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFileBaseURL sets the public base URL of file fields that declare no
// storage of their own.
func WithFileBaseURL(baseURL string) Option {
	return func(l *loader) {
		l.fileBaseURL = baseURL
	}
}

type loader struct {
	registry    *resource.Registry
	logger      *zap.Logger
	fileBaseURL string
}

// LoadFS walks fsys, parses every JSON/YAML file and registers the declared
// resources. When fsys is nil nothing is loaded.
func LoadFS(fsys fs.FS, registry *resource.Registry, opts ...Option) ([]*resource.Resource, error) {
	if registry == nil {
		return nil, fmt.Errorf("definition: registry required")
	}
	l := &loader{registry: registry, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if fsys == nil {
		return nil, nil
	}

	var specs []pending
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", path, err)
		}
		doc, err := Parse(data, path)
		if err != nil {
			return err
		}
		specs = append(specs, collect(doc, path)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.register(specs)
}

// Load parses one document and registers its resources. source names the
// document in errors.
func Load(data []byte, source string, registry *resource.Registry, opts ...Option) ([]*resource.Resource, error) {
	if registry == nil {
		return nil, fmt.Errorf("definition: registry required")
	}
	l := &loader{registry: registry, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	doc, err := Parse(data, source)
	if err != nil {
		return nil, err
	}
	return l.register(collect(doc, source))
}

// pending is a parsed resource awaiting registration.
type pending struct {
	source string
	index  int
	spec   ResourceSpec
	key    string
	// needs lists the keys whose form fields inline containers inherit.
	needs []string
}

func collect(doc Document, source string) []pending {
	out := make([]pending, 0, len(doc.Resources))
	for i, spec := range doc.Resources {
		p := pending{source: source, index: i, spec: spec}
		if name := strings.TrimSpace(spec.Name); name != "" {
			var opts []resource.Option
			if spec.Key != "" {
				opts = append(opts, resource.Key(spec.Key))
			}
			p.key = resource.New(name, opts...).Key()
		}
		p.needs = inherits(spec.Fields)
		out = append(out, p)
	}
	return out
}

// inherits returns the resource keys of has-one/has-many fields declared
// without fields of their own, at any depth.
func inherits(specs []FieldSpec) []string {
	var keys []string
	for _, spec := range specs {
		if len(spec.Fields) > 0 {
			keys = append(keys, inherits(spec.Fields)...)
			continue
		}
		label := strings.TrimSpace(spec.Label)
		if label == "" {
			continue
		}
		var opts []field.Option
		if spec.Name != "" {
			opts = append(opts, field.Name(spec.Name))
		}
		if spec.Resource != "" {
			opts = append(opts, field.ResourceKey(spec.Resource))
		}
		var f field.Field
		switch field.Kind(strings.ToLower(strings.TrimSpace(spec.Kind))) {
		case field.KindHasOne:
			f = field.NewHasOne(label, opts...)
		case field.KindHasMany:
			f = field.NewHasMany(label, opts...)
		default:
			continue
		}
		if keyed, ok := f.(interface{ ResourceKey() string }); ok && keyed.ResourceKey() != "" {
			keys = append(keys, keyed.ResourceKey())
		}
	}
	return keys
}

// register builds and registers specs so that every resource is registered
// before the containers inheriting its form fields. Remaining specs keep
// their file and document order; a cycle is broken at the first pending
// spec.
func (l *loader) register(specs []pending) ([]*resource.Resource, error) {
	declared := make(map[string]bool, len(specs))
	for _, p := range specs {
		declared[p.key] = true
	}

	out := make([]*resource.Resource, 0, len(specs))
	done := make(map[string]bool, len(specs))
	for len(specs) > 0 {
		next := slices.IndexFunc(specs, func(p pending) bool {
			return !slices.ContainsFunc(p.needs, func(key string) bool {
				return key != p.key && declared[key] && !done[key]
			})
		})
		if next < 0 {
			next = 0
			l.logger.Warn("definition dependency cycle",
				zap.String("source", specs[0].source),
				zap.String("resource", specs[0].key),
				zap.Strings("needs", specs[0].needs),
			)
		}
		p := specs[next]
		specs = slices.Delete(specs, next, next+1)

		res, err := l.resource(p.spec)
		if err != nil {
			return nil, fmt.Errorf("definition: %s: resource %d: %w", p.source, p.index, err)
		}
		if err := l.registry.Register(res); err != nil {
			return nil, fmt.Errorf("definition: %s: %w", p.source, err)
		}
		done[res.Key()] = true
		l.logger.Debug("resource loaded",
			zap.String("source", p.source),
			zap.String("resource", res.Key()),
			zap.Int("fields", len(res.Fields())),
		)
		out = append(out, res)
	}
	return out, nil
}

// Parse decodes a JSON or YAML document.
func Parse(data []byte, source string) (Document, error) {
	var doc Document
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("definition: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	doc = Document{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("definition: parse %s: %w", source, err)
	}
	return doc, nil
}

func (l *loader) resource(spec ResourceSpec) (*resource.Resource, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	opts := []resource.Option{}
	if spec.Key != "" {
		opts = append(opts, resource.Key(spec.Key))
	}
	if spec.Title != "" {
		opts = append(opts, resource.Title(spec.Title))
	}
	if spec.TitleField != "" {
		opts = append(opts, resource.TitleField(spec.TitleField))
	}
	if spec.Table != "" {
		opts = append(opts, resource.Table(spec.Table))
	}
	if spec.PrimaryKey != "" {
		opts = append(opts, resource.PrimaryKey(spec.PrimaryKey))
	}
	if spec.PerPage > 0 {
		opts = append(opts, resource.PerPage(spec.PerPage))
	}
	if spec.Sort != nil {
		opts = append(opts, resource.Sort(spec.Sort.Column, spec.Sort.Desc))
	}
	if len(spec.Actions) > 0 {
		actions := make([]resource.Action, 0, len(spec.Actions))
		for _, a := range spec.Actions {
			actions = append(actions, resource.Action(strings.ToLower(strings.TrimSpace(a))))
		}
		opts = append(opts, resource.Actions(actions...))
	}

	fields, err := l.fields(spec.Fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	opts = append(opts, resource.Fields(fields...))

	filters := make([]filter.Filter, 0, len(spec.Filters))
	for _, fspec := range spec.Filters {
		flt, err := buildFilter(fspec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		filters = append(filters, flt)
	}
	if len(filters) > 0 {
		opts = append(opts, resource.Filters(filters...))
	}

	tags := make([]*querytag.Tag, 0, len(spec.Tags))
	for _, ts := range spec.Tags {
		tag, err := buildTag(ts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		tags = append(tags, tag)
	}
	if len(tags) > 0 {
		opts = append(opts, resource.QueryTags(tags...))
	}

	return resource.New(name, opts...), nil
}

func (l *loader) fields(specs []FieldSpec) ([]field.Field, error) {
	out := make([]field.Field, 0, len(specs))
	for i, spec := range specs {
		f, err := l.field(spec)
		if err != nil {
			return nil, fmt.Errorf("field %d (%s): %w", i, spec.Label, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (l *loader) field(spec FieldSpec) (field.Field, error) {
	label := strings.TrimSpace(spec.Label)
	if label == "" {
		return nil, fmt.Errorf("label is required")
	}
	opts, err := l.fieldOptions(spec)
	if err != nil {
		return nil, err
	}

	switch field.Kind(strings.ToLower(strings.TrimSpace(spec.Kind))) {
	case field.KindText, "":
		return field.NewText(label, opts...), nil
	case field.KindNumber:
		return field.NewNumber(label, opts...), nil
	case field.KindPassword:
		return field.NewPassword(label, opts...), nil
	case field.KindSelect:
		return field.NewSelect(label, opts...), nil
	case field.KindDate:
		return field.NewDate(label, opts...), nil
	case field.KindSwitcher:
		return field.NewSwitcher(label, opts...), nil
	case field.KindFile:
		return field.NewFile(label, opts...), nil
	case field.KindBelongsTo:
		return field.NewBelongsTo(label, opts...), nil
	case field.KindHasOne:
		return l.container(field.NewHasOne(label, opts...), spec), nil
	case field.KindHasMany:
		return l.container(field.NewHasMany(label, opts...), spec), nil
	case field.KindBelongsToMany:
		return field.NewBelongsToMany(label, opts...), nil
	case field.KindGroup:
		return field.NewGroup(label, opts...), nil
	default:
		return nil, fmt.Errorf("unknown field kind %q", spec.Kind)
	}
}

// container warns when an inline relation declared without fields inherited
// none from its resource; its form would render empty.
func (l *loader) container(f field.Field, spec FieldSpec) field.Field {
	if len(spec.Fields) > 0 || spec.ResourceMode {
		return f
	}
	if c, ok := f.(field.HasFields); ok && len(c.Fields()) == 0 {
		keyed, _ := f.(interface{ ResourceKey() string })
		var key string
		if keyed != nil {
			key = keyed.ResourceKey()
		}
		l.logger.Warn("inline relation inherited no fields",
			zap.String("field", f.FieldName()),
			zap.String("resource", key),
		)
	}
	return f
}

func (l *loader) fieldOptions(spec FieldSpec) ([]field.Option, error) {
	var opts []field.Option
	add := func(cond bool, opt field.Option) {
		if cond {
			opts = append(opts, opt)
		}
	}

	add(spec.Name != "", field.Name(spec.Name))
	add(spec.Default != nil, field.Default(deref(spec.Default)))
	add(spec.Nullable, field.Nullable())
	add(spec.OldKey != "", field.OldKey(spec.OldKey))
	add(spec.Hint != "", field.Hint(spec.Hint))
	add(spec.Component != "", field.Component(spec.Component))
	if spec.ShowWhen != "" {
		if _, err := expr.Compile(spec.ShowWhen); err != nil {
			return nil, fmt.Errorf("showWhen: %w", err)
		}
		opts = append(opts, field.ShowWhenRule(spec.ShowWhen))
	}
	add(spec.NoContainer, field.Container(false))
	add(spec.Multiple, field.Multiple())
	add(spec.Format != "", field.Format(spec.Format))
	add(spec.InputFormat != "", field.InputFormat(spec.InputFormat))
	add(spec.WithTime, field.WithTime())
	add(spec.OnValue != "", field.OnValue(spec.OnValue))
	add(spec.OffValue != "", field.OffValue(spec.OffValue))
	switch {
	case spec.Dir != "" || spec.BaseURL != "":
		opts = append(opts, field.Storage(spec.Dir, spec.BaseURL))
	case field.Kind(strings.ToLower(strings.TrimSpace(spec.Kind))) == field.KindFile && l.fileBaseURL != "":
		opts = append(opts, field.Storage("", l.fileBaseURL))
	}
	add(spec.AllowHTML, field.AllowHTML())
	add(spec.Resource != "", field.ResourceKey(spec.Resource))
	add(spec.TitleField != "", field.TitleField(spec.TitleField))
	add(spec.ResourceMode, field.ResourceMode())
	add(spec.FullPage, field.FullPage())
	add(len(spec.Choices) > 0, field.Choices(choices(spec.Choices)...))

	for key, value := range spec.Attributes {
		opts = append(opts, field.Attr(key, value))
	}
	for _, ctx := range spec.HideOn {
		switch field.Context(strings.ToLower(strings.TrimSpace(ctx))) {
		case field.ContextIndex:
			opts = append(opts, field.HideOnIndex())
		case field.ContextForm:
			opts = append(opts, field.HideOnForm())
		case field.ContextDetail:
			opts = append(opts, field.HideOnDetail())
		default:
			return nil, fmt.Errorf("unknown context %q", ctx)
		}
	}

	if len(spec.Fields) > 0 {
		children, err := l.fields(spec.Fields)
		if err != nil {
			return nil, err
		}
		opts = append(opts, field.Fields(children...))
	}
	opts = append(opts, field.WithRegistry(l.registry))
	return opts, nil
}

func buildFilter(spec FilterSpec) (filter.Filter, error) {
	label := strings.TrimSpace(spec.Label)
	if label == "" {
		return nil, fmt.Errorf("filter label is required")
	}
	var opts []field.Option
	if spec.Name != "" {
		opts = append(opts, field.Name(spec.Name))
	}
	if spec.Default != nil {
		opts = append(opts, field.Default(*spec.Default))
	}
	if len(spec.Choices) > 0 {
		opts = append(opts, field.Choices(choices(spec.Choices)...))
	}

	switch filter.Kind(strings.ToLower(strings.TrimSpace(spec.Kind))) {
	case filter.KindText:
		return filter.NewText(label, opts...), nil
	case filter.KindSelect:
		return filter.NewSelect(label, opts...), nil
	case filter.KindSwitch:
		return filter.NewSwitch(label, opts...), nil
	case filter.KindIsNotEmpty:
		return filter.NewIsNotEmpty(label, opts...), nil
	case filter.KindDate:
		return filter.NewDate(label, opts...), nil
	case filter.KindDateRange:
		return filter.NewDateRange(label, opts...), nil
	case filter.KindBelongsTo:
		return filter.NewBelongsTo(label, opts...), nil
	default:
		return nil, fmt.Errorf("unknown filter kind %q", spec.Kind)
	}
}

func buildTag(spec TagSpec) (*querytag.Tag, error) {
	predicates := make([]query.Predicate, 0, len(spec.Where))
	for _, cond := range spec.Where {
		p, err := predicate(cond)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", spec.Label, err)
		}
		predicates = append(predicates, p)
	}
	build := func(q query.Query) query.Query {
		return q.Where(predicates...)
	}
	var opts []querytag.Option
	if spec.Icon != "" {
		opts = append(opts, querytag.Icon(spec.Icon))
	}
	return querytag.New(spec.Label, build, opts...), nil
}

func predicate(spec ConditionSpec) (query.Predicate, error) {
	raw := spec.Operator
	if strings.TrimSpace(raw) == "" {
		raw = "="
	}
	op, err := query.ParseOperator(raw)
	if err != nil {
		return nil, err
	}
	switch op {
	case query.OpIn:
		values, _ := spec.Value.([]any)
		return query.In(spec.Column, values...), nil
	case query.OpBetween:
		values, ok := spec.Value.([]any)
		if !ok || len(values) != 2 {
			return nil, fmt.Errorf("%s: between needs two values", spec.Column)
		}
		return query.Between(spec.Column, values[0], values[1]), nil
	case query.OpIsNull:
		return query.IsNull(spec.Column), nil
	case query.OpIsNotNull:
		return query.NotNull(spec.Column), nil
	}
	return query.Condition{Column: spec.Column, Operator: op, Value: spec.Value}, nil
}

func choices(specs []ChoiceSpec) []field.Choice {
	out := make([]field.Choice, 0, len(specs))
	for _, c := range specs {
		label := c.Label
		if label == "" {
			label = c.Value
		}
		out = append(out, field.Choice{Value: c.Value, Label: label})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
