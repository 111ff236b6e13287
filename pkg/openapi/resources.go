package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/internal/naming"
	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/resource"
)

// Schema extensions read by Resources.
const (
	extTable      = "x-table"
	extTitleField = "x-title-field"
	extLabel      = "x-label"
	extHiddenOn   = "x-hidden-on"
	extComponent  = "x-component"
)

// ErrNoSchemas is returned for documents without component schemas.
var ErrNoSchemas = errors.New("openapi: document has no component schemas")

// Option customises Resources.
type Option func(*builder)

// WithLogger sets the logger used to report skipped properties.
func WithLogger(logger *zap.Logger) Option {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type builder struct {
	registry *resource.Registry
	logger   *zap.Logger
	order    map[string][]string
}

// Resources loads an OpenAPI document, builds one resource per object schema
// in components.schemas and registers them. Schemas are registered after the
// targets of their inline has-one/has-many relations so those relations can
// inherit the target's form fields.
func Resources(ctx context.Context, data []byte, registry *resource.Registry, opts ...Option) ([]*resource.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if registry == nil {
		return nil, errors.New("openapi: registry required")
	}
	b := &builder{registry: registry, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, ErrNoSchemas
	}
	b.order = propertyOrder(data)

	schemas := make(map[string]*openapi3.Schema)
	for name, ref := range doc.Components.Schemas {
		if ref == nil || ref.Value == nil || len(ref.Value.Properties) == 0 {
			continue
		}
		schemas[name] = ref.Value
	}

	var out []*resource.Resource
	for _, name := range registrationOrder(schemas) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := b.resource(name, schemas[name])
		if err != nil {
			return nil, err
		}
		if err := registry.Register(res); err != nil {
			return nil, fmt.Errorf("openapi: %w", err)
		}
		out = append(out, res)
	}
	return out, nil
}

// registrationOrder sorts schema names so inline relation targets come
// first. Cycles fall back to name order.
func registrationOrder(schemas map[string]*openapi3.Schema) []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	done := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for len(out) < len(names) {
		progressed := false
		for _, name := range names {
			if done[name] || !ready(schemas, name, done) {
				continue
			}
			done[name] = true
			out = append(out, name)
			progressed = true
		}
		if progressed {
			continue
		}
		for _, name := range names {
			if !done[name] {
				done[name] = true
				out = append(out, name)
				break
			}
		}
	}
	return out
}

func ready(schemas map[string]*openapi3.Schema, name string, done map[string]bool) bool {
	for _, prop := range schemas[name].Properties {
		if prop == nil || prop.Value == nil {
			continue
		}
		rel := normaliseRelationship(prop.Value.Extensions[relationshipExtensionKey])
		if rel == nil {
			continue
		}
		switch rel.kind() {
		case "hasOne", "hasMany":
			target := relationTarget(rel, prop)
			if _, known := schemas[target]; known && target != name && !done[target] {
				return false
			}
		}
	}
	return true
}

func (b *builder) resource(name string, schema *openapi3.Schema) (*resource.Resource, error) {
	var opts []resource.Option
	if table := stringExt(schema.Extensions, extTable); table != "" {
		opts = append(opts, resource.Table(table))
	}
	if title := stringExt(schema.Extensions, extTitleField); title != "" {
		opts = append(opts, resource.TitleField(title))
	}

	skip := foreignKeyHosts(schema)
	var fields []field.Field
	for _, prop := range b.properties(name, schema) {
		if skip[prop] {
			continue
		}
		f, err := b.field(prop, schema.Properties[prop])
		if err != nil {
			return nil, fmt.Errorf("openapi: %s.%s: %w", name, prop, err)
		}
		if f == nil {
			b.logger.Debug("property skipped", zap.String("schema", name), zap.String("property", prop))
			continue
		}
		fields = append(fields, f)
	}
	opts = append(opts, resource.Fields(fields...))
	return resource.New(name, opts...), nil
}

// properties lists property names in declaration order, with any properties
// the order scan missed appended alphabetically.
func (b *builder) properties(name string, schema *openapi3.Schema) []string {
	seen := make(map[string]bool, len(schema.Properties))
	out := make([]string, 0, len(schema.Properties))
	for _, prop := range b.order[name] {
		if _, ok := schema.Properties[prop]; ok && !seen[prop] {
			seen[prop] = true
			out = append(out, prop)
		}
	}
	var rest []string
	for prop := range schema.Properties {
		if !seen[prop] {
			rest = append(rest, prop)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// foreignKeyHosts returns the sibling columns named by belongs-to foreign
// keys; the relation property renders them.
func foreignKeyHosts(schema *openapi3.Schema) map[string]bool {
	out := make(map[string]bool)
	for name, prop := range schema.Properties {
		if prop == nil || prop.Value == nil {
			continue
		}
		rel := normaliseRelationship(prop.Value.Extensions[relationshipExtensionKey])
		if rel == nil || rel.kind() != "belongsTo" {
			continue
		}
		fk := rel[relForeignKey]
		if fk == "" {
			fk = naming.WithForeignKey(naming.Camel(name))
		}
		if fk == name {
			continue
		}
		if _, ok := schema.Properties[fk]; ok {
			out[fk] = true
		}
	}
	return out
}

func (b *builder) field(name string, ref *openapi3.SchemaRef) (field.Field, error) {
	if ref == nil || ref.Value == nil {
		return nil, nil
	}
	prop := ref.Value
	label := stringExt(prop.Extensions, extLabel)
	if label == "" {
		label = strings.TrimSpace(prop.Title)
	}
	if label == "" {
		label = naming.Label(name)
	}

	opts, err := b.options(prop)
	if err != nil {
		return nil, err
	}

	if rel := normaliseRelationship(prop.Extensions[relationshipExtensionKey]); rel != nil {
		return b.relation(name, label, rel, ref, opts)
	}

	opts = append(opts, field.Name(name))
	typ := schemaType(prop.Type)
	switch {
	case len(prop.Enum) > 0:
		choices := make([]field.Choice, 0, len(prop.Enum))
		for _, v := range prop.Enum {
			s := fmt.Sprint(v)
			choices = append(choices, field.Choice{Value: s, Label: naming.Label(s)})
		}
		return field.NewSelect(label, append(opts, field.Choices(choices...))...), nil
	case typ == "boolean":
		return field.NewSwitcher(label, opts...), nil
	case typ == "integer" || typ == "number":
		return field.NewNumber(label, opts...), nil
	case typ == "string" || typ == "":
		switch prop.Format {
		case "date":
			return field.NewDate(label, opts...), nil
		case "date-time":
			return field.NewDate(label, append(opts, field.WithTime())...), nil
		case "password":
			return field.NewPassword(label, opts...), nil
		case "binary":
			return field.NewFile(label, opts...), nil
		}
		if typ == "" && len(prop.Properties) > 0 {
			return nil, nil
		}
		return field.NewText(label, opts...), nil
	}
	return nil, nil
}

func (b *builder) relation(name, label string, rel relationship, ref *openapi3.SchemaRef, opts []field.Option) (field.Field, error) {
	target := relationTarget(rel, ref)
	if target != "" {
		opts = append(opts, field.ResourceKey(naming.ResourceKey(target)))
	}
	if title := rel[relTitleField]; title != "" {
		opts = append(opts, field.TitleField(title))
	}
	opts = append(opts, field.WithRegistry(b.registry))

	switch rel.kind() {
	case "belongsTo":
		fieldName := name
		if fk := rel[relForeignKey]; fk != "" {
			fieldName = fk
		}
		return field.NewBelongsTo(label, append(opts, field.Name(fieldName))...), nil
	case "hasOne", "hasMany":
		opts = append(opts, field.Name(name))
		switch strings.ToLower(rel[relMode]) {
		case "resource":
			opts = append(opts, field.ResourceMode())
		case "fullpage", "full-page":
			opts = append(opts, field.ResourceMode(), field.FullPage())
		}
		if rel.kind() == "hasOne" {
			return field.NewHasOne(label, opts...), nil
		}
		return field.NewHasMany(label, opts...), nil
	case "belongsToMany":
		return field.NewBelongsToMany(label, append(opts, field.Name(name))...), nil
	}
	return nil, fmt.Errorf("unknown relationship type %q", rel[relType])
}

// relationTarget returns the declared target, else the schema referenced by
// the property or its items.
func relationTarget(rel relationship, ref *openapi3.SchemaRef) string {
	if target := rel.target(); target != "" {
		return target
	}
	if target := refName(ref.Ref); target != "" {
		return target
	}
	if ref.Value != nil && ref.Value.Items != nil {
		return refName(ref.Value.Items.Ref)
	}
	return ""
}

func (b *builder) options(prop *openapi3.Schema) ([]field.Option, error) {
	var opts []field.Option
	if prop.Default != nil {
		opts = append(opts, field.Default(fmt.Sprint(prop.Default)))
	}
	if prop.Nullable {
		opts = append(opts, field.Nullable())
	}
	if prop.ReadOnly {
		opts = append(opts, field.HideOnForm())
	}
	if prop.WriteOnly {
		opts = append(opts, field.HideOnIndex(), field.HideOnDetail())
	}
	if hint := strings.TrimSpace(prop.Description); hint != "" {
		opts = append(opts, field.Hint(hint))
	}
	if prop.MaxLength != nil {
		opts = append(opts, field.Attr("maxlength", fmt.Sprint(*prop.MaxLength)))
	}
	if component := stringExt(prop.Extensions, extComponent); component != "" {
		opts = append(opts, field.Component(component))
	}
	if raw, ok := prop.Extensions[extHiddenOn].([]any); ok {
		for _, v := range raw {
			ctx, _ := v.(string)
			switch field.Context(strings.ToLower(ctx)) {
			case field.ContextIndex:
				opts = append(opts, field.HideOnIndex())
			case field.ContextForm:
				opts = append(opts, field.HideOnForm())
			case field.ContextDetail:
				opts = append(opts, field.HideOnDetail())
			default:
				return nil, fmt.Errorf("%s: unknown context %v", extHiddenOn, v)
			}
		}
	}
	return opts, nil
}

func schemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, t := range types.Slice() {
		if t != "null" {
			return t
		}
	}
	return ""
}

func stringExt(ext map[string]any, key string) string {
	s, _ := ext[key].(string)
	return strings.TrimSpace(s)
}
