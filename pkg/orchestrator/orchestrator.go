package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/model"
	"github.com/goliatone/go-formfields/pkg/query"
	"github.com/goliatone/go-formfields/pkg/resource"
	"github.com/goliatone/go-formfields/pkg/value"
	"github.com/goliatone/go-formfields/pkg/visibility"
	"github.com/goliatone/go-formfields/pkg/visibility/expr"
	"github.com/goliatone/go-formfields/pkg/widgets"
)

// PageParam is the request path holding the 1-based index page.
const PageParam = "page"

// ErrNoRegistry is returned when an operation runs without a resource registry.
var ErrNoRegistry = errors.New("orchestrator: resource registry not configured")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLogger sets the logger used by the orchestrator and by the default
// resolver and checker.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegistry injects the resource registry.
func WithRegistry(registry *resource.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithResolver injects a custom value resolver.
func WithResolver(resolver *value.Resolver) Option {
	return func(o *Orchestrator) {
		o.resolver = resolver
	}
}

// WithChecker injects a custom visibility checker.
func WithChecker(checker *visibility.Checker) Option {
	return func(o *Orchestrator) {
		o.checker = checker
	}
}

// WithWidgets injects the component registry.
func WithWidgets(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.widgets = registry
	}
}

// WithDialect sets the SQL dialect used by Index.
func WithDialect(d query.Dialect) Option {
	return func(o *Orchestrator) {
		o.dialect = d
	}
}

// Orchestrator builds views and payloads for registered resources. Missing
// collaborators are initialised with the built-in implementations.
type Orchestrator struct {
	logger   *zap.Logger
	registry *resource.Registry
	resolver *value.Resolver
	checker  *visibility.Checker
	widgets  *widgets.Registry
	dialect  query.Dialect
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:  zap.NewNop(),
		dialect: query.SQLite,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.resolver == nil {
		o.resolver = value.New(value.WithLogger(o.logger))
	}
	if o.checker == nil {
		o.checker = visibility.NewChecker(expr.New(), visibility.WithLogger(o.logger))
	}
	if o.widgets == nil {
		o.widgets = widgets.NewRegistry()
	}
}

// Registry returns the configured resource registry.
func (o *Orchestrator) Registry() *resource.Registry { return o.registry }

// Request describes one orchestrator call.
type Request struct {
	// Resource is the registry key ("post-resource").
	Resource string
	// Model is the stored record; nil on create forms.
	Model    model.Model
	// Input carries the current and previous submission.
	Input    model.Request
	Actor    any
	// Errors holds server-side validation messages keyed by field path. JSON
	// pointer, bracket and dotted paths are accepted.
	Errors   map[string][]string
	// Tag selects a query tag by URI on index requests.
	Tag      string
	// Extras is exposed to visibility rules under "extras.".
	Extras   map[string]any
}

func (o *Orchestrator) resource(ctx context.Context, req Request) (*resource.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o.registry == nil {
		return nil, ErrNoRegistry
	}
	res, err := o.registry.Resolve(req.Resource)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return res, nil
}

// Form builds the create (nil Model) or edit form view.
func (o *Orchestrator) Form(ctx context.Context, req Request) (FormView, error) {
	res, err := o.resource(ctx, req)
	if err != nil {
		return FormView{}, err
	}

	action := resource.ActionCreate
	if req.Model != nil {
		action = resource.ActionEdit
	}
	if err := res.Authorize(action, req.Actor, req.Model); err != nil {
		return FormView{}, err
	}

	fields := res.FormFields()
	if err := requireResources(fields); err != nil {
		return FormView{}, err
	}

	errs := MapErrors(res.Tree(), req.Errors)
	b := &formBuilder{
		o:      o,
		req:    req,
		errors: errs.Fields,
		scope: visibility.Scope{
			Model:   req.Model,
			Actor:   req.Actor,
			Values:  o.formValues(fields, req),
			Extras:  req.Extras,
			Context: field.ContextForm,
		},
	}
	views, err := b.fields(ctx, fields, req.Model)
	if err != nil {
		return FormView{}, err
	}

	o.logger.Debug("form built",
		zap.String("resource", res.Key()),
		zap.String("action", string(action)),
		zap.Int("fields", len(views)),
	)
	return FormView{
		Resource: res.Key(),
		Title:    res.Title(),
		Action:   string(action),
		Fields:   views,
		Errors:   errs.Form,
	}, nil
}

// Detail builds the read-only view of req.Model.
func (o *Orchestrator) Detail(ctx context.Context, req Request) (DetailView, error) {
	res, err := o.resource(ctx, req)
	if err != nil {
		return DetailView{}, err
	}
	if req.Model == nil {
		return DetailView{}, fmt.Errorf("orchestrator: detail %s: record required", res.Key())
	}
	if err := res.Authorize(resource.ActionShow, req.Actor, req.Model); err != nil {
		return DetailView{}, err
	}

	scope := visibility.Scope{
		Model:   req.Model,
		Actor:   req.Actor,
		Extras:  req.Extras,
		Context: field.ContextDetail,
	}
	visible, err := o.checker.Filter(res.DetailFields(), scope)
	if err != nil {
		return DetailView{}, err
	}
	views := make([]FieldView, 0, len(visible))
	for _, f := range visible {
		views = append(views, o.displayView(f, req.Model))
	}
	return DetailView{
		Resource: res.Key(),
		Title:    res.Title(),
		Key:      keyOf(req.Model, res.PrimaryKey()),
		Fields:   views,
		Actions:  o.actions(res, req.Actor, req.Model),
	}, nil
}

// Query returns the index query for req with pagination applied.
func (o *Orchestrator) Query(ctx context.Context, req Request) (query.Query, error) {
	res, err := o.resource(ctx, req)
	if err != nil {
		return query.Query{}, err
	}
	q := res.IndexQuery(req.Input, req.Tag, req.Actor)
	page := pageOf(req.Input)
	return q.Limit(res.PerPage()).Offset((page - 1) * res.PerPage()), nil
}

// Index runs the index query against db and builds the listing view.
func (o *Orchestrator) Index(ctx context.Context, db query.Queryer, req Request) (IndexView, error) {
	res, err := o.resource(ctx, req)
	if err != nil {
		return IndexView{}, err
	}
	q, err := o.Query(ctx, req)
	if err != nil {
		return IndexView{}, err
	}
	rows, err := query.Select(ctx, db, o.dialect, q)
	if err != nil {
		return IndexView{}, fmt.Errorf("orchestrator: index %s: %w", res.Key(), err)
	}

	scope := visibility.Scope{Actor: req.Actor, Extras: req.Extras, Context: field.ContextIndex}
	columns, err := o.checker.Filter(res.IndexFields(), scope)
	if err != nil {
		return IndexView{}, err
	}

	view := IndexView{
		Resource: res.Key(),
		Title:    res.Title(),
		Page:     pageOf(req.Input),
		PerPage:  res.PerPage(),
		Columns:  make([]ColumnView, 0, len(columns)),
		Rows:     make([]RowView, 0, len(rows)),
		Filters:  o.filters(res, req.Input),
		Tags:     o.tags(res, req),
	}
	for _, f := range columns {
		view.Columns = append(view.Columns, ColumnView{Name: f.NameDot(), Label: f.Label()})
	}
	for _, row := range rows {
		rec := model.NewRecord(row)
		cells := make([]FieldView, 0, len(columns))
		for _, f := range columns {
			cells = append(cells, o.displayView(f, rec))
		}
		view.Rows = append(view.Rows, RowView{
			Key:     keyOf(rec, res.PrimaryKey()),
			Fields:  cells,
			Actions: o.actions(res, req.Actor, rec),
		})
	}
	return view, nil
}

// Payload collects the values to persist from req.Input: the visible form
// fields' request values, nested by dotted path. Absent values are skipped and
// resource-mode relations are left to their own resource.
func (o *Orchestrator) Payload(ctx context.Context, req Request) (map[string]any, error) {
	res, err := o.resource(ctx, req)
	if err != nil {
		return nil, err
	}
	fields := res.FormFields()
	scope := visibility.Scope{
		Model:   req.Model,
		Actor:   req.Actor,
		Values:  o.requestValues(fields, req),
		Extras:  req.Extras,
		Context: field.ContextForm,
	}
	out := make(map[string]any)
	if err := o.collect(ctx, out, fields, scope, req.Input); err != nil {
		return nil, err
	}
	return out, nil
}

func requireResources(fields []field.Field) error {
	var errs []error
	for _, f := range fields {
		if m, ok := f.(interface{ IsResourceModeField() bool }); ok && m.IsResourceModeField() {
			if _, err := field.RequireResource(f); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
