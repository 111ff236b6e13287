// Package formfields resolves admin-panel field and filter declarations into
// query contributions, form inputs and index/detail displays. The root
// package re-exports the types most callers need and wires the loaders into
// a validated registry.
package formfields

import (
	"context"
	"io/fs"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfields/internal/logging"
	"github.com/goliatone/go-formfields/pkg/definition"
	"github.com/goliatone/go-formfields/pkg/field"
	"github.com/goliatone/go-formfields/pkg/openapi"
	"github.com/goliatone/go-formfields/pkg/orchestrator"
	"github.com/goliatone/go-formfields/pkg/resource"
)

// Field is any node of a resource's field tree.
type Field = field.Field

// Resource aliases resource.Resource.
type Resource = resource.Resource

// Registry aliases resource.Registry; it also serves lazy field bindings.
type Registry = resource.Registry

// Orchestrator drives form, detail, index and payload requests.
type Orchestrator = orchestrator.Orchestrator

// Request describes one orchestrator call.
type Request = orchestrator.Request

// FormView and IndexView are the JSON-serialisable outputs.
type (
	FormView  = orchestrator.FormView
	IndexView = orchestrator.IndexView
)

// Sources lists where resource definitions come from. Either may be empty.
type Sources struct {
	// Definitions holds YAML/JSON resource documents.
	Definitions fs.FS
	// OpenAPI is a raw OpenAPI 3 document whose component schemas become
	// resources.
	OpenAPI []byte
	// FileBaseURL prefixes stored paths of file fields loaded from
	// Definitions.
	FileBaseURL string
}

// LoadRegistry builds a registry from src and validates every binding.
// Definitions load before the OpenAPI document so hand-written resources
// take their keys first.
func LoadRegistry(ctx context.Context, src Sources, logger *zap.Logger) (*Registry, error) {
	logger = logging.OrNop(logger)
	registry := resource.NewRegistry(resource.WithLogger(logger))

	if src.Definitions != nil {
		if _, err := definition.LoadFS(src.Definitions, registry,
			definition.WithLogger(logger),
			definition.WithFileBaseURL(src.FileBaseURL),
		); err != nil {
			return nil, err
		}
	}
	if len(src.OpenAPI) > 0 {
		if _, err := openapi.Resources(ctx, src.OpenAPI, registry, openapi.WithLogger(logger)); err != nil {
			return nil, err
		}
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}
	return registry, nil
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *Orchestrator {
	return orchestrator.New(options...)
}
