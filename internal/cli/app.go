// Package cli implements the formfields command line: it loads resource
// definitions and prints form, index and query output as JSON or SQL.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-formfields"
	"github.com/goliatone/go-formfields/internal/logging"
	"github.com/goliatone/go-formfields/pkg/config"
	"github.com/goliatone/go-formfields/pkg/model"
	"github.com/goliatone/go-formfields/pkg/orchestrator"
	"github.com/goliatone/go-formfields/pkg/query"
	"github.com/goliatone/go-formfields/pkg/resource"
)

// globalFlags are shared by every command.
type globalFlags struct {
	config  string
	schema  string
	openapi string
}

// requestFlags select a resource and describe the request.
type requestFlags struct {
	resource string
	record   string
	input    string
	old      string
	tag      string
	actor    string
}

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *resource.Registry
	orch     *orchestrator.Orchestrator
	dialect  query.Dialect
}

func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, err
	}
	if flags.schema != "" {
		cfg.Schema.Dir = flags.schema
	}
	if flags.openapi != "" {
		cfg.Schema.OpenAPI = flags.openapi
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}

	src, err := sources(cfg, logger)
	if err != nil {
		return nil, err
	}
	registry, err := formfields.LoadRegistry(ctx, src, logger)
	if err != nil {
		return nil, err
	}

	orch := orchestrator.New(
		orchestrator.WithLogger(logger),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDialect(dialect),
	)
	return &app{cfg: cfg, logger: logger, registry: registry, orch: orch, dialect: dialect}, nil
}

// sources resolves the configured schema locations. A missing schema
// directory is skipped so OpenAPI-only setups work with the default config.
func sources(cfg *config.Config, logger *zap.Logger) (formfields.Sources, error) {
	src := formfields.Sources{FileBaseURL: cfg.Files.BaseURL}

	if dir := cfg.Schema.Dir; dir != "" {
		info, err := os.Stat(dir)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("schema directory not found", zap.String("dir", dir))
		case err != nil:
			return src, fmt.Errorf("schema directory: %w", err)
		case !info.IsDir():
			return src, fmt.Errorf("schema directory: %s is not a directory", dir)
		default:
			src.Definitions = os.DirFS(dir)
		}
	}

	if cfg.Schema.OpenAPI != "" {
		data, err := os.ReadFile(cfg.Schema.OpenAPI)
		if err != nil {
			return src, fmt.Errorf("read openapi document: %w", err)
		}
		src.OpenAPI = data
	}
	return src, nil
}

// request builds an orchestrator request from the flags. input and old are
// URL-encoded form bodies ("title=Hi&comments[0][body]=x").
func (f *requestFlags) request() (orchestrator.Request, error) {
	req := orchestrator.Request{Resource: f.resource, Tag: f.tag}
	if f.actor != "" {
		req.Actor = f.actor
	}

	oldValues, err := url.ParseQuery(f.old)
	if err != nil {
		return req, fmt.Errorf("--old: %w", err)
	}
	inputValues, err := url.ParseQuery(f.input)
	if err != nil {
		return req, fmt.Errorf("--input: %w", err)
	}
	req.Input = model.ParseForm(inputValues, model.ParseForm(oldValues, nil).Values())

	if f.record != "" {
		data, err := os.ReadFile(f.record)
		if err != nil {
			return req, fmt.Errorf("--record: %w", err)
		}
		rec, err := model.DecodeRecord(data)
		if err != nil {
			return req, fmt.Errorf("--record: %w", err)
		}
		req.Model = rec
	}
	return req, nil
}
