package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfields/pkg/query"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		Schema: SchemaConfig{Dir: "resources"},
		Query:  QueryConfig{Dialect: "sqlite"},
		Log:    LogConfig{Level: "info"},
		Files:  FilesConfig{BaseURL: "/storage"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formfields.yaml")
	content := "schema:\n  dir: defs\n  openapi: api.yaml\nquery:\n  dialect: sqlite\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FORMFIELDS_QUERY_DIALECT", "postgres")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Schema.Dir != "defs" || cfg.Schema.OpenAPI != "api.yaml" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	d, err := cfg.Dialect()
	if err != nil || d != query.Postgres {
		t.Fatalf("Dialect() = %v, %v", d, err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for an explicit missing file")
	}

	t.Setenv("FORMFIELDS_QUERY_DIALECT", "oracle")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for an unknown dialect")
	}
}
