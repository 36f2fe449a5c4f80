package prototype_test

import (
	"strings"
	"testing"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/prototype"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

type serverConfig struct {
	Host    string            `conf:"host" validate:"required"`
	Port    int               `conf:"port" validate:"min=1,max=65535"`
	Retries int               `conf:"retries" default:"3"`
	Note    *string           `conf:"note,optional"`
	Tags    []string          `conf:"tags,optional"`
	Labels  map[string]string `conf:",remain"`
}

func TestFromStruct(t *testing.T) {
	s, err := prototype.FromStruct(serverConfig{})
	if err != nil {
		t.Fatalf("FromStruct() error: %v", err)
	}
	m, ok := s.(schema.Mapping)
	if !ok {
		t.Fatalf("got %T, want a mapping schema", s)
	}

	if m.Required["host"] != (schema.Scalar{Type: "string"}) {
		t.Errorf("host = %#v", m.Required["host"])
	}
	if m.Required["port"] != (schema.Scalar{Type: "integer"}) {
		t.Errorf("port = %#v", m.Required["port"])
	}

	retries, ok := m.Optional["retries"]
	if !ok || retries.Default != conf.Str("3") {
		t.Errorf("retries = %#v", retries)
	}
	note, ok := m.Optional["note"]
	if !ok || note.Schema != (schema.Scalar{Type: "string", Nullable: true}) {
		t.Errorf("note = %#v", note)
	}
	if _, ok := m.Optional["tags"]; !ok {
		t.Errorf("tags should be optional")
	}
	if m.Extra != (schema.Scalar{Type: "string"}) {
		t.Errorf("extra = %#v", m.Extra)
	}

	if err := schema.Validate(s, nil); err != nil {
		t.Fatalf("derived schema does not validate: %v", err)
	}
}

func TestResolveIntoStruct(t *testing.T) {
	raw := conf.MappingOf(
		"host", "db.internal",
		"port", "54 * 100 + 32",
		"env", "prod",
	)

	var cfg serverConfig
	if err := prototype.Resolve(raw, &cfg); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if cfg.Host != "db.internal" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Port != 5432 {
		t.Errorf("Port = %d, want 5432", cfg.Port)
	}
	if cfg.Retries != 3 {
		t.Errorf("Retries = %d, want the default 3", cfg.Retries)
	}
	if cfg.Labels["env"] != "prod" {
		t.Errorf("Labels = %v", cfg.Labels)
	}
}

func TestResolveValidation(t *testing.T) {
	raw := conf.MappingOf(
		"host", "db.internal",
		"port", 0,
	)

	var cfg serverConfig
	err := prototype.Resolve(raw, &cfg)
	if err == nil || !strings.Contains(err.Error(), "validate configuration") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFromStructRejectsNonStructs(t *testing.T) {
	if _, err := prototype.FromStruct(42); err == nil {
		t.Fatal("FromStruct() succeeded, want error")
	}
}
