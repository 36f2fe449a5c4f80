package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/lazyconf/lazyconf/pkg/conf"
)

func known(name string) bool {
	switch name {
	case "integer", "float", "string", "boolean", "date", "datetime", "any":
		return true
	}
	return false
}

func TestValidateAccepts(t *testing.T) {
	s := Mapping{
		Required: map[string]Schema{
			"name": Scalar{Type: "string"},
			"jobs": Sequence{Element: Mapping{
				Required: map[string]Schema{"id": Scalar{Type: "integer"}},
				Extra:    Any{},
			}},
		},
		Optional: map[string]Optional{
			"retries": {Schema: Scalar{Type: "integer"}, Default: conf.Int(3)},
			"note":    {Schema: Scalar{Type: "string", Nullable: true}},
		},
	}
	if err := Validate(s, known); err != nil {
		t.Fatalf("expected valid schema, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		schema Schema
		want   string
	}{
		{
			name:   "nil schema",
			schema: nil,
			want:   "schema is nil",
		},
		{
			name:   "unknown type",
			schema: Scalar{Type: "quaternion"},
			want:   `unknown type "quaternion"`,
		},
		{
			name:   "empty scalar type",
			schema: Scalar{},
			want:   "no type",
		},
		{
			name:   "sequence without element",
			schema: Sequence{},
			want:   "no element schema",
		},
		{
			name: "required and optional overlap",
			schema: Mapping{
				Required: map[string]Schema{"x": Scalar{Type: "integer"}},
				Optional: map[string]Optional{"x": {Schema: Scalar{Type: "integer"}}},
			},
			want: "both required and optional",
		},
		{
			name: "nested failure carries path",
			schema: Mapping{
				Required: map[string]Schema{
					"outer": Mapping{Required: map[string]Schema{"inner": Scalar{Type: "bogus"}}},
				},
			},
			want: "outer.inner",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Validate(c.schema, known)
			if err == nil {
				t.Fatal("expected an error")
			}
			var ise *InvalidSchemaError
			if !errors.As(err, &ise) {
				t.Fatalf("expected InvalidSchemaError, got %T", err)
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Errorf("expected error to mention %q, got: %v", c.want, err)
			}
		})
	}
}

func TestValidateDynamicIsDeferred(t *testing.T) {
	dyn := Dynamic(func(raw conf.Value, path conf.KeyPath) (Schema, error) {
		return Scalar{Type: "integer"}, nil
	})
	if err := Validate(dyn, known); err != nil {
		t.Fatalf("dynamic schemas validate on materialization, got %v", err)
	}
}

func TestValidateNilKnownTypeAcceptsAnyName(t *testing.T) {
	if err := Validate(Scalar{Type: "custom"}, nil); err != nil {
		t.Fatalf("nil knownType should accept any name, got %v", err)
	}
}
