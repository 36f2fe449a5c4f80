package engine_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/engine"
	"github.com/lazyconf/lazyconf/pkg/schema"
	"github.com/lazyconf/lazyconf/pkg/template"
)

func intScalar() schema.Scalar    { return schema.Scalar{Type: "integer"} }
func stringScalar() schema.Scalar { return schema.Scalar{Type: "string"} }
func boolScalar() schema.Scalar   { return schema.Scalar{Type: "boolean"} }

func mustResolve(t *testing.T, raw conf.Value, sch schema.Schema, opts ...engine.Option) conf.Value {
	t.Helper()
	got, err := engine.Resolve(raw, sch, opts...)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	return got
}

func mustFail(t *testing.T, raw conf.Value, sch schema.Schema, opts ...engine.Option) error {
	t.Helper()
	_, err := engine.Resolve(raw, sch, opts...)
	if err == nil {
		t.Fatalf("Resolve() succeeded, want error")
	}
	return err
}

func TestResolveNoOp(t *testing.T) {
	raw := conf.MappingOf(
		"name", "alpha",
		"port", 8080,
		"debug", true,
	)
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"name":  stringScalar(),
		"port":  intScalar(),
		"debug": boolScalar(),
	}}

	got := mustResolve(t, raw, sch)
	if !conf.Equal(got, raw) {
		t.Fatalf("got %v, want %v", got, raw)
	}
}

func TestInterpolation(t *testing.T) {
	raw := conf.MappingOf(
		"x", "7",
		"y", "${x} + 1",
		"greeting", "hello ${name}",
		"name", "alpha",
	)
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"x":        intScalar(),
		"y":        intScalar(),
		"greeting": stringScalar(),
		"name":     stringScalar(),
	}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	if y, _ := got.Get("y"); y != conf.Int(8) {
		t.Errorf("y = %v, want 8", y)
	}
	if g, _ := got.Get("greeting"); g != conf.Str("hello alpha") {
		t.Errorf("greeting = %v, want %q", g, "hello alpha")
	}
}

func TestCircularReference(t *testing.T) {
	cases := map[string]*conf.Mapping{
		"mutual": conf.MappingOf("x", "${y}", "y", "${x}"),
		"self":   conf.MappingOf("x", "${x}", "y", "1"),
	}
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"x": stringScalar(),
		"y": stringScalar(),
	}}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			err := mustFail(t, raw, sch)
			if !errors.Is(err, engine.ErrCircularReference) {
				t.Fatalf("error %v is not a circular reference", err)
			}
		})
	}
}

func TestRawStringSkipsInterpolationAndConversion(t *testing.T) {
	raw := conf.NewMapping()
	raw.Set("cmd", conf.Raw("${not interpolated}"))
	// an integer schema would normally reject this text, but raw strings
	// skip conversion entirely
	sch := schema.Mapping{Required: map[string]schema.Schema{"cmd": intScalar()}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	if cmd, _ := got.Get("cmd"); cmd != conf.Str("${not interpolated}") {
		t.Fatalf("cmd = %v, want the untouched text", cmd)
	}
}

func TestRecursiveString(t *testing.T) {
	raw := conf.NewMapping()
	raw.Set("z", conf.Str("8"))
	raw.Set("x", conf.Raw("${z}"))
	raw.Set("y", conf.Recursive("${x}"))
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"z": intScalar(),
		"x": stringScalar(),
		"y": intScalar(),
	}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	if y, _ := got.Get("y"); y != conf.Int(8) {
		t.Fatalf("y = %v, want 8", y)
	}
}

func TestRecursiveStringDoesNotStabilize(t *testing.T) {
	raw := conf.NewMapping()
	raw.Set("v", conf.Raw("${v} again"))
	raw.Set("w", conf.Recursive("${v}"))
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"v": stringScalar(),
		"w": stringScalar(),
	}}

	err := mustFail(t, raw, sch, engine.WithMaxInterpolationPasses(5))
	if !strings.Contains(err.Error(), "did not stabilize") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFullyResolve(t *testing.T) {
	raw := conf.NewMapping()
	raw.Set("z", conf.Str("8"))
	raw.Set("x", conf.Raw("${z}"))
	inner := conf.NewMapping()
	inner.Set("__fully_resolve__", conf.Str("${x}"))
	raw.Set("a", inner)
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"z": intScalar(),
		"x": stringScalar(),
		"a": intScalar(),
	}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	if a, _ := got.Get("a"); a != conf.Int(8) {
		t.Fatalf("a = %v, want 8", a)
	}
}

func TestRawFunction(t *testing.T) {
	body := conf.MappingOf(
		"__use__", "nothing",
		"text", "${undefined}",
	)
	call := conf.NewMapping()
	call.Set("__raw__", body)
	raw := conf.NewMapping()
	raw.Set("kept", call)
	sch := schema.Mapping{Required: map[string]schema.Schema{"kept": schema.Any{}}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	kept, _ := got.Get("kept")
	if !conf.Equal(kept, body) {
		t.Fatalf("kept = %v, want the body untouched", kept)
	}
}

func TestMissingRequiredKey(t *testing.T) {
	raw := conf.MappingOf("a", 1)
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"a": intScalar(),
		"b": intScalar(),
	}}

	err := mustFail(t, raw, sch)
	if !strings.Contains(err.Error(), "missing required key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnexpectedExtraKey(t *testing.T) {
	raw := conf.MappingOf("a", 1, "mystery", 2)
	sch := schema.Mapping{Required: map[string]schema.Schema{"a": intScalar()}}

	err := mustFail(t, raw, sch)
	if !strings.Contains(err.Error(), "unexpected extra key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtraKeysAllowed(t *testing.T) {
	raw := conf.MappingOf("a", 1, "extra", "5 + 5")
	sch := schema.Mapping{
		Required: map[string]schema.Schema{"a": intScalar()},
		Extra:    intScalar(),
	}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	if v, _ := got.Get("extra"); v != conf.Int(10) {
		t.Fatalf("extra = %v, want 10", v)
	}
}

func TestNullValues(t *testing.T) {
	t.Run("nullable", func(t *testing.T) {
		raw := conf.NewMapping()
		raw.Set("a", conf.Null{})
		sch := schema.Mapping{Required: map[string]schema.Schema{
			"a": schema.Scalar{Type: "integer", Nullable: true},
		}}
		got := mustResolve(t, raw, sch).(*conf.Mapping)
		if v, _ := got.Get("a"); v != (conf.Null{}) {
			t.Fatalf("a = %v, want null", v)
		}
	})

	t.Run("not nullable", func(t *testing.T) {
		raw := conf.NewMapping()
		raw.Set("a", conf.Null{})
		sch := schema.Mapping{Required: map[string]schema.Schema{"a": intScalar()}}
		err := mustFail(t, raw, sch)
		if !strings.Contains(err.Error(), "unexpectedly null") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestDefaults(t *testing.T) {
	raw := conf.MappingOf("x", 3)
	sch := schema.Mapping{
		Required: map[string]schema.Schema{"x": intScalar()},
		Optional: map[string]schema.Optional{
			// defaults go through interpolation and conversion like
			// written values
			"y": {Schema: intScalar(), Default: conf.Str("${x} + 1")},
			"z": {Schema: intScalar()},
		},
	}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	if y, _ := got.Get("y"); y != conf.Int(4) {
		t.Fatalf("y = %v, want 4", y)
	}
	if got.Has("z") {
		t.Fatalf("z should be absent: no default was given")
	}

	t.Run("idempotent", func(t *testing.T) {
		again := mustResolve(t, got, sch)
		if !conf.Equal(again, got) {
			t.Fatalf("second resolution changed the output: %v != %v", again, got)
		}
	})
}

func TestPreserveType(t *testing.T) {
	raw := conf.MappingOf("x", 3)
	sch := schema.Mapping{
		Required: map[string]schema.Schema{"x": intScalar()},
		Optional: map[string]schema.Optional{
			"y": {Schema: intScalar(), Default: conf.Int(9)},
		},
	}

	got := mustResolve(t, raw, sch, engine.WithPreserveType(true)).(*conf.Mapping)
	if got.Has("y") {
		t.Fatalf("preserve_type output should mirror the input shape, got %v", got)
	}
	if x, _ := got.Get("x"); x != conf.Int(3) {
		t.Fatalf("x = %v, want 3", x)
	}
}

func TestFunctionInputModes(t *testing.T) {
	var eagerSaw, lazySaw conf.Value
	fns := engine.Namespace{
		"eager": engine.New(func(args engine.FunctionArgs) (conf.Value, error) {
			eagerSaw = args.Input
			return args.Input, nil
		}),
		"lazy": engine.NewLazy(func(args engine.FunctionArgs) (conf.Value, error) {
			lazySaw = args.Input
			return args.Resolve(args.Input, nil, nil)
		}),
	}

	raw := conf.MappingOf(
		"base", 20,
		"a", map[string]any{"__eager__": "${base} + 1"},
		"b", map[string]any{"__lazy__": "${base} + 2"},
	)
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"base": intScalar(),
		"a":    intScalar(),
		"b":    intScalar(),
	}}

	got := mustResolve(t, raw, sch, engine.WithFunctions(fns)).(*conf.Mapping)

	// the eager function received interpolated text (resolved under "any",
	// so still a string), the lazy one the untouched expression
	if eagerSaw != conf.Str("20 + 1") {
		t.Errorf("eager input = %v, want %q", eagerSaw, "20 + 1")
	}
	if lazySaw != conf.Str("${base} + 2") {
		t.Errorf("lazy input = %v, want %q", lazySaw, "${base} + 2")
	}
	if a, _ := got.Get("a"); a != conf.Int(21) {
		t.Errorf("a = %v, want 21", a)
	}
	if b, _ := got.Get("b"); b != conf.Int(22) {
		t.Errorf("b = %v, want 22", b)
	}
}

func TestLazyFunctionSkipsUntakenBranches(t *testing.T) {
	pick := engine.NewLazy(func(args engine.FunctionArgs) (conf.Value, error) {
		m := args.Input.(*conf.Mapping)
		options, _ := m.Get("options")
		take, _ := m.Get("take")
		chosen, _ := options.(*conf.Mapping).Get(take.(conf.String).Value)
		return args.Resolve(chosen, nil, nil)
	})

	raw := conf.MappingOf("v", map[string]any{
		"__pick__": map[string]any{
			"take": "good",
			"options": map[string]any{
				"good": "1",
				"bad":  "${this_name_is_not_defined}",
			},
		},
	})
	sch := schema.Mapping{Required: map[string]schema.Schema{"v": intScalar()}}

	got := mustResolve(t, raw, sch, engine.WithFunctions(engine.Namespace{"pick": pick})).(*conf.Mapping)
	if v, _ := got.Get("v"); v != conf.Int(1) {
		t.Fatalf("v = %v, want 1", v)
	}
}

func TestNamespacedFunctions(t *testing.T) {
	double := engine.New(func(args engine.FunctionArgs) (conf.Value, error) {
		n, ok := args.Input.(conf.Int)
		if !ok {
			return nil, errors.New("input must be an integer")
		}
		return conf.Int(2 * n), nil
	})

	raw := conf.MappingOf("v", map[string]any{"__math.double__": 21})
	sch := schema.Mapping{Required: map[string]schema.Schema{"v": intScalar()}}

	got := mustResolve(t, raw, sch, engine.WithFunctions(engine.Namespace{
		"math": engine.Namespace{"double": double},
	})).(*conf.Mapping)
	if v, _ := got.Get("v"); v != conf.Int(42) {
		t.Fatalf("v = %v, want 42", v)
	}
}

func TestUnknownFunction(t *testing.T) {
	raw := conf.MappingOf("v", map[string]any{"__nope__": 1})
	sch := schema.Mapping{Required: map[string]schema.Schema{"v": schema.Any{}}}

	err := mustFail(t, raw, sch)
	if !strings.Contains(err.Error(), "unknown function") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMalformedCall(t *testing.T) {
	raw := conf.MappingOf("v", map[string]any{"__raw__": 1, "other": 2})
	sch := schema.Mapping{Required: map[string]schema.Schema{"v": schema.Any{}}}

	err := mustFail(t, raw, sch)
	if !strings.Contains(err.Error(), "invalid function call") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecognizerDisabled(t *testing.T) {
	raw := conf.MappingOf("v", map[string]any{"__raw__": "text"})
	sch := schema.Mapping{Required: map[string]schema.Schema{"v": schema.Any{}}}

	got := mustResolve(t, raw, sch, engine.WithRecognizer(nil)).(*conf.Mapping)
	v, _ := got.Get("v")
	if !conf.Equal(v, conf.MappingOf("__raw__", "text")) {
		t.Fatalf("v = %v, want the mapping as plain data", v)
	}
}

func TestTemplateAndUse(t *testing.T) {
	raw := conf.MappingOf(
		"name", "alpha",
		"tmpl", map[string]any{
			"__template__": map[string]any{"greeting": "hello ${name}", "retries": "3"},
		},
		"svc", map[string]any{"__use__": "tmpl"},
		"svc2", map[string]any{"__use__": map[string]any{
			"template":  "tmpl",
			"overrides": map[string]any{"greeting": "hi"},
		}},
	)
	svcSchema := schema.Mapping{Required: map[string]schema.Schema{
		"greeting": stringScalar(),
		"retries":  intScalar(),
	}}
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"name": stringScalar(),
		"tmpl": schema.Any{},
		"svc":  svcSchema,
		"svc2": svcSchema,
	}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)

	svc, _ := got.Get("svc")
	want := conf.MappingOf("greeting", "hello alpha", "retries", 3)
	if !conf.Equal(svc, want) {
		t.Errorf("svc = %v, want %v", svc, want)
	}

	svc2, _ := got.Get("svc2")
	want2 := conf.MappingOf("greeting", "hi", "retries", 3)
	if !conf.Equal(svc2, want2) {
		t.Errorf("svc2 = %v, want %v", svc2, want2)
	}
}

func TestSplice(t *testing.T) {
	raw := conf.MappingOf(
		"a", map[string]any{"host": "db", "port": "5432"},
		"b", map[string]any{"__splice__": "a"},
	)
	inner := schema.Mapping{Required: map[string]schema.Schema{
		"host": stringScalar(),
		"port": intScalar(),
	}}
	sch := schema.Mapping{Required: map[string]schema.Schema{"a": inner, "b": inner}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	a, _ := got.Get("a")
	b, _ := got.Get("b")
	if !conf.Equal(a, b) {
		t.Fatalf("b = %v, want a copy of a = %v", b, a)
	}
}

func TestLetVariables(t *testing.T) {
	raw := conf.MappingOf("greeting", map[string]any{
		"__let__": map[string]any{
			"variables": map[string]any{"who": "world"},
			"in":        "hello ${who}",
		},
	})
	sch := schema.Mapping{Required: map[string]schema.Schema{"greeting": stringScalar()}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	if g, _ := got.Get("greeting"); g != conf.Str("hello world") {
		t.Fatalf("greeting = %v, want %q", g, "hello world")
	}
}

func TestLetThisReference(t *testing.T) {
	raw := conf.MappingOf("cfg", map[string]any{
		"__let__": map[string]any{
			"references": map[string]any{"self": "__this__"},
			"in": map[string]any{
				"a": "1",
				"b": "${self['a']} + 1",
			},
		},
	})
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"cfg": schema.Mapping{Required: map[string]schema.Schema{
			"a": intScalar(),
			"b": intScalar(),
		}},
	}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	cfg, _ := got.Get("cfg")
	if b, _ := cfg.(*conf.Mapping).Get("b"); b != conf.Int(2) {
		t.Fatalf("cfg.b = %v, want 2", b)
	}
}

func TestLetPreviousReference(t *testing.T) {
	raw := conf.MappingOf("stages", []any{
		map[string]any{"x": "1"},
		map[string]any{
			"__let__": map[string]any{
				"references": map[string]any{"prev": "__previous__"},
				"in":         map[string]any{"x": "${prev['x']} + 1"},
			},
		},
	})
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"stages": schema.Sequence{Element: schema.Mapping{
			Required: map[string]schema.Schema{"x": intScalar()},
		}},
	}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	stages, _ := got.Get("stages")
	second := stages.(conf.Sequence)[1].(*conf.Mapping)
	if x, _ := second.Get("x"); x != conf.Int(2) {
		t.Fatalf("stages[1].x = %v, want 2", x)
	}
}

func TestIf(t *testing.T) {
	build := func(condition string) *conf.Mapping {
		return conf.MappingOf("v", map[string]any{
			"__if__": map[string]any{
				"condition": condition,
				"then":      "on",
				// the untaken branch may be unresolvable
				"else": "${missing_name}",
			},
		})
	}
	sch := schema.Mapping{Required: map[string]schema.Schema{"v": stringScalar()}}

	got := mustResolve(t, build("true"), sch).(*conf.Mapping)
	if v, _ := got.Get("v"); v != conf.Str("on") {
		t.Fatalf("v = %v, want %q", v, "on")
	}

	if err := mustFail(t, build("false"), sch); !strings.Contains(err.Error(), "missing_name") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInjectRootAs(t *testing.T) {
	raw := conf.MappingOf(
		"a", 1,
		"b", "${cfg['a']} + 1",
	)
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"a": intScalar(),
		"b": intScalar(),
	}}

	got := mustResolve(t, raw, sch, engine.WithInjectRootAs("cfg")).(*conf.Mapping)
	if b, _ := got.Get("b"); b != conf.Int(2) {
		t.Fatalf("b = %v, want 2", b)
	}
}

func TestRootKeyShadowsInjectedName(t *testing.T) {
	raw := conf.MappingOf(
		"cfg", 5,
		"b", "${cfg} + 1",
	)
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"cfg": intScalar(),
		"b":   intScalar(),
	}}

	got := mustResolve(t, raw, sch, engine.WithInjectRootAs("cfg")).(*conf.Mapping)
	if b, _ := got.Get("b"); b != conf.Int(6) {
		t.Fatalf("b = %v, want 6", b)
	}
}

func TestGlobals(t *testing.T) {
	raw := conf.MappingOf("v", "${answer} + 0")
	sch := schema.Mapping{Required: map[string]schema.Schema{"v": intScalar()}}

	got := mustResolve(t, raw, sch, engine.WithGlobals(map[string]conf.Value{
		"answer": conf.Int(42),
	})).(*conf.Mapping)
	if v, _ := got.Get("v"); v != conf.Int(42) {
		t.Fatalf("v = %v, want 42", v)
	}
}

func TestFilters(t *testing.T) {
	upper := func(args ...conf.Value) (conf.Value, error) {
		if len(args) != 1 {
			return nil, errors.New("upper takes one argument")
		}
		s, ok := args[0].(conf.String)
		if !ok {
			return nil, errors.New("upper takes a string")
		}
		return conf.Str(strings.ToUpper(s.Value)), nil
	}

	raw := conf.MappingOf(
		"name", "alpha",
		"loud", "${ upper(name) }!",
	)
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"name": stringScalar(),
		"loud": stringScalar(),
	}}

	got := mustResolve(t, raw, sch, engine.WithFilters(map[string]template.Filter{
		"upper": upper,
	})).(*conf.Mapping)
	if v, _ := got.Get("loud"); v != conf.Str("ALPHA!") {
		t.Fatalf("loud = %v, want %q", v, "ALPHA!")
	}
}

func TestDynamicSchema(t *testing.T) {
	dyn := schema.Dynamic(func(raw conf.Value, path conf.KeyPath) (schema.Schema, error) {
		return schema.Scalar{Type: "integer"}, nil
	})
	raw := conf.MappingOf("v", "3 + 4")
	sch := schema.Mapping{Required: map[string]schema.Schema{"v": dyn}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	if v, _ := got.Get("v"); v != conf.Int(7) {
		t.Fatalf("v = %v, want 7", v)
	}
}

func TestErrorsCarryKeypath(t *testing.T) {
	raw := conf.MappingOf("server", map[string]any{"port": "not a number"})
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"server": schema.Mapping{Required: map[string]schema.Schema{"port": intScalar()}},
	}}

	err := mustFail(t, raw, sch)
	var re *engine.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("error %T is not a *ResolutionError", err)
	}
	if re.Path.String() != "server.port" {
		t.Fatalf("path = %q, want %q", re.Path.String(), "server.port")
	}
	if !strings.Contains(err.Error(), `cannot resolve keypath "server.port"`) {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestFunctionViewsAreLazy(t *testing.T) {
	gets := 0
	probe := engine.NewLazy(func(args engine.FunctionArgs) (conf.Value, error) {
		gets++
		v, err := args.Root.Get("a")
		if err != nil {
			return nil, err
		}
		return conf.Int(2 * int64(v.(conf.Int))), nil
	})

	raw := conf.MappingOf(
		"a", 21,
		"b", map[string]any{"__probe__": nil},
	)
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"a": intScalar(),
		"b": intScalar(),
	}}

	got := mustResolve(t, raw, sch, engine.WithFunctions(engine.Namespace{"probe": probe})).(*conf.Mapping)
	if b, _ := got.Get("b"); b != conf.Int(42) {
		t.Fatalf("b = %v, want 42", b)
	}
	if gets != 1 {
		t.Fatalf("probe ran %d times, want 1", gets)
	}
}

func TestRootFunctionCall(t *testing.T) {
	raw := conf.NewMapping()
	inner := conf.MappingOf("a", "1 + 1")
	raw.Set("__resolve__", inner)
	sch := schema.Mapping{Required: map[string]schema.Schema{"a": intScalar()}}

	got := mustResolve(t, raw, sch).(*conf.Mapping)
	if a, _ := got.Get("a"); a != conf.Int(2) {
		t.Fatalf("a = %v, want 2", a)
	}
}

func TestSequenceElements(t *testing.T) {
	raw := conf.MappingOf("xs", []any{"1", "2", "${xs_len}"})
	sch := schema.Mapping{Required: map[string]schema.Schema{
		"xs": schema.Sequence{Element: intScalar()},
	}}

	got := mustResolve(t, raw, sch, engine.WithGlobals(map[string]conf.Value{
		"xs_len": conf.Int(3),
	})).(*conf.Mapping)
	xs, _ := got.Get("xs")
	want := conf.Sequence{conf.Int(1), conf.Int(2), conf.Int(3)}
	if !conf.Equal(xs, want) {
		t.Fatalf("xs = %v, want %v", xs, want)
	}
}
