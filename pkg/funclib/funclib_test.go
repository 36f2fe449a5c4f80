package funclib_test

import (
	"strings"
	"testing"
	"time"

	"github.com/lazyconf/lazyconf/pkg/conf"
	"github.com/lazyconf/lazyconf/pkg/engine"
	"github.com/lazyconf/lazyconf/pkg/funclib"
	"github.com/lazyconf/lazyconf/pkg/schema"
)

// resolveValue runs a single call under the given schema with the full
// standard library registered.
func resolveValue(t *testing.T, call map[string]any, sch schema.Schema) conf.Value {
	t.Helper()
	raw := conf.MappingOf("v", call)
	root := schema.Mapping{Required: map[string]schema.Schema{"v": sch}}
	got, err := engine.Resolve(raw, root, engine.WithFunctions(funclib.Default()))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	v, _ := got.(*conf.Mapping).Get("v")
	return v
}

func resolveError(t *testing.T, call map[string]any, sch schema.Schema) error {
	t.Helper()
	raw := conf.MappingOf("v", call)
	root := schema.Mapping{Required: map[string]schema.Schema{"v": sch}}
	_, err := engine.Resolve(raw, root, engine.WithFunctions(funclib.Default()))
	if err == nil {
		t.Fatalf("Resolve() succeeded, want error")
	}
	return err
}

func intList() schema.Sequence {
	return schema.Sequence{Element: schema.Scalar{Type: "integer"}}
}

func TestListRange(t *testing.T) {
	cases := []struct {
		name  string
		input map[string]any
		want  conf.Sequence
	}{
		{"stop only", map[string]any{"stop": 4}, conf.Sequence{conf.Int(0), conf.Int(1), conf.Int(2), conf.Int(3)}},
		{"start and stop", map[string]any{"start": 2, "stop": 5}, conf.Sequence{conf.Int(2), conf.Int(3), conf.Int(4)}},
		{"with step", map[string]any{"start": 0, "stop": 10, "step": 4}, conf.Sequence{conf.Int(0), conf.Int(4), conf.Int(8)}},
		{"negative step", map[string]any{"start": 3, "stop": 0, "step": -1}, conf.Sequence{conf.Int(3), conf.Int(2), conf.Int(1)}},
		{"empty", map[string]any{"start": 5, "stop": 5}, conf.Sequence{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveValue(t, map[string]any{"__list.range__": tc.input}, intList())
			if !conf.Equal(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("missing stop", func(t *testing.T) {
		err := resolveError(t, map[string]any{"__list.range__": map[string]any{"start": 1}}, intList())
		if !strings.Contains(err.Error(), `"stop"`) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestListConcatenate(t *testing.T) {
	got := resolveValue(t, map[string]any{
		"__list.concatenate__": []any{[]any{1, 2}, []any{3}, []any{}},
	}, intList())
	want := conf.Sequence{conf.Int(1), conf.Int(2), conf.Int(3)}
	if !conf.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestListZip(t *testing.T) {
	got := resolveValue(t, map[string]any{
		"__list.zip__": []any{[]any{1, 2, 3}, []any{10, 20}},
	}, schema.Sequence{Element: intList()})
	want := conf.Sequence{
		conf.Sequence{conf.Int(1), conf.Int(10)},
		conf.Sequence{conf.Int(2), conf.Int(20)},
	}
	if !conf.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestListLoop(t *testing.T) {
	got := resolveValue(t, map[string]any{
		"__list.loop__": map[string]any{
			"variable": "i",
			"over":     []any{1, 2, 3},
			"in":       "${i} * 2",
		},
	}, intList())
	want := conf.Sequence{conf.Int(2), conf.Int(4), conf.Int(6)}
	if !conf.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestListLoopOverMappings(t *testing.T) {
	got := resolveValue(t, map[string]any{
		"__list.loop__": map[string]any{
			"variable": "svc",
			"over": []any{
				map[string]any{"name": "a", "port": 1},
				map[string]any{"name": "b", "port": 2},
			},
			"in": "${svc['name']}:${svc['port']}",
		},
	}, schema.Sequence{Element: schema.Scalar{Type: "string"}})
	want := conf.Sequence{conf.Str("a:1"), conf.Str("b:2")}
	if !conf.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestListFilter(t *testing.T) {
	got := resolveValue(t, map[string]any{
		"__list.filter__": map[string]any{
			"variable":  "i",
			"iterable":  []any{1, 2, 3, 4},
			"condition": "${ i > 2 }",
		},
	}, intList())
	want := conf.Sequence{conf.Int(3), conf.Int(4)}
	if !conf.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDictFromItems(t *testing.T) {
	got := resolveValue(t, map[string]any{
		"__dict.from_items__": []any{
			map[string]any{"key": "a", "value": 1},
			map[string]any{"key": "b", "value": 2},
		},
	}, schema.Mapping{Extra: schema.Scalar{Type: "integer"}})
	want := conf.MappingOf("a", 1, "b", 2)
	if !conf.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDictUpdateShallow(t *testing.T) {
	got := resolveValue(t, map[string]any{
		"__dict.update_shallow__": []any{
			map[string]any{"a": map[string]any{"x": 1}, "b": 2},
			map[string]any{"a": map[string]any{"y": 3}},
		},
	}, schema.Any{})
	// the nested dict is replaced wholesale
	want := conf.MappingOf("a", map[string]any{"y": 3}, "b", 2)
	if !conf.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDictUpdate(t *testing.T) {
	got := resolveValue(t, map[string]any{
		"__dict.update__": []any{
			map[string]any{"a": map[string]any{"x": 1}, "b": 2},
			map[string]any{"a": map[string]any{"y": 3}},
		},
	}, schema.Any{})
	// the nested dicts are merged
	want := conf.MappingOf("a", map[string]any{"x": 1, "y": 3}, "b", 2)
	if !conf.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	t.Run("not a list of dicts", func(t *testing.T) {
		err := resolveError(t, map[string]any{"__dict.update__": []any{1}}, schema.Any{})
		if !strings.Contains(err.Error(), "list of dicts") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func datetimeScalar() schema.Scalar { return schema.Scalar{Type: "datetime"} }

func wantTime(t *testing.T, got conf.Value, want time.Time) {
	t.Helper()
	dt, ok := got.(conf.DateTime)
	if !ok {
		t.Fatalf("got %T (%v), want a datetime", got, got)
	}
	if !dt.Time.Equal(want) {
		t.Fatalf("got %v, want %v", dt.Time, want)
	}
}

func TestDatetimeAt(t *testing.T) {
	got := resolveValue(t, map[string]any{
		"__datetime.at__": map[string]any{"date": "2021-10-05", "time": "23:59:00"},
	}, datetimeScalar())
	wantTime(t, got, time.Date(2021, 10, 5, 23, 59, 0, 0, time.UTC))

	t.Run("invalid time", func(t *testing.T) {
		err := resolveError(t, map[string]any{
			"__datetime.at__": map[string]any{"date": "2021-10-05", "time": "25:00:00"},
		}, datetimeScalar())
		if !strings.Contains(err.Error(), "invalid time") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestDatetimeOffset(t *testing.T) {
	t.Run("after with string offset", func(t *testing.T) {
		got := resolveValue(t, map[string]any{
			"__datetime.offset__": map[string]any{"after": "2021-10-05", "by": "1 week, 2 days"},
		}, datetimeScalar())
		wantTime(t, got, time.Date(2021, 10, 14, 0, 0, 0, 0, time.UTC))
	})

	t.Run("before with dict offset", func(t *testing.T) {
		got := resolveValue(t, map[string]any{
			"__datetime.offset__": map[string]any{
				"before": "2021-10-05 12:00:00",
				"by":     map[string]any{"hours": 3},
			},
		}, datetimeScalar())
		wantTime(t, got, time.Date(2021, 10, 5, 9, 0, 0, 0, time.UTC))
	})

	t.Run("skips excluded dates", func(t *testing.T) {
		got := resolveValue(t, map[string]any{
			"__datetime.offset__": map[string]any{
				"after": "2021-10-05",
				"by":    "1 day",
				"skip":  []any{"2021-10-06", "2021-10-07"},
			},
		}, datetimeScalar())
		wantTime(t, got, time.Date(2021, 10, 8, 0, 0, 0, 0, time.UTC))
	})

	t.Run("both directions is an error", func(t *testing.T) {
		err := resolveError(t, map[string]any{
			"__datetime.offset__": map[string]any{"before": "2021-10-05", "after": "2021-10-05", "by": "1 day"},
		}, datetimeScalar())
		if !strings.Contains(err.Error(), `both "before" and "after"`) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestDatetimeFirst(t *testing.T) {
	// 2021-09-14 is a Tuesday
	t.Run("after", func(t *testing.T) {
		got := resolveValue(t, map[string]any{
			"__datetime.first__": map[string]any{"weekday": "monday", "after": "2021-09-14"},
		}, datetimeScalar())
		wantTime(t, got, time.Date(2021, 9, 20, 0, 0, 0, 0, time.UTC))
	})

	t.Run("before", func(t *testing.T) {
		got := resolveValue(t, map[string]any{
			"__datetime.first__": map[string]any{"weekday": "monday", "before": "2021-09-14"},
		}, datetimeScalar())
		wantTime(t, got, time.Date(2021, 9, 13, 0, 0, 0, 0, time.UTC))
	})

	t.Run("multiple weekdays", func(t *testing.T) {
		got := resolveValue(t, map[string]any{
			"__datetime.first__": map[string]any{"weekday": []any{"saturday", "sunday"}, "after": "2021-09-14"},
		}, datetimeScalar())
		wantTime(t, got, time.Date(2021, 9, 18, 0, 0, 0, 0, time.UTC))
	})

	t.Run("skips to the next occurrence", func(t *testing.T) {
		got := resolveValue(t, map[string]any{
			"__datetime.first__": map[string]any{
				"weekday": "monday",
				"after":   "2021-09-14",
				"skip":    []any{"2021-09-20"},
			},
		}, datetimeScalar())
		wantTime(t, got, time.Date(2021, 9, 27, 0, 0, 0, 0, time.UTC))
	})
}

func TestDatetimeParse(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"iso date", "2021-10-05", time.Date(2021, 10, 5, 0, 0, 0, 0, time.UTC)},
		{"iso datetime", "2021-10-05 23:59:10", time.Date(2021, 10, 5, 23, 59, 10, 0, time.UTC)},
		{"offset after", "3 days after 2021-10-05", time.Date(2021, 10, 8, 0, 0, 0, 0, time.UTC)},
		{"offset before", "2 hours before 2021-10-05 12:00:00", time.Date(2021, 10, 5, 10, 0, 0, 0, time.UTC)},
		{"first weekday", "first monday after 2021-09-14", time.Date(2021, 9, 20, 0, 0, 0, 0, time.UTC)},
		{"weekday list", "first monday or friday after 2021-09-14", time.Date(2021, 9, 17, 0, 0, 0, 0, time.UTC)},
		{"at suffix", "first monday after 2021-09-14 at 23:59:00", time.Date(2021, 9, 20, 23, 59, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveValue(t, map[string]any{"__datetime.parse__": tc.input}, datetimeScalar())
			wantTime(t, got, tc.want)
		})
	}

	t.Run("nonsense", func(t *testing.T) {
		err := resolveError(t, map[string]any{"__datetime.parse__": "whenever"}, datetimeScalar())
		if !strings.Contains(err.Error(), "cannot parse date") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("truncated to date by the schema", func(t *testing.T) {
		got := resolveValue(t, map[string]any{"__datetime.parse__": "3 days after 2021-10-05"},
			schema.Scalar{Type: "date"})
		d, ok := got.(conf.Date)
		if !ok {
			t.Fatalf("got %T, want a date", got)
		}
		if want := time.Date(2021, 10, 8, 0, 0, 0, 0, time.UTC); !d.Time.Equal(want) {
			t.Fatalf("got %v, want %v", d.Time, want)
		}
	})
}
