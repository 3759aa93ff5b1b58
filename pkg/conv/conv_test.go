package conv

import "testing"

func TestToFloat64(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{4.5, 4.5, true},
		{int32(3), 3, true},
		{" 3.5 ", 3.5, true},
		{[]byte("2"), 2, true},
		{"five", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToFloat64(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ToFloat64(%#v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"b1", "b1"},
		{42, "42"},
		{int64(7), "7"},
		{42.0, "42"},
		{1.5, "1.5"},
	}
	for _, tt := range tests {
		if got, ok := ToString(tt.in); !ok || got != tt.want {
			t.Errorf("ToString(%#v) = %q, %v; want %q", tt.in, got, ok, tt.want)
		}
	}
	if _, ok := ToString(struct{}{}); ok {
		t.Error("struct should not convert")
	}
}

func TestSliceAnyToString(t *testing.T) {
	got := SliceAnyToString([]any{"a", 1, nil, 2.5})
	want := []string{"a", "1", "2.5"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if SliceAnyToString("a") != nil {
		t.Error("non-slice should give nil")
	}
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{"field": "genre", "n": 3.0, "max": "x"}
	if got := ConfigGet(m, "field", "author"); got != "genre" {
		t.Errorf("field = %q", got)
	}
	if got := ConfigGet(m, "missing", "author"); got != "author" {
		t.Errorf("missing = %q", got)
	}
	if got := ConfigGet(m, "n", "default"); got != "default" {
		t.Errorf("type mismatch = %q", got)
	}
	if got := ConfigGetInt(m, "n", 1); got != 3 {
		t.Errorf("n = %d", got)
	}
	if got := ConfigGetInt(m, "max", 1); got != 1 {
		t.Errorf("max = %d", got)
	}
	if got := ConfigGetInt(nil, "n", 5); got != 5 {
		t.Errorf("nil map = %d", got)
	}
}
