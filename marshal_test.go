package bencode

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarshal(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"int", 42, "i42e"},
		{"int8", int8(-3), "i-3e"},
		{"uint64 max", uint64(18446744073709551615), "i18446744073709551615e"},
		{"bool true", true, "i1e"},
		{"bool false", false, "i0e"},
		{"string", "spam", "4:spam"},
		{"bytes", []byte("spam"), "4:spam"},
		{"as string", AsString("spam"), "4:spam"},
		{"list", []any{"spam", 42}, "l4:spami42ee"},
		{"typed slice", []string{"a", "b"}, "l1:a1:be"},
		{"int slice", []int{1, 2, 3}, "li1ei2ei3ee"},
		{"map", map[string]any{"foo": 1, "bar": "quux"}, "d3:bar4:quux3:fooi1ee"},
		{"typed map", map[string]string{"b": "2", "a": "1"}, "d1:a1:11:b1:2e"},
		{"nested", map[string]any{"l": []any{1, "x"}}, "d1:lli1e1:xee"},
		{"pointer", ptr(7), "i7e"},
		{"encodable", PrintableInteger("123"), "i123e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestMarshal_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"nil pointer", (*int)(nil)},
		{"float", 3.14},
		{"int-keyed map", map[int]string{1: "x"}},
		{"chan", make(chan int)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Marshal(tt.in); err == nil {
				t.Errorf("Marshal(%v) should fail", tt.in)
			}
		})
	}
}

// ============================================================
// Round-Trip Tests
// ============================================================

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"int", int64(42)},
		{"negative", int64(-9000)},
		{"zero", int64(0)},
		{"string", "spam"},
		{"empty string", ""},
		{"binary string", string([]byte{0, 255, 10})},
		{"list", []any{"spam", int64(42)}},
		{"empty list", []any{}},
		{"dict", map[string]any{"bar": "quux", "foo": int64(1)}},
		{"empty dict", map[string]any{}},
		{"nested", map[string]any{
			"ints": []any{int64(1), int64(2)},
			"meta": map[string]any{"v": int64(3)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if diff := cmp.Diff(tt.in, decoded); diff != "" {
				t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshal_DepthLimited(t *testing.T) {
	// Build a tree deeper than DefaultMaxDepth.
	v := any(int64(0))
	for i := 0; i < DefaultMaxDepth+1; i++ {
		v = []any{v}
	}
	if _, err := Marshal(v); !errors.Is(err, ErrNestingTooDeep) {
		t.Fatalf("expected ErrNestingTooDeep, got %v", err)
	}

	// An explicitly sized encoder handles the same tree.
	enc := NewEncoder().WithMaxDepth(DefaultMaxDepth + 1)
	if err := enc.Emit(anyValue{v}); err != nil {
		t.Fatalf("sized encoder failed: %v", err)
	}
	if _, err := enc.Bytes(); err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
}
