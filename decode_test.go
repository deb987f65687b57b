package bencode

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{"int", "i42e", int64(42)},
		{"negative", "i-3e", int64(-3)},
		{"zero", "i0e", int64(0)},
		{"uint above int64", "i18446744073709551615e", uint64(18446744073709551615)},
		{"string", "4:spam", "spam"},
		{"empty string", "0:", ""},
		{"list", "l4:spami42ee", []any{"spam", int64(42)}},
		{"empty list", "le", []any{}},
		{"dict", "d3:bar4:quux3:fooi1ee", map[string]any{"bar": "quux", "foo": int64(1)}},
		{"empty dict", "de", map[string]any{}},
		{"nested", "d1:ld1:ki0eee", map[string]any{"l": map[string]any{"k": int64(0)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"truncated int", "i42"},
		{"empty int", "ie"},
		{"leading zero", "i03e"},
		{"negative zero", "i-0e"},
		{"bare minus", "i-e"},
		{"junk in int", "i4x2e"},
		{"truncated string", "4:spa"},
		{"missing colon", "4spam"},
		{"length leading zero", "03:abc"},
		{"unterminated list", "li1e"},
		{"unterminated dict", "d3:foo"},
		{"int key", "di1ei2ee"},
		{"key without value", "d3:fooe"},
		{"duplicate key", "d1:ai1e1:ai2ee"},
		{"trailing data", "i1ei2e"},
		{"bare close", "e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.in)); err == nil {
				t.Errorf("Decode(%q) should fail", tt.in)
			}
		})
	}
}

func TestDecode_DepthLimit(t *testing.T) {
	nested := strings.Repeat("l", 4) + "i0e" + strings.Repeat("e", 4)

	if _, err := DecodeWithMaxDepth([]byte(nested), 4); err != nil {
		t.Fatalf("depth 4 should decode with budget 4: %v", err)
	}
	if _, err := DecodeWithMaxDepth([]byte(nested), 3); err == nil {
		t.Fatal("depth 4 should not decode with budget 3")
	}
}

func TestDecode_ErrorOffset(t *testing.T) {
	_, err := Decode([]byte("l4:spami0xe"))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected a DecodeError, got %v", err)
	}
	if de.Offset == 0 {
		t.Errorf("offset should point into the stream, got %d", de.Offset)
	}
}
