package bencode

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Converts between JSON documents and the value trees that Marshal
// and Decode traffic in. Bencode has no float, boolean or null atom,
// so the mapping is narrower than JSON:
//
//   - numbers must be integral; anything with a fractional part or
//     exponent beyond integer range is an error
//   - booleans become the integers 0 and 1
//   - null is rejected
//   - byte strings that are not valid UTF-8 become base64 strings on
//     the way out

// FromJSON converts a JSON document to a tree of int64 / string /
// []any / map[string]any values ready for Marshal.
func FromJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("bencode: JSON parse error: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("bencode: trailing data after JSON value")
	}
	return fromJSONValue(v)
}

func fromJSONValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("bencode: JSON null has no bencode form")

	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil

	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		// Large positive integers beyond int64 still fit the format.
		if p := PrintableInteger(val.String()); p.canonical() {
			return p, nil
		}
		return nil, fmt.Errorf("bencode: JSON number %s is not an integer", val)

	case string:
		return val, nil

	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			conv, err := fromJSONValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = conv
		}
		return items, nil

	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			conv, err := fromJSONValue(item)
			if err != nil {
				return nil, err
			}
			m[k] = conv
		}
		return m, nil
	}
	return nil, fmt.Errorf("bencode: unsupported JSON value %T", v)
}

// ToJSON converts a decoded bencode tree (the output of Decode) to a
// JSON document.
func ToJSON(v any) ([]byte, error) {
	conv, err := toJSONValue(v)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(conv)
	if err != nil {
		return nil, fmt.Errorf("bencode: JSON encode error: %w", err)
	}
	return out, nil
}

func toJSONValue(v any) (any, error) {
	switch val := v.(type) {
	case int64, uint64:
		return val, nil

	case string:
		if utf8.ValidString(val) {
			return val, nil
		}
		return base64.StdEncoding.EncodeToString([]byte(val)), nil

	case []byte:
		if utf8.Valid(val) {
			return string(val), nil
		}
		return base64.StdEncoding.EncodeToString(val), nil

	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			conv, err := toJSONValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = conv
		}
		return items, nil

	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			conv, err := toJSONValue(item)
			if err != nil {
				return nil, err
			}
			m[k] = conv
		}
		return m, nil
	}
	return nil, fmt.Errorf("bencode: unsupported value %T", v)
}
