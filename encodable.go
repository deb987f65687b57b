package bencode

import (
	"fmt"
	"reflect"
	"sort"
)

// Encodable is implemented by types that can describe their own
// bencode serialization. Encode receives a one-shot view and must emit
// exactly one value through it.
//
// MaxDepth declares the type's maximum structural depth: 0 for atoms,
// 1 + the deepest possible child for containers. Types with unbounded
// or dynamic nesting must return 0 and document that callers need to
// size the encoder's budget themselves with WithMaxDepth.
type Encodable interface {
	Encode(e SingleItemEncoder) error
	MaxDepth() int
}

// ToBytes encodes v into a finished bencode buffer in one call. The
// encoder's depth budget is taken from v.MaxDepth.
func ToBytes(v Encodable) ([]byte, error) {
	enc := NewEncoder().WithMaxDepth(v.MaxDepth())
	if err := enc.Emit(v); err != nil {
		return nil, err
	}
	return enc.Bytes()
}

// Marshal encodes a plain Go value. Supported types: all integer
// widths, bool (as 0/1), string, []byte, AsString, PrintableInteger,
// Encodable, slices and arrays of supported types, string-keyed maps
// of supported types, and non-nil pointers to any of these. Maps are
// emitted with keys in sorted order.
//
// The encoder uses DefaultMaxDepth; for deeper trees drive an Encoder
// directly.
func Marshal(v any) ([]byte, error) {
	enc := NewEncoder()
	if err := enc.Emit(anyValue{v}); err != nil {
		return nil, err
	}
	return enc.Bytes()
}

// anyValue adapts an arbitrary Go value to the Encodable contract.
// Depth is dynamic, hence 0.
type anyValue struct{ v any }

func (a anyValue) Encode(e SingleItemEncoder) error { return encodeAny(e, a.v) }
func (a anyValue) MaxDepth() int                    { return 0 }

// encodeAny dispatches on the value's dynamic type. Type assertions
// cover the common cases; reflection handles the long tail of named
// slice, map and pointer types.
func encodeAny(e SingleItemEncoder, v any) error {
	switch val := v.(type) {
	case Encodable:
		return e.Emit(val)
	case int:
		return e.EmitInt(int64(val))
	case int8:
		return e.EmitInt(int64(val))
	case int16:
		return e.EmitInt(int64(val))
	case int32:
		return e.EmitInt(int64(val))
	case int64:
		return e.EmitInt(val)
	case uint:
		return e.EmitUint(uint64(val))
	case uint8:
		return e.EmitUint(uint64(val))
	case uint16:
		return e.EmitUint(uint64(val))
	case uint32:
		return e.EmitUint(uint64(val))
	case uint64:
		return e.EmitUint(val)
	case bool:
		// No boolean atom in bencode; layered over integers.
		if val {
			return e.EmitInt(1)
		}
		return e.EmitInt(0)
	case string:
		return e.EmitString(val)
	case []byte:
		return e.EmitBytes(val)
	case []any:
		return e.EmitList(func(enc *Encoder) error {
			for _, item := range val {
				if err := emitListItem(enc, item); err != nil {
					return err
				}
			}
			return nil
		})
	case map[string]any:
		return emitSortedMap(e, val, func(x any) any { return x })
	case map[string]string:
		return emitSortedMap(e, val, func(x string) any { return x })
	case nil:
		return fmt.Errorf("bencode: cannot encode nil")
	}
	return encodeReflect(e, reflect.ValueOf(v))
}

// emitListItem encodes one list element through a fresh one-shot view.
func emitListItem(enc *Encoder, item any) error {
	written := false
	s := SingleItemEncoder{enc: enc, written: &written}
	if err := encodeAny(s, item); err != nil {
		return err
	}
	if !written {
		return enc.fail(ErrNothingEmitted)
	}
	return nil
}

// emitSortedMap sorts the keys up front and goes through the sorted
// dict path, so key-order enforcement stays on.
func emitSortedMap[V any](e SingleItemEncoder, m map[string]V, box func(V) any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return e.EmitDict(func(d *SortedDictEncoder) error {
		for _, k := range keys {
			if err := d.EmitPair([]byte(k), box(m[k])); err != nil {
				return err
			}
		}
		return nil
	})
}

func encodeReflect(e SingleItemEncoder, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return fmt.Errorf("bencode: cannot encode nil %s", rv.Type())
		}
		return encodeAny(e, rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.EmitInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return e.EmitUint(rv.Uint())
	case reflect.String:
		return e.EmitString(rv.String())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return e.EmitBytes(rv.Bytes())
		}
		return e.EmitList(func(enc *Encoder) error {
			for i := 0; i < rv.Len(); i++ {
				if err := emitListItem(enc, rv.Index(i).Interface()); err != nil {
					return err
				}
			}
			return nil
		})
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("bencode: map keys must be strings, got %s", rv.Type())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return emitSortedMap(e, m, func(x any) any { return x })
	}
	return fmt.Errorf("bencode: unsupported type %s", rv.Type())
}

// AsString marks a byte slice as a byte-string atom. []byte already
// encodes that way through Marshal; AsString exists for APIs that
// traffic in Encodable values and want the text/bytes distinction
// spelled out at the type level.
type AsString []byte

// Encode writes the wrapped bytes as a byte-string atom.
func (a AsString) Encode(e SingleItemEncoder) error { return e.EmitBytes(a) }

// MaxDepth is 0: byte strings are atoms.
func (a AsString) MaxDepth() int { return 0 }
