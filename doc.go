// Package bencode implements an encoder for the bencode serialization
// format used by BitTorrent. The encoder guarantees that its output is
// syntactically valid bencode: integers are written in canonical decimal
// form, byte strings are length-prefixed, and dictionary keys are in
// strictly ascending byte-lexicographic order.
//
// # Encoding a structure
//
// The easiest way to encode a structure is to implement Encodable for it:
//
//	type Message struct {
//		Foo int64
//		Bar string
//	}
//
//	func (m *Message) MaxDepth() int { return 1 }
//
//	func (m *Message) Encode(e bencode.SingleItemEncoder) error {
//		return e.EmitDict(func(d *bencode.SortedDictEncoder) error {
//			if err := d.EmitPair([]byte("bar"), m.Bar); err != nil {
//				return err
//			}
//			return d.EmitPair([]byte("foo"), m.Foo)
//		})
//	}
//
// Then serialize with ToBytes(&msg), or use Marshal for plain Go values
// (integers, strings, byte slices, slices, and string-keyed maps).
//
// # Nesting depth limits
//
// Every Encodable declares a maximum structural depth. Atoms (integers
// and byte strings) have depth 0; a container's depth is one more than
// its deepest member. Types with dynamically nested structure, such as
// arbitrary trees, should return 0 and rely on the caller to construct
// an Encoder with an adequate budget:
//
//	enc := bencode.NewEncoder().WithMaxDepth(64)
//	if err := enc.Emit(tree); err != nil {
//		return err
//	}
//	out, err := enc.Bytes()
//
// # Error handling
//
// Once an operation on an Encoder fails, every later operation on the
// same Encoder fails early with the same error and leaves the output
// untouched. Callbacks should bail out as soon as an emit call returns
// an error. The only errors the encoder itself produces are
// ErrNestingTooDeep, ErrUnsortedKeys, ErrNothingEmitted, ErrExtraItem
// and ErrEncoderSpent; anything else comes from a value's own Encode
// implementation.
package bencode
