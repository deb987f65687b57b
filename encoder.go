package bencode

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// DefaultMaxDepth is the nesting budget of encoders created with
// NewEncoder. It is deliberately conservative; use WithMaxDepth for
// deeply nested structures.
const DefaultMaxDepth = 32

// Encoder builds one bencode value into an in-memory buffer.
//
// An Encoder is single-use: emit exactly one top-level value, then
// extract the result with Bytes. The first error encountered anywhere
// in the emission tree is latched; every later operation returns that
// same error without touching the buffer.
//
// An Encoder must not be used from multiple goroutines.
type Encoder struct {
	buf       []byte
	err       error
	remaining int  // container levels still allowed
	open      int  // currently open containers
	topDone   bool // one complete top-level value in buf
	spent     bool // Bytes has been called
}

// NewEncoder returns an encoder with the default depth budget.
func NewEncoder() *Encoder {
	return &Encoder{remaining: DefaultMaxDepth}
}

// WithMaxDepth replaces the nesting budget. Call it before emitting
// anything; n counts how many container levels may be open at once.
func (e *Encoder) WithMaxDepth(n int) *Encoder {
	e.remaining = n
	return e
}

// fail latches err as the encoder's sticky error. The first error wins;
// later failures return the original.
func (e *Encoder) fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	return e.err
}

// ready reports whether the encoder can accept another mutation.
func (e *Encoder) ready() error {
	if e.err != nil {
		return e.err
	}
	if e.spent {
		return e.fail(ErrEncoderSpent)
	}
	return nil
}

// itemStart validates that the current position can hold another value.
func (e *Encoder) itemStart() error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.open == 0 && e.topDone {
		return e.fail(ErrExtraItem)
	}
	return nil
}

// itemDone records a completed value at the current position.
func (e *Encoder) itemDone() {
	if e.open == 0 {
		e.topDone = true
	}
}

// EmitInt writes an integer atom in canonical decimal form.
func (e *Encoder) EmitInt(i int64) error {
	if err := e.itemStart(); err != nil {
		return err
	}
	e.buf = append(e.buf, 'i')
	e.buf = strconv.AppendInt(e.buf, i, 10)
	e.buf = append(e.buf, 'e')
	e.itemDone()
	return nil
}

// EmitUint writes an unsigned integer atom. Needed for values above
// the int64 range; otherwise equivalent to EmitInt.
func (e *Encoder) EmitUint(u uint64) error {
	if err := e.itemStart(); err != nil {
		return err
	}
	e.buf = append(e.buf, 'i')
	e.buf = strconv.AppendUint(e.buf, u, 10)
	e.buf = append(e.buf, 'e')
	e.itemDone()
	return nil
}

// EmitBytes writes a byte-string atom: decimal length, ':', then the
// raw bytes verbatim. Bencode byte strings are length-prefixed, not
// delimited, so no escaping happens.
func (e *Encoder) EmitBytes(b []byte) error {
	if err := e.itemStart(); err != nil {
		return err
	}
	e.buf = strconv.AppendInt(e.buf, int64(len(b)), 10)
	e.buf = append(e.buf, ':')
	e.buf = append(e.buf, b...)
	e.itemDone()
	return nil
}

// EmitString writes a byte-string atom from a Go string.
func (e *Encoder) EmitString(s string) error {
	if err := e.itemStart(); err != nil {
		return err
	}
	e.buf = strconv.AppendInt(e.buf, int64(len(s)), 10)
	e.buf = append(e.buf, ':')
	e.buf = append(e.buf, s...)
	e.itemDone()
	return nil
}

// emitIntText writes an integer atom from pre-validated decimal text.
func (e *Encoder) emitIntText(s string) error {
	if err := e.itemStart(); err != nil {
		return err
	}
	e.buf = append(e.buf, 'i')
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 'e')
	e.itemDone()
	return nil
}

// emitRaw appends an already-encoded value. Internal: callers have
// rendered raw through a nested encoder, so it is known to be one
// complete valid value.
func (e *Encoder) emitRaw(raw []byte) error {
	if err := e.itemStart(); err != nil {
		return err
	}
	e.buf = append(e.buf, raw...)
	e.itemDone()
	return nil
}

// openContainer charges the depth budget and writes the opening token.
func (e *Encoder) openContainer(tok byte) error {
	if err := e.itemStart(); err != nil {
		return err
	}
	if e.remaining <= 0 {
		return e.fail(ErrNestingTooDeep)
	}
	e.remaining--
	e.open++
	e.buf = append(e.buf, tok)
	return nil
}

// closeContainer writes the closing token and restores the budget.
func (e *Encoder) closeContainer() error {
	if err := e.ready(); err != nil {
		return err
	}
	e.buf = append(e.buf, 'e')
	e.remaining++
	e.open--
	e.itemDone()
	return nil
}

// EmitList writes a list. The callback receives the same encoder and
// emits the list's items in order; if it returns an error the closing
// token is never written and the encoder is dead.
func (e *Encoder) EmitList(cb func(*Encoder) error) error {
	if err := e.openContainer('l'); err != nil {
		return err
	}
	if err := cb(e); err != nil {
		return e.fail(err)
	}
	return e.closeContainer()
}

// EmitDict writes a dict whose pairs the callback must supply in
// strictly ascending key order. Out-of-order or duplicate keys fail
// with ErrUnsortedKeys.
func (e *Encoder) EmitDict(cb func(*SortedDictEncoder) error) error {
	if err := e.openContainer('d'); err != nil {
		return err
	}
	d := &SortedDictEncoder{enc: e}
	if err := cb(d); err != nil {
		return e.fail(err)
	}
	return e.closeContainer()
}

// EmitAndSortDict writes a dict whose pairs may arrive in any order.
// Each value is rendered through a nested encoder as it arrives; the
// pairs are sorted by key when the callback returns. Two equal keys
// fail with ErrUnsortedKeys.
func (e *Encoder) EmitAndSortDict(cb func(*UnsortedDictEncoder) error) error {
	if err := e.openContainer('d'); err != nil {
		return err
	}
	u := &UnsortedDictEncoder{enc: e, remaining: e.remaining}
	if err := cb(u); err != nil {
		return e.fail(err)
	}
	if err := u.flush(); err != nil {
		return err
	}
	return e.closeContainer()
}

// Emit encodes one top-level value through its Encodable contract.
func (e *Encoder) Emit(v Encodable) error {
	if err := e.ready(); err != nil {
		return err
	}
	written := false
	if err := v.Encode(SingleItemEncoder{enc: e, written: &written}); err != nil {
		return e.fail(err)
	}
	if !written {
		return e.fail(ErrNothingEmitted)
	}
	return nil
}

// Bytes consumes the encoder and returns the finished value, or the
// latched error. Exactly one top-level value must have been emitted.
// After a successful Bytes the encoder is spent and every further
// operation fails with ErrEncoderSpent.
func (e *Encoder) Bytes() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.spent {
		return nil, e.fail(ErrEncoderSpent)
	}
	if e.open != 0 {
		return nil, e.fail(fmt.Errorf("bencode: Bytes called with %d open container(s)", e.open))
	}
	if !e.topDone {
		return nil, e.fail(ErrNothingEmitted)
	}
	e.spent = true
	return e.buf, nil
}

// SingleItemEncoder is a one-shot view over an Encoder handed to
// Encodable implementations. At most one value may be emitted through
// it; a second emission fails with ErrExtraItem. Views are created by
// the encoder for every value slot and must not be stored.
type SingleItemEncoder struct {
	enc     *Encoder
	written *bool
}

func (s SingleItemEncoder) guard() error {
	if err := s.enc.ready(); err != nil {
		return err
	}
	if *s.written {
		return s.enc.fail(ErrExtraItem)
	}
	return nil
}

// EmitInt writes an integer atom into this slot.
func (s SingleItemEncoder) EmitInt(i int64) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.enc.EmitInt(i); err != nil {
		return err
	}
	*s.written = true
	return nil
}

// EmitUint writes an unsigned integer atom into this slot.
func (s SingleItemEncoder) EmitUint(u uint64) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.enc.EmitUint(u); err != nil {
		return err
	}
	*s.written = true
	return nil
}

// emitIntText writes a pre-validated integer atom into this slot.
func (s SingleItemEncoder) emitIntText(text string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.enc.emitIntText(text); err != nil {
		return err
	}
	*s.written = true
	return nil
}

// EmitBytes writes a byte-string atom into this slot.
func (s SingleItemEncoder) EmitBytes(b []byte) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.enc.EmitBytes(b); err != nil {
		return err
	}
	*s.written = true
	return nil
}

// EmitString writes a byte-string atom from a Go string.
func (s SingleItemEncoder) EmitString(str string) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.enc.EmitString(str); err != nil {
		return err
	}
	*s.written = true
	return nil
}

// EmitList writes a list into this slot.
func (s SingleItemEncoder) EmitList(cb func(*Encoder) error) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.enc.EmitList(cb); err != nil {
		return err
	}
	*s.written = true
	return nil
}

// EmitDict writes a pre-sorted dict into this slot.
func (s SingleItemEncoder) EmitDict(cb func(*SortedDictEncoder) error) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.enc.EmitDict(cb); err != nil {
		return err
	}
	*s.written = true
	return nil
}

// EmitAndSortDict writes a sort-at-close dict into this slot.
func (s SingleItemEncoder) EmitAndSortDict(cb func(*UnsortedDictEncoder) error) error {
	if err := s.guard(); err != nil {
		return err
	}
	if err := s.enc.EmitAndSortDict(cb); err != nil {
		return err
	}
	*s.written = true
	return nil
}

// Emit fills this slot from a value's Encodable contract. The value
// shares the slot, so it still gets to emit exactly one item.
func (s SingleItemEncoder) Emit(v Encodable) error {
	if err := v.Encode(s); err != nil {
		return s.enc.fail(err)
	}
	if !*s.written {
		return s.enc.fail(ErrNothingEmitted)
	}
	return nil
}

// SortedDictEncoder emits dict pairs that the caller supplies in
// strictly ascending byte-lexicographic key order.
type SortedDictEncoder struct {
	enc  *Encoder
	last []byte
	have bool
}

// EmitPair writes one key/value pair. The key must be strictly greater
// than the previous key in this dict. The value may be any type
// accepted by Marshal, including Encodable implementations.
func (d *SortedDictEncoder) EmitPair(key []byte, value any) error {
	return d.EmitPairWith(key, func(s SingleItemEncoder) error {
		return encodeAny(s, value)
	})
}

// EmitPairBytes writes one pair whose value is a raw byte string.
// Useful for pre-encoded or binary values.
func (d *SortedDictEncoder) EmitPairBytes(key, value []byte) error {
	return d.EmitPairWith(key, func(s SingleItemEncoder) error {
		return s.EmitBytes(value)
	})
}

// EmitPairWith writes the key, then invokes cb with a fresh one-shot
// view for the value.
func (d *SortedDictEncoder) EmitPairWith(key []byte, cb func(SingleItemEncoder) error) error {
	if err := d.enc.ready(); err != nil {
		return err
	}
	if d.have && bytes.Compare(key, d.last) <= 0 {
		return d.enc.fail(fmt.Errorf("%w: %q after %q", ErrUnsortedKeys, key, d.last))
	}
	d.last = append(d.last[:0], key...)
	d.have = true
	if err := d.enc.EmitBytes(key); err != nil {
		return err
	}
	written := false
	if err := cb(SingleItemEncoder{enc: d.enc, written: &written}); err != nil {
		return d.enc.fail(err)
	}
	if !written {
		return d.enc.fail(fmt.Errorf("%w: dict key %q has no value", ErrNothingEmitted, key))
	}
	return nil
}

type rawPair struct {
	key   []byte
	value []byte
}

// UnsortedDictEncoder buffers dict pairs and sorts them by key when
// the dict closes. Values are rendered eagerly through a nested
// encoder carrying the remaining depth budget, so ErrNestingTooDeep
// still fires at the same depth it would in a sorted dict.
type UnsortedDictEncoder struct {
	enc       *Encoder
	remaining int
	pairs     []rawPair
}

// EmitPair buffers one key/value pair. The value may be any type
// accepted by Marshal, including Encodable implementations.
func (u *UnsortedDictEncoder) EmitPair(key []byte, value any) error {
	return u.EmitPairWith(key, func(s SingleItemEncoder) error {
		return encodeAny(s, value)
	})
}

// EmitPairWith buffers one pair, rendering the value through cb now.
func (u *UnsortedDictEncoder) EmitPairWith(key []byte, cb func(SingleItemEncoder) error) error {
	if err := u.enc.ready(); err != nil {
		return err
	}
	nested := NewEncoder().WithMaxDepth(u.remaining)
	if err := nested.Emit(encodeFunc(cb)); err != nil {
		return u.enc.fail(err)
	}
	raw, err := nested.Bytes()
	if err != nil {
		return u.enc.fail(err)
	}
	u.pairs = append(u.pairs, rawPair{
		key:   append([]byte(nil), key...),
		value: raw,
	})
	return nil
}

// flush sorts the buffered pairs and writes them through the owning
// encoder. Equal keys are ambiguous, not last-one-wins, so they fail.
func (u *UnsortedDictEncoder) flush() error {
	if err := u.enc.ready(); err != nil {
		return err
	}
	sort.Slice(u.pairs, func(i, j int) bool {
		return bytes.Compare(u.pairs[i].key, u.pairs[j].key) < 0
	})
	for i, p := range u.pairs {
		if i > 0 && bytes.Equal(p.key, u.pairs[i-1].key) {
			return u.enc.fail(fmt.Errorf("%w: duplicate key %q", ErrUnsortedKeys, p.key))
		}
		if err := u.enc.EmitBytes(p.key); err != nil {
			return err
		}
		if err := u.enc.emitRaw(p.value); err != nil {
			return err
		}
	}
	return nil
}

// encodeFunc adapts a callback into an Encodable with dynamic depth.
type encodeFunc func(SingleItemEncoder) error

func (f encodeFunc) Encode(s SingleItemEncoder) error { return f(s) }
func (f encodeFunc) MaxDepth() int                    { return 0 }
