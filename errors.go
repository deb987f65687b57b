package bencode

import "errors"

// Errors produced by the encoder itself. They are latched into the
// Encoder on first occurrence and re-returned by every subsequent
// operation, so callers can match them with errors.Is at any point,
// including on the final Bytes call.
var (
	// ErrNestingTooDeep is returned when opening a list or dict would
	// exceed the encoder's remaining depth budget.
	ErrNestingTooDeep = errors.New("bencode: nesting depth limit exceeded")

	// ErrUnsortedKeys is returned when a dict key is not strictly
	// greater than the previous key in the same dict, or when two keys
	// in a sort-at-close dict compare equal.
	ErrUnsortedKeys = errors.New("bencode: dict keys must be strictly ascending")

	// ErrNothingEmitted is returned when a value slot was left empty:
	// Bytes was called before a top-level value was emitted, or an
	// Encode implementation returned success without emitting anything.
	ErrNothingEmitted = errors.New("bencode: no value emitted")

	// ErrExtraItem is returned when more than one value is emitted
	// where exactly one is allowed: a second top-level value on the
	// same encoder, or a second emission through a SingleItemEncoder.
	ErrExtraItem = errors.New("bencode: more than one value emitted in a single-value slot")

	// ErrEncoderSpent is returned by any operation on an encoder whose
	// output has already been extracted with Bytes.
	ErrEncoderSpent = errors.New("bencode: encoder already consumed")
)
