package bencode

import (
	"fmt"
	"strconv"
)

// DecodeError reports a malformed bencode stream with the byte offset
// where parsing stopped.
type DecodeError struct {
	Message string
	Offset  int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bencode: %s at offset %d", e.Message, e.Offset)
}

// Decode parses one complete bencode value. Integers come back as
// int64 (or uint64 when above the int64 range), byte strings as
// string, lists as []any and dicts as map[string]any.
//
// Decode is strict about syntax: truncation, trailing bytes, leading
// zeros and "-0" are all errors. It does not verify that dict keys
// were sorted; feed its output back through Marshal to canonicalize.
func Decode(data []byte) (any, error) {
	return DecodeWithMaxDepth(data, DefaultMaxDepth)
}

// DecodeWithMaxDepth parses with an explicit nesting budget, mirroring
// the encoder's depth accounting.
func DecodeWithMaxDepth(data []byte, maxDepth int) (any, error) {
	d := &decoder{data: data, remaining: maxDepth}
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.data) {
		return nil, d.errorf("trailing data after value")
	}
	return v, nil
}

type decoder struct {
	data      []byte
	pos       int
	remaining int
}

func (d *decoder) errorf(format string, args ...any) error {
	return &DecodeError{Message: fmt.Sprintf(format, args...), Offset: d.pos}
}

func (d *decoder) peek() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, d.errorf("unexpected end of data")
	}
	return d.data[d.pos], nil
}

func (d *decoder) value() (any, error) {
	c, err := d.peek()
	if err != nil {
		return nil, err
	}
	switch {
	case c == 'i':
		return d.integer()
	case c >= '0' && c <= '9':
		s, err := d.byteString()
		if err != nil {
			return nil, err
		}
		return s, nil
	case c == 'l':
		return d.list()
	case c == 'd':
		return d.dict()
	default:
		return nil, d.errorf("unexpected byte %q", c)
	}
}

func (d *decoder) integer() (any, error) {
	start := d.pos
	d.pos++ // 'i'
	end := d.pos
	for end < len(d.data) && d.data[end] != 'e' {
		end++
	}
	if end == len(d.data) {
		return nil, d.errorf("unterminated integer")
	}
	text := string(d.data[start+1 : end])
	if !PrintableInteger(text).canonical() {
		return nil, d.errorf("non-canonical integer %q", text)
	}
	d.pos = end + 1
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	if u, err := strconv.ParseUint(text, 10, 64); err == nil {
		return u, nil
	}
	return nil, &DecodeError{Message: fmt.Sprintf("integer %q out of range", text), Offset: start}
}

func (d *decoder) byteString() (string, error) {
	start := d.pos
	end := d.pos
	for end < len(d.data) && d.data[end] != ':' {
		end++
	}
	if end == len(d.data) {
		return "", d.errorf("unterminated string length")
	}
	lenText := string(d.data[start:end])
	if len(lenText) > 1 && lenText[0] == '0' {
		return "", d.errorf("string length %q has leading zero", lenText)
	}
	n, err := strconv.ParseInt(lenText, 10, 64)
	if err != nil {
		return "", d.errorf("bad string length %q", lenText)
	}
	d.pos = end + 1
	if int64(len(d.data)-d.pos) < n {
		return "", d.errorf("string shorter than declared length %d", n)
	}
	s := string(d.data[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}

func (d *decoder) list() (any, error) {
	if d.remaining <= 0 {
		return nil, d.errorf("nesting depth limit exceeded")
	}
	d.remaining--
	d.pos++ // 'l'
	items := []any{}
	for {
		c, err := d.peek()
		if err != nil {
			return nil, err
		}
		if c == 'e' {
			d.pos++
			d.remaining++
			return items, nil
		}
		item, err := d.value()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (d *decoder) dict() (any, error) {
	if d.remaining <= 0 {
		return nil, d.errorf("nesting depth limit exceeded")
	}
	d.remaining--
	d.pos++ // 'd'
	m := map[string]any{}
	for {
		c, err := d.peek()
		if err != nil {
			return nil, err
		}
		if c == 'e' {
			d.pos++
			d.remaining++
			return m, nil
		}
		if c < '0' || c > '9' {
			return nil, d.errorf("dict key must be a byte string, got %q", c)
		}
		key, err := d.byteString()
		if err != nil {
			return nil, err
		}
		if _, dup := m[key]; dup {
			return nil, d.errorf("duplicate dict key %q", key)
		}
		val, err := d.value()
		if err != nil {
			return nil, err
		}
		m[key] = val
	}
}
