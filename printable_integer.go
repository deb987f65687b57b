package bencode

import "fmt"

// PrintableInteger is a textual integer emitted as an integer atom
// without numeric conversion, which makes it suitable for values
// outside the range of int64. The text must already be in canonical
// decimal form: an optional leading minus, no leading zeros other than
// the literal "0", and "-0" is not a value.
type PrintableInteger string

// Encode validates the text and writes it inside an integer atom.
func (p PrintableInteger) Encode(e SingleItemEncoder) error {
	if !p.canonical() {
		return fmt.Errorf("bencode: not a canonical integer: %q", string(p))
	}
	return e.emitIntText(string(p))
}

// MaxDepth is 0: integers are atoms.
func (p PrintableInteger) MaxDepth() int { return 0 }

func (p PrintableInteger) canonical() bool {
	s := string(p)
	if len(s) > 0 && s[0] == '-' {
		s = s[1:]
		if len(s) == 0 || s[0] == '0' {
			// "-" and "-0…" are not canonical.
			return false
		}
	}
	if len(s) == 0 {
		return false
	}
	if s[0] == '0' && len(s) > 1 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
