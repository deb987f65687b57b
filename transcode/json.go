package transcode

import (
	"github.com/tidwall/jsonc"

	"github.com/canonwire/bencode"
)

// FromJSON converts a JSON document to bencode. Input may be JSONC:
// comments and trailing commas are stripped before parsing, which
// makes hand-written fixture files pleasant to keep.
func FromJSON(data []byte) ([]byte, error) {
	v, err := bencode.FromJSON(jsonc.ToJSON(data))
	if err != nil {
		return nil, err
	}
	return bencode.Marshal(v)
}

// ToJSON decodes one bencode value and renders it as JSON.
func ToJSON(data []byte) ([]byte, error) {
	v, err := bencode.Decode(data)
	if err != nil {
		return nil, err
	}
	return bencode.ToJSON(v)
}
