// Package transcode re-encodes bencode streams as other serialization
// formats. Structure survives the trip; bencode-specific guarantees
// (canonical key order, integer text form) are re-established by the
// target codec where it has an equivalent notion.
package transcode

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/canonwire/bencode"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. This is the closest CBOR
// analogue of bencode's canonical form, so the same bencode input
// always produces identical CBOR bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("transcode: CBOR encoder initialization failed: " + err.Error())
	}
}

// ToCBOR decodes one bencode value and re-encodes it as deterministic
// CBOR.
func ToCBOR(data []byte) ([]byte, error) {
	v, err := bencode.Decode(data)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(v)
}
