package transcode

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/canonwire/bencode"
)

// ToMsgpack decodes one bencode value and re-encodes it as MessagePack.
// Unlike ToCBOR this is not canonical: msgpack map key order follows Go
// map iteration.
func ToMsgpack(data []byte) ([]byte, error) {
	v, err := bencode.Decode(data)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(v)
}
