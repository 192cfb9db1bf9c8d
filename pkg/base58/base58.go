package base58

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// DecodeFromString decodes a base58 string into a fixed 32-byte address.
func DecodeFromString(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := base58.Decode(s)
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("decoded base58 string %q is %d bytes, expected 32", s, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// MustDecodeFromString is DecodeFromString for package-level constants.
func MustDecodeFromString(s string) [32]byte {
	out, err := DecodeFromString(s)
	if err != nil {
		panic(err.Error())
	}
	return out
}

func EncodeToString(b [32]byte) string {
	return base58.Encode(b[:])
}
