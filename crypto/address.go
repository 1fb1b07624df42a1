package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	// AddressVersion is the version byte prepended to a script hash
	// before Base58Check encoding it into an address.
	AddressVersion byte = 0x35

	// ScriptHashLen is the length in bytes of a script hash.
	ScriptHashLen = 20
)

// ErrInvalidAddress is returned when address text fails Base58Check
// validation or does not carry the expected version byte and payload length.
var ErrInvalidAddress = errors.New("invalid address")

// ScriptHash is the RIPEMD160(SHA256(script)) digest of a verification
// script. It is the on-chain identifier of the account controlled by that
// script.
type ScriptHash [ScriptHashLen]byte

// NewScriptHash constructs a ScriptHash from a 20-byte slice.
func NewScriptHash(b []byte) (ScriptHash, error) {
	var h ScriptHash
	if len(b) != ScriptHashLen {
		return h, fmt.Errorf("invalid script hash length %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// String returns the hex encoding of the hash.
func (h ScriptHash) String() string {
	return hex.EncodeToString(h[:])
}

// AddressFromScriptHash encodes a script hash into its printable address
// form: Base58Check(version || hash).
func AddressFromScriptHash(h ScriptHash) string {
	return base58.CheckEncode(h[:], AddressVersion)
}

// ScriptHashFromAddress decodes a printable address back into the script
// hash it commits to. The checksum, version byte and payload length are all
// validated; any mismatch yields ErrInvalidAddress with no partial result.
func ScriptHashFromAddress(addr string) (ScriptHash, error) {
	var h ScriptHash

	decoded, version, err := base58.CheckDecode(addr)
	if err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if version != AddressVersion {
		return h, fmt.Errorf("%w: unexpected version byte 0x%02x",
			ErrInvalidAddress, version)
	}
	if len(decoded) != ScriptHashLen {
		return h, fmt.Errorf("%w: unexpected payload length %d",
			ErrInvalidAddress, len(decoded))
	}

	copy(h[:], decoded)
	return h, nil
}
