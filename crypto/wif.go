package crypto

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	// wifVersion is the version byte leading every WIF payload.
	wifVersion byte = 0x80

	// wifCompressedFlag is the trailing byte marking that the key maps
	// to a compressed public key. The SDK only ever produces compressed
	// encodings, so the flag is mandatory in both directions.
	wifCompressedFlag byte = 0x01

	// wifPayloadLen is the Base58Check payload length: version byte,
	// 32 key bytes and the compression flag.
	wifPayloadLen = 34
)

// ErrInvalidWIF is returned when WIF text fails Base58Check validation or
// carries an unexpected version byte, compression flag or payload length.
// Decoding is all-or-nothing: no partial key material is ever returned.
var ErrInvalidWIF = errors.New("invalid WIF")

// WIFFromPrivateKey encodes a private key into the printable WIF form:
// Base58Check(0x80 || key || 0x01). For compressed keys the result is
// always 52 characters.
func WIFFromPrivateKey(priv *PrivateKey) string {
	payload := make([]byte, 0, wifPayloadLen-1)
	payload = append(payload, priv.d[:]...)
	payload = append(payload, wifCompressedFlag)
	return base58.CheckEncode(payload, wifVersion)
}

// PrivateKeyFromWIF decodes WIF text back into the private key it wraps.
// The 4-byte Hash256 checksum, the exact payload length and the expected
// version and flag bytes are all validated before the scalar itself is
// range-checked.
func PrivateKeyFromWIF(wif string) (*PrivateKey, error) {
	decoded, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWIF, err)
	}
	if version != wifVersion {
		return nil, fmt.Errorf("%w: unexpected version byte 0x%02x",
			ErrInvalidWIF, version)
	}
	if len(decoded) != wifPayloadLen-1 {
		return nil, fmt.Errorf("%w: unexpected payload length %d",
			ErrInvalidWIF, len(decoded)+1)
	}
	if decoded[PrivKeyBytesLen] != wifCompressedFlag {
		return nil, fmt.Errorf("%w: unexpected compression flag "+
			"0x%02x", ErrInvalidWIF, decoded[PrivKeyBytesLen])
	}

	priv, err := PrivKeyFromBytes(decoded[:PrivKeyBytesLen])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWIF, err)
	}

	return priv, nil
}
