package nep2

import (
	"bytes"
	"crypto/aes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/neocore-dev/neocore/crypto"
	"github.com/neocore-dev/neocore/script"
)

const (
	// prefix1 and prefix2 are the fixed object identifier of an
	// encrypted key record. Together with the flag byte they make every
	// encoded key start with the text "6P".
	prefix1 byte = 0x01
	prefix2 byte = 0x42

	// flagByte marks the record as non-EC-multiply mode with a
	// compressed public key.
	flagByte byte = 0xE0

	// addressHashLen is the length of the embedded address checksum.
	addressHashLen = 4

	// payloadLen is the length of the encrypted key material.
	payloadLen = 32

	// recordLen is the full record before Base58Check wrapping: the two
	// prefix bytes, the flag, the address hash and the payload.
	recordLen = 3 + addressHashLen + payloadLen

	// EncodedKeyLen is the length in characters of every encoded key.
	EncodedKeyLen = 58

	// derivedKeyLen is the scrypt output size: a 32-byte XOR pad
	// followed by a 32-byte cipher key.
	derivedKeyLen = 64
)

var (
	// ErrWrongPassword is returned when a decrypt attempt completes but
	// the recovered key does not reproduce the address hash embedded in
	// the record. The address hash is the record's only integrity check,
	// so a corrupted payload is indistinguishable from a wrong password.
	ErrWrongPassword = errors.New("wrong password")

	// ErrInvalidFormat is returned when an encoded key fails structural
	// validation: checksum mismatch, wrong length or wrong header
	// bytes. It is detected before the expensive derivation step.
	ErrInvalidFormat = errors.New("invalid encrypted key format")
)

// Encrypt wraps the pair's private key under the given password. The
// password is NFC normalized and stretched with scrypt, salted by a hash of
// the pair's own address; the key is XORed with the first half of the
// derived bytes and
// block-encrypted under the second half. The result is a printable
// Base58Check string of fixed length.
func Encrypt(password string, pair *crypto.KeyPair,
	params ScryptParams) (string, error) {

	if err := params.Validate(); err != nil {
		return "", err
	}

	addrHash := addressHash(pair.PublicKey())

	derived, err := scrypt.Key(
		normalizePassword(password), addrHash, params.N, params.R,
		params.P, derivedKeyLen,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedParams, err)
	}
	defer zeroBytes(derived)

	block, err := aes.NewCipher(derived[payloadLen:])
	if err != nil {
		return "", fmt.Errorf("unable to init cipher: %w", err)
	}

	// XOR the key with the pad half, then encrypt the two cipher
	// blocks independently (ECB, no padding).
	keyBytes := pair.PrivateKey().Serialize()
	defer zeroBytes(keyBytes)

	xored := xorKey(keyBytes, derived[:payloadLen])
	defer zeroBytes(xored)

	payload := make([]byte, payloadLen)
	block.Encrypt(payload[:aes.BlockSize], xored[:aes.BlockSize])
	block.Encrypt(payload[aes.BlockSize:], xored[aes.BlockSize:])

	log.Debugf("Encrypted private key for %x under scrypt N=%d r=%d "+
		"p=%d", addrHash, params.N, params.R, params.P)

	record := make([]byte, 0, recordLen)
	record = append(record, prefix1, prefix2, flagByte)
	record = append(record, addrHash...)
	record = append(record, payload...)

	return base58CheckEncode(record), nil
}

// Decrypt unwraps an encoded key produced by Encrypt, returning the key
// pair it protects. Structural defects in the encoding are rejected with
// ErrInvalidFormat before any derivation work; a completed decryption whose
// result does not match the embedded address hash fails with
// ErrWrongPassword.
func Decrypt(password, encoded string, params ScryptParams) (*crypto.KeyPair,
	error) {

	if err := params.Validate(); err != nil {
		return nil, err
	}

	record, err := base58CheckDecode(encoded)
	if err != nil {
		return nil, err
	}
	if record[0] != prefix1 || record[1] != prefix2 ||
		record[2] != flagByte {

		return nil, fmt.Errorf("%w: unexpected header bytes "+
			"%02x%02x%02x", ErrInvalidFormat, record[0],
			record[1], record[2])
	}

	addrHash := record[3 : 3+addressHashLen]
	payload := record[3+addressHashLen:]

	derived, err := scrypt.Key(
		normalizePassword(password), addrHash, params.N, params.R,
		params.P, derivedKeyLen,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedParams, err)
	}
	defer zeroBytes(derived)

	block, err := aes.NewCipher(derived[payloadLen:])
	if err != nil {
		return nil, fmt.Errorf("unable to init cipher: %w", err)
	}

	xored := make([]byte, payloadLen)
	block.Decrypt(xored[:aes.BlockSize], payload[:aes.BlockSize])
	block.Decrypt(xored[aes.BlockSize:], payload[aes.BlockSize:])
	defer zeroBytes(xored)

	keyBytes := xorKey(xored, derived[:payloadLen])
	defer zeroBytes(keyBytes)

	// A wrong password yields an effectively random candidate scalar; in
	// the rare case it is not even a valid key there is nothing to
	// distinguish it from any other failed attempt.
	pair, err := crypto.KeyPairFromPrivateKey(keyBytes)
	if err != nil {
		return nil, ErrWrongPassword
	}

	if !bytes.Equal(addressHash(pair.PublicKey()), addrHash) {
		pair.Zero()
		return nil, ErrWrongPassword
	}

	return pair, nil
}

// normalizePassword returns the NFC-normalized UTF-8 bytes of the password.
// Composed and decomposed spellings of the same text must derive the same
// key, and records must interoperate with other implementations of the
// encryption standard, which fix NFC as the canonical form.
func normalizePassword(password string) []byte {
	return norm.NFC.Bytes([]byte(password))
}

// addressHash computes the 4-byte salt binding a record to its key: the
// leading bytes of the double SHA-256 of the key's own address text.
func addressHash(pub *crypto.PublicKey) []byte {
	addr := script.NewSingleSig(pub).Address()
	return crypto.Hash256([]byte(addr))[:addressHashLen]
}

// xorKey returns a XOR b for two equal-length 32-byte slices.
func xorKey(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// base58CheckEncode wraps the record with the leading 4 bytes of its double
// SHA-256 as checksum. The usual single-version-byte helpers don't apply
// here since the record has a multi-byte header, so the checksum is applied
// over the whole record explicitly.
func base58CheckEncode(record []byte) string {
	checksum := crypto.Hash256(record)[:4]
	return base58.Encode(append(record, checksum...))
}

// base58CheckDecode inverts base58CheckEncode, validating the checksum and
// the exact record length.
func base58CheckDecode(encoded string) ([]byte, error) {
	decoded := base58.Decode(encoded)
	if len(decoded) != recordLen+4 {
		return nil, fmt.Errorf("%w: unexpected length %d",
			ErrInvalidFormat, len(decoded))
	}

	record, checksum := decoded[:recordLen], decoded[recordLen:]
	if !bytes.Equal(crypto.Hash256(record)[:4], checksum) {
		return nil, fmt.Errorf("%w: checksum mismatch",
			ErrInvalidFormat)
	}

	return record, nil
}

// zeroBytes overwrites the slice contents.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
