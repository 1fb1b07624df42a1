package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/ripemd160"
)

// calcHash runs buf through the passed hasher once and returns the digest.
func calcHash(buf []byte, hasher hash.Hash) []byte {
	hasher.Write(buf)
	return hasher.Sum(nil)
}

// Sha256 returns the SHA-256 digest of buf.
func Sha256(buf []byte) []byte {
	return calcHash(buf, sha256.New())
}

// Hash160 calculates the hash ripemd160(sha256(b)). This is the composition
// used to derive script hashes, and therefore addresses, from verification
// scripts.
func Hash160(buf []byte) []byte {
	return calcHash(calcHash(buf, sha256.New()), ripemd160.New())
}

// Hash256 calculates the hash sha256(sha256(b)). The first four bytes of this
// digest are used as the integrity checksum in every Base58Check encoding
// produced by the SDK.
func Hash256(buf []byte) []byte {
	return calcHash(calcHash(buf, sha256.New()), sha256.New())
}

// HmacSha512 returns the HMAC-SHA512 of data under the given key. This is the
// PRF driving hierarchical key derivation.
func HmacSha512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}
