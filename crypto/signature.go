package crypto

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

const (
	// SigCompactLen is the length in bytes of the compact signature
	// serialization: r and s, each left-padded to 32 bytes.
	SigCompactLen = 64

	// sigComponentLen is the width of a single padded component.
	sigComponentLen = 32
)

var (
	// ErrMalformedSignature is returned when signature bytes cannot be
	// decoded: bad DER tags, non-minimal integer encodings, truncated
	// input, trailing data or a wrong compact length.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrInvalidSignature is returned by Verify when the signature
	// object itself is structurally unusable, as opposed to failing
	// cryptographic verification.
	ErrInvalidSignature = errors.New("invalid signature")
)

// Signature is an ECDSA signature over the curve, a pair of scalars (r, s).
// A usable signature has both components in the range [1, N-1]; IsValid
// reports that property without performing any curve operations.
type Signature struct {
	r *big.Int
	s *big.Int
}

// NewSignature instantiates a signature from the given component scalars.
// The inputs are copied so the signature does not alias caller memory.
func NewSignature(r, s *big.Int) *Signature {
	return &Signature{
		r: new(big.Int).Set(r),
		s: new(big.Int).Set(s),
	}
}

// IsValid reports whether both components lie in the range [1, N-1]. This
// distinguishes a malformed signature object from one that merely fails
// verification against a particular message and key.
func (sig *Signature) IsValid() bool {
	if sig.r == nil || sig.s == nil {
		return false
	}
	return sig.r.Sign() > 0 && sig.r.Cmp(curveOrder) < 0 &&
		sig.s.Sign() > 0 && sig.s.Cmp(curveOrder) < 0
}

// Serialize returns the DER encoding of the signature: an ASN.1 SEQUENCE of
// the two INTEGER components, each in minimal-length form.
func (sig *Signature) Serialize() []byte {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(c *cryptobyte.Builder) {
		c.AddASN1BigInt(sig.r)
		c.AddASN1BigInt(sig.s)
	})
	return b.BytesOrPanic()
}

// SerializeCompact returns the fixed 64-byte serialization r||s with each
// component left-padded with zeroes to 32 bytes.
func (sig *Signature) SerializeCompact() []byte {
	out := make([]byte, SigCompactLen)
	sig.r.FillBytes(out[:sigComponentLen])
	sig.s.FillBytes(out[sigComponentLen:])
	return out
}

// ParseDERSignature decodes a DER encoded signature. The encoding is held to
// the strict rules the Serialize method produces: minimal-length integers,
// no negative components and no trailing bytes. Violations are reported as
// ErrMalformedSignature.
func ParseDERSignature(der []byte) (*Signature, error) {
	var (
		inner cryptobyte.String
		r, s  = new(big.Int), new(big.Int)
	)

	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {

		return nil, fmt.Errorf("%w: invalid DER encoding",
			ErrMalformedSignature)
	}

	if r.Sign() <= 0 || s.Sign() <= 0 {
		return nil, fmt.Errorf("%w: components must be positive",
			ErrMalformedSignature)
	}

	return &Signature{r: r, s: s}, nil
}

// ParseCompactSignature decodes the fixed 64-byte r||s serialization. Only
// the length is validated here; range checks are the job of IsValid so that
// the compact and DER forms stay a lossless bijection over valid pairs.
func ParseCompactSignature(b []byte) (*Signature, error) {
	if len(b) != SigCompactLen {
		return nil, fmt.Errorf("%w: compact signature must be %d "+
			"bytes, got %d", ErrMalformedSignature, SigCompactLen,
			len(b))
	}

	return &Signature{
		r: new(big.Int).SetBytes(b[:sigComponentLen]),
		s: new(big.Int).SetBytes(b[sigComponentLen:]),
	}, nil
}

// Sign produces an ECDSA signature over SHA-256(msg) with the given private
// key. The nonce is generated deterministically per RFC 6979, so signing the
// same message with the same key always yields the same signature. The only
// failure mode is malformed key material.
func Sign(priv *PrivateKey, msg []byte) (*Signature, error) {
	if priv == nil || priv.isZeroed() {
		return nil, fmt.Errorf("%w: missing key material",
			ErrInvalidPrivateKey)
	}

	hash := Sha256(msg)

	d := new(big.Int).SetBytes(priv.d[:])
	defer d.SetInt64(0)

	e := hashToInt(hash)

	// RFC 6979 produces a candidate stream; the occasional candidate
	// that collapses r or s to zero is discarded and the next one drawn.
	nonces := newNonceRFC6979(priv.d[:], hash)
	for {
		k := nonces.next()

		kInv := new(big.Int).ModInverse(k, curveOrder)

		rx, _ := curve.ScalarBaseMult(k.FillBytes(
			make([]byte, PrivKeyBytesLen),
		))
		r := new(big.Int).Mod(rx, curveOrder)
		if r.Sign() == 0 {
			continue
		}

		s := new(big.Int).Mul(r, d)
		s.Add(s, e)
		s.Mul(s, kInv)
		s.Mod(s, curveOrder)
		if s.Sign() == 0 {
			continue
		}

		k.SetInt64(0)

		return &Signature{r: r, s: s}, nil
	}
}

// Verify checks the signature over SHA-256(msg) against the given public
// key. A cryptographic mismatch is an expected outcome and is reported as
// false with a nil error; an error is returned only for structurally
// malformed inputs such as a nil key or out-of-range components.
func Verify(msg []byte, sig *Signature, pub *PublicKey) (bool, error) {
	if sig == nil {
		return false, fmt.Errorf("%w: nil signature",
			ErrInvalidSignature)
	}
	if !sig.IsValid() {
		return false, fmt.Errorf("%w: component out of range",
			ErrInvalidSignature)
	}
	if pub == nil || pub.x == nil || pub.y == nil {
		return false, fmt.Errorf("%w: nil public key",
			ErrInvalidPubKey)
	}

	return ecdsa.Verify(pub.toECDSA(), Sha256(msg), sig.r, sig.s), nil
}

// hashToInt converts a digest to the integer the ECDSA equations operate
// on. With a 256-bit curve and SHA-256 the bit lengths match, so this is a
// plain big-endian interpretation.
func hashToInt(hash []byte) *big.Int {
	return new(big.Int).SetBytes(hash)
}
