package crypto

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	// PrivKeyBytesLen defines the length in bytes of a serialized private
	// key.
	PrivKeyBytesLen = 32

	// PubKeyBytesLenCompressed defines the length in bytes of the
	// compressed serialization of a public key.
	PubKeyBytesLenCompressed = 33

	// PubKeyBytesLenUncompressed defines the length in bytes of the
	// uncompressed serialization of a public key.
	PubKeyBytesLenUncompressed = 65

	// pubKeyCompressedEven is the prefix of a compressed public key whose
	// y coordinate is even.
	pubKeyCompressedEven byte = 0x02

	// pubKeyCompressedOdd is the prefix of a compressed public key whose
	// y coordinate is odd.
	pubKeyCompressedOdd byte = 0x03

	// pubKeyUncompressed is the prefix of an uncompressed public key.
	pubKeyUncompressed byte = 0x04
)

var (
	// ErrInvalidPrivateKey is returned when private key material is not a
	// 32-byte scalar in the range [1, N-1].
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidPubKey is returned when public key bytes do not decode to
	// a point on the curve, or the prefix/length is inconsistent.
	ErrInvalidPubKey = errors.New("invalid public key")
)

// curve is the single curve supported by the SDK.
var curve = elliptic.P256()

// curveOrder is the order N of the P-256 base point. Private keys and
// signature components are scalars modulo this value.
var curveOrder = curve.Params().N

// PrivateKey wraps a P-256 scalar in the range [1, N-1]. The scalar is held
// in a fixed array so that Zero can overwrite it in place.
type PrivateKey struct {
	d [PrivKeyBytesLen]byte
}

// NewPrivateKey generates a new private key from the platform CSPRNG. It
// never falls back to a weaker entropy source: any failure of the secure
// source is returned to the caller.
func NewPrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("unable to generate private key: %w",
			err)
	}

	priv := new(PrivateKey)
	key.D.FillBytes(priv.d[:])
	key.D.SetInt64(0)

	return priv, nil
}

// PrivKeyFromBytes returns a private key for the passed 32-byte big-endian
// scalar. It fails with ErrInvalidPrivateKey if the slice has the wrong
// length or encodes zero or a value not below the curve order.
func PrivKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != PrivKeyBytesLen {
		return nil, fmt.Errorf("%w: need %d bytes, got %d",
			ErrInvalidPrivateKey, PrivKeyBytesLen, len(b))
	}

	d := new(big.Int).SetBytes(b)
	defer d.SetInt64(0)

	if d.Sign() == 0 || d.Cmp(curveOrder) >= 0 {
		return nil, fmt.Errorf("%w: scalar out of range",
			ErrInvalidPrivateKey)
	}

	priv := new(PrivateKey)
	copy(priv.d[:], b)

	return priv, nil
}

// Serialize returns a copy of the 32-byte big-endian scalar.
func (p *PrivateKey) Serialize() []byte {
	out := make([]byte, PrivKeyBytesLen)
	copy(out, p.d[:])
	return out
}

// PubKey computes the public point d*G for this private key.
func (p *PrivateKey) PubKey() *PublicKey {
	x, y := curve.ScalarBaseMult(p.d[:])
	return &PublicKey{x: x, y: y}
}

// Zero overwrites the private scalar with zeroes. The key is unusable
// afterwards; any signing attempt will fail.
func (p *PrivateKey) Zero() {
	for i := range p.d {
		p.d[i] = 0
	}
}

// isZeroed reports whether the scalar has been wiped (or was never set).
func (p *PrivateKey) isZeroed() bool {
	var acc byte
	for _, b := range p.d {
		acc |= b
	}
	return acc == 0
}

// PublicKey is a point on the P-256 curve. The zero value is not a usable
// key; points are only constructed by parsing or by scalar multiplication,
// both of which reject the point at infinity.
type PublicKey struct {
	x, y *big.Int
}

// ParsePubKey parses a serialized public key, accepting both the 33-byte
// compressed and the 65-byte uncompressed form. Bytes that fail the curve
// equation or carry an inconsistent prefix are rejected with
// ErrInvalidPubKey.
func ParsePubKey(b []byte) (*PublicKey, error) {
	switch len(b) {
	case PubKeyBytesLenCompressed:
		if b[0] != pubKeyCompressedEven &&
			b[0] != pubKeyCompressedOdd {

			return nil, fmt.Errorf("%w: invalid compressed "+
				"prefix 0x%02x", ErrInvalidPubKey, b[0])
		}

		x, y := elliptic.UnmarshalCompressed(curve, b)
		if x == nil {
			return nil, fmt.Errorf("%w: point not on curve",
				ErrInvalidPubKey)
		}
		return &PublicKey{x: x, y: y}, nil

	case PubKeyBytesLenUncompressed:
		if b[0] != pubKeyUncompressed {
			return nil, fmt.Errorf("%w: invalid uncompressed "+
				"prefix 0x%02x", ErrInvalidPubKey, b[0])
		}

		x, y := elliptic.Unmarshal(curve, b)
		if x == nil {
			return nil, fmt.Errorf("%w: point not on curve",
				ErrInvalidPubKey)
		}
		return &PublicKey{x: x, y: y}, nil

	default:
		return nil, fmt.Errorf("%w: invalid length %d",
			ErrInvalidPubKey, len(b))
	}
}

// SerializeCompressed serializes the point in the 33-byte compressed format:
// a 0x02/0x03 parity prefix followed by the x coordinate.
func (p *PublicKey) SerializeCompressed() []byte {
	return elliptic.MarshalCompressed(curve, p.x, p.y)
}

// SerializeUncompressed serializes the point in the 65-byte uncompressed
// format: 0x04 followed by the x and y coordinates.
func (p *PublicKey) SerializeUncompressed() []byte {
	return elliptic.Marshal(curve, p.x, p.y)
}

// IsEqual reports whether this key describes the same curve point as other.
// The comparison is over coordinates, so a key parsed from the compressed
// encoding is equal to the same key parsed from the uncompressed one.
func (p *PublicKey) IsEqual(other *PublicKey) bool {
	return p.x.Cmp(other.x) == 0 && p.y.Cmp(other.y) == 0
}

// Compare orders public keys by their compressed encoding. This is the
// canonical ordering applied to the key set of a multisig verification
// script, making script construction independent of input order.
func (p *PublicKey) Compare(other *PublicKey) int {
	return bytes.Compare(
		p.SerializeCompressed(), other.SerializeCompressed(),
	)
}

// toECDSA returns the stdlib representation of the point for verification.
func (p *PublicKey) toECDSA() *ecdsa.PublicKey {
	return &ecdsa.PublicKey{Curve: curve, X: p.x, Y: p.y}
}

// CurveOrder returns a copy of the order N of the curve's base point.
func CurveOrder() *big.Int {
	return new(big.Int).Set(curveOrder)
}

// AddScalarBase computes scalar*G + pub, the group operation behind
// public-only child key derivation. The scalar must be below the curve
// order; a result at the point at infinity is rejected since it is not a
// usable key.
func AddScalarBase(pub *PublicKey, scalar *big.Int) (*PublicKey, error) {
	if scalar.Sign() < 0 || scalar.Cmp(curveOrder) >= 0 {
		return nil, fmt.Errorf("%w: scalar out of range",
			ErrInvalidPrivateKey)
	}

	sx, sy := curve.ScalarBaseMult(
		scalar.FillBytes(make([]byte, PrivKeyBytesLen)),
	)
	x, y := curve.Add(sx, sy, pub.x, pub.y)
	if x.Sign() == 0 && y.Sign() == 0 {
		return nil, fmt.Errorf("%w: point at infinity",
			ErrInvalidPubKey)
	}

	return &PublicKey{x: x, y: y}, nil
}

// KeyPair couples a private key with its public point. The public half is
// computed once at construction so that repeated address or script
// derivations don't redo the scalar multiplication.
type KeyPair struct {
	priv *PrivateKey
	pub  *PublicKey
}

// GenerateKeyPair draws a fresh uniformly random key pair from the platform
// CSPRNG.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv, pub: priv.PubKey()}, nil
}

// KeyPairFromPrivateKey builds a key pair from the raw 32-byte scalar,
// validating it the same way PrivKeyFromBytes does.
func KeyPairFromPrivateKey(b []byte) (*KeyPair, error) {
	priv, err := PrivKeyFromBytes(b)
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv, pub: priv.PubKey()}, nil
}

// PrivateKey returns the private half of the pair.
func (k *KeyPair) PrivateKey() *PrivateKey {
	return k.priv
}

// PublicKey returns the public half of the pair.
func (k *KeyPair) PublicKey() *PublicKey {
	return k.pub
}

// Sign produces a deterministic ECDSA signature over SHA-256(msg) with the
// pair's private key.
func (k *KeyPair) Sign(msg []byte) (*Signature, error) {
	return Sign(k.priv, msg)
}

// Zero wipes the private key material of the pair. The public half is left
// intact since it is not secret.
func (k *KeyPair) Zero() {
	k.priv.Zero()
}
