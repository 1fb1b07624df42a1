package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"math/big"
)

// nonceRFC6979 is the deterministic nonce generator of RFC 6979 §3.2,
// instantiated with HMAC-SHA256. Because the curve order and the digest are
// both 256 bits wide, bits2int is a plain big-endian read and one HMAC
// invocation yields a full candidate.
type nonceRFC6979 struct {
	k []byte
	v []byte

	// fresh marks that the generator state has just been seeded and the
	// first candidate can be drawn without an intermediate update round.
	fresh bool
}

// newNonceRFC6979 seeds the generator with the private scalar and the
// message digest being signed.
func newNonceRFC6979(privKey, hash []byte) *nonceRFC6979 {
	g := &nonceRFC6979{
		k:     make([]byte, sha256.Size),
		v:     make([]byte, sha256.Size),
		fresh: true,
	}
	for i := range g.v {
		g.v[i] = 0x01
	}

	// bits2octets: the digest reduced mod N, fixed to 32 bytes.
	z := new(big.Int).SetBytes(hash)
	z.Mod(z, curveOrder)
	octets := z.FillBytes(make([]byte, PrivKeyBytesLen))

	g.k = hmac256(g.k, g.v, []byte{0x00}, privKey, octets)
	g.v = hmac256(g.k, g.v)
	g.k = hmac256(g.k, g.v, []byte{0x01}, privKey, octets)
	g.v = hmac256(g.k, g.v)

	return g
}

// next returns the next nonce candidate in the range [1, N-1]. Each call
// after a consumed or rejected candidate runs the update round required by
// the RFC before drawing again.
func (g *nonceRFC6979) next() *big.Int {
	for {
		if !g.fresh {
			g.k = hmac256(g.k, g.v, []byte{0x00})
			g.v = hmac256(g.k, g.v)
		}
		g.fresh = false

		g.v = hmac256(g.k, g.v)

		c := new(big.Int).SetBytes(g.v)
		if c.Sign() > 0 && c.Cmp(curveOrder) < 0 {
			return c
		}
	}
}

// hmac256 computes HMAC-SHA256 over the concatenation of the given chunks.
func hmac256(key []byte, chunks ...[]byte) []byte {
	m := hmac.New(sha256.New, key)
	for _, chunk := range chunks {
		m.Write(chunk)
	}
	return m.Sum(nil)
}
