package crypto

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// rfc6979TestVectors are the NIST P-256, SHA-256 vectors from RFC 6979
// appendix A.2.5.
var rfc6979TestVectors = []struct {
	name string
	key  string
	msg  string
	r    string
	s    string
}{
	{
		name: "sample",
		key: "c9afa9d845ba75166b5c215767b1d6934e50c3db36e89b127b8a6" +
			"22b120f6721",
		msg: "sample",
		r: "efd48b2aacb6a8fd1140dd9cd45e81d69d2c877b56aaf991c34d0" +
			"ea84eaf3716",
		s: "f7cb1c942d657c41d436c7a1b6e29f65f3e900dbb9aff4064dc4a" +
			"b2f843acda8",
	},
	{
		name: "test",
		key: "c9afa9d845ba75166b5c215767b1d6934e50c3db36e89b127b8a6" +
			"22b120f6721",
		msg: "test",
		r: "f1abb023518351cd71d881567b1ea663ed3efcf6c5132b354f28d" +
			"3b0b7d38367",
		s: "019f4113742a2b14bd25926b49c649155f267e60d3814b4c0cc84" +
			"250e46f0083",
	},
}

// TestSignRFC6979Vectors asserts the deterministic nonce construction
// against the published reference vectors.
func TestSignRFC6979Vectors(t *testing.T) {
	t.Parallel()

	for _, tc := range rfc6979TestVectors {
		t.Run(tc.name, func(t *testing.T) {
			priv, err := PrivKeyFromBytes(hexToBytes(t, tc.key))
			require.NoError(t, err)

			sig, err := Sign(priv, []byte(tc.msg))
			require.NoError(t, err)

			require.Equal(t, hexToBytes(t, tc.r), sig.r.Bytes())
			require.Equal(t, hexToBytes(t, tc.s), sig.s.Bytes())

			valid, err := Verify(
				[]byte(tc.msg), sig, priv.PubKey(),
			)
			require.NoError(t, err)
			require.True(t, valid)
		})
	}
}

// TestSignDeterministic asserts that signing is a pure function of key and
// message, and that the produced signature verifies.
func TestSignDeterministic(t *testing.T) {
	t.Parallel()

	priv, err := PrivKeyFromBytes(hexToBytes(t, testPrivKeyHex))
	require.NoError(t, err)

	msg := []byte("Hello, world!")

	sig, err := Sign(priv, msg)
	require.NoError(t, err)

	wantR := "11ff21232c5063522f1d8fbe6f7dbaa57aa926b9b6f38bb71ae60bda9" +
		"4e8478c"
	wantS := "adab15b9ffb56eac168f58940cd2cefe9811c136918a377daf19f1ac4" +
		"655d18c"
	require.Equal(t, hexToBytes(t, wantR), sig.r.Bytes())
	require.Equal(t, hexToBytes(t, wantS), sig.s.Bytes())

	again, err := Sign(priv, msg)
	require.NoError(t, err)
	require.Equal(t, sig.Serialize(), again.Serialize())
}

// TestVerify covers acceptance and the distinct rejection modes: a wrong
// message or key makes Verify report false, while structurally unusable
// inputs surface an error instead.
func TestVerify(t *testing.T) {
	t.Parallel()

	priv, err := PrivKeyFromBytes(hexToBytes(t, testPrivKeyHex))
	require.NoError(t, err)
	pub := priv.PubKey()

	msg := []byte("payload under test")
	sig, err := Sign(priv, msg)
	require.NoError(t, err)

	valid, err := Verify(msg, sig, pub)
	require.NoError(t, err)
	require.True(t, valid)

	// Tampered message.
	valid, err = Verify([]byte("payload under tesT"), sig, pub)
	require.NoError(t, err)
	require.False(t, valid)

	// Wrong key.
	otherPriv, err := PrivKeyFromBytes(hexToBytes(t, "84180ac9d6eb6fb"+
		"a207ea4ef9d2200102d1ebeb4b9c07e2c6a738a42742e27a5"))
	require.NoError(t, err)

	valid, err = Verify(msg, sig, otherPriv.PubKey())
	require.NoError(t, err)
	require.False(t, valid)

	// Out of range signature component.
	badSig := NewSignature(new(big.Int), sig.s)
	_, err = Verify(msg, badSig, pub)
	require.ErrorIs(t, err, ErrInvalidSignature)

	// Missing inputs.
	_, err = Verify(msg, nil, pub)
	require.Error(t, err)
	_, err = Verify(msg, sig, nil)
	require.Error(t, err)
}

// TestSignatureDERRoundTrip asserts canonical DER serialization round
// trips and matches an independently computed encoding.
func TestSignatureDERRoundTrip(t *testing.T) {
	t.Parallel()

	priv, err := PrivKeyFromBytes(hexToBytes(t, testPrivKeyHex))
	require.NoError(t, err)

	sig, err := Sign(priv, []byte("Hello, world!"))
	require.NoError(t, err)

	der := sig.Serialize()
	parsed, err := ParseDERSignature(der)
	require.NoError(t, err)

	require.Zero(t, sig.r.Cmp(parsed.r))
	require.Zero(t, sig.s.Cmp(parsed.s))
	require.Equal(t, der, parsed.Serialize())
}

// TestParseDERSignatureRejects asserts strict DER parsing: trailing
// garbage, truncation, non minimal integers and negative components are
// all refused.
func TestParseDERSignatureRejects(t *testing.T) {
	t.Parallel()

	priv, err := PrivKeyFromBytes(hexToBytes(t, testPrivKeyHex))
	require.NoError(t, err)
	sig, err := Sign(priv, []byte("der rejects"))
	require.NoError(t, err)
	der := sig.Serialize()

	trailing := make([]byte, len(der)+1)
	copy(trailing, der)

	testCases := []struct {
		name string
		der  []byte
	}{
		{name: "empty", der: nil},
		{name: "truncated", der: der[:len(der)-1]},
		{name: "trailing byte", der: trailing},
		{name: "not a sequence", der: append([]byte{0x02},
			der[1:]...)},
		{
			// SEQUENCE { INTEGER 0x0001 } pads the value with a
			// leading zero.
			name: "non minimal integer",
			der: []byte{
				0x30, 0x08,
				0x02, 0x02, 0x00, 0x01,
				0x02, 0x02, 0x01, 0x02,
			},
		},
		{
			// A high first content byte without padding encodes a
			// negative value.
			name: "negative component",
			der: []byte{
				0x30, 0x06,
				0x02, 0x01, 0x80,
				0x02, 0x01, 0x01,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDERSignature(tc.der)
			require.ErrorIs(t, err, ErrMalformedSignature)
		})
	}
}

// TestSignatureCompact asserts the fixed width encoding round trips and
// enforces its length.
func TestSignatureCompact(t *testing.T) {
	t.Parallel()

	priv, err := PrivKeyFromBytes(hexToBytes(t, testPrivKeyHex))
	require.NoError(t, err)

	sig, err := Sign(priv, []byte("compact round trip"))
	require.NoError(t, err)

	compact := sig.SerializeCompact()
	require.Len(t, compact, SigCompactLen)

	parsed, err := ParseCompactSignature(compact)
	require.NoError(t, err)
	require.Equal(t, sig.Serialize(), parsed.Serialize())

	_, err = ParseCompactSignature(compact[:SigCompactLen-1])
	require.ErrorIs(t, err, ErrMalformedSignature)

	_, err = ParseCompactSignature(append(compact, 0x00))
	require.ErrorIs(t, err, ErrMalformedSignature)
}
