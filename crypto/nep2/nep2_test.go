package nep2

import (
	"encoding/hex"
	"testing"

	"github.com/neocore-dev/neocore/crypto"
	"github.com/neocore-dev/neocore/script"
	"github.com/stretchr/testify/require"
)

const (
	// testPrivKeyHex, testAddress and testEncryptedKey form one fixed
	// vector: the key encrypted under testPassword with the default
	// cost parameters.
	testPrivKeyHex = "84180ac9d6eb6fba207ea4ef9d2200102d1ebeb4b9c07e2c" +
		"6a738a42742e27a5"
	testAddress  = "NM7Aky765FG8NhhwtxjXRx7jEL1cnw7PBP"
	testPassword = "neo"

	testEncryptedKey = "6PYM7jHL4GmS8Aw2iEFpuaHTCUKjhT4mwVqdoozGU6sUE" +
		"25BjV4ePXDdLz"
)

// fastParams keeps the key stretching cheap for the tests that exercise
// logic rather than the fixed vector.
var fastParams = ScryptParams{N: 4, R: 1, P: 1}

// testPair builds the key pair for testPrivKeyHex.
func testPair(t *testing.T) *crypto.KeyPair {
	t.Helper()

	raw, err := hex.DecodeString(testPrivKeyHex)
	require.NoError(t, err)

	pair, err := crypto.KeyPairFromPrivateKey(raw)
	require.NoError(t, err)

	return pair
}

// TestEncryptVector asserts encryption against the fixed vector. The
// scheme has no random input, so the output is fully determined by key,
// password and parameters.
func TestEncryptVector(t *testing.T) {
	t.Parallel()

	pair := testPair(t)
	require.Equal(t, testAddress,
		script.NewSingleSig(pair.PublicKey()).Address())

	encoded, err := Encrypt(testPassword, pair, DefaultParams())
	require.NoError(t, err)
	require.Equal(t, testEncryptedKey, encoded)
	require.Len(t, encoded, EncodedKeyLen)
}

// TestDecryptVector asserts decryption of the fixed vector recovers the
// original key.
func TestDecryptVector(t *testing.T) {
	t.Parallel()

	pair, err := Decrypt(testPassword, testEncryptedKey, DefaultParams())
	require.NoError(t, err)

	require.Equal(t, testPrivKeyHex,
		hex.EncodeToString(pair.PrivateKey().Serialize()))
}

// TestEncryptDecryptRoundTrip asserts the round trip over a fresh random
// key with cheap parameters.
func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	pair, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	encoded, err := Encrypt("correct horse", pair, fastParams)
	require.NoError(t, err)
	require.Len(t, encoded, EncodedKeyLen)

	recovered, err := Decrypt("correct horse", encoded, fastParams)
	require.NoError(t, err)
	require.Equal(t, pair.PrivateKey().Serialize(),
		recovered.PrivateKey().Serialize())
}

// TestPasswordNormalization asserts that composed and decomposed spellings
// of the same password are equivalent: both the derived records and the
// decrypt paths must agree.
func TestPasswordNormalization(t *testing.T) {
	t.Parallel()

	// U+00E9 versus "e" followed by U+0301; NFC maps the second form
	// onto the first.
	composed := "café"
	decomposed := "café"

	pair := testPair(t)

	fromComposed, err := Encrypt(composed, pair, fastParams)
	require.NoError(t, err)

	fromDecomposed, err := Encrypt(decomposed, pair, fastParams)
	require.NoError(t, err)
	require.Equal(t, fromComposed, fromDecomposed)

	recovered, err := Decrypt(decomposed, fromComposed, fastParams)
	require.NoError(t, err)
	require.Equal(t, pair.PrivateKey().Serialize(),
		recovered.PrivateKey().Serialize())
}

// TestDecryptWrongPassword asserts that a wrong password is detected via
// the embedded address hash and reported as ErrWrongPassword.
func TestDecryptWrongPassword(t *testing.T) {
	t.Parallel()

	pair := testPair(t)

	encoded, err := Encrypt(testPassword, pair, fastParams)
	require.NoError(t, err)

	_, err = Decrypt("not the password", encoded, fastParams)
	require.ErrorIs(t, err, ErrWrongPassword)
}

// TestDecryptRejectsFormat asserts structural validation of the encoded
// text: every defect is ErrInvalidFormat, caught before key stretching.
func TestDecryptRejectsFormat(t *testing.T) {
	t.Parallel()

	// A record with the flag byte corrupted, correctly Base58Check
	// wrapped so only the header check can reject it.
	badFlag := make([]byte, recordLen)
	badFlag[0], badFlag[1], badFlag[2] = prefix1, prefix2, 0xc0

	// Too short by one byte, checksum still valid.
	shortRecord := make([]byte, recordLen-1)
	shortRecord[0], shortRecord[1], shortRecord[2] =
		prefix1, prefix2, flagByte

	// Swap the trailing character for a different base58 character so
	// only the checksum can reject it.
	badChecksum := []byte(testEncryptedKey)
	if badChecksum[len(badChecksum)-1] == 'a' {
		badChecksum[len(badChecksum)-1] = 'b'
	} else {
		badChecksum[len(badChecksum)-1] = 'a'
	}

	testCases := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "not base58", encoded: "6P0OIl"},
		{name: "bad checksum", encoded: string(badChecksum)},
		{name: "wrong flag byte", encoded: base58CheckEncode(badFlag)},
		{
			name:    "truncated record",
			encoded: base58CheckEncode(shortRecord),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decrypt(testPassword, tc.encoded, fastParams)
			require.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

// TestEncryptRejectsParams asserts parameter validation runs before any
// derivation work.
func TestEncryptRejectsParams(t *testing.T) {
	t.Parallel()

	pair := testPair(t)

	_, err := Encrypt(testPassword, pair, ScryptParams{N: 3, R: 1, P: 1})
	require.ErrorIs(t, err, ErrUnsupportedParams)

	_, err = Decrypt(
		testPassword, testEncryptedKey,
		ScryptParams{N: 4, R: 0, P: 1},
	)
	require.ErrorIs(t, err, ErrUnsupportedParams)
}

// TestKeySourceUnlock asserts both source variants resolve to the same key
// material.
func TestKeySourceUnlock(t *testing.T) {
	t.Parallel()

	pair := testPair(t)

	encoded, err := Encrypt(testPassword, pair, fastParams)
	require.NoError(t, err)

	sources := []KeySource{
		PlainKey{Pair: pair},
		EncryptedKey{Encoded: encoded},
	}

	for _, source := range sources {
		unlocked, err := source.Unlock(testPassword, fastParams)
		require.NoError(t, err)
		require.Equal(t, pair.PrivateKey().Serialize(),
			unlocked.PrivateKey().Serialize())
	}

	// The encrypted variant must propagate a password failure.
	_, err = EncryptedKey{Encoded: encoded}.Unlock("wrong", fastParams)
	require.ErrorIs(t, err, ErrWrongPassword)
}
