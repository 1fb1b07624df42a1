package crypto

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/require"
)

var (
	// testScriptHashHex is the script hash of the single key
	// verification script for testPubKeyHex.
	testScriptHashHex = "0da967a400432bf27f8e8eb46fe8ac659eccde04"

	// testAddress is its Base58Check encoding under the N3 version
	// byte.
	testAddress = "NMACuhqEaNAeDSQVipcUPYiJ9TVgVyUxGV"
)

// TestAddressRoundTrip asserts the script hash to address mapping against a
// fixed vector in both directions.
func TestAddressRoundTrip(t *testing.T) {
	t.Parallel()

	scriptHash, err := NewScriptHash(hexToBytes(t, testScriptHashHex))
	require.NoError(t, err)

	require.Equal(t, testAddress, AddressFromScriptHash(scriptHash))
	require.Equal(t, testScriptHashHex, scriptHash.String())

	decoded, err := ScriptHashFromAddress(testAddress)
	require.NoError(t, err)
	require.Equal(t, scriptHash, decoded)
}

// TestScriptHashFromAddressRejects asserts the decoder refuses corrupted
// and foreign addresses.
func TestScriptHashFromAddressRejects(t *testing.T) {
	t.Parallel()

	hash := hexToBytes(t, testScriptHashHex)

	// Valid checksum, wrong version byte. 0x17 is the legacy version
	// and must not be accepted.
	legacyVersion := base58.CheckEncode(hash, 0x17)

	// Valid checksum and version around a truncated payload.
	shortPayload := base58.CheckEncode(hash[:19], AddressVersion)

	badChecksum := []byte(testAddress)
	badChecksum[len(badChecksum)-1] ^= 0x01

	testCases := []struct {
		name string
		addr string
	}{
		{name: "empty", addr: ""},
		{name: "not base58", addr: "NMACuhqEaNAeDSQVl"},
		{name: "bad checksum", addr: string(badChecksum)},
		{name: "legacy version byte", addr: legacyVersion},
		{name: "short payload", addr: shortPayload},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ScriptHashFromAddress(tc.addr)
			require.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

// TestNewScriptHashLength asserts the fixed width constructor.
func TestNewScriptHashLength(t *testing.T) {
	t.Parallel()

	_, err := NewScriptHash(make([]byte, ScriptHashLen))
	require.NoError(t, err)

	_, err = NewScriptHash(make([]byte, ScriptHashLen-1))
	require.Error(t, err)

	_, err = NewScriptHash(make([]byte, ScriptHashLen+1))
	require.Error(t, err)
}
