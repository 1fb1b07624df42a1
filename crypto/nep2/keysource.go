package nep2

import (
	"github.com/neocore-dev/neocore/crypto"
)

// KeySource models the two states an account's key material can be in:
// available in plaintext, or present only as a password-encrypted record.
// The interface is sealed so the two cases are the only implementations,
// making "both" and "neither" unrepresentable.
type KeySource interface {
	// Unlock resolves the source to a usable key pair, decrypting with
	// the given password when the material is encrypted.
	Unlock(password string, params ScryptParams) (*crypto.KeyPair, error)

	sealedKeySource()
}

// PlainKey is key material held in plaintext.
type PlainKey struct {
	Pair *crypto.KeyPair
}

// Unlock returns the wrapped pair directly; the password is not consulted.
func (p PlainKey) Unlock(string, ScryptParams) (*crypto.KeyPair, error) {
	return p.Pair, nil
}

func (PlainKey) sealedKeySource() {}

// EncryptedKey is key material available only as an encrypted record.
type EncryptedKey struct {
	Encoded string
}

// Unlock decrypts the record with the given password.
func (e EncryptedKey) Unlock(password string,
	params ScryptParams) (*crypto.KeyPair, error) {

	return Decrypt(password, e.Encoded, params)
}

func (EncryptedKey) sealedKeySource() {}
