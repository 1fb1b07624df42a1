package hdkeychain

import (
	"fmt"

	"github.com/cosmos/go-bip39"
)

// GenerateMnemonic produces a fresh BIP-39 mnemonic sentence backed by the
// given number of entropy bits (128 for 12 words up to 256 for 24 words).
func GenerateMnemonic(entropyBits int) (string, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("unable to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("unable to build mnemonic: %w", err)
	}

	return mnemonic, nil
}

// NewMasterFromMnemonic validates a BIP-39 mnemonic sentence, stretches it
// with the optional passphrase into a 64-byte seed and expands that seed
// into a master node. The same sentence and passphrase always produce the
// same node.
func NewMasterFromMnemonic(mnemonic, passphrase string) (*ExtendedKey, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}

	return NewMaster(seed)
}
