package hdkeychain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/lightningnetwork/lnd/fn/v2"

	"github.com/neocore-dev/neocore/crypto"
)

const (
	// RecommendedSeedLen is the recommended length in bytes for a seed
	// to a master node.
	RecommendedSeedLen = 32

	// MinSeedBytes is the minimum number of bytes allowed for a seed to
	// a master node.
	MinSeedBytes = 16

	// MaxSeedBytes is the maximum number of bytes allowed for a seed to
	// a master node.
	MaxSeedBytes = 64

	// HardenedKeyStart is the index at which a hardened key starts.
	// Each extended key has 2^31 normal child keys and 2^31 hardened
	// child keys, so the hardened range is [2^31, 2^32-1].
	HardenedKeyStart uint32 = 0x80000000

	// maxDepth is the deepest node a derivation chain can reach, since
	// the serialization format stores the depth in a single byte.
	maxDepth = 255

	// serializedKeyLen is the length of a serialized extended key
	// before the Base58Check checksum: 4 version bytes, 1 depth byte,
	// 4 parent fingerprint bytes, 4 child number bytes, 32 chain code
	// bytes and 33 key bytes.
	serializedKeyLen = 78

	// chainCodeLen is the length of the chain code half of a node.
	chainCodeLen = 32

	// fingerprintLen is the length of a parent fingerprint.
	fingerprintLen = 4
)

var (
	// masterKey is the domain constant keying the HMAC-SHA512 expansion
	// of a seed into the master node.
	masterKey = []byte("Bitcoin seed")

	// privKeyVersion and pubKeyVersion are the serialization version
	// bytes producing the familiar xprv/xpub prefixes.
	privKeyVersion = []byte{0x04, 0x88, 0xAD, 0xE4}
	pubKeyVersion  = []byte{0x04, 0x88, 0xB2, 0x1E}
)

var (
	// ErrInvalidSeedLen describes an error in which the provided seed is
	// not in the allowed range of [MinSeedBytes, MaxSeedBytes].
	ErrInvalidSeedLen = fmt.Errorf("seed length must be between %d and "+
		"%d bits", MinSeedBytes*8, MaxSeedBytes*8)

	// ErrUnusableSeed describes an error in which the provided seed
	// expands to an out-of-range master key. The caller should generate
	// a new seed; the probability of hitting this is negligible.
	ErrUnusableSeed = errors.New("unusable seed")

	// ErrDeriveHardFromPublic describes an error in which the caller
	// attempted to derive a hardened extended key from a public-only
	// node. Hardened derivation mixes in the parent private key, which
	// a public-only node does not carry.
	ErrDeriveHardFromPublic = errors.New("cannot derive a hardened key " +
		"from a public key")

	// ErrDeriveBeyondMaxDepth describes an error in which the caller
	// has attempted to derive more than 255 keys from a root key.
	ErrDeriveBeyondMaxDepth = errors.New("cannot derive a key with more " +
		"than 255 indices in its path")

	// ErrInvalidChild describes an error in which the child index
	// produces an unusable key: the intermediate scalar falls outside
	// the curve order or the derived key collapses to zero. The caller
	// should simply move on to the next index.
	ErrInvalidChild = errors.New("the extended key at this index is " +
		"invalid")

	// ErrNotPrivExtKey describes an error in which private key material
	// was requested from a public-only extended key.
	ErrNotPrivExtKey = errors.New("unable to create private keys from " +
		"a public extended key")
)

// curveOrder is the group order driving the modular child key arithmetic
// below.
var curveOrder = crypto.CurveOrder()

// ExtendedKey is one node of a hierarchical-deterministic key tree: a key
// pair (or just the public half), the chain code feeding child derivation,
// and the position bookkeeping needed for serialization. Values are
// immutable once created; derivation returns fresh nodes.
type ExtendedKey struct {
	privKey   fn.Option[*crypto.PrivateKey]
	pubKey    *crypto.PublicKey
	chainCode []byte
	depth     uint8
	parentFP  []byte
	childNum  uint32
}

// NewMaster creates a new master node from a seed of 16 to 64 bytes: the
// seed is expanded with HMAC-SHA512 under a fixed domain constant, the left
// half becoming the master private key and the right half the chain code.
// The same seed always expands to the same node.
func NewMaster(seed []byte) (*ExtendedKey, error) {
	if len(seed) < MinSeedBytes || len(seed) > MaxSeedBytes {
		return nil, ErrInvalidSeedLen
	}

	lr := crypto.HmacSha512(masterKey, seed)
	secretKey, chainCode := lr[:chainCodeLen], lr[chainCodeLen:]

	privKey, err := crypto.PrivKeyFromBytes(secretKey)
	if err != nil {
		return nil, ErrUnusableSeed
	}

	return &ExtendedKey{
		privKey:   fn.Some(privKey),
		pubKey:    privKey.PubKey(),
		chainCode: chainCode,
		parentFP:  make([]byte, fingerprintLen),
	}, nil
}

// IsPrivate reports whether the node carries private key material.
func (k *ExtendedKey) IsPrivate() bool {
	return k.privKey.IsSome()
}

// Depth returns the number of derivation steps between this node and the
// master node.
func (k *ExtendedKey) Depth() uint8 {
	return k.depth
}

// ChildIndex returns the index this node was derived at. Indices at or
// above HardenedKeyStart denote hardened derivation.
func (k *ExtendedKey) ChildIndex() uint32 {
	return k.childNum
}

// ParentFingerprint returns the first 32 bits of the parent node's key
// fingerprint. The master node's parent fingerprint is zero.
func (k *ExtendedKey) ParentFingerprint() uint32 {
	return binary.BigEndian.Uint32(k.parentFP)
}

// ChainCode returns a copy of the node's chain code.
func (k *ExtendedKey) ChainCode() []byte {
	out := make([]byte, chainCodeLen)
	copy(out, k.chainCode)
	return out
}

// PubKey returns the public half of the node.
func (k *ExtendedKey) PubKey() *crypto.PublicKey {
	return k.pubKey
}

// PrivKey returns the private half of the node, failing with
// ErrNotPrivExtKey on a public-only node.
func (k *ExtendedKey) PrivKey() (*crypto.PrivateKey, error) {
	return k.privKey.UnwrapOrErr(ErrNotPrivExtKey)
}

// KeyPair returns the node's key material as a key pair, failing with
// ErrNotPrivExtKey on a public-only node.
func (k *ExtendedKey) KeyPair() (*crypto.KeyPair, error) {
	priv, err := k.PrivKey()
	if err != nil {
		return nil, err
	}

	keyBytes := priv.Serialize()
	defer zeroBytes(keyBytes)

	return crypto.KeyPairFromPrivateKey(keyBytes)
}

// Derive returns the child node at the given index. Indices at or above
// HardenedKeyStart derive hardened children, which require the private
// half; deriving a hardened child of a public-only node fails with
// ErrDeriveHardFromPublic. The same (node, index) always derives the same
// child.
func (k *ExtendedKey) Derive(i uint32) (*ExtendedKey, error) {
	if k.depth == maxDepth {
		return nil, ErrDeriveBeyondMaxDepth
	}

	hardened := i >= HardenedKeyStart
	if hardened && !k.IsPrivate() {
		return nil, ErrDeriveHardFromPublic
	}

	// Assemble the HMAC input: 0x00 || parentPriv || index for hardened
	// children, parentCompressedPub || index otherwise. The hardened
	// input embeds the parent scalar, so the buffer is wiped once the
	// HMAC has consumed it.
	data := make([]byte, 0, 1+crypto.PrivKeyBytesLen+4)
	if hardened {
		priv, _ := k.PrivKey()
		data = append(data, 0x00)
		data = append(data, priv.Serialize()...)
	} else {
		data = append(data, k.pubKey.SerializeCompressed()...)
	}
	data = binary.BigEndian.AppendUint32(data, i)

	lr := crypto.HmacSha512(k.chainCode, data)
	zeroBytes(data)
	il, childChainCode := lr[:chainCodeLen], lr[chainCodeLen:]

	ilNum := new(big.Int).SetBytes(il)
	defer ilNum.SetInt64(0)

	if ilNum.Cmp(curveOrder) >= 0 {
		return nil, ErrInvalidChild
	}

	child := &ExtendedKey{
		chainCode: childChainCode,
		depth:     k.depth + 1,
		parentFP:  crypto.Hash160(k.pubKey.SerializeCompressed())[:fingerprintLen],
		childNum:  i,
	}

	if k.IsPrivate() {
		// Child private key: (IL + parent) mod N. The addition is
		// modular over the curve order, not a fixed-width byte
		// addition.
		parentPriv, _ := k.PrivKey()
		parentBytes := parentPriv.Serialize()
		keyNum := new(big.Int).SetBytes(parentBytes)
		zeroBytes(parentBytes)
		keyNum.Add(keyNum, ilNum)
		keyNum.Mod(keyNum, curveOrder)
		defer keyNum.SetInt64(0)

		childBytes := keyNum.FillBytes(
			make([]byte, crypto.PrivKeyBytesLen),
		)
		childPriv, err := crypto.PrivKeyFromBytes(childBytes)
		zeroBytes(childBytes)
		if err != nil {
			return nil, ErrInvalidChild
		}

		child.privKey = fn.Some(childPriv)
		child.pubKey = childPriv.PubKey()
		return child, nil
	}

	// Public-only child: IL*G + parentPub.
	childPub, err := crypto.AddScalarBase(k.pubKey, ilNum)
	if err != nil {
		return nil, ErrInvalidChild
	}
	child.privKey = fn.None[*crypto.PrivateKey]()
	child.pubKey = childPub
	return child, nil
}

// DerivePath applies Derive over each index in turn. An empty path returns
// the node itself.
func (k *ExtendedKey) DerivePath(path ...uint32) (*ExtendedKey, error) {
	node := k
	for _, i := range path {
		var err error
		node, err = node.Derive(i)
		if err != nil {
			return nil, fmt.Errorf("unable to derive index %d: %w",
				i, err)
		}
	}
	return node, nil
}

// Neuter returns a public-only copy of the node: same chain code and
// position, no private key. Children derived from the neutered node at
// non-hardened indices match the neutered children of the private node.
func (k *ExtendedKey) Neuter() *ExtendedKey {
	if !k.IsPrivate() {
		return k
	}
	return &ExtendedKey{
		privKey:   fn.None[*crypto.PrivateKey](),
		pubKey:    k.pubKey,
		chainCode: k.chainCode,
		depth:     k.depth,
		parentFP:  k.parentFP,
		childNum:  k.childNum,
	}
}

// String serializes the node in the conventional Base58Check form (the
// xprv/xpub text format): version, depth, parent fingerprint, child number,
// chain code and key material, followed by a 4-byte Hash256 checksum.
func (k *ExtendedKey) String() string {
	serialized := make([]byte, 0, serializedKeyLen+4)
	if k.IsPrivate() {
		serialized = append(serialized, privKeyVersion...)
	} else {
		serialized = append(serialized, pubKeyVersion...)
	}
	serialized = append(serialized, k.depth)
	serialized = append(serialized, k.parentFP...)
	serialized = binary.BigEndian.AppendUint32(serialized, k.childNum)
	serialized = append(serialized, k.chainCode...)

	if priv, err := k.PrivKey(); err == nil {
		serialized = append(serialized, 0x00)
		serialized = append(serialized, priv.Serialize()...)
	} else {
		serialized = append(serialized, k.pubKey.SerializeCompressed()...)
	}

	checksum := crypto.Hash256(serialized)[:4]
	return base58.Encode(append(serialized, checksum...))
}

// Zero overwrites the sensitive halves of the node: the private key, if
// present, and the chain code. The node is unusable afterwards.
func (k *ExtendedKey) Zero() {
	k.privKey.WhenSome(func(p *crypto.PrivateKey) {
		p.Zero()
	})
	zeroBytes(k.chainCode)
}

// zeroBytes overwrites the slice contents.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
