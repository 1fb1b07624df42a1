package script

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/neocore-dev/neocore/crypto"
)

const (
	// MaxMultiSigKeys is the maximum number of public keys a multisig
	// verification script may commit to.
	MaxMultiSigKeys = 1024

	// SingleSigScriptLen is the exact length of a single-sig
	// verification script: PUSHDATA1, length byte, 33 key bytes,
	// SYSCALL and the 4-byte interop id.
	SingleSigScriptLen = 40
)

var (
	// ErrInvalidThreshold is returned when a multisig build request has
	// a signing threshold outside [1, len(keys)].
	ErrInvalidThreshold = errors.New("invalid signing threshold")

	// ErrTooManyKeys is returned when a multisig build request exceeds
	// MaxMultiSigKeys.
	ErrTooManyKeys = errors.New("too many public keys")

	// ErrNoKeys is returned when a multisig build request carries no
	// public keys at all.
	ErrNoKeys = errors.New("no public keys")

	// ErrUnrecognizedScript is returned when threshold or key extraction
	// is attempted on a script that is not one of the recognized
	// signature patterns.
	ErrUnrecognizedScript = errors.New("unrecognized script format")
)

// ScriptClass classifies a verification script into exactly one of the
// recognized shapes. Anything that is not byte-exact single-sig or a
// structurally well-formed multisig pattern is Custom; Custom is a
// classification, never an error.
type ScriptClass byte

const (
	// ClassEmpty is the class of the zero-length script.
	ClassEmpty ScriptClass = iota

	// ClassSingleSig is the class of the 40-byte single signature
	// pattern.
	ClassSingleSig

	// ClassMultiSig is the class of the threshold multisig pattern.
	ClassMultiSig

	// ClassCustom is the class of every other script.
	ClassCustom
)

// scriptClassNames maps classes to their display names.
var scriptClassNames = map[ScriptClass]string{
	ClassEmpty:     "empty",
	ClassSingleSig: "singlesig",
	ClassMultiSig:  "multisig",
	ClassCustom:    "custom",
}

// String returns the display name of the class.
func (c ScriptClass) String() string {
	if name, ok := scriptClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("class %d", byte(c))
}

// VerificationScript is an immutable byte program proving transaction
// authorization. The script hash is derived lazily on first access and
// memoized; everything else is recovered by re-parsing the bytes so no
// derived state can drift from them.
type VerificationScript struct {
	raw []byte

	hashOnce sync.Once
	hash     crypto.ScriptHash
}

// NewVerificationScript wraps raw script bytes, copying them so the script
// cannot be mutated through the caller's slice.
func NewVerificationScript(raw []byte) *VerificationScript {
	return &VerificationScript{
		raw: bytes.Clone(raw),
	}
}

// NewSingleSig builds the canonical single signature verification script
// for the given public key: PUSHDATA1 of the 33-byte compressed key
// followed by a SYSCALL of the signature check service.
func NewSingleSig(pub *crypto.PublicKey) *VerificationScript {
	script, _ := NewBuilder().
		AddData(pub.SerializeCompressed()).
		AddSysCall(CheckSig).
		Script()

	return &VerificationScript{raw: script}
}

// NewMultiSig builds the canonical threshold multisig verification script:
// a pushed threshold, the compressed keys in their canonical order, the
// pushed key count and a SYSCALL of the multisig check service. The key set
// is sorted by compressed encoding before building, so the same set always
// produces the same script regardless of input order.
func NewMultiSig(pubKeys []*crypto.PublicKey,
	threshold int) (*VerificationScript, error) {

	switch {
	case len(pubKeys) == 0:
		return nil, ErrNoKeys

	case len(pubKeys) > MaxMultiSigKeys:
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyKeys,
			len(pubKeys), MaxMultiSigKeys)

	case threshold < 1 || threshold > len(pubKeys):
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidThreshold,
			threshold, len(pubKeys))
	}

	sorted := make([]*crypto.PublicKey, len(pubKeys))
	copy(sorted, pubKeys)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Compare(sorted[j]) < 0
	})

	builder := NewBuilder().AddInt(int64(threshold))
	for _, pub := range sorted {
		builder.AddData(pub.SerializeCompressed())
	}
	builder.AddInt(int64(len(sorted))).AddSysCall(CheckMultisig)

	script, err := builder.Script()
	if err != nil {
		return nil, err
	}

	log.Tracef("Built %d-of-%d multisig script (%d bytes)", threshold,
		len(sorted), len(script))

	return &VerificationScript{raw: script}, nil
}

// Script returns a copy of the raw script bytes.
func (v *VerificationScript) Script() []byte {
	return bytes.Clone(v.raw)
}

// Len returns the length of the script in bytes.
func (v *VerificationScript) Len() int {
	return len(v.raw)
}

// Hash returns the script hash: Hash160 over the raw bytes. The digest is
// computed once on first access; the sync.Once makes the memoization safe
// under concurrent first use.
func (v *VerificationScript) Hash() crypto.ScriptHash {
	v.hashOnce.Do(func() {
		copy(v.hash[:], crypto.Hash160(v.raw))
	})
	return v.hash
}

// Address returns the printable address form of the script hash.
func (v *VerificationScript) Address() string {
	return crypto.AddressFromScriptHash(v.Hash())
}

// Class classifies the script. Structural deviation from the recognized
// patterns yields ClassCustom rather than an error, keeping "not a known
// pattern" distinct from the failure modes of key extraction.
func (v *VerificationScript) Class() ScriptClass {
	switch {
	case len(v.raw) == 0:
		return ClassEmpty

	case v.isSingleSig():
		return ClassSingleSig

	default:
		if _, _, ok := v.parseMultiSig(); ok {
			return ClassMultiSig
		}
		return ClassCustom
	}
}

// IsSingleSig reports whether the script is the exact single signature
// pattern.
func (v *VerificationScript) IsSingleSig() bool {
	return v.Class() == ClassSingleSig
}

// IsMultiSig reports whether the script is a well-formed threshold multisig
// pattern.
func (v *VerificationScript) IsMultiSig() bool {
	return v.Class() == ClassMultiSig
}

// SigningThreshold returns the number of signatures the script demands: 1
// for single-sig, the pushed threshold for multisig. Empty and custom
// scripts have no threshold and fail with ErrUnrecognizedScript.
func (v *VerificationScript) SigningThreshold() (int, error) {
	if v.isSingleSig() {
		return 1, nil
	}
	if threshold, _, ok := v.parseMultiSig(); ok {
		return threshold, nil
	}
	return 0, fmt.Errorf("%w: no signing threshold", ErrUnrecognizedScript)
}

// PublicKeys recovers the public keys the script commits to, in script
// order, by re-parsing the raw bytes. Empty and custom scripts fail with
// ErrUnrecognizedScript.
func (v *VerificationScript) PublicKeys() ([]*crypto.PublicKey, error) {
	if v.isSingleSig() {
		pub, err := crypto.ParsePubKey(v.raw[2 : 2+crypto.PubKeyBytesLenCompressed])
		if err != nil {
			// Unreachable: isSingleSig already parsed the key.
			return nil, err
		}
		return []*crypto.PublicKey{pub}, nil
	}

	if _, keys, ok := v.parseMultiSig(); ok {
		return keys, nil
	}

	return nil, fmt.Errorf("%w: no embedded keys", ErrUnrecognizedScript)
}

// isSingleSig checks the exact single-sig shape: fixed length, fixed opcode
// positions and a pushed key that is a well-formed curve point.
func (v *VerificationScript) isSingleSig() bool {
	if len(v.raw) != SingleSigScriptLen {
		return false
	}
	if Opcode(v.raw[0]) != OpPushData1 ||
		int(v.raw[1]) != crypto.PubKeyBytesLenCompressed {

		return false
	}
	if _, err := crypto.ParsePubKey(
		v.raw[2 : 2+crypto.PubKeyBytesLenCompressed],
	); err != nil {
		return false
	}

	tail := v.raw[2+crypto.PubKeyBytesLenCompressed:]
	return Opcode(tail[0]) == OpSyscall &&
		bytes.Equal(tail[1:], CheckSig.ID())
}

// parseMultiSig walks the multisig structure: pushed threshold, a run of
// 33-byte key pushes, pushed key count, SYSCALL and the multisig interop
// id, with nothing trailing. Any deviation reports ok == false.
func (v *VerificationScript) parseMultiSig() (int, []*crypto.PublicKey, bool) {
	r := scriptReader{script: v.raw}

	threshold, ok := r.readPushInt()
	if !ok || threshold < 1 || threshold > MaxMultiSigKeys {
		return 0, nil, false
	}

	var keys []*crypto.PublicKey
	for r.peekOpcode() == OpPushData1 {
		keyBytes, ok := r.readKeyPush()
		if !ok {
			return 0, nil, false
		}
		pub, err := crypto.ParsePubKey(keyBytes)
		if err != nil {
			return 0, nil, false
		}
		keys = append(keys, pub)

		if len(keys) > MaxMultiSigKeys {
			return 0, nil, false
		}
	}

	count, ok := r.readPushInt()
	if !ok || count != len(keys) || threshold > count {
		return 0, nil, false
	}

	if !r.readSysCall(CheckMultisig) || !r.empty() {
		return 0, nil, false
	}

	return threshold, keys, true
}

// scriptReader is a byte cursor over a script with structural read helpers.
// The helpers never panic on truncated input; they report failure and leave
// the cursor where it was.
type scriptReader struct {
	script []byte
	offset int
}

// empty reports whether the cursor has consumed the whole script.
func (r *scriptReader) empty() bool {
	return r.offset == len(r.script)
}

// peekOpcode returns the opcode at the cursor without consuming it. At the
// end of the script it returns an opcode that matches nothing the callers
// look for.
func (r *scriptReader) peekOpcode() Opcode {
	if r.offset >= len(r.script) {
		return Opcode(0xff)
	}
	return Opcode(r.script[r.offset])
}

// readPushInt consumes an integer push: one of the small-integer opcodes,
// or PUSHINT8/PUSHINT16 with their little-endian payloads. Wider pushes are
// rejected since no valid threshold or key count needs them.
func (r *scriptReader) readPushInt() (int, bool) {
	op := r.peekOpcode()
	switch {
	case op >= OpPush1 && op <= OpPush16:
		r.offset++
		return int(op-OpPush1) + 1, true

	case op == OpPush0:
		r.offset++
		return 0, true

	case op == OpPushInt8:
		if r.offset+2 > len(r.script) {
			return 0, false
		}
		n := int(int8(r.script[r.offset+1]))
		r.offset += 2
		return n, true

	case op == OpPushInt16:
		if r.offset+3 > len(r.script) {
			return 0, false
		}
		n := int(int16(binary.LittleEndian.Uint16(
			r.script[r.offset+1 : r.offset+3],
		)))
		r.offset += 3
		return n, true
	}

	return 0, false
}

// readKeyPush consumes a PUSHDATA1 of exactly 33 bytes and returns the
// pushed bytes without copying.
func (r *scriptReader) readKeyPush() ([]byte, bool) {
	if r.offset+2 > len(r.script) {
		return nil, false
	}
	if Opcode(r.script[r.offset]) != OpPushData1 ||
		int(r.script[r.offset+1]) != crypto.PubKeyBytesLenCompressed {

		return nil, false
	}

	start := r.offset + 2
	end := start + crypto.PubKeyBytesLenCompressed
	if end > len(r.script) {
		return nil, false
	}

	r.offset = end
	return r.script[start:end], true
}

// readSysCall consumes a SYSCALL of the given service.
func (r *scriptReader) readSysCall(service InteropService) bool {
	end := r.offset + 1 + interopIDLen
	if end > len(r.script) {
		return false
	}
	if Opcode(r.script[r.offset]) != OpSyscall {
		return false
	}
	if !bytes.Equal(r.script[r.offset+1:end], service.ID()) {
		return false
	}

	r.offset = end
	return true
}
