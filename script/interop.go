package script

import "crypto/sha256"

// InteropService names a system call the virtual machine can dispatch to.
// The wire identifier of a service is the first four bytes of the SHA-256
// digest of its name, emitted verbatim after the SYSCALL opcode.
type InteropService string

const (
	// CheckSig verifies a single signature against the public key pushed
	// by the enclosing verification script.
	CheckSig InteropService = "System.Crypto.CheckSig"

	// CheckMultisig verifies a threshold of signatures against the key
	// set pushed by the enclosing verification script.
	CheckMultisig InteropService = "System.Crypto.CheckMultisig"
)

// interopIDLen is the length of a syscall identifier on the wire.
const interopIDLen = 4

// ID returns the four-byte wire identifier of the service.
func (s InteropService) ID() []byte {
	digest := sha256.Sum256([]byte(s))
	return digest[:interopIDLen]
}
