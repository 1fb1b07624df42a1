package script

import "fmt"

// Opcode is a single instruction byte of the verification script dialect.
// Only the subset that can appear in signature and multisig verification
// scripts is defined here; the engine treats every other byte as opaque when
// classifying.
type Opcode byte

const (
	// OpPushInt8 pushes the following byte as a signed integer.
	OpPushInt8 Opcode = 0x00

	// OpPushInt16 pushes the following two bytes as a signed
	// little-endian integer.
	OpPushInt16 Opcode = 0x01

	// OpPushInt32 pushes the following four bytes as a signed
	// little-endian integer.
	OpPushInt32 Opcode = 0x02

	// OpPushInt64 pushes the following eight bytes as a signed
	// little-endian integer.
	OpPushInt64 Opcode = 0x03

	// OpPushData1 pushes up to 255 bytes; the length is given in the
	// next byte.
	OpPushData1 Opcode = 0x0C

	// OpPushData2 pushes up to 65535 bytes; the length is given in the
	// next two bytes, little-endian.
	OpPushData2 Opcode = 0x0D

	// OpPushData4 pushes larger items; the length is given in the next
	// four bytes, little-endian.
	OpPushData4 Opcode = 0x0E

	// OpPushM1 pushes the integer -1.
	OpPushM1 Opcode = 0x0F

	// OpPush0 pushes the integer 0.
	OpPush0 Opcode = 0x10

	// OpPush1 pushes the integer 1. The opcodes through OpPush16 push
	// the respective small integer directly.
	OpPush1 Opcode = 0x11

	// OpPush16 pushes the integer 16.
	OpPush16 Opcode = 0x20

	// OpSyscall invokes the interop service identified by the following
	// four bytes.
	OpSyscall Opcode = 0x41
)

// opcodeNames maps the defined opcodes to their dialect names for logging
// and error text.
var opcodeNames = map[Opcode]string{
	OpPushInt8:  "PUSHINT8",
	OpPushInt16: "PUSHINT16",
	OpPushInt32: "PUSHINT32",
	OpPushInt64: "PUSHINT64",
	OpPushData1: "PUSHDATA1",
	OpPushData2: "PUSHDATA2",
	OpPushData4: "PUSHDATA4",
	OpPushM1:    "PUSHM1",
	OpPush0:     "PUSH0",
	OpSyscall:   "SYSCALL",
}

// String returns the dialect name of the opcode.
func (o Opcode) String() string {
	if o >= OpPush1 && o <= OpPush16 {
		return fmt.Sprintf("PUSH%d", int(o-OpPush1)+1)
	}
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OPCODE_0x%02X", byte(o))
}
