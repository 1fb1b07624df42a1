package script

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// defaultScriptAlloc is the initial capacity of a builder's backing
	// array. Verification scripts are short, so this avoids regrowth for
	// the common single-sig and small multisig cases.
	defaultScriptAlloc = 64

	// MaxDataPushLen is the largest single data push the virtual
	// machine accepts as one stack item. Larger pushes could still be
	// length-prefixed by PUSHDATA4 but would never execute.
	MaxDataPushLen = 1 << 20
)

// ErrDataPushTooLarge is returned via Script when a data push exceeds
// MaxDataPushLen.
var ErrDataPushTooLarge = errors.New("data push exceeds item size limit")

// Builder assembles a script by appending opcodes, integer pushes and data
// pushes with canonical, minimal-width encodings. Errors are deferred: the
// first failed operation latches, subsequent calls become no-ops, and the
// error surfaces from Script. This permits fluent chaining without checking
// every step.
type Builder struct {
	script []byte
	err    error
}

// NewBuilder returns a builder ready for use.
func NewBuilder() *Builder {
	return &Builder{
		script: make([]byte, 0, defaultScriptAlloc),
	}
}

// AddOp appends a bare opcode.
func (b *Builder) AddOp(op Opcode) *Builder {
	if b.err != nil {
		return b
	}
	b.script = append(b.script, byte(op))
	return b
}

// AddInt appends an integer push using the smallest encoding that can carry
// the value: the dedicated opcodes for -1 through 16, then PUSHINT8 through
// PUSHINT64 with little-endian payloads.
func (b *Builder) AddInt(n int64) *Builder {
	if b.err != nil {
		return b
	}

	switch {
	case n == -1:
		return b.AddOp(OpPushM1)

	case n >= 0 && n <= 16:
		return b.AddOp(OpPush0 + Opcode(n))

	case n >= -128 && n <= 127:
		b.script = append(b.script, byte(OpPushInt8), byte(n))

	case n >= -32768 && n <= 32767:
		b.script = append(b.script, byte(OpPushInt16))
		b.script = binary.LittleEndian.AppendUint16(
			b.script, uint16(n),
		)

	case n >= -2147483648 && n <= 2147483647:
		b.script = append(b.script, byte(OpPushInt32))
		b.script = binary.LittleEndian.AppendUint32(
			b.script, uint32(n),
		)

	default:
		b.script = append(b.script, byte(OpPushInt64))
		b.script = binary.LittleEndian.AppendUint64(
			b.script, uint64(n),
		)
	}

	return b
}

// AddData appends a data push, selecting PUSHDATA1/2/4 by the length of the
// payload. A payload beyond MaxDataPushLen latches ErrDataPushTooLarge.
func (b *Builder) AddData(data []byte) *Builder {
	if b.err != nil {
		return b
	}

	if len(data) > MaxDataPushLen {
		b.err = fmt.Errorf("%w: %d > %d", ErrDataPushTooLarge,
			len(data), MaxDataPushLen)
		return b
	}

	switch {
	case len(data) <= 0xff:
		b.script = append(b.script, byte(OpPushData1), byte(len(data)))

	case len(data) <= 0xffff:
		b.script = append(b.script, byte(OpPushData2))
		b.script = binary.LittleEndian.AppendUint16(
			b.script, uint16(len(data)),
		)

	default:
		b.script = append(b.script, byte(OpPushData4))
		b.script = binary.LittleEndian.AppendUint32(
			b.script, uint32(len(data)),
		)
	}

	b.script = append(b.script, data...)
	return b
}

// AddSysCall appends a SYSCALL of the given interop service.
func (b *Builder) AddSysCall(service InteropService) *Builder {
	if b.err != nil {
		return b
	}
	b.script = append(b.script, byte(OpSyscall))
	b.script = append(b.script, service.ID()...)
	return b
}

// Script returns the assembled bytes, or the first error recorded by any of
// the preceding operations.
func (b *Builder) Script() ([]byte, error) {
	if b.err != nil {
		return nil, fmt.Errorf("unable to build script: %w", b.err)
	}
	return b.script, nil
}
