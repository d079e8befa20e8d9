/*
 * Copyright 2025 The Kythe Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package classfile

import (
	"encoding/binary"
	"fmt"
)

// An Opcode is a JVM instruction opcode.
type Opcode byte

// Opcodes that the decoder treats specially.
const (
	OpNop             Opcode = 0x00
	OpIinc            Opcode = 0x84
	OpTableswitch     Opcode = 0xaa
	OpLookupswitch    Opcode = 0xab
	OpReturn          Opcode = 0xb1
	OpInvokevirtual   Opcode = 0xb6
	OpInvokespecial   Opcode = 0xb7
	OpInvokestatic    Opcode = 0xb8
	OpInvokeinterface Opcode = 0xb9
	OpInvokedynamic   Opcode = 0xba
	OpWide            Opcode = 0xc4
)

// IsInvoke reports whether op invokes a method through a Methodref or
// InterfaceMethodref constant. invokedynamic is not included.
func (op Opcode) IsInvoke() bool {
	switch op {
	case OpInvokevirtual, OpInvokespecial, OpInvokestatic, OpInvokeinterface:
		return true
	}
	return false
}

// opcodeLen holds the fixed length in bytes (opcode included) of each
// instruction; 0 marks variable-length or undefined opcodes.
var opcodeLen [256]uint8

func init() {
	set := func(lo, hi int, n uint8) {
		for op := lo; op <= hi; op++ {
			opcodeLen[op] = n
		}
	}
	set(0x00, 0x0f, 1) // nop, constants
	set(0x10, 0x10, 2) // bipush
	set(0x11, 0x11, 3) // sipush
	set(0x12, 0x12, 2) // ldc
	set(0x13, 0x14, 3) // ldc_w, ldc2_w
	set(0x15, 0x19, 2) // loads with index
	set(0x1a, 0x35, 1) // load_n, array loads
	set(0x36, 0x3a, 2) // stores with index
	set(0x3b, 0x83, 1) // store_n, array stores, stack, arithmetic
	set(0x84, 0x84, 3) // iinc
	set(0x85, 0x98, 1) // conversions, comparisons
	set(0x99, 0xa8, 3) // branches, goto, jsr
	set(0xa9, 0xa9, 2) // ret
	set(0xac, 0xb1, 1) // returns
	set(0xb2, 0xb8, 3) // field access, invokevirtual/special/static
	set(0xb9, 0xba, 5) // invokeinterface, invokedynamic
	set(0xbb, 0xbb, 3) // new
	set(0xbc, 0xbc, 2) // newarray
	set(0xbd, 0xbd, 3) // anewarray
	set(0xbe, 0xbf, 1) // arraylength, athrow
	set(0xc0, 0xc1, 3) // checkcast, instanceof
	set(0xc2, 0xc3, 1) // monitorenter, monitorexit
	set(0xc5, 0xc5, 4) // multianewarray
	set(0xc6, 0xc7, 3) // ifnull, ifnonnull
	set(0xc8, 0xc9, 5) // goto_w, jsr_w
}

// Code is the body of a method.
type Code struct {
	MaxStack, MaxLocals uint16
	Bytecode            []byte

	pool *ConstantPool
}

func parseCode(body []byte, cp *ConstantPool) (*Code, error) {
	r := &reader{data: body}
	c := &Code{MaxStack: r.u2(), MaxLocals: r.u2(), pool: cp}
	n := r.u4()
	if r.err == nil && uint64(n) > uint64(len(body)-r.pos) {
		return nil, fmt.Errorf("code length %d exceeds attribute size", n)
	}
	c.Bytecode = r.bytes(int(n))
	if r.err != nil {
		return nil, r.err
	}
	return c, nil
}

// An Instruction is one decoded bytecode instruction.
type Instruction struct {
	Offset int
	Opcode Opcode

	// Method is the invoked method for invokevirtual, invokespecial,
	// invokestatic and invokeinterface; nil otherwise.
	Method *MemberRef
}

// Instructions decodes the bytecode of c in order, calling fn for each
// instruction. Decoding stops at the first malformed instruction, returning
// an error describing it, or at the first error returned by fn, which is
// returned unchanged.
func (c *Code) Instructions(fn func(Instruction) error) error {
	if c == nil {
		return nil
	}
	code := c.Bytecode
	for pc := 0; pc < len(code); {
		op := Opcode(code[pc])
		n, err := instructionLen(code, pc)
		if err != nil {
			return err
		}
		in := Instruction{Offset: pc, Opcode: op}
		if op.IsInvoke() {
			idx := binary.BigEndian.Uint16(code[pc+1:])
			ref, err := c.pool.MethodRef(idx)
			if err != nil {
				return fmt.Errorf("bytecode offset %d: invalid method reference: %v", pc, err)
			}
			in.Method = &ref
		}
		if err := fn(in); err != nil {
			return err
		}
		pc += n
	}
	return nil
}

// instructionLen returns the length of the instruction starting at pc.
func instructionLen(code []byte, pc int) (int, error) {
	op := Opcode(code[pc])
	var n int
	switch op {
	case OpTableswitch, OpLookupswitch:
		// Operands start at the next 4-byte boundary from the start of the code.
		p := (pc + 4) &^ 3
		header := 8
		if op == OpTableswitch {
			header = 12
		}
		if p+header > len(code) {
			return 0, fmt.Errorf("bytecode offset %d: truncated switch", pc)
		}
		if op == OpTableswitch {
			low := int32(binary.BigEndian.Uint32(code[p+4:]))
			high := int32(binary.BigEndian.Uint32(code[p+8:]))
			if high < low {
				return 0, fmt.Errorf("bytecode offset %d: tableswitch high %d < low %d", pc, high, low)
			}
			n = p + 12 + 4*int(int64(high)-int64(low)+1) - pc
		} else {
			npairs := int32(binary.BigEndian.Uint32(code[p+4:]))
			if npairs < 0 {
				return 0, fmt.Errorf("bytecode offset %d: lookupswitch npairs %d < 0", pc, npairs)
			}
			n = p + 8 + 8*int(npairs) - pc
		}
	case OpWide:
		if pc+1 >= len(code) {
			return 0, fmt.Errorf("bytecode offset %d: truncated wide instruction", pc)
		}
		if Opcode(code[pc+1]) == OpIinc {
			n = 6
		} else {
			n = 4
		}
	default:
		n = int(opcodeLen[op])
		if n == 0 {
			return 0, fmt.Errorf("bytecode offset %d: invalid opcode %#x", pc, byte(op))
		}
	}
	if pc+n > len(code) {
		return 0, fmt.Errorf("bytecode offset %d: truncated instruction (opcode %#x)", pc, byte(op))
	}
	return n, nil
}
