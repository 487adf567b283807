package encode

import (
	"fmt"
	"math/bits"
)

// Word is one 64-bit instruction of the controller stream.
type Word uint64

// Layout constants of the instruction set.
const (
	WordBits        = 64
	OpcodeBits      = 3
	GateBits        = 4
	DecoherenceBits = 1
	IntBits         = 2
	FracBits        = 30

	lastBit   = WordBits - 1
	headerPos = WordBits - 1 - OpcodeBits
)

// Category is the 3-bit opcode of an instruction word.
type Category uint8

const (
	SingleGate Category = iota
	ControlGate
	SingleGateCond
	ControlGateCond
	Decoherence
	Measurement
	Reset
)

var categoryNames = [...]string{
	SingleGate:      "single",
	ControlGate:     "control",
	SingleGateCond:  "single-cond",
	ControlGateCond: "control-cond",
	Decoherence:     "decoherence",
	Measurement:     "measurement",
	Reset:           "reset",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("opcode(%d)", uint8(c))
}

// emitOrder is the order categories are laid out inside a timeslice before
// the marker category is moved to the end.
var emitOrder = [...]Category{
	SingleGate,
	SingleGateCond,
	ControlGate,
	ControlGateCond,
	Decoherence,
	Measurement,
	Reset,
}

// Last reports whether bit 63 is set.
func (w Word) Last() bool {
	return w>>lastBit == 1
}

// Opcode returns the category stored in bits 62-60.
func (w Word) Opcode() Category {
	return Category(w >> headerPos & (1<<OpcodeBits - 1))
}

// Field returns width bits whose most significant bit is hi.
func (w Word) Field(hi, width int) uint64 {
	return uint64(w) >> (hi - width + 1) & uint64(ones(width))
}

func (w Word) String() string {
	return fmt.Sprintf("%064b", uint64(w))
}

// header returns a word carrying only the opcode of c.
func header(c Category) Word {
	return Word(c) << headerPos
}

// ones returns a word with the low n bits set.
func ones(n int) Word {
	if n >= WordBits {
		return ^Word(0)
	}
	return 1<<n - 1
}

// QubitBits returns the width of a qubit index field for n qubits.
func QubitBits(n int) int {
	if n <= 1 {
		return 1
	}
	return bits.Len(uint(n - 1))
}
