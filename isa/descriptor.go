package isa

import (
	"fmt"

	"github.com/sarchlab/rv32edu/core"
)

// ExecFunc performs the semantic action of one descriptor against a
// mutable processor state and returns the diffs needed to undo it.
type ExecFunc func(w Word, s *core.ProcessorState) ([]core.Diff, error)

// Descriptor is one entry of the RV32I instruction table: a mnemonic,
// its encoding format, the required bit-field values that identify it
// uniquely, the shape of its operand list, and its semantic action.
//
// Funct3 and Funct7 are -1 when the format does not carry that field
// (U and J formats have neither).
type Descriptor struct {
	Mnemonic string
	Format   Format
	Opcode   uint32
	Funct3   int32
	Funct7   int32
	Args     []ArgKind
	Exec     ExecFunc

	// ShiftAmount marks the three I-format shift instructions
	// (slli/srli/srai), whose "immediate" is really a 5-bit shift
	// amount occupying the rs2 bit positions, with funct7 fixed above
	// it rather than being part of a 12-bit immediate.
	ShiftAmount bool
}

func (d *Descriptor) matches(w Word) bool {
	if w.Opcode() != d.Opcode {
		return false
	}
	if d.Funct3 >= 0 && w.Funct3() != uint32(d.Funct3) {
		return false
	}
	if d.Funct7 >= 0 && w.Funct7() != uint32(d.Funct7) {
		return false
	}
	return true
}

// registry is the global, immutable RV32I instruction table. It is
// built once by init and never mutated afterward.
var registry []*Descriptor

var byMnemonic = map[string]*Descriptor{}

func register(d *Descriptor) {
	registry = append(registry, d)
	byMnemonic[d.Mnemonic] = d
}

// Dispatch selects the unique descriptor whose required fields match
// every bit of w. Constraints are checked opcode first, then funct3,
// then funct7, per the table construction order; a decode failure
// means no descriptor in the table matches.
func Dispatch(w Word) (*Descriptor, error) {
	for _, d := range registry {
		if d.matches(w) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("decode error: no instruction matches word 0x%08x", uint32(w))
}

// Lookup returns the descriptor for a mnemonic, as used by the
// assembler when encoding.
func Lookup(mnemonic string) (*Descriptor, bool) {
	d, ok := byMnemonic[mnemonic]
	return d, ok
}

// All returns every descriptor in the table, in registration order.
func All() []*Descriptor {
	return registry
}
