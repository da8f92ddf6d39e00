package asm

// SegmentKind names which segment a symbol's offset is measured
// from.
type SegmentKind int

const (
	SegText SegmentKind = iota
	SegData
)

// Symbol is one label definition: the segment it lives in, its
// byte offset within that segment, and whether it was declared
// global (exported for other units to reference).
type Symbol struct {
	Segment SegmentKind
	Offset  uint32
	Global  bool
}

// RelocKind names the exact bit-field patch a Relocation performs,
// mirroring the RISC-V relocation types this assembler actually
// needs.
type RelocKind int

const (
	// RelocPCRelBranch patches a B-format branch's 13-bit
	// pc-relative offset. A branch's target is always within the
	// assembling program, so the assembler itself always resolves
	// these immediately; the linker's patch logic for this kind
	// exists for completeness but nothing currently produces it.
	RelocPCRelBranch RelocKind = iota
	// RelocPCRelJump patches a J-format jal's 21-bit pc-relative
	// offset.
	RelocPCRelJump
	// RelocAbsHi20 patches a U-format instruction with the rounded
	// upper 20 bits of Label's address: the absolute address for lui,
	// the offset from the instruction itself for auipc.
	RelocAbsHi20
	// RelocAbsLo12 patches an I-format instruction's 12-bit
	// immediate with the sign-extended low 12 bits of Label's
	// address, taken relative to the auipc directly before it when
	// there is one, else absolute.
	RelocAbsLo12
)

// Relocation is a deferred patch: at TextOffset, the instruction's
// immediate field (per Kind) needs Label's final address, which is
// not known until link time.
type Relocation struct {
	TextOffset uint32
	Label      string
	Kind       RelocKind
	// Line is kept for diagnostics when the linker cannot resolve
	// Label.
	Line int
}

// DebugEntry maps one instruction's text offset back to the source
// line that produced it.
type DebugEntry struct {
	TextOffset uint32
	Line       int
}

// Program is the output of assembling one translation unit: its
// encoded instruction bytes, its data bytes, its local symbol table,
// the relocations still needed to finish encoding, and a debug map
// for the host to display source context during simulation.
type Program struct {
	Text []byte
	Data []byte

	Symbols     map[string]Symbol
	Relocations []Relocation
	DebugMap    []DebugEntry

	Diagnostics []Error
}

func newProgram() *Program {
	return &Program{
		Symbols: map[string]Symbol{},
	}
}
