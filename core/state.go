package core

// ProcessorState is the complete mutable state of one simulated RV32I
// core: its registers, program counter, memory, and heap pointer.
type ProcessorState struct {
	Regs   RegFile
	PC     uint32
	Memory *Memory

	// HeapPointer is the next address sbrk will hand out.
	HeapPointer uint32

	// Done is set by an environment call that terminates the program
	// (ecall codes 10 and 17). It is metadata for the simulator's
	// state machine, not part of the architectural register/memory
	// state, so undoing past a Done-setting step also clears it.
	Done     bool
	ExitCode int32

	// EnvCall dispatches ecall instructions. It is nil until a host
	// installs one; executing ecall with no handler configured is a
	// runtime error.
	EnvCall EnvCallHandler
}

// EnvCallHandler is the pluggable implementation of the ecall
// instruction's environment-call contract. A host installs one
// implementation bound to its own output sinks.
type EnvCallHandler interface {
	// Handle executes the environment call indicated by the a7
	// register and returns the diffs it produced.
	Handle(s *ProcessorState) ([]Diff, error)
}

// NewProcessorState builds a fresh, zeroed processor state with sp
// initialized to the top of the stack segment and the heap pointer at
// the bottom of the heap segment.
func NewProcessorState() *ProcessorState {
	s := &ProcessorState{
		Memory:      NewMemory(),
		HeapPointer: HeapBegin,
	}
	s.Regs.WriteReg(RegSP, StackBegin)
	return s
}

// RISC-V ABI register numbers referenced directly by the simulator and
// the pseudoinstruction expander.
const (
	RegZero uint8 = 0
	RegRA   uint8 = 1
	RegSP   uint8 = 2
	RegGP   uint8 = 3
	RegTP   uint8 = 4
	RegA0   uint8 = 10
	RegA7   uint8 = 17
)

// DiffKind tags the variant of a Diff.
type DiffKind int

const (
	// DiffRegister records that a register was overwritten.
	DiffRegister DiffKind = iota
	// DiffPC records that the program counter was overwritten.
	DiffPC
	// DiffMemoryByte records that one memory byte was overwritten.
	DiffMemoryByte
	// DiffHeapPointer records that the heap pointer was overwritten.
	DiffHeapPointer
	// DiffDone records that the termination flag and exit code were
	// overwritten.
	DiffDone
)

// Diff is a single reversible state mutation. A step produces an
// ordered slice of Diffs; undoing a step applies them in reverse
// order, restoring OldX into the field the variant names.
type Diff struct {
	Kind DiffKind

	// RegID and OldReg are populated for DiffRegister.
	RegID  uint8
	OldReg uint32

	// OldPC is populated for DiffPC.
	OldPC uint32

	// Addr and OldByte are populated for DiffMemoryByte.
	Addr    uint32
	OldByte uint8

	// OldHeap is populated for DiffHeapPointer.
	OldHeap uint32

	// OldDone and OldExitCode are populated for DiffDone.
	OldDone     bool
	OldExitCode int32
}

// SetReg writes value to reg and returns the Diff needed to undo it.
func (s *ProcessorState) SetReg(reg uint8, value uint32) Diff {
	old := s.Regs.ReadReg(reg)
	s.Regs.WriteReg(reg, value)
	return Diff{Kind: DiffRegister, RegID: reg, OldReg: old}
}

// SetPC writes the program counter and returns the Diff needed to
// undo it.
func (s *ProcessorState) SetPC(value uint32) Diff {
	old := s.PC
	s.PC = value
	return Diff{Kind: DiffPC, OldPC: old}
}

// SetByte writes one memory byte and returns the Diff needed to undo
// it.
func (s *ProcessorState) SetByte(addr uint32, value uint8) Diff {
	old := s.Memory.Read8(addr)
	s.Memory.Write8(addr, value)
	return Diff{Kind: DiffMemoryByte, Addr: addr, OldByte: old}
}

// SetHeapPointer writes the heap pointer and returns the Diff needed
// to undo it.
func (s *ProcessorState) SetHeapPointer(value uint32) Diff {
	old := s.HeapPointer
	s.HeapPointer = value
	return Diff{Kind: DiffHeapPointer, OldHeap: old}
}

// SetDone marks the program terminated with the given exit code and
// returns the Diff needed to undo it.
func (s *ProcessorState) SetDone(exitCode int32) Diff {
	d := Diff{Kind: DiffDone, OldDone: s.Done, OldExitCode: s.ExitCode}
	s.Done = true
	s.ExitCode = exitCode
	return d
}

// Apply writes the old value a Diff recorded back into the field the
// Diff names, without producing a further Diff. Undo is built on it.
func (s *ProcessorState) Apply(d Diff) {
	switch d.Kind {
	case DiffRegister:
		s.Regs.WriteReg(d.RegID, d.OldReg)
	case DiffPC:
		s.PC = d.OldPC
	case DiffMemoryByte:
		s.Memory.Write8(d.Addr, d.OldByte)
	case DiffHeapPointer:
		s.HeapPointer = d.OldHeap
	case DiffDone:
		s.Done = d.OldDone
		s.ExitCode = d.OldExitCode
	}
}

// Undo reverses d against the current state, restoring the field it
// names to its recorded old value.
func (s *ProcessorState) Undo(d Diff) {
	s.Apply(d)
}

// SetBytes writes multiple contiguous bytes and returns one Diff per
// byte, in address order, so undoing them in reverse restores the
// original contents.
func (s *ProcessorState) SetBytes(addr uint32, value []byte) []Diff {
	diffs := make([]Diff, len(value))
	for i, b := range value {
		diffs[i] = s.SetByte(addr+uint32(i), b)
	}
	return diffs
}

