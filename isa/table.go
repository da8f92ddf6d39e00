package isa

import "github.com/sarchlab/rv32edu/core"

func init() {
	registerRType()
	registerIType()
	registerLoads()
	registerStores()
	registerBranches()
	registerJumps()
	registerUpper()
	registerSystem()
}

func registerRType() {
	type rspec struct {
		mnemonic string
		funct3   uint32
		funct7   uint32
		alu      func(a, b uint32) uint32
	}
	specs := []rspec{
		{"add", 0b000, 0b0000000, func(a, b uint32) uint32 { return a + b }},
		{"sub", 0b000, 0b0100000, func(a, b uint32) uint32 { return a - b }},
		{"sll", 0b001, 0b0000000, func(a, b uint32) uint32 { return a << (b & 31) }},
		{"slt", 0b010, 0b0000000, func(a, b uint32) uint32 { return boolToU32(int32(a) < int32(b)) }},
		{"sltu", 0b011, 0b0000000, func(a, b uint32) uint32 { return boolToU32(a < b) }},
		{"xor", 0b100, 0b0000000, func(a, b uint32) uint32 { return a ^ b }},
		{"srl", 0b101, 0b0000000, func(a, b uint32) uint32 { return a >> (b & 31) }},
		{"sra", 0b101, 0b0100000, func(a, b uint32) uint32 { return uint32(int32(a) >> (b & 31)) }},
		{"or", 0b110, 0b0000000, func(a, b uint32) uint32 { return a | b }},
		{"and", 0b111, 0b0000000, func(a, b uint32) uint32 { return a & b }},
	}
	for _, sp := range specs {
		sp := sp
		register(&Descriptor{
			Mnemonic: sp.mnemonic, Format: FormatR, Opcode: OpcodeOp,
			Funct3: int32(sp.funct3), Funct7: int32(sp.funct7),
			Args: []ArgKind{ArgRegister, ArgRegister, ArgRegister},
			Exec: execR(sp.alu),
		})
	}
}

func registerIType() {
	type ispec struct {
		mnemonic string
		funct3   uint32
		alu      func(a uint32, imm int32) uint32
	}
	specs := []ispec{
		{"addi", 0b000, func(a uint32, imm int32) uint32 { return uint32(int32(a) + imm) }},
		{"slti", 0b010, func(a uint32, imm int32) uint32 { return boolToU32(int32(a) < imm) }},
		{"sltiu", 0b011, func(a uint32, imm int32) uint32 { return boolToU32(a < uint32(imm)) }},
		{"xori", 0b100, func(a uint32, imm int32) uint32 { return a ^ uint32(imm) }},
		{"ori", 0b110, func(a uint32, imm int32) uint32 { return a | uint32(imm) }},
		{"andi", 0b111, func(a uint32, imm int32) uint32 { return a & uint32(imm) }},
	}
	for _, sp := range specs {
		sp := sp
		register(&Descriptor{
			Mnemonic: sp.mnemonic, Format: FormatI, Opcode: OpcodeOpImm,
			Funct3: int32(sp.funct3), Funct7: -1,
			Args: []ArgKind{ArgRegister, ArgRegister, ArgImmediate},
			Exec: execI(sp.alu),
		})
	}

	register(&Descriptor{
		Mnemonic: "slli", Format: FormatI, Opcode: OpcodeOpImm,
		Funct3: 0b001, Funct7: 0b0000000,
		Args:        []ArgKind{ArgRegister, ArgRegister, ArgImmediate},
		Exec:        execShiftImm(func(a, shamt uint32) uint32 { return a << (shamt & 31) }),
		ShiftAmount: true,
	})
	register(&Descriptor{
		Mnemonic: "srli", Format: FormatI, Opcode: OpcodeOpImm,
		Funct3: 0b101, Funct7: 0b0000000,
		Args:        []ArgKind{ArgRegister, ArgRegister, ArgImmediate},
		Exec:        execShiftImm(func(a, shamt uint32) uint32 { return a >> (shamt & 31) }),
		ShiftAmount: true,
	})
	register(&Descriptor{
		Mnemonic: "srai", Format: FormatI, Opcode: OpcodeOpImm,
		Funct3: 0b101, Funct7: 0b0100000,
		Args:        []ArgKind{ArgRegister, ArgRegister, ArgImmediate},
		Exec:        execShiftImm(func(a, shamt uint32) uint32 { return uint32(int32(a) >> (shamt & 31)) }),
		ShiftAmount: true,
	})
}

func registerLoads() {
	type lspec struct {
		mnemonic string
		funct3   uint32
		size     int
		signed   bool
	}
	specs := []lspec{
		{"lb", 0b000, 1, true},
		{"lh", 0b001, 2, true},
		{"lw", 0b010, 4, true},
		{"lbu", 0b100, 1, false},
		{"lhu", 0b101, 2, false},
	}
	for _, sp := range specs {
		sp := sp
		register(&Descriptor{
			Mnemonic: sp.mnemonic, Format: FormatI, Opcode: OpcodeLoad,
			Funct3: int32(sp.funct3), Funct7: -1,
			Args: []ArgKind{ArgRegister, ArgImmediate, ArgRegister},
			Exec: execLoad(sp.size, sp.signed),
		})
	}
}

func registerStores() {
	type sspec struct {
		mnemonic string
		funct3   uint32
		size     int
	}
	specs := []sspec{
		{"sb", 0b000, 1},
		{"sh", 0b001, 2},
		{"sw", 0b010, 4},
	}
	for _, sp := range specs {
		sp := sp
		register(&Descriptor{
			Mnemonic: sp.mnemonic, Format: FormatS, Opcode: OpcodeStore,
			Funct3: int32(sp.funct3), Funct7: -1,
			Args: []ArgKind{ArgRegister, ArgImmediate, ArgRegister},
			Exec: execStore(sp.size),
		})
	}
}

func registerBranches() {
	register(&Descriptor{Mnemonic: "beq", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0b000, Funct7: -1,
		Args: []ArgKind{ArgRegister, ArgRegister, ArgLabel},
		Exec: execBranch(func(a, b int32) bool { return a == b })})
	register(&Descriptor{Mnemonic: "bne", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0b001, Funct7: -1,
		Args: []ArgKind{ArgRegister, ArgRegister, ArgLabel},
		Exec: execBranch(func(a, b int32) bool { return a != b })})
	register(&Descriptor{Mnemonic: "blt", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0b100, Funct7: -1,
		Args: []ArgKind{ArgRegister, ArgRegister, ArgLabel},
		Exec: execBranch(func(a, b int32) bool { return a < b })})
	register(&Descriptor{Mnemonic: "bge", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0b101, Funct7: -1,
		Args: []ArgKind{ArgRegister, ArgRegister, ArgLabel},
		Exec: execBranch(func(a, b int32) bool { return a >= b })})
	register(&Descriptor{Mnemonic: "bltu", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0b110, Funct7: -1,
		Args: []ArgKind{ArgRegister, ArgRegister, ArgLabel},
		Exec: execBranchU(func(a, b uint32) bool { return a < b })})
	register(&Descriptor{Mnemonic: "bgeu", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0b111, Funct7: -1,
		Args: []ArgKind{ArgRegister, ArgRegister, ArgLabel},
		Exec: execBranchU(func(a, b uint32) bool { return a >= b })})
}

func registerJumps() {
	register(&Descriptor{Mnemonic: "jal", Format: FormatJ, Opcode: OpcodeJAL, Funct3: -1, Funct7: -1,
		Args: []ArgKind{ArgRegister, ArgLabel}, Exec: execJAL})
	register(&Descriptor{Mnemonic: "jalr", Format: FormatI, Opcode: OpcodeJALR, Funct3: 0b000, Funct7: -1,
		Args: []ArgKind{ArgRegister, ArgImmediate, ArgRegister}, Exec: execJALR})
}

func registerUpper() {
	register(&Descriptor{Mnemonic: "lui", Format: FormatU, Opcode: OpcodeLUI, Funct3: -1, Funct7: -1,
		Args: []ArgKind{ArgRegister, ArgImmediate}, Exec: execLUI})
	register(&Descriptor{Mnemonic: "auipc", Format: FormatU, Opcode: OpcodeAUIPC, Funct3: -1, Funct7: -1,
		Args: []ArgKind{ArgRegister, ArgImmediate}, Exec: execAUIPC})
}

func registerSystem() {
	register(&Descriptor{Mnemonic: "ecall", Format: FormatI, Opcode: OpcodeSystem, Funct3: 0b000, Funct7: -1,
		Args: nil, Exec: execECall})
	register(&Descriptor{Mnemonic: "fence", Format: FormatI, Opcode: OpcodeMiscMem, Funct3: 0b000, Funct7: -1,
		Args: nil, Exec: execFence})
	register(&Descriptor{Mnemonic: "fence.i", Format: FormatI, Opcode: OpcodeMiscMem, Funct3: 0b001, Funct7: -1,
		Args: nil, Exec: execFence})
}

// Execute runs the descriptor's semantic action against state.
func Execute(d *Descriptor, w Word, s *core.ProcessorState) ([]core.Diff, error) {
	return d.Exec(w, s)
}
