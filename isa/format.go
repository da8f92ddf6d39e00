package isa

// Format names the six RV32I instruction encodings.
type Format int

const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// ArgKind names what an operand slot parses into.
type ArgKind int

const (
	ArgRegister ArgKind = iota
	ArgImmediate
	ArgLabel
)

// Opcodes for the seven RV32I base opcode groups plus the two
// single-instruction opcodes (LUI, AUIPC), the environment-call
// opcode, and the fence (MISC-MEM) opcode.
const (
	OpcodeLoad   uint32 = 0b0000011
	OpcodeStore  uint32 = 0b0100011
	OpcodeOpImm  uint32 = 0b0010011
	OpcodeOp     uint32 = 0b0110011
	OpcodeBranch uint32 = 0b1100011
	OpcodeJAL    uint32 = 0b1101111
	OpcodeJALR   uint32 = 0b1100111
	OpcodeLUI    uint32 = 0b0110111
	OpcodeAUIPC  uint32 = 0b0010111
	OpcodeSystem uint32 = 0b1110011
	OpcodeMiscMem uint32 = 0b0001111
)
