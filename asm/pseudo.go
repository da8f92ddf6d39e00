package asm

import "fmt"

// realInstr is one real (non-pseudo) instruction statement produced
// by pseudoinstruction expansion, ready for encoding in pass 2.
type realInstr struct {
	mnemonic string
	operands []string
	line     int
}

// expandPseudo rewrites one statement's mnemonic/operands into one or
// more real instructions. handled is false when mnemonic names a real
// instruction and the statement should pass through unchanged.
func expandPseudo(st statement) (out []realInstr, handled bool, err error) {
	line := st.line
	ops := st.operands
	one := func(mnemonic string, operands ...string) []realInstr {
		return []realInstr{{mnemonic: mnemonic, operands: operands, line: line}}
	}

	switch st.mnemonic {
	case "nop":
		return one("addi", "x0", "x0", "0"), true, nil
	case "mv":
		if len(ops) != 2 {
			return nil, true, newError(line, "mv requires 2 operands")
		}
		return one("addi", ops[0], ops[1], "0"), true, nil
	case "not":
		if len(ops) != 2 {
			return nil, true, newError(line, "not requires 2 operands")
		}
		return one("xori", ops[0], ops[1], "-1"), true, nil
	case "neg":
		if len(ops) != 2 {
			return nil, true, newError(line, "neg requires 2 operands")
		}
		return one("sub", ops[0], "x0", ops[1]), true, nil
	case "seqz":
		if len(ops) != 2 {
			return nil, true, newError(line, "seqz requires 2 operands")
		}
		return one("sltiu", ops[0], ops[1], "1"), true, nil
	case "snez":
		if len(ops) != 2 {
			return nil, true, newError(line, "snez requires 2 operands")
		}
		return one("sltu", ops[0], "x0", ops[1]), true, nil
	case "sltz":
		if len(ops) != 2 {
			return nil, true, newError(line, "sltz requires 2 operands")
		}
		return one("slt", ops[0], ops[1], "x0"), true, nil
	case "sgtz":
		if len(ops) != 2 {
			return nil, true, newError(line, "sgtz requires 2 operands")
		}
		return one("slt", ops[0], "x0", ops[1]), true, nil
	case "sgt":
		if len(ops) != 3 {
			return nil, true, newError(line, "sgt requires 3 operands")
		}
		return one("slt", ops[0], ops[2], ops[1]), true, nil
	case "sge":
		if len(ops) != 3 {
			return nil, true, newError(line, "sge requires 3 operands")
		}
		return []realInstr{
			{mnemonic: "slt", operands: []string{ops[0], ops[1], ops[2]}, line: line},
			{mnemonic: "xori", operands: []string{ops[0], ops[0], "1"}, line: line},
		}, true, nil

	case "li":
		if len(ops) != 2 {
			return nil, true, newError(line, "li requires 2 operands")
		}
		imm, ok := parseImmediate(ops[1])
		if !ok {
			return nil, true, newError(line, "li: %q is not a numeric immediate", ops[1])
		}
		if fitsSigned12(imm) {
			return one("addi", ops[0], "x0", ops[1]), true, nil
		}
		hi, lo := splitHiLo(imm)
		return []realInstr{
			{mnemonic: "lui", operands: []string{ops[0], fmt.Sprintf("%d", hi)}, line: line},
			{mnemonic: "addi", operands: []string{ops[0], ops[0], fmt.Sprintf("%d", lo)}, line: line},
		}, true, nil

	case "la":
		if len(ops) != 2 {
			return nil, true, newError(line, "la requires 2 operands")
		}
		return []realInstr{
			{mnemonic: "auipc", operands: []string{ops[0], "%hi(" + ops[1] + ")"}, line: line},
			{mnemonic: "addi", operands: []string{ops[0], ops[0], "%lo(" + ops[1] + ")"}, line: line},
		}, true, nil

	case "call":
		if len(ops) != 1 {
			return nil, true, newError(line, "call requires 1 operand")
		}
		return []realInstr{
			{mnemonic: "auipc", operands: []string{"ra", "%hi(" + ops[0] + ")"}, line: line},
			{mnemonic: "jalr", operands: []string{"ra", "%lo(" + ops[0] + ")", "ra"}, line: line},
		}, true, nil

	case "j":
		if len(ops) != 1 {
			return nil, true, newError(line, "j requires 1 operand")
		}
		return one("jal", "x0", ops[0]), true, nil
	case "jal":
		if len(ops) == 1 {
			return one("jal", "ra", ops[0]), true, nil
		}
		return nil, false, nil
	case "jr":
		if len(ops) != 1 {
			return nil, true, newError(line, "jr requires 1 operand")
		}
		return one("jalr", "x0", "0", ops[0]), true, nil
	case "jalr":
		if len(ops) == 1 {
			return one("jalr", "ra", "0", ops[0]), true, nil
		}
		return nil, false, nil
	case "ret":
		return one("jalr", "x0", "0", "ra"), true, nil

	case "beqz":
		return branchZero("beq", ops, line)
	case "bnez":
		return branchZero("bne", ops, line)
	case "blez":
		if len(ops) != 2 {
			return nil, true, newError(line, "blez requires 2 operands")
		}
		return one("bge", "x0", ops[0], ops[1]), true, nil
	case "bgez":
		return branchZero("bge", ops, line)
	case "bltz":
		return branchZero("blt", ops, line)
	case "bgtz":
		if len(ops) != 2 {
			return nil, true, newError(line, "bgtz requires 2 operands")
		}
		return one("blt", "x0", ops[0], ops[1]), true, nil
	case "ble":
		if len(ops) != 3 {
			return nil, true, newError(line, "ble requires 3 operands")
		}
		return one("bge", ops[1], ops[0], ops[2]), true, nil
	case "bgt":
		if len(ops) != 3 {
			return nil, true, newError(line, "bgt requires 3 operands")
		}
		return one("blt", ops[1], ops[0], ops[2]), true, nil
	case "bleu":
		if len(ops) != 3 {
			return nil, true, newError(line, "bleu requires 3 operands")
		}
		return one("bgeu", ops[1], ops[0], ops[2]), true, nil
	case "bgtu":
		if len(ops) != 3 {
			return nil, true, newError(line, "bgtu requires 3 operands")
		}
		return one("bltu", ops[1], ops[0], ops[2]), true, nil
	}

	return nil, false, nil
}

func branchZero(real string, ops []string, line int) ([]realInstr, bool, error) {
	if len(ops) != 2 {
		return nil, true, newError(line, "%s requires 2 operands", real)
	}
	return []realInstr{{mnemonic: real, operands: []string{ops[0], "x0", ops[1]}, line: line}}, true, nil
}

func fitsSigned12(v int32) bool {
	return v >= -2048 && v <= 2047
}

// splitHiLo splits a 32-bit immediate into the lui-compatible upper
// 20 bits and an addi-compatible signed lower 12 bits, rounding the
// upper half up when the lower half's sign bit would otherwise flip
// it negative (the standard RISC-V hi20/lo12 relocation rule).
func splitHiLo(v int32) (hi int32, lo int32) {
	lo = v << 20 >> 20 // sign-extend low 12 bits
	hi = (v - lo) >> 12
	return hi, lo
}

// SplitAbsHiLo splits a 32-bit value (an absolute address for a lui
// pair, or the offset from the auipc for an auipc pair) into the
// 20-bit upper immediate and the addi/jalr-ready signed 12-bit lower
// immediate, rounding the upper half so that adding the sign-extended
// lower half back reconstructs the value exactly. The linker uses this
// to patch RelocAbsHi20/RelocAbsLo12 relocations.
func SplitAbsHiLo(addr uint32) (hi int32, lo int32) {
	return splitHiLo(int32(addr))
}
