package isa

import "fmt"

// Arg is one resolved operand: either a register number or a signed
// immediate value (labels are resolved to immediates before Encode is
// called; the assembler handles relocations itself).
type Arg struct {
	Kind ArgKind
	Reg  uint8
	Imm  int32
}

// RegArg builds a register operand.
func RegArg(reg uint8) Arg { return Arg{Kind: ArgRegister, Reg: reg} }

// ImmArg builds an immediate operand.
func ImmArg(imm int32) Arg { return Arg{Kind: ArgImmediate, Imm: imm} }

// immWidth returns the number of significant bits the descriptor's
// immediate slot can hold, used to range-check encode-time literals.
// FormatU is handled separately in Encode: its 20-bit field is not a
// sign-extended immediate, so it has no meaningful width here.
func immWidth(d *Descriptor) uint {
	if d.ShiftAmount {
		return 5
	}
	switch d.Format {
	case FormatI:
		return 12
	case FormatS:
		return 12
	case FormatB:
		return 13
	case FormatJ:
		return 21
	}
	return 32
}

// fitsU20 reports whether v fits in lui/auipc's 20-bit immediate,
// accepting either a signed value in [-2^19, 2^19) or its unsigned
// reinterpretation in [0, 2^20).
func fitsU20(v int32) bool {
	return v >= -(1<<19) && v <= (1<<20)-1
}

func fitsSigned(v int32, width uint) bool {
	if width >= 32 {
		return true
	}
	lo := int32(-1) << (width - 1)
	hi := -lo - 1
	return v >= lo && v <= hi
}

// Encode assembles a Word for descriptor d from already-resolved
// operands, in the order d.Args names them. Register arguments are
// written to rd/rs1/rs2 positionally per format; the one immediate or
// label argument is written to the format's immediate field.
func Encode(d *Descriptor, args []Arg) (Word, error) {
	if len(args) != len(d.Args) {
		return 0, fmt.Errorf("%s: expected %d operands, got %d", d.Mnemonic, len(d.Args), len(args))
	}
	w := Word(0)
	w = w.WithOpcode(d.Opcode)
	if d.Funct3 >= 0 {
		w = w.WithFunct3(uint32(d.Funct3))
	}
	if d.Funct7 >= 0 {
		w = w.WithFunct7(uint32(d.Funct7))
	}

	regIdx := 0
	var imm int32
	immSet := false
	for i, kind := range d.Args {
		a := args[i]
		switch kind {
		case ArgRegister:
			if a.Kind != ArgRegister {
				return 0, fmt.Errorf("%s: operand %d must be a register", d.Mnemonic, i+1)
			}
			w = placeRegister(d, w, regIdx, a.Reg)
			regIdx++
		case ArgImmediate, ArgLabel:
			imm = a.Imm
			immSet = true
		}
	}
	if immSet {
		switch {
		case d.ShiftAmount:
			if imm < 0 || imm > 31 {
				return 0, fmt.Errorf("%s: shift amount %d out of range", d.Mnemonic, imm)
			}
		case d.Format == FormatU:
			if !fitsU20(imm) {
				return 0, fmt.Errorf("%s: immediate %d out of range", d.Mnemonic, imm)
			}
		default:
			if !fitsSigned(imm, immWidth(d)) {
				return 0, fmt.Errorf("%s: immediate %d out of range", d.Mnemonic, imm)
			}
		}
		w = placeImmediate(d, w, imm)
	}
	return w, nil
}

// placeRegister writes the regIdx'th register operand to its
// positional slot (rd, then rs1, then rs2) according to format.
func placeRegister(d *Descriptor, w Word, regIdx int, reg uint8) Word {
	switch d.Format {
	case FormatR:
		switch regIdx {
		case 0:
			return w.WithRd(reg)
		case 1:
			return w.WithRs1(reg)
		case 2:
			return w.WithRs2(reg)
		}
	case FormatI:
		if d.Opcode == OpcodeLoad {
			// lb rd, imm(rs1): rd then rs1
			switch regIdx {
			case 0:
				return w.WithRd(reg)
			case 1:
				return w.WithRs1(reg)
			}
		}
		switch regIdx {
		case 0:
			return w.WithRd(reg)
		case 1:
			return w.WithRs1(reg)
		}
	case FormatS:
		// sb rs2, imm(rs1): rs2 then rs1
		switch regIdx {
		case 0:
			return w.WithRs2(reg)
		case 1:
			return w.WithRs1(reg)
		}
	case FormatB:
		switch regIdx {
		case 0:
			return w.WithRs1(reg)
		case 1:
			return w.WithRs2(reg)
		}
	case FormatU:
		return w.WithRd(reg)
	case FormatJ:
		return w.WithRd(reg)
	}
	return w
}

func placeImmediate(d *Descriptor, w Word, imm int32) Word {
	if d.ShiftAmount {
		return w.WithRs2(uint8(imm))
	}
	switch d.Format {
	case FormatI:
		return w.WithImmI(imm)
	case FormatS:
		return w.WithImmS(imm)
	case FormatB:
		return w.WithImmB(imm)
	case FormatU:
		return w.WithImmU(imm)
	case FormatJ:
		return w.WithImmJ(imm)
	}
	return w
}
