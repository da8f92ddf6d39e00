package isa

import "fmt"

// Disassemble renders w in canonical "mnemonic operand, operand, ..."
// form using the descriptor that dispatch selects for it. Register
// operands print their ABI name; the lone immediate/label operand
// prints as a decimal signed value, except for load, store and jalr
// operands, which print the teacher-familiar "imm(base)" form.
func Disassemble(w Word) (string, error) {
	d, err := Dispatch(w)
	if err != nil {
		return "", err
	}
	return disassembleWith(d, w), nil
}

func disassembleWith(d *Descriptor, w Word) string {
	switch d.Format {
	case FormatR:
		return fmt.Sprintf("%s %s, %s, %s", d.Mnemonic, RegisterName(w.Rd()), RegisterName(w.Rs1()), RegisterName(w.Rs2()))
	case FormatI:
		if d.Opcode == OpcodeLoad {
			return fmt.Sprintf("%s %s, %d(%s)", d.Mnemonic, RegisterName(w.Rd()), w.ImmI(), RegisterName(w.Rs1()))
		}
		if d.Opcode == OpcodeJALR {
			return fmt.Sprintf("%s %s, %d(%s)", d.Mnemonic, RegisterName(w.Rd()), w.ImmI(), RegisterName(w.Rs1()))
		}
		if d.ShiftAmount {
			return fmt.Sprintf("%s %s, %s, %d", d.Mnemonic, RegisterName(w.Rd()), RegisterName(w.Rs1()), w.Rs2())
		}
		if d.Args == nil {
			return d.Mnemonic
		}
		return fmt.Sprintf("%s %s, %s, %d", d.Mnemonic, RegisterName(w.Rd()), RegisterName(w.Rs1()), w.ImmI())
	case FormatS:
		return fmt.Sprintf("%s %s, %d(%s)", d.Mnemonic, RegisterName(w.Rs2()), w.ImmS(), RegisterName(w.Rs1()))
	case FormatB:
		return fmt.Sprintf("%s %s, %s, %d", d.Mnemonic, RegisterName(w.Rs1()), RegisterName(w.Rs2()), w.ImmB())
	case FormatU:
		return fmt.Sprintf("%s %s, %d", d.Mnemonic, RegisterName(w.Rd()), w.ImmU()>>12)
	case FormatJ:
		return fmt.Sprintf("%s %s, %d", d.Mnemonic, RegisterName(w.Rd()), w.ImmJ())
	}
	return d.Mnemonic
}
