package isa

import (
	"fmt"

	"github.com/sarchlab/rv32edu/core"
)

// advancePC appends the ordinary "pc += 4" diff that every
// instruction other than a taken branch/jump produces.
func advancePC(s *core.ProcessorState, diffs []core.Diff) []core.Diff {
	return append(diffs, s.SetPC(s.PC+4))
}

func execR(alu func(a, b uint32) uint32) ExecFunc {
	return func(w Word, s *core.ProcessorState) ([]core.Diff, error) {
		a := s.Regs.ReadReg(w.Rs1())
		b := s.Regs.ReadReg(w.Rs2())
		d := s.SetReg(w.Rd(), alu(a, b))
		return advancePC(s, []core.Diff{d}), nil
	}
}

func execI(alu func(a uint32, imm int32) uint32) ExecFunc {
	return func(w Word, s *core.ProcessorState) ([]core.Diff, error) {
		a := s.Regs.ReadReg(w.Rs1())
		d := s.SetReg(w.Rd(), alu(a, w.ImmI()))
		return advancePC(s, []core.Diff{d}), nil
	}
}

func execShiftImm(alu func(a uint32, shamt uint32) uint32) ExecFunc {
	return func(w Word, s *core.ProcessorState) ([]core.Diff, error) {
		a := s.Regs.ReadReg(w.Rs1())
		shamt := uint32(w.Rs2()) // shamt occupies the rs2 bit positions
		d := s.SetReg(w.Rd(), alu(a, shamt))
		return advancePC(s, []core.Diff{d}), nil
	}
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func execLoad(size int, signed bool) ExecFunc {
	return func(w Word, s *core.ProcessorState) ([]core.Diff, error) {
		addr := uint32(int32(s.Regs.ReadReg(w.Rs1())) + w.ImmI())
		if err := checkAlignment(addr, size); err != nil {
			return nil, err
		}
		var value uint32
		switch size {
		case 1:
			b := s.Memory.Read8(addr)
			if signed {
				value = uint32(int32(int8(b)))
			} else {
				value = uint32(b)
			}
		case 2:
			h := s.Memory.Read16(addr)
			if signed {
				value = uint32(int32(int16(h)))
			} else {
				value = uint32(h)
			}
		case 4:
			value = s.Memory.Read32(addr)
		}
		d := s.SetReg(w.Rd(), value)
		return advancePC(s, []core.Diff{d}), nil
	}
}

func execStore(size int) ExecFunc {
	return func(w Word, s *core.ProcessorState) ([]core.Diff, error) {
		addr := uint32(int32(s.Regs.ReadReg(w.Rs1())) + w.ImmS())
		if err := checkAlignment(addr, size); err != nil {
			return nil, err
		}
		value := s.Regs.ReadReg(w.Rs2())
		buf := make([]byte, size)
		for i := 0; i < size; i++ {
			buf[i] = byte(value >> (8 * i))
		}
		diffs := s.SetBytes(addr, buf)
		return advancePC(s, diffs), nil
	}
}

func execBranch(cond func(a, b int32) bool) ExecFunc {
	return func(w Word, s *core.ProcessorState) ([]core.Diff, error) {
		a := s.Regs.ReadRegSigned(w.Rs1())
		b := s.Regs.ReadRegSigned(w.Rs2())
		if cond(a, b) {
			d := s.SetPC(uint32(int32(s.PC) + w.ImmB()))
			return []core.Diff{d}, nil
		}
		return advancePC(s, nil), nil
	}
}

func execBranchU(cond func(a, b uint32) bool) ExecFunc {
	return func(w Word, s *core.ProcessorState) ([]core.Diff, error) {
		a := s.Regs.ReadReg(w.Rs1())
		b := s.Regs.ReadReg(w.Rs2())
		if cond(a, b) {
			d := s.SetPC(uint32(int32(s.PC) + w.ImmB()))
			return []core.Diff{d}, nil
		}
		return advancePC(s, nil), nil
	}
}

func execJAL(w Word, s *core.ProcessorState) ([]core.Diff, error) {
	link := s.SetReg(w.Rd(), s.PC+4)
	jump := s.SetPC(uint32(int32(s.PC) + w.ImmJ()))
	return []core.Diff{link, jump}, nil
}

func execJALR(w Word, s *core.ProcessorState) ([]core.Diff, error) {
	target := uint32(int32(s.Regs.ReadReg(w.Rs1()))+w.ImmI()) &^ 1
	link := s.SetReg(w.Rd(), s.PC+4)
	jump := s.SetPC(target)
	return []core.Diff{link, jump}, nil
}

func execLUI(w Word, s *core.ProcessorState) ([]core.Diff, error) {
	d := s.SetReg(w.Rd(), uint32(w.ImmU()))
	return advancePC(s, []core.Diff{d}), nil
}

func execAUIPC(w Word, s *core.ProcessorState) ([]core.Diff, error) {
	d := s.SetReg(w.Rd(), s.PC+uint32(w.ImmU()))
	return advancePC(s, []core.Diff{d}), nil
}

func execFence(w Word, s *core.ProcessorState) ([]core.Diff, error) {
	return advancePC(s, nil), nil
}

func execECall(w Word, s *core.ProcessorState) ([]core.Diff, error) {
	if s.EnvCall == nil {
		return nil, fmt.Errorf("ecall: no environment call handler configured")
	}
	diffs, err := s.EnvCall.Handle(s)
	if err != nil {
		return nil, err
	}
	return advancePC(s, diffs), nil
}

// checkAlignment enforces the base ISA's natural-alignment
// requirement on halfword and word loads/stores; byte accesses are
// always aligned.
func checkAlignment(addr uint32, size int) error {
	if size == 1 {
		return nil
	}
	if addr%uint32(size) != 0 {
		return fmt.Errorf("unaligned access: addr=0x%08x size=%d", addr, size)
	}
	return nil
}
