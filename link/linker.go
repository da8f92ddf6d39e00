// Package link concatenates assembled Programs into one LinkedProgram,
// assigning final addresses and patching every relocation against the
// union of their symbol tables.
package link

import (
	"fmt"

	"github.com/sarchlab/rv32edu/asm"
	"github.com/sarchlab/rv32edu/core"
	"github.com/sarchlab/rv32edu/isa"
)

// LinkedProgram is a single Program whose relocations are all
// resolved and whose addresses are final.
type LinkedProgram struct {
	Text []byte
	Data []byte

	// Symbols maps every global symbol to its final absolute address.
	Symbols map[string]uint32

	// DebugMap maps a final text address to the source line that
	// produced it.
	DebugMap map[uint32]int

	// EntryPC is the address execution should start at: the "main"
	// symbol if one of the linked programs declares it globally,
	// otherwise the first instruction of the first program.
	EntryPC uint32
}

// Link concatenates programs in order, assigning each one's text and
// data a contiguous base address, then resolves every relocation
// against the union of their symbol tables.
func Link(programs []*asm.Program) (*LinkedProgram, error) {
	if len(programs) == 0 {
		return nil, fmt.Errorf("link: no programs given")
	}

	textBase := make([]uint32, len(programs))
	dataBase := make([]uint32, len(programs))
	textBase[0] = core.TextBegin
	dataBase[0] = core.StaticBegin
	for i := 1; i < len(programs); i++ {
		textBase[i] = textBase[i-1] + uint32(len(programs[i-1].Text))
		dataBase[i] = dataBase[i-1] + uint32(len(programs[i-1].Data))
	}

	globals := map[string]uint32{}
	locals := make([]map[string]uint32, len(programs))
	for i, p := range programs {
		locals[i] = map[string]uint32{}
		for name, sym := range p.Symbols {
			addr := finalAddress(sym, textBase[i], dataBase[i])
			locals[i][name] = addr
			if sym.Global {
				if _, dup := globals[name]; dup {
					return nil, fmt.Errorf("link: duplicate global symbol %q", name)
				}
				globals[name] = addr
			}
		}
	}

	lp := &LinkedProgram{
		Symbols:  globals,
		DebugMap: map[uint32]int{},
	}
	for i, p := range programs {
		lp.Text = append(lp.Text, p.Text...)
		lp.Data = append(lp.Data, p.Data...)
		for _, d := range p.DebugMap {
			lp.DebugMap[textBase[i]+d.TextOffset] = d.Line
		}
	}

	for i, p := range programs {
		for _, r := range p.Relocations {
			target, ok := locals[i][r.Label]
			if !ok {
				target, ok = globals[r.Label]
			}
			if !ok {
				return nil, fmt.Errorf("link: undefined symbol %q (line %d)", r.Label, r.Line)
			}
			if err := patch(lp.Text, textBase[i]+r.TextOffset-core.TextBegin, textBase[i]+r.TextOffset, target, r.Kind); err != nil {
				return nil, fmt.Errorf("link: %w (line %d)", err, r.Line)
			}
		}
	}

	if addr, ok := globals["main"]; ok {
		lp.EntryPC = addr
	} else {
		lp.EntryPC = textBase[0]
	}

	return lp, nil
}

func finalAddress(sym asm.Symbol, textBase, dataBase uint32) uint32 {
	if sym.Segment == asm.SegData {
		return dataBase + sym.Offset
	}
	return textBase + sym.Offset
}

// patch rewrites the 4 bytes at text[textOffset:textOffset+4] to
// carry target's address, encoded as kind dictates.
func patch(text []byte, textOffset uint32, instrAddr uint32, target uint32, kind asm.RelocKind) error {
	if uint64(textOffset)+4 > uint64(len(text)) {
		return fmt.Errorf("relocation offset 0x%x out of range", textOffset)
	}
	w := isa.Word(uint32(text[textOffset]) |
		uint32(text[textOffset+1])<<8 |
		uint32(text[textOffset+2])<<16 |
		uint32(text[textOffset+3])<<24)

	switch kind {
	case asm.RelocPCRelBranch:
		offset := int32(target) - int32(instrAddr)
		if offset < -4096 || offset > 4094 {
			return fmt.Errorf("branch target out of range: offset=%d", offset)
		}
		w = w.WithImmB(offset)
	case asm.RelocPCRelJump:
		offset := int32(target) - int32(instrAddr)
		if offset < -1048576 || offset > 1048574 {
			return fmt.Errorf("jump target out of range: offset=%d", offset)
		}
		w = w.WithImmJ(offset)
	case asm.RelocAbsHi20:
		value := target
		if w.Opcode() == isa.OpcodeAUIPC {
			// auipc adds its own address, so it carries the offset.
			value = target - instrAddr
		}
		hi, _ := asm.SplitAbsHiLo(value)
		w = w.WithImmU(hi)
	case asm.RelocAbsLo12:
		value := target
		if textOffset >= 4 && isa.Word(text[textOffset-4]).Opcode() == isa.OpcodeAUIPC {
			// The low half of an auipc pair is relative to that auipc.
			value = target - (instrAddr - 4)
		}
		_, lo := asm.SplitAbsHiLo(value)
		w = w.WithImmI(lo)
	default:
		return fmt.Errorf("unknown relocation kind %v", kind)
	}

	text[textOffset] = byte(w)
	text[textOffset+1] = byte(w >> 8)
	text[textOffset+2] = byte(w >> 16)
	text[textOffset+3] = byte(w >> 24)
	return nil
}
