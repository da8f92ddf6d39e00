package asm

import "github.com/sarchlab/rv32edu/isa"

// placedInstr is one expanded real instruction together with the
// text offset pass 1 assigned it.
type placedInstr struct {
	ri     realInstr
	offset uint32
}

// Assemble lowers one translation unit of assembly source into a
// Program. It never returns an error value of its own: every problem
// it finds is appended to the returned Program's Diagnostics so the
// host can report all of them at once instead of stopping at the
// first.
func Assemble(source string) *Program {
	prog := newProgram()
	statements := lex(source)

	globals := map[string]bool{}
	var placed []placedInstr

	segment := SegText
	var textOffset, dataOffset uint32

	for _, st := range statements {
		if st.label != "" {
			if _, exists := prog.Symbols[st.label]; exists {
				prog.Diagnostics = append(prog.Diagnostics, newError(st.line, "duplicate label %q", st.label))
			} else {
				off := textOffset
				if segment == SegData {
					off = dataOffset
				}
				prog.Symbols[st.label] = Symbol{Segment: segment, Offset: off}
			}
		}

		switch {
		case st.isDirective:
			switch st.directive {
			case "text":
				segment = SegText
			case "data", "bss", "rodata":
				segment = SegData
			case "globl", "global":
				for _, name := range st.args {
					globals[name] = true
				}
			case "align":
				if len(st.args) != 1 {
					prog.Diagnostics = append(prog.Diagnostics, newError(st.line, ".align requires exactly one operand"))
					continue
				}
				n, ok := parseImmediate(st.args[0])
				if !ok {
					prog.Diagnostics = append(prog.Diagnostics, newError(st.line, ".align: %q is not a valid exponent", st.args[0]))
					continue
				}
				if segment == SegText {
					pad, err := alignPadding(textOffset, n)
					if err != nil {
						prog.Diagnostics = append(prog.Diagnostics, newError(st.line, "%s", err))
						continue
					}
					prog.Text = append(prog.Text, make([]byte, pad)...)
					textOffset += uint32(pad)
				} else {
					pad, err := alignPadding(dataOffset, n)
					if err != nil {
						prog.Diagnostics = append(prog.Diagnostics, newError(st.line, "%s", err))
						continue
					}
					prog.Data = append(prog.Data, make([]byte, pad)...)
					dataOffset += uint32(pad)
				}
			default:
				if segment != SegData {
					prog.Diagnostics = append(prog.Diagnostics, newError(st.line, ".%s: directive outside valid segment (not in .data)", st.directive))
					continue
				}
				var errs []Error
				prog.Data, errs = applyDataDirective(st.directive, st.args, st.line, prog.Data)
				prog.Diagnostics = append(prog.Diagnostics, errs...)
				dataOffset = uint32(len(prog.Data))
			}
			continue
		case st.mnemonic == "":
			continue
		}

		expanded, handled, err := expandPseudo(st)
		if err != nil {
			prog.Diagnostics = append(prog.Diagnostics, err.(Error))
			continue
		}
		if !handled {
			expanded = []realInstr{{mnemonic: st.mnemonic, operands: st.operands, line: st.line}}
		}
		for _, ri := range expanded {
			placed = append(placed, placedInstr{ri: ri, offset: textOffset})
			prog.DebugMap = append(prog.DebugMap, DebugEntry{TextOffset: textOffset, Line: ri.line})
			textOffset += 4
		}
	}

	for name := range globals {
		sym, ok := prog.Symbols[name]
		if !ok {
			prog.Diagnostics = append(prog.Diagnostics, newError(0, "undefined global symbol %q", name))
			continue
		}
		sym.Global = true
		prog.Symbols[name] = sym
	}

	prog.Text = make([]byte, textOffset)
	for _, p := range placed {
		encodeInto(prog, p)
	}

	return prog
}

func encodeInto(prog *Program, p placedInstr) {
	ri := p.ri
	d, ok := isa.Lookup(ri.mnemonic)
	if !ok {
		prog.Diagnostics = append(prog.Diagnostics, newError(ri.line, "unknown mnemonic %q", ri.mnemonic))
		return
	}
	if len(ri.operands) != len(d.Args) {
		prog.Diagnostics = append(prog.Diagnostics, newError(ri.line,
			"%s: expected %d operands, got %d", ri.mnemonic, len(d.Args), len(ri.operands)))
		return
	}

	args := make([]isa.Arg, len(d.Args))
	var reloc *Relocation
	ok = true
	for i, kind := range d.Args {
		tok := ri.operands[i]
		switch kind {
		case isa.ArgRegister:
			reg, found := isa.LookupRegister(tok)
			if !found {
				prog.Diagnostics = append(prog.Diagnostics, newError(ri.line, "unknown register %q", tok))
				ok = false
				continue
			}
			args[i] = isa.RegArg(reg)

		case isa.ArgImmediate:
			if label, hi, wrapped := unwrapHiLo(tok); wrapped {
				kind := RelocAbsLo12
				if hi {
					kind = RelocAbsHi20
				}
				reloc = &Relocation{TextOffset: p.offset, Label: label, Kind: kind, Line: ri.line}
				args[i] = isa.ImmArg(0)
				continue
			}
			v, found := parseImmediate(tok)
			if !found {
				prog.Diagnostics = append(prog.Diagnostics, newError(ri.line, "%q is not a valid immediate", tok))
				ok = false
				continue
			}
			args[i] = isa.ImmArg(v)

		case isa.ArgLabel:
			if sym, found := prog.Symbols[tok]; found {
				args[i] = isa.ImmArg(int32(int64(sym.Offset) - int64(p.offset)))
				continue
			}
			if d.Format == isa.FormatB {
				prog.Diagnostics = append(prog.Diagnostics, newError(ri.line, "undefined label %q", tok))
				ok = false
				continue
			}
			reloc = &Relocation{TextOffset: p.offset, Label: tok, Kind: RelocPCRelJump, Line: ri.line}
			args[i] = isa.ImmArg(0)
		}
	}
	if !ok {
		return
	}

	w, err := isa.Encode(d, args)
	if err != nil {
		prog.Diagnostics = append(prog.Diagnostics, newError(ri.line, "%s", err))
		return
	}
	prog.Text[p.offset] = byte(w)
	prog.Text[p.offset+1] = byte(w >> 8)
	prog.Text[p.offset+2] = byte(w >> 16)
	prog.Text[p.offset+3] = byte(w >> 24)

	if reloc != nil {
		prog.Relocations = append(prog.Relocations, *reloc)
	}
}
