package asm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32edu/asm"
	"github.com/sarchlab/rv32edu/isa"
)

var _ = Describe("Assemble", func() {
	It("encodes a plain instruction with no diagnostics", func() {
		p := asm.Assemble("add x3, x1, x2\n")
		Expect(p.Diagnostics).To(BeEmpty())
		Expect(p.Text).To(HaveLen(4))

		w := isa.Word(uint32(p.Text[0]) | uint32(p.Text[1])<<8 | uint32(p.Text[2])<<16 | uint32(p.Text[3])<<24)
		d, err := isa.Dispatch(w)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Mnemonic).To(Equal("add"))
	})

	It("collects an error for an unknown mnemonic instead of stopping", func() {
		p := asm.Assemble("frobnicate x1, x2\nadd x3, x1, x2\n")
		Expect(p.Diagnostics).NotTo(BeEmpty())
		Expect(p.Text).To(HaveLen(8))
	})

	It("records label offsets and patches a local branch immediately", func() {
		src := "start:\n  beq x0, x0, start\n"
		p := asm.Assemble(src)
		Expect(p.Diagnostics).To(BeEmpty())
		sym, ok := p.Symbols["start"]
		Expect(ok).To(BeTrue())
		Expect(sym.Offset).To(Equal(uint32(0)))
		Expect(p.Relocations).To(BeEmpty())

		w := isa.Word(uint32(p.Text[0]) | uint32(p.Text[1])<<8 | uint32(p.Text[2])<<16 | uint32(p.Text[3])<<24)
		Expect(w.ImmB()).To(Equal(int32(0)))
	})

	It("patches a forward local branch to the correct pc-relative offset", func() {
		src := "beq x0, x0, done\nnop\ndone:\n  nop\n"
		p := asm.Assemble(src)
		Expect(p.Diagnostics).To(BeEmpty())
		Expect(p.Relocations).To(BeEmpty())

		w := isa.Word(uint32(p.Text[0]) | uint32(p.Text[1])<<8 | uint32(p.Text[2])<<16 | uint32(p.Text[3])<<24)
		Expect(w.ImmB()).To(Equal(int32(8)))
	})

	It("reports an undefined local branch target as a diagnostic, not a relocation", func() {
		p := asm.Assemble("beq x0, x0, nowhere\n")
		Expect(p.Diagnostics).NotTo(BeEmpty())
		Expect(p.Relocations).To(BeEmpty())
	})

	It("still defers an unresolved jal target to the linker as a relocation", func() {
		p := asm.Assemble("jal x0, elsewhere\n")
		Expect(p.Diagnostics).To(BeEmpty())
		Expect(p.Relocations).To(HaveLen(1))
		Expect(p.Relocations[0].Kind).To(Equal(asm.RelocPCRelJump))
	})

	It("marks a globl symbol", func() {
		p := asm.Assemble(".globl main\nmain:\n  nop\n")
		Expect(p.Diagnostics).To(BeEmpty())
		Expect(p.Symbols["main"].Global).To(BeTrue())
	})

	It("emits .byte data in order", func() {
		p := asm.Assemble(".data\n.byte 1 2 3 4\n")
		Expect(p.Diagnostics).To(BeEmpty())
		Expect(p.Data).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("emits .asciiz strings NUL-terminated back to back", func() {
		p := asm.Assemble(".data\n.asciiz \"a\"\n.asciiz \"b\"\n")
		Expect(p.Diagnostics).To(BeEmpty())
		Expect(p.Data).To(Equal([]byte{'a', 0, 'b', 0}))
	})

	It("emits a negative .word as its two's complement bytes", func() {
		p := asm.Assemble(".data\n.word -21231234\n")
		Expect(p.Diagnostics).To(BeEmpty())
		Expect(len(p.Data)).To(Equal(4))
		v := int32(uint32(p.Data[0]) | uint32(p.Data[1])<<8 | uint32(p.Data[2])<<16 | uint32(p.Data[3])<<24)
		Expect(v).To(Equal(int32(-21231234)))
	})

	It("expands li into a single addi for a small immediate", func() {
		p := asm.Assemble("li x5, 10\n")
		Expect(p.Diagnostics).To(BeEmpty())
		Expect(p.Text).To(HaveLen(4))
	})

	It("expands li into lui+addi for a large immediate", func() {
		p := asm.Assemble("li x5, 0x12345678\n")
		Expect(p.Diagnostics).To(BeEmpty())
		Expect(p.Text).To(HaveLen(8))
	})

	It("expands la into auipc+addi with two relocations against the same label", func() {
		p := asm.Assemble(".data\nbuf:\n.word 0\n.text\nla x5, buf\n")
		Expect(p.Diagnostics).To(BeEmpty())
		Expect(p.Relocations).To(HaveLen(2))
		Expect(p.Relocations[0].Kind).To(Equal(asm.RelocAbsHi20))
		Expect(p.Relocations[1].Kind).To(Equal(asm.RelocAbsLo12))
		Expect(p.Relocations[0].Label).To(Equal("buf"))
	})

	It("reports a malformed string escape as a diagnostic", func() {
		p := asm.Assemble(".data\n.asciiz \"bad\\qescape\"\n")
		Expect(p.Diagnostics).NotTo(BeEmpty())
	})

	It("reports a data directive outside the data segment as a diagnostic", func() {
		p := asm.Assemble(".byte 1\n")
		Expect(p.Diagnostics).NotTo(BeEmpty())
	})

	It("reports a duplicate label as a diagnostic", func() {
		p := asm.Assemble("foo:\n  nop\nfoo:\n  nop\n")
		Expect(p.Diagnostics).NotTo(BeEmpty())
	})

	It("reports an out-of-range immediate as a diagnostic, not a panic", func() {
		p := asm.Assemble("addi x1, x0, 99999\n")
		Expect(p.Diagnostics).NotTo(BeEmpty())
	})

	It("expands ret to jalr x0, ra, 0", func() {
		p := asm.Assemble("ret\n")
		Expect(p.Diagnostics).To(BeEmpty())
		w := isa.Word(uint32(p.Text[0]) | uint32(p.Text[1])<<8 | uint32(p.Text[2])<<16 | uint32(p.Text[3])<<24)
		d, err := isa.Dispatch(w)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Mnemonic).To(Equal("jalr"))
		Expect(w.Rs1()).To(Equal(uint8(1)))
		Expect(w.Rd()).To(Equal(uint8(0)))
	})
})
