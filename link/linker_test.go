package link_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32edu/asm"
	"github.com/sarchlab/rv32edu/core"
	"github.com/sarchlab/rv32edu/isa"
	"github.com/sarchlab/rv32edu/link"
)

func firstWord(text []byte) isa.Word {
	return isa.Word(uint32(text[0]) | uint32(text[1])<<8 | uint32(text[2])<<16 | uint32(text[3])<<24)
}

var _ = Describe("Link", func() {
	It("places a single program's text at TextBegin", func() {
		p := asm.Assemble("add x1, x0, x0\n")
		lp, err := link.Link([]*asm.Program{p})
		Expect(err).NotTo(HaveOccurred())
		Expect(lp.EntryPC).To(Equal(core.TextBegin))
	})

	It("resolves a forward-referenced local branch to a correct pc-relative offset", func() {
		p := asm.Assemble("beq x0, x0, done\nnop\ndone:\n  nop\n")
		lp, err := link.Link([]*asm.Program{p})
		Expect(err).NotTo(HaveOccurred())

		w := firstWord(lp.Text)
		Expect(w.ImmB()).To(Equal(int32(8)))
	})

	It("concatenates two programs' data segments in order", func() {
		p1 := asm.Assemble(".data\n.byte 11\n")
		p2 := asm.Assemble(".data\n.byte 22\n")
		lp, err := link.Link([]*asm.Program{p1, p2})
		Expect(err).NotTo(HaveOccurred())
		Expect(lp.Data[0]).To(Equal(byte(11)))
		Expect(lp.Data[1]).To(Equal(byte(22)))
	})

	It("uses main as the entry point when declared global", func() {
		p := asm.Assemble("nop\n.globl main\nmain:\n  add x1,x0,x0\n")
		lp, err := link.Link([]*asm.Program{p})
		Expect(err).NotTo(HaveOccurred())
		Expect(lp.EntryPC).To(Equal(core.TextBegin + 4))
	})

	It("resolves a cross-program global symbol reference", func() {
		p1 := asm.Assemble("call helper\n")
		p2 := asm.Assemble(".globl helper\nhelper:\n  ret\n")
		lp, err := link.Link([]*asm.Program{p1, p2})
		Expect(err).NotTo(HaveOccurred())
		Expect(lp.Symbols["helper"]).To(Equal(core.TextBegin + uint32(len(p1.Text))))
	})

	It("fails with an error on an unresolved symbol", func() {
		p := asm.Assemble("jal x0, nowhere\n")
		_, err := link.Link([]*asm.Program{p})
		Expect(err).To(HaveOccurred())
	})

	It("fails on a duplicate global symbol across programs", func() {
		p1 := asm.Assemble(".globl dup\ndup:\n  nop\n")
		p2 := asm.Assemble(".globl dup\ndup:\n  nop\n")
		_, err := link.Link([]*asm.Program{p1, p2})
		Expect(err).To(HaveOccurred())
	})
})
