package isa_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32edu/isa"
)

var _ = Describe("Encode/Dispatch/Disassemble", func() {
	It("encodes add x3,x1,x2 and dispatches back to the add descriptor", func() {
		d, ok := isa.Lookup("add")
		Expect(ok).To(BeTrue())

		w, err := isa.Encode(d, []isa.Arg{isa.RegArg(3), isa.RegArg(1), isa.RegArg(2)})
		Expect(err).NotTo(HaveOccurred())

		got, err := isa.Dispatch(w)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Mnemonic).To(Equal("add"))
	})

	It("round-trips addi through disassembly", func() {
		d, _ := isa.Lookup("addi")
		w, err := isa.Encode(d, []isa.Arg{isa.RegArg(5), isa.RegArg(6), isa.ImmArg(-7)})
		Expect(err).NotTo(HaveOccurred())

		s, err := isa.Disassemble(w)
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal("addi t0, t1, -7"))
	})

	It("rejects an out-of-range immediate", func() {
		d, _ := isa.Lookup("addi")
		_, err := isa.Encode(d, []isa.Arg{isa.RegArg(5), isa.RegArg(6), isa.ImmArg(4096)})
		Expect(err).To(HaveOccurred())
	})

	It("accepts lui's 20-bit immediate at the edges of its range", func() {
		d, _ := isa.Lookup("lui")
		_, err := isa.Encode(d, []isa.Arg{isa.RegArg(5), isa.ImmArg(0xFFFFF)})
		Expect(err).NotTo(HaveOccurred())
		_, err = isa.Encode(d, []isa.Arg{isa.RegArg(5), isa.ImmArg(-524288)})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects an out-of-range lui/auipc immediate instead of silently truncating it", func() {
		d, _ := isa.Lookup("lui")
		_, err := isa.Encode(d, []isa.Arg{isa.RegArg(5), isa.ImmArg(1 << 21)})
		Expect(err).To(HaveOccurred())

		a, _ := isa.Lookup("auipc")
		_, err = isa.Encode(a, []isa.Arg{isa.RegArg(5), isa.ImmArg(-(1 << 21))})
		Expect(err).To(HaveOccurred())
	})

	It("distinguishes add from sub by funct7", func() {
		addD, _ := isa.Lookup("add")
		subD, _ := isa.Lookup("sub")

		addWord, _ := isa.Encode(addD, []isa.Arg{isa.RegArg(1), isa.RegArg(2), isa.RegArg(3)})
		subWord, _ := isa.Encode(subD, []isa.Arg{isa.RegArg(1), isa.RegArg(2), isa.RegArg(3)})

		gotAdd, _ := isa.Dispatch(addWord)
		gotSub, _ := isa.Dispatch(subWord)
		Expect(gotAdd.Mnemonic).To(Equal("add"))
		Expect(gotSub.Mnemonic).To(Equal("sub"))
	})

	It("encodes and decodes a shift amount on slli without disturbing funct7", func() {
		d, _ := isa.Lookup("slli")
		w, err := isa.Encode(d, []isa.Arg{isa.RegArg(1), isa.RegArg(2), isa.ImmArg(5)})
		Expect(err).NotTo(HaveOccurred())

		got, err := isa.Dispatch(w)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Mnemonic).To(Equal("slli"))
		Expect(w.Rs2()).To(Equal(uint8(5)))
	})

	It("fails to dispatch a word with no matching descriptor", func() {
		_, err := isa.Dispatch(isa.Word(0xFFFFFFFF))
		Expect(err).To(HaveOccurred())
	})
})
