package isa_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32edu/isa"
)

var _ = Describe("Word", func() {
	Describe("R-format fields", func() {
		It("round-trips opcode, rd, funct3, rs1, rs2, funct7", func() {
			w := isa.Word(0).
				WithOpcode(0b0110011).
				WithRd(5).
				WithFunct3(0b000).
				WithRs1(6).
				WithRs2(7).
				WithFunct7(0b0100000)

			Expect(w.Opcode()).To(Equal(uint32(0b0110011)))
			Expect(w.Rd()).To(Equal(uint8(5)))
			Expect(w.Funct3()).To(Equal(uint32(0)))
			Expect(w.Rs1()).To(Equal(uint8(6)))
			Expect(w.Rs2()).To(Equal(uint8(7)))
			Expect(w.Funct7()).To(Equal(uint32(0b0100000)))
		})
	})

	Describe("ImmI", func() {
		It("sign-extends a negative 12-bit immediate", func() {
			w := isa.Word(0).WithImmI(-1)
			Expect(w.ImmI()).To(Equal(int32(-1)))
		})

		It("round-trips a positive immediate", func() {
			w := isa.Word(0).WithImmI(2047)
			Expect(w.ImmI()).To(Equal(int32(2047)))
		})
	})

	Describe("ImmS", func() {
		It("round-trips across the split field", func() {
			w := isa.Word(0).WithImmS(-100)
			Expect(w.ImmS()).To(Equal(int32(-100)))
		})
	})

	Describe("ImmB", func() {
		It("round-trips an even offset with bit 0 implicitly zero", func() {
			w := isa.Word(0).WithImmB(-4096)
			Expect(w.ImmB()).To(Equal(int32(-4096)))
			w = isa.Word(0).WithImmB(4094)
			Expect(w.ImmB()).To(Equal(int32(4094)))
		})
	})

	Describe("ImmU", func() {
		It("places a 20-bit upper immediate into bits 12-31", func() {
			w := isa.Word(0).WithImmU(0x12345)
			Expect(w.ImmU()).To(Equal(int32(0x12345000)))
		})
	})

	Describe("ImmJ", func() {
		It("round-trips a large even offset", func() {
			w := isa.Word(0).WithImmJ(-1048576)
			Expect(w.ImmJ()).To(Equal(int32(-1048576)))
			w = isa.Word(0).WithImmJ(1048574)
			Expect(w.ImmJ()).To(Equal(int32(1048574)))
		})
	})
})
