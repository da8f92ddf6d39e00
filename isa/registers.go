package isa

import "strings"

// registerNames maps the canonical RISC-V ABI register names to their
// numeric register index. fp is kept as an alias of s0, as in every
// RV32I assembler.
var registerNames = map[string]uint8{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// xRegisterName parses x0..x31, accepted alongside the ABI names.
func xRegisterName(s string) (uint8, bool) {
	if len(s) < 2 || s[0] != 'x' {
		return 0, false
	}
	n := 0
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n < 0 || n > 31 {
		return 0, false
	}
	return uint8(n), true
}

// LookupRegister resolves a register token (case-insensitively) to
// its numeric index, accepting both the ABI names (sp, a0, ...) and
// the raw xN form.
func LookupRegister(token string) (uint8, bool) {
	lower := strings.ToLower(token)
	if reg, ok := xRegisterName(lower); ok {
		return reg, true
	}
	reg, ok := registerNames[lower]
	return reg, ok
}

// RegisterName returns the canonical ABI name for a register number.
func RegisterName(reg uint8) string {
	switch reg {
	case 0:
		return "zero"
	case 1:
		return "ra"
	case 2:
		return "sp"
	case 3:
		return "gp"
	case 4:
		return "tp"
	}
	for name, n := range registerNames {
		if n == reg && name != "fp" && name != "zero" && name != "ra" && name != "sp" && name != "gp" && name != "tp" {
			return name
		}
	}
	return "x" + itoa(int(reg))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
