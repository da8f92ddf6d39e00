package asm

import (
	"strconv"
	"strings"
)

// parseImmediate parses a decimal, 0x-hex, 0b-binary, or 'c'
// character-literal immediate. It does not range-check the field it
// will be deposited into; isa.Encode does that.
func parseImmediate(token string) (int32, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false
	}

	if len(token) == 3 && token[0] == '\'' && token[2] == '\'' {
		return int32(token[1]), true
	}

	neg := false
	t := token
	if strings.HasPrefix(t, "-") {
		neg = true
		t = t[1:]
	} else if strings.HasPrefix(t, "+") {
		t = t[1:]
	}

	var v uint64
	var err error
	switch {
	case strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X"):
		v, err = strconv.ParseUint(t[2:], 16, 64)
	case strings.HasPrefix(t, "0b") || strings.HasPrefix(t, "0B"):
		v, err = strconv.ParseUint(t[2:], 2, 64)
	default:
		v, err = strconv.ParseUint(t, 10, 64)
	}
	if err != nil {
		return 0, false
	}
	result := int32(v)
	if neg {
		result = -result
	}
	return result, true
}

// isLabelToken reports whether token looks like a symbolic reference
// rather than a numeric literal: it parses as neither an immediate nor
// a %hi/%lo wrapper. Register names are not excluded.
func isLabelToken(token string) bool {
	if _, ok := parseImmediate(token); ok {
		return false
	}
	if _, _, ok := unwrapHiLo(token); ok {
		return false
	}
	return true
}

// unwrapHiLo recognizes the "%hi(label)" / "%lo(label)" operand forms
// the la/call pseudoinstructions expand into, distinguishing the
// upper-20 relocation from the lower-12 one.
func unwrapHiLo(token string) (label string, hi bool, ok bool) {
	switch {
	case strings.HasPrefix(token, "%hi(") && strings.HasSuffix(token, ")"):
		return token[4 : len(token)-1], true, true
	case strings.HasPrefix(token, "%lo(") && strings.HasSuffix(token, ")"):
		return token[4 : len(token)-1], false, true
	}
	return "", false, false
}
