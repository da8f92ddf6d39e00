package asm

import "fmt"

// applyDataDirective emits bytes for a data-producing directive
// (.byte/.half/.word/.ascii/.asciiz/.string/.space) by appending to
// data and returning the grown slice together with any diagnostics.
// align is handled separately since it pads rather than appends values.
func applyDataDirective(directive string, args []string, line int, data []byte) ([]byte, []Error) {
	var errs []Error
	switch directive {
	case "byte":
		for _, a := range args {
			v, ok := parseImmediate(a)
			if !ok || v < -128 || v > 255 {
				errs = append(errs, newError(line, ".byte: %q is not a valid byte value", a))
				v = 0
			}
			data = append(data, byte(v))
		}
	case "half":
		for _, a := range args {
			v, ok := parseImmediate(a)
			if !ok {
				errs = append(errs, newError(line, ".half: %q is not a valid value", a))
				v = 0
			}
			data = append(data, byte(v), byte(v>>8))
		}
	case "word":
		for _, a := range args {
			v, ok := parseImmediate(a)
			if !ok {
				errs = append(errs, newError(line, ".word: %q is not a valid value", a))
				v = 0
			}
			data = append(data, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
		}
	case "ascii":
		for _, a := range args {
			s, err := unquote(a)
			if err != nil {
				errs = append(errs, newError(line, ".ascii: %s", err))
				continue
			}
			data = append(data, []byte(s)...)
		}
	case "asciiz", "string":
		for _, a := range args {
			s, err := unquote(a)
			if err != nil {
				errs = append(errs, newError(line, ".%s: %s", directive, err))
				continue
			}
			data = append(data, []byte(s)...)
			data = append(data, 0)
		}
	case "space":
		if len(args) != 1 {
			errs = append(errs, newError(line, ".space requires exactly one operand"))
			return data, errs
		}
		n, ok := parseImmediate(args[0])
		if !ok || n < 0 {
			errs = append(errs, newError(line, ".space: %q is not a valid byte count", args[0]))
			return data, errs
		}
		data = append(data, make([]byte, n)...)
	default:
		errs = append(errs, newError(line, "unknown directive .%s", directive))
	}
	return data, errs
}

// alignPadding returns the number of zero bytes needed to pad offset
// up to a 2^n boundary.
func alignPadding(offset uint32, n int32) (int, error) {
	if n < 0 || n > 31 {
		return 0, fmt.Errorf(".align: %d is not a valid power of two exponent", n)
	}
	boundary := uint32(1) << uint(n)
	rem := offset % boundary
	if rem == 0 {
		return 0, nil
	}
	return int(boundary - rem), nil
}
