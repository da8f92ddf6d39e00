package sim

import (
	"fmt"
	"io"

	"github.com/sarchlab/rv32edu/core"
)

// Environment call codes, dispatched on a7 (x17) per the ecall
// contract this simulator implements.
const (
	EnvPrintInt    uint32 = 1
	EnvPrintString uint32 = 4
	EnvSbrk        uint32 = 9
	EnvExit        uint32 = 10
	EnvPrintChar   uint32 = 11
	EnvExit2       uint32 = 17
)

// maxHeapAddr bounds sbrk allocations so a runaway program cannot
// walk the heap pointer into the stack segment.
const maxHeapAddr = core.StackBegin

// DefaultEnvCallHandler implements the ecall contract against a pair
// of host-provided output sinks, the same shape as a Linux syscall
// table but dispatching on the spec's own small code set rather than
// borrowing another architecture's syscall numbers.
type DefaultEnvCallHandler struct {
	stdout io.Writer
	stderr io.Writer
}

// NewDefaultEnvCallHandler creates a handler that writes print_int,
// print_string, and print_char output to stdout.
func NewDefaultEnvCallHandler(stdout, stderr io.Writer) *DefaultEnvCallHandler {
	return &DefaultEnvCallHandler{stdout: stdout, stderr: stderr}
}

// Handle dispatches on a7 and returns the diffs the call produced.
func (h *DefaultEnvCallHandler) Handle(s *core.ProcessorState) ([]core.Diff, error) {
	code := s.Regs.ReadReg(core.RegA7)
	switch code {
	case EnvPrintInt:
		return h.printInt(s)
	case EnvPrintString:
		return h.printString(s)
	case EnvSbrk:
		return h.sbrk(s)
	case EnvExit:
		return []core.Diff{s.SetDone(0)}, nil
	case EnvPrintChar:
		return h.printChar(s)
	case EnvExit2:
		code := int32(s.Regs.ReadReg(core.RegA0))
		return []core.Diff{s.SetDone(code)}, nil
	default:
		return nil, fmt.Errorf("ecall: unknown environment call code %d", code)
	}
}

func (h *DefaultEnvCallHandler) printInt(s *core.ProcessorState) ([]core.Diff, error) {
	fmt.Fprintf(h.stdout, "%d", int32(s.Regs.ReadReg(core.RegA0)))
	return nil, nil
}

func (h *DefaultEnvCallHandler) printChar(s *core.ProcessorState) ([]core.Diff, error) {
	fmt.Fprintf(h.stdout, "%c", byte(s.Regs.ReadReg(core.RegA0)))
	return nil, nil
}

func (h *DefaultEnvCallHandler) printString(s *core.ProcessorState) ([]core.Diff, error) {
	addr := s.Regs.ReadReg(core.RegA0)
	var buf []byte
	for {
		b := s.Memory.Read8(addr)
		if b == 0 {
			break
		}
		buf = append(buf, b)
		addr++
	}
	if _, err := h.stdout.Write(buf); err != nil {
		return nil, fmt.Errorf("ecall print_string: %w", err)
	}
	return nil, nil
}

func (h *DefaultEnvCallHandler) sbrk(s *core.ProcessorState) ([]core.Diff, error) {
	n := s.Regs.ReadReg(core.RegA0)
	old := s.HeapPointer
	next := old + n
	if next < old || next > maxHeapAddr {
		return nil, fmt.Errorf("ecall sbrk: heap exhausted requesting %d bytes", n)
	}
	heapDiff := s.SetHeapPointer(next)
	regDiff := s.SetReg(core.RegA0, old)
	return []core.Diff{heapDiff, regDiff}, nil
}
