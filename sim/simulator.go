// Package sim implements the in-process RV32I simulator: loading a
// linked program into processor state, single-stepping and undoing
// instructions, and managing breakpoints.
package sim

import (
	"fmt"

	"github.com/sarchlab/rv32edu/core"
	"github.com/sarchlab/rv32edu/isa"
	"github.com/sarchlab/rv32edu/link"
)

// State names where a Simulator sits in its execution state machine.
type State int

const (
	StateReady State = iota
	StateRunning
	StateHaltedDone
	StateHaltedBreakpoint
	StateErrored
)

func (st State) String() string {
	switch st {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateHaltedDone:
		return "halted-done"
	case StateHaltedBreakpoint:
		return "halted-breakpoint"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// StepRecord is one undo-stack entry: the diffs a single step
// produced, so Undo can reverse exactly one instruction's effect.
type StepRecord struct {
	Diffs []core.Diff
}

// Simulator owns one ProcessorState and one LinkedProgram and drives
// instruction-at-a-time execution over them.
type Simulator struct {
	State    *core.ProcessorState
	Program  *link.LinkedProgram
	Breakpoints map[uint32]bool

	status  State
	lastErr error
	undo    []StepRecord
}

// New builds a Simulator from a linked program: it copies the text
// and data segments into a fresh processor state's memory, sets the
// stack pointer and heap pointer, and sets the program counter to the
// program's entry address.
func New(p *link.LinkedProgram, envCall core.EnvCallHandler) (*Simulator, error) {
	state := core.NewProcessorState()
	state.EnvCall = envCall

	if err := state.Memory.LoadBytes(core.TextBegin, p.Text); err != nil {
		return nil, fmt.Errorf("sim: loading text segment: %w", err)
	}
	if err := state.Memory.LoadBytes(core.StaticBegin, p.Data); err != nil {
		return nil, fmt.Errorf("sim: loading data segment: %w", err)
	}
	if gp, ok := p.Symbols["__global_pointer$"]; ok {
		state.Regs.WriteReg(core.RegGP, gp)
	} else {
		state.Regs.WriteReg(core.RegGP, core.StaticBegin)
	}
	state.PC = p.EntryPC

	return &Simulator{
		State:       state,
		Program:     p,
		Breakpoints: map[uint32]bool{},
		status:      StateReady,
	}, nil
}

// IsDone reports whether the program has terminated via ecall.
func (s *Simulator) IsDone() bool {
	return s.State.Done
}

// CanUndo reports whether there is a step left to undo.
func (s *Simulator) CanUndo() bool {
	return len(s.undo) > 0
}

// AtBreakpoint reports whether the current pc's instruction index is
// in the breakpoint set.
func (s *Simulator) AtBreakpoint() bool {
	return s.Breakpoints[s.instructionIndex()]
}

func (s *Simulator) instructionIndex() uint32 {
	return (s.State.PC - core.TextBegin) / 4
}

// ToggleBreakpointAt flips the breakpoint at the given instruction
// index and returns its new state.
func (s *Simulator) ToggleBreakpointAt(idx uint32) bool {
	newState := !s.Breakpoints[idx]
	if newState {
		s.Breakpoints[idx] = true
	} else {
		delete(s.Breakpoints, idx)
	}
	return newState
}

// LastError returns the error that halted the simulator, if any.
func (s *Simulator) LastError() error {
	return s.lastErr
}

// Status reports the simulator's current state-machine state.
func (s *Simulator) Status() State {
	return s.status
}

// Step executes exactly one instruction: fetch, dispatch, execute,
// and push the resulting diffs onto the undo stack. It returns an
// empty diff slice (not an error) when the program has already
// terminated.
func (s *Simulator) Step() ([]core.Diff, error) {
	if s.State.Done {
		return nil, nil
	}

	pc := s.State.PC
	if !core.InSegment(pc, 4, core.TextBegin, uint32(len(s.Program.Text))) {
		err := fmt.Errorf("fetch out of range: pc=0x%08x", pc)
		s.status = StateErrored
		s.lastErr = err
		return nil, err
	}

	word := isa.Word(s.State.Memory.Read32(pc))
	d, err := isa.Dispatch(word)
	if err != nil {
		s.status = StateErrored
		s.lastErr = err
		return nil, err
	}

	diffs, err := isa.Execute(d, word, s.State)
	if err != nil {
		s.status = StateErrored
		s.lastErr = err
		return nil, err
	}

	s.undo = append(s.undo, StepRecord{Diffs: diffs})

	switch {
	case s.State.Done:
		s.status = StateHaltedDone
	case s.AtBreakpoint():
		s.status = StateHaltedBreakpoint
	default:
		s.status = StateRunning
	}

	return diffs, nil
}

// Undo pops the most recently executed step and reverses every diff
// it produced, in reverse order, restoring every register, the pc,
// the heap pointer, and every touched memory byte to their pre-step
// values. It is a no-op if the undo stack is empty.
func (s *Simulator) Undo() []core.Diff {
	if len(s.undo) == 0 {
		return nil
	}
	rec := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]

	for i := len(rec.Diffs) - 1; i >= 0; i-- {
		s.State.Undo(rec.Diffs[i])
	}

	s.status = StateReady
	s.lastErr = nil
	return rec.Diffs
}

// Run drives Step in a bounded batch of at most maxSteps
// instructions, stopping early on completion, an error, or a
// breakpoint. A negative maxSteps runs unbounded until one of those
// conditions holds. From a halt at a breakpoint, the first step of a
// new Run call always executes before breakpoints are rechecked, so
// the program can advance past the breakpoint it is sitting on.
func (s *Simulator) Run(maxSteps int) ([]core.Diff, error) {
	var all []core.Diff

	resumingAtBreakpoint := s.status == StateHaltedBreakpoint
	for i := 0; maxSteps < 0 || i < maxSteps; i++ {
		if s.State.Done {
			break
		}
		if i > 0 || !resumingAtBreakpoint {
			if s.AtBreakpoint() {
				s.status = StateHaltedBreakpoint
				break
			}
		}
		diffs, err := s.Step()
		if err != nil {
			return all, err
		}
		all = append(all, diffs...)
	}
	return all, nil
}

// GetReg reads a register's current value.
func (s *Simulator) GetReg(reg uint8) uint32 { return s.State.Regs.ReadReg(reg) }

// SetReg writes a register and records a diff on the undo stack, as
// if it were the effect of a step.
func (s *Simulator) SetReg(reg uint8, value uint32) {
	d := s.State.SetReg(reg, value)
	s.undo = append(s.undo, StepRecord{Diffs: []core.Diff{d}})
}

// SetRegNoUndo writes a register without recording an undo entry, for
// interactive edits made while the simulator is paused.
func (s *Simulator) SetRegNoUndo(reg uint8, value uint32) {
	s.State.Regs.WriteReg(reg, value)
}

// LoadByte reads one byte of memory for inspection.
func (s *Simulator) LoadByte(addr uint32) uint8 { return s.State.Memory.Read8(addr) }

// LoadWord reads a little-endian 32-bit word of memory for inspection.
func (s *Simulator) LoadWord(addr uint32) uint32 { return s.State.Memory.Read32(addr) }
