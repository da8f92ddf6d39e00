// Command rv32 assembles, links, and runs RV32I assembly programs.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/rv32edu/asm"
	"github.com/sarchlab/rv32edu/core"
	"github.com/sarchlab/rv32edu/link"
	"github.com/sarchlab/rv32edu/sim"
)

var (
	dump    = flag.Bool("dump", false, "Print the linked entry point, segment sizes and symbols instead of running")
	breakAt = flag.String("break", "", "Comma-separated list of breakpoint addresses (hex or decimal)")
	step    = flag.Int("step", 0, "Run at most N instructions, then report state and exit (0 = unbounded)")
	verbose = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rv32 [options] <file.s> [file.s...]\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programs := make([]*asm.Program, flag.NArg())
	for i, path := range flag.Args() {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
			os.Exit(1)
		}
		prog := asm.Assemble(string(src))
		if len(prog.Diagnostics) > 0 {
			for _, d := range prog.Diagnostics {
				fmt.Fprintf(os.Stderr, "%s:%s\n", path, d.String())
			}
			os.Exit(1)
		}
		programs[i] = prog
	}

	linked, err := link.Link(programs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Link error: %v\n", err)
		os.Exit(1)
	}

	if *dump {
		dumpLinked(linked)
		return
	}

	handler := sim.NewDefaultEnvCallHandler(os.Stdout, os.Stderr)
	s, err := sim.New(linked, handler)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing simulator: %v\n", err)
		os.Exit(1)
	}

	for _, addr := range parseBreakpoints(*breakAt) {
		if (addr-core.TextBegin)%4 != 0 {
			fmt.Fprintf(os.Stderr, "Ignoring misaligned breakpoint address 0x%08X\n", addr)
			continue
		}
		s.ToggleBreakpointAt((addr - core.TextBegin) / 4)
	}

	maxSteps := *step
	if maxSteps == 0 {
		maxSteps = -1
	}

	_, runErr := s.Run(maxSteps)

	if *verbose || runErr != nil || s.Status() != sim.StateHaltedDone {
		fmt.Printf("pc=0x%08X status=%s\n", s.State.PC, s.Status())
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", runErr)
		os.Exit(1)
	}

	os.Exit(int(s.State.ExitCode))
}

func dumpLinked(lp *link.LinkedProgram) {
	fmt.Printf("entry: 0x%08X\n", lp.EntryPC)
	fmt.Printf("text: %d bytes at 0x%08X\n", len(lp.Text), core.TextBegin)
	fmt.Printf("data: %d bytes at 0x%08X\n", len(lp.Data), core.StaticBegin)
	for name, addr := range lp.Symbols {
		fmt.Printf("symbol %-24s 0x%08X\n", name, addr)
	}
}

func parseBreakpoints(s string) []uint32 {
	if s == "" {
		return nil
	}
	var addrs []uint32
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseUint(tok, 0, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ignoring invalid breakpoint %q: %v\n", tok, err)
			continue
		}
		addrs = append(addrs, uint32(v))
	}
	return addrs
}
