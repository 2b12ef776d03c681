// Package simtarget provides a minimal flat-memory implementation of
// target.Target. The real RISC-V core is an external collaborator this
// package stands in for, so cmd/rvstub has something concrete to serve
// against, the way a "none" or "dummy" backend lets a server binary start
// without real hardware. It does not decode or execute RISC-V
// instructions: Resume just advances the program counter and reports the
// generic results a real core would produce, which is enough to drive the
// dispatcher end to end.
package simtarget

import (
	"time"

	"github.com/rvstub/gdbstub/internal/target"
)

const memSize = 1 << 20

// Target is a bare single-threaded RISC-V register/memory image with no
// instruction decoding.
type Target struct {
	regs [target.NumRegs]uint64
	mem  []byte

	cycles, instrs uint64
	running        bool
}

// New returns a Target with all registers and memory zeroed.
func New() *Target {
	return &Target{mem: make([]byte, memSize)}
}

var _ target.Target = (*Target)(nil)

func (t *Target) ReadRegister(n int) (uint64, int) {
	if n < 0 || n >= target.NumRegs {
		return 0, -1
	}
	return t.regs[n], target.RegSize
}

func (t *Target) WriteRegister(n int, value uint64) int {
	if n < 0 || n >= target.NumRegs {
		return -1
	}
	t.regs[n] = value
	return target.RegSize
}

func (t *Target) Read(addr uint64, buf []byte) int {
	n := 0
	for n < len(buf) && addr+uint64(n) < uint64(len(t.mem)) {
		buf[n] = t.mem[addr+uint64(n)]
		n++
	}
	return n
}

func (t *Target) Write(addr uint64, buf []byte) int {
	n := 0
	for n < len(buf) && addr+uint64(n) < uint64(len(t.mem)) {
		t.mem[addr+uint64(n)] = buf[n]
		n++
	}
	return n
}

// Resume advances the simulated PC by one instruction width per tick
// until timeout elapses (ResumeContinue) or after exactly one tick
// (ResumeStep). ResumeStop halts in place.
func (t *Target) Resume(kind target.ResumeType, timeout time.Duration) target.ResumeResult {
	switch kind {
	case target.ResumeStop:
		t.running = false
		return target.ResultInterrupted
	case target.ResumeStep:
		t.tick()
		return target.ResultStepped
	case target.ResumeContinue:
		t.running = true
		deadline := time.Now().Add(timeout)
		for t.running && time.Now().Before(deadline) {
			t.tick()
		}
		if !t.running {
			return target.ResultInterrupted
		}
		return target.ResultTimeout
	}
	return target.ResultFailure
}

func (t *Target) tick() {
	pc, _ := t.ReadRegister(target.PCRegNum)
	t.WriteRegister(target.PCRegNum, pc+4)
	t.cycles++
	t.instrs++
}

func (t *Target) Reset(kind target.ResetType) target.ResumeResult {
	for i := range t.regs {
		t.regs[i] = 0
	}
	if kind == target.ResetCold {
		for i := range t.mem {
			t.mem[i] = 0
		}
		t.cycles, t.instrs = 0, 0
	}
	t.running = false
	return target.ResultSuccess
}

func (t *Target) CycleCount() uint64 { return t.cycles }
func (t *Target) InstrCount() uint64 { return t.instrs }

// Command implements the monitor-command escape hatch. This backend
// recognizes none, so every "monitor <unknown>" falls through to the
// dispatcher's own E04 reply.
func (t *Target) Command(cmd string, out target.Output) bool {
	return false
}
