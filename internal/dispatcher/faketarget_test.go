package dispatcher

import (
	"time"

	"github.com/rvstub/gdbstub/internal/target"
)

// fakeTarget is a minimal in-memory target.Target used to drive the
// dispatcher's state machine in tests without a real RISC-V simulator.
type fakeTarget struct {
	regs [target.NumRegs]uint64
	mem  map[uint64]byte

	// resumeScript is consumed one entry per Resume(ResumeContinue, ...)
	// call; ResumeStep always returns resumeStepResult.
	resumeScript     []target.ResumeResult
	resumeStepResult target.ResumeResult
	resumeCalls      int

	resetResult target.ResumeResult

	cycles, instrs uint64

	commandHandled bool
	commandOut     string
	lastCommand    string
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		mem:              make(map[uint64]byte),
		resumeStepResult: target.ResultStepped,
		resetResult:      target.ResultSuccess,
	}
}

func (f *fakeTarget) ReadRegister(n int) (uint64, int) {
	if n < 0 || n >= target.NumRegs {
		return 0, -1
	}
	return f.regs[n], target.RegSize
}

func (f *fakeTarget) WriteRegister(n int, value uint64) int {
	if n < 0 || n >= target.NumRegs {
		return -1
	}
	f.regs[n] = value
	return target.RegSize
}

func (f *fakeTarget) Read(addr uint64, buf []byte) int {
	for i := range buf {
		b, ok := f.mem[addr+uint64(i)]
		if !ok {
			return i
		}
		buf[i] = b
	}
	return len(buf)
}

func (f *fakeTarget) Write(addr uint64, buf []byte) int {
	for i, b := range buf {
		f.mem[addr+uint64(i)] = b
	}
	return len(buf)
}

func (f *fakeTarget) Resume(kind target.ResumeType, timeout time.Duration) target.ResumeResult {
	f.resumeCalls++
	switch kind {
	case target.ResumeStep:
		return f.resumeStepResult
	case target.ResumeStop:
		return target.ResultNone
	case target.ResumeContinue:
		if len(f.resumeScript) == 0 {
			return target.ResultTimeout
		}
		r := f.resumeScript[0]
		f.resumeScript = f.resumeScript[1:]
		return r
	}
	return target.ResultNone
}

func (f *fakeTarget) Reset(kind target.ResetType) target.ResumeResult {
	return f.resetResult
}

func (f *fakeTarget) CycleCount() uint64 { return f.cycles }
func (f *fakeTarget) InstrCount() uint64 { return f.instrs }

func (f *fakeTarget) Command(cmd string, out target.Output) bool {
	f.lastCommand = cmd
	if f.commandHandled {
		out.Write([]byte(f.commandOut))
	}
	return f.commandHandled
}

func (f *fakeTarget) setString(addr uint64, s string) {
	f.Write(addr, append([]byte(s), 0))
}
