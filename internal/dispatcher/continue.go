package dispatcher

import (
	"time"

	"github.com/rvstub/gdbstub/internal/logflags"
	"github.com/rvstub/gdbstub/internal/target"
)

// runContinue drives the target forward in bounded time slices until a
// stop condition fires. It never returns to the dispatcher without having
// sent exactly one stop-reason reply, except when it hands off to a
// pending syscall: in that case the reply is sent later, when the
// matching F-reply arrives.
func (d *Dispatcher) runContinue() {
	var deadline time.Time
	if d.runTimeout != 0 {
		deadline = time.Now().Add(d.runTimeout)
	}

	if d.conn.HaveBreak() {
		d.conn.ConsumeBreak()
		d.target.Resume(target.ResumeStop, 0)
		d.replyStop(target.SignalInt)
		return
	}

	for {
		r := d.target.Resume(target.ResumeContinue, interruptTimeout)
		if logflags.Dispatcher() {
			d.log.Debugf("continue slice result: %s", r)
		}
		switch r {
		case target.ResultSyscall:
			d.initiateSyscall(contFinishContinue)
			return
		case target.ResultStepped, target.ResultInterrupted:
			d.replyStop(target.SignalTrap)
			return
		case target.ResultTimeout:
			if d.runTimeout != 0 && time.Now().After(deadline) {
				d.target.Resume(target.ResumeStop, 0)
				d.replyStop(target.SignalXCPU)
				return
			}
			if d.conn.HaveBreak() {
				d.conn.ConsumeBreak()
				d.target.Resume(target.ResumeStop, 0)
				d.replyStop(target.SignalInt)
				return
			}
			// keep looping within this call to runContinue
		default:
			d.fatalf("continue: unreachable resume result %s", r)
			return
		}
	}
}

// runSingleStep checks for a pending break, steps once, and either hands
// off to a syscall or replies TRAP.
func (d *Dispatcher) runSingleStep() {
	if d.conn.HaveBreak() {
		d.conn.ConsumeBreak()
		d.target.Resume(target.ResumeStop, 0)
		d.replyStop(target.SignalInt)
		return
	}

	r := d.target.Resume(target.ResumeStep, 0)
	if r == target.ResultSyscall {
		d.initiateSyscall(contFinishStep)
		return
	}

	if d.conn.HaveBreak() {
		d.conn.ConsumeBreak()
		d.target.Resume(target.ResumeStop, 0)
		d.replyStop(target.SignalInt)
		return
	}
	d.replyStop(target.SignalTrap)
}
