package dispatcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rvstub/gdbstub/internal/logflags"
	"github.com/rvstub/gdbstub/internal/target"
)

// RISC-V calling-convention register numbers for syscall number and
// arguments, matching the original's a0..a3/a7 naming.
const (
	regA0 = 10
	regA1 = 11
	regA2 = 12
	regA3 = 13
	regA7 = 17
)

// linux syscall numbers this stub knows how to translate to an RSP
// F-request.
const (
	sysClose        = 57
	sysLseek        = 62
	sysRead         = 63
	sysWrite        = 64
	sysFstat        = 80
	sysExit         = 93
	sysGettimeofday = 169
	sysOpen         = 1024
	sysUnlink       = 1026
	sysStat         = 1038
)

// initiateSyscall reads the syscall-number and argument registers, maps
// them to a GDB F-request string, sends it, and records cont so the
// matching F-reply can resume the right operation. It is the only place
// that sends an F-request; the dispatcher is idle afterward until that
// reply arrives.
func (d *Dispatcher) initiateSyscall(cont syscallContinuation) {
	a7, _ := d.target.ReadRegister(regA7)
	a0, _ := d.target.ReadRegister(regA0)
	a1, _ := d.target.ReadRegister(regA1)
	a2, _ := d.target.ReadRegister(regA2)

	if logflags.Syscall() {
		d.log.Debugf("syscall a7=%d a0=%x a1=%x a2=%x", a7, a0, a1, a2)
	}

	if a7 == sysExit {
		d.syscallCont = contNone
		d.replyExit(byte(a0))
		return
	}

	req, ok := d.buildSyscallRequest(a7, a0, a1, a2)
	if !ok {
		d.warn("unhandled syscall number %d, reporting TRAP", a7)
		d.replyStop(target.SignalTrap)
		return
	}

	if d.syscallCont != contNone {
		d.warn("overwriting pending syscall continuation %d with %d", d.syscallCont, cont)
	}
	d.syscallCont = cont
	d.reply(req)
}

func (d *Dispatcher) buildSyscallRequest(a7, a0, a1, a2 uint64) (string, bool) {
	switch a7 {
	case sysClose:
		return fmt.Sprintf("Fclose,%x", a0), true
	case sysLseek:
		return fmt.Sprintf("Flseek,%x,%x,%x", a0, a1, a2), true
	case sysRead:
		return fmt.Sprintf("Fread,%x,%x,%x", a0, a1, a2), true
	case sysWrite:
		return fmt.Sprintf("Fwrite,%x,%x,%x", a0, a1, a2), true
	case sysFstat:
		return fmt.Sprintf("Ffstat,%x,%x", a0, a1), true
	case sysGettimeofday:
		return fmt.Sprintf("Fgettimeofday,%x,%x", a0, a1), true
	case sysOpen:
		slen := d.cStringLen(a0)
		return fmt.Sprintf("Fopen,%x/%x,%x,%x", a0, slen, a1, a2), true
	case sysUnlink:
		slen := d.cStringLen(a0)
		return fmt.Sprintf("Funlink,%x/%x", a0, slen), true
	case sysStat:
		slen := d.cStringLen(a0)
		return fmt.Sprintf("Fstat,%x/%x,%x", a0, slen, a1), true
	default:
		return "", false
	}
}

// cStringLen returns the length, including the terminating NUL, of the
// NUL-terminated string at addr in target memory.
func (d *Dispatcher) cStringLen(addr uint64) uint64 {
	var buf [1]byte
	var n uint64
	for {
		read := d.target.Read(addr+n, buf[:])
		if read == 0 {
			// short read: treat whatever we saw as the whole string so we
			// don't spin forever against a misbehaving target.
			return n + 1
		}
		n++
		if buf[0] == 0 {
			return n
		}
		if n > 1<<20 {
			d.warn("cStringLen: runaway string at %x, truncating", addr)
			return n
		}
	}
}

// handleSyscallReply processes an incoming "F<retcode>[,<errno>][;C]"
// packet.
func (d *Dispatcher) handleSyscallReply(cmd string) {
	cont := d.syscallCont
	d.syscallCont = contNone

	retcode, ctrlC, ok := parseFReply(cmd)
	if !ok {
		d.replyErr(1)
		return
	}

	if retcode != -1 || !suppressFstatMinusOne {
		d.target.WriteRegister(regA0, uint64(retcode))
	}

	if ctrlC {
		d.target.Resume(target.ResumeStop, 0)
		d.replyStop(target.SignalInt)
		return
	}

	switch cont {
	case contFinishStep:
		d.replyStop(target.SignalTrap)
	case contFinishContinue:
		d.runContinue()
	case contNone:
		d.warn("F-reply with no pending syscall continuation")
		d.replyStop(target.SignalTrap)
	}
}

// parseFReply parses "F<retcode>[,<errno>][;C]". errno is accepted but
// unused by the dispatcher.
func parseFReply(cmd string) (retcode int64, ctrlC bool, ok bool) {
	if len(cmd) == 0 || cmd[0] != 'F' {
		return 0, false, false
	}
	body := cmd[1:]

	if idx := strings.Index(body, ";"); idx >= 0 {
		if body[idx+1:] == "C" {
			ctrlC = true
		}
		body = body[:idx]
	}

	retcodeStr := body
	if idx := strings.Index(body, ","); idx >= 0 {
		retcodeStr = body[:idx]
	}
	if retcodeStr == "" {
		return 0, false, false
	}

	v, err := strconv.ParseInt(retcodeStr, 16, 64)
	if err != nil {
		return 0, false, false
	}
	return v, ctrlC, true
}
