package dispatcher

import "github.com/rvstub/gdbstub/internal/logflags"

// dispatch routes one request payload to its handler by first byte.
// Handlers are responsible for sending their own replies; a request that
// produces zero replies (e.g. a still-pending continue) is valid and
// expected.
func (d *Dispatcher) dispatch(payload []byte) {
	if len(payload) == 0 {
		d.replyEmpty()
		return
	}

	if logflags.Dispatcher() {
		d.log.Debugf("dispatch %q", string(payload))
	}

	cmd := string(payload)
	switch payload[0] {
	case '!':
		d.replyOK()
	case '?':
		d.replyStop(d.lastSignal)
	case 'A', 'b', 'B', 'd', 'r', 't':
		d.warn("deprecated/unsupported packet %q", cmd)
		d.replyEmpty()
	case 'F':
		d.handleSyscallReply(cmd)
	case 'c', 'C':
		d.runContinue()
	case 'D':
		d.replyOK()
		d.conn.Close()
	case 'g':
		d.readAllRegs()
	case 'G':
		d.writeAllRegs(cmd[1:])
	case 'H':
		d.replyOK()
	case 'i', 'I':
		d.replyStop(d.lastSignal)
	case 'k':
		d.handleKill()
	case 'm':
		d.readMem(cmd[1:])
	case 'M':
		d.writeMem(cmd[1:])
	case 'p':
		d.readOneReg(cmd[1:])
	case 'P':
		d.writeOneReg(cmd[1:])
	case 'q':
		d.handleQuery(cmd)
	case 'Q':
		d.replyEmpty()
	case 'R':
		// restart: no-op, no reply.
	case 's', 'S':
		d.runSingleStep()
	case 'T':
		d.replyOK()
	case 'v':
		d.replyEmpty()
	case 'X':
		d.writeMemBinary(cmd[1:])
	case 'z':
		d.removeMatchpoint(cmd[1:])
	case 'Z':
		d.insertMatchpoint(cmd[1:])
	default:
		d.warn("ignoring unknown packet %q", cmd)
		d.replyEmpty()
	}
}

func (d *Dispatcher) handleKill() {
	switch d.killMode {
	case ExitOnKill:
		d.exitRequested = true
	case ResetOnKill:
		// no-op: the next "monitor reset" performs the actual reset.
	}
}
