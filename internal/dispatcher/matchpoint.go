package dispatcher

import (
	"strconv"
	"strings"

	"github.com/rvstub/gdbstub/internal/breakpoint"
)

// Matchpoint support: a reference implementation sends an empty reply and
// returns before running its install/remove logic, meaning software
// breakpoints are always reported as unsupported on the wire even though
// the bookkeeping exists. This rewrite preserves that exact wire behavior:
// 'z'/'Z' always reply empty, but the install/remove bookkeeping stays
// alive as InstallBreakpoint/RemoveBreakpoint below, rather than being
// deleted, so the capability is exercised and unit-tested even though no
// GDB session can currently reach it. See DESIGN.md for the full writeup
// of this decision.

func (d *Dispatcher) insertMatchpoint(payload string) {
	d.replyEmpty()
}

func (d *Dispatcher) removeMatchpoint(payload string) {
	d.replyEmpty()
}

// parseMatchpoint decodes the common "<type>,<addr>,<kind-specific-length>"
// payload shape of 'Z'/'z' packets into a breakpoint.Type and address.
func parseMatchpoint(payload string) (kind breakpoint.Type, addr uint64, ok bool) {
	parts := strings.SplitN(payload, ",", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	t, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil {
		return 0, 0, false
	}
	a, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return 0, 0, false
	}
	kinds := []breakpoint.Type{
		breakpoint.TypeMemBP,
		breakpoint.TypeHWBP,
		breakpoint.TypeWatchWrite,
		breakpoint.TypeWatchRead,
		breakpoint.TypeWatchAccess,
	}
	if t < 0 || int(t) >= len(kinds) {
		return 0, 0, false
	}
	return kinds[t], a, true
}

// InstallBreakpoint overwrites the instruction at addr with the target's
// trap sequence, recording the original bytes in the breakpoint table so a
// matching RemoveBreakpoint can restore them. Only TypeMemBP carries
// original bytes; the watchpoint kinds are recorded with a nil payload
// since real hardware watchpoints are not implemented.
//
// This install/remove logic is not reachable from
// insertMatchpoint/removeMatchpoint above, which always reply empty (see
// DESIGN.md), but is kept live and tested as an internal capability.
func (d *Dispatcher) InstallBreakpoint(kind breakpoint.Type, addr uint64, trap []byte) error {
	if kind == breakpoint.TypeMemBP {
		original := make([]byte, len(trap))
		if n := d.target.Read(addr, original); n != len(original) {
			return errShortRead(addr, len(original), n)
		}
		d.bpTable.Add(kind, addr, original)
		if n := d.target.Write(addr, trap); n != len(trap) {
			return errShortWrite(addr, len(trap), n)
		}
		return nil
	}
	d.bpTable.Add(kind, addr, nil)
	return nil
}

// RemoveBreakpoint restores the original bytes recorded by
// InstallBreakpoint and forgets the record. It reports whether a record
// existed for (kind, addr).
func (d *Dispatcher) RemoveBreakpoint(kind breakpoint.Type, addr uint64) (bool, error) {
	original, ok := d.bpTable.Remove(kind, addr)
	if !ok {
		return false, nil
	}
	if kind == breakpoint.TypeMemBP {
		if n := d.target.Write(addr, original); n != len(original) {
			return true, errShortWrite(addr, len(original), n)
		}
	}
	return true, nil
}
