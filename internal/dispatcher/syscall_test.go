package dispatcher

import "testing"

func TestBuildSyscallRequest(t *testing.T) {
	conn := newFakeConn()
	tgt := newFakeTarget()
	tgt.setString(0x3000, "/tmp/foo")
	d := newTestDispatcher(conn, tgt)

	cases := []struct {
		name           string
		a7, a0, a1, a2 uint64
		want           string
	}{
		{"close", sysClose, 3, 0, 0, "Fclose,3"},
		{"lseek", sysLseek, 3, 0x10, 0, "Flseek,3,10,0"},
		{"read", sysRead, 3, 0x2000, 0x40, "Fread,3,2000,40"},
		{"write", sysWrite, 1, 0x2000, 0x5, "Fwrite,1,2000,5"},
		{"fstat", sysFstat, 1, 0x4000, 0, "Ffstat,1,4000"},
		{"gettimeofday", sysGettimeofday, 0x5000, 0, 0, "Fgettimeofday,5000,0"},
		{"open", sysOpen, 0x3000, 0, 0x1a4, "Fopen,3000/9,0,1a4"},
		{"unlink", sysUnlink, 0x3000, 0, 0, "Funlink,3000/9"},
		{"stat", sysStat, 0x3000, 0x4000, 0, "Fstat,3000/9,4000"},
	}
	for _, c := range cases {
		got, ok := d.buildSyscallRequest(c.a7, c.a0, c.a1, c.a2)
		if !ok {
			t.Errorf("%s: buildSyscallRequest returned ok=false", c.name)
			continue
		}
		if got != c.want {
			t.Errorf("%s: buildSyscallRequest = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestBuildSyscallRequestUnknownNumber(t *testing.T) {
	d := newTestDispatcher(newFakeConn(), newFakeTarget())
	if _, ok := d.buildSyscallRequest(9999, 0, 0, 0); ok {
		t.Errorf("expected ok=false for unknown syscall number")
	}
}

func TestCStringLen(t *testing.T) {
	conn := newFakeConn()
	tgt := newFakeTarget()
	tgt.setString(0x1000, "hello")
	d := newTestDispatcher(conn, tgt)

	if got := d.cStringLen(0x1000); got != 6 {
		t.Errorf("cStringLen = %d, want 6 (len+NUL)", got)
	}
}

func TestCStringLenShortRead(t *testing.T) {
	conn := newFakeConn()
	tgt := newFakeTarget()
	d := newTestDispatcher(conn, tgt)

	if got := d.cStringLen(0xdead); got != 1 {
		t.Errorf("cStringLen on unmapped memory = %d, want 1", got)
	}
}

func TestInitiateSyscallExit(t *testing.T) {
	conn := newFakeConn()
	tgt := newFakeTarget()
	tgt.WriteRegister(regA7, sysExit)
	tgt.WriteRegister(regA0, 7)
	d := newTestDispatcher(conn, tgt)

	d.initiateSyscall(contFinishContinue)

	if got := conn.lastReply(); got != "W07" {
		t.Errorf("exit reply = %q, want W07", got)
	}
	if d.syscallCont != contNone {
		t.Errorf("syscallCont = %v after exit, want contNone", d.syscallCont)
	}
}

func TestHandleSyscallReplyFstatMinusOneSuppressed(t *testing.T) {
	conn := newFakeConn()
	tgt := newFakeTarget()
	tgt.WriteRegister(regA0, 42)
	d := newTestDispatcher(conn, tgt)
	d.syscallCont = contFinishStep

	d.handleSyscallReply("F-1,9")

	a0, _ := tgt.ReadRegister(regA0)
	if a0 != 42 {
		t.Errorf("a0 = %d after -1 F-reply, want unchanged 42", a0)
	}
	if got := conn.lastReply(); got != "S05" {
		t.Errorf("reply = %q, want S05", got)
	}
}

func TestHandleSyscallReplyCtrlC(t *testing.T) {
	conn := newFakeConn()
	tgt := newFakeTarget()
	d := newTestDispatcher(conn, tgt)
	d.syscallCont = contFinishStep

	d.handleSyscallReply("F0;C")

	if got := conn.lastReply(); got != "S02" {
		t.Errorf("reply = %q, want S02 (INT) on ;C", got)
	}
}

func TestHandleSyscallReplyStrayRepliesTrap(t *testing.T) {
	conn := newFakeConn()
	tgt := newFakeTarget()
	d := newTestDispatcher(conn, tgt)
	d.syscallCont = contNone

	d.handleSyscallReply("F0")

	if got := conn.lastReply(); got != "S05" {
		t.Errorf("stray F-reply = %q, want S05 (TRAP)", got)
	}
}
