package dispatcher

import "testing"

func TestParseAddrLen(t *testing.T) {
	addr, length, ok := parseAddrLen("1000,20")
	if !ok || addr != 0x1000 || length != 0x20 {
		t.Errorf("parseAddrLen = (%x, %x, %v), want (1000, 20, true)", addr, length, ok)
	}
}

func TestParseAddrLenTrimsTrailingColon(t *testing.T) {
	addr, length, ok := parseAddrLen("1000,20:")
	if !ok || addr != 0x1000 || length != 0x20 {
		t.Errorf("parseAddrLen = (%x, %x, %v), want (1000, 20, true)", addr, length, ok)
	}
}

func TestParseAddrLenMalformed(t *testing.T) {
	if _, _, ok := parseAddrLen("nocomma"); ok {
		t.Errorf("expected ok=false for missing comma")
	}
	if _, _, ok := parseAddrLen("zz,20"); ok {
		t.Errorf("expected ok=false for non-hex address")
	}
}

func TestParseAddrLenColon(t *testing.T) {
	addr, length, rest, ok := parseAddrLenColon("1000,4:deadbeef")
	if !ok || addr != 0x1000 || length != 4 || rest != "deadbeef" {
		t.Errorf("parseAddrLenColon = (%x, %x, %q, %v)", addr, length, rest, ok)
	}
}

func TestReadMemTruncatesToPacketSize(t *testing.T) {
	conn := newFakeConn()
	tgt := newFakeTarget()
	tgt.Write(0x1000, make([]byte, 0x100))
	d := newTestDispatcher(conn, tgt)
	d.packetSize = 40

	d.dispatch([]byte("m1000,100"))
	got := conn.lastReply()
	maxLen := d.packetSize/2 - 4
	if len(got) != maxLen*2 {
		t.Errorf("truncated read reply length = %d, want %d", len(got), maxLen*2)
	}
}

func TestWriteMemBadHeader(t *testing.T) {
	conn := newFakeConn()
	d := newTestDispatcher(conn, newFakeTarget())

	d.dispatch([]byte("Mbogus"))
	if got := conn.lastReply(); got != "E01" {
		t.Errorf("bad M header reply = %q, want E01", got)
	}
}
