package dispatcher

import (
	"strconv"
	"strings"

	"github.com/rvstub/gdbstub/internal/rsp"
)

// readMem implements 'm<addr>,<len>:'. The reply is truncated (with a
// warning, not an error) if len would not fit the reply builder's
// capacity.
func (d *Dispatcher) readMem(payload string) {
	addr, length, ok := parseAddrLen(payload)
	if !ok {
		d.replyErr(1)
		return
	}

	maxLen := uint64(d.packetSize/2 - 4)
	if length > maxLen {
		d.warn("m request for %d bytes truncated to %d to fit packet size", length, maxLen)
		length = maxLen
	}

	buf := make([]byte, length)
	n := d.target.Read(addr, buf)
	if uint64(n) != length {
		d.warn("short read at %x: got %d of %d bytes", addr, n, length)
	}
	d.reply(rsp.PackBytesHex(buf[:n]))
}

// writeMem implements 'M<addr>,<len>:<hex>'.
func (d *Dispatcher) writeMem(payload string) {
	addr, length, rest, ok := parseAddrLenColon(payload)
	if !ok {
		d.replyErr(1)
		return
	}
	if uint64(len(rest)) != length*2 {
		d.warn("M length mismatch: header says %d bytes, payload has %d hex chars", length, len(rest))
		d.replyErr(1)
		return
	}
	data, err := rsp.UnpackBytesHex(rest)
	if err != nil {
		d.replyErr(1)
		return
	}
	n := d.target.Write(addr, data)
	if uint64(n) != length {
		d.warn("short write at %x: wrote %d of %d bytes", addr, n, length)
	}
	d.replyOK()
}

// writeMemBinary implements 'X<addr>,<len>:<escaped binary>'. The
// connection facade has already reversed the wire escaping by the time
// this payload is handed to the dispatcher, so rest is already raw binary.
func (d *Dispatcher) writeMemBinary(payload string) {
	addr, length, rest, ok := parseAddrLenColon(payload)
	if !ok {
		d.replyErr(1)
		return
	}
	if uint64(len(rest)) != length {
		d.warn("X length mismatch: header says %d bytes, decoded payload has %d", length, len(rest))
	}
	n := d.target.Write(addr, []byte(rest))
	if uint64(n) != length {
		d.warn("short write at %x: wrote %d of %d bytes", addr, n, length)
	}
	d.replyOK()
}

func parseAddrLen(payload string) (addr, length uint64, ok bool) {
	comma := strings.IndexByte(payload, ',')
	if comma < 0 {
		return 0, 0, false
	}
	addrPart := payload[:comma]
	lenPart := payload[comma+1:]
	lenPart = strings.TrimSuffix(lenPart, ":")

	a, err := strconv.ParseUint(addrPart, 16, 64)
	if err != nil {
		return 0, 0, false
	}
	l, err := strconv.ParseUint(lenPart, 16, 64)
	if err != nil {
		return 0, 0, false
	}
	return a, l, true
}

func parseAddrLenColon(payload string) (addr, length uint64, rest string, ok bool) {
	colon := strings.IndexByte(payload, ':')
	if colon < 0 {
		return 0, 0, "", false
	}
	a, l, headerOK := parseAddrLen(payload[:colon])
	if !headerOK {
		return 0, 0, "", false
	}
	return a, l, payload[colon+1:], true
}
