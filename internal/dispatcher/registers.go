package dispatcher

import (
	"strconv"
	"strings"

	"github.com/rvstub/gdbstub/internal/rsp"
	"github.com/rvstub/gdbstub/internal/target"
)

// readAllRegs implements 'g': concatenate every register's little-endian
// hex representation at the target's uniform native register size.
func (d *Dispatcher) readAllRegs() {
	var sb strings.Builder
	for n := 0; n < target.NumRegs; n++ {
		value, _ := d.target.ReadRegister(n)
		sb.WriteString(rsp.Val2Hex(value, target.RegSize))
	}
	d.reply(sb.String())
}

// writeAllRegs implements 'G': the inverse of readAllRegs, advancing by the
// target's uniform native register size.
func (d *Dispatcher) writeAllRegs(hexData string) {
	chunk := target.RegSize * 2
	if len(hexData) < target.NumRegs*chunk {
		d.warn("G packet too short: got %d hex chars, want %d", len(hexData), target.NumRegs*chunk)
	}
	for n := 0; n < target.NumRegs; n++ {
		start := n * chunk
		if start+chunk > len(hexData) {
			break
		}
		value, err := rsp.Hex2Val(hexData[start : start+chunk])
		if err != nil {
			d.replyErr(1)
			return
		}
		if written := d.target.WriteRegister(n, value); written != target.RegSize {
			d.warn("WriteRegister(%d) wrote %d bytes, want %d", n, written, target.RegSize)
		}
	}
	d.replyOK()
}

// readOneReg implements 'p<hex>': read a single register by number.
func (d *Dispatcher) readOneReg(hexNum string) {
	n, err := strconv.ParseInt(hexNum, 16, 64)
	if err != nil {
		d.replyErr(1)
		return
	}
	value, byteSize := d.target.ReadRegister(int(n))
	if byteSize < 0 {
		d.replyErr(1)
		return
	}
	d.reply(rsp.Val2Hex(value, byteSize))
}

// writeOneReg implements 'P<hex>=<hex>': write a single register. The
// value's width is 2*RegSize hex characters, little-endian.
func (d *Dispatcher) writeOneReg(payload string) {
	eq := strings.IndexByte(payload, '=')
	if eq < 0 {
		d.replyErr(1)
		return
	}
	n, err := strconv.ParseInt(payload[:eq], 16, 64)
	if err != nil {
		d.replyErr(1)
		return
	}
	value, err := rsp.Hex2Val(payload[eq+1:])
	if err != nil {
		d.replyErr(1)
		return
	}
	if written := d.target.WriteRegister(int(n), value); written != target.RegSize {
		d.warn("WriteRegister(%d) wrote %d bytes, want %d", n, written, target.RegSize)
	}
	d.replyOK()
}
