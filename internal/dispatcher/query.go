package dispatcher

import (
	"fmt"
	"strings"

	"github.com/rvstub/gdbstub/internal/rsp"
)

// handleQuery implements the 'q' dispatch table.
func (d *Dispatcher) handleQuery(cmd string) {
	switch {
	case cmd == "qC":
		d.reply(fmt.Sprintf("QC%x", dummyTID))
	case cmd == "qfThreadInfo":
		d.reply(fmt.Sprintf("m%x", dummyTID))
	case cmd == "qsThreadInfo":
		d.reply("l")
	case strings.HasPrefix(cmd, "qSupported"):
		d.reply(fmt.Sprintf("PacketSize=%x", d.packetSize))
	case strings.HasPrefix(cmd, "qSymbol:"):
		d.replyOK()
	case strings.HasPrefix(cmd, "qThreadExtraInfo,"):
		d.reply(rsp.PackStr("Runnable\x00"))
	case strings.HasPrefix(cmd, "qRcmd,"):
		d.handleRcmd(cmd[len("qRcmd,"):])
	case strings.HasPrefix(cmd, "qCRC"):
		d.replyErr(1)
	case strings.HasPrefix(cmd, "qL"):
		// Deprecated packet: accept and lie.
		d.reply("qM001")
	default:
		d.replyEmpty()
	}
}

func (d *Dispatcher) handleRcmd(hexArgs string) {
	raw, err := rsp.UnpackBytesHex(hexArgs)
	if err != nil {
		d.replyErr(1)
		return
	}
	d.runMonitorCommand(string(raw))
}
