package dispatcher

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rvstub/gdbstub/internal/logflags"
	"github.com/rvstub/gdbstub/internal/rsp"
	"github.com/rvstub/gdbstub/internal/stubconfig"
	"github.com/rvstub/gdbstub/internal/target"
	"github.com/rvstub/gdbstub/internal/traceflags"
)

const helpText = `Available monitor commands:
  help                          show this text
  reset [warm|cold]             reset the target (default: warm)
  exit                          terminate the server
  timeout <seconds>             set the maximum duration of a continue (0 = unlimited)
  timestamp                     print the current wall-clock time
  cyclecount                    print the target's cycle counter
  instrcount                    print the target's instruction counter
  echo <text>                   print text to the server's stdout
  set debug <flag> <on|off>     toggle a named trace flag
  show debug [<flag>]           show one or all trace flags
`

// monitorOutput accumulates the plain-text output of one monitor command
// so it can be hex-encoded once, on the way out: build the plain text,
// then hex-encode once, rather than interleaving formatting and encoding.
type monitorOutput struct {
	buf bytes.Buffer
}

func (o *monitorOutput) Write(p []byte) (int, error) {
	return o.buf.Write(p)
}

// flushOutput sends the accumulated text as one or more 'O'-prefixed packets,
// chunked to fit the reply builder's capacity.
func (d *Dispatcher) flushOutput(out *monitorOutput) {
	text := out.buf.Bytes()
	if len(text) == 0 {
		return
	}
	maxChunk := d.packetSize/2 - 1
	if maxChunk <= 0 {
		maxChunk = len(text)
	}
	for len(text) > 0 {
		n := len(text)
		if n > maxChunk {
			n = maxChunk
		}
		d.reply("O" + rsp.PackStr(string(text[:n])))
		text = text[n:]
	}
}

// splitFields tokenizes a monitor command line on ASCII whitespace,
// honoring double-quoted substrings so "echo" can be given text containing
// literal spaces, the same quote-aware tokenizer delve uses for its
// command-line aliases.
func splitFields(s string) []string {
	return stubconfig.SplitQuotedFields(s, '"')
}

// runMonitorCommand implements the monitor sub-language. Each command
// that is recognized by the stub itself writes its output to out and then
// receives a terminating OK/Enn reply, except exit (no reply at all) and
// reset (which aborts the process on failure).
func (d *Dispatcher) runMonitorCommand(line string) {
	tokens := splitFields(line)
	if logflags.Monitor() {
		d.log.Debugf("monitor command: %q", line)
	}
	if len(tokens) == 0 {
		d.replyErr(1)
		return
	}

	out := &monitorOutput{}

	switch tokens[0] {
	case "help":
		out.Write([]byte(helpText))
		d.target.Command("help", out)
		d.flushOutput(out)
		d.replyOK()

	case "reset":
		kind := target.ResetWarm
		if len(tokens) > 1 && tokens[1] == "cold" {
			kind = target.ResetCold
		}
		result := d.target.Reset(kind)
		if result == target.ResultFailure {
			d.fatalf("target reset failed")
			return
		}
		d.flushOutput(out)
		d.replyOK()

	case "exit":
		d.exitRequested = true
		// no reply.

	case "timeout":
		if len(tokens) != 2 {
			d.replyErr(1)
			return
		}
		n, err := strconv.Atoi(tokens[1])
		if err != nil || n < 0 {
			d.replyErr(2)
			return
		}
		d.runTimeout = time.Duration(n) * time.Second
		d.flushOutput(out)
		d.replyOK()

	case "timestamp":
		fmt.Fprint(out, time.Now().Format("2006-01-02 15:04:05"))
		d.flushOutput(out)
		d.replyOK()

	case "cyclecount":
		fmt.Fprintf(out, "%d", d.target.CycleCount())
		d.flushOutput(out)
		d.replyOK()

	case "instrcount":
		fmt.Fprintf(out, "%d", d.target.InstrCount())
		d.flushOutput(out)
		d.replyOK()

	case "echo":
		text := strings.TrimPrefix(line, "echo")
		text = strings.TrimPrefix(text, " ")
		fmt.Fprintln(d.stdout, text)
		d.replyOK()

	case "set":
		d.runSetCommand(tokens)

	case "show":
		d.runShowCommand(tokens, out)

	default:
		if d.target.Command(line, out) {
			d.flushOutput(out)
			d.replyOK()
		} else {
			d.replyErr(4)
		}
	}
}

func (d *Dispatcher) runSetCommand(tokens []string) {
	if len(tokens) != 4 || tokens[1] != "debug" {
		d.replyErr(1)
		return
	}
	flagName, valueStr := tokens[2], tokens[3]
	value, err := traceflags.ParseBool(valueStr)
	if err != nil {
		d.replyErr(2)
		return
	}
	if ok := d.flags.Set(flagName, value); !ok {
		d.replyErr(1)
		return
	}
	d.replyOK()
}

func (d *Dispatcher) runShowCommand(tokens []string, out *monitorOutput) {
	if len(tokens) < 2 || tokens[1] != "debug" {
		d.replyErr(1)
		return
	}
	if len(tokens) == 2 {
		for _, name := range d.flags.Names() {
			value, _ := d.flags.Get(name)
			fmt.Fprintf(out, "%s=%v\n", name, value)
		}
		d.flushOutput(out)
		d.replyOK()
		return
	}
	value, ok := d.flags.Get(tokens[2])
	if !ok {
		d.replyErr(1)
		return
	}
	fmt.Fprintf(out, "%s=%v\n", tokens[2], value)
	d.flushOutput(out)
	d.replyOK()
}
