// Package logflags configures per-subsystem debug logging for the stub,
// mirroring the gated-logrus-entry pattern the gdbserial wire layer uses.
package logflags

import (
	"io"
	"io/ioutil"
	"log"
	"strings"

	"github.com/sirupsen/logrus"
)

var wire = false
var dispatcher = false
var monitor = false
var syscall = false

func makeLogger(flag bool, fields logrus.Fields) *logrus.Entry {
	logger := logrus.New().WithFields(fields)
	logger.Logger.Level = logrus.DebugLevel
	if !flag {
		logger.Logger.Level = logrus.PanicLevel
	}
	return logger
}

// Wire returns true if the packet codec and connection facade should log
// every framed packet exchanged with the client.
func Wire() bool {
	return wire
}

// WireLogger returns a configured logger for the wire protocol layer.
func WireLogger() *logrus.Entry {
	return makeLogger(wire, logrus.Fields{"layer": "conn"})
}

// Dispatcher returns true if the RSP dispatcher should log its packet
// dispatch decisions.
func Dispatcher() bool {
	return dispatcher
}

// DispatcherLogger returns a configured logger for the dispatcher.
func DispatcherLogger() *logrus.Entry {
	return makeLogger(dispatcher, logrus.Fields{"layer": "dispatcher"})
}

// Monitor returns true if monitor command handling should log.
func Monitor() bool {
	return monitor
}

// MonitorLogger returns a configured logger for the monitor sub-language.
func MonitorLogger() *logrus.Entry {
	return makeLogger(monitor, logrus.Fields{"layer": "monitor"})
}

// Syscall returns true if the syscall (F-packet) interleaving should log.
func Syscall() bool {
	return syscall
}

// SyscallLogger returns a configured logger for syscall interleaving.
func SyscallLogger() *logrus.Entry {
	return makeLogger(syscall, logrus.Fields{"layer": "syscall"})
}

// Setup configures the package-level log gates from a comma separated list
// such as "wire,dispatcher". When logFlag is false all gates stay closed and
// the standard logger is silenced.
func Setup(logFlag bool, logstr string, out io.Writer) error {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if out == nil {
		out = ioutil.Discard
	}
	if !logFlag {
		log.SetOutput(ioutil.Discard)
		return nil
	}
	log.SetOutput(out)
	if logstr == "" {
		logstr = "dispatcher"
	}
	for _, name := range strings.Split(logstr, ",") {
		switch strings.TrimSpace(name) {
		case "wire":
			wire = true
		case "dispatcher":
			dispatcher = true
		case "monitor":
			monitor = true
		case "syscall":
			syscall = true
		case "all":
			wire, dispatcher, monitor, syscall = true, true, true, true
		}
	}
	return nil
}
