// Package fatal centralizes the one unrecoverable-error exit path (target
// reset failure, an unreachable switch arm) so every call site logs and
// exits the same way instead of hand-rolling os.Exit(1).
package fatal

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Exit logs err at Error level (or to stderr if log is nil) and terminates
// the process. It never returns.
func Exit(log *logrus.Entry, err error) {
	if log != nil {
		log.Errorf("fatal: %v", err)
	} else {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
	}
	os.Exit(1)
}
