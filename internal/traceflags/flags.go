// Package traceflags implements the TraceFlags configuration object: a
// named set of boolean flags, mutated by "monitor set debug <flag>
// <on/off>" and readable via "monitor show debug". It is adapted from the
// YAML-file persistence pattern of pkg/config (delve's dotfile config
// loader) rather than any gdbserial type, since the flag set itself is
// populated externally rather than hardcoded.
package traceflags

import (
	"fmt"
	"io/ioutil"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

// Flags is a small concurrency-safe named-boolean set.
type Flags struct {
	mu     sync.Mutex
	values map[string]bool
}

// New returns a Flags seeded with initial. A nil initial is an empty set.
func New(initial map[string]bool) *Flags {
	values := make(map[string]bool, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Flags{values: values}
}

// Names returns every known flag name, sorted, matching the original's
// iteration over an ordered map for "show debug" with no argument.
func (f *Flags) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.values))
	for name := range f.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the value of name and whether it is a known flag.
func (f *Flags) Get(name string) (value bool, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok = f.values[name]
	return value, ok
}

// Set assigns value to an existing flag named name, returning false if no
// such flag is registered. Unlike Register, Set never creates new flags:
// the set of valid names is fixed at construction/registration time so
// "monitor set debug <unknown>" can be rejected with E01.
func (f *Flags) Set(name string, value bool) (ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[name]; !ok {
		return false
	}
	f.values[name] = value
	return true
}

// Register adds name to the known flag set with an initial value, a no-op
// if the flag is already registered.
func (f *Flags) Register(name string, initial bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[name]; !ok {
		f.values[name] = initial
	}
}

// ParseBool parses the value tokens "monitor set debug" accepts:
// 0/1/on/off/true/false.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "on", "true":
		return true, nil
	case "0", "off", "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", s)
	}
}

// LoadFile loads a YAML map of flag name to initial value from path, for
// the "-trace-config" startup flag.
func LoadFile(path string) (map[string]bool, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values map[string]bool
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// SaveFile persists the current flag values to path as YAML.
func (f *Flags) SaveFile(path string) error {
	f.mu.Lock()
	out, err := yaml.Marshal(f.values)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, out, 0644)
}
