// Package breakpoint implements the dispatcher's bookkeeping table mapping
// an installed software breakpoint or watchpoint back to the original
// instruction bytes it overwrote, grounded on the key/value bookkeeping
// delve's Process keeps per-breakpoint (set/clearBreakpoint in
// gdbserver_conn.go) but reduced to a pure in-memory map; this package
// never itself touches target memory.
package breakpoint

// Type distinguishes the five matchpoint kinds RSP's 'Z'/'z' packets name.
// The same address with two different types is tracked as two distinct
// records.
type Type int

const (
	TypeMemBP Type = iota
	TypeHWBP
	TypeWatchWrite
	TypeWatchRead
	TypeWatchAccess
)

// key identifies one record: the same address under two different Types is
// two independent entries.
type key struct {
	kind Type
	addr uint64
}

// Record is one installed breakpoint: the bytes that were at Addr before a
// trap instruction was written over them (only meaningful for TypeMemBP;
// watchpoints carry no original bytes).
type Record struct {
	Kind     Type
	Addr     uint64
	Original []byte
}

// Table is the collection of installed breakpoint/watchpoint records. It
// lives for the lifetime of the server and is touched only by the
// dispatcher goroutine.
type Table struct {
	records map[key]Record
}

// NewTable returns an empty breakpoint table.
func NewTable() *Table {
	return &Table{records: make(map[key]Record)}
}

// Add records original as the bytes overwritten at addr for a breakpoint of
// the given kind, replacing any prior entry for the same (kind, addr).
func (t *Table) Add(kind Type, addr uint64, original []byte) {
	k := key{kind, addr}
	cp := make([]byte, len(original))
	copy(cp, original)
	t.records[k] = Record{Kind: kind, Addr: addr, Original: cp}
}

// Remove deletes the record for (kind, addr) and returns its original
// bytes (an empty slice for records added without original bytes, as
// watchpoint kinds are) along with whether an entry existed.
func (t *Table) Remove(kind Type, addr uint64) (original []byte, ok bool) {
	k := key{kind, addr}
	rec, ok := t.records[k]
	if !ok {
		return nil, false
	}
	delete(t.records, k)
	return rec.Original, true
}

// Get returns the record for (kind, addr), if any, without removing it.
func (t *Table) Get(kind Type, addr uint64) (Record, bool) {
	rec, ok := t.records[key{kind, addr}]
	return rec, ok
}

// Len returns the number of installed records, mostly useful for tests.
func (t *Table) Len() int {
	return len(t.records)
}
