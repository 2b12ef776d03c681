package dispatcher

import "fmt"

func errShortRead(addr uint64, want, got int) error {
	return fmt.Errorf("short read at %#x: wanted %d bytes, got %d", addr, want, got)
}

func errShortWrite(addr uint64, want, got int) error {
	return fmt.Errorf("short write at %#x: wanted %d bytes, got %d", addr, want, got)
}
