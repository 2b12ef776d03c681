package logflags

import "testing"

func TestSetupGates(t *testing.T) {
	defer func() { wire, dispatcher, monitor, syscall = false, false, false, false }()

	if err := Setup(true, "wire,monitor", nil); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if !Wire() {
		t.Error("expected Wire() to be true after Setup(\"wire,monitor\")")
	}
	if !Monitor() {
		t.Error("expected Monitor() to be true after Setup(\"wire,monitor\")")
	}
	if Dispatcher() {
		t.Error("expected Dispatcher() to remain false")
	}
	if Syscall() {
		t.Error("expected Syscall() to remain false")
	}
}

func TestSetupDisabled(t *testing.T) {
	defer func() { wire, dispatcher, monitor, syscall = false, false, false, false }()

	if err := Setup(false, "wire", nil); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if Wire() {
		t.Error("expected all gates to stay closed when logFlag is false")
	}
}

func TestWireLoggerLevelGated(t *testing.T) {
	defer func() { wire = false }()

	wire = false
	closedLevel := WireLogger().Logger.Level
	wire = true
	openLevel := WireLogger().Logger.Level

	if closedLevel == openLevel {
		t.Errorf("expected gated logger level to change, got %v both times", closedLevel)
	}
}
