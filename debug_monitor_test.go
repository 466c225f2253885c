package main

import (
	"fmt"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Number parsing
// ---------------------------------------------------------------------------

func TestParseNum(t *testing.T) {
	tests := []struct {
		input string
		want  uint32
		ok    bool
	}{
		{"$1000", 0x1000, true},
		{"0x1000", 0x1000, true},
		{"1000", 1000, true},
		{"$DEAD", 0xDEAD, true},
		{"0XBEEF", 0xBEEF, true},
		{"0", 0, true},
		{"$0", 0, true},
		{"zz", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, err := parseNum(tt.input)
		if (err == nil) != tt.ok || (err == nil && got != tt.want) {
			t.Errorf("parseNum(%q) = (%X, %v), want (%X, ok=%v)", tt.input, got, err, tt.want, tt.ok)
		}
	}
}

// ---------------------------------------------------------------------------
// Command execution
// ---------------------------------------------------------------------------

func TestMonitorRegisterCommands(t *testing.T) {
	mon := NewChainMonitor(NewMachine())

	out, quit := mon.Execute("wr 6 $123")
	if quit || !strings.Contains(out, "BAUD_REG") {
		t.Fatalf("wr output %q", out)
	}
	out, _ = mon.Execute("rd 6")
	if !strings.Contains(out, "$00000123") {
		t.Fatalf("rd output %q, expected $00000123", out)
	}

	// Strobed write: only lane 1 merges.
	mon.Execute("wr 7 $FFFFFFFF")
	mon.Execute("wr 7 $0000AB00 2")
	out, _ = mon.Execute("rd 7")
	if !strings.Contains(out, "$00FFABFF") {
		t.Fatalf("strobed rd output %q, expected $00FFABFF", out)
	}
}

func TestMonitorChainFocus(t *testing.T) {
	mon := NewChainMonitor(NewMachine())

	out, _ := mon.Execute("chain 1")
	if !strings.Contains(out, "chain 1") || !strings.Contains(out, "41210000") {
		t.Fatalf("chain output %q", out)
	}
	mon.Execute("wr 6 $456")
	mon.Execute("chain 0")
	out, _ = mon.Execute("rd 6")
	if !strings.Contains(out, "$00000000") {
		t.Fatalf("chain 0 BAUD after chain 1 write: %q", out)
	}

	out, _ = mon.Execute("chain 7")
	if !strings.Contains(out, "0 or 1") {
		t.Fatalf("bad chain index output %q", out)
	}
}

func TestMonitorStatAndFifo(t *testing.T) {
	mon := NewChainMonitor(NewMachine())

	out, _ := mon.Execute("stat")
	for _, want := range []string{"CMD_RX_EMPTY", "WORK_TX_EMPTY", "$0055"} {
		if !strings.Contains(out, want) {
			t.Fatalf("stat output %q missing %s", out, want)
		}
	}

	mon.Execute("wr 3 $1111")
	out, _ = mon.Execute("fifo")
	if !strings.Contains(out, "work_tx 1/2048") {
		t.Fatalf("fifo output %q, expected work_tx 1/2048", out)
	}
}

func TestMonitorTransportCommands(t *testing.T) {
	mon := NewChainMonitor(NewMachine())

	out, _ := mon.Execute("svc")
	if out != "transport idle" {
		t.Fatalf("svc on empty FIFOs: %q", out)
	}

	frame := BuildReadFrame(CMD_OP_READ_REG, 0x00, CHIPREG_CHIP_ID)
	mon.Execute(fmt.Sprintf("wr 1 0x%08X", frame))
	out, _ = mon.Execute("svc")
	if out != "transport serviced" {
		t.Fatalf("svc with a frame queued: %q", out)
	}

	out, _ = mon.Execute("chip 0 0")
	if !strings.Contains(out, "$00001387") {
		t.Fatalf("chip output %q, expected chip ID $00001387", out)
	}
	out, _ = mon.Execute("chip 3 0")
	if !strings.Contains(out, "no such chip") {
		t.Fatalf("absent chip output %q", out)
	}
}

func TestMonitorUnknownAndQuit(t *testing.T) {
	mon := NewChainMonitor(NewMachine())

	out, quit := mon.Execute("bogus")
	if quit || !strings.Contains(out, "unknown command") {
		t.Fatalf("unknown command output %q, quit=%v", out, quit)
	}
	if out, quit := mon.Execute(""); out != "" || quit {
		t.Fatal("empty line should be a no-op")
	}
	if _, quit := mon.Execute("quit"); !quit {
		t.Fatal("quit not honored")
	}
	out, _ = mon.Execute("?")
	if !strings.Contains(out, "commands:") {
		t.Fatalf("help output %q", out)
	}
}
