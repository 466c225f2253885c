package main

import (
	"strings"
	"testing"
	"time"
)

// TestFullIOPath drives a complete host sequence through the fabric: chip
// enumeration over the command FIFOs, then a work dispatch and solution
// collection, on both chain instances.
func TestFullIOPath(t *testing.T) {
	m := NewMachine()

	for i := 0; i < NUM_CHAINS; i++ {
		base := chainBases[i]

		// Enumerate chip 0 on this chain.
		m.Bus.Write32(base+0x04, BuildReadFrame(CMD_OP_READ_REG, 0x00, CHIPREG_CHIP_ID))
		m.Loops[i].Service()

		if stat := m.Bus.Read32(base + 0x14); stat&STAT_CMD_RX_EMPTY != 0 {
			t.Fatalf("chain %d: no enumeration response (STAT=0x%04X)", i, stat)
		}
		m.Bus.Read32(base + 0x00) // response header
		if got := m.Bus.Read32(base + 0x00); got != CHIP_ID_VALUE {
			t.Fatalf("chain %d: chip ID 0x%08X, expected 0x%04X", i, got, uint32(CHIP_ID_VALUE))
		}

		// Enable, dispatch one single-midstate work frame.
		m.Bus.Write32(base+0x10, 0x8000)
		workID := uint32(0x100 + i)
		m.Bus.Write32(base+0x0C, workID)
		for w := 1; w < WORK_HEADER_WORDS+WORK_MIDSTATE_SIZE; w++ {
			m.Bus.Write32(base+0x0C, uint32(w)*0x01010101)
		}
		m.Loops[i].Service()

		if got := m.Bus.Read32(base + 0x34); got != workID {
			t.Fatalf("chain %d: LAST_WORK_ID 0x%04X, expected 0x%04X", i, got, workID)
		}
		wantNonce := SolutionNonce(workID, uint32(WORK_HEADER_WORDS)*0x01010101)
		if got := m.Bus.Read32(base + 0x08); got != wantNonce {
			t.Fatalf("chain %d: nonce 0x%08X, expected 0x%08X", i, got, wantNonce)
		}
		if got := m.Bus.Read32(base + 0x08); got != workID {
			t.Fatalf("chain %d: solution work ID 0x%08X, expected 0x%04X", i, got, workID)
		}
	}

	// The two chains must not have cross-talked.
	if got := m.Bus.Read32(CHAIN0_BASE + 0x34); got != 0x100 {
		t.Fatalf("chain 0 LAST_WORK_ID 0x%04X after chain 1 traffic, expected 0x100", got)
	}
}

// TestFullIOPathBackground runs the same dispatch against the started
// background pumps instead of synchronous Service calls.
func TestFullIOPathBackground(t *testing.T) {
	m := NewMachine()
	m.StartTransports()
	defer m.StopTransports()

	m.Bus.Write32(CHAIN0_BASE+0x10, 0x8000)
	m.Bus.Write32(CHAIN0_BASE+0x0C, 0x00AA)
	for w := 1; w < WORK_HEADER_WORDS+WORK_MIDSTATE_SIZE; w++ {
		m.Bus.Write32(CHAIN0_BASE+0x0C, uint32(w))
	}

	deadline := time.Now().Add(5 * time.Second)
	for m.Bus.Read32(CHAIN0_BASE+0x14)&STAT_WORK_RX_EMPTY != 0 {
		if time.Now().After(deadline) {
			t.Fatal("no solution arrived from the background pump")
		}
		time.Sleep(time.Millisecond)
	}

	if got := m.Bus.Read32(CHAIN0_BASE + 0x34); got != 0x00AA {
		t.Fatalf("LAST_WORK_ID 0x%04X, expected 0x00AA", got)
	}
}

// TestMonitorEndToEnd drives the same path through the debug monitor's
// command surface.
func TestMonitorEndToEnd(t *testing.T) {
	m := NewMachine()
	mon := NewChainMonitor(m)

	if out, quit := mon.Execute("wr 4 0x8000"); quit {
		t.Fatalf("wr quit unexpectedly: %q", out)
	}
	out, _ := mon.Execute("rd 4")
	if !strings.Contains(out, "CTRL_REG") || !strings.Contains(out, "00008000") {
		t.Fatalf("rd output %q, expected CTRL_REG = $00008000", out)
	}

	mon.Execute("wr 3 0xBEEF")
	out, _ = mon.Execute("fifo")
	if out == "" {
		t.Fatal("fifo produced no output")
	}
	if _, _, _, workTx := m.Chains[0].Regs().FIFOLevels(); workTx != 1 {
		t.Fatalf("work TX level %d after monitor write, expected 1", workTx)
	}

	_, quit := mon.Execute("q")
	if !quit {
		t.Fatal("q did not request quit")
	}
}
