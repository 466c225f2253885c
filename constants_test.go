package main

import (
	"testing"
)

func TestConstantValues(t *testing.T) {
	t.Logf("CHAIN0_BASE = 0x%X", uint32(CHAIN0_BASE))
	t.Logf("CHAIN1_BASE = 0x%X", uint32(CHAIN1_BASE))
	t.Logf("CHAIN_WINDOW = 0x%X", uint32(CHAIN_WINDOW))
	t.Logf("CTRL_WIDTH_MASK = 0x%X", uint32(CTRL_WIDTH_MASK))
	t.Logf("CTRL_SELF_CLEARING = 0x%X", uint32(CTRL_SELF_CLEARING))
	t.Logf("STAT_RESET_VALUE = 0x%X", uint32(STAT_RESET_VALUE))

	// The instance windows must not overlap.
	if CHAIN0_BASE+CHAIN_WINDOW > CHAIN1_BASE {
		t.Errorf("chain windows overlap: 0x%X + 0x%X > 0x%X", uint32(CHAIN0_BASE), uint32(CHAIN_WINDOW), uint32(CHAIN1_BASE))
	}

	// Every self-clearing bit must be inside the implemented CTRL width.
	if CTRL_SELF_CLEARING&^CTRL_WIDTH_MASK != 0 {
		t.Errorf("self-clearing bits 0x%X outside CTRL width mask 0x%X", uint32(CTRL_SELF_CLEARING), uint32(CTRL_WIDTH_MASK))
	}

	// The IRQ threshold must be able to express the full work-TX depth.
	if IRQ_FIFO_THR_WIDTH_MASK < WORK_TX_FIFO_DEPTH-1 {
		t.Errorf("IRQ_FIFO_THR width 0x%X cannot reach work TX depth %d", uint32(IRQ_FIFO_THR_WIDTH_MASK), WORK_TX_FIFO_DEPTH)
	}

	// Register names must decode for every implemented index.
	for _, idx := range []uint32{REG_CMD_RX_FIFO, REG_CMD_TX_FIFO, REG_WORK_RX_FIFO, REG_WORK_TX_FIFO,
		REG_CTRL, REG_STAT, REG_BAUD, REG_WORK_TIME, REG_IRQ_FIFO_THR,
		REG_ERR_COUNTER, REG_LAST_WORK_ID, REG_BUILD_ID} {
		if RegName(idx) == "RESERVED" {
			t.Errorf("implemented register index 0x%X decodes as RESERVED", idx)
		}
	}
	if RegName(0x9) != "RESERVED" || RegName(0xE) != "RESERVED" {
		t.Error("unimplemented index did not decode as RESERVED")
	}
}
