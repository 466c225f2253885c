package main

import "testing"

// testBus builds a sealed fabric with one chain window mapped at
// CHAIN0_BASE, returning both fabric and chain.
func testBus() (*HostBus, *ChainIO) {
	bus := NewHostBus()
	chain := NewChainIO()
	bus.MapIO(CHAIN0_BASE, CHAIN0_BASE+CHAIN_WINDOW-1, chain.ReadReg, chain.WriteReg)
	bus.OnReset(chain.Reset)
	bus.SealMappings()
	return bus, chain
}

// TestBusWordAccess verifies a full-width write lands in the register and
// reads back through the fabric.
func TestBusWordAccess(t *testing.T) {
	bus, _ := testBus()

	bus.Write32(CHAIN0_BASE+0x10, 0x8000)
	if got := bus.Read32(CHAIN0_BASE + 0x10); got != 0x8000 {
		t.Fatalf("CTRL_REG 0x%08X through fabric, expected 0x8000", got)
	}
}

// TestBusUnmappedAccess verifies unmapped addresses absorb writes and read
// as zero.
func TestBusUnmappedAccess(t *testing.T) {
	bus, _ := testBus()

	bus.Write32(0x20000000, 0xFFFFFFFF)
	if got := bus.Read32(0x20000000); got != 0 {
		t.Fatalf("unmapped read 0x%08X, expected 0", got)
	}
}

// TestBusWrite8Strobes verifies a byte write narrows to a single-lane
// strobed word transaction: only the addressed byte merges.
func TestBusWrite8Strobes(t *testing.T) {
	bus, _ := testBus()

	bus.Write32(CHAIN0_BASE+0x1C, 0x00111111) // WORK_TIME
	bus.Write8(CHAIN0_BASE+0x1D, 0xAB)        // lane 1
	if got := bus.Read32(CHAIN0_BASE + 0x1C); got != 0x0011AB11 {
		t.Fatalf("WORK_TIME 0x%08X after byte write, expected 0x0011AB11", got)
	}

	// Byte write to CTRL's high lane sets the ENABLE bit without touching
	// the low byte.
	bus.Write8(CHAIN0_BASE+0x11, 0x84)
	if got := bus.Read32(CHAIN0_BASE + 0x10); got != 0x8400 {
		t.Fatalf("CTRL_REG 0x%08X after byte write, expected 0x8400", got)
	}
}

// TestBusWrite16Strobes verifies halfword lane placement on the
// little-endian bus.
func TestBusWrite16Strobes(t *testing.T) {
	bus, _ := testBus()

	bus.Write32(CHAIN0_BASE+0x1C, 0x00CCCCCC) // WORK_TIME
	bus.Write16(CHAIN0_BASE+0x1E, 0x42AB)     // upper halfword, width-masked to 24 bits
	if got := bus.Read32(CHAIN0_BASE + 0x1C); got != 0x00ABCCCC {
		t.Fatalf("WORK_TIME 0x%08X after halfword write, expected 0x00ABCCCC", got)
	}

	bus.Write16(CHAIN0_BASE+0x1C, 0x1234) // lower halfword
	if got := bus.Read32(CHAIN0_BASE + 0x1C); got != 0x00AB1234 {
		t.Fatalf("WORK_TIME 0x%08X after halfword write, expected 0x00AB1234", got)
	}
}

// TestBusRead8Read16 verifies sub-word reads extract the addressed lanes
// from a full-width register read.
func TestBusRead8Read16(t *testing.T) {
	bus, _ := testBus()

	bus.Write32(CHAIN0_BASE+0x1C, 0x00A1B2C3)
	if got := bus.Read8(CHAIN0_BASE + 0x1C); got != 0xC3 {
		t.Fatalf("Read8 lane 0 = 0x%02X, expected 0xC3", got)
	}
	if got := bus.Read8(CHAIN0_BASE + 0x1E); got != 0xA1 {
		t.Fatalf("Read8 lane 2 = 0x%02X, expected 0xA1", got)
	}
	if got := bus.Read16(CHAIN0_BASE + 0x1C); got != 0xB2C3 {
		t.Fatalf("Read16 low = 0x%04X, expected 0xB2C3", got)
	}
	if got := bus.Read16(CHAIN0_BASE + 0x1E); got != 0x00A1 {
		t.Fatalf("Read16 high = 0x%04X, expected 0x00A1", got)
	}
}

// TestBusSubWordFIFOPush verifies a sub-word write to a FIFO register
// pushes exactly one strobe-masked word. The hardware pushes whatever the
// lanes carry; unstrobed lanes push as zero.
func TestBusSubWordFIFOPush(t *testing.T) {
	bus, chain := testBus()

	bus.Write16(CHAIN0_BASE+0x0C, 0xBEEF) // WORK_TX low halfword
	if _, _, _, workTx := chain.Regs().FIFOLevels(); workTx != 1 {
		t.Fatalf("work TX level %d after halfword push, expected 1", workTx)
	}
	word, _ := chain.Regs().PopWorkTx()
	if word != 0xBEEF {
		t.Fatalf("pushed word 0x%08X, expected 0x0000BEEF", word)
	}
}

// TestBusResetHooks verifies Reset() propagates to attached peripherals.
func TestBusResetHooks(t *testing.T) {
	bus, chain := testBus()

	bus.Write32(CHAIN0_BASE+0x10, 0x8000)
	bus.Write32(CHAIN0_BASE+0x0C, 0x1111)
	bus.Reset()

	if got := bus.Read32(CHAIN0_BASE + 0x10); got != 0 {
		t.Fatalf("CTRL_REG 0x%08X after reset, expected 0", got)
	}
	if got := chain.Regs().Stat(); got != STAT_RESET_VALUE {
		t.Fatalf("STAT_REG 0x%04X after reset, expected 0x%02X", got, uint32(STAT_RESET_VALUE))
	}
}

// =============================================================================
// Benchmarks for fabric dispatch
// =============================================================================

// BenchmarkBusRead32 measures mapped word-read dispatch.
func BenchmarkBusRead32(b *testing.B) {
	bus, _ := testBus()
	bus.Write32(CHAIN0_BASE+0x18, 0x123)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.Read32(CHAIN0_BASE + 0x18)
	}
}

// BenchmarkBusRead32_Unmapped measures the miss path.
func BenchmarkBusRead32_Unmapped(b *testing.B) {
	bus, _ := testBus()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bus.Read32(0x20000000)
	}
}

// BenchmarkBusWrite8 measures the narrowed single-lane write path.
func BenchmarkBusWrite8(b *testing.B) {
	bus, _ := testBus()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Write8(CHAIN0_BASE+0x1C, uint8(i))
	}
}
