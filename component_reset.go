// component_reset.go - Reset() methods for all modeled components (hard reset support)

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

package main

// WordFIFO.Reset empties the queue. The stale output word also clears:
// a FIFO reset pulls the output stage back to its idle value.
func (f *WordFIFO) Reset() {
	f.head = 0
	f.tail = 0
	f.count = 0
	f.stale = 0
}

// ChainRegFile.Reset restores architectural reset state: all FIFOs empty,
// writable registers zero, error counter and last work ID zero. BUILD_ID is
// baked in at build time and survives reset.
func (rf *ChainRegFile) Reset() {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	rf.cmdRx.Reset()
	rf.cmdTx.Reset()
	rf.workRx.Reset()
	rf.workTx.Reset()
	rf.ctrl = 0
	rf.baud = 0
	rf.workTime = 0
	rf.irqFifoThr = 0
	rf.errCounter = 0
	rf.lastWorkID = 0
}

// ChainIO.Reset returns both handshake sub-machines to their idle states,
// drops any pending response, and resets the backing store.
func (c *ChainIO) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.wrState = writeIdle
	c.rdState = readIdle
	c.WrIn = AxiWriteIn{}
	c.WrOut = AxiWriteOut{}
	c.RdIn = AxiReadIn{}
	c.RdOut = AxiReadOut{}
	c.regs.Reset()
	c.syncReady()
}

// HostBus.Reset runs the reset hooks registered by attached peripherals.
// The region table itself survives reset; hardware windows do not move.
func (bus *HostBus) Reset() {
	for _, fn := range bus.resetHooks {
		fn()
	}
}

// LoopbackTransport.Reset abandons any partially parsed frame and restores
// the modeled per-chip registers to their power-on values.
func (lt *LoopbackTransport) Reset() {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	lt.cmdFrame = lt.cmdFrame[:0]
	lt.workFrame = lt.workFrame[:0]
	lt.seedChipsLocked()
}

// Machine.Reset hard-resets every chain instance and its transport.
func (m *Machine) Reset() {
	for i := range m.Chains {
		m.Chains[i].Reset()
		m.Loops[i].Reset()
	}
}
