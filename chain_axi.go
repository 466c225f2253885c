// chain_axi.go - Bus transaction state machine for the chain I/O core

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

/*
chain_axi.go - Bus Transaction State Machine

AXI4-Lite-style register port of one hashing-chain I/O instance. Two
independent handshake sub-machines share the 4-bit register decode:

    Write: writeIdle -> writeResp -> writeIdle
    Read:  readIdle  -> readData  -> readIdle

A write is accepted only when address-valid and data-valid coincide on the
same step; its effects (strobe-masked register merge, or a one-shot FIFO
push of the masked data) land on the accept step and the response rises
immediately. A read latches the address, captures the selected register or
pops the selected FIFO on the accept step, and holds RDATA until the caller
acknowledges. Ready outputs are asserted only in the idle states, so a second
transaction cannot be latched while a response is outstanding - the single
outstanding transaction invariant is structural, not checked.

Every response is OKAY. There is no error channel: decode misses are
absorbed as no-ops on write and all-zero data on read.

Step() advances both sub-machines one cycle and then normalizes the
self-clearing CTRL_REG bits exactly once. The WriteReg/ReadReg helpers drive
a complete handshake under a peripheral mutex so that concurrent Go callers
serialize instead of interleaving; at signal level a VALID raised while a
response is pending is simply not sampled, which matches the hardware's
delayed-ready behavior.
*/

package main

import "sync"

// AXI4-Lite response code. The core only ever answers OKAY.
const AXI_RESP_OKAY = 0x0

type axiWriteState int

const (
	writeIdle axiWriteState = iota
	writeResp
)

type axiReadState int

const (
	readIdle axiReadState = iota
	readData
)

// AxiWriteIn carries the caller-driven write channel signals.
type AxiWriteIn struct {
	AWValid bool
	AWAddr  uint32
	WValid  bool
	WData   uint32
	WStrb   uint8 // one bit per byte lane, lane 0 = bits 7:0
	BReady  bool
}

// AxiWriteOut carries the core-driven write channel signals.
type AxiWriteOut struct {
	AWReady bool
	WReady  bool
	BValid  bool
	BResp   uint8
}

// AxiReadIn carries the caller-driven read channel signals.
type AxiReadIn struct {
	ARValid bool
	ARAddr  uint32
	RReady  bool
}

// AxiReadOut carries the core-driven read channel signals.
type AxiReadOut struct {
	ARReady bool
	RValid  bool
	RData   uint32
	RResp   uint8
}

// ChainIO is one register-interface instance of the hashing-chain I/O core:
// the transaction state machine in front of a ChainRegFile backing store.
type ChainIO struct {
	// mu serializes the WriteReg/ReadReg/Step transact surface. Signal
	// fields must not be poked concurrently with the helpers.
	mu sync.Mutex

	regs *ChainRegFile

	WrIn  AxiWriteIn
	WrOut AxiWriteOut
	RdIn  AxiReadIn
	RdOut AxiReadOut

	wrState axiWriteState
	rdState axiReadState
}

// NewChainIO creates a chain I/O instance in architectural reset state.
func NewChainIO() *ChainIO {
	c := &ChainIO{regs: NewChainRegFile()}
	c.syncReady()
	return c
}

// Regs exposes the backing store for the transport layer and tests.
func (c *ChainIO) Regs() *ChainRegFile {
	return c.regs
}

// syncReady recomputes the ready outputs from the sub-machine states.
func (c *ChainIO) syncReady() {
	c.WrOut.AWReady = c.wrState == writeIdle
	c.WrOut.WReady = c.wrState == writeIdle
	c.RdOut.ARReady = c.rdState == readIdle
}

// Step advances the peripheral by one discrete time step: the write
// sub-machine, then the read sub-machine, then one pass of the self-clearing
// CTRL bits. Callers holding signal fields directly must call Step themselves;
// the transact helpers step internally.
func (c *ChainIO) Step() {
	c.stepWrite()
	c.stepRead()
	c.regs.ApplySelfClearing()
	c.syncReady()
}

// Steps runs n consecutive steps.
func (c *ChainIO) Steps(n int) {
	for i := 0; i < n; i++ {
		c.Step()
	}
}

func (c *ChainIO) stepWrite() {
	switch c.wrState {
	case writeIdle:
		// Address and data must coincide; no outstanding-address buffering.
		if c.WrIn.AWValid && c.WrIn.WValid {
			c.regs.Write(RegIndex(c.WrIn.AWAddr), c.WrIn.WData, c.WrIn.WStrb)
			c.WrOut.BValid = true
			c.WrOut.BResp = AXI_RESP_OKAY
			c.wrState = writeResp
		}
	case writeResp:
		if c.WrIn.BReady {
			c.WrOut.BValid = false
			c.wrState = writeIdle
		}
	}
}

func (c *ChainIO) stepRead() {
	switch c.rdState {
	case readIdle:
		if c.RdIn.ARValid {
			c.RdOut.RData = c.regs.Read(RegIndex(c.RdIn.ARAddr))
			c.RdOut.RValid = true
			c.RdOut.RResp = AXI_RESP_OKAY
			c.rdState = readData
		}
	case readData:
		if c.RdIn.RReady {
			c.RdOut.RValid = false
			c.rdState = readIdle
		}
	}
}

// WriteReg performs one complete strobed write transaction: raise
// AWVALID/WVALID with BREADY held high, step to acceptance, step to response
// handoff, drop the signals. Two steps per write, like the hardware's
// fastest legal handshake.
func (c *ChainIO) WriteReg(addr uint32, data uint32, strb uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.WrIn = AxiWriteIn{
		AWValid: true, AWAddr: addr,
		WValid: true, WData: data, WStrb: strb,
		BReady: true,
	}
	c.Step() // accept: effects applied, BVALID rises
	c.Step() // response acknowledged, machine re-arms
	c.WrIn = AxiWriteIn{}
}

// Write32 is a full-strobe register write.
func (c *ChainIO) Write32(addr uint32, data uint32) {
	c.WriteReg(addr, data, 0xF)
}

// ReadReg performs one complete read transaction and returns the data word.
func (c *ChainIO) ReadReg(addr uint32) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.RdIn = AxiReadIn{ARValid: true, ARAddr: addr, RReady: true}
	c.Step() // accept: RDATA captured, RVALID rises
	data := c.RdOut.RData
	c.Step() // data acknowledged, machine re-arms
	c.RdIn = AxiReadIn{}
	return data
}

// IRQLines returns the three gated level interrupt outputs.
func (c *ChainIO) IRQLines() (cmdRx, workTx, workRx bool) {
	return c.regs.IRQLines()
}
