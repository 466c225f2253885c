// chain_regfile.go - Register file and FIFO backing store for the chain I/O core

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

/*
chain_regfile.go - Register File & FIFO Backing Store

Authoritative architectural state of one hashing-chain I/O instance: the four
word FIFOs (command RX/TX, work RX/TX) and the control/status/configuration
registers. This layer has no protocol awareness; the bus transaction state
machine in chain_axi.go decodes addresses and calls Write/Read here, and the
transport layer in transport_loopback.go drives the far side of the FIFOs.

One mutex guards everything. Register-interface traffic and transport-side
push/pop therefore interleave under a single consistent order, which is the
contract the hardware's single clock domain provides for free.

STAT_REG is never stored: empty/full and interrupt-pending bits are computed
from FIFO occupancy at read time, so the flags cannot drift from the queues
they describe.
*/

package main

import "sync"

// ChainRegFile holds the architectural state of one chain I/O instance.
type ChainRegFile struct {
	mu sync.Mutex

	cmdRx  *WordFIFO
	cmdTx  *WordFIFO
	workRx *WordFIFO
	workTx *WordFIFO

	ctrl       uint32
	baud       uint32
	workTime   uint32
	irqFifoThr uint32

	errCounter uint32
	lastWorkID uint32
	buildID    uint32
}

// NewChainRegFile creates a backing store with architectural reset state.
func NewChainRegFile() *ChainRegFile {
	return &ChainRegFile{
		cmdRx:   NewWordFIFO(CMD_RX_FIFO_DEPTH),
		cmdTx:   NewWordFIFO(CMD_TX_FIFO_DEPTH),
		workRx:  NewWordFIFO(WORK_RX_FIFO_DEPTH),
		workTx:  NewWordFIFO(WORK_TX_FIFO_DEPTH),
		buildID: BuildID(),
	}
}

// strobeMask expands a 4-bit byte-lane strobe into a 32-bit merge mask.
// Bit n of strb selects byte lane n (little-endian: lane 0 = bits 7:0).
func strobeMask(strb uint8) uint32 {
	var mask uint32
	if strb&0x1 != 0 {
		mask |= 0x000000FF
	}
	if strb&0x2 != 0 {
		mask |= 0x0000FF00
	}
	if strb&0x4 != 0 {
		mask |= 0x00FF0000
	}
	if strb&0x8 != 0 {
		mask |= 0xFF000000
	}
	return mask
}

// Write applies a strobe-masked write to the addressed register. FIFO-mapped
// indices push the masked data word; merge-style registers keep byte lanes
// outside the strobe unchanged. Writes to read-only or unmapped indices are
// silent no-ops, never faults.
func (rf *ChainRegFile) Write(index uint32, data uint32, strb uint8) {
	mask := strobeMask(strb)

	rf.mu.Lock()
	defer rf.mu.Unlock()

	switch index & REG_INDEX_MASK {
	case REG_CMD_TX_FIFO:
		rf.cmdTx.Push(data & mask)
	case REG_WORK_TX_FIFO:
		rf.workTx.Push(data & mask)
	case REG_CTRL:
		rf.ctrl = ((rf.ctrl &^ mask) | (data & mask)) & CTRL_WIDTH_MASK
	case REG_BAUD:
		rf.baud = ((rf.baud &^ mask) | (data & mask)) & BAUD_WIDTH_MASK
	case REG_WORK_TIME:
		rf.workTime = ((rf.workTime &^ mask) | (data & mask)) & WORK_TIME_WIDTH_MASK
	case REG_IRQ_FIFO_THR:
		rf.irqFifoThr = ((rf.irqFifoThr &^ mask) | (data & mask)) & IRQ_FIFO_THR_WIDTH_MASK
	}
}

// Read returns the addressed register value. FIFO-mapped indices pop; an
// empty FIFO returns its stale output word without state change. Reads of
// write-only or unmapped indices return 0.
func (rf *ChainRegFile) Read(index uint32) uint32 {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	switch index & REG_INDEX_MASK {
	case REG_CMD_RX_FIFO:
		return rf.cmdRx.Pop()
	case REG_WORK_RX_FIFO:
		return rf.workRx.Pop()
	case REG_CTRL:
		return rf.ctrl
	case REG_STAT:
		return rf.statLocked()
	case REG_BAUD:
		return rf.baud
	case REG_WORK_TIME:
		return rf.workTime
	case REG_IRQ_FIFO_THR:
		return rf.irqFifoThr
	case REG_ERR_COUNTER:
		return rf.errCounter
	case REG_LAST_WORK_ID:
		return rf.lastWorkID
	case REG_BUILD_ID:
		return rf.buildID
	default:
		return 0
	}
}

// ApplySelfClearing services the self-clearing CTRL_REG bits once per step:
// any set FIFO-reset bit resets its FIFO, ERR_CNT_CLEAR zeroes the error
// counter, and all five bits read back as 0 afterwards.
func (rf *ChainRegFile) ApplySelfClearing() {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.ctrl&CTRL_SELF_CLEARING == 0 {
		return
	}
	if rf.ctrl&CTRL_RST_CMD_RX_FIFO != 0 {
		rf.cmdRx.Reset()
	}
	if rf.ctrl&CTRL_RST_CMD_TX_FIFO != 0 {
		rf.cmdTx.Reset()
	}
	if rf.ctrl&CTRL_RST_WORK_RX_FIFO != 0 {
		rf.workRx.Reset()
	}
	if rf.ctrl&CTRL_RST_WORK_TX_FIFO != 0 {
		rf.workTx.Reset()
	}
	if rf.ctrl&CTRL_ERR_CNT_CLEAR != 0 {
		rf.errCounter = 0
	}
	rf.ctrl &^= CTRL_SELF_CLEARING
}

func (rf *ChainRegFile) statLocked() uint32 {
	var stat uint32
	if rf.cmdRx.Empty() {
		stat |= STAT_CMD_RX_EMPTY
	}
	if rf.cmdRx.Full() {
		stat |= STAT_CMD_RX_FULL
	}
	if rf.cmdTx.Empty() {
		stat |= STAT_CMD_TX_EMPTY
	}
	if rf.cmdTx.Full() {
		stat |= STAT_CMD_TX_FULL
	}
	if rf.workRx.Empty() {
		stat |= STAT_WORK_RX_EMPTY
	}
	if rf.workRx.Full() {
		stat |= STAT_WORK_RX_FULL
	}
	if rf.workTx.Empty() {
		stat |= STAT_WORK_TX_EMPTY
	}
	if rf.workTx.Full() {
		stat |= STAT_WORK_TX_FULL
	}
	if !rf.cmdRx.Empty() {
		stat |= STAT_IRQ_PEND_CMD_RX
	}
	if rf.irqFifoThr != 0 && uint32(rf.workTx.Len()) >= rf.irqFifoThr {
		stat |= STAT_IRQ_PEND_WORK_TX
	}
	if !rf.workRx.Empty() {
		stat |= STAT_IRQ_PEND_WORK_RX
	}
	return stat
}

// Stat returns the derived STAT_REG value.
func (rf *ChainRegFile) Stat() uint32 {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.statLocked()
}

// IRQLines returns the three discrete level outputs (cmd-RX, work-TX,
// work-RX): the STAT pending bit gated by the matching CTRL enable bit,
// recomputed on every call with no latching.
func (rf *ChainRegFile) IRQLines() (cmdRx, workTx, workRx bool) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	stat := rf.statLocked()
	cmdRx = stat&STAT_IRQ_PEND_CMD_RX != 0 && rf.ctrl&CTRL_IRQ_EN_CMD_RX != 0
	workTx = stat&STAT_IRQ_PEND_WORK_TX != 0 && rf.ctrl&CTRL_IRQ_EN_WORK_TX != 0
	workRx = stat&STAT_IRQ_PEND_WORK_RX != 0 && rf.ctrl&CTRL_IRQ_EN_WORK_RX != 0
	return
}

// Ctrl returns the current CTRL_REG value.
func (rf *ChainRegFile) Ctrl() uint32 {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.ctrl
}

// Enabled reports the CTRL_REG ENABLE bit.
func (rf *ChainRegFile) Enabled() bool {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.ctrl&CTRL_ENABLE != 0
}

// WorkTimeValue returns the WORK_TIME register (dispatch pacing).
func (rf *ChainRegFile) WorkTimeValue() uint32 {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.workTime
}

// =============================================================================
// Transport-side FIFO ports
//
// The serial transport sits on the far side of the FIFOs: it drains the TX
// queues toward the ASIC chain and fills the RX queues with responses. These
// ports share the single store mutex with register traffic.
// =============================================================================

// PushCmdRx delivers a command-response word from the transport.
func (rf *ChainRegFile) PushCmdRx(word uint32) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	rf.cmdRx.Push(word)
}

// PushWorkRx delivers a work-response word from the transport.
func (rf *ChainRegFile) PushWorkRx(word uint32) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	rf.workRx.Push(word)
}

// PopCmdTx removes the next host command word. ok is false when the queue
// is empty (the transport must not consume stale data).
func (rf *ChainRegFile) PopCmdTx() (word uint32, ok bool) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.cmdTx.Empty() {
		return 0, false
	}
	return rf.cmdTx.Pop(), true
}

// PopWorkTx removes the next host work word. ok is false when empty.
func (rf *ChainRegFile) PopWorkTx() (word uint32, ok bool) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.workTx.Empty() {
		return 0, false
	}
	return rf.workTx.Pop(), true
}

// CmdTxLen returns the command-TX FIFO occupancy.
func (rf *ChainRegFile) CmdTxLen() int {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.cmdTx.Len()
}

// WorkTxLen returns the work-TX FIFO occupancy.
func (rf *ChainRegFile) WorkTxLen() int {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.workTx.Len()
}

// BumpErrCounter counts one dropped/malformed transport frame.
func (rf *ChainRegFile) BumpErrCounter() {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	rf.errCounter++
}

// SetErrCounter forces the dropped-frame counter, used by tests and the
// monitor to stage error state.
func (rf *ChainRegFile) SetErrCounter(v uint32) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	rf.errCounter = v
}

// SetLastWorkID records the ID of the most recently dispatched work.
func (rf *ChainRegFile) SetLastWorkID(id uint32) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	rf.lastWorkID = id & LAST_WORK_ID_WIDTH_MASK
}

// FIFOLevels reports current occupancy of all four FIFOs (monitor/tests).
func (rf *ChainRegFile) FIFOLevels() (cmdRx, cmdTx, workRx, workTx int) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.cmdRx.Len(), rf.cmdTx.Len(), rf.workRx.Len(), rf.workTx.Len()
}
