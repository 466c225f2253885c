// registers.go - Centralized register address map for the ChainIO Engine

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

/*
registers.go - Master Register Address Map

This file provides a centralized reference for the hashing-chain I/O core's
register interface. The core exposes sixteen word-addressed 32-bit slots
selected by a 4-bit index decoded from the low address bits; only the indices
listed below are implemented, all others read as zero and absorb writes.

REGISTER MAP OVERVIEW
=====================

Index  Byte off  Name           Width  Access  Semantics
--------------------------------------------------------------------------
0x0    0x00      CMD_RX_FIFO    32     RO      pop command-RX FIFO
0x1    0x04      CMD_TX_FIFO    32     WO      push command-TX FIFO
0x2    0x08      WORK_RX_FIFO   32     RO      pop work-RX FIFO
0x3    0x0C      WORK_TX_FIFO   32     WO      push work-TX FIFO
0x4    0x10      CTRL_REG       16     RW      control bits
0x5    0x14      STAT_REG       13     RO      status bits
0x6    0x18      BAUD_REG       12     RW      UART divisor
0x7    0x1C      WORK_TIME      24     RW      work dispatch delay
0x8    0x20      IRQ_FIFO_THR   11     RW      work-TX FIFO IRQ threshold
0xC    0x30      ERR_COUNTER    32     RO      dropped-frame counter
0xD    0x34      LAST_WORK_ID   16     RO      last work ID dispatched
0xF    0x3C      BUILD_ID       32     RO      static build timestamp

Only the low 4 index bits are decoded; higher address bits inside an
instance window are ignored, so the 64-byte register block aliases across
the whole window. Two instances exist on the fabric: chain 0 at base
0x00000000 and chain 1 at base 0x41210000.

CTRL_REG BIT LAYOUT
===================

bit0     RST_CMD_RX_FIFO   self-clearing
bit1     RST_CMD_TX_FIFO   self-clearing
bit2     RST_WORK_RX_FIFO  self-clearing
bit3     RST_WORK_TX_FIFO  self-clearing
bit4     ERR_CNT_CLEAR     self-clearing
bit10    IRQ_EN_CMD_RX
bit11    IRQ_EN_WORK_TX
bit12    IRQ_EN_WORK_RX
bit13-14 MIDSTATE_CNT (one=0, two=1, four=2)
bit15    ENABLE

STAT_REG BIT LAYOUT (read-only, derived from FIFO occupancy)
============================================================

bit0   CMD_RX_EMPTY      bit1   CMD_RX_FULL
bit2   CMD_TX_EMPTY      bit3   CMD_TX_FULL
bit4   WORK_RX_EMPTY     bit5   WORK_RX_FULL
bit6   WORK_TX_EMPTY     bit7   WORK_TX_FULL
bit10  IRQ_PEND_CMD_RX
bit11  IRQ_PEND_WORK_TX
bit12  IRQ_PEND_WORK_RX

Reset value 0x55: all four EMPTY bits set, everything else clear.
*/

package main

// =============================================================================
// Register Indices (4-bit decode)
// =============================================================================

const (
	REG_CMD_RX_FIFO  = 0x0
	REG_CMD_TX_FIFO  = 0x1
	REG_WORK_RX_FIFO = 0x2
	REG_WORK_TX_FIFO = 0x3
	REG_CTRL         = 0x4
	REG_STAT         = 0x5
	REG_BAUD         = 0x6
	REG_WORK_TIME    = 0x7
	REG_IRQ_FIFO_THR = 0x8
	REG_ERR_COUNTER  = 0xC
	REG_LAST_WORK_ID = 0xD
	REG_BUILD_ID     = 0xF

	REG_COUNT      = 16
	REG_INDEX_MASK = 0xF
)

// =============================================================================
// Implemented Register Widths
// =============================================================================

const (
	CTRL_WIDTH_MASK         = 0xFC1F // bits 0-4, 10-15
	BAUD_WIDTH_MASK         = 0x0FFF
	WORK_TIME_WIDTH_MASK    = 0x00FFFFFF
	IRQ_FIFO_THR_WIDTH_MASK = 0x07FF
	LAST_WORK_ID_WIDTH_MASK = 0xFFFF
)

// =============================================================================
// CTRL_REG Bits
// =============================================================================

const (
	CTRL_RST_CMD_RX_FIFO  = 1 << 0
	CTRL_RST_CMD_TX_FIFO  = 1 << 1
	CTRL_RST_WORK_RX_FIFO = 1 << 2
	CTRL_RST_WORK_TX_FIFO = 1 << 3
	CTRL_ERR_CNT_CLEAR    = 1 << 4
	CTRL_IRQ_EN_CMD_RX    = 1 << 10
	CTRL_IRQ_EN_WORK_TX   = 1 << 11
	CTRL_IRQ_EN_WORK_RX   = 1 << 12
	CTRL_ENABLE           = 1 << 15

	// Mask covering all self-clearing bits
	CTRL_SELF_CLEARING = CTRL_RST_CMD_RX_FIFO | CTRL_RST_CMD_TX_FIFO |
		CTRL_RST_WORK_RX_FIFO | CTRL_RST_WORK_TX_FIFO | CTRL_ERR_CNT_CLEAR

	CTRL_MIDSTATE_SHIFT = 13
	CTRL_MIDSTATE_MASK  = 0x3 << CTRL_MIDSTATE_SHIFT
)

// MIDSTATE_CNT field encodings
const (
	MIDSTATE_ONE  = 0
	MIDSTATE_TWO  = 1
	MIDSTATE_FOUR = 2
)

// =============================================================================
// STAT_REG Bits
// =============================================================================

const (
	STAT_CMD_RX_EMPTY     = 1 << 0
	STAT_CMD_RX_FULL      = 1 << 1
	STAT_CMD_TX_EMPTY     = 1 << 2
	STAT_CMD_TX_FULL      = 1 << 3
	STAT_WORK_RX_EMPTY    = 1 << 4
	STAT_WORK_RX_FULL     = 1 << 5
	STAT_WORK_TX_EMPTY    = 1 << 6
	STAT_WORK_TX_FULL     = 1 << 7
	STAT_IRQ_PEND_CMD_RX  = 1 << 10
	STAT_IRQ_PEND_WORK_TX = 1 << 11
	STAT_IRQ_PEND_WORK_RX = 1 << 12

	STAT_RESET_VALUE = 0x55
)

// =============================================================================
// FIFO Geometry
// =============================================================================

const (
	CMD_RX_FIFO_DEPTH  = 256
	CMD_TX_FIFO_DEPTH  = 256
	WORK_RX_FIFO_DEPTH = 1024
	WORK_TX_FIFO_DEPTH = 2048 // 11-bit IRQ_FIFO_THR reaches the full depth
)

// =============================================================================
// Fabric Instance Windows
// =============================================================================

const (
	CHAIN0_BASE  = 0x00000000
	CHAIN1_BASE  = 0x41210000
	CHAIN_WINDOW = 0x10000 // 64KB aliasing window per instance
)

// =============================================================================
// Helper Functions
// =============================================================================

// RegIndex decodes the 4-bit register index from a byte address. Higher
// address bits are deliberately ignored (window aliasing).
func RegIndex(addr uint32) uint32 {
	return (addr >> 2) & REG_INDEX_MASK
}

// RegName returns the architectural name for a register index.
func RegName(index uint32) string {
	switch index & REG_INDEX_MASK {
	case REG_CMD_RX_FIFO:
		return "CMD_RX_FIFO"
	case REG_CMD_TX_FIFO:
		return "CMD_TX_FIFO"
	case REG_WORK_RX_FIFO:
		return "WORK_RX_FIFO"
	case REG_WORK_TX_FIFO:
		return "WORK_TX_FIFO"
	case REG_CTRL:
		return "CTRL_REG"
	case REG_STAT:
		return "STAT_REG"
	case REG_BAUD:
		return "BAUD_REG"
	case REG_WORK_TIME:
		return "WORK_TIME"
	case REG_IRQ_FIFO_THR:
		return "IRQ_FIFO_THR"
	case REG_ERR_COUNTER:
		return "ERR_COUNTER"
	case REG_LAST_WORK_ID:
		return "LAST_WORK_ID"
	case REG_BUILD_ID:
		return "BUILD_ID"
	default:
		return "RESERVED"
	}
}

// MidstateCount converts the CTRL_REG MIDSTATE_CNT field to a midstate count.
// Unused encoding 3 falls back to four midstates, matching the widest frame.
func MidstateCount(ctrl uint32) int {
	switch (ctrl & CTRL_MIDSTATE_MASK) >> CTRL_MIDSTATE_SHIFT {
	case MIDSTATE_ONE:
		return 1
	case MIDSTATE_TWO:
		return 2
	default:
		return 4
	}
}
