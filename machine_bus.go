// machine_bus.go - Host bus fabric for the ChainIO Engine

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

/*
machine_bus.go - Host Bus Fabric

This module implements the bus fabric a host processor sees in front of the
chain I/O instances. It provides a unified interface for 8/16/32-bit
accesses and routes them to memory-mapped peripheral windows registered via
MapIO. The fabric performs the address translation the hardware's
interconnect performs: it selects the instance window, while the peripheral
itself decodes only the low 4 index bits (so the register block aliases
across the whole window).

Sub-word accesses are the fabric's responsibility: an 8- or 16-bit write
becomes a 32-bit transaction with partial byte-lane strobes, and an 8- or
16-bit read extracts lanes from a full-width read. This mirrors how an
AXI4-Lite interconnect narrows host accesses, and it is the path that
exercises the peripheral's byte-strobe merge semantics.

Unmapped fabric addresses absorb writes and read as zero; the register
protocol has no error responses, and neither does the fabric.

Thread safety: the region table is built once at startup and sealed before
traffic starts. Dispatch after sealing is lock-free over an immutable map;
the peripherals serialize their own state.
*/

package main

import (
	"fmt"
	"sync/atomic"
)

const (
	FABRIC_PAGE_SIZE = 0x100
	FABRIC_PAGE_MASK = ^uint32(FABRIC_PAGE_SIZE - 1)
)

// Bus32 defines the host-visible fabric operations: byte, halfword and word
// access plus a full reset. Implementations must route sub-word writes as
// strobed word transactions.
type Bus32 interface {
	Read8(addr uint32) uint8
	Write8(addr uint32, value uint8)
	Read16(addr uint32) uint16
	Write16(addr uint32, value uint16)
	Read32(addr uint32) uint32
	Write32(addr uint32, value uint32)
	Reset()
}

// IORegion represents one memory-mapped peripheral window. onWrite receives
// the word-aligned address, the full write word and the byte-lane strobe
// mask; onRead returns the full word at a word-aligned address.
type IORegion struct {
	start   uint32
	end     uint32
	onRead  func(addr uint32) uint32
	onWrite func(addr uint32, value uint32, strb uint8)
}

// HostBus implements Bus32 and routes accesses to registered peripheral
// windows through a page-masked region table.
type HostBus struct {
	mapping map[uint32][]IORegion

	// Reset hooks registered by attached peripherals, run by Reset()
	resetHooks []func()

	// Sealed state to prevent window mapping after traffic has started
	sealed atomic.Bool
}

// NewHostBus creates an empty fabric with no windows mapped.
func NewHostBus() *HostBus {
	return &HostBus{mapping: make(map[uint32][]IORegion)}
}

// MapIO registers a peripheral window covering [start, end]. Must complete
// before SealMappings; mapping afterwards is a configuration bug and panics.
func (bus *HostBus) MapIO(start, end uint32,
	onRead func(addr uint32) uint32,
	onWrite func(addr uint32, value uint32, strb uint8)) {
	if bus.sealed.Load() {
		panic(fmt.Sprintf("MapIO called after traffic started (mapping range $%08X-$%08X)", start, end))
	}
	region := IORegion{start: start, end: end, onRead: onRead, onWrite: onWrite}

	firstPage := start & FABRIC_PAGE_MASK
	lastPage := end & FABRIC_PAGE_MASK
	for page := firstPage; ; page += FABRIC_PAGE_SIZE {
		bus.mapping[page] = append(bus.mapping[page], region)
		if page == lastPage {
			break
		}
	}
}

// OnReset registers a hook run by Reset(). Subject to the same sealing rule
// as MapIO.
func (bus *HostBus) OnReset(fn func()) {
	if bus.sealed.Load() {
		panic("OnReset called after traffic started")
	}
	bus.resetHooks = append(bus.resetHooks, fn)
}

// SealMappings freezes the region table. Dispatch is lock-free afterwards.
func (bus *HostBus) SealMappings() {
	bus.sealed.CompareAndSwap(false, true)
}

func (bus *HostBus) findIORegion(addr uint32) *IORegion {
	regions, exists := bus.mapping[addr&FABRIC_PAGE_MASK]
	if !exists {
		return nil
	}
	for i := range regions {
		if addr >= regions[i].start && addr <= regions[i].end {
			return &regions[i]
		}
	}
	return nil
}

// writeStrobed routes a word write with the given byte-lane strobes.
// Unmapped addresses absorb the write.
func (bus *HostBus) writeStrobed(addr uint32, value uint32, strb uint8) {
	aligned := addr &^ 3
	if region := bus.findIORegion(aligned); region != nil && region.onWrite != nil {
		region.onWrite(aligned, value, strb)
	}
}

// Write32 performs a full-strobe word write.
func (bus *HostBus) Write32(addr uint32, value uint32) {
	bus.writeStrobed(addr, value, 0xF)
}

// Read32 returns the word at addr, or 0 for unmapped addresses.
func (bus *HostBus) Read32(addr uint32) uint32 {
	aligned := addr &^ 3
	if region := bus.findIORegion(aligned); region != nil && region.onRead != nil {
		return region.onRead(aligned)
	}
	return 0
}

// Write16 narrows to a word transaction with two byte-lane strobes. The
// halfword must not straddle a word boundary; lane placement follows the
// little-endian bus.
func (bus *HostBus) Write16(addr uint32, value uint16) {
	lane := addr & 2
	bus.writeStrobed(addr, uint32(value)<<(lane*8), 0x3<<lane)
}

// Read16 extracts the addressed halfword lane from a full-width read.
func (bus *HostBus) Read16(addr uint32) uint16 {
	lane := addr & 2
	return uint16(bus.Read32(addr) >> (lane * 8))
}

// Write8 narrows to a word transaction with a single byte-lane strobe.
func (bus *HostBus) Write8(addr uint32, value uint8) {
	lane := addr & 3
	bus.writeStrobed(addr, uint32(value)<<(lane*8), 0x1<<lane)
}

// Read8 extracts the addressed byte lane from a full-width read.
func (bus *HostBus) Read8(addr uint32) uint8 {
	lane := addr & 3
	return uint8(bus.Read32(addr) >> (lane * 8))
}
