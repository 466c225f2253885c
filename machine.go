// machine.go - Top-level assembly: fabric, chain instances, transports

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

package main

// NUM_CHAINS is fixed by the fabric: two chain I/O instances.
const NUM_CHAINS = 2

var chainBases = [NUM_CHAINS]uint32{CHAIN0_BASE, CHAIN1_BASE}

// Machine assembles the host-visible system: the bus fabric with both chain
// I/O instances mapped at their fixed windows, each backed by a loopback
// transport modeling its ASIC chain.
type Machine struct {
	Bus    *HostBus
	Chains [NUM_CHAINS]*ChainIO
	Loops  [NUM_CHAINS]*LoopbackTransport
}

// NewMachine builds and seals the fabric. Each instance window spans 64KB;
// the peripheral decodes only the low 4 index bits, so the register block
// aliases across its window.
func NewMachine() *Machine {
	m := &Machine{Bus: NewHostBus()}

	for i := 0; i < NUM_CHAINS; i++ {
		chain := NewChainIO()
		m.Chains[i] = chain
		m.Loops[i] = NewLoopbackTransport(chain.Regs())

		base := chainBases[i]
		m.Bus.MapIO(base, base+CHAIN_WINDOW-1,
			chain.ReadReg,
			chain.WriteReg)
		m.Bus.OnReset(chain.Reset)
	}
	m.Bus.SealMappings()
	return m
}

// StartTransports launches the background pumps for both chains.
func (m *Machine) StartTransports() {
	for _, lt := range m.Loops {
		lt.Start()
	}
}

// StopTransports stops both pumps and waits for them.
func (m *Machine) StopTransports() {
	for _, lt := range m.Loops {
		lt.Stop()
	}
}
