// debug_monitor.go - Interactive register monitor for the chain I/O instances

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// ChainMonitor is a line-oriented debugger over the register interface.
// Every access goes through the fabric, so the monitor sees exactly what a
// host driver would see, byte strobes and FIFO side effects included.
// Command execution is separated from terminal handling (monitor_host.go)
// so tests can drive Execute directly.
type ChainMonitor struct {
	machine *Machine
	focused int // chain index commands apply to
}

// NewChainMonitor creates a monitor focused on chain 0.
func NewChainMonitor(m *Machine) *ChainMonitor {
	return &ChainMonitor{machine: m}
}

func (mon *ChainMonitor) chain() *ChainIO {
	return mon.machine.Chains[mon.focused]
}

func (mon *ChainMonitor) base() uint32 {
	return chainBases[mon.focused]
}

// parseNum accepts 0x-prefixed hex, $-prefixed hex, or decimal.
func parseNum(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return uint32(v), nil
}

// Execute runs one monitor command line and returns its output plus whether
// the session should end.
func (mon *ChainMonitor) Execute(line string) (output string, quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}

	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return "", true

	case "?", "help":
		return monitorHelp, false

	case "chain":
		if len(fields) < 2 {
			return fmt.Sprintf("chain %d (base $%08X)", mon.focused, mon.base()), false
		}
		n, err := parseNum(fields[1])
		if err != nil || n >= NUM_CHAINS {
			return "chain index must be 0 or 1", false
		}
		mon.focused = int(n)
		return fmt.Sprintf("focused chain %d (base $%08X)", mon.focused, mon.base()), false

	case "rd":
		if len(fields) < 2 {
			return "usage: rd <index>", false
		}
		idx, err := parseNum(fields[1])
		if err != nil {
			return err.Error(), false
		}
		v := mon.machine.Bus.Read32(mon.base() + (idx&REG_INDEX_MASK)*4)
		return fmt.Sprintf("%-12s = $%08X", RegName(idx), v), false

	case "wr":
		if len(fields) < 3 {
			return "usage: wr <index> <value> [strobe]", false
		}
		idx, err := parseNum(fields[1])
		if err != nil {
			return err.Error(), false
		}
		val, err := parseNum(fields[2])
		if err != nil {
			return err.Error(), false
		}
		strb := uint32(0xF)
		if len(fields) > 3 {
			strb, err = parseNum(fields[3])
			if err != nil {
				return err.Error(), false
			}
		}
		mon.chain().WriteReg(mon.base()+(idx&REG_INDEX_MASK)*4, val, uint8(strb&0xF))
		return fmt.Sprintf("%-12s <= $%08X (strb %04b)", RegName(idx), val, strb&0xF), false

	case "stat":
		return mon.formatStat(), false

	case "irq":
		cmdRx, workTx, workRx := mon.chain().IRQLines()
		return fmt.Sprintf("IRQ lines: cmd_rx=%v work_tx=%v work_rx=%v", cmdRx, workTx, workRx), false

	case "fifo":
		cmdRx, cmdTx, workRx, workTx := mon.chain().Regs().FIFOLevels()
		return fmt.Sprintf("cmd_rx %d/%d  cmd_tx %d/%d  work_rx %d/%d  work_tx %d/%d",
			cmdRx, CMD_RX_FIFO_DEPTH, cmdTx, CMD_TX_FIFO_DEPTH,
			workRx, WORK_RX_FIFO_DEPTH, workTx, WORK_TX_FIFO_DEPTH), false

	case "step":
		n := uint32(1)
		if len(fields) > 1 {
			var err error
			n, err = parseNum(fields[1])
			if err != nil {
				return err.Error(), false
			}
		}
		mon.chain().Steps(int(n))
		return fmt.Sprintf("stepped %d", n), false

	case "svc":
		if mon.machine.Loops[mon.focused].Service() {
			return "transport serviced", false
		}
		return "transport idle", false

	case "chip":
		if len(fields) < 3 {
			return "usage: chip <addr> <reg>", false
		}
		chip, err := parseNum(fields[1])
		if err != nil {
			return err.Error(), false
		}
		reg, err := parseNum(fields[2])
		if err != nil {
			return err.Error(), false
		}
		v, ok := mon.machine.Loops[mon.focused].ChipRegister(uint8(chip), uint8(reg))
		if !ok {
			return fmt.Sprintf("chip $%02X reg $%02X: no such chip/register", chip, reg), false
		}
		return fmt.Sprintf("chip $%02X reg $%02X = $%08X", chip, reg, v), false

	case "reset":
		mon.machine.Reset()
		return "machine reset", false

	default:
		return fmt.Sprintf("unknown command %q - type ? for help", fields[0]), false
	}
}

func (mon *ChainMonitor) formatStat() string {
	stat := mon.chain().Regs().Stat()
	ctrl := mon.chain().Regs().Ctrl()

	var b strings.Builder
	fmt.Fprintf(&b, "STAT_REG = $%04X  CTRL_REG = $%04X\n", stat, ctrl)
	flag := func(name string, bit uint32) {
		if stat&bit != 0 {
			fmt.Fprintf(&b, "  %s", name)
		}
	}
	flag("CMD_RX_EMPTY", STAT_CMD_RX_EMPTY)
	flag("CMD_RX_FULL", STAT_CMD_RX_FULL)
	flag("CMD_TX_EMPTY", STAT_CMD_TX_EMPTY)
	flag("CMD_TX_FULL", STAT_CMD_TX_FULL)
	flag("WORK_RX_EMPTY", STAT_WORK_RX_EMPTY)
	flag("WORK_RX_FULL", STAT_WORK_RX_FULL)
	flag("WORK_TX_EMPTY", STAT_WORK_TX_EMPTY)
	flag("WORK_TX_FULL", STAT_WORK_TX_FULL)
	flag("IRQ_PEND_CMD_RX", STAT_IRQ_PEND_CMD_RX)
	flag("IRQ_PEND_WORK_TX", STAT_IRQ_PEND_WORK_TX)
	flag("IRQ_PEND_WORK_RX", STAT_IRQ_PEND_WORK_RX)
	return b.String()
}

const monitorHelp = `commands:
  rd <idx>                read register (pops FIFO-mapped indices)
  wr <idx> <val> [strb]   write register with optional 4-bit byte strobe
  stat                    decoded STAT_REG and CTRL_REG
  irq                     gated interrupt line state
  fifo                    FIFO occupancy
  step [n]                advance the peripheral n steps
  svc                     run the loopback transport once
  chip <addr> <reg>       modeled chip register (via loopback state)
  chain [n]               show or switch focused chain
  reset                   hard-reset both chains
  q                       quit`
