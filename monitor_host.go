// monitor_host.go - Raw-terminal host adapter for the chain monitor

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// MonitorHost owns the interactive terminal session for a ChainMonitor.
// It puts stdin into raw mode, does its own echo and line editing, and
// restores the terminal on exit. Only instantiated in main.go for
// interactive use - never in tests (tests drive ChainMonitor.Execute).
type MonitorHost struct {
	monitor      *ChainMonitor
	fd           int
	oldTermState *term.State
}

// NewMonitorHost creates a host adapter for the given monitor.
func NewMonitorHost(mon *ChainMonitor) *MonitorHost {
	return &MonitorHost{monitor: mon, fd: int(os.Stdin.Fd())}
}

// Run drives the interactive session until the user quits. Requires stdin
// to be a terminal.
func (h *MonitorHost) Run() error {
	if !term.IsTerminal(h.fd) {
		return fmt.Errorf("monitor: stdin is not a terminal")
	}

	// Raw mode disables OS-level echo and line buffering; the host handles
	// both itself, like the engine's terminal adapter does.
	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		return fmt.Errorf("monitor: failed to set raw mode: %w", err)
	}
	h.oldTermState = oldState
	defer h.restore()

	fmt.Print("ChainIO monitor - type ? for help\r\n")

	var line []byte
	buf := make([]byte, 1)
	h.prompt()
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil
		}
		if n == 0 {
			continue
		}

		switch b := buf[0]; b {
		case 0x03, 0x04: // Ctrl-C / Ctrl-D
			fmt.Print("\r\n")
			return nil

		case '\r', '\n':
			fmt.Print("\r\n")
			out, quit := h.monitor.Execute(string(line))
			if out != "" {
				fmt.Print(strings.ReplaceAll(out, "\n", "\r\n"), "\r\n")
			}
			if quit {
				return nil
			}
			line = line[:0]
			h.prompt()

		case 0x7F, 0x08: // Backspace (DEL from modern terminals)
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Print("\b \b")
			}

		default:
			if b >= 0x20 && b < 0x7F {
				line = append(line, b)
				fmt.Printf("%c", b)
			}
		}
	}
}

func (h *MonitorHost) prompt() {
	fmt.Printf("chain%d> ", h.monitor.focused)
}

func (h *MonitorHost) restore() {
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
