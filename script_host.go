// script_host.go - Lua scripting harness over the chain register interface

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

/*
script_host.go - Lua Scripting Harness

Exposes the register and transport surface of both chain instances to Lua,
so bring-up sequences and regression scenarios can be written as scripts
instead of recompiled Go. The module is loaded with require("chain"):

    local chain = require("chain")
    chain.wr(0, 0x4, 0x8000)             -- CTRL_REG.ENABLE on chain 0
    print(string.format("%04x", chain.rd(0, 0x5)))
    chain.svc(0)                          -- run the loopback once
    local cmd_rx, work_tx, work_rx = chain.irq(0)

Register indices are the architectural 4-bit indices; the host converts to
byte addresses. All traffic runs through full bus transactions.
*/

package main

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ScriptHost binds a Lua state to a Machine.
type ScriptHost struct {
	machine *Machine
	L       *lua.LState
}

// NewScriptHost creates a Lua state with the chain module preloaded.
func NewScriptHost(m *Machine) *ScriptHost {
	sh := &ScriptHost{machine: m, L: lua.NewState()}
	sh.L.PreloadModule("chain", sh.loader)
	return sh
}

// Close releases the Lua state.
func (sh *ScriptHost) Close() {
	sh.L.Close()
}

// RunFile executes a script file.
func (sh *ScriptHost) RunFile(path string) error {
	return sh.L.DoFile(path)
}

// RunString executes script source, for tests.
func (sh *ScriptHost) RunString(src string) error {
	return sh.L.DoString(src)
}

func (sh *ScriptHost) loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"wr":    sh.apiWrite,
		"rd":    sh.apiRead,
		"stat":  sh.apiStat,
		"irq":   sh.apiIRQ,
		"fifo":  sh.apiFIFO,
		"step":  sh.apiStep,
		"svc":   sh.apiService,
		"frame": sh.apiFrame,
		"reset": sh.apiReset,
	})
	L.Push(mod)
	return 1
}

func (sh *ScriptHost) checkChain(L *lua.LState, pos int) *ChainIO {
	n := L.CheckInt(pos)
	if n < 0 || n >= NUM_CHAINS {
		L.ArgError(pos, fmt.Sprintf("chain index %d out of range", n))
		return nil
	}
	return sh.machine.Chains[n]
}

// chain.wr(chain, idx, value [, strb])
func (sh *ScriptHost) apiWrite(L *lua.LState) int {
	c := sh.checkChain(L, 1)
	idx := uint32(L.CheckInt(2)) & REG_INDEX_MASK
	val := uint32(L.CheckInt64(3))
	strb := uint8(L.OptInt(4, 0xF)) & 0xF
	c.WriteReg(idx*4, val, strb)
	return 0
}

// chain.rd(chain, idx) -> value
func (sh *ScriptHost) apiRead(L *lua.LState) int {
	c := sh.checkChain(L, 1)
	idx := uint32(L.CheckInt(2)) & REG_INDEX_MASK
	L.Push(lua.LNumber(c.ReadReg(idx * 4)))
	return 1
}

// chain.stat(chain) -> STAT_REG (no FIFO side effects)
func (sh *ScriptHost) apiStat(L *lua.LState) int {
	c := sh.checkChain(L, 1)
	L.Push(lua.LNumber(c.Regs().Stat()))
	return 1
}

// chain.irq(chain) -> cmd_rx, work_tx, work_rx
func (sh *ScriptHost) apiIRQ(L *lua.LState) int {
	c := sh.checkChain(L, 1)
	cmdRx, workTx, workRx := c.IRQLines()
	L.Push(lua.LBool(cmdRx))
	L.Push(lua.LBool(workTx))
	L.Push(lua.LBool(workRx))
	return 3
}

// chain.fifo(chain) -> cmd_rx, cmd_tx, work_rx, work_tx occupancy
func (sh *ScriptHost) apiFIFO(L *lua.LState) int {
	c := sh.checkChain(L, 1)
	cmdRx, cmdTx, workRx, workTx := c.Regs().FIFOLevels()
	L.Push(lua.LNumber(cmdRx))
	L.Push(lua.LNumber(cmdTx))
	L.Push(lua.LNumber(workRx))
	L.Push(lua.LNumber(workTx))
	return 4
}

// chain.step(chain [, n])
func (sh *ScriptHost) apiStep(L *lua.LState) int {
	c := sh.checkChain(L, 1)
	c.Steps(L.OptInt(2, 1))
	return 0
}

// chain.svc(chain) -> progressed
func (sh *ScriptHost) apiService(L *lua.LState) int {
	n := L.CheckInt(1)
	if n < 0 || n >= NUM_CHAINS {
		L.ArgError(1, fmt.Sprintf("chain index %d out of range", n))
		return 0
	}
	L.Push(lua.LBool(sh.machine.Loops[n].Service()))
	return 1
}

// chain.frame(op, chip, reg [, data]) -> word0 [, word1]
// Builds a command frame with the CRC5 filled in, ready for CMD_TX_FIFO.
func (sh *ScriptHost) apiFrame(L *lua.LState) int {
	op := uint8(L.CheckInt(1))
	chip := uint8(L.CheckInt(2))
	reg := uint8(L.CheckInt(3))

	if L.GetTop() >= 4 {
		data := uint32(L.CheckInt64(4))
		w0, w1 := BuildWriteFrame(op, chip, reg, data)
		L.Push(lua.LNumber(w0))
		L.Push(lua.LNumber(w1))
		return 2
	}
	L.Push(lua.LNumber(BuildReadFrame(op, chip, reg)))
	return 1
}

// chain.reset()
func (sh *ScriptHost) apiReset(L *lua.LState) int {
	sh.machine.Reset()
	return 0
}
