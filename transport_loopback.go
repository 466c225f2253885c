// transport_loopback.go - Modeled ASIC chain on the far side of the FIFOs

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

/*
transport_loopback.go - Serial Transport Loopback

A modeled hashing-ASIC chain answering the FIFO contract from the far side:
it drains the command/work TX FIFOs, parses frames, and fills the RX FIFOs
with responses. The register core itself never looks inside these words;
everything here sits beyond the interface boundary and exists so the FIFO
paths can be exercised end to end.

COMMAND FRAMING (word granularity, little-endian byte lanes)

  word0: byte0 opcode | byte1 chip address | byte2 register | byte3 CRC5
  word1: register data (write frames only)

  0x41 READ_REG   1 word   response: word0 echo with bit7 set, word1 data
  0x51 WRITE_REG  2 words  no response; chip address 0xFF broadcasts

  The CRC5 (poly 0x05, init 0x1F) covers the first three bytes of word0
  plus, for writes, the four data bytes. A bad CRC or an unknown opcode
  drops the frame and increments ERR_COUNTER; a read of an absent chip
  simply never answers, like a dead chip on the wire.

WORK FRAMING

  word0:    work ID in the low 16 bits
  word1..3: header tail (nbits, ntime, merkle tail)
  then 8 words per midstate; the midstate count is latched from CTRL_REG
  when the first word of the frame arrives.

  A complete frame updates LAST_WORK_ID. While CTRL_REG.ENABLE is set the
  chain answers with a deterministic two-word solution into WORK_RX:
  nonce, then work ID with the solving midstate index in bits 16-23.
  ENABLE gates work consumption only; command traffic always flows.
*/

package main

import (
	"sync"
	"time"
)

const (
	CMD_OP_READ_REG  = 0x41
	CMD_OP_WRITE_REG = 0x51
	CMD_OP_RESP_BIT  = 0x80

	CMD_CHIP_BROADCAST = 0xFF

	// Modeled per-chip registers
	CHIPREG_CHIP_ID     = 0x00
	CHIPREG_PLL_DIVIDER = 0x0C
	CHIPREG_TICKET_MASK = 0x14

	CHIP_ID_VALUE = 0x1387

	// Chips sit at stride-4 addresses along the chain
	CHAIN_CHIP_COUNT   = 8
	CHAIN_CHIP_STRIDE  = 4
	WORK_HEADER_WORDS  = 4 // work ID + nbits + ntime + merkle tail
	WORK_MIDSTATE_SIZE = 8 // words per midstate
)

// Crc5 computes the 5-bit CRC (poly 0x05, init 0x1F) used by the command
// codec, MSB first over each byte.
func Crc5(data []byte) uint8 {
	crc := uint8(0x1F)
	for _, b := range data {
		for bit := 7; bit >= 0; bit-- {
			in := (b >> uint(bit)) & 1
			msb := (crc >> 4) & 1
			crc = (crc << 1) & 0x1F
			if msb^in != 0 {
				crc ^= 0x05
			}
		}
	}
	return crc
}

// BuildReadFrame packs a one-word command frame with its CRC5.
func BuildReadFrame(op, chip, reg uint8) uint32 {
	crc := Crc5([]byte{op, chip, reg})
	return uint32(op) | uint32(chip)<<8 | uint32(reg)<<16 | uint32(crc)<<24
}

// BuildWriteFrame packs a two-word command frame; the CRC5 in word0 covers
// the header bytes and the data word.
func BuildWriteFrame(op, chip, reg uint8, data uint32) (word0, word1 uint32) {
	crc := Crc5([]byte{
		op, chip, reg,
		uint8(data), uint8(data >> 8), uint8(data >> 16), uint8(data >> 24),
	})
	word0 = uint32(op) | uint32(chip)<<8 | uint32(reg)<<16 | uint32(crc)<<24
	return word0, data
}

// LoopbackTransport models the serial transport and the ASIC chain behind
// one ChainRegFile. Frames are popped word by word; partially received
// frames persist across Service calls, as bytes do on a wire.
type LoopbackTransport struct {
	mu   sync.Mutex
	regs *ChainRegFile

	cmdFrame  []uint32
	workFrame []uint32
	workWords int // expected length of the frame being assembled

	chips map[uint8]map[uint8]uint32

	stopCh   chan struct{}
	done     chan struct{}
	stopped  sync.Once
	lastWork time.Time
}

// NewLoopbackTransport attaches a modeled chain to a backing store.
func NewLoopbackTransport(regs *ChainRegFile) *LoopbackTransport {
	lt := &LoopbackTransport{
		regs:   regs,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	lt.mu.Lock()
	lt.seedChipsLocked()
	lt.mu.Unlock()
	return lt
}

// seedChipsLocked populates the per-chip register maps with power-on values.
func (lt *LoopbackTransport) seedChipsLocked() {
	lt.chips = make(map[uint8]map[uint8]uint32, CHAIN_CHIP_COUNT)
	for i := 0; i < CHAIN_CHIP_COUNT; i++ {
		addr := uint8(i * CHAIN_CHIP_STRIDE)
		lt.chips[addr] = map[uint8]uint32{
			CHIPREG_CHIP_ID:     CHIP_ID_VALUE,
			CHIPREG_PLL_DIVIDER: 0,
			CHIPREG_TICKET_MASK: 0,
		}
	}
}

// Service synchronously drains everything currently available: all complete
// command frames and, when enabled, all complete work frames. Returns true
// if any frame was consumed. Deterministic, for tests and the monitor.
func (lt *LoopbackTransport) Service() bool {
	progress := false
	for lt.serviceCmdWord() {
		progress = true
	}
	for lt.serviceWorkWord() {
		progress = true
	}
	return progress
}

// serviceCmdWord pops one command word and processes any completed frame.
func (lt *LoopbackTransport) serviceCmdWord() bool {
	word, ok := lt.regs.PopCmdTx()
	if !ok {
		return false
	}

	lt.mu.Lock()
	lt.cmdFrame = append(lt.cmdFrame, word)

	op := uint8(lt.cmdFrame[0])
	need := 1
	if op == CMD_OP_WRITE_REG {
		need = 2
	}
	if len(lt.cmdFrame) < need {
		lt.mu.Unlock()
		return true
	}
	frame := lt.cmdFrame
	lt.cmdFrame = nil
	lt.mu.Unlock()

	lt.processCmdFrame(frame)
	return true
}

func cmdFrameBytes(frame []uint32) []byte {
	b := []byte{
		uint8(frame[0]),
		uint8(frame[0] >> 8),
		uint8(frame[0] >> 16),
	}
	if len(frame) > 1 {
		b = append(b,
			uint8(frame[1]),
			uint8(frame[1]>>8),
			uint8(frame[1]>>16),
			uint8(frame[1]>>24))
	}
	return b
}

func (lt *LoopbackTransport) processCmdFrame(frame []uint32) {
	op := uint8(frame[0])
	chip := uint8(frame[0] >> 8)
	reg := uint8(frame[0] >> 16)
	crc := uint8(frame[0]>>24) & 0x1F

	if op != CMD_OP_READ_REG && op != CMD_OP_WRITE_REG {
		lt.regs.BumpErrCounter()
		return
	}
	if Crc5(cmdFrameBytes(frame)) != crc {
		lt.regs.BumpErrCounter()
		return
	}

	switch op {
	case CMD_OP_WRITE_REG:
		lt.mu.Lock()
		if chip == CMD_CHIP_BROADCAST {
			for _, regs := range lt.chips {
				regs[reg] = frame[1]
			}
		} else if regs, present := lt.chips[chip]; present {
			regs[reg] = frame[1]
		}
		lt.mu.Unlock()

	case CMD_OP_READ_REG:
		lt.mu.Lock()
		regs, present := lt.chips[chip]
		var data uint32
		if present {
			data = regs[reg]
		}
		lt.mu.Unlock()
		if !present {
			// Absent chip: no response ever arrives.
			return
		}

		respOp := op | CMD_OP_RESP_BIT
		hdr := uint32(respOp) | uint32(chip)<<8 | uint32(reg)<<16
		respBytes := []byte{
			respOp, chip, reg,
			uint8(data), uint8(data >> 8), uint8(data >> 16), uint8(data >> 24),
		}
		hdr |= uint32(Crc5(respBytes)) << 24
		lt.regs.PushCmdRx(hdr)
		lt.regs.PushCmdRx(data)
	}
}

// serviceWorkWord pops one work word while enabled and processes any
// completed frame.
func (lt *LoopbackTransport) serviceWorkWord() bool {
	if !lt.regs.Enabled() {
		return false
	}
	word, ok := lt.regs.PopWorkTx()
	if !ok {
		return false
	}

	lt.mu.Lock()
	if len(lt.workFrame) == 0 {
		// Frame length latches with the first word.
		lt.workWords = WORK_HEADER_WORDS + WORK_MIDSTATE_SIZE*MidstateCount(lt.regs.Ctrl())
	}
	lt.workFrame = append(lt.workFrame, word)
	if len(lt.workFrame) < lt.workWords {
		lt.mu.Unlock()
		return true
	}
	frame := lt.workFrame
	lt.workFrame = nil
	lt.mu.Unlock()

	lt.processWorkFrame(frame)
	return true
}

func (lt *LoopbackTransport) processWorkFrame(frame []uint32) {
	workID := frame[0] & LAST_WORK_ID_WIDTH_MASK
	lt.regs.SetLastWorkID(workID)

	// Deterministic fake solution: the chain always finds the same nonce
	// for the same frame, solving in midstate 0.
	nonce := SolutionNonce(workID, frame[WORK_HEADER_WORDS])
	lt.regs.PushWorkRx(nonce)
	lt.regs.PushWorkRx(workID)
}

// SolutionNonce derives the loopback chain's nonce for a work frame from
// the work ID and the first midstate word.
func SolutionNonce(workID, midstate0 uint32) uint32 {
	return (workID*0x9E3779B1 ^ midstate0) ^ 0x5EED1387
}

// Start launches the background pump. Command frames drain continuously;
// work frames are paced by WORK_TIME, read as microseconds per dispatch.
// Only instantiated for interactive/scripted runs - tests call Service().
func (lt *LoopbackTransport) Start() {
	go func() {
		defer close(lt.done)
		for {
			select {
			case <-lt.stopCh:
				return
			default:
			}

			progress := false
			for lt.serviceCmdWord() {
				progress = true
			}

			pace := time.Duration(lt.regs.WorkTimeValue()) * time.Microsecond
			if time.Since(lt.lastWork) >= pace {
				if lt.serviceWorkWord() {
					lt.lastWork = time.Now()
					progress = true
				}
			}

			if !progress {
				time.Sleep(200 * time.Microsecond)
			}
		}
	}()
}

// Stop terminates the background pump and waits for it to exit.
func (lt *LoopbackTransport) Stop() {
	lt.stopped.Do(func() {
		close(lt.stopCh)
	})
	<-lt.done
}

// ChipRegister returns a modeled chip register value (tests/monitor).
func (lt *LoopbackTransport) ChipRegister(chip, reg uint8) (uint32, bool) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	regs, ok := lt.chips[chip]
	if !ok {
		return 0, false
	}
	v, ok := regs[reg]
	return v, ok
}
