// chain_fifo.go - Bounded word FIFOs backing the chain I/O register interface

/*
(c) 2025 - 2026 ChainIO Engine contributors
https://github.com/openminer/chainio
License: GPLv3 or later
*/

package main

// WordFIFO is a bounded queue of 32-bit words with hardware FIFO semantics:
// pushing a full FIFO silently drops the word, popping an empty FIFO returns
// the last value that crossed the output stage without changing state. The
// empty/full flags feeding STAT_REG are derived from occupancy on demand,
// never stored.
//
// WordFIFO carries no lock of its own. All access is serialized by the
// owning ChainRegFile, which guards register traffic and transport-side
// push/pop under one mutex.
type WordFIFO struct {
	buf   []uint32
	head  int // next pop position
	tail  int // next push position
	count int
	stale uint32 // last word seen at the output stage
}

// NewWordFIFO creates a FIFO holding up to depth 32-bit words.
func NewWordFIFO(depth int) *WordFIFO {
	return &WordFIFO{buf: make([]uint32, depth)}
}

// Push appends a word. A push against a full FIFO is a defined no-op: the
// word is lost and occupancy is unchanged, mirroring the unguarded hardware
// write port.
func (f *WordFIFO) Push(value uint32) {
	if f.count >= len(f.buf) {
		return
	}
	f.buf[f.tail] = value
	f.tail = (f.tail + 1) % len(f.buf)
	f.count++
}

// Pop removes and returns the head word. Popping an empty FIFO returns the
// stale output value and changes nothing, mirroring hardware underflow.
func (f *WordFIFO) Pop() uint32 {
	if f.count == 0 {
		return f.stale
	}
	v := f.buf[f.head]
	f.head = (f.head + 1) % len(f.buf)
	f.count--
	f.stale = v
	return v
}

// Peek returns the head word without popping. Empty FIFOs peek stale data.
func (f *WordFIFO) Peek() uint32 {
	if f.count == 0 {
		return f.stale
	}
	return f.buf[f.head]
}

// Len returns the current occupancy in words.
func (f *WordFIFO) Len() int {
	return f.count
}

// Cap returns the FIFO depth in words.
func (f *WordFIFO) Cap() int {
	return len(f.buf)
}

// Empty reports whether the FIFO holds no words.
func (f *WordFIFO) Empty() bool {
	return f.count == 0
}

// Full reports whether the FIFO is at capacity.
func (f *WordFIFO) Full() bool {
	return f.count >= len(f.buf)
}
