package types

import (
	"encoding/binary"
	"fmt"
	"math"

	"fortio.org/safecast"
)

// Addr is a byte address inside a Memory arena. NullAddr never refers to
// valid storage.
type Addr uint64

// NullAddr is the zero address.
const NullAddr Addr = 0

// memoryReserved keeps the first bytes of every arena unused so that no
// allocation ever returns NullAddr.
const memoryReserved = 16

// Memory is a little-endian byte arena that stands in for the raw storage
// the generated code operates on. Descriptors write initial values into it
// and dyn headers store Addr values that point back into it.
type Memory struct {
	data []byte
}

// NewMemory creates an arena with an optional capacity hint.
func NewMemory(capacity int) *Memory {
	if capacity < memoryReserved {
		capacity = 256
	}
	return &Memory{data: make([]byte, memoryReserved, capacity)}
}

// Alloc reserves size zeroed bytes aligned to align and returns their address.
func (m *Memory) Alloc(size, align int) (Addr, error) {
	if size < 0 {
		return NullAddr, fmt.Errorf("memory: negative allocation size %d", size)
	}
	if align <= 0 {
		align = 1
	}
	start := roundUp(len(m.data), align)
	end := start + size
	if end > cap(m.data) {
		grown := make([]byte, len(m.data), max(2*cap(m.data), end))
		copy(grown, m.data)
		m.data = grown
	}
	m.data = m.data[:end]
	clear(m.data[start:end])
	addr, err := safecast.Conv[Addr](start)
	if err != nil {
		return NullAddr, fmt.Errorf("memory: address overflow: %w", err)
	}
	return addr, nil
}

// AllocType reserves storage for a finalised descriptor.
func (m *Memory) AllocType(t ComplexType) (Addr, error) {
	size, err := t.Size()
	if err != nil {
		return NullAddr, err
	}
	align, err := t.Alignment()
	if err != nil {
		return NullAddr, err
	}
	return m.Alloc(size, align)
}

// Len is the number of bytes in use, including the reserved prefix.
func (m *Memory) Len() int { return len(m.data) }

// Bytes returns a view of n bytes at addr.
func (m *Memory) Bytes(addr Addr, n int) ([]byte, error) {
	start, err := safecast.Conv[int](addr)
	if err != nil {
		return nil, fmt.Errorf("memory: address %#x out of range: %w", addr, err)
	}
	if addr == NullAddr || n < 0 || start+n > len(m.data) {
		return nil, &Error{Kind: ErrOutOfBounds, Detail: fmt.Sprintf("access of %d bytes at %#x", n, addr)}
	}
	return m.data[start : start+n], nil
}

// Zero clears n bytes at addr.
func (m *Memory) Zero(addr Addr, n int) error {
	b, err := m.Bytes(addr, n)
	if err != nil {
		return err
	}
	clear(b)
	return nil
}

func (m *Memory) Int32(addr Addr) (int32, error) {
	b, err := m.Bytes(addr, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil //nolint:gosec // two's complement reinterpretation
}

func (m *Memory) PutInt32(addr Addr, v int32) error {
	b, err := m.Bytes(addr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, uint32(v)) //nolint:gosec // two's complement reinterpretation
	return nil
}

func (m *Memory) Float32(addr Addr) (float32, error) {
	b, err := m.Bytes(addr, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (m *Memory) PutFloat32(addr Addr, v float32) error {
	b, err := m.Bytes(addr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return nil
}

func (m *Memory) Float64(addr Addr) (float64, error) {
	b, err := m.Bytes(addr, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (m *Memory) PutFloat64(addr Addr, v float64) error {
	b, err := m.Bytes(addr, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	return nil
}

// Address reads a stored pointer.
func (m *Memory) Address(addr Addr) (Addr, error) {
	b, err := m.Bytes(addr, PointerSize)
	if err != nil {
		return NullAddr, err
	}
	return Addr(binary.LittleEndian.Uint64(b)), nil
}

// PutAddress stores a pointer.
func (m *Memory) PutAddress(addr, v Addr) error {
	b, err := m.Bytes(addr, PointerSize)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, uint64(v))
	return nil
}

// Offset adds a byte offset to an address.
func (a Addr) Offset(delta int) Addr {
	if delta < 0 {
		return a - Addr(-delta)
	}
	return a + Addr(delta)
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}
