package cpu

// Memory is a flat, little-endian, byte-addressable memory of fixed size.
//
// Every access checks its whole range before touching any byte, so a
// failed access has no effect.
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory of size bytes.
func NewMemory(size int) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the capacity in bytes.
func (mem *Memory) Size() int {
	return len(mem.data)
}

// Reset zeroes the memory.
func (mem *Memory) Reset() {
	clear(mem.data)
}

func (mem *Memory) check(addr uint32, size int) (err error) {
	if size < 0 || uint64(addr)+uint64(size) > uint64(len(mem.data)) {
		err = &ErrBounds{Address: addr, Size: size, Limit: len(mem.data)}
	}
	return
}

// Byte returns the byte at addr.
func (mem *Memory) Byte(addr uint32) (value byte, err error) {
	err = mem.check(addr, 1)
	if err != nil {
		return
	}

	value = mem.data[addr]
	return
}

// Load assembles size (1, 2 or 4) bytes at addr, least significant first.
// The result is zero-extended.
func (mem *Memory) Load(addr uint32, size int) (value uint32, err error) {
	if size != 1 && size != 2 && size != 4 {
		err = ErrMemoryAccess
		return
	}

	err = mem.check(addr, size)
	if err != nil {
		return
	}

	for n := range size {
		value |= uint32(mem.data[addr+uint32(n)]) << (8 * n)
	}

	return
}

// Store writes the low size (1, 2 or 4) bytes of value at addr, least
// significant first.
func (mem *Memory) Store(addr uint32, size int, value uint32) (err error) {
	if size != 1 && size != 2 && size != 4 {
		err = ErrMemoryAccess
		return
	}

	err = mem.check(addr, size)
	if err != nil {
		return
	}

	for n := range size {
		mem.data[addr+uint32(n)] = byte(value >> (8 * n))
	}

	return
}

// Write copies data to addr. Nothing is written unless all of it fits.
func (mem *Memory) Write(addr uint32, data []byte) (err error) {
	err = mem.check(addr, len(data))
	if err != nil {
		return
	}

	copy(mem.data[addr:], data)
	return
}

// Read returns a copy of size bytes at addr.
func (mem *Memory) Read(addr uint32, size int) (data []byte, err error) {
	err = mem.check(addr, size)
	if err != nil {
		return
	}

	data = make([]byte, size)
	copy(data, mem.data[addr:])
	return
}
