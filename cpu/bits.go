package cpu

// SignExtend widens the low 'bits' bits of value to 32 bits, replicating
// bit (bits-1) into the upper bits.
func SignExtend(value uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(value<<shift) >> shift
}

// ZeroExtend keeps the low 'bits' bits of value and clears the rest.
func ZeroExtend(value uint32, bits uint) uint32 {
	if bits >= 32 {
		return value
	}
	return value & ((1 << bits) - 1)
}

// Bool returns 1 for true and 0 for false.
func Bool(cond bool) int32 {
	if cond {
		return 1
	}
	return 0
}
