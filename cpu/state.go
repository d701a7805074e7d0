package cpu

// State is the architectural state of one hart.
type State struct {
	Register [32]int32 // Register file; x0 is forced to 0 after every step.
	Pc       uint32    // Program counter.
	Halt     bool      // Sticky halt flag.
	Memory   *Memory   // Main memory.
}

// X returns register r as signed.
func (st *State) X(r uint8) int32 {
	return st.Register[r&0x1f]
}

// U returns register r as unsigned.
func (st *State) U(r uint8) uint32 {
	return uint32(st.Register[r&0x1f])
}

// SetX writes register r. Writes to x0 are allowed; the engine clears x0
// after the step.
func (st *State) SetX(r uint8, value int32) {
	st.Register[r&0x1f] = value
}

// SetU writes register r from an unsigned value.
func (st *State) SetU(r uint8, value uint32) {
	st.Register[r&0x1f] = int32(value)
}

// Next advances the program counter past the current instruction.
func (st *State) Next() {
	st.Pc += 4
}
