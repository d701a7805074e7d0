// Package isa provides the instruction behaviors of the RV32I base integer
// set, the M multiply/divide set, and a minimal environment-call set, each
// packaged as a cpu.Extension.
//
// Every behavior that does not branch advances the program counter by 4
// itself.
package isa
