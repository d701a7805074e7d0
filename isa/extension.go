package isa

import (
	"io"
	"iter"
	"maps"
	"slices"

	"github.com/ezrec/rvsim/cpu"
	"github.com/ezrec/rvsim/internal"
)

// Extension is a named, ordered group of behaviors.
type Extension struct {
	name    string
	groups  [][]cpu.Behavior
	defines map[string]string
}

var _ cpu.Extension = (*Extension)(nil)
var _ cpu.Definer = (*Extension)(nil)

// New creates an extension from a list of behaviors.
func New(name string, behaviors ...cpu.Behavior) *Extension {
	ext := &Extension{name: name}
	if len(behaviors) > 0 {
		ext.Add(behaviors...)
	}
	return ext
}

// Add appends a group of behaviors to the extension.
func (ext *Extension) Add(behaviors ...cpu.Behavior) *Extension {
	ext.groups = append(ext.groups, behaviors)
	return ext
}

// Define sets an assembler equate published by the extension.
func (ext *Extension) Define(name string, value string) *Extension {
	if ext.defines == nil {
		ext.defines = map[string]string{name: value}
	} else {
		ext.defines[name] = value
	}
	return ext
}

// Name of the extension.
func (ext *Extension) Name() string {
	return ext.name
}

// Behaviors returns all behaviors, group by group.
func (ext *Extension) Behaviors() iter.Seq[cpu.Behavior] {
	seqs := make([]iter.Seq[cpu.Behavior], 0, len(ext.groups))
	for _, group := range ext.groups {
		seqs = append(seqs, slices.Values(group))
	}
	return internal.IterSeqConcat(seqs...)
}

// Defines returns the equates of the extension.
func (ext *Extension) Defines() iter.Seq2[string, string] {
	return maps.All(ext.defines)
}

// Default returns the base integer, multiply/divide and environment call
// extensions, in that order. Environment call output goes to sink.
func Default(sink io.Writer) []cpu.Extension {
	return []cpu.Extension{
		RV32I(),
		RV32M(),
		Ecall(sink),
	}
}
