// Package internal holds small helpers shared by the rvsim packages.
package internal

import (
	"iter"
)

// IterSeqConcat yields every value of each sequence in turn.
// Used to build a behavior catalog from an ordered list of extensions.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			if seq == nil {
				continue
			}
			for val := range seq {
				if !yield(val) {
					return
				}
			}
		}
	}
}

// IterSeq2Concat yields every pair of each sequence in turn.
// Later sequences may repeat keys of earlier ones; consumers collecting into
// a map therefore see the last definition win.
func IterSeq2Concat[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			if seq == nil {
				continue
			}
			for key, val := range seq {
				if !yield(key, val) {
					return
				}
			}
		}
	}
}
