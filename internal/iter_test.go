package internal

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIterSeqConcat(t *testing.T) {
	assert := assert.New(t)

	seq := IterSeqConcat(slices.Values([]int{1, 2}), nil, slices.Values([]int{3}))
	assert.Equal([]int{1, 2, 3}, slices.Collect(seq))

	// Early stop must not panic or continue yielding.
	var got []int
	for val := range seq {
		got = append(got, val)
		if val == 2 {
			break
		}
	}
	assert.Equal([]int{1, 2}, got)
}

func TestIterSeq2Concat(t *testing.T) {
	assert := assert.New(t)

	a := maps.All(map[string]string{"A": "1", "B": "2"})
	b := maps.All(map[string]string{"B": "3"})

	var keys []string
	for key := range IterSeq2Concat(a, b) {
		keys = append(keys, key)
	}
	assert.Len(keys, 3)

	collected := maps.Collect(IterSeq2Concat(a, b))
	assert.Equal("3", collected["B"])
	assert.Equal("1", collected["A"])
}
