package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDGenerator_Sequence(t *testing.T) {
	gen := NewFixedIDGenerator("run")

	assert.Equal(t, "run-0001", gen.Generate())
	assert.Equal(t, "run-0002", gen.Generate())
	assert.Equal(t, "run-0003", gen.Generate())
}

func TestFixedIDGenerator_DefaultPrefix(t *testing.T) {
	gen := NewFixedIDGenerator("")
	assert.Equal(t, "report-0001", gen.Generate())
}

func TestFixedIDGenerator_IndependentInstances(t *testing.T) {
	a := NewFixedIDGenerator("x")
	b := NewFixedIDGenerator("x")

	a.Generate()
	a.Generate()
	assert.Equal(t, "x-0001", b.Generate())
}
