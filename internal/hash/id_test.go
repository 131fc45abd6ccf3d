package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_Deterministic(t *testing.T) {
	a := String([]byte("chr1"))
	b := String([]byte("chr1"))
	assert.Equal(t, a, b)
}

func TestString_DifferentInputsDiffer(t *testing.T) {
	a := String([]byte("chr1"))
	b := String([]byte("chr2"))
	assert.NotEqual(t, a, b)
}
