package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetUint32Slice_ExactLength(t *testing.T) {
	s, done := GetUint32Slice(10)
	defer done()
	assert.Len(t, s, 10)

	for i := range s {
		s[i] = uint32(i)
	}
}

func TestGetUint32Slice_ReusesCapacity(t *testing.T) {
	s, done := GetUint32Slice(100)
	cap1 := cap(s)
	done()

	s2, done2 := GetUint32Slice(50)
	defer done2()
	assert.LessOrEqual(t, 50, cap(s2))
	_ = cap1
}

func TestGetIntSlice_ExactLength(t *testing.T) {
	s, done := GetIntSlice(5)
	defer done()
	assert.Len(t, s, 5)
}
