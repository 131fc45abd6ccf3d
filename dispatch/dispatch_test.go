package dispatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vale-bio/gnzip/datatype/me23"
	"github.com/vale-bio/gnzip/file"
	"github.com/vale-bio/gnzip/section"
	"github.com/vale-bio/gnzip/vblock"
)

func TestDispatcher_RunMergesAndEmitsInOrder(t *testing.T) {
	input := strings.Join([]string{
		"rs1\t1\t100\tAA",
		"rs2\t1\t200\tAG",
		"rs3\t1\t300\tGG",
		"rs4\t2\t50\tCC",
	}, "\n")

	f := file.New(section.DataTypeMe23)
	d := New(f, me23.New(), 2, 1, 0) // one line per vblock forces 4 vblocks across 2 workers

	var order []uint32
	err := d.Run(strings.NewReader(input), func(vb *vblock.VBlock) error {
		order = append(order, vb.VBlockI)

		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []uint32{1, 2, 3, 4}, order)
}
