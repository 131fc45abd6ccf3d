package dictid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake_StringShowsPaddedTag(t *testing.T) {
	id := Make("CHROM")
	// "CHROM" -> pad with second char 'H': "CHROMHHH"
	assert.Equal(t, "CHROMHHH", id.String())
}

func TestMake_PadsShortTags(t *testing.T) {
	id := Make("GT")
	// "GT" -> pad with second char 'T': "GTTTTTTT"
	assert.Equal(t, "GTTTTTTT", id.String())
}

func TestMake_SingleCharTagPadsWithItself(t *testing.T) {
	id := Make("X")
	assert.Equal(t, "XXXXXXXX", id.String())
}

func TestMake_Equality(t *testing.T) {
	a := Make("POS")
	b := Make("POS")
	assert.Equal(t, a, b)
}

func TestTagBits_FieldType1Type2(t *testing.T) {
	base := Make("INFO")

	field := base.Field()
	require.Equal(t, byte(0x00), field.Tag())

	t2 := base.Type2()
	require.Equal(t, byte(0x40), t2.Tag())

	t1 := base.Type1()
	require.Equal(t, byte(0xC0), t1.Tag())

	// field/type1 corrupt the natural ASCII top bits; only Printable
	// restores the tag-free 01 pattern that round-trips through String.
	assert.NotEqual(t, t1, t2)
	assert.NotEqual(t, field, t2)
}

func TestPrintable_RestoresNaturalAsciiBits(t *testing.T) {
	id := Make("AF").Type1()
	printable := id.Printable()
	assert.Equal(t, byte(0x40), printable.Tag())
	assert.Equal(t, "AFFFFFFF", printable.String())
}

func TestType2_IsNoOpOnUppercaseAsciiTag(t *testing.T) {
	// Uppercase ASCII letters already carry the 01 top-bit pattern, so
	// tagging a plain Make() result as Type2 must not change its bytes.
	id := Make("DP")
	assert.Equal(t, id, id.Type2())
}
