package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vale-bio/gnzip/section"
)

func TestResolveByName_CaseInsensitive(t *testing.T) {
	dt, impl, err := resolveByName("vcf")
	require.NoError(t, err)
	assert.Equal(t, section.DataTypeVCF, dt)
	assert.Equal(t, "VCF", impl.Name())
}

func TestResolveByPath_InfersFromExtensionAndStripsContainerSuffix(t *testing.T) {
	dt, _, err := resolveByPath("sample.fastq.gnz")
	require.NoError(t, err)
	assert.Equal(t, section.DataTypeFASTQ, dt)
}

func TestResolveByPath_UnknownExtension(t *testing.T) {
	_, _, err := resolveByPath("sample.bin")
	require.Error(t, err)
}

func TestResolveTypeArgs_ExplicitTypeWinsOverPath(t *testing.T) {
	dt, _, err := resolveTypeArgs("SAM", "sample.vcf")
	require.NoError(t, err)
	assert.Equal(t, section.DataTypeSAM, dt)
}
