package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vale-bio/gnzip/datatype"
	"github.com/vale-bio/gnzip/datatype/fasta"
	"github.com/vale-bio/gnzip/datatype/fastq"
	"github.com/vale-bio/gnzip/datatype/gff3"
	"github.com/vale-bio/gnzip/datatype/me23"
	"github.com/vale-bio/gnzip/datatype/sam"
	"github.com/vale-bio/gnzip/datatype/vcf"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/section"
)

// ErrDataType marks an unrecognized or ambiguous --type value or file
// extension.
var ErrDataType = fmt.Errorf("%w: unrecognized data type", errs.ErrConfig)

type registryEntry struct {
	dataType section.DataType
	impl     datatype.Type
	exts     []string
}

var registry = []registryEntry{
	{section.DataTypeVCF, vcf.New(nil), []string{".vcf"}},
	{section.DataTypeSAM, sam.New(), []string{".sam"}},
	{section.DataTypeFASTQ, fastq.New(), []string{".fastq", ".fq"}},
	{section.DataTypeFASTA, fasta.New(), []string{".fasta", ".fa"}},
	{section.DataTypeGFF3, gff3.New(), []string{".gff3", ".gff"}},
	{section.DataTypeMe23, me23.New(), []string{".txt", ".23andme"}},
}

// resolveByName looks up a data type by its CLI --type flag value (case
// insensitive, matching datatype.Type.Name()).
func resolveByName(name string) (section.DataType, datatype.Type, error) {
	for _, e := range registry {
		if strings.EqualFold(e.impl.Name(), name) {
			return e.dataType, e.impl, nil
		}
	}

	return 0, nil, fmt.Errorf("%w: %q", ErrDataType, name)
}

// resolveByPath infers a data type from path's extension, stripping a
// trailing .gnz first so "reads.fastq.gnz" resolves the same way
// "reads.fastq" does.
func resolveByPath(path string) (section.DataType, datatype.Type, error) {
	base := strings.TrimSuffix(path, containerExt)
	ext := strings.ToLower(filepath.Ext(base))

	for _, e := range registry {
		for _, want := range e.exts {
			if ext == want {
				return e.dataType, e.impl, nil
			}
		}
	}

	return 0, nil, fmt.Errorf("%w: can't infer a data type from %q; pass --type", ErrDataType, path)
}

// resolveTypeArgs resolves a data type from an explicit --type flag value
// if non-empty, falling back to inferring it from path's extension.
func resolveTypeArgs(typeName, path string) (section.DataType, datatype.Type, error) {
	if typeName != "" {
		return resolveByName(typeName)
	}

	return resolveByPath(path)
}

func implForDataType(dt section.DataType) (datatype.Type, error) {
	for _, e := range registry {
		if e.dataType == dt {
			return e.impl, nil
		}
	}

	return nil, fmt.Errorf("%w: container data type %d", ErrDataType, dt)
}

// containerExt is the filename suffix gnzip appends to compressed output.
const containerExt = ".gnz"
