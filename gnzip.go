// Package gnzip is a domain-specialized compressor for genomic text
// formats: VCF, SAM, FASTQ, FASTA, GFF3 and 23andMe raw-data exports. It
// segments each format's columns into per-column dictionaries, encodes
// repeated values as small base-250 indices and deltas against the
// previous line, and reassembles the original text byte-for-byte on
// decompression.
//
// This file collects the package's convenience constructors: thin
// wrappers around the container and datatype packages that cover the
// common "compress this file" / "decompress this container" paths without
// requiring callers to pick a datatype.Type constructor themselves.
//
// Example (compress a VCF file):
//
//	in, _ := os.Open("variants.vcf")
//	out, _ := os.Create("variants.vcf.gnz")
//	defer in.Close()
//	defer out.Close()
//
//	hdr, err := gnzip.CompressVCF(out, in, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d lines, %d bytes plaintext\n", hdr.LineCount, hdr.PlaintextSize)
//
// Example (decompress any supported container back to text):
//
//	in, _ := os.Open("variants.vcf.gnz")
//	out, _ := os.Create("variants.vcf")
//	defer in.Close()
//	defer out.Close()
//
//	err := gnzip.Decompress(in, out, gnzip.FormatVCF)
package gnzip

import (
	"fmt"
	"io"

	"github.com/vale-bio/gnzip/container"
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

// Format identifies one of the supported genomic text formats, the
// package-level equivalent of section.DataType paired with its
// datatype.Type constructor.
type Format uint8

const (
	FormatVCF Format = iota + 1
	FormatSAM
	FormatFASTQ
	FormatFASTA
	FormatGFF3
	Format23andMe
)

// impl constructs the datatype.Type for f. sampleNames is only consulted
// for FormatVCF, where it names the per-sample genotype columns; pass nil
// for every other format.
func (f Format) impl(sampleNames []string) (section.DataType, datatype.Type, error) {
	switch f {
	case FormatVCF:
		return section.DataTypeVCF, vcf.New(sampleNames), nil
	case FormatSAM:
		return section.DataTypeSAM, sam.New(), nil
	case FormatFASTQ:
		return section.DataTypeFASTQ, fastq.New(), nil
	case FormatFASTA:
		return section.DataTypeFASTA, fasta.New(), nil
	case FormatGFF3:
		return section.DataTypeGFF3, gff3.New(), nil
	case Format23andMe:
		return section.DataTypeMe23, me23.New(), nil
	default:
		return 0, nil, fmt.Errorf("%w: unrecognized format %d", errs.ErrConfig, f)
	}
}

// Compress segments r as f-formatted text and writes a complete container
// to w. sampleNames names VCF's per-sample genotype columns and is
// ignored for every other format.
//
// Parameters:
//   - w: destination for the compressed container
//   - r: source plaintext, read to EOF
//   - sampleNames: VCF sample column names; nil for non-VCF formats or
//     VCF files with no genotype columns
//   - opts: encode tuning (container.WithWorkers, container.WithLinesPerVBlock,
//     container.WithProfiler); omit for the defaults
//
// Returns the trailer written to w, which callers can inspect for the
// recorded line and plaintext byte counts.
//
// Example:
//
//	hdr, err := gnzip.Compress(out, in, gnzip.FormatSAM, nil, container.WithWorkers(4))
func Compress(w io.Writer, r io.Reader, f Format, sampleNames []string, opts ...container.EncodeOption) (*section.GenozipHeader, error) {
	dt, dtImpl, err := f.impl(sampleNames)
	if err != nil {
		return nil, err
	}

	return container.Encode(w, dt, dtImpl, r, opts...)
}

// CompressVCF compresses a VCF file. sampleNames lists the genotype
// column names in file order; pass nil for a VCF with no sample columns.
//
// Example:
//
//	hdr, err := gnzip.CompressVCF(out, in, []string{"NA12878", "NA12891"})
func CompressVCF(w io.Writer, r io.Reader, sampleNames []string, opts ...container.EncodeOption) (*section.GenozipHeader, error) {
	return Compress(w, r, FormatVCF, sampleNames, opts...)
}

// CompressSAM compresses a SAM alignment file.
//
// Example:
//
//	hdr, err := gnzip.CompressSAM(out, in)
func CompressSAM(w io.Writer, r io.Reader, opts ...container.EncodeOption) (*section.GenozipHeader, error) {
	return Compress(w, r, FormatSAM, nil, opts...)
}

// CompressFASTQ compresses a FASTQ read file.
//
// Example:
//
//	hdr, err := gnzip.CompressFASTQ(out, in)
func CompressFASTQ(w io.Writer, r io.Reader, opts ...container.EncodeOption) (*section.GenozipHeader, error) {
	return Compress(w, r, FormatFASTQ, nil, opts...)
}

// CompressFASTA compresses a FASTA sequence file.
//
// Example:
//
//	hdr, err := gnzip.CompressFASTA(out, in)
func CompressFASTA(w io.Writer, r io.Reader, opts ...container.EncodeOption) (*section.GenozipHeader, error) {
	return Compress(w, r, FormatFASTA, nil, opts...)
}

// CompressGFF3 compresses a GFF3 annotation file.
//
// Example:
//
//	hdr, err := gnzip.CompressGFF3(out, in)
func CompressGFF3(w io.Writer, r io.Reader, opts ...container.EncodeOption) (*section.GenozipHeader, error) {
	return Compress(w, r, FormatGFF3, nil, opts...)
}

// Compress23andMe compresses a 23andMe raw-data export.
//
// Example:
//
//	hdr, err := gnzip.Compress23andMe(out, in)
func Compress23andMe(w io.Writer, r io.Reader, opts ...container.EncodeOption) (*section.GenozipHeader, error) {
	return Compress(w, r, Format23andMe, nil, opts...)
}

// Decompress reconstructs the original plaintext from r, a container
// previously written by Compress, and writes it to w. f must match the
// format the container was compressed with; VCF containers need no
// sampleNames here since the dictionary segments already name the sample
// columns.
//
// Decompress reads the whole of r, including seeking to its trailer, so r
// must support io.Seeker in addition to io.Reader.
//
// Example:
//
//	err := gnzip.Decompress(in, out, gnzip.FormatFASTQ)
func Decompress(r io.ReadSeeker, w io.Writer, f Format, opts ...container.DecodeOption) error {
	_, dtImpl, err := f.impl(nil)
	if err != nil {
		return err
	}

	return container.ReconstructAll(r, dtImpl, w, opts...)
}

// DecompressVCF reconstructs a VCF file previously compressed with
// CompressVCF.
//
// Example:
//
//	err := gnzip.DecompressVCF(in, out)
func DecompressVCF(r io.ReadSeeker, w io.Writer) error {
	return Decompress(r, w, FormatVCF)
}

// DecompressSAM reconstructs a SAM file previously compressed with
// CompressSAM.
//
// Example:
//
//	err := gnzip.DecompressSAM(in, out)
func DecompressSAM(r io.ReadSeeker, w io.Writer) error {
	return Decompress(r, w, FormatSAM)
}

// DecompressFASTQ reconstructs a FASTQ file previously compressed with
// CompressFASTQ.
//
// Example:
//
//	err := gnzip.DecompressFASTQ(in, out)
func DecompressFASTQ(r io.ReadSeeker, w io.Writer) error {
	return Decompress(r, w, FormatFASTQ)
}

// DecompressFASTA reconstructs a FASTA file previously compressed with
// CompressFASTA.
//
// Example:
//
//	err := gnzip.DecompressFASTA(in, out)
func DecompressFASTA(r io.ReadSeeker, w io.Writer) error {
	return Decompress(r, w, FormatFASTA)
}

// DecompressGFF3 reconstructs a GFF3 file previously compressed with
// CompressGFF3.
//
// Example:
//
//	err := gnzip.DecompressGFF3(in, out)
func DecompressGFF3(r io.ReadSeeker, w io.Writer) error {
	return Decompress(r, w, FormatGFF3)
}

// Decompress23andMe reconstructs a 23andMe export previously compressed
// with Compress23andMe.
//
// Example:
//
//	err := gnzip.Decompress23andMe(in, out)
func Decompress23andMe(r io.ReadSeeker, w io.Writer) error {
	return Decompress(r, w, Format23andMe)
}
