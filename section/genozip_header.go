package section

import (
	"fmt"
	"time"

	"github.com/vale-bio/gnzip/endian"
	"github.com/vale-bio/gnzip/errs"
)

// DataType identifies which segmenter vtable produced a container.
type DataType uint8

const (
	DataTypeVCF DataType = iota + 1
	DataTypeSAM
	DataTypeFASTQ
	DataTypeFASTA
	DataTypeGFF3
	DataTypeMe23
)

// GenozipHeader is the whole-container trailer: magic,
// version, the data type that segmented it, component and line counts, the
// whole-file MD5 (or zero if per-component MD5 only), and creation time.
// Encryption is reserved at byte 0 of Flags and is always 0: this format
// never encrypts.
type GenozipHeader struct {
	Version        uint8
	DataType       DataType
	Flags          uint8
	ComponentCount uint32
	PlaintextSize  uint64
	LineCount      uint64
	WholeMD5       [16]byte
	CreatedAtUnix  int64
}

// Bytes serializes h into a GenozipHeaderSize-byte little-endian buffer.
func (h *GenozipHeader) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	b := make([]byte, GenozipHeaderSize)
	engine.PutUint32(b[0:4], MagicContainer)
	b[4] = h.Version
	b[5] = uint8(h.DataType)
	b[6] = h.Flags
	engine.PutUint32(b[8:12], h.ComponentCount)
	engine.PutUint64(b[12:20], h.PlaintextSize)
	engine.PutUint64(b[20:28], h.LineCount)
	copy(b[28:44], h.WholeMD5[:])
	engine.PutUint64(b[44:52], uint64(h.CreatedAtUnix)) //nolint:gosec

	return b
}

// Parse reads a GenozipHeader from the first GenozipHeaderSize bytes of
// data. A version older than ContainerVersion is rejected rather than
// emulated: pre-v5 containers use an incompatible section layout.
func (h *GenozipHeader) Parse(data []byte) error {
	if len(data) < GenozipHeaderSize {
		return fmt.Errorf("%w: genozip header needs %d bytes, got %d", errs.ErrIntegrity, GenozipHeaderSize, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	magic := engine.Uint32(data[0:4])
	if magic != MagicContainer {
		return fmt.Errorf("%w: bad container magic %#x", errs.ErrIntegrity, magic)
	}

	h.Version = data[4]
	if h.Version < ContainerVersion {
		return fmt.Errorf("%w: container version %d is pre-v%d and is not supported", errs.ErrIntegrity, h.Version, ContainerVersion)
	}

	h.DataType = DataType(data[5])
	h.Flags = data[6]
	h.ComponentCount = engine.Uint32(data[8:12])
	h.PlaintextSize = engine.Uint64(data[12:20])
	h.LineCount = engine.Uint64(data[20:28])
	copy(h.WholeMD5[:], data[28:44])
	h.CreatedAtUnix = int64(engine.Uint64(data[44:52])) //nolint:gosec

	return nil
}

// ParseGenozipHeader parses a GenozipHeader from data, returning the struct
// directly.
func ParseGenozipHeader(data []byte) (GenozipHeader, error) {
	var h GenozipHeader
	if err := h.Parse(data); err != nil {
		return GenozipHeader{}, err
	}

	return h, nil
}

// NewGenozipHeader creates a header stamped with the current container
// version and creation time.
func NewGenozipHeader(dataType DataType, createdAt time.Time) *GenozipHeader {
	return &GenozipHeader{
		Version:       ContainerVersion,
		DataType:      dataType,
		CreatedAtUnix: createdAt.Unix(),
	}
}

// CreatedAt returns CreatedAtUnix as a time.Time.
func (h *GenozipHeader) CreatedAt() time.Time {
	return time.Unix(h.CreatedAtUnix, 0)
}
