package section

import (
	"fmt"

	"github.com/vale-bio/gnzip/dictid"
	"github.com/vale-bio/gnzip/endian"
	"github.com/vale-bio/gnzip/errs"
)

// AliasEntry declares that Alias's data is read directly from Primary's
// context on the reconstruction side (e.g. INFO/END aliasing POS).
type AliasEntry struct {
	Alias   dictid.ID
	Primary dictid.ID
}

// Bytes serializes the entry into AliasEntrySize bytes.
func (e AliasEntry) Bytes() []byte {
	engine := endian.GetLittleEndianEngine()

	b := make([]byte, AliasEntrySize)
	engine.PutUint64(b[0:8], uint64(e.Alias))
	engine.PutUint64(b[8:16], uint64(e.Primary))

	return b
}

// ParseAliasEntry parses one AliasEntry from data.
func ParseAliasEntry(data []byte) (AliasEntry, error) {
	if len(data) < AliasEntrySize {
		return AliasEntry{}, fmt.Errorf("%w: alias entry needs %d bytes, got %d", errs.ErrIntegrity, AliasEntrySize, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	return AliasEntry{
		Alias:   dictid.ID(engine.Uint64(data[0:8])),
		Primary: dictid.ID(engine.Uint64(data[8:16])),
	}, nil
}

// AliasTable is the file-global table of alias->primary context mappings,
// written once as a SectionAlias at file close.
type AliasTable struct {
	entries map[dictid.ID]dictid.ID
}

// NewAliasTable creates an empty alias table.
func NewAliasTable() *AliasTable {
	return &AliasTable{entries: make(map[dictid.ID]dictid.ID)}
}

// Declare records that alias routes to primary.
func (t *AliasTable) Declare(alias, primary dictid.ID) {
	t.entries[alias] = primary
}

// Resolve returns the primary dict_id for id, or id itself if it is not an
// alias.
func (t *AliasTable) Resolve(id dictid.ID) dictid.ID {
	if primary, ok := t.entries[id]; ok {
		return primary
	}

	return id
}

// Bytes serializes every entry, in no particular order, as one
// concatenated byte slice.
func (t *AliasTable) Bytes() []byte {
	out := make([]byte, 0, len(t.entries)*AliasEntrySize)
	for alias, primary := range t.entries {
		out = append(out, AliasEntry{Alias: alias, Primary: primary}.Bytes()...)
	}

	return out
}

// ParseAliasTable parses a concatenated run of AliasEntry records.
func ParseAliasTable(data []byte) (*AliasTable, error) {
	if len(data)%AliasEntrySize != 0 {
		return nil, fmt.Errorf("%w: alias table size %d is not a multiple of %d", errs.ErrIntegrity, len(data), AliasEntrySize)
	}

	t := NewAliasTable()
	for off := 0; off < len(data); off += AliasEntrySize {
		entry, err := ParseAliasEntry(data[off : off+AliasEntrySize])
		if err != nil {
			return nil, err
		}
		t.Declare(entry.Alias, entry.Primary)
	}

	return t, nil
}
