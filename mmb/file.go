package mmb

import (
	"strconv"

	"github.com/wippyai/mmbverify/errors"
)

// File is a parsed MMB certificate. Table entries and streams are decoded
// lazily from the underlying buffer.
type File struct {
	data   []byte
	Header Header
}

// Open parses the header of data and checks that every section it points
// to lies inside the buffer.
func Open(data []byte) (*File, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Version != Version {
		return nil, errors.New(errors.PhaseHeader, errors.KindUnsupported).
			Path("version").
			Value(h.Version).
			Detail("unsupported version %d, want %d", h.Version, Version).
			Build()
	}
	f := &File{data: data, Header: h}
	if err := f.checkSections(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) checkSections() error {
	h := f.Header
	size := uint64(len(f.data))

	if int(h.NumSorts) > MaxSorts {
		return errors.Overflow(errors.PhaseHeader, []string{"num_sorts"}, h.NumSorts, strconv.Itoa(MaxSorts))
	}
	if uint64(h.SortDataStart)+uint64(h.NumSorts) > size {
		return sectionError("sorts", uint64(h.SortDataStart), uint64(h.NumSorts), size)
	}
	if uint64(h.TermsStart)+uint64(h.NumTerms)*termEntrySize > size {
		return sectionError("terms", uint64(h.TermsStart), uint64(h.NumTerms)*termEntrySize, size)
	}
	if uint64(h.ThmsStart)+uint64(h.NumThms)*thmEntrySize > size {
		return sectionError("thms", uint64(h.ThmsStart), uint64(h.NumThms)*thmEntrySize, size)
	}
	if uint64(h.ProofStreamStart) >= size {
		return sectionError("proof_stream", uint64(h.ProofStreamStart), 1, size)
	}
	if h.IndexStart != 0 && h.IndexStart >= size {
		return sectionError("index", h.IndexStart, 1, size)
	}
	return nil
}

func sectionError(section string, start, length, size uint64) error {
	return errors.New(errors.PhaseHeader, errors.KindOutOfBounds).
		Path(section).
		Value(start).
		Detail("section [%d, %d) outside file of %d bytes", start, start+length, size).
		Build()
}

// SortMods returns the modifier byte of sort i.
func (f *File) SortMods(i int) (SortMods, error) {
	if i < 0 || i >= int(f.Header.NumSorts) {
		return 0, errors.NotFound(errors.PhaseOutline, "sort", i)
	}
	return SortMods(f.data[int(f.Header.SortDataStart)+i]), nil
}

// Statements returns an iterator over the declaration stream.
func (f *File) Statements() *StmtIter {
	return &StmtIter{buf: f.data, pos: int(f.Header.ProofStreamStart)}
}
