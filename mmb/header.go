package mmb

import (
	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb/internal/binary"
)

// Header is the fixed preamble of an MMB file.
type Header struct {
	Magic            uint32
	Version          uint8
	NumSorts         uint8
	Reserved         uint16
	NumTerms         uint32
	NumThms          uint32
	TermsStart       uint32
	ThmsStart        uint32
	ProofStreamStart uint32
	Reserved2        uint32
	IndexStart       uint64 // 0 when the file has no index

	// SortDataStart is where the sort flag bytes begin. It is the number
	// of bytes consumed by ParseHeader, not a stored field.
	SortDataStart uint32
}

// ParseHeader reads the preamble from the start of buf.
func ParseHeader(buf []byte) (Header, error) {
	r := binary.NewReader(buf)
	var h Header
	var err error

	if h.Magic, err = r.ReadU32(); err != nil {
		return Header{}, truncated(r, "magic", 4)
	}
	if h.Magic != Magic {
		return Header{}, errors.New(errors.PhaseHeader, errors.KindInvalidData).
			Path("magic").
			Value(h.Magic).
			Detail("bad magic %#08x, want %#08x", h.Magic, Magic).
			Build()
	}
	if h.Version, err = r.ReadU8(); err != nil {
		return Header{}, truncated(r, "version", 1)
	}
	if h.NumSorts, err = r.ReadU8(); err != nil {
		return Header{}, truncated(r, "num_sorts", 1)
	}
	if h.Reserved, err = r.ReadU16(); err != nil {
		return Header{}, truncated(r, "reserved", 2)
	}
	if h.NumTerms, err = r.ReadU32(); err != nil {
		return Header{}, truncated(r, "num_terms", 4)
	}
	if h.NumThms, err = r.ReadU32(); err != nil {
		return Header{}, truncated(r, "num_thms", 4)
	}
	if h.TermsStart, err = r.ReadU32(); err != nil {
		return Header{}, truncated(r, "terms_start", 4)
	}
	if h.ThmsStart, err = r.ReadU32(); err != nil {
		return Header{}, truncated(r, "thms_start", 4)
	}
	if h.ProofStreamStart, err = r.ReadU32(); err != nil {
		return Header{}, truncated(r, "proof_stream_start", 4)
	}
	if h.Reserved2, err = r.ReadU32(); err != nil {
		return Header{}, truncated(r, "reserved2", 4)
	}
	if h.IndexStart, err = r.ReadU64(); err != nil {
		return Header{}, truncated(r, "index_start", 8)
	}
	h.SortDataStart = uint32(r.Position())
	return h, nil
}

func truncated(r *binary.Reader, field string, need int) error {
	e := errors.Truncated(errors.PhaseHeader, field, need, r.Len())
	e.Offset = r.Position()
	return e
}

// AppendTo appends the 40-byte serialization of h to dst. SortDataStart is
// not written.
func (h Header) AppendTo(dst []byte) []byte {
	w := binary.NewWriter()
	w.WriteBytes(dst)
	w.U32(h.Magic)
	w.Byte(h.Version)
	w.Byte(h.NumSorts)
	w.U16(h.Reserved)
	w.U32(h.NumTerms)
	w.U32(h.NumThms)
	w.U32(h.TermsStart)
	w.U32(h.ThmsStart)
	w.U32(h.ProofStreamStart)
	w.U32(h.Reserved2)
	w.U64(h.IndexStart)
	return w.Bytes()
}
