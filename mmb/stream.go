package mmb

import (
	"fmt"

	"github.com/wippyai/mmbverify/errors"
	"github.com/wippyai/mmbverify/mmb/internal/binary"
)

// ProofOp is a proof stream opcode.
type ProofOp byte

var proofOpNames = map[ProofOp]string{
	ProofTerm:     "term",
	ProofTermSave: "term_save",
	ProofRef:      "ref",
	ProofDummy:    "dummy",
	ProofThm:      "thm",
	ProofThmSave:  "thm_save",
	ProofHyp:      "hyp",
	ProofConv:     "conv",
	ProofRefl:     "refl",
	ProofSymm:     "symm",
	ProofCong:     "cong",
	ProofUnfold:   "unfold",
	ProofConvCut:  "conv_cut",
	ProofConvRef:  "conv_ref",
	ProofConvSave: "conv_save",
	ProofSave:     "save",
	ProofSorry:    "sorry",
}

func (op ProofOp) String() string {
	if name, ok := proofOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("proof_op(%#02x)", byte(op))
}

// With returns the command op with immediate data.
func (op ProofOp) With(data uint32) Cmd { return Cmd{Op: byte(op), Data: data} }

// Cmd returns the command op without immediate data.
func (op ProofOp) Cmd() Cmd { return Cmd{Op: byte(op)} }

// UnifyOp is a unify stream opcode.
type UnifyOp byte

var unifyOpNames = map[UnifyOp]string{
	UnifyTerm:     "uterm",
	UnifyTermSave: "uterm_save",
	UnifyRef:      "uref",
	UnifyDummy:    "udummy",
	UnifyHyp:      "uhyp",
}

func (op UnifyOp) String() string {
	if name, ok := unifyOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("unify_op(%#02x)", byte(op))
}

// With returns the command op with immediate data.
func (op UnifyOp) With(data uint32) Cmd { return Cmd{Op: byte(op), Data: data} }

// Cmd returns the command op without immediate data.
func (op UnifyOp) Cmd() Cmd { return Cmd{Op: byte(op)} }

// Cmd is an encodable stream command.
type Cmd struct {
	Op   byte
	Data uint32
}

// AppendCmd encodes one command using the narrowest immediate width.
func AppendCmd(dst []byte, op byte, data uint32) []byte {
	w := binary.NewWriter()
	w.WriteBytes(dst)
	op &= cmdMask
	switch {
	case data == 0:
		w.Byte(op | cmdData0)
	case data <= 0xFF:
		w.Byte(op | cmdData8)
		w.Byte(byte(data))
	case data <= 0xFFFF:
		w.Byte(op | cmdData16)
		w.U16(uint16(data))
	default:
		w.Byte(op | cmdData32)
		w.U32(data)
	}
	return w.Bytes()
}

// Stream encodes cmds followed by the end marker.
func Stream(cmds ...Cmd) []byte {
	var out []byte
	for _, c := range cmds {
		out = AppendCmd(out, c.Op, c.Data)
	}
	return append(out, cmdEnd)
}

// readCmd decodes the command at pos in buf.
func readCmd(buf []byte, pos int) (op byte, data uint32, next int, err error) {
	r := binary.NewReaderAt(buf, pos)
	c, err := r.ReadU8()
	if err != nil {
		return 0, 0, 0, err
	}
	switch c &^ cmdMask {
	case cmdData0:
	case cmdData8:
		var v uint8
		v, err = r.ReadU8()
		data = uint32(v)
	case cmdData16:
		var v uint16
		v, err = r.ReadU16()
		data = uint32(v)
	case cmdData32:
		data, err = r.ReadU32()
	}
	if err != nil {
		return 0, 0, 0, err
	}
	return c & cmdMask, data, r.Position(), nil
}

func decodeError(kind errors.Kind, section string, pos int, cause error, detail string, args ...any) error {
	return errors.New(errors.PhaseDecode, kind).
		Path(section).
		Offset(pos).
		Cause(cause).
		Detail(detail, args...).
		Build()
}

// ProofCmd is a decoded proof stream command.
type ProofCmd struct {
	Op     ProofOp
	Data   uint32
	Offset int
}

// ProofIter walks the proof stream of one statement. The zero value is
// the null stream carried by sorts and plain terms.
type ProofIter struct {
	buf   []byte
	start int
	end   int
	pos   int
	done  bool
}

func newProofIter(buf []byte, start, end int) ProofIter {
	return ProofIter{buf: buf, start: start, end: end, pos: start}
}

// ProofStream returns an iterator over an encoded proof stream. An empty
// slice yields the null stream.
func ProofStream(data []byte) ProofIter {
	return newProofIter(data, 0, len(data))
}

// IsNull reports whether the statement carries no proof stream at all.
func (it *ProofIter) IsNull() bool {
	return it.start == it.end
}

// Next decodes the next command. It reports false once the end marker is
// reached; the end marker must be the last byte of the stream.
func (it *ProofIter) Next() (ProofCmd, bool, error) {
	if it.done || it.IsNull() {
		return ProofCmd{}, false, nil
	}
	if it.pos >= it.end {
		return ProofCmd{}, false, decodeError(errors.KindTruncated, "proof", it.pos, nil, "proof stream not terminated")
	}
	pos := it.pos
	op, data, next, err := readCmd(it.buf[:it.end], pos)
	if err != nil {
		return ProofCmd{}, false, decodeError(errors.KindTruncated, "proof", pos, err, "command runs past end of statement")
	}
	it.pos = next
	if op == cmdEnd {
		it.done = true
		if next != it.end {
			return ProofCmd{}, false, decodeError(errors.KindInvalidData, "proof", next, nil,
				"%d trailing bytes after proof end", it.end-next)
		}
		return ProofCmd{}, false, nil
	}
	return ProofCmd{Op: ProofOp(op), Data: data, Offset: pos}, true, nil
}

// UnifyCmd is a decoded unify stream command.
type UnifyCmd struct {
	Op     UnifyOp
	Data   uint32
	Offset int
}

// UnifyIter walks a stored unify stream up to its end marker.
type UnifyIter struct {
	buf  []byte
	pos  int
	done bool
}

func newUnifyIter(buf []byte, start int) UnifyIter {
	return UnifyIter{buf: buf, pos: start}
}

// UnifyStream returns an iterator over an encoded unify stream.
func UnifyStream(data []byte) UnifyIter {
	return newUnifyIter(data, 0)
}

// Done reports whether the end marker has been consumed.
func (it *UnifyIter) Done() bool {
	return it.done
}

// Next decodes the next command. It reports false once the end marker
// is consumed.
func (it *UnifyIter) Next() (UnifyCmd, bool, error) {
	if it.done {
		return UnifyCmd{}, false, nil
	}
	pos := it.pos
	op, data, next, err := readCmd(it.buf, pos)
	if err != nil {
		return UnifyCmd{}, false, decodeError(errors.KindTruncated, "unify", pos, err, "unify stream not terminated")
	}
	it.pos = next
	if op == cmdEnd {
		it.done = true
		return UnifyCmd{}, false, nil
	}
	return UnifyCmd{Op: UnifyOp(op), Data: data, Offset: pos}, true, nil
}
