package mmb

// MMB binary format magic number and version.
const (
	// Magic is the MMB magic number ("MM0B" in little-endian).
	Magic uint32 = 0x42304D4D

	// Version is the supported MMB format version.
	Version uint8 = 1

	// HeaderSize is the size of the fixed preamble in bytes.
	HeaderSize = 40

	// termEntrySize and thmEntrySize are the sizes of table records.
	termEntrySize = 8
	thmEntrySize  = 8
)

// Sort modifier flags. Each sort has one flag byte; the high four bits
// are reserved.
const (
	SortPure     SortMods = 1 // no term constructors
	SortStrict   SortMods = 2 // cannot be bound
	SortProvable SortMods = 4 // may appear in theorem statements
	SortFree     SortMods = 8 // variables carry no dependencies

	sortReserved SortMods = 0xF0
)

// Type bit layout.
const (
	// TypeBoundMask marks a bound variable.
	TypeBoundMask uint64 = 1 << 63

	// TypeSortMask selects the 7-bit sort index.
	TypeSortMask uint64 = 0x7F << 56

	// TypeDepsMask selects the dependency mask, or the bound digit of a
	// bound variable.
	TypeDepsMask uint64 = (1 << 56) - 1

	// MaxBoundVars is the number of bound variables one declaration may
	// introduce.
	MaxBoundVars = 55

	// MaxSorts is the number of sorts a 7-bit sort index can address.
	MaxSorts = 128
)

// Command encoding: the high two bits of a command byte select the width
// of the little-endian immediate that follows, the low six bits the opcode.
const (
	cmdData0  byte = 0x00
	cmdData8  byte = 0x40
	cmdData16 byte = 0x80
	cmdData32 byte = 0xC0
	cmdMask   byte = 0x3F
	cmdEnd    byte = 0x00
)

// Statement opcodes.
const (
	StmtAxiom    StmtKind = 0x02
	StmtSort     StmtKind = 0x04
	StmtTerm     StmtKind = 0x05 // term or definition, see Term.IsDef
	StmtThm      StmtKind = 0x06
	StmtLocalDef StmtKind = 0x0D
	StmtLocalThm StmtKind = 0x0E

	stmtLocalFlag byte = 0x08
)

// Proof stream opcodes.
const (
	ProofTerm     ProofOp = 0x10
	ProofTermSave ProofOp = 0x11
	ProofRef      ProofOp = 0x12
	ProofDummy    ProofOp = 0x13
	ProofThm      ProofOp = 0x14
	ProofThmSave  ProofOp = 0x15
	ProofHyp      ProofOp = 0x16
	ProofConv     ProofOp = 0x17
	ProofRefl     ProofOp = 0x18
	ProofSymm     ProofOp = 0x19
	ProofCong     ProofOp = 0x1A
	ProofUnfold   ProofOp = 0x1B
	ProofConvCut  ProofOp = 0x1C
	ProofConvRef  ProofOp = 0x1D
	ProofConvSave ProofOp = 0x1E
	ProofSave     ProofOp = 0x1F
	ProofSorry    ProofOp = 0x20
)

// Unify stream opcodes.
const (
	UnifyTerm     UnifyOp = 0x30
	UnifyTermSave UnifyOp = 0x31
	UnifyRef      UnifyOp = 0x32
	UnifyDummy    UnifyOp = 0x33
	UnifyHyp      UnifyOp = 0x36
)
