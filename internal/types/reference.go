package types

// ReferenceKind enumerates the ways a name can be used at a source
// location. Extractors emit these; rules consume them.
type ReferenceKind int

const (
	RefCall ReferenceKind = iota
	RefRead
	RefWrite
	RefArrayAccess
	RefMemberAccess
	RefFormatCall
	RefImportUse
)

var referenceKindNames = map[ReferenceKind]string{
	RefCall:         "call",
	RefRead:         "read",
	RefWrite:        "write",
	RefArrayAccess:  "array_access",
	RefMemberAccess: "member_access",
	RefFormatCall:   "format_call",
	RefImportUse:    "import_use",
}

func (k ReferenceKind) String() string {
	if s, ok := referenceKindNames[k]; ok {
		return s
	}
	return "read"
}

// Reference is a use-site of a name. Context is sparse: only the fields
// relevant to KindOfUse are populated, the rest stay at their zero value.
// A single struct (rather than one type per kind) keeps extractor code
// from juggling interface assertions when a rule only needs to read one
// or two fields off a reference it doesn't otherwise care about.
type Reference struct {
	Name      string
	KindOfUse ReferenceKind
	File      string
	Line      int

	// Call sites (KindOfUse == RefCall or RefFormatCall).
	ArgTypes []string // apparent type of each positional argument, "" if unknown
	ArgCount int

	// Array/subscript access (KindOfUse == RefArrayAccess).
	IndexValue    *int // nil when the index expression is not a literal
	IndexIsWrite  bool

	// Format calls (KindOfUse == RefFormatCall).
	FormatLiteral      string
	FormatSpecifierCnt int

	// Member access (KindOfUse == RefMemberAccess).
	ReceiverType string
	MemberName   string
	IsArrow      bool // C: receiver->member rather than receiver.member

	// Write sites to a typed target (KindOfUse == RefWrite).
	RHSType string

	// Assignment/return-annotation comparisons reuse RHSType for the
	// value side; AnnotatedType carries the declared/annotated side.
	AnnotatedType string
}
