package ast

// PrimTag enumerates the closed, finite primitive tag set (§3).
type PrimTag int

const (
	// Literal injectors.
	PInt PrimTag = iota
	PDbl
	PChar
	PBool
	PText

	// Arithmetic.
	PAdd
	PSub
	PMul
	PDiv
	PNeg
	PMod
	PAbs
	PFloor
	PCeiling
	PDouble

	// Relational.
	PEq
	PNEq
	PRGT
	PRGTE
	PRLT
	PRLTE

	// Logical.
	PAnd
	POr
	PNot

	// Conditional.
	PCond

	// List.
	PListEmpty
	PListCons
	PListUncons
	PListAppend
	PListFoldr
	PListNull

	// Text.
	PTextAppend
	PPack
	PUnpack
	PShow

	// Record (Label field on the *Prim node carries ℓ).
	PRecordEmpty
	PRecordSelect
	PRecordExtend
	PRecordRestrict

	// Variant (Label field on the *Prim node carries ℓ).
	PVariantInject
	PVariantEmbed
	PVariantElim
	PAbsurd

	// Composition.
	PFwdComp
	PBwdComp

	// Fixed-point.
	PFix

	// Diagnostic.
	PError
	PTrace
)

var primNames = map[PrimTag]string{
	PInt: "Int", PDbl: "Dbl", PChar: "Char", PBool: "Bool", PText: "Text",
	PAdd: "Add", PSub: "Sub", PMul: "Mul", PDiv: "Div", PNeg: "Neg",
	PMod: "Mod", PAbs: "Abs", PFloor: "Floor", PCeiling: "Ceiling", PDouble: "Double",
	PEq: "Eq", PNEq: "NEq", PRGT: "RGT", PRGTE: "RGTE", PRLT: "RLT", PRLTE: "RLTE",
	PAnd: "And", POr: "Or", PNot: "Not",
	PCond: "Cond",
	PListEmpty: "ListEmpty", PListCons: "ListCons", PListUncons: "ListUncons",
	PListAppend: "ListAppend", PListFoldr: "ListFoldr", PListNull: "ListNull",
	PTextAppend: "TextAppend", PPack: "Pack", PUnpack: "Unpack", PShow: "Show",
	PRecordEmpty: "RecordEmpty", PRecordSelect: "RecordSelect",
	PRecordExtend: "RecordExtend", PRecordRestrict: "RecordRestrict",
	PVariantInject: "VariantInject", PVariantEmbed: "VariantEmbed",
	PVariantElim: "VariantElim", PAbsurd: "Absurd",
	PFwdComp: "FwdComp", PBwdComp: "BwdComp",
	PFix: "FixPrim", PError: "ErrorPrim", PTrace: "Trace",
}

func (t PrimTag) String() string {
	if s, ok := primNames[t]; ok {
		return s
	}
	return "?"
}

// HasLabel reports whether this primitive tag carries a label (ℓ) fixed at
// parse time rather than taken as an ordinary argument.
func (t PrimTag) HasLabel() bool {
	switch t {
	case PRecordSelect, PRecordExtend, PRecordRestrict,
		PVariantInject, PVariantEmbed, PVariantElim:
		return true
	}
	return false
}

// LowerName is the lower-first spelling of a primitive's name as it
// appears when written directly as a term identifier (e.g. `show`,
// `listFoldr`, `recordExtend`) rather than produced through dedicated
// surface-syntax sugar. Literal injectors, ListEmpty (`[]`) and
// VariantInject (`Ctor`) have no such spelling and return "". The parser
// accepts these names (see PrimFromName), and the pretty-printer falls
// back to them when no sugar reconstruction applies, most notably
// multi-field record updates.
func (t PrimTag) LowerName() string {
	return primLowerNames[t]
}

// NeedsLabelArg reports whether the fallback-identifier spelling of t
// must be followed by a string-literal argument carrying ℓ (see
// PrimFromName).
func (t PrimTag) NeedsLabelArg() bool {
	switch t {
	case PRecordSelect, PRecordExtend, PRecordRestrict, PVariantEmbed, PVariantElim:
		return true
	}
	return false
}

var primLowerNames map[PrimTag]string
var primByLowerName map[string]PrimTag

var noFallbackName = map[PrimTag]bool{
	PInt: true, PDbl: true, PChar: true, PBool: true, PText: true,
	PListEmpty: true, PVariantInject: true,
}

func init() {
	primLowerNames = make(map[PrimTag]string, len(primNames))
	primByLowerName = make(map[string]PrimTag, len(primNames))
	for tag, name := range primNames {
		if noFallbackName[tag] {
			continue
		}
		lower := string(name[0]+('a'-'A')) + name[1:]
		primLowerNames[tag] = lower
		primByLowerName[lower] = tag
	}
}

// PrimFromName looks up a primitive by the lower-case identifier spelling
// the parser and printer use for it as a fallback when no surface sugar
// applies. When the result's NeedsLabelArg is true, the parser must
// additionally consume one string-literal argument to fill in Label.
func PrimFromName(name string) (PrimTag, bool) {
	t, ok := primByLowerName[name]
	return t, ok
}
