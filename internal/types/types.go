// Package types implements the type language (§3), substitutions (§4.5),
// and the row-polymorphism machinery shared by the unifier and the
// inferencer. The Type sum and its per-constructor String() methods are
// grounded on funvibe-funxy's internal/typesystem/types.go; the row
// representation (a linked spine of labelled extensions terminated by
// either TRowEmpty or a row type variable) follows the record/variant
// encoding used by wdamron/poly's inference core.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the sealed sum of type-expression node kinds.
type Type interface {
	fmt.Stringer
	typeNode()
}

// Ground, non-parametric base types.
type (
	TInt  struct{}
	TDbl  struct{}
	TBool struct{}
	TChar struct{}
	TText struct{}
)

func (TInt) typeNode()  {}
func (TDbl) typeNode()  {}
func (TBool) typeNode() {}
func (TChar) typeNode() {}
func (TText) typeNode() {}

func (TInt) String() string  { return "Int" }
func (TDbl) String() string  { return "Double" }
func (TBool) String() string { return "Bool" }
func (TChar) String() string { return "Char" }
func (TText) String() string { return "Text" }

// TList is a homogeneous list type, [T].
type TList struct{ Elem Type }

func (TList) typeNode() {}
func (t TList) String() string {
	return "[" + t.Elem.String() + "]"
}

// TFun is a function type, A -> B.
type TFun struct{ From, To Type }

func (TFun) typeNode() {}
func (t TFun) String() string {
	from := t.From.String()
	if _, ok := t.From.(TFun); ok {
		from = "(" + from + ")"
	}
	return from + " -> " + t.To.String()
}

// TRecord wraps a row type as a record type, { Row }.
type TRecord struct{ Row Type }

func (TRecord) typeNode() {}
func (t TRecord) String() string { return "{" + t.Row.String() + "}" }

// TVariant wraps a row type as a variant type, < Row >.
type TVariant struct{ Row Type }

func (TVariant) typeNode() {}
func (t TVariant) String() string { return "<" + t.Row.String() + ">" }

// TRowEmpty is the empty row, (), terminating a closed record/variant.
type TRowEmpty struct{}

func (TRowEmpty) typeNode()       {}
func (TRowEmpty) String() string  { return "" }

// TRowExtend is one labelled row cell, ℓ : Head ; Tail.
type TRowExtend struct {
	Label string
	Head  Type
	Tail  Type
}

func (TRowExtend) typeNode() {}
func (t TRowExtend) String() string {
	labels, tail := RowToList(t)
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l.Label+" : "+l.Type.String())
	}
	s := strings.Join(parts, ", ")
	if _, ok := tail.(TRowEmpty); ok {
		return s
	}
	if s == "" {
		return tail.String()
	}
	return s + " | " + tail.String()
}

// TSynonym is an unexpanded reference to a user-declared type synonym
// (§3 "Synonym declaration"); the inferencer expands these (see
// infer's expandSynonym) before an annotation reaches the unifier, but
// the node survives in annotations and in the pretty-printer so the
// synonym the user actually wrote can still be named.
type TSynonym struct {
	Name string
	Args []Type
}

func (TSynonym) typeNode() {}
func (t TSynonym) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Name + " " + strings.Join(parts, " ")
}

// TVar is a reference to a type variable, resolved through a Subst at
// unification/inference time.
type TVar struct{ V *TyVar }

func (TVar) typeNode() {}
func (t TVar) String() string { return t.V.String() }

// TForAll is a universally quantified type rendered as a Type: the
// parser builds it for `forall` annotations written by the user, and the
// inferencer instantiates it when it reads an annotation; inferred
// polymorphism is carried by Scheme instead.
type TForAll struct {
	Vars []*TyVar
	Body Type
}

func (TForAll) typeNode() {}
func (t TForAll) String() string {
	if len(t.Vars) == 0 {
		return t.Body.String()
	}
	names := make([]string, len(t.Vars))
	for i, v := range t.Vars {
		names[i] = v.String()
	}
	sort.Strings(names)
	return "forall " + strings.Join(names, " ") + ". " + t.Body.String()
}

// RowLabel is one (label, type) pair as returned by RowToList.
type RowLabel struct {
	Label string
	Type  Type
}

// RowToList flattens a row spine into its labelled cells (sorted by
// label, matching the canonical form §4.5 requires before two rows are
// compared) plus whatever remains at the tail: TRowEmpty for a closed
// row, or a TVar for an open one.
func RowToList(row Type) (labels []RowLabel, tail Type) {
	cur := row
	for {
		switch r := cur.(type) {
		case TRowExtend:
			labels = append(labels, RowLabel{Label: r.Label, Type: r.Head})
			cur = r.Tail
		default:
			sort.SliceStable(labels, func(i, j int) bool { return labels[i].Label < labels[j].Label })
			return labels, cur
		}
	}
}

// MkRowType rebuilds a row spine from a label list and a tail, the
// inverse of RowToList.
func MkRowType(labels []RowLabel, tail Type) Type {
	row := tail
	for i := len(labels) - 1; i >= 0; i-- {
		row = TRowExtend{Label: labels[i].Label, Head: labels[i].Type, Tail: row}
	}
	return row
}

// RowToMap groups a row's labelled cells by label, preserving duplicate
// labels in encounter order (record/variant rows may carry more than one
// cell per label until lacks constraints rule the duplicates out).
func RowToMap(row Type) (fields map[string][]Type, tail Type) {
	fields = make(map[string][]Type)
	cur := row
	for {
		switch r := cur.(type) {
		case TRowExtend:
			fields[r.Label] = append(fields[r.Label], r.Head)
			cur = r.Tail
		default:
			return fields, cur
		}
	}
}
