package infer

import (
	"github.com/5l1v3r1/expresso/internal/ast"
	"github.com/5l1v3r1/expresso/internal/diag"
	"github.com/5l1v3r1/expresso/internal/types"
	"github.com/5l1v3r1/expresso/internal/unify"
)

// tiPrim returns the type of a single occurrence of a primitive (§4.7's
// primitive type table). Every polymorphic primitive is given fresh type
// variables per occurrence, mirroring instantiate's role for ordinary
// Var references — a primitive is conceptually a predeclared, infinitely
// polymorphic binding rather than a term with a single fixed scheme.
func (s *TIState) tiPrim(p *ast.Prim) (types.Type, *diag.Error) {
	f := s.freshSrc()
	tv := func(k types.Kind) types.Type { return types.TVar{V: f.Var(k)} }
	fn := func(ts ...types.Type) types.Type {
		t := ts[len(ts)-1]
		for i := len(ts) - 2; i >= 0; i-- {
			t = types.TFun{From: ts[i], To: t}
		}
		return t
	}

	switch p.Tag {
	case ast.PInt:
		return types.TInt{}, nil
	case ast.PDbl:
		return types.TDbl{}, nil
	case ast.PChar:
		return types.TChar{}, nil
	case ast.PBool:
		return types.TBool{}, nil
	case ast.PText:
		return types.TText{}, nil

	case ast.PAdd, ast.PSub, ast.PMul, ast.PDiv, ast.PMod:
		return fn(types.TInt{}, types.TInt{}, types.TInt{}), nil
	case ast.PNeg:
		return fn(types.TInt{}, types.TInt{}), nil
	case ast.PAbs:
		a := tv(types.Star)
		return fn(a, a), nil
	case ast.PFloor, ast.PCeiling:
		return fn(types.TDbl{}, types.TInt{}), nil
	case ast.PDouble:
		return fn(types.TInt{}, types.TDbl{}), nil

	case ast.PEq, ast.PNEq, ast.PRGT, ast.PRGTE, ast.PRLT, ast.PRLTE:
		a := tv(types.Star)
		return fn(a, a, types.TBool{}), nil

	case ast.PAnd, ast.POr:
		return fn(types.TBool{}, types.TBool{}, types.TBool{}), nil
	case ast.PNot:
		return fn(types.TBool{}, types.TBool{}), nil

	case ast.PCond:
		a := tv(types.Star)
		return fn(types.TBool{}, a, a, a), nil

	case ast.PListEmpty:
		a := tv(types.Star)
		return types.TList{Elem: a}, nil
	case ast.PListCons:
		a := tv(types.Star)
		return fn(a, types.TList{Elem: a}, types.TList{Elem: a}), nil
	case ast.PListUncons:
		a, b := tv(types.Star), tv(types.Star)
		onNil := b
		onCons := fn(a, types.TList{Elem: a}, b)
		return fn(onNil, onCons, types.TList{Elem: a}, b), nil
	case ast.PListAppend:
		a := tv(types.Star)
		return fn(types.TList{Elem: a}, types.TList{Elem: a}, types.TList{Elem: a}), nil
	case ast.PListFoldr:
		a, b := tv(types.Star), tv(types.Star)
		return fn(fn(a, b, b), b, types.TList{Elem: a}, b), nil
	case ast.PListNull:
		a := tv(types.Star)
		return fn(types.TList{Elem: a}, types.TBool{}), nil

	case ast.PTextAppend:
		return fn(types.TText{}, types.TText{}, types.TText{}), nil
	case ast.PPack:
		return fn(types.TList{Elem: types.TChar{}}, types.TText{}), nil
	case ast.PUnpack:
		return fn(types.TText{}, types.TList{Elem: types.TChar{}}), nil
	case ast.PShow:
		a := tv(types.Star)
		return fn(a, types.TText{}), nil

	case ast.PRecordEmpty:
		return types.TRecord{Row: types.TRowEmpty{}}, nil
	case ast.PRecordSelect:
		a := tv(types.Star)
		r := f.Var(types.Row)
		r.Constraint.Lacks = map[string]bool{p.Label: true}
		row := types.TRowExtend{Label: p.Label, Head: a, Tail: types.TVar{V: r}}
		return fn(types.TRecord{Row: row}, a), nil
	case ast.PRecordExtend:
		a := tv(types.Star)
		r := f.Var(types.Row)
		r.Constraint.Lacks = map[string]bool{p.Label: true}
		rowIn := types.TVar{V: r}
		rowOut := types.TRowExtend{Label: p.Label, Head: a, Tail: rowIn}
		return fn(a, types.TRecord{Row: rowIn}, types.TRecord{Row: rowOut}), nil
	case ast.PRecordRestrict:
		a := tv(types.Star)
		r := f.Var(types.Row)
		r.Constraint.Lacks = map[string]bool{p.Label: true}
		rowIn := types.TVar{V: r}
		rowFull := types.TRowExtend{Label: p.Label, Head: a, Tail: rowIn}
		return fn(types.TRecord{Row: rowFull}, types.TRecord{Row: rowIn}), nil

	case ast.PVariantInject:
		a := tv(types.Star)
		r := f.Var(types.Row)
		r.Constraint.Lacks = map[string]bool{p.Label: true}
		row := types.TRowExtend{Label: p.Label, Head: a, Tail: types.TVar{V: r}}
		return fn(a, types.TVariant{Row: row}), nil
	case ast.PVariantEmbed:
		r := f.Var(types.Row)
		r.Constraint.Lacks = map[string]bool{p.Label: true}
		a := tv(types.Star)
		rowIn := types.TVar{V: r}
		rowOut := types.TRowExtend{Label: p.Label, Head: a, Tail: rowIn}
		return fn(types.TVariant{Row: rowIn}, types.TVariant{Row: rowOut}), nil
	case ast.PVariantElim:
		a, c := tv(types.Star), tv(types.Star)
		r := f.Var(types.Row)
		r.Constraint.Lacks = map[string]bool{p.Label: true}
		rowIn := types.TVar{V: r}
		rowFull := types.TRowExtend{Label: p.Label, Head: a, Tail: rowIn}
		onMatch := fn(a, c)
		onRest := fn(types.TVariant{Row: rowIn}, c)
		return fn(onMatch, onRest, types.TVariant{Row: rowFull}, c), nil
	case ast.PAbsurd:
		a := tv(types.Star)
		return fn(types.TVariant{Row: types.TRowEmpty{}}, a), nil

	case ast.PFwdComp:
		a, b, c := tv(types.Star), tv(types.Star), tv(types.Star)
		return fn(fn(a, b), fn(b, c), fn(a, c)), nil
	case ast.PBwdComp:
		a, b, c := tv(types.Star), tv(types.Star), tv(types.Star)
		return fn(fn(b, c), fn(a, b), fn(a, c)), nil

	case ast.PFix:
		a := tv(types.Star)
		return fn(fn(a, a), a), nil

	case ast.PError:
		a := tv(types.Star)
		return fn(types.TText{}, a), nil
	case ast.PTrace:
		a := tv(types.Star)
		return fn(types.TText{}, a, a), nil
	}

	return nil, diag.New(diag.ErrUnboundVar, p.Pos(), "unknown primitive %s", p.Tag)
}

// freshSrc adapts TIState's counter to unify.Fresh so row-rewriting
// inside Unify and the ad hoc variable minting above draw from the same
// monotonic id supply.
func (s *TIState) freshSrc() *unify.Fresh { return &unify.Fresh{Next: &s.supply} }
