// Package unify implements Robinson unification extended with row
// polymorphism and lacks constraints (§4.5). The case-ordered dispatch in
// Unify and the rewriteRow/varBind split are grounded on wdamron/poly's
// infer.go (unify/rewriteRow/varBind), adapted to the §3 Type sum and to
// funvibe-funxy's diag-based error style (internal/typesystem/unify.go's
// top-level case switch).
package unify

import (
	"sort"

	"github.com/5l1v3r1/expresso/internal/diag"
	"github.com/5l1v3r1/expresso/internal/token"
	"github.com/5l1v3r1/expresso/internal/types"
)

// Fresh mints new type-variable identities during row rewriting. The
// inferencer owns the canonical supply (its TIState counter); Unify is
// handed a Fresh backed by that same counter so ids never collide with
// the ones the inferencer has already allocated.
type Fresh struct {
	Next *int
}

// Var mints a fresh type variable of the given kind.
func (f *Fresh) Var(k types.Kind) *types.TyVar {
	id := *f.Next
	*f.Next++
	return &types.TyVar{ID: id, Kind: k}
}

// Unify computes the most general unifier of t1 and t2 under the given
// substitution, returning an extended substitution or a positioned
// diagnostic. pos is used only for error reporting; fresh supplies
// variable identities when a row must be rewritten against an open row
// variable.
func Unify(s types.Subst, fresh *Fresh, t1, t2 types.Type, pos token.Position) (types.Subst, *diag.Error) {
	t1, t2 = types.Apply(s, t1), types.Apply(s, t2)

	if a, ok := t1.(types.TVar); ok {
		if b, ok := t2.(types.TVar); ok {
			if a.V.ID == b.V.ID {
				return s, nil
			}
			return bindTVarPair(s, fresh, a.V, b.V, pos)
		}
		return varBind(s, a.V, t2, pos)
	}
	if b, ok := t2.(types.TVar); ok {
		return varBind(s, b.V, t1, pos)
	}

	switch a := t1.(type) {
	case types.TInt:
		if _, ok := t2.(types.TInt); ok {
			return s, nil
		}
	case types.TDbl:
		if _, ok := t2.(types.TDbl); ok {
			return s, nil
		}
	case types.TBool:
		if _, ok := t2.(types.TBool); ok {
			return s, nil
		}
	case types.TChar:
		if _, ok := t2.(types.TChar); ok {
			return s, nil
		}
	case types.TText:
		if _, ok := t2.(types.TText); ok {
			return s, nil
		}
	case types.TList:
		if b, ok := t2.(types.TList); ok {
			return Unify(s, fresh, a.Elem, b.Elem, pos)
		}
	case types.TFun:
		if b, ok := t2.(types.TFun); ok {
			s1, err := Unify(s, fresh, a.From, b.From, pos)
			if err != nil {
				return nil, err
			}
			return Unify(s1, fresh, a.To, b.To, pos)
		}
	case types.TRecord:
		if b, ok := t2.(types.TRecord); ok {
			return Unify(s, fresh, a.Row, b.Row, pos)
		}
	case types.TVariant:
		if b, ok := t2.(types.TVariant); ok {
			return Unify(s, fresh, a.Row, b.Row, pos)
		}
	case types.TRowEmpty:
		if _, ok := t2.(types.TRowEmpty); ok {
			return s, nil
		}
	case types.TRowExtend:
		return unifyRowExtend(s, fresh, a, t2, pos)
	}

	return nil, diag.New(diag.ErrUnify, pos, "cannot unify %s with %s", t1, t2)
}

// bindTVarPair implements §4.5 case 2 (TVar u vs TVar v -> unionConstraints
// (u,v)): two distinct type variables unified with each other merge their
// constraints rather than one simply subsuming the other. Per tyvar.go's
// identity invariant, neither a nor b is mutated in place; a fresh
// variable carries the merged constraint, and the substitution is
// extended to bind both a and b to it.
func bindTVarPair(s types.Subst, fresh *Fresh, a, b *types.TyVar, pos token.Position) (types.Subst, *diag.Error) {
	merged, err := UnionConstraints(a, b, pos)
	if err != nil {
		return nil, err
	}
	rep := fresh.Var(a.Kind)
	rep.Constraint = merged
	repTy := types.TVar{V: rep}
	out := extend(s, a.ID, repTy)
	return extend(out, b.ID, repTy), nil
}

// unifyRowExtend implements §4.5's rewriteRow-driven row unification:
// the label on the left is located (or fabricated, if the right side is
// an open row variable) on the right, its field type is unified, and
// unification recurses on the two remaining tails.
func unifyRowExtend(s types.Subst, fresh *Fresh, a types.TRowExtend, t2 types.Type, pos token.Position) (types.Subst, *diag.Error) {
	restRow, fieldTy, s1, err := rewriteRow(s, fresh, t2, a.Label, pos)
	if err != nil {
		return nil, err
	}
	if occursRow(a.Tail, restRow) {
		return nil, diag.New(diag.ErrRecursiveRow, pos, "recursive row type while unifying label %q", a.Label)
	}
	s2, err := Unify(s1, fresh, a.Head, fieldTy, pos)
	if err != nil {
		return nil, err
	}
	return Unify(s2, fresh, types.Apply(s2, a.Tail), restRow, pos)
}

// rewriteRow finds label in row (after resolving through s), returning
// the row with that one cell removed (restRow), the cell's own type, and
// a possibly-extended substitution. If row resolves to an open row
// variable, a fresh field variable and a fresh row-tail variable are
// minted, and the original variable is bound to ℓ : fieldVar | restVar
// so the caller's subsequent unification of fieldTy/restRow proceeds
// against concrete (if fresh) types.
func rewriteRow(s types.Subst, fresh *Fresh, row types.Type, label string, pos token.Position) (restRow, fieldTy types.Type, out types.Subst, err *diag.Error) {
	row = types.Apply(s, row)
	switch r := row.(type) {
	case types.TRowEmpty:
		return nil, nil, nil, diag.New(diag.ErrRowEmpty, pos, "row does not contain label %q", label)
	case types.TRowExtend:
		if r.Label == label {
			return r.Tail, r.Head, s, nil
		}
		restRest, fieldTy, s1, err := rewriteRow(s, fresh, r.Tail, label, pos)
		if err != nil {
			return nil, nil, nil, err
		}
		return types.TRowExtend{Label: r.Label, Head: r.Head, Tail: restRest}, fieldTy, s1, nil
	case types.TVar:
		fieldVar := fresh.Var(types.Star)
		restVar := fresh.Var(types.Row)
		bound := types.TRowExtend{Label: label, Head: types.TVar{V: fieldVar}, Tail: types.TVar{V: restVar}}
		s1, err := varBind(s, r.V, bound, pos)
		if err != nil {
			return nil, nil, nil, err
		}
		return types.TVar{V: restVar}, types.TVar{V: fieldVar}, s1, nil
	}
	return nil, nil, nil, diag.New(diag.ErrUnify, pos, "%s is not a row type", row)
}

// occursRow reports whether resolving tail would recreate restRow,
// which would otherwise make the row type unification is building
// infinite (§4.5's recursive-row-type check).
func occursRow(tail, restRow types.Type) bool {
	if tv, ok := tail.(types.TVar); ok {
		if rv, ok := restRow.(types.TVar); ok {
			return tv.V.ID == rv.V.ID
		}
	}
	return false
}

// varBind binds type variable v to t, enforcing the occurs check and
// dispatching to varBindRow when v is Row-kinded.
func varBind(s types.Subst, v *types.TyVar, t types.Type, pos token.Position) (types.Subst, *diag.Error) {
	if tv, ok := t.(types.TVar); ok && tv.V.ID == v.ID {
		return s, nil
	}
	if occurs(v.ID, t) {
		return nil, diag.New(diag.ErrOccurs, pos, "occurs check failed: %s occurs in %s", v, t)
	}
	if v.Kind == types.Row {
		return varBindRow(s, v, t, pos)
	}
	switch t.(type) {
	case types.TRowExtend, types.TRowEmpty:
		return nil, diag.New(diag.ErrKindMismatch, pos, "cannot bind a Star-kinded variable %s to a row type", v)
	}
	if !v.Constraint.None() {
		if err := checkConstraint(v.Constraint, t, pos); err != nil {
			return nil, err
		}
	}
	out := extend(s, v.ID, t)
	return out, nil
}

// varBindRow binds a Row-kinded variable to a row, checking that the
// variable's lacks set is disjoint from the labels the row actually
// defines (§4.5 "lacks constraints").
func varBindRow(s types.Subst, v *types.TyVar, t types.Type, pos token.Position) (types.Subst, *diag.Error) {
	labels, _ := types.RowToList(t)
	if len(v.Constraint.Lacks) > 0 {
		var repeated []string
		for _, l := range labels {
			if v.Constraint.Lacks[l.Label] {
				repeated = append(repeated, l.Label)
			}
		}
		if len(repeated) > 0 {
			sort.Strings(repeated)
			return nil, diag.New(diag.ErrRepeatedLabel, pos, "repeated label(s) %v violate a lacks constraint on %s", repeated, v)
		}
	}
	return extend(s, v.ID, t), nil
}

func extend(s types.Subst, id int, t types.Type) types.Subst {
	out := make(types.Subst, len(s)+1)
	for k, vv := range s {
		out[k] = vv
	}
	out[id] = t
	return out
}

func checkConstraint(c types.Constraint, t types.Type, pos token.Position) *diag.Error {
	if !c.Num {
		return nil
	}
	switch t.(type) {
	case types.TInt, types.TDbl:
		return nil
	default:
		return diag.New(diag.ErrBadConstraint, pos, "%s does not satisfy the Num constraint", t)
	}
}

// occurs reports whether type-variable id appears free in t.
func occurs(id int, t types.Type) bool {
	for _, v := range types.Ftv(t) {
		if v.ID == id {
			return true
		}
	}
	return false
}

// UnionConstraints merges the constraints of two type variables being
// unified together (TVar/TVar case), per §4.5 unionConstraints: Star
// constraints OR their flags, Row constraints union their lacks sets,
// and unifying variables of different kinds is a kind error.
func UnionConstraints(a, b *types.TyVar, pos token.Position) (types.Constraint, *diag.Error) {
	if a.Kind != b.Kind {
		return types.Constraint{}, diag.New(diag.ErrKindMismatch, pos, "cannot unify a %s-kinded variable with a %s-kinded variable", a.Kind, b.Kind)
	}
	return a.Constraint.Union(b.Constraint), nil
}
