package unify

import (
	"testing"

	"github.com/5l1v3r1/expresso/internal/token"
	"github.com/5l1v3r1/expresso/internal/types"
)

func freshSupply(start int) *Fresh {
	n := start
	return &Fresh{Next: &n}
}

func TestUnifyGroundTypes(t *testing.T) {
	s, err := Unify(types.NewSubst(), freshSupply(0), types.TInt{}, types.TInt{}, token.Position{})
	if err != nil {
		t.Fatalf("Unify(Int, Int) failed: %v", err)
	}
	if len(s) != 0 {
		t.Errorf("expected no new bindings, got %#v", s)
	}
}

func TestUnifyMismatchedGroundTypesFails(t *testing.T) {
	_, err := Unify(types.NewSubst(), freshSupply(0), types.TInt{}, types.TBool{}, token.Position{})
	if err == nil {
		t.Fatal("expected a unification error")
	}
}

func TestUnifyBindsFreeVariable(t *testing.T) {
	v := &types.TyVar{ID: 1, Kind: types.Star}
	s, err := Unify(types.NewSubst(), freshSupply(10), types.TVar{V: v}, types.TInt{}, token.Position{})
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	if _, ok := types.Apply(s, types.TVar{V: v}).(types.TInt); !ok {
		t.Errorf("expected v bound to Int, got %#v", types.Apply(s, types.TVar{V: v}))
	}
}

func TestUnifyOccursCheckFails(t *testing.T) {
	v := &types.TyVar{ID: 1, Kind: types.Star}
	_, err := Unify(types.NewSubst(), freshSupply(10), types.TVar{V: v}, types.TList{Elem: types.TVar{V: v}}, token.Position{})
	if err == nil {
		t.Fatal("expected an occurs-check error")
	}
}

func TestUnifyFunctionTypesRecursively(t *testing.T) {
	a := &types.TyVar{ID: 1, Kind: types.Star}
	b := &types.TyVar{ID: 2, Kind: types.Star}
	t1 := types.TFun{From: types.TVar{V: a}, To: types.TVar{V: b}}
	t2 := types.TFun{From: types.TInt{}, To: types.TBool{}}
	s, err := Unify(types.NewSubst(), freshSupply(10), t1, t2, token.Position{})
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	if _, ok := types.Apply(s, types.TVar{V: a}).(types.TInt); !ok {
		t.Errorf("a: got %#v", types.Apply(s, types.TVar{V: a}))
	}
	if _, ok := types.Apply(s, types.TVar{V: b}).(types.TBool); !ok {
		t.Errorf("b: got %#v", types.Apply(s, types.TVar{V: b}))
	}
}

func TestUnifyClosedRecordsWithSameLabels(t *testing.T) {
	row1 := types.TRowExtend{Label: "x", Head: types.TInt{}, Tail: types.TRowEmpty{}}
	row2 := types.TRowExtend{Label: "x", Head: types.TInt{}, Tail: types.TRowEmpty{}}
	_, err := Unify(types.NewSubst(), freshSupply(10), types.TRecord{Row: row1}, types.TRecord{Row: row2}, token.Position{})
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
}

func TestUnifyClosedRecordsMissingLabelFails(t *testing.T) {
	row1 := types.TRowExtend{Label: "x", Head: types.TInt{}, Tail: types.TRowEmpty{}}
	row2 := types.TRowEmpty{}
	_, err := Unify(types.NewSubst(), freshSupply(10), types.TRecord{Row: row1}, types.TRecord{Row: row2}, token.Position{})
	if err == nil {
		t.Fatal("expected a row-empty error: label x has nowhere to go")
	}
}

func TestUnifyRecordAgainstOpenRowInstantiatesTail(t *testing.T) {
	rv := &types.TyVar{ID: 1, Kind: types.Row}
	row1 := types.TRowExtend{Label: "x", Head: types.TInt{}, Tail: types.TRowEmpty{}}
	row2 := types.TVar{V: rv}
	s, err := Unify(types.NewSubst(), freshSupply(10), types.TRecord{Row: row1}, types.TRecord{Row: row2}, token.Position{})
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	resolved := types.Apply(s, row2)
	labels, tail := types.RowToList(resolved)
	if len(labels) != 1 || labels[0].Label != "x" {
		t.Fatalf("got %#v", labels)
	}
	if _, ok := tail.(types.TRowEmpty); !ok {
		t.Errorf("tail: got %#v, want TRowEmpty", tail)
	}
}

func TestUnifyRecordsWithDifferentLabelOrderStillUnify(t *testing.T) {
	row1 := types.TRowExtend{Label: "x", Head: types.TInt{}, Tail: types.TRowExtend{Label: "y", Head: types.TBool{}, Tail: types.TRowEmpty{}}}
	row2 := types.TRowExtend{Label: "y", Head: types.TBool{}, Tail: types.TRowExtend{Label: "x", Head: types.TInt{}, Tail: types.TRowEmpty{}}}
	_, err := Unify(types.NewSubst(), freshSupply(10), types.TRecord{Row: row1}, types.TRecord{Row: row2}, token.Position{})
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
}

func TestVarBindRowRejectsLabelInLacksSet(t *testing.T) {
	v := &types.TyVar{ID: 1, Kind: types.Row, Constraint: types.Constraint{Lacks: map[string]bool{"x": true}}}
	row := types.TRowExtend{Label: "x", Head: types.TInt{}, Tail: types.TRowEmpty{}}
	_, err := varBindRow(types.NewSubst(), v, row, token.Position{})
	if err == nil {
		t.Fatal("expected a repeated-label error: row defines a label the variable lacks")
	}
}

func TestVarBindRowAcceptsDisjointLabels(t *testing.T) {
	v := &types.TyVar{ID: 1, Kind: types.Row, Constraint: types.Constraint{Lacks: map[string]bool{"y": true}}}
	row := types.TRowExtend{Label: "x", Head: types.TInt{}, Tail: types.TRowEmpty{}}
	_, err := varBindRow(types.NewSubst(), v, row, token.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVarBindRejectsBindingStarVariableToRow(t *testing.T) {
	v := &types.TyVar{ID: 1, Kind: types.Star}
	_, err := varBind(types.NewSubst(), v, types.TRowEmpty{}, token.Position{})
	if err == nil {
		t.Fatal("expected a kind-mismatch error")
	}
}

func TestVarBindNumConstraintAcceptsNumericTypes(t *testing.T) {
	v := &types.TyVar{ID: 1, Kind: types.Star, Constraint: types.Constraint{Num: true}}
	if _, err := varBind(types.NewSubst(), v, types.TInt{}, token.Position{}); err != nil {
		t.Errorf("Int should satisfy Num: %v", err)
	}
	if _, err := varBind(types.NewSubst(), v, types.TDbl{}, token.Position{}); err != nil {
		t.Errorf("Double should satisfy Num: %v", err)
	}
}

func TestVarBindNumConstraintRejectsNonNumericTypes(t *testing.T) {
	v := &types.TyVar{ID: 1, Kind: types.Star, Constraint: types.Constraint{Num: true}}
	if _, err := varBind(types.NewSubst(), v, types.TBool{}, token.Position{}); err == nil {
		t.Error("Bool should not satisfy Num")
	}
}

func TestUnionConstraintsMergesLacksSets(t *testing.T) {
	a := &types.TyVar{ID: 1, Kind: types.Row, Constraint: types.Constraint{Lacks: map[string]bool{"x": true}}}
	b := &types.TyVar{ID: 2, Kind: types.Row, Constraint: types.Constraint{Lacks: map[string]bool{"y": true}}}
	merged, err := UnionConstraints(a, b, token.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !merged.Lacks["x"] || !merged.Lacks["y"] {
		t.Errorf("got %#v", merged.Lacks)
	}
}

func TestUnionConstraintsRejectsMismatchedKinds(t *testing.T) {
	a := &types.TyVar{ID: 1, Kind: types.Star}
	b := &types.TyVar{ID: 2, Kind: types.Row}
	_, err := UnionConstraints(a, b, token.Position{})
	if err == nil {
		t.Fatal("expected a kind-mismatch error")
	}
}

// TestUnifyTVarPairMergesLacksSets exercises §4.5 case 2 through Unify
// itself (not just UnionConstraints in isolation): two distinct row
// variables, each lacking a different label, unified with each other must
// come out lacking both labels rather than one variable's lacks set being
// silently dropped.
func TestUnifyTVarPairMergesLacksSets(t *testing.T) {
	a := &types.TyVar{ID: 1, Kind: types.Row, Constraint: types.Constraint{Lacks: map[string]bool{"x": true}}}
	b := &types.TyVar{ID: 2, Kind: types.Row, Constraint: types.Constraint{Lacks: map[string]bool{"y": true}}}
	s, err := Unify(types.NewSubst(), freshSupply(10), types.TVar{V: a}, types.TVar{V: b}, token.Position{})
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}

	resolvedA, ok := types.Apply(s, types.TVar{V: a}).(types.TVar)
	if !ok {
		t.Fatalf("a: got %#v, want TVar", types.Apply(s, types.TVar{V: a}))
	}
	resolvedB, ok := types.Apply(s, types.TVar{V: b}).(types.TVar)
	if !ok {
		t.Fatalf("b: got %#v, want TVar", types.Apply(s, types.TVar{V: b}))
	}
	if resolvedA.V.ID != resolvedB.V.ID {
		t.Fatalf("a and b resolved to different variables: %d vs %d", resolvedA.V.ID, resolvedB.V.ID)
	}
	if !resolvedA.V.Constraint.Lacks["x"] || !resolvedA.V.Constraint.Lacks["y"] {
		t.Errorf("merged variable should lack both x and y, got %#v", resolvedA.V.Constraint.Lacks)
	}

	// Neither original TyVar was mutated in place.
	if a.Constraint.Lacks["y"] {
		t.Error("a was mutated in place")
	}
	if b.Constraint.Lacks["x"] {
		t.Error("b was mutated in place")
	}
}

// TestUnifyTVarPairPreservesNumConstraint confirms a Num-constrained Star
// variable unified with another, still-abstract Star variable keeps its
// Num constraint on the merged variable, rather than the constraint being
// dropped because the TVar/TVar path used to skip straight to varBind.
func TestUnifyTVarPairPreservesNumConstraint(t *testing.T) {
	a := &types.TyVar{ID: 1, Kind: types.Star, Constraint: types.Constraint{Num: true}}
	b := &types.TyVar{ID: 2, Kind: types.Star}
	s, err := Unify(types.NewSubst(), freshSupply(10), types.TVar{V: a}, types.TVar{V: b}, token.Position{})
	if err != nil {
		t.Fatalf("Unify failed: %v", err)
	}

	resolved, ok := types.Apply(s, types.TVar{V: a}).(types.TVar)
	if !ok {
		t.Fatalf("got %#v, want TVar", types.Apply(s, types.TVar{V: a}))
	}
	if !resolved.V.Constraint.Num {
		t.Error("merged variable should still carry the Num constraint")
	}

	// The merged variable must still reject a non-numeric binding.
	if _, err := varBind(s, resolved.V, types.TBool{}, token.Position{}); err == nil {
		t.Error("merged Num-constrained variable should reject Bool")
	}
}
