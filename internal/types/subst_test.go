package types

import "testing"

func newVar(id int, kind Kind) *TyVar { return &TyVar{ID: id, Kind: kind} }

func TestApplySubstitutesFreeVariables(t *testing.T) {
	v := newVar(1, Star)
	s := Subst{1: TInt{}}
	got := Apply(s, TVar{V: v})
	if _, ok := got.(TInt); !ok {
		t.Fatalf("got %#v, want TInt", got)
	}
}

func TestApplyLeavesUnboundVariables(t *testing.T) {
	v := newVar(1, Star)
	s := Subst{}
	got := Apply(s, TVar{V: v})
	tv, ok := got.(TVar)
	if !ok || tv.V.ID != 1 {
		t.Fatalf("got %#v, want TVar{1}", got)
	}
}

func TestApplyRecursesThroughCompoundTypes(t *testing.T) {
	v := newVar(1, Star)
	s := Subst{1: TInt{}}
	got := Apply(s, TFun{From: TVar{V: v}, To: TList{Elem: TVar{V: v}}})
	fn, ok := got.(TFun)
	if !ok {
		t.Fatalf("got %T, want TFun", got)
	}
	if _, ok := fn.From.(TInt); !ok {
		t.Errorf("From: got %#v", fn.From)
	}
	list, ok := fn.To.(TList)
	if !ok {
		t.Fatalf("To: got %T, want TList", fn.To)
	}
	if _, ok := list.Elem.(TInt); !ok {
		t.Errorf("Elem: got %#v", list.Elem)
	}
}

func TestComposeAppliesRightSubstThenLeft(t *testing.T) {
	a, b := newVar(1, Star), newVar(2, Star)
	// s2 sends 1 -> TVar{2}; s1 sends 2 -> TInt.
	s2 := Subst{1: TVar{V: b}}
	s1 := Subst{2: TInt{}}
	composed := Compose(s1, s2)
	got := Apply(composed, TVar{V: a})
	if _, ok := got.(TInt); !ok {
		t.Fatalf("got %#v, want TInt (1 -> 2 -> Int)", got)
	}
}

func TestComposePrefersLeftOnOverlap(t *testing.T) {
	v := newVar(1, Star)
	s1 := Subst{1: TInt{}}
	s2 := Subst{1: TBool{}}
	composed := Compose(s1, s2)
	got := Apply(composed, TVar{V: v})
	if _, ok := got.(TInt); !ok {
		t.Fatalf("got %#v, want TInt (s1 wins on overlap)", got)
	}
}

func TestFtvFindsVariablesInFirstOccurrenceOrder(t *testing.T) {
	a, b := newVar(1, Star), newVar(2, Star)
	ty := TFun{From: TVar{V: a}, To: TFun{From: TVar{V: b}, To: TVar{V: a}}}
	fvs := Ftv(ty)
	if len(fvs) != 2 {
		t.Fatalf("got %d free vars, want 2: %#v", len(fvs), fvs)
	}
	if fvs[0].ID != 1 || fvs[1].ID != 2 {
		t.Errorf("got ids %d, %d, want 1, 2 (first-occurrence order)", fvs[0].ID, fvs[1].ID)
	}
}

func TestFtvSchemeExcludesQuantifiedVariables(t *testing.T) {
	a, b := newVar(1, Star), newVar(2, Star)
	sc := Scheme{Vars: []*TyVar{a}, Type: TFun{From: TVar{V: a}, To: TVar{V: b}}}
	fvs := FtvScheme(sc)
	if len(fvs) != 1 || fvs[0].ID != 2 {
		t.Fatalf("got %#v, want only var 2", fvs)
	}
}

func TestApplySchemeLeavesQuantifiedVariablesAlone(t *testing.T) {
	a, b := newVar(1, Star), newVar(2, Star)
	sc := Scheme{Vars: []*TyVar{a}, Type: TFun{From: TVar{V: a}, To: TVar{V: b}}}
	s := Subst{1: TBool{}, 2: TInt{}}
	out := ApplyScheme(s, sc)
	fn := out.Type.(TFun)
	if _, ok := fn.From.(TVar); !ok {
		t.Errorf("From: got %#v, want the quantified TVar left untouched", fn.From)
	}
	if _, ok := fn.To.(TInt); !ok {
		t.Errorf("To: got %#v, want TInt", fn.To)
	}
}

func TestFtvEnvUnionsAcrossBindings(t *testing.T) {
	a, b := newVar(1, Star), newVar(2, Star)
	env := map[string]Scheme{
		"f": {Type: TVar{V: a}},
		"g": {Type: TVar{V: b}},
	}
	fvs := FtvEnv(env)
	if len(fvs) != 2 {
		t.Fatalf("got %d vars, want 2: %#v", len(fvs), fvs)
	}
}
