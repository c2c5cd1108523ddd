package infer

import (
	"testing"

	"github.com/5l1v3r1/expresso/internal/ast"
	"github.com/5l1v3r1/expresso/internal/parser"
	"github.com/5l1v3r1/expresso/internal/resolve"
	"github.com/5l1v3r1/expresso/internal/types"
)

func synonymTable(t *testing.T, decls []*ast.SynonymDecl) map[string]*ast.SynonymDecl {
	t.Helper()
	table, err := resolve.BuildSynonymTable(decls)
	if err != nil {
		t.Fatalf("BuildSynonymTable failed: %v", err)
	}
	return table
}

func inferSrc(t *testing.T, src string) types.Scheme {
	t.Helper()
	e, _, perr := parser.Parse("test.expresso", src)
	if perr != nil {
		t.Fatalf("Parse(%q) failed: %v", src, perr)
	}
	sc, ierr := TypeInference(e, nil)
	if ierr != nil {
		t.Fatalf("TypeInference(%q) failed: %v", src, ierr)
	}
	return sc
}

func TestInferLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"42", "Int"},
		{"3.5", "Double"},
		{`"hi"`, "Text"},
		{"True", "Bool"},
	}
	for _, tt := range tests {
		sc := inferSrc(t, tt.src)
		if got := sc.Type.String(); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.src, got, tt.want)
		}
		if len(sc.Vars) != 0 {
			t.Errorf("%s: expected a monomorphic scheme, got %#v", tt.src, sc.Vars)
		}
	}
}

func TestInferArithmetic(t *testing.T) {
	sc := inferSrc(t, "1 + 2 * 3")
	if sc.Type.String() != "Int" {
		t.Errorf("got %s", sc.Type.String())
	}
}

// TestInferArithmeticIsMonomorphic guards against §4.7's arithmetic
// primitives regressing to a polymorphic `forall a. a -> a -> a`: applied
// to a bound variable rather than integer literals, a wrongly-polymorphic
// Add would still generalise over `x`'s type and hide the defect.
func TestInferArithmeticIsMonomorphic(t *testing.T) {
	sc := inferSrc(t, `\x -> x + x`)
	if sc.Type.String() != "Int -> Int" {
		t.Errorf("got %s, want Int -> Int", sc.Type.String())
	}
	if len(sc.Vars) != 0 {
		t.Errorf("expected a monomorphic scheme, got %#v", sc.Vars)
	}
}

func TestInferArithmeticRejectsNonInt(t *testing.T) {
	e, _, perr := parser.Parse("test.expresso", "True + False")
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}
	if _, err := TypeInference(e, nil); err == nil {
		t.Fatal("expected a unification error: + is Int -> Int -> Int, not polymorphic")
	}
}

func TestInferNegIsMonomorphic(t *testing.T) {
	sc := inferSrc(t, `\x -> -x`)
	if sc.Type.String() != "Int -> Int" {
		t.Errorf("got %s, want Int -> Int", sc.Type.String())
	}
}

// TestInferAbsStaysPolymorphic is PAbs's counterpart to
// TestInferArithmeticIsMonomorphic: §4.7/§9 flag Abs, alone among the
// arithmetic primitives, as deliberately unconstrained.
func TestInferAbsStaysPolymorphic(t *testing.T) {
	sc := inferSrc(t, "abs")
	fn, ok := sc.Type.(types.TFun)
	if !ok {
		t.Fatalf("got %T, want TFun", sc.Type)
	}
	from, ok1 := fn.From.(types.TVar)
	to, ok2 := fn.To.(types.TVar)
	if !ok1 || !ok2 || from.V.ID != to.V.ID {
		t.Fatalf("expected a -> a with the same variable, got %s", sc.Type.String())
	}
	if len(sc.Vars) != 1 {
		t.Errorf("expected abs to stay polymorphic, got %#v", sc.Vars)
	}
}

func TestInferIdentityIsPolymorphic(t *testing.T) {
	sc := inferSrc(t, `\x -> x`)
	fn, ok := sc.Type.(types.TFun)
	if !ok {
		t.Fatalf("got %T, want TFun", sc.Type)
	}
	from, ok1 := fn.From.(types.TVar)
	to, ok2 := fn.To.(types.TVar)
	if !ok1 || !ok2 || from.V.ID != to.V.ID {
		t.Fatalf("expected a -> a with the same variable, got %s", sc.Type.String())
	}
	if len(sc.Vars) != 1 {
		t.Fatalf("expected one quantified variable, got %#v", sc.Vars)
	}
}

func TestInferIf(t *testing.T) {
	sc := inferSrc(t, "if True then 1 else 2")
	if sc.Type.String() != "Int" {
		t.Errorf("got %s", sc.Type.String())
	}
}

func TestInferIfBranchMismatchFails(t *testing.T) {
	e, _, perr := parser.Parse("test.expresso", `if True then 1 else "a"`)
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}
	if _, err := TypeInference(e, nil); err == nil {
		t.Fatal("expected a unification error: branches disagree on type")
	}
}

// TestInferLetGeneralizationFreshness is the canonical let-polymorphism
// property: `id` is generalised at its binding site, so each of its two
// uses in the body gets its own fresh instantiation and `id id` type-checks
// (applying a polymorphic function to itself) even though this would fail
// the occurs check under pure lambda-calculus (monomorphic) typing.
func TestInferLetGeneralizationFreshness(t *testing.T) {
	sc := inferSrc(t, "let id = \\x -> x in id id")
	fn, ok := sc.Type.(types.TFun)
	if !ok {
		t.Fatalf("got %T, want TFun (id id : a -> a)", sc.Type)
	}
	from, ok1 := fn.From.(types.TVar)
	to, ok2 := fn.To.(types.TVar)
	if !ok1 || !ok2 || from.V.ID != to.V.ID {
		t.Fatalf("expected a -> a, got %s", sc.Type.String())
	}
}

func TestInferLetGeneralizationAppliesAtDifferentTypes(t *testing.T) {
	sc := inferSrc(t, "let id = \\x -> x in if id True then id 1 else id 2")
	if sc.Type.String() != "Int" {
		t.Errorf("got %s", sc.Type.String())
	}
}

func TestInferRecordSelectIsRowPolymorphic(t *testing.T) {
	sc := inferSrc(t, "(\\r -> r.x) {x = 1, y = 2}")
	if sc.Type.String() != "Int" {
		t.Errorf("got %s", sc.Type.String())
	}
}

func TestInferRecordSelectSchemeIsPolymorphicInTheRow(t *testing.T) {
	sc := inferSrc(t, `\r -> r.x`)
	fn, ok := sc.Type.(types.TFun)
	if !ok {
		t.Fatalf("got %T, want TFun", sc.Type)
	}
	rec, ok := fn.From.(types.TRecord)
	if !ok {
		t.Fatalf("From: got %T, want TRecord", fn.From)
	}
	labels, tail := types.RowToList(rec.Row)
	if len(labels) != 1 || labels[0].Label != "x" {
		t.Fatalf("got %#v", labels)
	}
	if _, ok := tail.(types.TVar); !ok {
		t.Errorf("tail: got %#v, want an open row variable", tail)
	}
	if len(sc.Vars) < 2 {
		t.Errorf("expected at least a field var and a row var quantified, got %#v", sc.Vars)
	}
}

func TestInferRecordMissingFieldFails(t *testing.T) {
	e, _, perr := parser.Parse("test.expresso", "{x = 1}.y")
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}
	if _, err := TypeInference(e, nil); err == nil {
		t.Fatal("expected an error: the record has no y field")
	}
}

func TestInferVariantInjectAndEliminate(t *testing.T) {
	// Some 1 eliminated by a case that returns an Int on both arms.
	sc := inferSrc(t, `case Some 1 of { Some -> \x -> x, _ -> 0 }`)
	if sc.Type.String() != "Int" {
		t.Errorf("got %s", sc.Type.String())
	}
}

func TestInferUnboundVariableFails(t *testing.T) {
	e, _, perr := parser.Parse("test.expresso", "undefinedName")
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}
	if _, err := TypeInference(e, nil); err == nil {
		t.Fatal("expected an unbound-variable error")
	}
}

func TestInferLambdaOverRecordArgBinder(t *testing.T) {
	sc := inferSrc(t, `(\{x, y} -> x) {x = 1, y = 2}`)
	if sc.Type.String() != "Int" {
		t.Errorf("got %s", sc.Type.String())
	}
}

func TestGeneraliseExcludesEnvironmentVariables(t *testing.T) {
	s := NewTIState(nil)
	v := &types.TyVar{ID: 0, Kind: types.Star}
	env := TypeEnv{"y": {Type: types.TVar{V: v}}}
	sc := s.generalise(env, types.TFun{From: types.TVar{V: v}, To: types.TVar{V: v}})
	if len(sc.Vars) != 0 {
		t.Errorf("expected no quantified variables (v is free in env), got %#v", sc.Vars)
	}
}

func TestInstantiateMintsFreshVariablesPerOccurrence(t *testing.T) {
	s := NewTIState(nil)
	v := &types.TyVar{ID: 0, Kind: types.Star}
	sc := types.Scheme{Vars: []*types.TyVar{v}, Type: types.TFun{From: types.TVar{V: v}, To: types.TVar{V: v}}}
	t1 := s.instantiate(sc)
	t2 := s.instantiate(sc)
	fn1, ok1 := t1.(types.TFun)
	fn2, ok2 := t2.(types.TFun)
	if !ok1 || !ok2 {
		t.Fatalf("got %T, %T, want TFun", t1, t2)
	}
	a := fn1.From.(types.TVar).V.ID
	b := fn2.From.(types.TVar).V.ID
	if a == b {
		t.Errorf("expected distinct fresh variables per instantiation, both got id %d", a)
	}
}

func TestInferExpandsSynonymInAnnotation(t *testing.T) {
	e, synonyms, perr := parser.Parse("test.expresso",
		"type Pair a = {fst : a, snd : a}; {fst = 1, snd = 2} : Pair Int")
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}
	sc, ierr := TypeInference(e, synonymTable(t, synonyms))
	if ierr != nil {
		t.Fatalf("TypeInference failed: %v", ierr)
	}
	if got, want := sc.Type.String(), "{fst : Int, snd : Int}"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestInferSynonymArityMismatchFails(t *testing.T) {
	e, synonyms, perr := parser.Parse("test.expresso",
		"type Pair a = {fst : a, snd : a}; 1 : Pair Int Int")
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}
	if _, err := TypeInference(e, synonymTable(t, synonyms)); err == nil {
		t.Fatal("expected an arity error: Pair takes one argument, got two")
	}
}

func TestInferUnknownSynonymFails(t *testing.T) {
	e, synonyms, perr := parser.Parse("test.expresso", "1 : Missing")
	if perr != nil {
		t.Fatalf("Parse failed: %v", perr)
	}
	if _, err := TypeInference(e, synonymTable(t, synonyms)); err == nil {
		t.Fatal("expected an error: Missing is not a declared synonym")
	}
}

// TestInferAnnotationInstantiatesForall exercises §4.7's requirement that
// Ann/AnnLam/AnnLet instantiate any forall in the annotation with fresh
// variables before unifying, rather than unifying against the raw TForAll
// node the unifier has no case for.
func TestInferAnnotationInstantiatesForall(t *testing.T) {
	sc := inferSrc(t, `(\x -> x) : forall a. a -> a`)
	fn, ok := sc.Type.(types.TFun)
	if !ok {
		t.Fatalf("got %T, want TFun", sc.Type)
	}
	from, ok1 := fn.From.(types.TVar)
	to, ok2 := fn.To.(types.TVar)
	if !ok1 || !ok2 || from.V.ID != to.V.ID {
		t.Fatalf("expected a -> a with the same variable, got %s", sc.Type.String())
	}
}

// TestInferSignatureSectionWithForall exercises the `(: T)` sugar, which
// desugars to TFun{From: T, To: T} — when T itself starts with a forall,
// the forall ends up nested one level under the TFun rather than at the
// annotation's root, and previously failed with "cannot unify" because
// Unify has no TForAll case.
func TestInferSignatureSectionWithForall(t *testing.T) {
	sc := inferSrc(t, "(: forall a. a -> a) (\\x -> x)")
	if _, ok := sc.Type.(types.TFun); !ok {
		t.Fatalf("got %T, want TFun", sc.Type)
	}
}

func TestInferAnnLetInstantiatesForall(t *testing.T) {
	sc := inferSrc(t, "let id : forall a. a -> a = \\x -> x in if id True then id 1 else id 2")
	if sc.Type.String() != "Int" {
		t.Errorf("got %s", sc.Type.String())
	}
}
