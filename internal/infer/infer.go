package infer

import (
	"github.com/5l1v3r1/expresso/internal/ast"
	"github.com/5l1v3r1/expresso/internal/diag"
	"github.com/5l1v3r1/expresso/internal/token"
	"github.com/5l1v3r1/expresso/internal/types"
	"github.com/5l1v3r1/expresso/internal/unify"
)

// TIState threads the two pieces of mutable state Algorithm W needs as
// it walks an expression: a monotonic fresh-variable supply and the
// substitution accumulated by every Unify call so far. Neither field is
// ever read or written outside this package; tiPrim/tiBinds take *TIState
// so they can mint variables and extend the substitution in place.
type TIState struct {
	supply   int
	subst    types.Subst
	synonyms map[string]*ast.SynonymDecl
}

// NewTIState returns an empty inference state. synonyms is the lookup
// table resolve.BuildSynonymTable built from every synonym declared in
// the program's import graph; it may be nil for a program that declares
// none.
func NewTIState(synonyms map[string]*ast.SynonymDecl) *TIState {
	return &TIState{subst: types.NewSubst(), synonyms: synonyms}
}

func (s *TIState) newTyVar(k types.Kind) *types.TyVar {
	return s.freshSrc().Var(k)
}

// instantiate replaces a scheme's quantified variables with fresh ones,
// preserving each variable's kind and constraint (§4.6).
func (s *TIState) instantiate(sc types.Scheme) types.Type {
	if len(sc.Vars) == 0 {
		return sc.Type
	}
	sub := make(types.Subst, len(sc.Vars))
	for _, v := range sc.Vars {
		fresh := s.newTyVar(v.Kind)
		fresh.Constraint = v.Constraint
		sub[v.ID] = types.TVar{V: fresh}
	}
	return types.Apply(sub, sc.Type)
}

// instantiateAnnotation strips every forall wherever it occurs within an
// annotation's type expression, replacing each one's bound variables with
// fresh variables that carry the same kind and constraint (§4.7), and
// expands every TSynonym reference against s.synonyms. Unlike instantiate,
// which works from a Scheme generalise already computed, this walks a type
// parsed straight off an annotation, where a forall need not sit at the
// root — e.g. `(: T)` desugars to TFun{From: T, To: T}, which nests T's
// leading forall one level down on both sides.
func (s *TIState) instantiateAnnotation(t types.Type, pos token.Position) (types.Type, *diag.Error) {
	switch n := t.(type) {
	case types.TForAll:
		body, err := s.instantiateAnnotation(n.Body, pos)
		if err != nil {
			return nil, err
		}
		if len(n.Vars) == 0 {
			return body, nil
		}
		sub := make(types.Subst, len(n.Vars))
		for _, v := range n.Vars {
			fresh := s.newTyVar(v.Kind)
			fresh.Constraint = v.Constraint
			sub[v.ID] = types.TVar{V: fresh}
		}
		return types.Apply(sub, body), nil
	case types.TList:
		elem, err := s.instantiateAnnotation(n.Elem, pos)
		if err != nil {
			return nil, err
		}
		return types.TList{Elem: elem}, nil
	case types.TFun:
		from, err := s.instantiateAnnotation(n.From, pos)
		if err != nil {
			return nil, err
		}
		to, err := s.instantiateAnnotation(n.To, pos)
		if err != nil {
			return nil, err
		}
		return types.TFun{From: from, To: to}, nil
	case types.TRecord:
		row, err := s.instantiateAnnotation(n.Row, pos)
		if err != nil {
			return nil, err
		}
		return types.TRecord{Row: row}, nil
	case types.TVariant:
		row, err := s.instantiateAnnotation(n.Row, pos)
		if err != nil {
			return nil, err
		}
		return types.TVariant{Row: row}, nil
	case types.TRowExtend:
		head, err := s.instantiateAnnotation(n.Head, pos)
		if err != nil {
			return nil, err
		}
		tail, err := s.instantiateAnnotation(n.Tail, pos)
		if err != nil {
			return nil, err
		}
		return types.TRowExtend{Label: n.Label, Head: head, Tail: tail}, nil
	case types.TSynonym:
		return s.expandSynonym(n, pos)
	default:
		return t, nil
	}
}

// expandSynonym looks n.Name up in the synonym table, substitutes each
// (itself instantiated/expanded) argument for the corresponding formal in
// the synonym's body, and instantiates/expands the result in turn, so a
// synonym whose body names another synonym or carries its own forall
// unfolds completely (§4.4/§4.7).
func (s *TIState) expandSynonym(n types.TSynonym, pos token.Position) (types.Type, *diag.Error) {
	decl, ok := s.synonyms[n.Name]
	if !ok {
		return nil, diag.New(diag.ErrUnboundSynonym, pos, "unknown type synonym %q", n.Name)
	}
	if len(n.Args) != len(decl.FormalVars) {
		return nil, diag.New(diag.ErrSynonymArity, pos,
			"synonym %q expects %d argument(s), got %d", n.Name, len(decl.FormalVars), len(n.Args))
	}
	sub := make(types.Subst, len(decl.FormalVars))
	for i, v := range decl.FormalVars {
		arg, err := s.instantiateAnnotation(n.Args[i], pos)
		if err != nil {
			return nil, err
		}
		sub[v.ID] = arg
	}
	return s.instantiateAnnotation(types.Apply(sub, decl.Body), pos)
}

// generalise quantifies t over every free variable not also free in env
// (ftv(t) \ ftv(env), §4.6), after applying the inferencer's current
// substitution to both so generalisation sees each variable's final
// shape rather than a stale pre-unification one.
func (s *TIState) generalise(env TypeEnv, t types.Type) types.Scheme {
	t = types.Apply(s.subst, t)
	envFtv := map[int]bool{}
	for _, v := range env.Apply(s.subst).Ftv() {
		envFtv[v.ID] = true
	}
	var vars []*types.TyVar
	seen := map[int]bool{}
	for _, v := range types.Ftv(t) {
		if !envFtv[v.ID] && !seen[v.ID] {
			seen[v.ID] = true
			vars = append(vars, v)
		}
	}
	return types.Scheme{Vars: vars, Type: t}
}

func (s *TIState) unify(t1, t2 types.Type, pos token.Position) *diag.Error {
	out, err := unify.Unify(s.subst, s.freshSrc(), t1, t2, pos)
	if err != nil {
		return err
	}
	s.subst = out
	return nil
}

// ti is Algorithm W: it returns the type of e under env, extending
// s.subst as a side effect of every Unify call along the way.
func (s *TIState) ti(env TypeEnv, e ast.Expr) (types.Type, *diag.Error) {
	switch n := e.(type) {
	case *ast.Var:
		sc, ok := env[n.Name]
		if !ok {
			return nil, diag.New(diag.ErrUnboundVar, n.Position, "unbound variable %s", n.Name)
		}
		return s.instantiate(sc), nil

	case *ast.Prim:
		return s.tiPrim(n)

	case *ast.App:
		tFn, err := s.ti(env, n.Fn)
		if err != nil {
			return nil, err
		}
		tArg, err := s.ti(env, n.Arg)
		if err != nil {
			return nil, err
		}
		tRes := types.TVar{V: s.newTyVar(types.Star)}
		if err := s.unify(types.Apply(s.subst, tFn), types.TFun{From: tArg, To: tRes}, n.Position); err != nil {
			return nil, err
		}
		return types.Apply(s.subst, tRes), nil

	case *ast.Lam:
		argTy := types.TVar{V: s.newTyVar(types.Star)}
		binds, err := s.tiBinds(n.Bind, argTy)
		if err != nil {
			return nil, err
		}
		schemes := make(map[string]types.Scheme, len(binds))
		for k, v := range binds {
			schemes[k] = types.Scheme{Type: v}
		}
		tBody, err := s.ti(env.ExtendAll(schemes), n.Body)
		if err != nil {
			return nil, err
		}
		return types.TFun{From: types.Apply(s.subst, argTy), To: tBody}, nil

	case *ast.AnnLam:
		argTy, err := s.instantiateAnnotation(n.Type, n.Position)
		if err != nil {
			return nil, err
		}
		binds, err := s.tiBinds(n.Bind, argTy)
		if err != nil {
			return nil, err
		}
		schemes := make(map[string]types.Scheme, len(binds))
		for k, v := range binds {
			schemes[k] = types.Scheme{Type: v}
		}
		tBody, err := s.ti(env.ExtendAll(schemes), n.Body)
		if err != nil {
			return nil, err
		}
		return types.TFun{From: types.Apply(s.subst, argTy), To: tBody}, nil

	case *ast.Let:
		tVal, err := s.ti(env, n.Value)
		if err != nil {
			return nil, err
		}
		binds, err := s.tiBinds(n.Bind, tVal)
		if err != nil {
			return nil, err
		}
		schemes := make(map[string]types.Scheme, len(binds))
		for k, v := range binds {
			schemes[k] = s.generalise(env, v)
		}
		return s.ti(env.ExtendAll(schemes), n.Body)

	case *ast.AnnLet:
		tVal, err := s.ti(env, n.Value)
		if err != nil {
			return nil, err
		}
		annTy, err := s.instantiateAnnotation(n.Type, n.Position)
		if err != nil {
			return nil, err
		}
		if err := s.unify(tVal, annTy, n.Position); err != nil {
			return nil, err
		}
		binds, err := s.tiBinds(n.Bind, annTy)
		if err != nil {
			return nil, err
		}
		schemes := make(map[string]types.Scheme, len(binds))
		for k, v := range binds {
			schemes[k] = s.generalise(env, v)
		}
		return s.ti(env.ExtendAll(schemes), n.Body)

	case *ast.Ann:
		tVal, err := s.ti(env, n.Value)
		if err != nil {
			return nil, err
		}
		annTy, err := s.instantiateAnnotation(n.Type, n.Position)
		if err != nil {
			return nil, err
		}
		if err := s.unify(tVal, annTy, n.Position); err != nil {
			return nil, err
		}
		return types.Apply(s.subst, annTy), nil
	}

	return nil, diag.New(diag.ErrUnboundVar, e.Pos(), "unsupported expression node %T", e)
}

// TypeInference computes the principal type scheme of a closed,
// elaborated expression (§4.6's top-level entry point: generalise applied
// to ti run in the empty environment). synonyms is the table
// resolve.BuildSynonymTable produced from the program's accumulated
// synonym declarations; pass nil for a program that declares none.
func TypeInference(e ast.Expr, synonyms map[string]*ast.SynonymDecl) (types.Scheme, *diag.Error) {
	s := NewTIState(synonyms)
	t, err := s.ti(TypeEnv{}, e)
	if err != nil {
		return types.Scheme{}, err
	}
	return s.generalise(TypeEnv{}, t), nil
}
