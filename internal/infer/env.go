// Package infer implements Algorithm W with let-generalisation over the
// elaborated expression AST (§4.6). The TIState/TypeEnv split is grounded
// on wdamron/poly's infer.go, adapted to copy-on-extend environments (see
// TypeEnv) in place of poly's stash-and-restore Context.Types stack, and
// to the explicit ftv(t')\ftv(env') generalisation (§4.6) rather than poly's
// level-based generalisation (recorded as a deliberate divergence; see
// DESIGN.md).
package infer

import "github.com/5l1v3r1/expresso/internal/types"

// TypeEnv maps term variables to their (possibly polymorphic) schemes.
// It is treated as persistent: Extend and ExtendAll both return a new map,
// so a caller can hold onto the outer environment across a recursive ti
// call without the callee's bindings leaking back out.
type TypeEnv map[string]types.Scheme

// Extend returns a copy of env with name bound to sc, shadowing any
// existing binding of the same name.
func (env TypeEnv) Extend(name string, sc types.Scheme) TypeEnv {
	out := make(TypeEnv, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	out[name] = sc
	return out
}

// ExtendAll extends env with every (name, scheme) pair in binds at once.
func (env TypeEnv) ExtendAll(binds map[string]types.Scheme) TypeEnv {
	out := make(TypeEnv, len(env)+len(binds))
	for k, v := range env {
		out[k] = v
	}
	for k, v := range binds {
		out[k] = v
	}
	return out
}

// Apply substitutes every scheme in env per s, used when computing
// ftv(env') for generalise against the substitution accumulated so far.
func (env TypeEnv) Apply(s types.Subst) TypeEnv {
	out := make(TypeEnv, len(env))
	for k, v := range env {
		out[k] = types.ApplyScheme(s, v)
	}
	return out
}

// Ftv returns the free type variables of every scheme in env.
func (env TypeEnv) Ftv() []*types.TyVar {
	return types.FtvEnv(map[string]types.Scheme(env))
}
