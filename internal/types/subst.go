package types

// Scheme is a type generalised over a set of quantified variables
// (§4.6 "Let-generalisation"): ∀a1 ... an. T.
type Scheme struct {
	Vars []*TyVar
	Type Type
}

// Subst is a finite map from type-variable id to the Type it stands
// for. Composition follows §4.5: (s1 `compose` s2) applies s1 to every
// binding of s2 and then adds s1's bindings, keeping s1's where both bind
// the same id.
type Subst map[int]Type

// NewSubst returns the identity substitution.
func NewSubst() Subst { return Subst{} }

// Compose returns s1 ∘ s2. When s1 and s2 bind disjoint ids, applying
// the result equals applying s2 first and then s1; where both bind the
// same id, s1's binding wins.
func Compose(s1, s2 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for id, t := range s2 {
		out[id] = Apply(s1, t)
	}
	for id, t := range s1 {
		out[id] = t
	}
	return out
}

// Apply substitutes every free type variable in t per s.
func Apply(s Subst, t Type) Type {
	switch n := t.(type) {
	case TVar:
		if rep, ok := s[n.V.ID]; ok {
			if tv, isVar := rep.(TVar); isVar && tv.V.ID == n.V.ID {
				return rep
			}
			return Apply(s, rep)
		}
		return n
	case TList:
		return TList{Elem: Apply(s, n.Elem)}
	case TFun:
		return TFun{From: Apply(s, n.From), To: Apply(s, n.To)}
	case TRecord:
		return TRecord{Row: Apply(s, n.Row)}
	case TVariant:
		return TVariant{Row: Apply(s, n.Row)}
	case TRowExtend:
		return TRowExtend{Label: n.Label, Head: Apply(s, n.Head), Tail: Apply(s, n.Tail)}
	case TSynonym:
		args := make([]Type, len(n.Args))
		for i, a := range n.Args {
			args[i] = Apply(s, a)
		}
		return TSynonym{Name: n.Name, Args: args}
	case TForAll:
		return TForAll{Vars: n.Vars, Body: Apply(s, n.Body)}
	default:
		return t
	}
}

// ApplyScheme substitutes free variables in a Scheme's body, leaving its
// own quantified variables untouched (they are bound, not free).
func ApplyScheme(s Subst, sc Scheme) Scheme {
	inner := make(Subst, len(s))
	bound := make(map[int]bool, len(sc.Vars))
	for _, v := range sc.Vars {
		bound[v.ID] = true
	}
	for id, t := range s {
		if !bound[id] {
			inner[id] = t
		}
	}
	return Scheme{Vars: sc.Vars, Type: Apply(inner, sc.Type)}
}

// Ftv returns the free type variables of t, in first-occurrence order.
func Ftv(t Type) []*TyVar {
	seen := map[int]bool{}
	var out []*TyVar
	var walk func(Type)
	walk = func(t Type) {
		switch n := t.(type) {
		case TVar:
			if !seen[n.V.ID] {
				seen[n.V.ID] = true
				out = append(out, n.V)
			}
		case TList:
			walk(n.Elem)
		case TFun:
			walk(n.From)
			walk(n.To)
		case TRecord:
			walk(n.Row)
		case TVariant:
			walk(n.Row)
		case TRowExtend:
			walk(n.Head)
			walk(n.Tail)
		case TSynonym:
			for _, a := range n.Args {
				walk(a)
			}
		case TForAll:
			bound := map[int]bool{}
			for _, v := range n.Vars {
				bound[v.ID] = true
			}
			for _, fv := range Ftv(n.Body) {
				if !bound[fv.ID] && !seen[fv.ID] {
					seen[fv.ID] = true
					out = append(out, fv)
				}
			}
		}
	}
	walk(t)
	return out
}

// FtvScheme returns the free type variables of a Scheme: those of its
// body minus the ones it quantifies over.
func FtvScheme(sc Scheme) []*TyVar {
	bound := make(map[int]bool, len(sc.Vars))
	for _, v := range sc.Vars {
		bound[v.ID] = true
	}
	var out []*TyVar
	for _, fv := range Ftv(sc.Type) {
		if !bound[fv.ID] {
			out = append(out, fv)
		}
	}
	return out
}

// FtvEnv returns the union of the free type variables of every scheme in
// a set of bindings, used by generalise to compute ftv(env) (§4.6).
func FtvEnv(schemes map[string]Scheme) []*TyVar {
	seen := map[int]bool{}
	var out []*TyVar
	for _, sc := range schemes {
		for _, v := range FtvScheme(sc) {
			if !seen[v.ID] {
				seen[v.ID] = true
				out = append(out, v)
			}
		}
	}
	return out
}
