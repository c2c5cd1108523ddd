package types

import "fmt"

// Kind distinguishes ordinary (Star) type variables from row variables,
// which may only ever be substituted by a row (TRowExtend/TRowEmpty),
// never by a Star-kinded type (§3 "Kinds").
type Kind int

const (
	Star Kind = iota
	Row
)

func (k Kind) String() string {
	if k == Row {
		return "Row"
	}
	return "Star"
}

// Flavour records where a type variable came from, purely for
// diagnostics: a Wildcard came from a literal `_` the user wrote and
// should never survive into a displayed scheme unsubstituted, a Bound
// variable came from an explicit `forall a.` the user wrote, and an
// Inferred variable was freshly minted by the inferencer itself.
type Flavour int

const (
	Inferred Flavour = iota
	Bound
	Wildcard
)

// Constraint is the closed set of constraints a type variable may carry
// (§3 "Constrained type variables"): ordinary Star variables may be
// constrained to one of Eq/Ord/Num (the typeclass-flavoured constraints
// the parser recognizes as `Eq a`, `Ord a`, `Num a`), and Row variables
// may carry a `lacks` set naming labels the row must not define.
type Constraint struct {
	Eq, Ord, Num bool
	Lacks        map[string]bool
}

// None reports whether this constraint carries no restriction at all.
func (c Constraint) None() bool {
	return !c.Eq && !c.Ord && !c.Num && len(c.Lacks) == 0
}

// Union merges two constraints on type variables that have just been
// unified together (§4.5 unionConstraints); Star-flavoured flags are
// OR'd and lacks-sets are unioned.
func (c Constraint) Union(o Constraint) Constraint {
	out := Constraint{
		Eq:  c.Eq || o.Eq,
		Ord: c.Ord || o.Ord,
		Num: c.Num || o.Num,
	}
	if len(c.Lacks) > 0 || len(o.Lacks) > 0 {
		out.Lacks = make(map[string]bool, len(c.Lacks)+len(o.Lacks))
		for l := range c.Lacks {
			out.Lacks[l] = true
		}
		for l := range o.Lacks {
			out.Lacks[l] = true
		}
	}
	return out
}

// TyVar is a single type variable identity: unification never mutates a
// TyVar in place, it only ever extends the ambient Subst that maps ids
// to their bound Type.
type TyVar struct {
	ID         int
	Kind       Kind
	Flavour    Flavour
	Constraint Constraint
	// Display is the name the user wrote (for Bound/Wildcard variables
	// introduced by an explicit forall) or empty for a fresh Inferred
	// variable, which is instead displayed by its ID under a letter
	// naming scheme (see String()).
	Display string
}

func (v *TyVar) String() string {
	if v.Display != "" {
		return v.Display
	}
	return fmt.Sprintf("t%d", v.ID)
}

// supply is a monotonic counter handed out by infer.TIState.newTyVar;
// types itself never mints fresh variables so the inferencer stays the
// single source of truth for variable identity.
