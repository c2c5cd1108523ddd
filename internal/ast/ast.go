// Package ast defines the pre-elaboration and elaborated expression trees
// (§3, §4.2). All surface sugar is compiled away by the parser, so by the
// time an Expr reaches the resolver or the inferencer it only ever
// contains Var, Prim, App, Lam, Let, AnnLam, AnnLet, Ann and (pre-
// elaboration only) Import nodes.
package ast

import (
	"github.com/5l1v3r1/expresso/internal/token"
	"github.com/5l1v3r1/expresso/internal/types"
)

// Expr is the sealed sum of expression-AST node kinds. Every node carries
// its source position so diagnostics can always be positioned.
type Expr interface {
	Pos() token.Position
	exprNode()
}

// Var is a reference to a bound term name.
type Var struct {
	Position token.Position
	Name     string
}

func (e *Var) Pos() token.Position { return e.Position }
func (*Var) exprNode()             {}

// Prim is a reference to one of the closed primitive tags (§3, §4.7).
type Prim struct {
	Position token.Position
	Tag      PrimTag
	// Literal payloads, set only for the corresponding PrimTag.
	IntVal  int64
	DblVal  float64
	CharVal rune
	BoolVal bool
	TextVal string
	// Label, set for the field-indexed primitives (RecordSelect, RecordExtend,
	// RecordRestrict, VariantInject, VariantEmbed, VariantElim).
	Label string
}

func (e *Prim) Pos() token.Position { return e.Position }
func (*Prim) exprNode()             {}

// App is function application, e1 e2.
type App struct {
	Position token.Position
	Fn       Expr
	Arg      Expr
}

func (e *App) Pos() token.Position { return e.Position }
func (*App) exprNode()             {}

// Lam is an unannotated lambda, \b -> e.
type Lam struct {
	Position token.Position
	Bind     Bind
	Body     Expr
}

func (e *Lam) Pos() token.Position { return e.Position }
func (*Lam) exprNode()             {}

// Let is a non-recursive, generalising let-binding: let b = e1 in e2.
type Let struct {
	Position token.Position
	Bind     Bind
	Value    Expr
	Body     Expr
}

func (e *Let) Pos() token.Position { return e.Position }
func (*Let) exprNode()             {}

// AnnLam is a lambda whose binder carries an explicit type annotation:
// \(b : T) -> e.
type AnnLam struct {
	Position token.Position
	Bind     Bind
	Type     types.Type
	Body     Expr
}

func (e *AnnLam) Pos() token.Position { return e.Position }
func (*AnnLam) exprNode()             {}

// AnnLet is a let-binding whose bound name carries an explicit type
// annotation: let b : T = e1 in e2.
type AnnLet struct {
	Position token.Position
	Bind     Bind
	Type     types.Type
	Value    Expr
	Body     Expr
}

func (e *AnnLet) Pos() token.Position { return e.Position }
func (*AnnLet) exprNode()             {}

// Ann is an explicitly annotated expression: e : T.
type Ann struct {
	Position token.Position
	Value    Expr
	Type     types.Type
}

func (e *Ann) Pos() token.Position { return e.Position }
func (*Ann) exprNode()             {}

// Import is a pre-elaboration-only node; resolve.Resolve replaces every
// Import with the spliced-in body of the imported file (§4.4). It never
// survives into an elaborated AST.
type Import struct {
	Position token.Position
	Path     string
}

func (e *Import) Pos() token.Position { return e.Position }
func (*Import) exprNode()             {}

// SynonymDecl is a top-level transparent type-synonym declaration
// (§3 "Synonym declaration"): type C a b ... = T;
type SynonymDecl struct {
	Position token.Position
	Name     string
	Formals  []string
	// FormalVars are the same formals as the TyVar identities Body was
	// parsed against, in the same order as Formals, so expanding a
	// TSynonym reference can substitute each argument for the right
	// variable even when a formal never actually occurs in Body.
	FormalVars []*types.TyVar
	Body       types.Type
}
