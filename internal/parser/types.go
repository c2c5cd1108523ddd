package parser

import (
	"github.com/5l1v3r1/expresso/internal/diag"
	"github.com/5l1v3r1/expresso/internal/token"
	"github.com/5l1v3r1/expresso/internal/types"
)

// occurrence records the first position at which a name was resolved to a
// type variable within the annotation currently being parsed, so the
// unbound-tyvar check (§4.3) can point at the offending use rather than
// just naming it.
type occurrence struct {
	name string
	pos  token.Position
}

// tyVarScope tracks the type variables already named within the type
// expression currently being parsed, so two occurrences of the same
// lowercase name (whether introduced by an explicit `forall` or left
// implicit) resolve to the same TyVar identity. bound records the names
// introduced by a `forall` binder list anywhere in the annotation; any
// name that resolve mints without ever becoming bound is a free tyvar,
// and §4.3 requires the annotation to have none (outside `_`).
type tyVarScope struct {
	vars   map[string]*types.TyVar
	bound  map[string]bool
	occurs []occurrence
}

func newTyVarScope() *tyVarScope {
	return &tyVarScope{vars: map[string]*types.TyVar{}, bound: map[string]bool{}}
}

// bindForall registers name as introduced by a `forall` binder list: it is
// exempt from the unbound-tyvar check regardless of where else it occurs
// in the annotation.
func (scope *tyVarScope) bindForall(name string, v *types.TyVar) {
	scope.vars[name] = v
	scope.bound[name] = true
}

func (scope *tyVarScope) resolve(p *Parser, name string, k types.Kind, pos token.Position) *types.TyVar {
	if v, ok := scope.vars[name]; ok {
		return v
	}
	v := p.newTyVar(k, types.Inferred, name)
	scope.vars[name] = v
	scope.occurs = append(scope.occurs, occurrence{name: name, pos: pos})
	return v
}

// checkUnbound implements §4.3's unbound-tyvar check: the free tyvars of
// the annotation minus `_` must be empty outside any `forall`. Wildcards
// never pass through resolve, so they never appear in scope.occurs.
func (scope *tyVarScope) checkUnbound() *diag.Error {
	for _, occ := range scope.occurs {
		if !scope.bound[occ.name] {
			return diag.New(diag.ErrUnboundTyVar, occ.pos,
				"unbound type variable %q (not introduced by an enclosing forall)", occ.name)
		}
	}
	return nil
}

// newTyVar mints a TyVar with a parser-local id. Parser ids count down
// from -1 so they can never collide with the non-negative ids the
// inferencer's TIState mints at inference time — annotations and
// synonym bodies are parsed once, up front, long before any ti() call.
func (p *Parser) newTyVar(k types.Kind, flavour types.Flavour, display string) *types.TyVar {
	p.tyVarSupply--
	return &types.TyVar{ID: p.tyVarSupply, Kind: k, Flavour: flavour, Display: display}
}

// parseTypeExpr parses one complete type expression (§4.3): an optional
// leading `forall` quantifier and constraint context, then an arrow type,
// followed by the unbound-tyvar check over the whole annotation.
func (p *Parser) parseTypeExpr() (types.Type, *diag.Error) {
	t, _, err := p.parseTypeExprWithFormals(nil)
	return t, err
}

// parseTypeExprWithFormals is parseTypeExpr for a context that supplies
// its own binder list outside of any `forall` — namely a synonym
// declaration's formals (§3), which scope the synonym body the same way
// a `forall` would without the surface keyword.
func (p *Parser) parseTypeExprWithFormals(formals []string) (types.Type, []*types.TyVar, *diag.Error) {
	scope := newTyVarScope()
	formalVars := make([]*types.TyVar, len(formals))
	for i, name := range formals {
		v := p.newTyVar(types.Star, types.Bound, name)
		scope.bindForall(name, v)
		formalVars[i] = v
	}
	t, err := p.parseTypeExprIn(scope)
	if err != nil {
		return nil, nil, err
	}
	if err := scope.checkUnbound(); err != nil {
		return nil, nil, err
	}
	return t, formalVars, nil
}

func (p *Parser) parseTypeExprIn(scope *tyVarScope) (types.Type, *diag.Error) {
	if p.curIs(token.FORALL) {
		p.advance()
		var bound []*types.TyVar
		for p.curIs(token.IDENT_LOWER) {
			name := p.advance().Lexeme
			v := p.newTyVar(types.Star, types.Bound, name)
			scope.bindForall(name, v)
			bound = append(bound, v)
		}
		if _, err := p.expect(token.DOT); err != nil {
			return nil, err
		}
		if err := p.parseConstraintContext(scope); err != nil {
			return nil, err
		}
		body, err := p.parseArrowType(scope)
		if err != nil {
			return nil, err
		}
		return types.TForAll{Vars: bound, Body: body}, nil
	}
	if err := p.parseConstraintContext(scope); err != nil {
		return nil, err
	}
	return p.parseArrowType(scope)
}

// parseConstraintContext consumes an optional `C1 a, C2 b => ` prefix
// (§3 "Constrained type variables"), recording each named constraint
// against the relevant scope variable, then the `=>` itself if present.
// Per §4.3 the parser must reject a constraint naming a variable that is
// not already in the binder list (i.e. bound by an enclosing forall).
func (p *Parser) parseConstraintContext(scope *tyVarScope) *diag.Error {
	start := p.pos
	var apply []func() *diag.Error
	ok := true
	for {
		var classTok token.Type
		switch p.cur().Type {
		case token.EQ_CLASS, token.ORD_CLASS, token.NUM_CLASS:
			classTok = p.cur().Type
		default:
			ok = false
		}
		if !ok {
			break
		}
		p.advance()
		if !p.curIs(token.IDENT_LOWER) {
			ok = false
			break
		}
		nameTok := p.advance()
		name := nameTok.Lexeme
		pos := nameTok.Pos
		ct := classTok
		apply = append(apply, func() *diag.Error {
			v, inBinderList := scope.vars[name]
			if !inBinderList || !scope.bound[name] {
				return diag.New(diag.ErrUnboundTyVar, pos,
					"constraint refers to %q, which is not in the forall binder list", name)
			}
			switch ct {
			case token.EQ_CLASS:
				v.Constraint.Eq = true
			case token.ORD_CLASS:
				v.Constraint.Ord = true
			case token.NUM_CLASS:
				v.Constraint.Num = true
			}
			return nil
		})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if ok && p.curIs(token.FATARROW) {
		p.advance()
		for _, f := range apply {
			if err := f(); err != nil {
				return err
			}
		}
		return nil
	}
	p.pos = start
	return nil
}

func (p *Parser) parseArrowType(scope *tyVarScope) (types.Type, *diag.Error) {
	from, err := p.parseAppType(scope)
	if err != nil {
		return nil, err
	}
	if p.curIs(token.ARROW) {
		p.advance()
		to, err := p.parseArrowType(scope)
		if err != nil {
			return nil, err
		}
		return types.TFun{From: from, To: to}, nil
	}
	return from, nil
}

func (p *Parser) parseAppType(scope *tyVarScope) (types.Type, *diag.Error) {
	head, err := p.parseAtomType(scope)
	if err != nil {
		return nil, err
	}
	syn, isSyn := head.(types.TSynonym)
	for p.startsAtomType() {
		arg, err := p.parseAtomType(scope)
		if err != nil {
			return nil, err
		}
		if isSyn {
			syn.Args = append(syn.Args, arg)
		}
	}
	if isSyn {
		return syn, nil
	}
	return head, nil
}

func (p *Parser) startsAtomType() bool {
	switch p.cur().Type {
	case token.IDENT_UPPER, token.IDENT_LOWER, token.WILDCARD,
		token.LPAREN, token.LBRACKET, token.LBRACE, token.LT:
		return true
	}
	return false
}

var baseTypes = map[string]types.Type{
	"Int": types.TInt{}, "Double": types.TDbl{}, "Bool": types.TBool{},
	"Char": types.TChar{}, "Text": types.TText{},
}

func (p *Parser) parseAtomType(scope *tyVarScope) (types.Type, *diag.Error) {
	switch p.cur().Type {
	case token.LPAREN:
		p.advance()
		t, err := p.parseTypeExprIn(scope)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return t, nil
	case token.IDENT_UPPER:
		name := p.advance().Lexeme
		if base, ok := baseTypes[name]; ok {
			return base, nil
		}
		return types.TSynonym{Name: name}, nil
	case token.IDENT_LOWER:
		tok := p.advance()
		return types.TVar{V: scope.resolve(p, tok.Lexeme, types.Star, tok.Pos)}, nil
	case token.WILDCARD:
		p.advance()
		return types.TVar{V: p.newTyVar(types.Star, types.Wildcard, "")}, nil
	case token.LBRACKET:
		p.advance()
		elem, err := p.parseTypeExprIn(scope)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return types.TList{Elem: elem}, nil
	case token.LBRACE:
		p.advance()
		row, err := p.parseRow(scope, types.TRowEmpty{})
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}
		return types.TRecord{Row: row}, nil
	case token.LT:
		p.advance()
		row, err := p.parseRow(scope, types.TRowEmpty{})
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.GT); err != nil {
			return nil, err
		}
		return types.TVariant{Row: row}, nil
	}
	return nil, diag.New(diag.ErrLex, p.cur().Pos, "expected a type, found %s", p.cur().Type)
}

// parseRow parses the comma-separated `ℓ : T` cells of a record/variant
// row and its optional `| r` or `| _` open tail, building the TRowExtend
// spine right-to-left over emptyTail.
func (p *Parser) parseRow(scope *tyVarScope, emptyTail types.Type) (types.Type, *diag.Error) {
	type cell struct {
		label string
		ty    types.Type
	}
	var cells []cell
	for p.curIs(token.IDENT_LOWER) || p.curIs(token.IDENT_UPPER) {
		label := p.advance().Lexeme
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		ty, err := p.parseTypeExprIn(scope)
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell{label, ty})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	tail := emptyTail
	if p.curIs(token.PIPE) {
		p.advance()
		if p.curIs(token.WILDCARD) {
			p.advance()
			tail = types.TVar{V: p.newTyVar(types.Row, types.Wildcard, "")}
		} else {
			name, err := p.expect(token.IDENT_LOWER)
			if err != nil {
				return nil, err
			}
			tail = types.TVar{V: scope.resolve(p, name.Lexeme, types.Row, name.Pos)}
		}
	}
	row := tail
	for i := len(cells) - 1; i >= 0; i-- {
		row = types.TRowExtend{Label: cells[i].label, Head: cells[i].ty, Tail: row}
	}
	return row, nil
}
