package parser

import (
	"strconv"

	"github.com/5l1v3r1/expresso/internal/ast"
	"github.com/5l1v3r1/expresso/internal/config"
	"github.com/5l1v3r1/expresso/internal/diag"
	"github.com/5l1v3r1/expresso/internal/token"
	"github.com/5l1v3r1/expresso/internal/types"
)

// opInfo describes one surface infix operator (§4.2's precedence table).
type opInfo struct {
	prec  int
	right bool
	tag   ast.PrimTag
}

var binOps = map[token.Type]opInfo{
	token.OR:        {1, true, ast.POr},
	token.AND:       {2, true, ast.PAnd},
	token.DOUBLE_EQ: {3, false, ast.PEq},
	token.NOT_EQ:    {3, false, ast.PNEq},
	token.GT:        {3, false, ast.PRGT},
	token.GTE:       {3, false, ast.PRGTE},
	token.LT:        {3, false, ast.PRLT},
	token.LTE:       {3, false, ast.PRLTE},
	token.CONCAT:    {4, false, ast.PListAppend},
	token.DCOLON:    {4, true, ast.PListCons},
	token.PLUS:      {5, false, ast.PAdd},
	token.MINUS:     {5, false, ast.PSub},
	token.STAR:      {6, false, ast.PMul},
	token.SLASH:     {6, false, ast.PDiv},
}

// parseExpr is the operator-precedence-climbing entry point (§4.2); it
// additionally recognizes a trailing `: T` at the very lowest precedence
// as an Ann node, so annotations can wrap any expression form including
// let/if/lambda/case.
func (p *Parser) parseExpr(minPrec int) (ast.Expr, *diag.Error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		return nil, diag.New(diag.ErrLex, p.cur().Pos, "expression too complex: recursion depth limit exceeded")
	}

	left, err := p.parseOpExpr(minPrec)
	if err != nil {
		return nil, err
	}
	if minPrec == 0 && p.curIs(token.COLON) {
		pos := p.cur().Pos
		p.advance()
		ty, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.Ann{Position: pos, Value: left, Type: ty}
	}
	return left, nil
}

func (p *Parser) parseOpExpr(minPrec int) (ast.Expr, *diag.Error) {
	left, err := p.parseApp()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := binOps[p.cur().Type]
		if !ok || op.prec < minPrec {
			return left, nil
		}
		pos := p.cur().Pos
		p.advance()
		nextMin := op.prec + 1
		if op.right {
			nextMin = op.prec
		}
		right, err := p.parseOpExpr(nextMin)
		if err != nil {
			return nil, err
		}
		left = &ast.App{
			Position: pos,
			Fn:       &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: op.tag}, Arg: left},
			Arg:      right,
		}
	}
}

// parseApp parses a postfix-projected atom, then greedily applies it to
// further atoms via plain juxtaposition (§4.2: application binds tighter
// than any operator).
func (p *Parser) parseApp() (ast.Expr, *diag.Error) {
	fn, err := p.parsePostfixAtom()
	if err != nil {
		return nil, err
	}
	for p.startsAtom() {
		arg, err := p.parsePostfixAtom()
		if err != nil {
			return nil, err
		}
		fn = &ast.App{Position: fn.Pos(), Fn: fn, Arg: arg}
	}
	return fn, nil
}

func (p *Parser) startsAtom() bool {
	switch p.cur().Type {
	case token.INT, token.DOUBLE, token.CHAR, token.STRING, token.TRUE, token.FALSE,
		token.IDENT_LOWER, token.IDENT_UPPER, token.LPAREN, token.LBRACKET,
		token.LBRACE, token.LBRACE_BAR, token.LANGLE_BAR, token.BACKSLASH,
		token.LET, token.IF, token.CASE, token.IMPORT:
		return true
	}
	return false
}

// parsePostfixAtom parses one atom, then `.ℓ` (record selection) and
// `\ℓ` (record restriction) postfixes, which bind tighter than
// application (§4.2).
func (p *Parser) parsePostfixAtom() (ast.Expr, *diag.Error) {
	atom, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case token.DOT:
			pos := p.cur().Pos
			p.advance()
			label, err := p.expect(token.IDENT_LOWER)
			if err != nil {
				return nil, err
			}
			atom = &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PRecordSelect, Label: label.Lexeme}, Arg: atom}
		case token.BACKSLASH:
			if !p.peekIs(token.IDENT_LOWER) {
				return atom, nil
			}
			pos := p.cur().Pos
			p.advance()
			label := p.advance()
			atom = &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PRecordRestrict, Label: label.Lexeme}, Arg: atom}
		default:
			return atom, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, *diag.Error) {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		v, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return &ast.Prim{Position: tok.Pos, Tag: ast.PInt, IntVal: v}, nil
	case token.DOUBLE:
		p.advance()
		v, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &ast.Prim{Position: tok.Pos, Tag: ast.PDbl, DblVal: v}, nil
	case token.CHAR:
		p.advance()
		r := rune(0)
		if len(tok.Lexeme) > 0 {
			r = []rune(tok.Lexeme)[0]
		}
		return &ast.Prim{Position: tok.Pos, Tag: ast.PChar, CharVal: r}, nil
	case token.STRING:
		p.advance()
		return &ast.Prim{Position: tok.Pos, Tag: ast.PText, TextVal: tok.Lexeme}, nil
	case token.TRUE:
		p.advance()
		return &ast.Prim{Position: tok.Pos, Tag: ast.PBool, BoolVal: true}, nil
	case token.FALSE:
		p.advance()
		return &ast.Prim{Position: tok.Pos, Tag: ast.PBool, BoolVal: false}, nil

	case token.MINUS:
		p.advance()
		operand, err := p.parseApp()
		if err != nil {
			return nil, err
		}
		return &ast.App{Position: tok.Pos, Fn: &ast.Prim{Position: tok.Pos, Tag: ast.PNeg}, Arg: operand}, nil

	case token.IDENT_UPPER:
		p.advance()
		return &ast.Prim{Position: tok.Pos, Tag: ast.PVariantInject, Label: tok.Lexeme}, nil

	case token.IDENT_LOWER:
		p.advance()
		if tag, ok := ast.PrimFromName(tok.Lexeme); ok {
			prim := &ast.Prim{Position: tok.Pos, Tag: tag}
			if tag.NeedsLabelArg() {
				lit, err := p.expect(token.STRING)
				if err != nil {
					return nil, err
				}
				prim.Label = lit.Lexeme
			}
			return prim, nil
		}
		return &ast.Var{Position: tok.Pos, Name: tok.Lexeme}, nil

	case token.LPAREN:
		return p.parseParenOrSection()

	case token.LBRACKET:
		return p.parseListLiteral()

	case token.LBRACE:
		return p.parseRecordLiteral()

	case token.LBRACE_BAR:
		return p.parseDiffRecord()

	case token.LANGLE_BAR:
		return p.parseVariantEmbed()

	case token.BACKSLASH:
		return p.parseLambda()

	case token.LET:
		return p.parseLet()

	case token.IF:
		return p.parseIf()

	case token.CASE:
		return p.parseCase()

	case token.IMPORT:
		p.advance()
		path, err := p.expect(token.STRING)
		if err != nil {
			return nil, err
		}
		return &ast.Import{Position: tok.Pos, Path: path.Lexeme}, nil
	}

	return nil, diag.New(diag.ErrLex, tok.Pos, "unexpected token %s", tok.Type)
}

// --- Parenthesized expressions and operator sections --------------------

func (p *Parser) parseParenOrSection() (ast.Expr, *diag.Error) {
	pos := p.cur().Pos
	p.advance() // consume '('

	if p.curIs(token.COLON) {
		// `(: T)` signature section: the annotated identity function.
		p.advance()
		ty, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		id := &ast.Lam{Position: pos, Bind: &ast.Arg{Position: pos, Name: "x"}, Body: &ast.Var{Position: pos, Name: "x"}}
		return &ast.Ann{Position: pos, Value: id, Type: types.TFun{From: ty, To: ty}}, nil
	}

	if op, ok := binOps[p.cur().Type]; ok && p.peekIs(token.RPAREN) {
		p.advance()
		p.advance()
		a, b := "x", "y"
		body := &ast.App{Position: pos,
			Fn:  &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: op.tag}, Arg: &ast.Var{Position: pos, Name: a}},
			Arg: &ast.Var{Position: pos, Name: b}}
		return &ast.Lam{Position: pos, Bind: &ast.Arg{Position: pos, Name: a},
			Body: &ast.Lam{Position: pos, Bind: &ast.Arg{Position: pos, Name: b}, Body: body}}, nil
	}

	if op, ok := binOps[p.cur().Type]; ok {
		save := p.pos
		p.advance()
		right, err := p.parseExpr(0)
		if err == nil && p.curIs(token.RPAREN) {
			p.advance()
			v := "x"
			body := &ast.App{Position: pos,
				Fn:  &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: op.tag}, Arg: &ast.Var{Position: pos, Name: v}},
				Arg: right}
			return &ast.Lam{Position: pos, Bind: &ast.Arg{Position: pos, Name: v}, Body: body}, nil
		}
		p.pos = save
	}

	inner, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if op, ok := binOps[p.cur().Type]; ok && p.peekIs(token.RPAREN) {
		p.advance()
		p.advance()
		v := "y"
		body := &ast.App{Position: pos,
			Fn:  &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: op.tag}, Arg: inner},
			Arg: &ast.Var{Position: pos, Name: v}}
		return &ast.Lam{Position: pos, Bind: &ast.Arg{Position: pos, Name: v}, Body: body}, nil
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return inner, nil
}

// --- Lists, records, variants -------------------------------------------

func (p *Parser) parseListLiteral() (ast.Expr, *diag.Error) {
	pos := p.cur().Pos
	p.advance()
	var els []ast.Expr
	for !p.curIs(token.RBRACKET) {
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		els = append(els, e)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	var out ast.Expr = &ast.Prim{Position: pos, Tag: ast.PListEmpty}
	for i := len(els) - 1; i >= 0; i-- {
		out = &ast.App{Position: pos,
			Fn:  &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PListCons}, Arg: els[i]},
			Arg: out}
	}
	return out, nil
}

type recEntry struct {
	label    string
	value    ast.Expr
	isUpdate bool
}

func (p *Parser) parseRecordLiteral() (ast.Expr, *diag.Error) {
	pos := p.cur().Pos
	p.advance()
	var entries []recEntry
	for !p.curIs(token.RBRACE) && !p.curIs(token.PIPE) {
		label, err := p.expect(token.IDENT_LOWER)
		if err != nil {
			return nil, err
		}
		var value ast.Expr
		isUpdate := false
		switch {
		case p.curIs(token.ASSIGN):
			p.advance()
			value, err = p.parseExpr(0)
			if err != nil {
				return nil, err
			}
		case p.curIs(token.WALRUS):
			p.advance()
			isUpdate = true
			value, err = p.parseExpr(0)
			if err != nil {
				return nil, err
			}
		default:
			value = &ast.Var{Position: label.Pos, Name: label.Lexeme}
		}
		entries = append(entries, recEntry{label: label.Lexeme, value: value, isUpdate: isUpdate})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	var tail ast.Expr = &ast.Prim{Position: pos, Tag: ast.PRecordEmpty}
	if p.curIs(token.PIPE) {
		p.advance()
		t, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		tail = t
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	acc := tail
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.isUpdate {
			acc = &ast.App{Position: pos,
				Fn:  &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PRecordExtend, Label: e.label}, Arg: e.value},
				Arg: &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PRecordRestrict, Label: e.label}, Arg: acc}}
		} else {
			acc = &ast.App{Position: pos,
				Fn:  &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PRecordExtend, Label: e.label}, Arg: e.value},
				Arg: acc}
		}
	}
	return acc, nil
}

// parseDiffRecord parses `{| l1 = e1, ..., ln = en |}`, a record update
// that can be composed with any record via function application (§4.2).
func (p *Parser) parseDiffRecord() (ast.Expr, *diag.Error) {
	pos := p.cur().Pos
	p.advance()
	var entries []recEntry
	for !p.curIs(token.RBRACE_BAR) {
		label, err := p.expect(token.IDENT_LOWER)
		if err != nil {
			return nil, err
		}
		var value ast.Expr
		if p.curIs(token.ASSIGN) {
			p.advance()
			value, err = p.parseExpr(0)
			if err != nil {
				return nil, err
			}
		} else {
			value = &ast.Var{Position: label.Pos, Name: label.Lexeme}
		}
		entries = append(entries, recEntry{label: label.Lexeme, value: value})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACE_BAR); err != nil {
		return nil, err
	}
	var body ast.Expr = &ast.Var{Position: pos, Name: config.SentinelBinder}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		body = &ast.App{Position: pos,
			Fn:  &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PRecordExtend, Label: e.label}, Arg: e.value},
			Arg: body}
	}
	return &ast.Lam{Position: pos, Bind: &ast.Arg{Position: pos, Name: config.SentinelBinder}, Body: body}, nil
}

// parseVariantEmbed parses `<| C1, ..., Cn |>`, a function widening a
// closed variant by embedding it into one with more constructors (§4.2).
func (p *Parser) parseVariantEmbed() (ast.Expr, *diag.Error) {
	pos := p.cur().Pos
	p.advance()
	var labels []string
	for !p.curIs(token.RANGLE_BAR) {
		name, err := p.expect(token.IDENT_UPPER)
		if err != nil {
			return nil, err
		}
		labels = append(labels, name.Lexeme)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RANGLE_BAR); err != nil {
		return nil, err
	}
	var body ast.Expr = &ast.Var{Position: pos, Name: config.SentinelBinder}
	for i := len(labels) - 1; i >= 0; i-- {
		body = &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PVariantEmbed, Label: labels[i]}, Arg: body}
	}
	return &ast.Lam{Position: pos, Bind: &ast.Arg{Position: pos, Name: config.SentinelBinder}, Body: body}, nil
}

// --- Binders, lambda, let, if, case --------------------------------------

func (p *Parser) parseSimpleBind() (ast.Bind, *diag.Error) {
	tok := p.cur()
	switch tok.Type {
	case token.DOTDOT_REC:
		p.advance()
		return &ast.RecWildcard{Position: tok.Pos}, nil
	case token.WILDCARD:
		p.advance()
		return &ast.Arg{Position: tok.Pos, Name: "_"}, nil
	case token.IDENT_LOWER:
		p.advance()
		return &ast.Arg{Position: tok.Pos, Name: tok.Lexeme}, nil
	case token.LBRACE:
		p.advance()
		var fields []ast.RecField
		for !p.curIs(token.RBRACE) {
			label, err := p.expect(token.IDENT_LOWER)
			if err != nil {
				return nil, err
			}
			local := label.Lexeme
			if p.curIs(token.ASSIGN) {
				p.advance()
				loc, err := p.expect(token.IDENT_LOWER)
				if err != nil {
					return nil, err
				}
				local = loc.Lexeme
			}
			fields = append(fields, ast.RecField{Label: label.Lexeme, LocalName: local})
			if p.curIs(token.COMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}
		return &ast.RecArg{Position: tok.Pos, Fields: fields}, nil
	}
	return nil, diag.New(diag.ErrLex, tok.Pos, "expected a binder, found %s", tok.Type)
}

type bindSpec struct {
	bind  ast.Bind
	ty    types.Type
	hasTy bool
}

func (p *Parser) parseBindSpec() (bindSpec, *diag.Error) {
	if p.curIs(token.LPAREN) {
		save := p.pos
		p.advance()
		b, err := p.parseSimpleBind()
		if err == nil && p.curIs(token.COLON) {
			p.advance()
			ty, err := p.parseTypeExpr()
			if err != nil {
				return bindSpec{}, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return bindSpec{}, err
			}
			return bindSpec{bind: b, ty: ty, hasTy: true}, nil
		}
		p.pos = save
	}
	b, err := p.parseSimpleBind()
	if err != nil {
		return bindSpec{}, err
	}
	return bindSpec{bind: b}, nil
}

// parseLambda parses `\b1 b2 ... -> body`, left-folding the binders into
// right-nested Lam/AnnLam nodes (§4.2).
func (p *Parser) parseLambda() (ast.Expr, *diag.Error) {
	pos := p.cur().Pos
	p.advance()
	var specs []bindSpec
	for !p.curIs(token.ARROW) {
		spec, err := p.parseBindSpec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, diag.New(diag.ErrLex, pos, "lambda requires at least one binder")
	}
	if _, err := p.expect(token.ARROW); err != nil {
		return nil, err
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	for i := len(specs) - 1; i >= 0; i-- {
		s := specs[i]
		if s.hasTy {
			body = &ast.AnnLam{Position: pos, Bind: s.bind, Type: s.ty, Body: body}
		} else {
			body = &ast.Lam{Position: pos, Bind: s.bind, Body: body}
		}
	}
	return body, nil
}

// parseLet parses `let b1 = e1, b2 = e2, ... in body`, right-folding
// bindings (§4.2's multi-binding let sugar).
func (p *Parser) parseLet() (ast.Expr, *diag.Error) {
	pos := p.cur().Pos
	p.advance()
	type binding struct {
		spec  bindSpec
		value ast.Expr
	}
	var binds []binding
	for {
		spec, err := p.parseBindSpec()
		if err != nil {
			return nil, err
		}
		if !spec.hasTy && p.curIs(token.COLON) {
			p.advance()
			ty, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			spec.ty, spec.hasTy = ty, true
		}
		if _, err := p.expect(token.ASSIGN); err != nil {
			return nil, err
		}
		value, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		binds = append(binds, binding{spec, value})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	for i := len(binds) - 1; i >= 0; i-- {
		b := binds[i]
		if b.spec.hasTy {
			body = &ast.AnnLet{Position: pos, Bind: b.spec.bind, Type: b.spec.ty, Value: b.value, Body: body}
		} else {
			body = &ast.Let{Position: pos, Bind: b.spec.bind, Value: b.value, Body: body}
		}
	}
	return body, nil
}

func (p *Parser) parseIf() (ast.Expr, *diag.Error) {
	pos := p.cur().Pos
	p.advance()
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	then, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ELSE); err != nil {
		return nil, err
	}
	els, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return &ast.App{Position: pos,
		Fn: &ast.App{Position: pos,
			Fn:  &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PCond}, Arg: cond},
			Arg: then},
		Arg: els}, nil
}

// parseCase parses `case s of { C1 -> h1, override C2 -> h2, ..., _ ->
// eDefault }`, building the right-nested VariantElim/Absurd chain
// described in §4.2. Each non-default handler is an ordinary expression —
// almost always a lambda (`\x -> ...`) that receives the constructor's
// payload — rather than its own binder sugar, so the handler position
// agrees exactly with how internal/ast/print.go reconstructs it.
func (p *Parser) parseCase() (ast.Expr, *diag.Error) {
	pos := p.cur().Pos
	p.advance()
	scrutinee, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.OF); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	type arm struct {
		label      string
		handler    ast.Expr
		isOverride bool
		isDefault  bool
	}
	var arms []arm
	for !p.curIs(token.RBRACE) {
		if p.curIs(token.WILDCARD) {
			p.advance()
			if _, err := p.expect(token.ARROW); err != nil {
				return nil, err
			}
			body, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			arms = append(arms, arm{isDefault: true, handler: body})
		} else {
			isOverride := false
			if p.curIs(token.OVERRIDE) {
				p.advance()
				isOverride = true
			}
			ctor, err := p.expect(token.IDENT_UPPER)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.ARROW); err != nil {
				return nil, err
			}
			handler, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			arms = append(arms, arm{label: ctor.Lexeme, handler: handler, isOverride: isOverride})
		}
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	var tail ast.Expr = &ast.Prim{Position: pos, Tag: ast.PAbsurd}
	for i := len(arms) - 1; i >= 0; i-- {
		a := arms[i]
		if a.isDefault {
			tail = &ast.Lam{Position: pos, Bind: &ast.Arg{Position: pos, Name: "_"}, Body: a.handler}
			continue
		}
		handler := a.handler
		if a.isOverride {
			embed := &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PVariantEmbed, Label: a.label}, Arg: &ast.Var{Position: pos, Name: config.SentinelBinder}}
			appliedTail := &ast.App{Position: pos, Fn: tail, Arg: embed}
			cont := &ast.Lam{Position: pos, Bind: &ast.Arg{Position: pos, Name: config.SentinelBinder}, Body: appliedTail}
			tail = &ast.App{Position: pos,
				Fn:  &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PVariantElim, Label: a.label}, Arg: handler},
				Arg: cont}
		} else {
			tail = &ast.App{Position: pos,
				Fn:  &ast.App{Position: pos, Fn: &ast.Prim{Position: pos, Tag: ast.PVariantElim, Label: a.label}, Arg: handler},
				Arg: tail}
		}
	}
	return &ast.App{Position: pos, Fn: tail, Arg: scrutinee}, nil
}
