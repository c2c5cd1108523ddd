// Package parser implements the Expresso recursive-descent/Pratt parser
// (§4.2, §4.3): it turns a token stream into a pre-elaboration ast.Expr
// tree plus a flat list of top-level type-synonym declarations, desugaring
// every surface form (records, variants, list/string literals, case
// expressions, operator sections, multi-binder lambdas and lets) down to
// the closed primitive AST as it goes. Binary operators are parsed by
// precedence climbing over a fixed operator table, and prefix forms by a
// switch on the current token; the cur/peek token bookkeeping is grounded
// on funvibe-funxy's internal/parser, adapted to this grammar.
package parser

import (
	"github.com/5l1v3r1/expresso/internal/ast"
	"github.com/5l1v3r1/expresso/internal/diag"
	"github.com/5l1v3r1/expresso/internal/lexer"
	"github.com/5l1v3r1/expresso/internal/token"
)

// MaxRecursionDepth guards parseExpr against runaway recursion on
// pathological or adversarial input.
const MaxRecursionDepth = 4000

type Parser struct {
	toks []token.Token
	pos  int

	depth int

	synonyms []*ast.SynonymDecl

	// tyVarSupply mints parser-local TyVar ids for annotations and
	// synonym bodies, counting down from -1 (see newTyVar in types.go).
	tyVarSupply int
}

// Parse lexes and parses a complete source file into its program
// expression and the flat list of type-synonym declarations it defines
// (§4.2 "Synonym declaration"; §4.4 resolves imports afterward).
func Parse(file, src string) (ast.Expr, []*ast.SynonymDecl, *diag.Error) {
	toks, err := lexer.Tokenize(file, src)
	if err != nil {
		return nil, nil, err
	}
	p := &Parser{toks: toks}
	return p.parseFile()
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}
func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *Parser) curIs(tt token.Type) bool  { return p.cur().Type == tt }
func (p *Parser) peekIs(tt token.Type) bool { return p.peek().Type == tt }

func (p *Parser) expect(tt token.Type) (token.Token, *diag.Error) {
	if !p.curIs(tt) {
		return token.Token{}, diag.New(diag.ErrLex, p.cur().Pos, "expected %s, found %s", tt, p.cur().Type)
	}
	return p.advance(), nil
}

func (p *Parser) parseFile() (ast.Expr, []*ast.SynonymDecl, *diag.Error) {
	for p.curIs(token.TYPE) {
		if err := p.parseSynonymDecl(); err != nil {
			return nil, nil, err
		}
	}
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, nil, err
	}
	if !p.curIs(token.EOF) {
		return nil, nil, diag.New(diag.ErrLex, p.cur().Pos, "unexpected trailing input at %s", p.cur().Type)
	}
	return body, p.synonyms, nil
}

// parseSynonymDecl parses `type Name a b ... = TypeExpr ;` (§3).
func (p *Parser) parseSynonymDecl() *diag.Error {
	pos := p.cur().Pos
	if _, err := p.expect(token.TYPE); err != nil {
		return err
	}
	name, err := p.expect(token.IDENT_UPPER)
	if err != nil {
		return err
	}
	var formals []string
	for p.curIs(token.IDENT_LOWER) {
		formals = append(formals, p.advance().Lexeme)
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return err
	}
	body, formalVars, err := p.parseTypeExprWithFormals(formals)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return err
	}
	p.synonyms = append(p.synonyms, &ast.SynonymDecl{
		Position: pos, Name: name.Lexeme, Formals: formals, FormalVars: formalVars, Body: body,
	})
	return nil
}
