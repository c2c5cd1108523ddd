package ast

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/5l1v3r1/expresso/internal/config"
)

// Printer renders an elaborated Expr back to surface syntax. It exists
// chiefly to drive the parse→pretty→parse idempotence property (§8
// property 1): printing must always produce text the parser accepts,
// which in particular means a Lam over the hidden sentinel binder
// (config.SentinelBinder) can never be printed as a literal identifier —
// it must be folded back into `{| ... |}` / `<| ... |>` sugar. Output is
// written on a single line; there is no indentation or column tracking.
type Printer struct {
	buf bytes.Buffer
}

// Print renders e to surface syntax.
func Print(e Expr) string {
	p := &Printer{}
	p.expr(e, 0)
	return p.buf.String()
}

// precedence mirrors the §4.2 operator table (lowest to highest).
var infixPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "/=": 3, ">": 3, ">=": 3, "<": 3, "<=": 3,
	"<>": 4, "++": 4, "::": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6,
}

var rightAssoc = map[string]bool{"::": true, "&&": true, "||": true}

func (p *Printer) w(s string) { p.buf.WriteString(s) }

// binOpSymbol maps each primitive that has an infix surface operator to
// that operator; asBinOp uses it to recognize App(App(Prim tag, a), b).
var binOpSymbol = map[PrimTag]string{
	PAdd: "+", PSub: "-", PMul: "*", PDiv: "/",
	PEq: "==", PNEq: "/=", PRGT: ">", PRGTE: ">=", PRLT: "<", PRLTE: "<=",
	PAnd: "&&", POr: "||", PListAppend: "++", PListCons: "::",
}

func asBinOp(e Expr) (op string, a, b Expr, ok bool) {
	app, ok2 := e.(*App)
	if !ok2 {
		return "", nil, nil, false
	}
	inner, ok2 := app.Fn.(*App)
	if !ok2 {
		return "", nil, nil, false
	}
	prim, ok2 := inner.Fn.(*Prim)
	if !ok2 {
		return "", nil, nil, false
	}
	sym, ok2 := binOpSymbol[prim.Tag]
	if !ok2 {
		return "", nil, nil, false
	}
	return sym, inner.Arg, app.Arg, true
}

func (p *Printer) expr(e Expr, minPrec int) {
	switch n := e.(type) {
	case *Var:
		p.w(n.Name)
	case *Prim:
		p.prim(n)
	case *App:
		if list, ok := asListLiteral(n); ok {
			p.w("[")
			for i, el := range list {
				if i > 0 {
					p.w(", ")
				}
				p.expr(el, 0)
			}
			p.w("]")
			return
		}
		if op, a, b, ok := asBinOp(e); ok {
			prec := infixPrec[op]
			needParen := prec < minPrec
			if needParen {
				p.w("(")
			}
			nextMin := prec + 1
			if rightAssoc[op] {
				p.expr(a, prec)
				p.w(" " + op + " ")
				p.expr(b, prec)
			} else {
				p.expr(a, prec)
				p.w(" " + op + " ")
				p.expr(b, nextMin)
			}
			if needParen {
				p.w(")")
			}
			return
		}
		if neg, ok := n.Fn.(*Prim); ok && neg.Tag == PNeg {
			p.w("-")
			p.expr(n.Arg, 100)
			return
		}
		if recSel, ok := n.Fn.(*Prim); ok && recSel.Tag == PRecordSelect {
			p.expr(n.Arg, 100)
			p.w("." + recSel.Label)
			return
		}
		if recRes, ok := n.Fn.(*Prim); ok && recRes.Tag == PRecordRestrict {
			p.expr(n.Arg, 100)
			p.w(" \\ " + recRes.Label)
			return
		}
		if fields, tail, ok := asRecordLiteral(n); ok {
			p.printRecordLiteral(fields, tail)
			return
		}
		if fields, tail, ok := asUpdate(n); ok {
			p.w("{ ")
			for i, f := range fields {
				if i > 0 {
					p.w(", ")
				}
				p.w(f.label + " := ")
				p.expr(f.value, 0)
			}
			p.w(" | ")
			p.expr(tail, 0)
			p.w(" }")
			return
		}
		if ok := p.tryPrintCase(n); ok {
			return
		}
		needParen := 7 < minPrec
		if needParen {
			p.w("(")
		}
		p.expr(n.Fn, 7)
		p.w(" ")
		p.expr(n.Arg, 8)
		if needParen {
			p.w(")")
		}
	case *Lam:
		if s, ok := p.trySentinelLam(n); ok {
			p.w(s)
			return
		}
		needParen := minPrec > 0
		if needParen {
			p.w("(")
		}
		p.w("\\" + bindString(n.Bind) + " -> ")
		p.expr(n.Body, 0)
		if needParen {
			p.w(")")
		}
	case *Let:
		needParen := minPrec > 0
		if needParen {
			p.w("(")
		}
		p.w("let " + bindString(n.Bind) + " = ")
		p.expr(n.Value, 0)
		p.w(" in ")
		p.expr(n.Body, 0)
		if needParen {
			p.w(")")
		}
	case *AnnLam:
		needParen := minPrec > 0
		if needParen {
			p.w("(")
		}
		p.w("\\(" + bindString(n.Bind) + " : " + n.Type.String() + ") -> ")
		p.expr(n.Body, 0)
		if needParen {
			p.w(")")
		}
	case *AnnLet:
		needParen := minPrec > 0
		if needParen {
			p.w("(")
		}
		p.w("let " + bindString(n.Bind) + " : " + n.Type.String() + " = ")
		p.expr(n.Value, 0)
		p.w(" in ")
		p.expr(n.Body, 0)
		if needParen {
			p.w(")")
		}
	case *Ann:
		needParen := minPrec > 0
		if needParen {
			p.w("(")
		}
		p.expr(n.Value, 1)
		p.w(" : " + n.Type.String())
		if needParen {
			p.w(")")
		}
	case *Import:
		p.w(fmt.Sprintf("import %q", n.Path))
	default:
		p.w(fmt.Sprintf("<?%T>", e))
	}
}

func (p *Printer) prim(n *Prim) {
	switch n.Tag {
	case PInt:
		p.w(strconv.FormatInt(n.IntVal, 10))
	case PDbl:
		p.w(strconv.FormatFloat(n.DblVal, 'g', -1, 64))
	case PChar:
		p.w(strconv.QuoteRune(n.CharVal))
	case PBool:
		if n.BoolVal {
			p.w("True")
		} else {
			p.w("False")
		}
	case PText:
		p.w(strconv.Quote(n.TextVal))
	case PRecordEmpty:
		p.w("{}")
	case PVariantInject:
		p.w(n.Label)
	case PAbsurd:
		p.w("Absurd")
	case PListEmpty:
		p.w("[]")
	default:
		p.w(n.Tag.LowerName())
		if n.Tag.NeedsLabelArg() {
			p.w(" " + strconv.Quote(n.Label))
		}
	}
}

func bindString(b Bind) string {
	switch n := b.(type) {
	case *Arg:
		return n.Name
	case *RecArg:
		s := "{"
		for i, f := range n.Fields {
			if i > 0 {
				s += ", "
			}
			if f.Label == f.LocalName {
				s += f.Label
			} else {
				s += f.Label + " = " + f.LocalName
			}
		}
		return s + "}"
	case *RecWildcard:
		return "{..}"
	}
	return "?"
}

// --- Sugar reconstruction ---------------------------------------------

// asListLiteral flattens a ListCons/ListEmpty right-fold back into a
// slice of elements, or reports ok=false if the spine isn't a literal
// (e.g. its tail is a variable, or a ListCons application was built by
// hand with extra args).
func asListLiteral(e Expr) ([]Expr, bool) {
	var els []Expr
	cur := Expr(e)
	for {
		app, ok := cur.(*App)
		if !ok {
			return nil, false
		}
		inner, ok := app.Fn.(*App)
		if !ok {
			return nil, false
		}
		prim, ok := inner.Fn.(*Prim)
		if !ok || prim.Tag != PListCons {
			return nil, false
		}
		els = append(els, inner.Arg)
		if tailPrim, ok := app.Arg.(*Prim); ok && tailPrim.Tag == PListEmpty {
			return els, true
		}
		cur = app.Arg
	}
}

// asRecordLiteral flattens a RecordExtend right-fold back into
// (fields, tail) where tail is nil if the spine terminates at
// RecordEmpty, matching `{l1=e1, ..., ln=en | r}` / `{l1=e1, ...}`.
func asRecordLiteral(e Expr) (fields []recField, tail Expr, ok bool) {
	cur := Expr(e)
	for {
		app, isApp := cur.(*App)
		if !isApp {
			return nil, nil, false
		}
		inner, isApp2 := app.Fn.(*App)
		if !isApp2 {
			return nil, nil, false
		}
		prim, isPrim := inner.Fn.(*Prim)
		if !isPrim || prim.Tag != PRecordExtend {
			return nil, nil, false
		}
		fields = append(fields, recField{label: prim.Label, value: inner.Arg})
		if empty, isEmpty := app.Arg.(*Prim); isEmpty && empty.Tag == PRecordEmpty {
			return fields, nil, true
		}
		if _, isExtend := app.Arg.(*App); isExtend {
			cur = app.Arg
			continue
		}
		return fields, app.Arg, true
	}
}

type recField struct {
	label string
	value Expr
}

// asUpdate recognizes `{l := e | r}` == RecordExtend l e (RecordRestrict l r).
func asUpdate(e Expr) (fields []recField, tail Expr, ok bool) {
	app, isApp := e.(*App)
	if !isApp {
		return nil, nil, false
	}
	inner, isApp2 := app.Fn.(*App)
	if !isApp2 {
		return nil, nil, false
	}
	extendPrim, isPrim := inner.Fn.(*Prim)
	if !isPrim || extendPrim.Tag != PRecordExtend {
		return nil, nil, false
	}
	restrictApp, isApp3 := app.Arg.(*App)
	if !isApp3 {
		return nil, nil, false
	}
	restrictPrim, isPrim2 := restrictApp.Fn.(*Prim)
	if !isPrim2 || restrictPrim.Tag != PRecordRestrict || restrictPrim.Label != extendPrim.Label {
		return nil, nil, false
	}
	return []recField{{label: extendPrim.Label, value: inner.Arg}}, restrictApp.Arg, true
}

func (p *Printer) printRecordLiteral(fields []recField, tail Expr) {
	p.w("{")
	for i, f := range fields {
		if i > 0 {
			p.w(", ")
		}
		p.w(f.label + " = ")
		p.expr(f.value, 0)
	}
	if tail != nil {
		p.w(" | ")
		p.expr(tail, 0)
	}
	p.w("}")
}

// trySentinelLam reconstructs `{| l1, ... |}` / `<| C1, ... |>` sugar from
// a lambda over config.SentinelBinder; this is not optional cosmetics —
// the sentinel name itself can never be printed as a plain identifier
// (it is lexically unrepresentable, see the open question in §9), so any
// Lam over it that printing doesn't fold back into sugar would otherwise
// make the printed program unparseable.
func (p *Printer) trySentinelLam(lam *Lam) (string, bool) {
	arg, ok := lam.Bind.(*Arg)
	if !ok || arg.Name != config.SentinelBinder {
		return "", false
	}
	if fields, tail, ok := asRecordLiteral(lam.Body); ok {
		if v, isVar := tail.(*Var); !isVar || v.Name != config.SentinelBinder {
			return "", false
		}
		s := "{| "
		for i, f := range fields {
			if i > 0 {
				s += ", "
			}
			s += f.label + " = " + Print(f.value)
		}
		return s + " |}", true
	}
	if labels, ok := asVariantEmbedChain(lam.Body); ok {
		s := "<|"
		for i, l := range labels {
			if i > 0 {
				s += ", "
			}
			s += l
		}
		return s + "|>", true
	}
	return "", false
}

// asVariantEmbedChain flattens `VariantEmbed C1 (VariantEmbed C2 #r)`.
func asVariantEmbedChain(e Expr) ([]string, bool) {
	var labels []string
	cur := e
	for {
		if v, ok := cur.(*Var); ok && v.Name == config.SentinelBinder {
			return labels, len(labels) > 0
		}
		app, ok := cur.(*App)
		if !ok {
			return nil, false
		}
		prim, ok := app.Fn.(*Prim)
		if !ok || prim.Tag != PVariantEmbed {
			return nil, false
		}
		labels = append(labels, prim.Label)
		cur = app.Arg
	}
}

// tryPrintCase reconstructs `case s of { l1 -> f1, ..., override ln -> fn }`
// from App(chain, s) where chain is a right-nested VariantElim/Absurd
// fold (§4.2). An "override" arm is distinguished by its continuation
// being `λ#r -> k (VariantEmbed l #r)` instead of a bare next arm.
func (p *Printer) tryPrintCase(app *App) bool {
	type arm struct {
		label      string
		handler    Expr
		isOverride bool
	}
	var arms []arm
	cur := app.Fn
	for {
		elimApp, ok := cur.(*App)
		if !ok {
			break
		}
		inner, ok := elimApp.Fn.(*App)
		if !ok {
			break
		}
		prim, ok := inner.Fn.(*Prim)
		if !ok || prim.Tag != PVariantElim {
			break
		}
		handler := inner.Arg
		next := elimApp.Arg
		if lam, ok := next.(*Lam); ok {
			if a, ok := lam.Bind.(*Arg); ok && a.Name == config.SentinelBinder {
				if innerApp, ok := lam.Body.(*App); ok {
					if embedApp, ok := innerApp.Arg.(*App); ok {
						if embedPrim, ok := embedApp.Fn.(*Prim); ok && embedPrim.Tag == PVariantEmbed &&
							embedPrim.Label == prim.Label {
							if v, ok := embedApp.Arg.(*Var); ok && v.Name == config.SentinelBinder {
								arms = append(arms, arm{label: prim.Label, handler: handler, isOverride: true})
								cur = innerApp.Fn
								continue
							}
						}
					}
				}
			}
		}
		arms = append(arms, arm{label: prim.Label, handler: handler})
		cur = next
	}
	if len(arms) == 0 {
		return false
	}
	var defaultBody Expr
	switch t := cur.(type) {
	case *Prim:
		if t.Tag != PAbsurd {
			return false
		}
	case *Lam:
		wild, ok := t.Bind.(*Arg)
		if !ok || wild.Name != "_" {
			return false
		}
		defaultBody = t.Body
	default:
		return false
	}
	p.w("case ")
	p.expr(app.Arg, 0)
	p.w(" of { ")
	for i, a := range arms {
		if i > 0 {
			p.w(", ")
		}
		if a.isOverride {
			p.w("override " + a.label + " -> ")
		} else {
			p.w(a.label + " -> ")
		}
		p.expr(a.handler, 0)
	}
	if defaultBody != nil {
		if len(arms) > 0 {
			p.w(", ")
		}
		p.w("_ -> ")
		p.expr(defaultBody, 0)
	}
	p.w(" }")
	return true
}
