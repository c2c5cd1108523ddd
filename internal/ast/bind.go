package ast

import "github.com/5l1v3r1/expresso/internal/token"

// Bind is the sealed sum of lambda/let binder forms (§3 "Bindings"). The
// set of names a Bind introduces is not fixed statically for
// RecWildcard — it depends on the record type discovered during
// inference — so the inferencer's tiBinds derives names from its own
// typed result rather than from this interface.
type Bind interface {
	BindPos() token.Position
	bindNode()
}

// Arg is a single-argument binder: \x -> ...
type Arg struct {
	Position token.Position
	Name     string
}

func (b *Arg) BindPos() token.Position { return b.Position }
func (*Arg) bindNode()                 {}

// RecField is one (label, localName) pair in a record-destructuring
// binder. LocalName defaults to Label when no explicit rename is written.
type RecField struct {
	Label     string
	LocalName string
}

// RecArg destructures a record argument by label: \{x, y=local} -> ...
type RecArg struct {
	Position token.Position
	Fields   []RecField
}

func (b *RecArg) BindPos() token.Position { return b.Position }
func (*RecArg) bindNode()                 {}

// RecWildcard destructures every field of a (necessarily closed) record
// type into locals named after their labels: \{..} -> ...
type RecWildcard struct {
	Position token.Position
}

func (b *RecWildcard) BindPos() token.Position { return b.Position }
func (*RecWildcard) bindNode()                 {}
