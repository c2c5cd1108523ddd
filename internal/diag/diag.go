// Package diag defines the positioned diagnostic type every phase of the
// front end (lexer, parser, resolver, unifier, inferencer) returns instead
// of a bare error or a panic. Failures are fatal for the current call —
// nothing here supports partial recovery (§4.8).
package diag

import (
	"fmt"

	"github.com/5l1v3r1/expresso/internal/token"
)

// Code classifies a diagnostic (§7).
type Code string

const (
	ErrLex          Code = "E-LEX"    // unexpected token, mismatched bracket, reserved word misuse
	ErrImportNotFound Code = "E-IMPORT-NOTFOUND"
	ErrImportIO     Code = "E-IMPORT-IO"
	ErrImportParse  Code = "E-IMPORT-PARSE"
	ErrUnboundTyVar Code = "E-UNBOUND-TYVAR"
	ErrBadConstraint Code = "E-BAD-CONSTRAINT"
	ErrUnboundVar   Code = "E-UNBOUND-VAR"
	ErrUnify        Code = "E-UNIFY"
	ErrOccurs       Code = "E-OCCURS"
	ErrKindMismatch Code = "E-KIND-MISMATCH"
	ErrRepeatedLabel Code = "E-REPEATED-LABEL"
	ErrRowEmpty     Code = "E-ROW-EMPTY"
	ErrRecursiveRow Code = "E-RECURSIVE-ROW"
	ErrRecordWildcard Code = "E-RECORD-WILDCARD"
	ErrSynonymArity Code = "E-SYNONYM-ARITY"
	ErrSynonymConflict Code = "E-SYNONYM-CONFLICT"
	ErrUnboundSynonym  Code = "E-UNBOUND-SYNONYM"
)

// Error is the single diagnostic type returned across the front end.
type Error struct {
	Code Code
	Pos  token.Position
	Msg  string
}

func New(code Code, pos token.Position, format string, args ...interface{}) *Error {
	return &Error{Code: code, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Pos.IsZero() {
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Msg)
}
