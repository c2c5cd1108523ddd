// Package token defines the lexical token and source-position types shared
// by the lexer, parser, resolver and inferencer.
package token

import "fmt"

// Position identifies a point in a source file. Every AST and type node
// carries one so that diagnostics can always be positioned.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// IsZero reports whether the position was never set.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0 && p.File == ""
}

// Type enumerates lexical token kinds.
type Type int

const (
	ILLEGAL Type = iota
	EOF
	NEWLINE

	// Literals
	IDENT_LOWER // lower-identifier: term vars, record labels, row tyvars
	IDENT_UPPER // upper-identifier: variant labels, synonym/class names
	WILDCARD    // _
	INT
	DOUBLE
	CHAR
	STRING

	// Reserved words
	LET
	IN
	IF
	THEN
	ELSE
	CASE
	OF
	FORALL
	TRUE
	FALSE
	TYPE
	IMPORT
	OVERRIDE
	EQ_CLASS   // "Eq" used as a class name
	ORD_CLASS  // "Ord" used as a class name
	NUM_CLASS  // "Num" used as a class name

	// Punctuation / reserved operators
	ARROW      // ->
	ASSIGN     // =
	MINUS      // -
	STAR       // *
	SLASH      // /
	PLUS       // +
	CONCAT     // ++
	DCOLON     // ::
	PIPE       // |
	COMMA      // ,
	DOT        // .
	BACKSLASH  // \
	LBRACE_BAR // {|
	RBRACE_BAR // |}
	LANGLE_BAR // <|
	RANGLE_BAR // |>
	WALRUS     // :=
	DOTDOT_REC // {..}
	DOUBLE_EQ  // ==
	NOT_EQ     // /=
	GT
	GTE
	LT
	LTE
	AND // &&
	OR  // ||
	COLON
	FATARROW // =>

	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	SEMI
)

var names = map[Type]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", NEWLINE: "NEWLINE",
	IDENT_LOWER: "IDENT_LOWER", IDENT_UPPER: "IDENT_UPPER", WILDCARD: "_",
	INT: "INT", DOUBLE: "DOUBLE", CHAR: "CHAR", STRING: "STRING",
	LET: "let", IN: "in", IF: "if", THEN: "then", ELSE: "else",
	CASE: "case", OF: "of", FORALL: "forall", TRUE: "True", FALSE: "False",
	TYPE: "type", IMPORT: "import", OVERRIDE: "override",
	EQ_CLASS: "Eq", ORD_CLASS: "Ord", NUM_CLASS: "Num",
	ARROW: "->", ASSIGN: "=", MINUS: "-", STAR: "*", SLASH: "/", PLUS: "+",
	CONCAT: "++", DCOLON: "::", PIPE: "|", COMMA: ",", DOT: ".",
	BACKSLASH: "\\", LBRACE_BAR: "{|", RBRACE_BAR: "|}",
	LANGLE_BAR: "<|", RANGLE_BAR: "|>", WALRUS: ":=",
	DOTDOT_REC: "{..}", DOUBLE_EQ: "==", NOT_EQ: "/=",
	GT: ">", GTE: ">=", LT: "<", LTE: "<=", AND: "&&", OR: "||",
	COLON: ":", FATARROW: "=>",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}",
	LBRACKET: "[", RBRACKET: "]", SEMI: ";",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Reserved words map identifier text to a reserved-word token type.
var Reserved = map[string]Type{
	"let": LET, "in": IN, "if": IF, "then": THEN, "else": ELSE,
	"case": CASE, "of": OF, "forall": FORALL, "True": TRUE, "False": FALSE,
	"Eq": EQ_CLASS, "Ord": ORD_CLASS, "Num": NUM_CLASS,
	"type": TYPE, "import": IMPORT, "override": OVERRIDE,
}

// Token is a single lexeme produced by the lexer.
type Token struct {
	Type    Type
	Lexeme  string
	Literal string
	Pos     Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Type, t.Lexeme, t.Pos)
}
