// Package config holds ambient constants shared across the front end:
// recognized source extensions, the lexer's operator character set, and the
// sentinel binder name used to desugar difference records and variant
// embeds without risking collision with a user-writable identifier.
package config

// SourceFileExtensions are the file extensions the CLI recognizes as
// Expresso source; import resolution does not check extensions.
var SourceFileExtensions = []string{".expresso", ".exo"}

// HasSourceExt reports whether path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// OperatorChars are the characters from which operator lexemes are built
// (§4.1). A maximal run of these characters that is not itself a reserved
// operator is rejected by the lexer.
const OperatorChars = ":!#$%&*+./<=>?@\\^|-~"

// SentinelBinder is the hidden name used for difference-record and
// variant-embed lambdas (`{| ... |}`, `<| ... |>`). It starts with '#',
// a character the lexer's identifier grammar never produces (identifiers
// start with a letter), so it can never collide with a source-level name
// without needing a separate binder-kind in the AST.
const SentinelBinder = "#r"

// ReservedOperators are the operator lexemes §4.1 reserves. There are no
// user-defined operators: the lexer reports any other run built from
// OperatorChars as an error, so the parser only ever sees this closed
// list.
var ReservedOperators = []string{
	"->", "=", "-", "*", "/", "+", "++", "::", "|", ",", ".", "\\",
	"{|", "|}", ":=", "{..}", "==", "/=", ">", ">=", "<", "<=", "&&", "||",
	":", "=>",
}
