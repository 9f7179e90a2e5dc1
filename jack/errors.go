package jack

import "fmt"

// LexicalError reports a tokenizer-level fatal error: an unterminated
// string or block comment, an illegal character, or an out-of-range
// integer literal (spec.md §7).
type LexicalError struct {
	Reason string
}

func (e *LexicalError) Error() string {
	return "lexical error: " + e.Reason
}

// SyntaxError reports a grammar mismatch: the expected production and the
// offending token (spec.md §7). Diagnostics are token-level, not
// line-level, since tokens carry no source position (spec.md §9).
type SyntaxError struct {
	Expected string
	Got      Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expected %s, got %q", e.Expected, e.Got.Terminal)
}

// SemanticError reports an undefined identifier or an otherwise invalid
// use of a well-formed term (spec.md §7).
type SemanticError struct {
	Reason string
}

func (e *SemanticError) Error() string {
	return "semantic error: " + e.Reason
}
