package formula

import (
	"iter"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	// Invalid is any character that starts no other token. Formulas
	// containing one are rejected by New.
	Invalid Kind = iota
	// LParen is "(".
	LParen
	// RParen is ")".
	RParen
	// Operator is one of + - * /.
	Operator
	// Variable is an identifier: a letter or underscore followed by
	// letters, digits or underscores.
	Variable
	// NumberLit is a non-negative floating-point literal: digits with an
	// optional fractional part and an optional exponent.
	NumberLit
)

var kindNames = map[Kind]string{
	Invalid:   "invalid",
	LParen:    "(",
	RParen:    ")",
	Operator:  "operator",
	Variable:  "variable",
	NumberLit: "number",
}

// String returns a short name for the kind.
func (k Kind) String() string { return kindNames[k] }

// Token is one lexical element of a formula.
type Token struct {
	Kind Kind
	Text string // Source text without surrounding whitespace
}

// isOperand reports whether t produces a value: a number or a variable.
func (t Token) isOperand() bool { return t.Kind == NumberLit || t.Kind == Variable }

// Tokens returns the tokens of expr in order. Runs of whitespace are
// skipped. Tokenization never fails: unrecognized characters come back as
// single-character Invalid tokens.
func Tokens(expr string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for i := 0; i < len(expr); {
			r, size := utf8.DecodeRuneInString(expr[i:])
			if unicode.IsSpace(r) {
				i += size
				continue
			}

			var tok Token
			switch {
			case r == '(':
				tok = Token{Kind: LParen, Text: "("}
			case r == ')':
				tok = Token{Kind: RParen, Text: ")"}
			case r == '+' || r == '-' || r == '*' || r == '/':
				tok = Token{Kind: Operator, Text: string(r)}
			case isIdentStart(r):
				tok = Token{Kind: Variable, Text: expr[i : i+scanIdent(expr[i:])]}
			case isDigit(r) || r == '.':
				if n := scanNumber(expr[i:]); n > 0 {
					tok = Token{Kind: NumberLit, Text: expr[i : i+n]}
				} else {
					tok = Token{Kind: Invalid, Text: "."}
				}
			default:
				tok = Token{Kind: Invalid, Text: expr[i : i+size]}
			}

			if !yield(tok) {
				return
			}
			i += len(tok.Text)
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool { return isIdentStart(r) || isDigit(r) }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// scanIdent returns the length of the identifier at the start of s.
func scanIdent(s string) int {
	n := 1
	for n < len(s) && isIdentPart(rune(s[n])) {
		n++
	}
	return n
}

// scanNumber returns the length of the numeric literal at the start of s,
// or 0 if s does not start with one. A literal needs at least one digit;
// the exponent is only consumed when it carries digits.
func scanNumber(s string) int {
	n, digits := 0, 0
	for n < len(s) && isDigit(rune(s[n])) {
		n++
		digits++
	}
	if n < len(s) && s[n] == '.' {
		n++
		for n < len(s) && isDigit(rune(s[n])) {
			n++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}

	if n < len(s) && (s[n] == 'e' || s[n] == 'E') {
		m := n + 1
		if m < len(s) && (s[m] == '+' || s[m] == '-') {
			m++
		}
		start := m
		for m < len(s) && isDigit(rune(s[m])) {
			m++
		}
		if m > start {
			n = m
		}
	}
	return n
}
