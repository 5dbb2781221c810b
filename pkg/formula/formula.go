package formula

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/sheetcalc/pkg/errors"
)

// Normalizer converts a variable name into its canonical form, for example
// by upper-casing it. It is applied to every variable before the variable
// is validated, stored, compared or looked up.
type Normalizer func(string) string

// Validator adds acceptance rules for normalized variable names beyond the
// identifier grammar.
type Validator func(string) bool

// Option configures New.
type Option func(*options)

type options struct {
	normalize Normalizer
	isValid   Validator
}

// WithNormalizer sets the variable normalizer. The default is the identity.
// A nil normalizer is ignored.
func WithNormalizer(n Normalizer) Option {
	return func(o *options) {
		if n != nil {
			o.normalize = n
		}
	}
}

// WithValidator sets the variable validator. The default accepts every
// name. A nil validator is ignored.
func WithValidator(v Validator) Option {
	return func(o *options) {
		if v != nil {
			o.isValid = v
		}
	}
}

// Formula is an immutable, validated infix arithmetic expression.
//
// The zero value is not usable - use New to create a Formula.
type Formula struct {
	canonical string   // normalized tokens joined without whitespace
	tokens    []Token  // accepted tokens, variables normalized
	variables []string // distinct normalized variables, first-seen order
	key       string   // equality key, numbers round-tripped
}

// New parses and validates expr.
//
// Every variable is passed through the normalizer; the normalized name must
// satisfy the identifier grammar (else ErrCodeInvalidVariable) and be
// accepted by the validator (else ErrCodeRejectedVar). Grammar violations
// fail with ErrCodeInvalidFormula. All failures are *errors.Error values
// carrying a human-readable reason; no Formula is created.
func New(expr string, opts ...Option) (*Formula, error) {
	o := options{
		normalize: func(s string) string { return s },
		isValid:   func(string) bool { return true },
	}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		tokens    []Token
		variables []string
		seen      = make(map[string]bool)
		depth     int
	)

	for tok := range Tokens(expr) {
		if tok.Kind == Invalid {
			return nil, errors.New(errors.ErrCodeInvalidFormula, "invalid character %q", tok.Text)
		}
		if err := checkSequence(tokens, tok); err != nil {
			return nil, err
		}

		if tok.Kind == Variable {
			norm := o.normalize(tok.Text)
			if !errors.IsIdentifier(norm) {
				return nil, errors.New(errors.ErrCodeInvalidVariable,
					"variable %q normalizes to %q, which is not a legal variable name", tok.Text, norm)
			}
			if !o.isValid(norm) {
				return nil, errors.New(errors.ErrCodeRejectedVar, "variable %q is rejected by the validation rule", norm)
			}
			tok.Text = norm
			if !seen[norm] {
				seen[norm] = true
				variables = append(variables, norm)
			}
		}

		switch tok.Kind {
		case LParen:
			depth++
		case RParen:
			depth--
			if depth < 0 {
				return nil, errors.New(errors.ErrCodeInvalidFormula, "unbalanced parentheses: unexpected %q", ")")
			}
		}
		tokens = append(tokens, tok)
	}

	if len(tokens) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormula, "formula cannot be empty")
	}
	if last := tokens[len(tokens)-1]; !last.isOperand() && last.Kind != RParen {
		return nil, errors.New(errors.ErrCodeInvalidFormula, "formula cannot end with %q", last.Text)
	}
	if depth != 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormula, "unbalanced parentheses: %d left open", depth)
	}

	return build(tokens, variables), nil
}

// MustNew is like New but panics if expr is not a valid formula.
// It simplifies initialization of formulas known to be valid.
func MustNew(expr string, opts ...Option) *Formula {
	f, err := New(expr, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// checkSequence validates tok against the token preceding it.
func checkSequence(prev []Token, tok Token) error {
	if len(prev) == 0 {
		if !tok.isOperand() && tok.Kind != LParen {
			return errors.New(errors.ErrCodeInvalidFormula, "formula cannot begin with %q", tok.Text)
		}
		return nil
	}

	last := prev[len(prev)-1]
	switch last.Kind {
	case LParen, Operator:
		if !tok.isOperand() && tok.Kind != LParen {
			return errors.New(errors.ErrCodeInvalidFormula, "%q cannot follow %q", tok.Text, last.Text)
		}
	default:
		if tok.Kind != Operator && tok.Kind != RParen {
			return errors.New(errors.ErrCodeInvalidFormula, "missing operator between %q and %q", last.Text, tok.Text)
		}
	}
	return nil
}

func build(tokens []Token, variables []string) *Formula {
	var canonical, key strings.Builder
	for i, tok := range tokens {
		canonical.WriteString(tok.Text)
		if i > 0 {
			key.WriteByte(' ')
		}
		key.WriteString(equalityText(tok))
	}
	return &Formula{
		canonical: canonical.String(),
		tokens:    tokens,
		variables: variables,
		key:       key.String(),
	}
}

// equalityText is the form a token takes when formulas are compared:
// numbers are parsed and re-formatted so that 2.0 and 2.000 agree.
func equalityText(tok Token) string {
	if tok.Kind != NumberLit {
		return tok.Text
	}
	return strconv.FormatFloat(parseNumber(tok.Text), 'g', -1, 64)
}

// parseNumber parses a literal accepted by the tokenizer. Literals out of
// float64 range become ±Inf.
func parseNumber(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// String returns the canonical form: the accepted tokens with variables
// normalized and numbers in their source text, without whitespace.
// Passing the result back to New yields an equal Formula.
func (f *Formula) String() string { return f.canonical }

// Variables returns the distinct normalized variable names in the order
// they first appear. The returned slice is a copy.
func (f *Formula) Variables() []string { return slices.Clone(f.variables) }

// Equal reports whether f and other have the same tokens after
// normalization. Numeric tokens are equal when their parsed values print
// the same, so "2.0+x" equals "2.000+x"; all other tokens compare as text,
// so "x+y" does not equal "y+x".
func (f *Formula) Equal(other *Formula) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.key == other.key
}

// Hash returns a hash consistent with Equal.
func (f *Formula) Hash() uint64 { return xxhash.Sum64String(f.key) }
