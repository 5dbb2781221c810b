package sheet

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/sheetcalc/pkg/formula"
)

// Kind identifies which variant a Content holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindFormula
)

var kindNames = [...]string{
	KindEmpty:   "empty",
	KindNumber:  "number",
	KindText:    "text",
	KindFormula: "formula",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Content is the immutable content of one cell: a number, non-empty text,
// a formula, or nothing. The zero value is empty content.
type Content struct {
	kind    Kind
	number  float64
	text    string
	formula *formula.Formula
}

// Empty returns the content of a cell that does not exist.
func Empty() Content { return Content{} }

// NumberContent returns number content.
func NumberContent(v float64) Content { return Content{kind: KindNumber, number: v} }

// TextContent returns text content. Empty text is empty content.
func TextContent(s string) Content {
	if s == "" {
		return Content{}
	}
	return Content{kind: KindText, text: s}
}

// FormulaContent returns formula content. A nil formula is kept as is and
// rejected when the content is stored.
func FormulaContent(f *formula.Formula) Content { return Content{kind: KindFormula, formula: f} }

// Kind returns the variant held by c.
func (c Content) Kind() Kind { return c.kind }

// IsEmpty reports whether c is empty content.
func (c Content) IsEmpty() bool { return c.kind == KindEmpty }

// Number returns the number held by c and whether c is number content.
func (c Content) Number() (float64, bool) { return c.number, c.kind == KindNumber }

// Text returns the text held by c. It is "" for every other kind.
func (c Content) Text() string { return c.text }

// Formula returns the formula held by c, or nil.
func (c Content) Formula() *formula.Formula { return c.formula }

// variables returns the names c depends on.
func (c Content) variables() []string {
	if c.kind != KindFormula || c.formula == nil {
		return nil
	}
	return c.formula.Variables()
}

// Equal reports whether c and other hold the same content. Formulas compare
// with formula.Formula.Equal.
func (c Content) Equal(other Content) bool {
	if c.kind != other.kind {
		return false
	}
	switch c.kind {
	case KindNumber:
		return c.number == other.number
	case KindText:
		return c.text == other.text
	case KindFormula:
		return c.formula.Equal(other.formula)
	}
	return true
}

// Raw returns the input form of c, as accepted by ParseContent: "=" and
// the canonical formula, a number formatted to round-trip, the text
// itself, or "".
//
// Text that looks like a number or starts with "=" does not survive a
// Raw/ParseContent round trip unchanged.
func (c Content) Raw() string {
	switch c.kind {
	case KindNumber:
		return strconv.FormatFloat(c.number, 'g', -1, 64)
	case KindText:
		return c.text
	case KindFormula:
		if c.formula == nil {
			return "="
		}
		return "=" + c.formula.String()
	}
	return ""
}

// String describes c for logs and debugging.
func (c Content) String() string {
	if c.kind == KindText {
		return "text " + strconv.Quote(c.text)
	}
	if c.kind == KindEmpty {
		return "empty"
	}
	return c.kind.String() + " " + c.Raw()
}

// ParseContent interprets raw cell input the way a spreadsheet entry box
// does: a leading "=" makes the rest a formula built with opts, text that
// parses as a finite number is a number, and anything else is text. Empty
// input is empty content.
func ParseContent(raw string, opts ...formula.Option) (Content, error) {
	if raw == "" {
		return Empty(), nil
	}
	if expr, ok := strings.CutPrefix(raw, "="); ok {
		f, err := formula.New(expr, opts...)
		if err != nil {
			return Content{}, err
		}
		return FormulaContent(f), nil
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
		return NumberContent(v), nil
	}
	return TextContent(raw), nil
}
