// Package formula parses, validates and evaluates the arithmetic formulas
// stored in spreadsheet cells.
//
// # Grammar
//
// A formula is an infix expression over non-negative numeric literals
// (2, 2.5, .5, 3e8, 1.5E-3), variables ([A-Za-z_][A-Za-z0-9_]*),
// parentheses and the binary operators + - * /. There are no unary
// operators and no functions. Whitespace only separates tokens: "xy" is one
// variable, "x y" is two (and invalid, since an operator is missing).
//
// [New] rejects, with an *errors.Error describing the reason:
//
//   - empty formulas and unrecognized characters
//   - unbalanced parentheses
//   - a leading operator or ")" and a trailing operator or "("
//   - an operator or ")" directly after "(" or an operator
//   - a number, variable or "(" directly after a number, variable or ")"
//   - variables whose normalized form is not an identifier, or that the
//     caller's [Validator] rejects
//
// # Normalization
//
// A [Normalizer] maps every variable to its canonical form before it is
// validated, stored and looked up. With an upper-casing normalizer, "a1+B1"
// becomes "A1+B1" and [Formula.Variables] reports [A1 B1].
//
// # Evaluation
//
// [Formula.Evaluate] resolves variables through a caller-supplied [Lookup]
// and returns a [Value]: either a [Number] or an *[Error]. Unknown variables
// and division by zero are reported as *Error values rather than as Go
// errors, so a host recalculating many cells keeps going when one fails.
//
//	f, err := formula.New("(A1 + 2) * B1")
//	if err != nil {
//	    return err
//	}
//	v := f.Evaluate(func(name string) (float64, error) {
//	    return values[name], nil
//	})
//
// # Equality
//
// Two formulas are equal when their normalized token sequences match, with
// numbers compared by value: "2.0 + x7" equals "2.000+x7", while "x1+y2"
// does not equal "y2+x1". [Formula.Hash] is consistent with [Formula.Equal].
package formula
