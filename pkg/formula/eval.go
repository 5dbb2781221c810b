package formula

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorCode classifies an evaluation error, following spreadsheet
// conventions.
type ErrorCode string

const (
	CodeDivZero ErrorCode = "#DIV/0!" // division by zero
	CodeName    ErrorCode = "#NAME?"  // variable could not be resolved
	CodeValue   ErrorCode = "#VALUE!" // lookup failed in an unexpected way
)

// Value is the result of evaluating a formula: either a Number or an
// *Error. Evaluation problems are values, not failures, so that one bad
// formula does not abort recalculation of the others.
type Value interface {
	String() string
	isValue()
}

// Number is a successfully computed value.
type Number float64

func (Number) isValue() {}

// String formats n with the shortest representation that round-trips.
func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }

// Error is an evaluation error value.
type Error struct {
	Code   ErrorCode
	Reason string
}

func (*Error) isValue() {}

// String returns the bare error code, as a cell displays it.
func (e *Error) String() string { return string(e.Code) }

// Error implements the error interface so an *Error can be returned from a
// Lookup to propagate it to dependent formulas. It includes the reason, and
// since fmt prefers Error over String, %v prints this form.
func (e *Error) Error() string { return fmt.Sprintf("%s %s", e.Code, e.Reason) }

// Lookup resolves a normalized variable name to its current value. It
// returns a non-nil error when the name cannot be resolved. Returning an
// *Error propagates its code to the formula being evaluated.
type Lookup func(name string) (float64, error)

// Evaluate computes f, resolving variables through lookup.
//
// Multiplication and division bind tighter than addition and subtraction;
// operators of equal precedence associate to the left. Evaluate never
// panics: an unresolved variable yields an *Error with CodeName (or the
// code of an *Error returned by lookup), a zero divisor yields an *Error
// with CodeDivZero, and a panicking lookup yields an *Error with CodeValue.
func (f *Formula) Evaluate(lookup Lookup) (result Value) {
	defer func() {
		if r := recover(); r != nil {
			result = &Error{Code: CodeValue, Reason: fmt.Sprintf("lookup failed: %v", r)}
		}
	}()

	var (
		values []float64
		ops    []string
	)

	topOp := func() string {
		if len(ops) == 0 {
			return ""
		}
		return ops[len(ops)-1]
	}
	popOp := func() string {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		return op
	}
	popValue := func() float64 {
		v := values[len(values)-1]
		values = values[:len(values)-1]
		return v
	}
	// reduce applies the pending operator to the two most recent values.
	// The value pushed first is the left operand.
	reduce := func() *Error {
		op := popOp()
		right := popValue()
		left := popValue()
		v, err := apply(op, left, right)
		if err != nil {
			return err
		}
		values = append(values, v)
		return nil
	}
	// operand pushes v, folding it into a pending * or /.
	operand := func(v float64) *Error {
		values = append(values, v)
		if op := topOp(); op == "*" || op == "/" {
			return reduce()
		}
		return nil
	}

	for _, tok := range f.tokens {
		var err *Error
		switch tok.Kind {
		case NumberLit:
			err = operand(parseNumber(tok.Text))
		case Variable:
			v, lerr := lookup(tok.Text)
			if lerr != nil {
				return unresolved(tok.Text, lerr)
			}
			err = operand(v)
		case Operator:
			if (tok.Text == "+" || tok.Text == "-") && (topOp() == "+" || topOp() == "-") {
				err = reduce()
			}
			ops = append(ops, tok.Text)
		case LParen:
			ops = append(ops, tok.Text)
		case RParen:
			if op := topOp(); op == "+" || op == "-" {
				if err = reduce(); err != nil {
					return err
				}
			}
			popOp() // "("
			if op := topOp(); op == "*" || op == "/" {
				err = reduce()
			}
		}
		if err != nil {
			return err
		}
	}

	if len(ops) > 0 {
		if err := reduce(); err != nil {
			return err
		}
	}
	return Number(values[0])
}

func apply(op string, left, right float64) (float64, *Error) {
	switch op {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	default:
		if right == 0 {
			return 0, &Error{Code: CodeDivZero, Reason: "division by zero"}
		}
		return left / right, nil
	}
}

func unresolved(name string, err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return &Error{Code: fe.Code, Reason: fmt.Sprintf("%s: %s", name, fe.Reason)}
	}
	return &Error{Code: CodeName, Reason: fmt.Sprintf("unknown variable %s: %v", name, err)}
}
