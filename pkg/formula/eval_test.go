package formula

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func constants(values map[string]float64) Lookup {
	return func(name string) (float64, error) {
		v, ok := values[name]
		if !ok {
			return 0, fmt.Errorf("no value for %s", name)
		}
		return v, nil
	}
}

func TestEvaluate(t *testing.T) {
	vars := constants(map[string]float64{"a": 2, "b": 3, "c": 4, "zero": 0})

	tests := []struct {
		expr string
		want float64
	}{
		{"1", 1},
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"5-2", 3},
		{"8/2", 4},
		{"5-2-1", 2},
		{"8/2/2", 2},
		{"1+2*3-4", 3},
		{"2-(3-4)*5", 7},
		{"2*(3+4)*5", 70},
		{"((1+2))*((3))", 9},
		{"a*b+c", 10},
		{"a*(b+c)", 14},
		{"c/a-b", -1},
		{"1e2/4", 25},
		{".5*a", 1},
		{"zero*a", 0},
		{"0/a", 0},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := MustNew(tt.expr).Evaluate(vars)
			n, ok := got.(Number)
			if !ok {
				t.Fatalf("Evaluate(%q) = %v, want number %v", tt.expr, got, tt.want)
			}
			if float64(n) != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, n, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	vars := constants(map[string]float64{"x": 1, "zero": 0})

	tests := []struct {
		expr string
		code ErrorCode
	}{
		{"1/0", CodeDivZero},
		{"x/zero", CodeDivZero},
		{"x/(x-1)", CodeDivZero},
		{"(1/0)+x", CodeDivZero},
		{"missing+1", CodeName},
		{"x*(1+missing)", CodeName},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := MustNew(tt.expr).Evaluate(vars)
			e, ok := got.(*Error)
			if !ok {
				t.Fatalf("Evaluate(%q) = %v, want error %s", tt.expr, got, tt.code)
			}
			if e.Code != tt.code {
				t.Errorf("Evaluate(%q) code = %s, want %s", tt.expr, e.Code, tt.code)
			}
			if e.String() != string(tt.code) {
				t.Errorf("String() = %q, want %q", e.String(), tt.code)
			}
		})
	}
}

func TestEvaluateUnknownVariableReason(t *testing.T) {
	got := MustNew("1+ghost").Evaluate(constants(nil))
	e, ok := got.(*Error)
	if !ok {
		t.Fatalf("got %v, want *Error", got)
	}
	if !strings.Contains(e.Reason, "ghost") {
		t.Errorf("Reason = %q, want it to name the variable", e.Reason)
	}
}

func TestEvaluatePropagatesLookupError(t *testing.T) {
	lookup := func(string) (float64, error) {
		return 0, &Error{Code: CodeDivZero, Reason: "division by zero"}
	}
	got := MustNew("A1+1").Evaluate(lookup)
	e, ok := got.(*Error)
	if !ok {
		t.Fatalf("got %v, want *Error", got)
	}
	if e.Code != CodeDivZero {
		t.Errorf("Code = %s, want %s", e.Code, CodeDivZero)
	}
}

func TestEvaluatePropagatesWrappedLookupError(t *testing.T) {
	lookup := func(name string) (float64, error) {
		return 0, fmt.Errorf("cell %s: %w", name, &Error{Code: CodeValue, Reason: "text"})
	}
	got := MustNew("A1*2").Evaluate(lookup)
	if e, ok := got.(*Error); !ok || e.Code != CodeValue {
		t.Errorf("got %v, want %s", got, CodeValue)
	}
}

func TestEvaluatePanickingLookup(t *testing.T) {
	lookup := func(string) (float64, error) { panic("boom") }
	got := MustNew("x+1").Evaluate(lookup)
	e, ok := got.(*Error)
	if !ok {
		t.Fatalf("got %v, want *Error", got)
	}
	if e.Code != CodeValue {
		t.Errorf("Code = %s, want %s", e.Code, CodeValue)
	}
}

func TestEvaluateLooksUpNormalizedNames(t *testing.T) {
	var asked []string
	lookup := func(name string) (float64, error) {
		asked = append(asked, name)
		return 1, nil
	}
	MustNew("a1 + b2", WithNormalizer(strings.ToUpper)).Evaluate(lookup)
	if len(asked) != 2 || asked[0] != "A1" || asked[1] != "B2" {
		t.Errorf("looked up %v, want [A1 B2]", asked)
	}
}

func TestEvaluateOverflow(t *testing.T) {
	got := MustNew("1e308*10").Evaluate(constants(nil))
	n, ok := got.(Number)
	if !ok || !math.IsInf(float64(n), 1) {
		t.Errorf("got %v, want +Inf", got)
	}
}

func TestNumberString(t *testing.T) {
	tests := []struct {
		n    Number
		want string
	}{
		{1, "1"},
		{2.5, "2.5"},
		{-0.25, "-0.25"},
		{1e21, "1e+21"},
		{1.0 / 3, "0.3333333333333333"},
	}
	for _, tt := range tests {
		if got := tt.n.String(); got != tt.want {
			t.Errorf("Number(%v).String() = %q, want %q", float64(tt.n), got, tt.want)
		}
	}
}

func TestErrorImplementsError(t *testing.T) {
	var err error = &Error{Code: CodeName, Reason: "unknown variable x"}
	if got := err.Error(); got != "#NAME? unknown variable x" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorDisplayForms(t *testing.T) {
	v := MustNew("1/(2-2)").Evaluate(nil)
	e, ok := v.(*Error)
	if !ok {
		t.Fatalf("Evaluate = %v, want *Error", v)
	}
	if got := e.String(); got != "#DIV/0!" {
		t.Errorf("String() = %q, want %q", got, "#DIV/0!")
	}
	if got := fmt.Sprint(v); got != "#DIV/0! division by zero" {
		t.Errorf("fmt.Sprint = %q, want the Error form", got)
	}
}
