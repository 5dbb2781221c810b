package calc

import (
	"fmt"
	"io"
	"maps"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sheetcalc/pkg/formula"
	"github.com/matzehuels/sheetcalc/pkg/observability"
	"github.com/matzehuels/sheetcalc/pkg/sheet"
)

// ValueKind identifies what a cell displays.
type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueNumber
	ValueText
	ValueError
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumber:
		return "number"
	case ValueText:
		return "text"
	case ValueError:
		return "error"
	}
	return "empty"
}

// Value is the computed value of a cell.
type Value struct {
	Kind   ValueKind
	Number float64        // Set for ValueNumber
	Text   string         // Set for ValueText
	Err    *formula.Error // Set for ValueError
}

// String formats v the way a spreadsheet cell shows it.
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case ValueText:
		return v.Text
	case ValueError:
		return v.Err.String()
	}
	return ""
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine keeps computed values in step with a sheet.Store.
//
// Mutations go through Set so that the cells the store reports as affected
// are re-evaluated in order. Mutating the store directly leaves values
// stale until Recalculate is called.
//
// Engine is safe for concurrent use.
type Engine struct {
	mu     sync.RWMutex
	store  *sheet.Store
	values map[string]Value
	logger *log.Logger
}

// New creates an engine over store and evaluates every cell it already
// holds. A nil store is replaced by an empty one.
func New(store *sheet.Store, opts ...Option) *Engine {
	if store == nil {
		store = sheet.New()
	}
	e := &Engine{
		store:  store,
		values: make(map[string]Value),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Recalculate()
	return e
}

// Store returns the underlying cell store. Use it for read-only queries.
func (e *Engine) Store() *sheet.Store { return e.store }

// Set parses raw as cell input, stores it, and re-evaluates every affected
// cell. It returns the affected cells in evaluation order. Clearing a cell
// with "" returns the cell and its dependents.
func (e *Engine) Set(name, raw string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, err := e.store.SetFromString(name, raw)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		if order, err = e.store.Affected(name); err != nil {
			return nil, err
		}
	}
	e.evaluate(order)
	return order, nil
}

// Value returns the computed value of the named cell.
func (e *Engine) Value(name string) (Value, error) {
	name, err := e.store.CellName(name)
	if err != nil {
		return Value{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.values[name], nil
}

// Values returns a copy of every non-empty computed value.
func (e *Engine) Values() map[string]Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.values)
}

// Recalculate discards all values and evaluates every cell, dependencies
// first.
func (e *Engine) Recalculate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.values = make(map[string]Value)
	done := make(map[string]bool)
	var order []string

	var visit func(cell string)
	visit = func(cell string) {
		if done[cell] {
			return
		}
		done[cell] = true
		deps, _ := e.store.Dependencies(cell)
		for _, dep := range deps {
			visit(dep)
		}
		order = append(order, cell)
	}
	for _, name := range e.store.NonEmptyCellNames() {
		visit(name)
	}

	e.evaluateOrdered(order)
	e.logger.Debug("recalculated workbook", "cells", len(order), "duration", time.Since(start))
}

func (e *Engine) evaluate(order []string) {
	start := time.Now()
	e.evaluateOrdered(order)
	e.logger.Debug("evaluated cells", "cells", order, "duration", time.Since(start))
}

func (e *Engine) evaluateOrdered(order []string) {
	start := time.Now()
	for _, cell := range order {
		e.evaluateCell(cell)
	}
	observability.Eval().OnRecalculate(len(order), time.Since(start))
}

// evaluateCell computes one cell from its content and the values of its
// dependencies, which must already be current. Callers hold the write lock.
func (e *Engine) evaluateCell(cell string) {
	c, err := e.store.Content(cell)
	if err != nil {
		return
	}
	switch c.Kind() {
	case sheet.KindNumber:
		v, _ := c.Number()
		e.values[cell] = Value{Kind: ValueNumber, Number: v}
	case sheet.KindText:
		e.values[cell] = Value{Kind: ValueText, Text: c.Text()}
	case sheet.KindFormula:
		switch r := c.Formula().Evaluate(e.lookup).(type) {
		case formula.Number:
			e.values[cell] = Value{Kind: ValueNumber, Number: float64(r)}
		case *formula.Error:
			e.values[cell] = Value{Kind: ValueError, Err: r}
			e.logger.Debug("formula error", "cell", cell, "code", r.Code, "reason", r.Reason)
			observability.Eval().OnFormulaError(cell, string(r.Code))
		}
	default:
		delete(e.values, cell)
	}
}

// lookup resolves a formula variable against the current values. Text
// cells yield #VALUE!, errored cells pass their error on, and empty cells
// are unknown variables.
func (e *Engine) lookup(name string) (float64, error) {
	v, ok := e.values[name]
	if !ok {
		return 0, fmt.Errorf("cell %s is empty", name)
	}
	switch v.Kind {
	case ValueNumber:
		return v.Number, nil
	case ValueError:
		return 0, v.Err
	case ValueText:
		return 0, &formula.Error{Code: formula.CodeValue, Reason: fmt.Sprintf("cell %s contains text", name)}
	}
	return 0, fmt.Errorf("cell %s is empty", name)
}
