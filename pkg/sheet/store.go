package sheet

import (
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sheetcalc/pkg/depgraph"
	"github.com/matzehuels/sheetcalc/pkg/errors"
	"github.com/matzehuels/sheetcalc/pkg/formula"
	"github.com/matzehuels/sheetcalc/pkg/observability"
)

// Option configures a Store.
type Option func(*Store)

// WithNormalizer sets the normalizer applied to cell names and to the
// variables of formulas parsed by the store. The default is the identity.
func WithNormalizer(n formula.Normalizer) Option {
	return func(s *Store) {
		if n != nil {
			s.normalize = n
		}
	}
}

// WithValidator sets an extra acceptance rule for normalized cell names and
// formula variables. The default accepts every identifier.
func WithValidator(v formula.Validator) Option {
	return func(s *Store) {
		if v != nil {
			s.validate = v
		}
	}
}

// WithLogger sets the logger used for debug output. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store holds named cells and the dependency graph between them.
//
// Every mutating method returns the recalculation order: the mutated cell
// followed by every cell that transitively depends on it, each listed
// after all of its affected dependencies. A mutation that would introduce
// a circular dependency is rolled back and rejected with
// errors.ErrCodeCircular.
//
// Store is safe for concurrent use. The cell table and the graph share one
// lock, so readers never observe a provisional mutation.
type Store struct {
	mu      sync.RWMutex
	cells   map[string]Content
	graph   *depgraph.Graph
	changed bool

	normalize formula.Normalizer
	validate  formula.Validator
	logger    *log.Logger
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		cells:     make(map[string]Content),
		graph:     depgraph.New(),
		normalize: func(name string) string { return name },
		validate:  func(string) bool { return true },
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FormulaOptions returns the formula options matching the store's
// normalizer and validator, for callers that build formulas themselves.
func (s *Store) FormulaOptions() []formula.Option {
	return []formula.Option{formula.WithNormalizer(s.normalize), formula.WithValidator(s.validate)}
}

// Content returns the content of the named cell, or empty content if the
// cell does not exist.
func (s *Store) Content(name string) (Content, error) {
	name, err := s.CellName(name)
	if err != nil {
		return Content{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cells[name], nil
}

// NonEmptyCellNames returns the names of all cells with content, sorted.
func (s *Store) NonEmptyCellNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.cells))
	for name := range s.cells {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of cells with content.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cells)
}

// SetNumber stores a number in the named cell.
func (s *Store) SetNumber(name string, v float64) ([]string, error) {
	return s.SetContent(name, NumberContent(v))
}

// SetText stores text in the named cell. Empty text removes the cell and
// its dependency edges; the returned list is then empty. Use Affected to
// find the cells that depended on it.
func (s *Store) SetText(name, text string) ([]string, error) {
	return s.SetContent(name, TextContent(text))
}

// SetFormula stores a formula in the named cell. A nil formula fails with
// errors.ErrCodeMissingContent.
func (s *Store) SetFormula(name string, f *formula.Formula) ([]string, error) {
	if f == nil {
		return nil, errors.New(errors.ErrCodeMissingContent, "formula for cell %s is missing", name)
	}
	return s.SetContent(name, FormulaContent(f))
}

// SetFromString parses raw with ParseContent, using the store's normalizer
// and validator for formulas, and stores the result.
func (s *Store) SetFromString(name, raw string) ([]string, error) {
	c, err := ParseContent(raw, s.FormulaOptions()...)
	if err != nil {
		return nil, err
	}
	return s.set(name, c, false)
}

// SetContent stores c in the named cell and returns the recalculation
// order. A formula built without the store's normalizer is rebuilt with
// it, so its variables name the same cells as the store does. Variables
// the store's validator rejects fail with errors.ErrCodeRejectedVar. The
// store is left unchanged when an error is returned.
func (s *Store) SetContent(name string, c Content) ([]string, error) {
	return s.set(name, c, true)
}

// set stores c. With conform, formula variables are brought in line with
// the store's normalizer and validator first.
func (s *Store) set(name string, c Content, conform bool) ([]string, error) {
	name, err := s.CellName(name)
	if err != nil {
		return nil, err
	}
	if c.Kind() == KindFormula {
		if c.Formula() == nil {
			return nil, errors.New(errors.ErrCodeMissingContent, "formula for cell %s is missing", name)
		}
		if conform && !s.conforms(c.Formula()) {
			f, err := formula.New(c.Formula().String(), s.FormulaOptions()...)
			if err != nil {
				return nil, err
			}
			c = FormulaContent(f)
		}
	}

	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.cells[name]
	s.apply(name, c)

	if c.IsEmpty() {
		if existed {
			s.changed = true
		}
		s.logger.Debug("cleared cell", "cell", name, "existed", existed)
		observability.Sheet().OnContentSet(name, c.Kind().String(), 0, time.Since(start))
		return []string{}, nil
	}

	order, err := s.recalculationOrder(name)
	if err != nil {
		if existed {
			s.apply(name, prev)
		} else {
			s.apply(name, Empty())
		}
		s.logger.Debug("rejected circular content", "cell", name, "content", c, "err", err)
		observability.Sheet().OnCycleRejected(name)
		return nil, err
	}

	s.changed = true
	s.logger.Debug("set content", "cell", name, "content", c, "affected", len(order))
	observability.Sheet().OnContentSet(name, c.Kind().String(), len(order), time.Since(start))
	return order, nil
}

// Affected returns the recalculation order for the named cell without
// changing anything: the cell itself followed by its transitive
// dependents.
func (s *Store) Affected(name string) ([]string, error) {
	name, err := s.CellName(name)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recalculationOrder(name)
}

// Dependents returns the cells whose formulas reference the named cell
// directly, sorted.
func (s *Store) Dependents(name string) ([]string, error) {
	name, err := s.CellName(name)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.graph.DependentsOf(name)
	slices.Sort(out)
	return out, nil
}

// Dependencies returns the cells the named cell's formula references,
// sorted. Referenced cells need not exist.
func (s *Store) Dependencies(name string) ([]string, error) {
	name, err := s.CellName(name)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.graph.DependenciesOf(name)
	slices.Sort(out)
	return out, nil
}

// Edges returns every dependency edge in the store.
func (s *Store) Edges() []depgraph.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Edges()
}

// Referenced returns the names of every cell that takes part in a
// dependency edge, sorted. It may include empty cells that formulas
// reference.
func (s *Store) Referenced() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph.Nodes()
}

// Changed reports whether the store was mutated since it was created or
// MarkSaved was last called.
func (s *Store) Changed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changed
}

// MarkSaved clears the Changed flag.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed = false
}

// CellName returns the normalized form of name, or an error with
// errors.ErrCodeInvalidName if it is not an acceptable cell name.
func (s *Store) CellName(name string) (string, error) {
	if name == "" {
		return "", errors.ValidateName(name)
	}
	norm := s.normalize(name)
	if err := errors.ValidateName(norm); err != nil {
		return "", err
	}
	if !s.validate(norm) {
		return "", errors.New(errors.ErrCodeInvalidName, "cell name %q is rejected by the validation rule", norm)
	}
	return norm, nil
}

// conforms reports whether every variable of f is already a normalized
// name the validator accepts.
func (s *Store) conforms(f *formula.Formula) bool {
	for _, v := range f.Variables() {
		if s.normalize(v) != v || !s.validate(v) {
			return false
		}
	}
	return true
}

// apply stores c and makes the cell's dependency edges match it. Callers
// hold the write lock.
func (s *Store) apply(name string, c Content) {
	if c.IsEmpty() {
		delete(s.cells, name)
	} else {
		s.cells[name] = c
	}
	s.graph.ReplaceDependencies(name, c.variables())
}

// recalculationOrder walks DependentsOf edges depth-first from name and
// returns the reverse postorder, which starts with name. Reaching a cell
// that is still on the active path means a cycle. Callers hold the lock.
func (s *Store) recalculationOrder(name string) ([]string, error) {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int)
	var post []string

	var visit func(cell string) error
	visit = func(cell string) error {
		state[cell] = active
		// Descending here so the reversed postorder lists siblings
		// ascending.
		next := s.graph.DependentsOf(cell)
		slices.Sort(next)
		slices.Reverse(next)
		for _, dep := range next {
			switch state[dep] {
			case active:
				return errors.Circular(dep)
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		state[cell] = done
		post = append(post, cell)
		return nil
	}

	if err := visit(name); err != nil {
		return nil, err
	}
	slices.Reverse(post)
	return post, nil
}
