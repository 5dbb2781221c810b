package cache

// Key kinds produced by DefaultKeyer. FileCache stores each kind in its own
// subdirectory.
const (
	KindValues = "values"
	KindGraph  = "graph"
)

// Keyer derives cache keys for workbook results.
type Keyer interface {
	// ValuesKey is the key for the computed values of a workbook.
	ValuesKey(workbookHash string) string

	// GraphKey is the key for a rendered dependency graph of a workbook.
	GraphKey(workbookHash string, opts GraphKeyOpts) string
}

// GraphKeyOpts holds the rendering options that affect a graph artifact.
type GraphKeyOpts struct {
	Format string `json:"format"` // "dot" or "svg"
	Values bool   `json:"values"` // node labels include computed values
}

// DefaultKeyer generates keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ValuesKey generates a key for computed values.
func (DefaultKeyer) ValuesKey(workbookHash string) string {
	return hashKey(KindValues, workbookHash)
}

// GraphKey generates a key for a rendered graph.
func (DefaultKeyer) GraphKey(workbookHash string, opts GraphKeyOpts) string {
	return hashKey(KindGraph, workbookHash, opts)
}
