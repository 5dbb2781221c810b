package workbook

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/sheetcalc/pkg/cache"
	"github.com/matzehuels/sheetcalc/pkg/errors"
	"github.com/matzehuels/sheetcalc/pkg/sheet"
)

// Version is the file format version written by this package.
const Version = "1"

// Workbook is the serialized form of a sheet.Store.
type Workbook struct {
	Version string `toml:"version" json:"version"`
	Cells   []Cell `toml:"cells" json:"cells"`
}

// Cell is one non-empty cell in its raw input form: "=A1+1", "3.5" or
// "label".
type Cell struct {
	Name     string `toml:"name" json:"name"`
	Contents string `toml:"contents" json:"contents"`
}

// Capture returns the workbook for every non-empty cell in s, sorted by
// name.
func Capture(s *sheet.Store) *Workbook {
	names := s.NonEmptyCellNames()
	wb := &Workbook{Version: Version, Cells: make([]Cell, 0, len(names))}
	for _, name := range names {
		c, err := s.Content(name)
		if err != nil || c.IsEmpty() {
			continue
		}
		wb.Cells = append(wb.Cells, Cell{Name: name, Contents: c.Raw()})
	}
	return wb
}

// Restore applies every cell of wb to s, which should be empty. Cells may
// appear in any order: a formula may reference a cell restored after it.
// On success s is marked as saved.
//
// Restore fails on an unsupported version, a duplicate cell name, an
// invalid name or formula, or a circular dependency between saved cells.
// Cells applied before the failure stay in s.
func (wb *Workbook) Restore(s *sheet.Store) error {
	if wb.Version != "" && wb.Version != Version {
		return errors.New(errors.ErrCodeUnsupported, "workbook version %q is not supported", wb.Version)
	}
	seen := make(map[string]bool, len(wb.Cells))
	for _, c := range wb.Cells {
		name, err := s.CellName(c.Name)
		if err != nil {
			return fmt.Errorf("cell %q: %w", c.Name, err)
		}
		if seen[name] {
			return errors.New(errors.ErrCodeInvalidFormat, "cell %s appears more than once", name)
		}
		seen[name] = true
		if _, err := s.SetFromString(name, c.Contents); err != nil {
			return fmt.Errorf("cell %s: %w", name, err)
		}
	}
	s.MarkSaved()
	return nil
}

// NewStore creates a store with opts and restores wb into it.
func (wb *Workbook) NewStore(opts ...sheet.Option) (*sheet.Store, error) {
	s := sheet.New(opts...)
	if err := wb.Restore(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Read decodes a TOML workbook from r. Read does not close r.
//
//	version = "1"
//
//	[[cells]]
//	name = "A1"
//	contents = "2"
//
//	[[cells]]
//	name = "B1"
//	contents = "=A1*3"
func Read(r io.Reader) (*Workbook, error) {
	var wb Workbook
	if _, err := toml.NewDecoder(r).Decode(&wb); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode workbook")
	}
	return &wb, nil
}

// Write encodes wb as TOML to w.
func (wb *Workbook) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(wb); err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return nil
}

// ReadFile reads a workbook from the TOML file at path.
func ReadFile(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	wb, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wb, nil
}

// WriteFile writes wb as TOML to path, replacing any existing file.
func (wb *Workbook) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Hash returns the SHA-256 of the canonical TOML encoding. Workbooks with
// the same cells in the same order hash the same; Capture sorts cells, so
// the hash of a captured workbook identifies the store's content.
func (wb *Workbook) Hash() string {
	var buf bytes.Buffer
	_ = wb.Write(&buf)
	return cache.Hash(buf.Bytes())
}
