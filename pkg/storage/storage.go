// Package storage persists workbooks under server-assigned IDs.
//
// Three backends implement [Repository]:
//   - [MemoryStore]: in-process map, for tests and throwaway servers
//   - [FileStore]: one TOML file per workbook, for single-host deployments
//   - [MongoStore]: one document per workbook, for shared deployments
//
// IDs are UUIDs created by [NewID]. Every backend rejects IDs that are not
// UUIDs with errors.ErrCodeInvalidID and reports missing workbooks with
// errors.ErrCodeWorkbookNotFound.
//
//	repo, err := storage.NewFileStore("")  // ~/.local/share/sheetcalc/workbooks
//	id := storage.NewID()
//	err = repo.Save(ctx, id, workbook.Capture(store))
package storage

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/sheetcalc/pkg/workbook"
)

// Repository stores workbooks by ID. Implementations are safe for
// concurrent use.
type Repository interface {
	// Get returns the workbook stored under id.
	Get(ctx context.Context, id string) (*workbook.Workbook, error)

	// Save stores wb under id, replacing any previous workbook.
	Save(ctx context.Context, id string, wb *workbook.Workbook) error

	// Delete removes the workbook stored under id. Deleting a missing
	// workbook is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every stored ID, sorted.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// NewID returns a fresh workbook ID.
func NewID() string {
	return uuid.NewString()
}

// clone copies wb so callers never share cell slices with a backend.
func clone(wb *workbook.Workbook) *workbook.Workbook {
	if wb == nil {
		return &workbook.Workbook{Version: workbook.Version}
	}
	return &workbook.Workbook{Version: wb.Version, Cells: slices.Clone(wb.Cells)}
}
