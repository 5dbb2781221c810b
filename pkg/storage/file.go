package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/sheetcalc/pkg/errors"
	"github.com/matzehuels/sheetcalc/pkg/workbook"
)

// FileStore is a file-based workbook store.
// Workbooks are stored as TOML files named <id>.toml in one directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based workbook store.
// If baseDir is empty, defaults to ~/.local/share/sheetcalc/workbooks/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "sheetcalc", "workbooks")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create workbook dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) workbookPath(id string) string {
	return filepath.Join(s.baseDir, id+".toml")
}

func (s *FileStore) Get(ctx context.Context, id string) (*workbook.Workbook, error) {
	if err := errors.ValidateWorkbookID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.workbookPath(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeWorkbookNotFound, "workbook %s not found", id)
	}
	wb, err := workbook.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	return wb, nil
}

func (s *FileStore) Save(ctx context.Context, id string, wb *workbook.Workbook) error {
	if err := errors.ValidateWorkbookID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Write to a temporary file first so readers never see a partial file.
	path := s.workbookPath(id)
	tmp := path + ".tmp"
	if err := clone(wb).WriteFile(tmp); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace workbook file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateWorkbookID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.workbookPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove workbook file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read workbook dir: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		id, ok := strings.CutSuffix(entry.Name(), ".toml")
		if entry.IsDir() || !ok || errors.ValidateWorkbookID(id) != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for workbook files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Repository = (*FileStore)(nil)
