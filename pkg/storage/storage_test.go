package storage

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/sheetcalc/pkg/errors"
	"github.com/matzehuels/sheetcalc/pkg/workbook"
)

// testRepository runs the behavior every backend must share.
func testRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	id := NewID()
	wb := &workbook.Workbook{
		Version: workbook.Version,
		Cells:   []workbook.Cell{{Name: "A1", Contents: "2"}, {Name: "B1", Contents: "=A1*2"}},
	}

	if _, err := repo.Get(ctx, id); !errors.Is(err, errors.ErrCodeWorkbookNotFound) {
		t.Errorf("Get before Save: error = %v, want %v", err, errors.ErrCodeWorkbookNotFound)
	}

	if err := repo.Save(ctx, id, wb); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	wb.Cells[0].Contents = "mutated after save"

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	want := []workbook.Cell{{Name: "A1", Contents: "2"}, {Name: "B1", Contents: "=A1*2"}}
	if !slices.Equal(got.Cells, want) {
		t.Errorf("Get = %v, want %v", got.Cells, want)
	}

	// Overwrite
	if err := repo.Save(ctx, id, &workbook.Workbook{Version: workbook.Version}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if got, _ := repo.Get(ctx, id); got == nil || len(got.Cells) != 0 {
		t.Errorf("overwrite not applied: %v", got)
	}

	other := NewID()
	if err := repo.Save(ctx, other, wb); err != nil {
		t.Fatal(err)
	}
	ids, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	wantIDs := []string{id, other}
	slices.Sort(wantIDs)
	if !slices.Equal(ids, wantIDs) {
		t.Errorf("List = %v, want %v", ids, wantIDs)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(ctx, id); err != nil {
		t.Errorf("second Delete error: %v", err)
	}
	if _, err := repo.Get(ctx, id); !errors.Is(err, errors.ErrCodeWorkbookNotFound) {
		t.Errorf("Get after Delete: error = %v", err)
	}

	for _, bad := range []string{"", "../etc/passwd", "not-a-uuid"} {
		if _, err := repo.Get(ctx, bad); !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("Get(%q) error = %v, want %v", bad, err, errors.ErrCodeInvalidID)
		}
		if err := repo.Save(ctx, bad, wb); !errors.Is(err, errors.ErrCodeInvalidID) {
			t.Errorf("Save(%q) error = %v, want %v", bad, err, errors.ErrCodeInvalidID)
		}
	}

	if err := repo.Close(); err != nil {
		t.Errorf("Close error: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testRepository(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	testRepository(t, s)
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "readme.toml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, NewID()+".toml"), 0755); err != nil {
		t.Fatal(err)
	}
	ids, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("List = %v, want none", ids)
	}
	if s.Path() != dir {
		t.Errorf("Path() = %q, want %q", s.Path(), dir)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	id := NewID()
	if err := os.WriteFile(filepath.Join(dir, id+".toml"), []byte("cells = = ="), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(context.Background(), id); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want %v", err, errors.ErrCodeInvalidFormat)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("SHEETCALC_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SHEETCALC_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, MongoOptions{URI: uri, Database: "sheetcalc_test_" + NewID()[:8]})
	if err != nil {
		t.Fatalf("NewMongoStore error: %v", err)
	}
	t.Cleanup(func() { _ = s.coll.Database().Drop(context.Background()) })
	testRepository(t, s)
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	if _, err := NewMongoStore(context.Background(), MongoOptions{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestDocConversion(t *testing.T) {
	wb := &workbook.Workbook{Version: "1", Cells: []workbook.Cell{{Name: "A1", Contents: "=B1"}}}
	doc := toDoc("id", wb)
	if doc.ID != "id" || doc.Cells[0].Contents != "=B1" {
		t.Errorf("toDoc = %+v", doc)
	}
	back := fromDoc(doc)
	if back.Version != "1" || !slices.Equal(back.Cells, wb.Cells) {
		t.Errorf("fromDoc = %+v", back)
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Error("NewID returned the same ID twice")
	}
	if err := errors.ValidateWorkbookID(a); err != nil {
		t.Errorf("NewID() = %q is not a valid ID: %v", a, err)
	}
}
