package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/sheetcalc/pkg/cache"
	"github.com/matzehuels/sheetcalc/pkg/errors"
	"github.com/matzehuels/sheetcalc/pkg/workbook"
)

// testWorkbook builds a workbook from name, contents pairs.
func testWorkbook(pairs ...string) *workbook.Workbook {
	wb := &workbook.Workbook{Version: workbook.Version}
	for i := 0; i+1 < len(pairs); i += 2 {
		wb.Cells = append(wb.Cells, workbook.Cell{Name: pairs[i], Contents: pairs[i+1]})
	}
	return wb
}

func testCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func testContext(c *CLI) context.Context {
	return withLogger(context.Background(), c.Logger)
}

func TestEvaluate(t *testing.T) {
	c := testCLI()
	ctx := testContext(c)
	ch := testCache(t)
	wb := testWorkbook("a1", "2", "b1", "=a1*3", "c1", "hello", "d1", "=c1+1")

	rows, cached, err := c.evaluate(ctx, wb, ch)
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Error("first evaluation reported cached")
	}
	want := []cellRow{
		{Name: "A1", Contents: "2", Kind: "number", Display: "2"},
		{Name: "B1", Contents: "=A1*3", Kind: "number", Display: "6"},
		{Name: "C1", Contents: "hello", Kind: "text", Display: "hello"},
		{Name: "D1", Contents: "=C1+1", Kind: "error", Display: "#VALUE!"},
	}
	if !slices.Equal(rows, want) {
		t.Errorf("rows = %+v\nwant %+v", rows, want)
	}
	if n := countErrors(rows); n != 1 {
		t.Errorf("countErrors() = %d, want 1", n)
	}

	again, cached, err := c.evaluate(ctx, wb, ch)
	if err != nil {
		t.Fatal(err)
	}
	if !cached {
		t.Error("second evaluation was not cached")
	}
	if !slices.Equal(again, want) {
		t.Errorf("cached rows = %+v", again)
	}
}

func TestEvaluateCaseSensitivity(t *testing.T) {
	wb := testWorkbook("a1", "1", "A1", "2")

	_, _, err := testCLI().evaluate(context.Background(), wb, cache.NewNullCache())
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("case-folded duplicate error = %v, want %v", err, errors.ErrCodeInvalidFormat)
	}

	c := testCLI()
	c.caseSensitive = true
	rows, _, err := c.evaluate(context.Background(), wb, cache.NewNullCache())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %+v, want two cells", rows)
	}
	if c.keyer().ValuesKey("h") == testCLI().keyer().ValuesKey("h") {
		t.Error("case-sensitive keys should be scoped apart")
	}
}

func TestSelectRows(t *testing.T) {
	c := testCLI()
	rows := []cellRow{
		{Name: "A1", Contents: "1", Kind: "number", Display: "1"},
		{Name: "B1", Contents: "=A1", Kind: "number", Display: "1"},
	}

	got, err := c.selectRows(rows, []string{"b1", "z9"})
	if err != nil {
		t.Fatal(err)
	}
	want := []cellRow{rows[1], {Name: "Z9", Kind: "empty"}}
	if !slices.Equal(got, want) {
		t.Errorf("selectRows() = %+v, want %+v", got, want)
	}

	if _, err := c.selectRows(rows, []string{"9z"}); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("invalid name error = %v", err)
	}
}

func TestApplySet(t *testing.T) {
	c := testCLI()
	wb := testWorkbook("A1", "1", "B1", "=A1+1", "C1", "=B1*2")

	res, err := c.applySet(wb, "a1", "5")
	if err != nil {
		t.Fatal(err)
	}
	if res.cell != "A1" {
		t.Errorf("cell = %q, want A1", res.cell)
	}
	var got []string
	for _, r := range res.affected {
		got = append(got, r.Name+"="+r.Display)
	}
	if want := []string{"A1=5", "B1=6", "C1=12"}; !slices.Equal(got, want) {
		t.Errorf("affected = %v, want %v", got, want)
	}
	if res.wb.Cells[0].Contents != "5" {
		t.Errorf("saved A1 = %q", res.wb.Cells[0].Contents)
	}

	if _, err := c.applySet(wb, "A1", "=C1"); !errors.Is(err, errors.ErrCodeCircular) {
		t.Errorf("cycle error = %v, want %v", err, errors.ErrCodeCircular)
	}
}

func TestRunSet(t *testing.T) {
	c := testCLI()
	ctx := testContext(c)
	path := filepath.Join(t.TempDir(), "book.toml")

	if err := c.runSet(ctx, path, "A1", "3", false); err == nil {
		t.Fatal("set on a missing file without --create should fail")
	}
	if err := c.runSet(ctx, path, "A1", "3", true); err != nil {
		t.Fatal(err)
	}
	if err := c.runSet(ctx, path, "B1", "=A1*A1", false); err != nil {
		t.Fatal(err)
	}

	before, _ := os.ReadFile(path)
	if err := c.runSet(ctx, path, "A1", "=B1", false); !errors.Is(err, errors.ErrCodeCircular) {
		t.Errorf("cycle error = %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("rejected edit changed the file")
	}

	wb, err := workbook.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(wb.Cells) != 2 || wb.Cells[1].Contents != "=A1*A1" {
		t.Errorf("cells = %+v", wb.Cells)
	}
}

func TestRenderGraph(t *testing.T) {
	c := testCLI()
	ctx := testContext(c)
	ch := testCache(t)
	wb := testWorkbook("A1", "2", "B1", "=A1+1")
	opts := cache.GraphKeyOpts{Format: formatDOT, Values: true}

	data, cached, err := c.renderGraph(ctx, wb, ch, opts)
	if err != nil {
		t.Fatal(err)
	}
	if cached {
		t.Error("first render reported cached")
	}
	dot := string(data)
	if !strings.Contains(dot, `"A1" -> "B1"`) {
		t.Errorf("missing edge:\n%s", dot)
	}
	if !strings.Contains(dot, "→ 3") {
		t.Errorf("missing value label:\n%s", dot)
	}

	again, cached, _ := c.renderGraph(ctx, wb, ch, opts)
	if !cached || string(again) != dot {
		t.Error("second render was not served from cache")
	}

	// Different options use a different key.
	if _, cached, _ := c.renderGraph(ctx, wb, ch, cache.GraphKeyOpts{Format: formatDOT}); cached {
		t.Error("render without values hit the values entry")
	}
}

func TestRunGraphWritesFile(t *testing.T) {
	c := testCLI()
	dir := t.TempDir()
	in := filepath.Join(dir, "book.toml")
	out := filepath.Join(dir, "book.dot")
	if err := testWorkbook("A1", "1", "B1", "=A1").WriteFile(in); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	if err := c.runGraph(testContext(c), in, &graphOpts{output: out, format: formatDOT}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("output is not DOT: %.40s", data)
	}
}
