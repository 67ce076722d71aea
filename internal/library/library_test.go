package library

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/starford/quire/internal/blog"
	"github.com/starford/quire/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testCatalog(t *testing.T) (string, *Catalog) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	loader := NewLoader(store, blog.NewParser(), WithLogger(quietLogger()), WithWorkers(2))
	return dir, NewCatalog(loader)
}

func reload(t *testing.T, cat *Catalog) []Change {
	t.Helper()
	changes, err := cat.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return changes
}

func slugs(lib *Library) []string {
	var out []string
	for _, a := range lib.Articles() {
		out = append(out, a.Slug())
	}
	return out
}

func sortChanges(changes []Change) []Change {
	out := slices.Clone(changes)
	slices.SortFunc(out, func(a, b Change) int { return cmp.Compare(a.Slug, b.Slug) })
	return out
}

func TestLoad_OrdersNewestFirst(t *testing.T) {
	dir, cat := testCatalog(t)
	writeFile(t, dir, "old.md", "Old\n1/5/2019\nold body\n")
	writeFile(t, dir, "new.md", "New\n3/2/2021\nnew body\n")
	writeFile(t, dir, "b-same.md", "B\n6/1/2020\n")
	writeFile(t, dir, "a-same.md", "A\n6/1/2020\n")
	reload(t, cat)

	lib := cat.Current()
	if got, want := slugs(lib), []string{"new", "a-same", "b-same", "old"}; !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	a, ok := lib.Get("new")
	if !ok {
		t.Fatal("article new not found")
	}
	if a.Title != "New" || a.Body != "<p>new body</p>\n" || a.URL() != "/articles/new" {
		t.Errorf("article = %+v, url %q", a.Document, a.URL())
	}
	if s := a.Summary(); s.Date != "March 2, 2021" || s.ReadTime != "1 min read" {
		t.Errorf("summary = %+v", s)
	}
}

func TestLoad_SkipsBrokenFiles(t *testing.T) {
	dir, cat := testCatalog(t)
	writeFile(t, dir, "good.md", "Good\n1/1/2020\nok\n")
	writeFile(t, dir, "nodate.md", "Just a title\n")
	writeFile(t, dir, "baddate.md", "Title\nsoon\n")
	writeFile(t, dir, "binary.md", "T\n1/1/2020\n\xff\n")
	reload(t, cat)

	if got := slugs(cat.Current()); !slices.Equal(got, []string{"good"}) {
		t.Errorf("slugs = %v, want [good]", got)
	}
}

func TestLoad_DuplicateSlugKeepsFirst(t *testing.T) {
	dir, cat := testCatalog(t)
	writeFile(t, dir, "post.md", "Markdown\n1/1/2020\n")
	writeFile(t, dir, "post.txt", "Text\n1/1/2020\n")
	reload(t, cat)

	lib := cat.Current()
	if lib.Len() != 1 {
		t.Fatalf("len = %d, want 1", lib.Len())
	}
	if a, _ := lib.Get("post"); a.Title != "Markdown" {
		t.Errorf("title = %q, want Markdown", a.Title)
	}
}

func TestCatalog_ReloadReportsChanges(t *testing.T) {
	dir, cat := testCatalog(t)
	if cat.Current().Len() != 0 {
		t.Fatal("new catalog should be empty")
	}

	writeFile(t, dir, "keep.md", "Keep\n1/1/2020\n")
	writeFile(t, dir, "edit.md", "Edit\n1/1/2020\nv1\n")
	writeFile(t, dir, "drop.md", "Drop\n1/1/2020\n")
	if changes := reload(t, cat); len(changes) != 3 {
		t.Fatalf("changes = %v, want 3", changes)
	}

	before := cat.Current()
	keepBefore, _ := before.Get("keep")

	writeFile(t, dir, "edit.md", "Edit\n1/1/2020\nv2\n")
	if err := os.Remove(filepath.Join(dir, "drop.md")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "add.md", "Add\n1/1/2020\n")

	got := sortChanges(reload(t, cat))
	want := []Change{
		{Kind: Created, Slug: "add"},
		{Kind: Deleted, Slug: "drop"},
		{Kind: Updated, Slug: "edit"},
	}
	if !slices.Equal(got, want) {
		t.Errorf("changes = %v, want %v", got, want)
	}

	after := cat.Current()
	if keepAfter, _ := after.Get("keep"); keepAfter.Document != keepBefore.Document {
		t.Error("unchanged document should be reused")
	}
	if edited, _ := after.Get("edit"); edited.Body != "<p>v2</p>\n" {
		t.Errorf("edited body = %q", edited.Body)
	}

	// The old snapshot is untouched.
	if _, ok := before.Get("drop"); !ok {
		t.Error("old snapshot lost drop")
	}
}

func TestCatalog_ReloadErrorKeepsSnapshot(t *testing.T) {
	dir, cat := testCatalog(t)
	writeFile(t, dir, "one.md", "One\n1/1/2020\n")
	reload(t, cat)

	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := cat.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error")
	}
	if cat.Current().Len() != 1 {
		t.Errorf("len = %d, want 1", cat.Current().Len())
	}
}

func TestDiff_Nil(t *testing.T) {
	lib := New([]*Article{})
	for _, pair := range [][2]*Library{{nil, nil}, {nil, lib}, {lib, nil}} {
		if changes := Diff(pair[0], pair[1]); len(changes) != 0 {
			t.Errorf("Diff = %v, want none", changes)
		}
	}
}

func TestChangeKind_String(t *testing.T) {
	for kind, want := range map[ChangeKind]string{Created: "created", Updated: "updated", Deleted: "deleted"} {
		if kind.String() != want {
			t.Errorf("%d.String() = %q, want %q", kind, kind.String(), want)
		}
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir, cat := testCatalog(t)
	reload(t, cat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	created := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = cat.Watch(ctx, quietLogger(), 50*time.Millisecond, func(_ *Library, changes []Change) {
			for _, c := range changes {
				if c == (Change{Kind: Created, Slug: "fresh"}) {
					select {
					case created <- struct{}{}:
					default:
					}
				}
			}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "fresh.md", "Fresh\n2/2/2022\nhello\n")

	select {
	case <-created:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the new article")
	}
	if _, ok := cat.Current().Get("fresh"); !ok {
		t.Error("fresh not in the current snapshot")
	}

	cancel()
	<-done
}

func TestWatch_IgnoresHiddenFiles(t *testing.T) {
	dir, cat := testCatalog(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	go func() {
		_ = cat.Watch(ctx, quietLogger(), 30*time.Millisecond, func(*Library, []Change) {
			mu.Lock()
			calls++
			mu.Unlock()
		})
	}()

	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, ".swap", "Draft\n1/1/2020\n")
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("callback ran %d times for a hidden file", calls)
	}
}

func TestCatalog_OnChange(t *testing.T) {
	dir, cat := testCatalog(t)
	writeFile(t, dir, "a.md", "A\n1/1/2020\na\n")
	writeFile(t, dir, "b.md", "B\n1/2/2020\nb\n")

	var got [][]Change
	cat.OnChange(func(lib *Library, changes []Change) {
		if lib != cat.Current() {
			t.Error("hook received a snapshot that is not current")
		}
		got = append(got, changes)
	})

	reload(t, cat)
	if len(got) != 1 {
		t.Fatalf("hook calls = %d, want 1", len(got))
	}

	reload(t, cat)
	if len(got) != 1 {
		t.Fatalf("unchanged reload must not notify, calls = %d", len(got))
	}

	if err := os.Remove(filepath.Join(dir, "a.md")); err != nil {
		t.Fatal(err)
	}
	reload(t, cat)
	if len(got) != 2 {
		t.Fatalf("hook calls = %d, want 2", len(got))
	}
	if want := []Change{{Kind: Deleted, Slug: "a"}}; !slices.Equal(got[1], want) {
		t.Errorf("changes = %v, want %v", got[1], want)
	}
}

func TestCatalog_OnChangeOrderedUnderConcurrentReloads(t *testing.T) {
	dir, cat := testCatalog(t)

	var (
		mu        sync.Mutex
		delivered []*Library
		stale     int
	)
	cat.OnChange(func(lib *Library, _ []Change) {
		mu.Lock()
		defer mu.Unlock()
		if lib != cat.Current() {
			stale++
		}
		delivered = append(delivered, lib)
	})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := filepath.Join(dir, fmt.Sprintf("post-%d.md", i))
			if err := os.WriteFile(name, fmt.Appendf(nil, "Post %d\n1/%d/2020\n", i, i+1), 0o644); err != nil {
				t.Error(err)
				return
			}
			if _, err := cat.Reload(context.Background()); err != nil {
				t.Errorf("Reload: %v", err)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if stale != 0 {
		t.Errorf("%d hooks saw a snapshot that was no longer current", stale)
	}
	if len(delivered) == 0 || delivered[len(delivered)-1] != cat.Current() {
		t.Fatal("last delivered snapshot is not the current one")
	}
	for i := 1; i < len(delivered); i++ {
		if delivered[i].Len() < delivered[i-1].Len() {
			t.Errorf("snapshot %d has %d articles after one with %d", i, delivered[i].Len(), delivered[i-1].Len())
		}
	}
	if cat.Current().Len() != 8 {
		t.Errorf("len = %d, want 8", cat.Current().Len())
	}
}
