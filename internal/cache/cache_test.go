package cache_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/screenager/frz/internal/cache"
	"github.com/screenager/frz/internal/fsrow"
	"github.com/screenager/frz/internal/walker"
)

func TestStoreLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.Open(filepath.Join(dir, "frz.cache"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	key := cache.Key("/some/root", walker.FilesystemOptions{IncludeHidden: true})
	entry := cache.Entry{
		Data: fsrow.SearchData{
			Rows: []fsrow.Row{fsrow.NewRow("a.go"), fsrow.NewRow("b.go")},
			Root: "/some/root",
		},
		ReindexDelay: 3 * time.Second,
		Complete:     true,
	}
	if err := c.Store(key, entry); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok, err := c.Load(key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got.Data.Rows) != 2 || got.Data.Rows[0].Display != "a.go" {
		t.Fatalf("round-tripped rows mismatch: %+v", got.Data.Rows)
	}
	if got.ReindexDelay != 3*time.Second {
		t.Fatalf("ReindexDelay = %v, want 3s", got.ReindexDelay)
	}
	if !got.Complete {
		t.Fatal("expected Complete=true")
	}
}

func TestLoadMissIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	c, err := cache.Open(filepath.Join(dir, "frz.cache"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	_, ok, err := c.Load("nonexistent")
	if err != nil {
		t.Fatalf("Load returned error on miss: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}

func TestKeyChangesWithOptions(t *testing.T) {
	k1 := cache.Key("/root", walker.FilesystemOptions{IncludeHidden: false})
	k2 := cache.Key("/root", walker.FilesystemOptions{IncludeHidden: true})
	if k1 == k2 {
		t.Fatal("keys should differ when options differ")
	}
	k3 := cache.Key("/other", walker.FilesystemOptions{IncludeHidden: false})
	if k1 == k3 {
		t.Fatal("keys should differ when root differs")
	}
}
