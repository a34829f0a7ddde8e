// Package cache implements the Index Cache (spec.md §6): a content-addressed
// disk store mapping (root, options) to the last-known SearchData plus a
// reindex delay, so a warm launch can render instantly while a live
// reindex runs in the background.
package cache

import (
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/screenager/frz/internal/fsrow"
	"github.com/screenager/frz/internal/walker"
)

var bucketName = []byte("frz_index_cache")

// Entry is what the cache stores for one (root, options) key.
type Entry struct {
	Data         fsrow.SearchData
	ReindexDelay time.Duration
	Complete     bool
}

// Cache is a bbolt-backed content-addressed store of Entry values.
type Cache struct {
	db *bolt.DB
}

// Open opens (creating if needed) the cache file at path.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init bucket: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying file.
func (c *Cache) Close() error { return c.db.Close() }

// Key digests (root, opts) into the bucket key for this entry. Changing
// root or any option folded into the digest invalidates the prior entry
// (spec.md §3 "Lifecycles": "invalidated by changes to (root, options) key").
func Key(root string, opts walker.FilesystemOptions) string {
	return fmt.Sprintf("%016x", fsrow.StableHash64(digestString(root, opts)))
}

func digestString(root string, opts walker.FilesystemOptions) string {
	depth := "nil"
	if opts.MaxDepth != nil {
		depth = fmt.Sprintf("%d", *opts.MaxDepth)
	}
	return fmt.Sprintf(
		"root=%s|hidden=%t|symlinks=%t|ignorefiles=%t|gitignore=%t|gitglobal=%t|gitexclude=%t|ignores=%s|depth=%s|exts=%s|ctx=%s",
		root, opts.IncludeHidden, opts.FollowSymlinks, opts.RespectIgnoreFiles,
		opts.GitIgnore, opts.GitGlobal, opts.GitExclude,
		sortedKeys(opts.GlobalIgnores), depth, sortedKeys(opts.AllowedExtensions), opts.ContextLabel,
	)
}

func sortedKeys(m map[string]struct{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// Load returns the cached entry for key, if present. Callers should treat a
// returned error the same as a cache miss — spec.md §4.2 "Cache load/store
// failures are best-effort and must not abort indexing".
func (c *Cache) Load(key string) (Entry, bool, error) {
	var raw []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if v := b.Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache: load: %w", err)
	}
	if raw == nil {
		return Entry{}, false, nil
	}
	entry, err := decodeEntry(raw)
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

// Store writes entry for key, overwriting any prior value. Only end-of-pass
// complete datasets (or deliberate partial snapshots the caller has chosen
// to persist) should be stored — a partial pass interrupted mid-walk is
// discarded per spec.md §4.2, never written through Store.
func (c *Cache) Store(key string, entry Entry) error {
	raw, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	if err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), raw)
	}); err != nil {
		return fmt.Errorf("cache: store: %w", err)
	}
	return nil
}
