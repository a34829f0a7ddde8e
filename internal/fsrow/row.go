// Package fsrow defines the search corpus's unit of data — a Row — and the
// ordered dataset (SearchData) that the indexer appends to and the scorer
// reads from.
package fsrow

// fnvOffset64 and fnvPrime64 are the FNV-1a 64-bit constants. Pinned here
// rather than delegated to hash/fnv so the byte values in stable_hash64's
// round-trip tests stay next to the constants they depend on.
const (
	fnvOffset64 uint64 = 0xcbf29ce484222325
	fnvPrime64  uint64 = 0x00000100000001b3
)

// StableHash64 computes the FNV-1a 64-bit hash of s. It is a pure function:
// StableHash64(s) == StableHash64(s) always, and collisions are tolerated by
// design — two distinct display strings may share an id.
func StableHash64(s string) uint64 {
	h := fnvOffset64
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

// Truncation controls how a display string is shortened to fit a width
// budget. Left means the renderer may elide characters from the start of the
// string (keeping the tail, e.g. a filename, visible); Right means it may
// elide from the end instead. Both may be set for strings that can be
// shortened from either side; neither set means the string must not be
// truncated.
type Truncation struct {
	Left  bool
	Right bool
}

// DefaultTruncation favors keeping the filename visible, the common case for
// a path display string.
func DefaultTruncation() Truncation {
	return Truncation{Left: true}
}

// Row is one entry in the search corpus. Identity is assigned at creation
// from the display string and never mutates; two rows are equal iff their
// IDs are equal.
type Row struct {
	Display    string
	ID         uint64
	Truncation Truncation
}

// NewRow builds a Row, deriving its stable id from display.
func NewRow(display string) Row {
	return Row{
		Display:    display,
		ID:         StableHash64(display),
		Truncation: DefaultTruncation(),
	}
}

// NewRowWithTruncation builds a Row with an explicit truncation hint.
func NewRowWithTruncation(display string, t Truncation) Row {
	return Row{Display: display, ID: StableHash64(display), Truncation: t}
}

// Progress is a point-in-time snapshot of an indexing pass.
type Progress struct {
	IndexedFiles int
	TotalFiles   *int // nil unless derivable (cache-complete preview, or end-of-walk)
	Complete     bool
}

// SearchData is the ordered dataset of rows plus indexing metadata. Rows are
// appended in discovery order; the only other mutation is wholesale
// replacement when a cache preview arrives.
type SearchData struct {
	Rows         []Row
	Root         string
	ContextLabel string
	InitialQuery string
}

// Clone returns a SearchData sharing no backing array with data — used when
// handing a dataset across the UI/search-runtime boundary so each side owns
// an independent copy (spec.md §5: "the two datasets may be transiently
// inconsistent but converge").
func (d SearchData) Clone() SearchData {
	rows := make([]Row, len(d.Rows))
	copy(rows, d.Rows)
	return SearchData{
		Rows:         rows,
		Root:         d.Root,
		ContextLabel: d.ContextLabel,
		InitialQuery: d.InitialQuery,
	}
}

// IndexUpdate is a delta describing new rows and/or a whole-dataset
// replacement, as emitted by the walker aggregator or the cache streamer.
type IndexUpdate struct {
	Files      []Row // immutable shared slice; appended unless CachedData is set
	Progress   Progress
	Reset      bool
	CachedData *SearchData // non-nil replaces the dataset wholesale
}

// IsHeartbeat reports whether u carries no data mutation at all — empty
// Files, no reset, and no cached replacement — i.e. a pure progress update.
func (u IndexUpdate) IsHeartbeat() bool {
	return len(u.Files) == 0 && !u.Reset && u.CachedData == nil
}

// MatchBatch is a ranked slice of the dataset for a given query id.
// len(Indices) == len(Scores) always; when IDs is non-nil,
// len(IDs) == len(Indices).
type MatchBatch struct {
	Indices []int
	IDs     []uint64 // optional; present when the consumer advertises identity support
	Scores  []uint16
}
