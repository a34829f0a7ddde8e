package fsrow_test

import (
	"testing"

	"github.com/screenager/frz/internal/fsrow"
)

func TestStableHash64KnownValues(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"", 0xcbf29ce484222325},
		{"a", 0xaf63dc4c8601ec8c},
	}
	for _, c := range cases {
		if got := fsrow.StableHash64(c.in); got != c.want {
			t.Errorf("StableHash64(%q) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestStableHash64Pure(t *testing.T) {
	for _, s := range []string{"", "a", "src/main.rs", "a/b/c/d.go"} {
		if fsrow.StableHash64(s) != fsrow.StableHash64(s) {
			t.Errorf("StableHash64(%q) not pure", s)
		}
	}
}

func TestRowIdentityIsDisplayDerived(t *testing.T) {
	r1 := fsrow.NewRow("src/main.rs")
	r2 := fsrow.NewRow("src/main.rs")
	if r1.ID != r2.ID {
		t.Fatalf("two rows with identical display strings must share an id")
	}
	r3 := fsrow.NewRow("src/other.rs")
	if r1.ID == r3.ID {
		t.Fatalf("rows with different display strings should (overwhelmingly likely) differ")
	}
}

func TestIndexUpdateIsHeartbeat(t *testing.T) {
	empty := fsrow.IndexUpdate{}
	if !empty.IsHeartbeat() {
		t.Fatalf("zero-value IndexUpdate should be a heartbeat")
	}
	withReset := fsrow.IndexUpdate{Reset: true}
	if withReset.IsHeartbeat() {
		t.Fatalf("reset update must not be a heartbeat")
	}
	withFiles := fsrow.IndexUpdate{Files: []fsrow.Row{fsrow.NewRow("x")}}
	if withFiles.IsHeartbeat() {
		t.Fatalf("update carrying files must not be a heartbeat")
	}
	data := fsrow.SearchData{}
	withCache := fsrow.IndexUpdate{CachedData: &data}
	if withCache.IsHeartbeat() {
		t.Fatalf("update carrying cached data must not be a heartbeat")
	}
}

func TestSearchDataCloneIndependence(t *testing.T) {
	d := fsrow.SearchData{Rows: []fsrow.Row{fsrow.NewRow("a"), fsrow.NewRow("b")}}
	c := d.Clone()
	c.Rows[0] = fsrow.NewRow("mutated")
	if d.Rows[0].Display == "mutated" {
		t.Fatalf("Clone must not share backing array with the original")
	}
}
