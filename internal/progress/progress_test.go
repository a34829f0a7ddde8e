package progress_test

import (
	"testing"

	"github.com/screenager/frz/internal/progress"
)

func TestRecordIndexedNeverDecreases(t *testing.T) {
	tr := progress.New()
	tr.RecordIndexed("root", 10)
	tr.RecordIndexed("root", 5)
	status, complete := tr.Status(nil)
	if complete {
		t.Fatal("should not be complete yet")
	}
	if status != "indexing… (root: 10)" {
		t.Fatalf("status = %q", status)
	}
}

func TestSetTotalAndMarkComplete(t *testing.T) {
	tr := progress.New()
	total := 42
	tr.RecordIndexed("root", 42)
	tr.SetTotal("root", &total)
	tr.MarkComplete()

	status, complete := tr.Status(map[string]string{"root": "files"})
	if !complete {
		t.Fatal("expected complete=true")
	}
	if status != "indexed (files: 42/42)" {
		t.Fatalf("status = %q", status)
	}
}
