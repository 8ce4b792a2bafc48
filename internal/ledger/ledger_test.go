package ledger

import (
	"testing"
	"time"

	"github.com/rybkr/arkindex/internal/change"
	"github.com/rybkr/arkindex/internal/discovery"
)

func TestRebuild_DropsDeletedKeepsSurvivors(t *testing.T) {
	now := time.Now()
	files := []discovery.File{
		{RelPath: "a.go", Size: 10, ModTime: now},
	}
	verdicts := []change.Result{
		{RelPath: "a.go", Verdict: change.Unchanged, Hash: "sha256:aaa"},
		{RelPath: "b.go", Verdict: change.Deleted},
	}

	l := Rebuild(files, verdicts)
	if len(l) != 1 {
		t.Fatalf("got %d entries, want 1", len(l))
	}
	if l["a.go"].Hash != "sha256:aaa" {
		t.Errorf("a.go hash = %q", l["a.go"].Hash)
	}
	if _, ok := l["b.go"]; ok {
		t.Error("expected b.go to be dropped")
	}
}

func TestToPriorEntries_RoundTrips(t *testing.T) {
	now := time.Now()
	l := Ledger{"a.go": {Hash: "sha256:aaa", MTime: now, Size: 10}}
	prior := ToPriorEntries(l)
	if prior["a.go"].Hash != "sha256:aaa" || prior["a.go"].Size != 10 {
		t.Errorf("prior = %+v", prior)
	}
}
