package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/x123la/lacrimosa/internal/checkpoint"
)

func TestKeyFormat(t *testing.T) {
	a := &Archiver{cfg: Config{Prefix: "causalseq/checkpoints/", NodeID: "node-1"}}
	if got, want := a.key(), "causalseq/checkpoints/node-1.json"; got != want {
		t.Fatalf("key() = %q, want %q", got, want)
	}
}

func TestUploadOnceNoCheckpointIsNoop(t *testing.T) {
	dir := t.TempDir()
	store, err := checkpoint.Open(filepath.Join(dir, "checkpoint.db"))
	if err != nil {
		t.Fatalf("checkpoint.Open() error = %v", err)
	}
	defer store.Close()

	a := &Archiver{cfg: Config{Bucket: "unused", Prefix: "p/", NodeID: "n"}, store: store}
	if err := a.uploadOnce(context.Background()); err != nil {
		t.Fatalf("uploadOnce() with no checkpoint should be a no-op, got error = %v", err)
	}
}
