package chunk_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"livecap/internal/chunk"
	"livecap/internal/media"
)

func writeChunk(t *testing.T, dir string, index int, size int) string {
	t.Helper()
	path := filepath.Join(dir, media.ChunkFileName(index))
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write chunk %d: %v", index, err)
	}
	return path
}

// pollUntilSettled drives Poll past the sighting bookkeeping.
func pollUntilSettled(w *chunk.Watcher) []chunk.Chunk {
	if ready := w.Poll(); len(ready) > 0 {
		return ready
	}
	return w.Poll()
}

func TestPollClaimsEachChunkOnce(t *testing.T) {
	dir := t.TempDir()
	writeChunk(t, dir, 0, 64)
	writeChunk(t, dir, 1, 64)

	w := chunk.NewWatcher(dir, 10, chunk.WithSettleDelay(0))
	defer w.Close()

	ready := pollUntilSettled(w)
	if len(ready) != 2 {
		t.Fatalf("expected 2 ready chunks, got %d", len(ready))
	}
	if ready[0].Index != 0 || ready[1].Index != 1 {
		t.Fatalf("chunks out of order: %+v", ready)
	}
	if ready[0].Start != 0 || ready[0].End != 10 {
		t.Errorf("chunk 0 window = [%v, %v], want [0, 10]", ready[0].Start, ready[0].End)
	}
	if ready[1].Start != 10 || ready[1].End != 20 {
		t.Errorf("chunk 1 window = [%v, %v], want [10, 20]", ready[1].Start, ready[1].End)
	}

	// Files are still on disk but the indices are already claimed.
	for i := 0; i < 3; i++ {
		if again := w.Poll(); len(again) != 0 {
			t.Fatalf("claimed chunks surfaced again: %+v", again)
		}
	}
	if got := w.Watermark(); got != 2 {
		t.Errorf("watermark = %d, want 2", got)
	}
}

func TestPollConsumesZeroSizeChunks(t *testing.T) {
	dir := t.TempDir()
	writeChunk(t, dir, 0, 0)
	writeChunk(t, dir, 1, 64)

	w := chunk.NewWatcher(dir, 10, chunk.WithSettleDelay(0))
	defer w.Close()

	ready := pollUntilSettled(w)
	if len(ready) == 0 {
		ready = pollUntilSettled(w)
	}
	if len(ready) != 1 || ready[0].Index != 1 {
		t.Fatalf("expected only chunk 1, got %+v", ready)
	}
	// The empty index must not block the watermark.
	if got := w.Watermark(); got != 2 {
		t.Errorf("watermark = %d, want 2", got)
	}
}

func TestPollWaitsForSettleDelay(t *testing.T) {
	dir := t.TempDir()
	writeChunk(t, dir, 0, 64)

	w := chunk.NewWatcher(dir, 10, chunk.WithSettleDelay(50*time.Millisecond))
	defer w.Close()

	if ready := w.Poll(); len(ready) != 0 {
		t.Fatalf("chunk claimed before settle delay: %+v", ready)
	}
	if ready := w.Poll(); len(ready) != 0 {
		t.Fatalf("chunk claimed before settle delay elapsed: %+v", ready)
	}

	time.Sleep(60 * time.Millisecond)
	ready := w.Poll()
	if len(ready) != 1 || ready[0].Index != 0 {
		t.Fatalf("expected chunk 0 after settle delay, got %+v", ready)
	}
}

func TestPollStopsAtMissingIndex(t *testing.T) {
	dir := t.TempDir()
	writeChunk(t, dir, 1, 64)

	w := chunk.NewWatcher(dir, 10, chunk.WithSettleDelay(0))
	defer w.Close()

	// Index 0 has not appeared yet, so index 1 must not be claimed out
	// of order.
	for i := 0; i < 3; i++ {
		if ready := w.Poll(); len(ready) != 0 {
			t.Fatalf("claimed past a missing index: %+v", ready)
		}
	}

	writeChunk(t, dir, 0, 64)
	ready := pollUntilSettled(w)
	if len(ready) != 2 || ready[0].Index != 0 || ready[1].Index != 1 {
		t.Fatalf("expected chunks 0 and 1 in order, got %+v", ready)
	}
}

func TestWithStartIndex(t *testing.T) {
	dir := t.TempDir()
	writeChunk(t, dir, 2, 64)

	w := chunk.NewWatcher(dir, 5, chunk.WithSettleDelay(0), chunk.WithStartIndex(2))
	defer w.Close()

	ready := pollUntilSettled(w)
	if len(ready) != 1 || ready[0].Index != 2 {
		t.Fatalf("expected chunk 2, got %+v", ready)
	}
	if ready[0].Start != 10 || ready[0].End != 15 {
		t.Errorf("chunk 2 window = [%v, %v], want [10, 15]", ready[0].Start, ready[0].End)
	}
}

func TestWaitReturnsOnCancel(t *testing.T) {
	w := chunk.NewWatcher(t.TempDir(), 10)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		w.Wait(ctx, time.Minute)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancellation")
	}
}
