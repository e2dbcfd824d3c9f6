package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/clipnorm/internal/logger"
)

type recorder struct {
	mu    sync.Mutex
	calls map[string]int
	seen  chan string
}

func newRecorder() *recorder {
	return &recorder{calls: make(map[string]int), seen: make(chan string, 16)}
}

func (r *recorder) handle(ctx context.Context, path string) error {
	r.mu.Lock()
	r.calls[path]++
	r.mu.Unlock()
	r.seen <- path
	return nil
}

func (r *recorder) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[path]
}

func (r *recorder) wait(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-r.seen:
		if got != want {
			t.Fatalf("handled %s, want %s", got, want)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %s", want)
	}
}

func startWatcher(t *testing.T, dir string, handler EventHandler) context.CancelFunc {
	t.Helper()
	w, err := New(dir, handler, logger.NewNop(), Options{MaxConcurrent: 2, SettleDelay: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Start() returned %v, want context.Canceled", err)
			}
		case <-time.After(3 * time.Second):
			t.Error("watcher did not stop")
		}
		w.Stop()
	})
	return cancel
}

func TestWatcherHandlesNewVideos(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, rec.handle)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	video := filepath.Join(dir, "clip.MP4")
	if err := os.WriteFile(video, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec.wait(t, video)

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	nested := filepath.Join(sub, "nested.mov")
	if err := os.WriteFile(nested, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec.wait(t, nested)

	if n := rec.count(filepath.Join(dir, "notes.txt")); n != 0 {
		t.Errorf("non-video handled %d times", n)
	}
}

func TestWatcherPicksUpMovedDirectory(t *testing.T) {
	dir := t.TempDir()
	staging := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, rec.handle)

	batch := filepath.Join(staging, "batch")
	if err := os.MkdirAll(batch, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(batch, "a.mp4"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	moved := filepath.Join(dir, "batch")
	if err := os.Rename(batch, moved); err != nil {
		t.Skipf("cannot move across temp dirs: %v", err)
	}
	rec.wait(t, filepath.Join(moved, "a.mp4"))
}

func TestWatcherWaitsForWritesToSettle(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, rec.handle)

	video := filepath.Join(dir, "growing.mp4")
	f, err := os.Create(video)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := f.Write([]byte("chunk")); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	f.Close()

	rec.wait(t, video)
	time.Sleep(150 * time.Millisecond)
	if n := rec.count(video); n != 1 {
		t.Errorf("handled %d times, want once", n)
	}
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), func(context.Context, string) error { return nil }, logger.NewNop(), Options{})
	if err == nil {
		t.Fatal("New() on a missing directory should fail")
	}
}

func TestSemaphore(t *testing.T) {
	sem := newSemaphore(1)
	if err := sem.acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := sem.acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("acquire on a full semaphore = %v, want deadline exceeded", err)
	}

	sem.release()
	if err := sem.acquire(context.Background()); err != nil {
		t.Errorf("acquire after release = %v", err)
	}
}
