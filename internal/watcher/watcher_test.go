package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// run starts w in the background and returns a func that stops it.
func run(t *testing.T, w *Watcher) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx) //nolint:errcheck
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}

func TestWatcher_CallbackOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.sql")
	if err := os.WriteFile(path, []byte("CREATE TABLE a ("), 0644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var got []string
	w, err := New(path, 50*time.Millisecond, func(ctx context.Context, text string) error {
		mu.Lock()
		got = append(got, text)
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stop := run(t, w)

	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(path, []byte("CREATE TABLE b ("), 0644); err != nil {
		t.Fatal(err)
	}

	// Wait for debounce + margin.
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if len(got) == 0 {
		t.Fatal("expected callback to be called at least once")
	}
	if last := got[len(got)-1]; last != "CREATE TABLE b (" {
		t.Errorf("\ngot text %q, wanted the new contents", last)
	}
}

func TestWatcher_DebounceMultipleEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.sql")
	os.WriteFile(path, []byte("0"), 0644)

	var callCount atomic.Int32
	var last atomic.Value
	w, err := New(path, 100*time.Millisecond, func(ctx context.Context, text string) error {
		callCount.Add(1)
		last.Store(text)
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stop := run(t, w)

	// Rapidly rewrite the file within the debounce window.
	time.Sleep(20 * time.Millisecond)
	for _, text := range []string{"1", "2", "3", "4", "5"} {
		os.WriteFile(path, []byte(text), 0644)
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)
	stop()

	if count := callCount.Load(); count == 0 || count > 3 {
		t.Errorf("expected debounced calls (1..3), got %d", count)
	}
	if got, _ := last.Load().(string); got != "5" {
		t.Errorf("\ngot text %q, wanted the most recent contents", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.sql")
	os.WriteFile(path, []byte("x"), 0644)

	var callCount atomic.Int32
	w, err := New(path, 30*time.Millisecond, func(ctx context.Context, text string) error {
		callCount.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stop := run(t, w)

	time.Sleep(20 * time.Millisecond)
	os.WriteFile(filepath.Join(dir, "other.sql"), []byte("y"), 0644)
	time.Sleep(150 * time.Millisecond)
	stop()

	if n := callCount.Load(); n != 0 {
		t.Errorf("\ngot %d calls for an unrelated file, wanted 0", n)
	}
}

func TestWatcher_RenameOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.sql")
	os.WriteFile(path, []byte("old"), 0644)

	var last atomic.Value
	w, err := New(path, 50*time.Millisecond, func(ctx context.Context, text string) error {
		last.Store(text)
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stop := run(t, w)

	time.Sleep(20 * time.Millisecond)
	tmp := filepath.Join(dir, ".schema.sql.swp")
	os.WriteFile(tmp, []byte("new"), 0644)
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	time.Sleep(250 * time.Millisecond)
	stop()

	if got, _ := last.Load().(string); got != "new" {
		t.Errorf("\ngot text %q, wanted %q", got, "new")
	}
}

func TestWatcher_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.sql")
	os.WriteFile(path, []byte("CREATE TABLE a ("), 0644)

	var got string
	w, err := New(path, time.Second, func(ctx context.Context, text string) error {
		got = text
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if err := w.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "CREATE TABLE a (" {
		t.Errorf("\ngot text %q", got)
	}

	os.Remove(path)
	if err := w.Load(context.Background()); err == nil {
		t.Errorf("\nexpected an error for a missing file, did not receive one")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "schema.sql"), time.Second, nil)
	if err == nil {
		t.Errorf("\nexpected an error, did not receive one")
	}
}

func TestWatcher_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.sql")
	w, err := New(path, 50*time.Millisecond, func(ctx context.Context, text string) error { return nil })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
