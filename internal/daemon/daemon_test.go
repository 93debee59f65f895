package daemon

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/daybook-app/daybook/internal/entity"
)

// fakeSyncer counts drain attempts and lets tests toggle the gate and inject
// failures.
type fakeSyncer struct {
	syncs   atomic.Int64
	allowed atomic.Bool
	err     error
}

func newFakeSyncer() *fakeSyncer {
	f := &fakeSyncer{}
	f.allowed.Store(true)
	return f
}

func (f *fakeSyncer) SyncPending(_ context.Context, _ string) error {
	f.syncs.Add(1)
	return f.err
}

func (f *fakeSyncer) Collection(_ context.Context, _ string, _ entity.Kind) ([]entity.Record, error) {
	return nil, nil
}

func (f *fakeSyncer) ShouldAutoSync() bool { return f.allowed.Load() }

func testConfig() *Config {
	return &Config{
		SyncInterval:     time.Hour, // out of the way unless a test wants it
		DebounceInterval: 20 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[test] ", 0),
	}
}

// startDaemon runs d.Start in the background and registers cleanup.
func startDaemon(t *testing.T, d *Daemon) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := d.Start(ctx); err != nil {
			t.Errorf("daemon exited with error: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	})
	return cancel
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestNewValidatesArguments(t *testing.T) {
	syncer := newFakeSyncer()

	if _, err := New(nil, "u1", "/tmp/state.json", nil); err == nil {
		t.Error("nil syncer accepted")
	}
	if _, err := New(syncer, "", "/tmp/state.json", nil); err == nil {
		t.Error("empty userID accepted")
	}
	if _, err := New(syncer, "u1", "", nil); err == nil {
		t.Error("empty storePath accepted")
	}
	d, err := New(syncer, "u1", "/tmp/state.json", nil)
	if err != nil {
		t.Fatalf("valid arguments rejected: %v", err)
	}
	if d.config.SyncInterval == 0 {
		t.Error("nil config not defaulted")
	}
	_ = d.watcher.Close()
}

func TestStartRunsInitialSync(t *testing.T) {
	syncer := newFakeSyncer()
	path := filepath.Join(t.TempDir(), "daybook-state.json")
	d, err := New(syncer, "u1", path, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	startDaemon(t, d)

	if !waitFor(t, 2*time.Second, func() bool { return syncer.syncs.Load() >= 1 }) {
		t.Error("no startup sync")
	}
}

func TestStoreWriteTriggersSync(t *testing.T) {
	syncer := newFakeSyncer()
	dir := t.TempDir()
	path := filepath.Join(dir, "daybook-state.json")
	d, err := New(syncer, "u1", path, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	startDaemon(t, d)

	// Wait out the startup sync first.
	if !waitFor(t, 2*time.Second, func() bool { return syncer.syncs.Load() >= 1 }) {
		t.Fatal("no startup sync")
	}
	before := syncer.syncs.Load()

	// Write the way the store does: temp file then rename over the document.
	tmp := filepath.Join(dir, ".daybook-state-1.tmp")
	if err := os.WriteFile(tmp, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return syncer.syncs.Load() > before }) {
		t.Error("store replacement did not trigger a sync")
	}
}

func TestUnrelatedFileDoesNotTrigger(t *testing.T) {
	syncer := newFakeSyncer()
	dir := t.TempDir()
	path := filepath.Join(dir, "daybook-state.json")
	d, err := New(syncer, "u1", path, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	startDaemon(t, d)

	if !waitFor(t, 2*time.Second, func() bool { return syncer.syncs.Load() >= 1 }) {
		t.Fatal("no startup sync")
	}
	before := syncer.syncs.Load()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if got := syncer.syncs.Load(); got != before {
		t.Errorf("unrelated file triggered %d syncs", got-before)
	}
}

func TestGateOffSuppressesSync(t *testing.T) {
	syncer := newFakeSyncer()
	syncer.allowed.Store(false)
	dir := t.TempDir()
	path := filepath.Join(dir, "daybook-state.json")
	cfg := testConfig()
	cfg.SyncInterval = 30 * time.Millisecond
	d, err := New(syncer, "u1", path, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	startDaemon(t, d)

	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if got := syncer.syncs.Load(); got != 0 {
		t.Errorf("gate off, but %d syncs ran", got)
	}
}

func TestIntervalRetriesAfterFailure(t *testing.T) {
	syncer := newFakeSyncer()
	syncer.err = errors.New("still offline")
	dir := t.TempDir()
	path := filepath.Join(dir, "daybook-state.json")
	cfg := testConfig()
	cfg.SyncInterval = 30 * time.Millisecond
	d, err := New(syncer, "u1", path, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	startDaemon(t, d)

	// Failures are swallowed and the interval keeps retrying.
	if !waitFor(t, 2*time.Second, func() bool { return syncer.syncs.Load() >= 3 }) {
		t.Errorf("interval retries stalled at %d syncs", syncer.syncs.Load())
	}
}

func TestBurstOfWritesDebouncesToOneSync(t *testing.T) {
	syncer := newFakeSyncer()
	dir := t.TempDir()
	path := filepath.Join(dir, "daybook-state.json")
	cfg := testConfig()
	cfg.DebounceInterval = 100 * time.Millisecond
	d, err := New(syncer, "u1", path, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	startDaemon(t, d)

	if !waitFor(t, 2*time.Second, func() bool { return syncer.syncs.Load() >= 1 }) {
		t.Fatal("no startup sync")
	}
	before := syncer.syncs.Load()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !waitFor(t, 2*time.Second, func() bool { return syncer.syncs.Load() > before }) {
		t.Fatal("burst did not trigger a sync")
	}
	// Give a spurious second drain time to show up, then check the burst
	// collapsed into one.
	time.Sleep(300 * time.Millisecond)
	if got := syncer.syncs.Load() - before; got != 1 {
		t.Errorf("burst of 5 writes ran %d syncs, want 1", got)
	}
}
