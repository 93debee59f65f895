// Package daemon provides the background sync loop that opportunistically
// drains the outbox.
//
// The daemon:
//  1. Watches the durable store document for changes (a local-first write
//     lands there before anything touches the network)
//  2. Debounces bursts of writes into one sync trigger
//  3. Also triggers on a periodic timer, so queued operations retry after
//     connectivity loss
//  4. Checks the auto-sync gate before every run and swallows sync errors;
//     background failures leave operations queued for the next trigger
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/daybook-app/daybook/internal/engine"
)

// Config holds configuration for the daemon.
type Config struct {
	// SyncInterval is how often to attempt a drain regardless of local
	// activity. This is the retry cadence after connectivity loss.
	SyncInterval time.Duration

	// DebounceInterval is how long to wait after a store change before
	// syncing, batching rapid local mutations into one drain.
	DebounceInterval time.Duration

	// Logger for daemon activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SyncInterval:     30 * time.Second,
		DebounceInterval: 500 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// Daemon orchestrates store watching and opportunistic sync runs.
type Daemon struct {
	syncer    engine.Syncer
	userID    string
	storePath string
	config    *Config

	watcher *fsnotify.Watcher

	pendingMu    sync.Mutex
	pendingSince time.Time // zero when no trigger is queued

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a daemon that drains userID's outbox through syncer whenever
// the store document at storePath changes or the sync interval elapses.
func New(syncer engine.Syncer, userID, storePath string, config *Config) (*Daemon, error) {
	if syncer == nil {
		return nil, fmt.Errorf("syncer cannot be nil")
	}
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}
	if storePath == "" {
		return nil, fmt.Errorf("storePath cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		syncer:    syncer,
		userID:    userID,
		storePath: storePath,
		config:    config,
		watcher:   watcher,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start begins the daemon's operation.
//
// An initial opportunistic sync runs immediately, then the daemon reacts to
// store changes and the periodic timer. Blocks until ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting sync daemon")

	// The store replaces its document by rename, which replaces the inode,
	// so watch the directory and filter for the document's name.
	dir := filepath.Dir(d.storePath)
	if err := d.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch store directory: %w", err)
	}
	d.config.Logger.Printf("Watching %s", d.storePath)

	d.runSync("startup")

	d.wg.Add(2)
	go d.watchStoreEvents()
	go d.tickLoop()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping sync daemon")
	d.cancel()
	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}
	d.wg.Wait()
	d.config.Logger.Println("Sync daemon stopped")
	return nil
}

// watchStoreEvents monitors filesystem events and queues a debounced sync.
func (d *Daemon) watchStoreEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(d.storePath) {
				continue
			}
			d.queueTrigger()

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueTrigger marks that a store change wants a sync, starting the debounce
// window if one isn't already open.
func (d *Daemon) queueTrigger() {
	d.pendingMu.Lock()
	defer d.pendingMu.Unlock()
	if d.pendingSince.IsZero() {
		d.pendingSince = time.Now()
	}
}

// tickLoop drives both the debounce of store-change triggers and the
// periodic retry interval.
func (d *Daemon) tickLoop() {
	defer d.wg.Done()

	debounce := time.NewTicker(d.config.DebounceInterval)
	defer debounce.Stop()
	interval := time.NewTicker(d.config.SyncInterval)
	defer interval.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-debounce.C:
			d.pendingMu.Lock()
			due := !d.pendingSince.IsZero() &&
				time.Since(d.pendingSince) >= d.config.DebounceInterval
			if due {
				d.pendingSince = time.Time{}
			}
			d.pendingMu.Unlock()
			if due {
				d.runSync("store change")
			}

		case <-interval.C:
			d.runSync("interval")
		}
	}
}

// runSync performs one gated, error-swallowing drain. Background sync never
// propagates failures; queued operations simply wait for the next trigger.
func (d *Daemon) runSync(trigger string) {
	if !d.syncer.ShouldAutoSync() {
		return
	}
	if err := d.syncer.SyncPending(d.ctx, d.userID); err != nil {
		d.config.Logger.Printf("Background sync (%s) failed, will retry: %v", trigger, err)
	}
}
