/*
Package snapshot periodically serializes a store.StateStore to a dump
file under a non-blocking file lock, and restores one at startup.
*/
package snapshot

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/kvforge/respkv/internal/logging"
	"github.com/kvforge/respkv/internal/store"
)

// Task owns the dump file path and runs the periodic save loop.
type Task struct {
	Path     string
	Interval time.Duration
	Store    *store.StateStore
	Log      *logging.Logger
}

// Run blocks, saving on every tick until ctx is canceled. A contended
// file lock or a save error is logged and the tick is skipped; the
// server keeps running either way.
func (t *Task) Run(ctx context.Context) {
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.Save(); err != nil {
				t.Log.Warn("snapshot: save skipped: %v", err)
			}
		}
	}
}

// Save writes one snapshot to disk under a non-blocking lock attempt.
func (t *Task) Save() error {
	lock := flock.New(t.Path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("snapshot: acquiring lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("snapshot: lock busy, skipping tick")
	}
	defer lock.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t.Store.Export()); err != nil {
		return fmt.Errorf("snapshot: encoding: %w", err)
	}
	encoded := buf.Bytes()
	bufSum := checksum(bytes.NewReader(encoded))

	f, err := os.OpenFile(t.Path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("snapshot: opening dump file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(encoded); err != nil {
		return fmt.Errorf("snapshot: writing dump file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("snapshot: syncing dump file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("snapshot: seeking dump file: %w", err)
	}
	fileSum := checksum(f)
	if bufSum != fileSum {
		return fmt.Errorf("snapshot: checksum mismatch after write (buf=%s file=%s)", bufSum, fileSum)
	}
	return nil
}

// Load restores the StateStore from the dump file. A missing or
// zero-length file yields a default-empty result rather than an
// error; any other read/decode failure is fatal since the caller is
// on the startup path.
func Load(path string) (store.Snapshot, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store.Snapshot{}, false, nil
		}
		return store.Snapshot{}, false, fmt.Errorf("snapshot: opening dump file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return store.Snapshot{}, false, fmt.Errorf("snapshot: stat dump file: %w", err)
	}
	if info.Size() == 0 {
		return store.Snapshot{}, false, nil
	}

	var snap store.Snapshot
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return store.Snapshot{}, false, fmt.Errorf("snapshot: decoding dump file: %w", err)
	}
	return snap, true, nil
}

func checksum(r io.Reader) string {
	h := sha256.New()
	_, _ = io.Copy(h, r)
	return hex.EncodeToString(h.Sum(nil))
}
