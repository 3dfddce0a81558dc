// Package lock provides the cross-process mutual exclusion marker that
// serializes vault mutation.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Common errors
var (
	ErrInvalidRecord = errors.New("invalid lock record")
	ErrNotHeld       = errors.New("lock not held by this process")
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// Record is the parsed content of a lock file: holder PID and acquisition
// time, stored as a single line `<pid> <RFC3339 timestamp>`.
type Record struct {
	PID        int
	AcquiredAt time.Time
}

// Lock is a file-based, non-blocking mutual exclusion marker.
type Lock struct {
	path string
	pid  int
}

// New creates a Lock at the given path for the current process.
func New(path string) *Lock {
	return &Lock{path: path, pid: os.Getpid()}
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// TryAcquire attempts to take the lock without blocking. It returns false
// when another live process holds it. A lock whose holder is no longer
// alive is deleted and acquisition retried once.
func (l *Lock) TryAcquire() (bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := l.create()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		rec, err := l.read()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// Holder released between our create and read; retry.
				continue
			}
			if errors.Is(err, ErrInvalidRecord) {
				// Unreadable record: treat as stale.
				if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
					return false, fmt.Errorf("lock: remove invalid lock file: %w", err)
				}
				continue
			}
			return false, err
		}

		if processAlive(rec.PID) {
			return false, nil
		}

		// Stale lock: the holder is gone. Reclaim and retry once.
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return false, fmt.Errorf("lock: remove stale lock file: %w", err)
		}
	}
	return false, nil
}

// Release deletes the lock file, but only if it still records this
// process's PID. Releasing a lock owned by another process is an error.
func (l *Lock) Release() error {
	rec, err := l.read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if rec.PID != l.pid {
		return fmt.Errorf("lock: %w (holder pid %d)", ErrNotHeld, rec.PID)
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("lock: remove lock file: %w", err)
	}
	return nil
}

// create attempts an exclusive creation of the lock file. Returns false
// without error when the file already exists.
func (l *Lock) create() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), dirPerm); err != nil {
		return false, fmt.Errorf("lock: create directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("lock: create lock file: %w", err)
	}
	defer f.Close()

	record := fmt.Sprintf("%d %s\n", l.pid, time.Now().UTC().Format(time.RFC3339))
	if _, err := f.WriteString(record); err != nil {
		os.Remove(l.path)
		return false, fmt.Errorf("lock: write lock file: %w", err)
	}
	return true, nil
}

// read parses the lock file at l.path.
func (l *Lock) read() (*Record, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(strings.TrimSpace(string(data)))
	if len(fields) == 0 {
		return nil, ErrInvalidRecord
	}

	pid, err := strconv.Atoi(fields[0])
	if err != nil || pid <= 0 {
		return nil, ErrInvalidRecord
	}

	rec := &Record{PID: pid}
	if len(fields) > 1 {
		if ts, err := time.Parse(time.RFC3339, fields[1]); err == nil {
			rec.AcquiredAt = ts
		}
	}
	return rec, nil
}

// processAlive checks liveness with signal 0. EPERM means the process
// exists but belongs to another user, so it counts as alive.
func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	if err == nil {
		return true
	}
	if errors.Is(err, unix.EPERM) {
		return true
	}
	return false
}
