package pipeline

import (
	"context"
	"errors"
	"os"
	"time"
)

// ErrStabilizationTimeout is returned when a file keeps changing for the
// whole stabilization window.
var ErrStabilizationTimeout = errors.New("file did not stabilize in time")

// stabilizer waits for a file to finish being written by polling its size.
type stabilizer struct {
	// interval is the duration between file size checks.
	interval time.Duration

	// checks is the number of consecutive stable checks required.
	checks int

	// timeout bounds the whole wait. Zero relies on the context alone.
	timeout time.Duration
}

func newStabilizer(interval time.Duration, checks int) *stabilizer {
	return &stabilizer{
		interval: interval,
		checks:   checks,
		timeout:  5 * time.Minute,
	}
}

// waitForStable blocks until the file size has stayed constant for the
// configured number of consecutive checks.
func (s *stabilizer) waitForStable(ctx context.Context, path string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var lastSize int64 = -1
	stableCount := 0

	for stableCount < s.checks {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrStabilizationTimeout
			}
			return ctx.Err()
		case <-time.After(s.interval):
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		currentSize := info.Size()
		if currentSize == lastSize {
			stableCount++
		} else {
			stableCount = 0
			lastSize = currentSize
		}
	}

	return nil
}
