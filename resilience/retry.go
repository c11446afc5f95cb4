package resilience

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// JitterBounds configures the uniform retry backoff range.
type JitterBounds struct {
	Min time.Duration
	Max time.Duration
}

// seededJitter derives a deterministic delay in [bounds.Min, bounds.Max)
// from (name, attempt), so test runs are reproducible per the
// determinism boundary design note, without relying on math/rand's
// global state.
func seededJitter(name string, attempt int, bounds JitterBounds) time.Duration {
	span := bounds.Max - bounds.Min
	if span <= 0 {
		return bounds.Min
	}
	h := sha256.New()
	h.Write([]byte(name))
	var a [8]byte
	binary.BigEndian.PutUint64(a[:], uint64(attempt))
	h.Write(a[:])
	sum := h.Sum(nil)
	n := binary.BigEndian.Uint64(sum[:8])
	frac := float64(n) / float64(^uint64(0))
	return bounds.Min + time.Duration(frac*float64(span))
}

const sleepChunk = 10 * time.Millisecond

// cancellableSleep sleeps d in chunks no longer than sleepChunk,
// checking ctx cancellation between chunks so a retry's backoff can
// be interrupted.
func cancellableSleep(ctx context.Context, clock Clock, d time.Duration) error {
	for d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		chunk := d
		if chunk > sleepChunk {
			chunk = sleepChunk
		}
		clock.Sleep(chunk)
		d -= chunk
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// isRetryableReason reports whether an error reason belongs to the
// recoverable set named by §4.1 step 4d.
func isRetryableReason(reason string) bool {
	switch reason {
	case "ConnectionError", "TimeoutError", "TemporaryError", "timeout":
		return true
	default:
		return false
	}
}
