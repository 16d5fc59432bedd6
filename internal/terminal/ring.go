package terminal

import (
	"strings"

	"github.com/termai/termai/internal/stringutil"
)

const (
	// DefaultRingCap is the maximum number of bytes retained.
	DefaultRingCap = 500_000

	// defaultRingKeep is the size the ring is truncated to when the cap
	// is exceeded, always the most recent bytes.
	defaultRingKeep = 250_000
)

// ringBuffer retains the most recent output bytes up to a fixed cap.
// When the cap is exceeded the buffer is truncated to the keep size by
// discarding the oldest bytes; retained bytes are always a suffix of
// the full stream. Not safe for concurrent use; the owning session
// serializes access.
type ringBuffer struct {
	buf     []byte
	cap     int
	keep    int
	written int64
}

func newRingBuffer(capBytes, keepBytes int) *ringBuffer {
	if capBytes <= 0 {
		capBytes = DefaultRingCap
	}
	if keepBytes <= 0 || keepBytes > capBytes {
		keepBytes = capBytes / 2
	}
	return &ringBuffer{cap: capBytes, keep: keepBytes}
}

// Write appends p, evicting the oldest bytes if the cap is exceeded.
func (r *ringBuffer) Write(p []byte) {
	r.buf = append(r.buf, p...)
	r.written += int64(len(p))
	if len(r.buf) > r.cap {
		excess := len(r.buf) - r.keep
		r.buf = append(r.buf[:0], r.buf[excess:]...)
	}
}

// Len returns the number of retained bytes.
func (r *ringBuffer) Len() int { return len(r.buf) }

// TotalWritten returns the total number of bytes ever appended.
func (r *ringBuffer) TotalWritten() int64 { return r.written }

// Bytes returns a copy of the retained bytes.
func (r *ringBuffer) Bytes() []byte {
	out := make([]byte, len(r.buf))
	copy(out, r.buf)
	return out
}

// Since returns a copy of all bytes appended after the given
// TotalWritten watermark. Bytes already evicted are lost.
func (r *ringBuffer) Since(watermark int64) []byte {
	missing := r.written - watermark
	if missing <= 0 {
		return nil
	}
	if missing > int64(len(r.buf)) {
		missing = int64(len(r.buf))
	}
	out := make([]byte, missing)
	copy(out, r.buf[int64(len(r.buf))-missing:])
	return out
}

// Tail returns up to n of the most recent bytes without copying less
// than necessary.
func (r *ringBuffer) Tail(n int) []byte {
	if n <= 0 || len(r.buf) == 0 {
		return nil
	}
	if n > len(r.buf) {
		n = len(r.buf)
	}
	out := make([]byte, n)
	copy(out, r.buf[len(r.buf)-n:])
	return out
}

// TailLines returns the last maxLines lines of the retained output.
func (r *ringBuffer) TailLines(maxLines int) []string {
	if len(r.buf) == 0 {
		return nil
	}
	s := strings.ReplaceAll(string(r.buf), "\r\n", "\n")
	return stringutil.TailLines(s, maxLines)
}
