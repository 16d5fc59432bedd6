package terminal

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBufferCap(t *testing.T) {
	r := newRingBuffer(100, 50)

	var all bytes.Buffer
	for i := 0; i < 40; i++ {
		chunk := []byte(fmt.Sprintf("chunk-%03d|", i))
		all.Write(chunk)
		r.Write(chunk)
		assert.LessOrEqual(t, r.Len(), 100)
	}

	// Retained bytes are always a suffix of the full stream.
	got := r.Bytes()
	require.True(t, bytes.HasSuffix(all.Bytes(), got))
	assert.Equal(t, int64(all.Len()), r.TotalWritten())
}

func TestRingBufferTruncatesToKeep(t *testing.T) {
	r := newRingBuffer(10, 4)
	r.Write([]byte("0123456789"))
	require.Equal(t, 10, r.Len())

	// One more byte trips the cap and truncation keeps only the tail.
	r.Write([]byte("A"))
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, []byte("789A"), r.Bytes())
}

func TestRingBufferSince(t *testing.T) {
	r := newRingBuffer(100, 50)
	r.Write([]byte("hello "))
	mark := r.TotalWritten()
	r.Write([]byte("world"))

	assert.Equal(t, []byte("world"), r.Since(mark))
	assert.Empty(t, r.Since(r.TotalWritten()))

	// A watermark older than what is retained degrades to the whole
	// retained suffix.
	assert.Equal(t, r.Bytes(), r.Since(-1))
}

func TestRingBufferTail(t *testing.T) {
	r := newRingBuffer(100, 50)
	r.Write([]byte("abcdef"))

	assert.Equal(t, []byte("def"), r.Tail(3))
	assert.Equal(t, []byte("abcdef"), r.Tail(100))
}

func TestRingBufferTailLines(t *testing.T) {
	r := newRingBuffer(100, 50)
	r.Write([]byte("one\ntwo\nthree\n"))

	lines := r.TailLines(2)
	require.Len(t, lines, 2)
	assert.Equal(t, "two", lines[0])
	assert.Equal(t, "three", lines[1])
}
