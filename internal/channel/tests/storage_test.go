package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/packline-io/packline/internal/channel"
)

func TestStorageEnqueuePeek(t *testing.T) {
	s := channel.NewStorage()
	s.Enqueue([]uint32{1, 2, 3})
	s.Enqueue([]uint32{4, 5})

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, s.Peek(0, 10))
	assert.Equal(t, []uint32{3, 4}, s.Peek(2, 2))
}

func TestStoragePeek_OffsetPastEnd(t *testing.T) {
	s := channel.NewStorage()
	s.Enqueue([]uint32{1})
	assert.Empty(t, s.Peek(5, 10))
}

func TestStoragePeek_TruncatesAtEnd(t *testing.T) {
	s := channel.NewStorage()
	s.Enqueue([]uint32{1, 2, 3})
	assert.Equal(t, []uint32{2, 3}, s.Peek(1, 100))
}

func TestStoragePeek_CopiesNotAliases(t *testing.T) {
	s := channel.NewStorage()
	s.Enqueue([]uint32{1, 2, 3})
	out := s.Peek(0, 3)
	out[0] = 999
	assert.Equal(t, []uint32{1, 2, 3}, s.Peek(0, 3))
}
