package channel

import "github.com/packline-io/packline/pkg/concurrency"

// Storage is an ordered, append-only sequence of records for one partition.
// Indices are dense starting at 0; Enqueue only ever grows the sequence.
type Storage struct {
	mu      *concurrency.SmartMutex
	records []uint32
}

func NewStorage() *Storage {
	return &Storage{mu: concurrency.NewSmartMutex(concurrency.MutexConfig{Name: "channel-storage"})}
}

// Enqueue appends records to the end of the sequence.
func (s *Storage) Enqueue(records []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
}

// Peek returns up to count records starting at offset. It returns an empty
// slice if offset is at or past the current length, and a truncated slice
// if offset+count exceeds it. The returned slice is a copy: callers never
// observe mutation of the underlying storage.
func (s *Storage) Peek(offset, count int) []uint32 {
	if count <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records)
	if offset >= n {
		return nil
	}
	end := offset + count
	if end > n {
		end = n
	}
	out := make([]uint32, end-offset)
	copy(out, s.records[offset:end])
	return out
}

// Len returns the current number of records.
func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
