package forecast

import (
	"DrawPulse/internal/domain/models"
)

// DefaultBufferCapacity bounds the sliding outcome window.
const DefaultBufferCapacity = 200

// Buffer is a bounded, de-duplicated, order-preserving window of recent
// outcome records, newest-first. Owned exclusively by the engine and
// mutated only by ingestion.
type Buffer struct {
	capacity int
	records  []models.OutcomeRecord
	seen     map[string]struct{}
}

// NewBuffer creates a buffer with the given capacity (DefaultBufferCapacity
// when n <= 0).
func NewBuffer(n int) *Buffer {
	if n <= 0 {
		n = DefaultBufferCapacity
	}
	return &Buffer{
		capacity: n,
		records:  make([]models.OutcomeRecord, 0, n),
		seen:     make(map[string]struct{}, n),
	}
}

// Ingest inserts each record whose period is not already present at the
// head, then truncates from the tail down to capacity. Re-ingesting a
// present period is a no-op. Returns the number of records inserted.
func (b *Buffer) Ingest(records []models.OutcomeRecord) int {
	inserted := 0
	for _, rec := range records {
		if _, ok := b.seen[rec.PeriodID]; ok {
			continue
		}
		b.records = append([]models.OutcomeRecord{rec}, b.records...)
		b.seen[rec.PeriodID] = struct{}{}
		inserted++
	}
	if len(b.records) > b.capacity {
		for _, old := range b.records[b.capacity:] {
			delete(b.seen, old.PeriodID)
		}
		b.records = b.records[:b.capacity]
	}
	return inserted
}

// Len returns the current number of records.
func (b *Buffer) Len() int { return len(b.records) }

// Capacity returns the configured bound.
func (b *Buffer) Capacity() int { return b.capacity }

// Records returns the window newest-first. Callers must not mutate it.
func (b *Buffer) Records() []models.OutcomeRecord { return b.records }

// Latest returns the most recent record, if any.
func (b *Buffer) Latest() (models.OutcomeRecord, bool) {
	if len(b.records) == 0 {
		return models.OutcomeRecord{}, false
	}
	return b.records[0], true
}

// Contains reports whether a period is already buffered.
func (b *Buffer) Contains(periodID string) bool {
	_, ok := b.seen[periodID]
	return ok
}

// RecentDigits returns up to n most recent digits in chronological order
// (oldest first), so sequence lookups read left to right.
func (b *Buffer) RecentDigits(n int) []int {
	if n > len(b.records) {
		n = len(b.records)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = b.records[i].Digit
	}
	return out
}

// RecentBits returns up to n most recent bits in chronological order.
func (b *Buffer) RecentBits(n int) []int {
	if n > len(b.records) {
		n = len(b.records)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = b.records[i].Bit
	}
	return out
}

// BigRatio returns the fraction of BIG labels among the n most recent
// records (0.5 when the slice is empty).
func (b *Buffer) BigRatio(n int) float64 {
	if n > len(b.records) {
		n = len(b.records)
	}
	if n == 0 {
		return 0.5
	}
	big := 0
	for i := 0; i < n; i++ {
		if b.records[i].Label == models.LabelBig {
			big++
		}
	}
	return float64(big) / float64(n)
}
