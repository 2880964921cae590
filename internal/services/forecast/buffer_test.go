package forecast

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DrawPulse/internal/domain/models"
)

// recordsFromDigits builds records with sequential period IDs, oldest
// first, so the last digit passed becomes the newest record.
func recordsFromDigits(digits ...int) []models.OutcomeRecord {
	out := make([]models.OutcomeRecord, len(digits))
	for i, d := range digits {
		out[i] = models.NewOutcomeRecord(models.DrawResult{
			PeriodID:   fmt.Sprintf("20260826-%04d", i+1),
			Number:     d,
			ObservedAt: time.Now(),
		})
	}
	return out
}

// ingestChronological feeds records one at a time so the newest ends up at
// the buffer head.
func ingestChronological(b *Buffer, records []models.OutcomeRecord) {
	for _, r := range records {
		b.Ingest([]models.OutcomeRecord{r})
	}
}

func TestBufferDedupIsIdempotent(t *testing.T) {
	b := NewBuffer(10)
	recs := recordsFromDigits(1, 2, 3)
	ingestChronological(b, recs)
	require.Equal(t, 3, b.Len())

	got := b.Ingest(recs)
	assert.Equal(t, 0, got)
	assert.Equal(t, 3, b.Len())

	latest, ok := b.Latest()
	require.True(t, ok)
	assert.Equal(t, "20260826-0003", latest.PeriodID)
}

func TestBufferCapacityEvictsOldest(t *testing.T) {
	b := NewBuffer(5)
	ingestChronological(b, recordsFromDigits(0, 1, 2, 3, 4, 5, 6))
	require.Equal(t, 5, b.Len())

	// oldest two periods are gone
	assert.False(t, b.Contains("20260826-0001"))
	assert.False(t, b.Contains("20260826-0002"))
	assert.True(t, b.Contains("20260826-0007"))

	// evicted periods leave the dedup set and may be ingested again
	got := b.Ingest(recordsFromDigits(9)[:1])
	assert.Equal(t, 1, got)
	assert.Equal(t, 5, b.Len())
}

func TestBufferOrderNewestFirst(t *testing.T) {
	b := NewBuffer(10)
	ingestChronological(b, recordsFromDigits(1, 2, 3, 4))
	recs := b.Records()
	require.Len(t, recs, 4)
	assert.Equal(t, 4, recs[0].Digit)
	assert.Equal(t, 1, recs[3].Digit)

	assert.Equal(t, []int{1, 2, 3, 4}, b.RecentDigits(4))
	assert.Equal(t, []int{3, 4}, b.RecentDigits(2))
}

func TestBufferBitsAndRatio(t *testing.T) {
	b := NewBuffer(10)
	ingestChronological(b, recordsFromDigits(9, 8, 1, 0))
	assert.Equal(t, []int{1, 1, 0, 0}, b.RecentBits(4))
	assert.InDelta(t, 0.5, b.BigRatio(4), 1e-9)
	assert.InDelta(t, 0.0, b.BigRatio(2), 1e-9) // two newest are small
}
