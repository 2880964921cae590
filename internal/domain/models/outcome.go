package models

import "time"

// Label is the binary classification of a draw digit.
type Label string

const (
	LabelBig   Label = "BIG"
	LabelSmall Label = "SMALL"
)

// Opposite returns the other label.
func (l Label) Opposite() Label {
	if l == LabelBig {
		return LabelSmall
	}
	return LabelBig
}

// LabelFromDigit maps a digit to its label: digit >= 5 is BIG.
func LabelFromDigit(digit int) Label {
	if digit >= 5 {
		return LabelBig
	}
	return LabelSmall
}

// BitFromDigit maps a digit to its binary form using the same threshold.
func BitFromDigit(digit int) int {
	if digit >= 5 {
		return 1
	}
	return 0
}

// DrawResult is a raw row from the draw feed before validation.
type DrawResult struct {
	PeriodID   string    `json:"period_id"`
	Number     int       `json:"number"`
	ObservedAt time.Time `json:"observed_at"`
}

// Valid reports whether the row can become an OutcomeRecord.
func (d DrawResult) Valid() bool {
	return d.PeriodID != "" && d.Number >= 0 && d.Number <= 9
}

// OutcomeRecord is one resolved draw outcome. Immutable once created;
// uniqueness key is PeriodID.
type OutcomeRecord struct {
	PeriodID   string    `json:"period_id"`
	Digit      int       `json:"digit"`
	Label      Label     `json:"label"`
	Bit        int       `json:"bit"`
	ObservedAt time.Time `json:"observed_at"`
}

// Valid reports whether the record carries a period and an in-range digit.
// Records from external sources (Kafka, storage read-back) must pass this
// before reaching the forecasting core.
func (r OutcomeRecord) Valid() bool {
	return r.PeriodID != "" && r.Digit >= 0 && r.Digit <= 9
}

// NewOutcomeRecord builds a record from a validated draw result.
func NewOutcomeRecord(d DrawResult) OutcomeRecord {
	at := d.ObservedAt
	if at.IsZero() {
		at = time.Now()
	}
	return OutcomeRecord{
		PeriodID:   d.PeriodID,
		Digit:      d.Number,
		Label:      LabelFromDigit(d.Number),
		Bit:        BitFromDigit(d.Number),
		ObservedAt: at,
	}
}
