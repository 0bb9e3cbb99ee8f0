package model

import "time"

// HistoryRecord is one row of the append-only audit trail. Records are
// written once per evaluated request, regardless of the verdict, and are
// never mutated or deleted afterward.
type HistoryRecord struct {
	Timestamp time.Time
	Task      string
	Category  string
	Decision  Decision
	ID        int64
	Amount    float64
}
