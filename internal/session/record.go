// Package session persists bodywork session records to a flat CSV
// file, append-only.
package session

import "time"

// Record is one billing/notes entry for one horse on one date.
// Records are immutable once appended and identified by position
// alone; there is no primary key and no update or delete path.
type Record struct {
	Date   time.Time // civil date, time of day ignored
	Horse  string
	Amount float64 // non-negative
	Paid   bool
	Email  string // optional client address
	Notes  string
}

// DateString formats the civil date the way the store writes it.
func (r Record) DateString() string { return r.Date.Format("2006-01-02") }
