package engine

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Revision is the engine's logical clock. It advances once per committed
// mutation, so two reads with the same revision saw the same state.
//
// Only the writer loop calls Next; Current is safe from any goroutine.
type Revision struct {
	seq atomic.Int64
}

// NewRevision creates a revision counter starting at 0.
func NewRevision() *Revision {
	return &Revision{}
}

// Next increments the revision and returns the new value.
func (r *Revision) Next() int64 {
	return r.seq.Add(1)
}

// Current returns the revision without incrementing.
func (r *Revision) Current() int64 {
	return r.seq.Load()
}

// Clock supplies wall time for record ids, dates, and timestamps.
// Implemented by systemClock (production) and testutil.FixedClock (tests).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Display formats stamped onto records.
const (
	dateLayout      = "2006/1/2"
	timestampLayout = "15:04"
)

const flowerIDSuffix = "-ai"

// recordID returns ms as a record id, or one past newest when ms does not
// come after it, so ids stay unique and sortable. newest is the id of the
// latest existing record, possibly with the flower-language suffix.
func recordID(ms int64, newest string) string {
	last, err := strconv.ParseInt(strings.TrimSuffix(newest, flowerIDSuffix), 10, 64)
	if err == nil && last >= ms {
		ms = last + 1
	}
	return strconv.FormatInt(ms, 10)
}
