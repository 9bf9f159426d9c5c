// Package quota guards the daily budget of paid place lookups.
package quota

import (
	"log"
	"sync"
	"time"
)

// DailyQuota is a process-local counter that resets when the calendar date
// changes in the configured timezone. Instances running side by side each keep
// their own counter.
type DailyQuota struct {
	mu       sync.Mutex
	limit    int
	location *time.Location
	now      func() time.Time

	day  string
	used int
}

// Option configures a DailyQuota
type Option func(*DailyQuota)

// WithClock overrides the wall clock, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(q *DailyQuota) {
		q.now = now
	}
}

// NewDailyQuota creates a quota allowing limit acquisitions per day in loc
func NewDailyQuota(limit int, loc *time.Location, opts ...Option) *DailyQuota {
	if loc == nil {
		loc = time.Local
	}
	q := &DailyQuota{
		limit:    limit,
		location: loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.day = q.today()
	return q
}

func (q *DailyQuota) today() string {
	return q.now().In(q.location).Format("2006-01-02")
}

// roll resets the counter on date change; caller holds q.mu
func (q *DailyQuota) roll() {
	day := q.today()
	if day != q.day {
		if q.used > 0 {
			log.Printf("[Quota] New day %s, resetting counter (used %d/%d on %s)", day, q.used, q.limit, q.day)
		}
		q.day = day
		q.used = 0
	}
}

// TryAcquire consumes one unit of today's budget, returning false when the
// budget is exhausted
func (q *DailyQuota) TryAcquire() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.roll()
	if q.used >= q.limit {
		return false
	}
	q.used++
	return true
}

// Used returns the number of units consumed today
func (q *DailyQuota) Used() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.roll()
	return q.used
}

// Remaining returns the number of units left today
func (q *DailyQuota) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.roll()
	if q.used >= q.limit {
		return 0
	}
	return q.limit - q.used
}

// Limit returns the daily ceiling
func (q *DailyQuota) Limit() int {
	return q.limit
}
