package querycache

import "time"

// Status is the lifecycle state of a cache entry.
type Status int

const (
	Idle Status = iota
	Pending
	Resolved
	Rejected
	Stale
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Rejected:
		return "rejected"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Entry is a snapshot of one cached key. Value is meaningful only when
// Status is Resolved, Err only when Status is Rejected. Refreshing marks a
// Resolved entry whose replacement is being fetched in the background.
type Entry[V any] struct {
	Key        string
	Status     Status
	Value      V
	Err        error
	FetchedAt  time.Time
	Refreshing bool
}

// Settled reports whether no fetch is outstanding for the entry.
func (e Entry[V]) Settled() bool {
	return (e.Status == Resolved || e.Status == Rejected) && !e.Refreshing
}
