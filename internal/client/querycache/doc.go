// Package querycache is a process-wide, keyed cache of asynchronously fetched
// values with request collapsing, staleness and ordered change notification.
//
// An entry moves through the states
//
//	Idle -> Pending -> Resolved | Rejected -> Stale -> Pending -> ...
//
// and every transition is delivered to the key's subscribers in the order it
// happened. Listeners may call back into the cache; such calls are queued
// behind the notification currently being delivered.
//
// Concurrent readers of the same key share one fetch. Invalidate never
// blocks and makes the result of any fetch started before it irrelevant:
// that result is discarded when it arrives.
package querycache
