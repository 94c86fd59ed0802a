package lint

import "sync"

// Result aggregates the items of one analysis scope. Items are create-once,
// append-only; nothing is ever mutated or removed.
//
// A Result is safe for concurrent Add/Merge. Rule modules typically build a
// per-task local Result and merge after join; the synchronized append exists
// for callers that prefer a shared collection.
type Result struct {
	mu    sync.Mutex
	items []Item
}

// Add appends items to the result.
func (r *Result) Add(items ...Item) {
	if len(items) == 0 {
		return
	}
	r.mu.Lock()
	r.items = append(r.items, items...)
	r.mu.Unlock()
}

// Merge appends every item of other into this result.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Add(other.Items()...)
}

// Items returns a copy of the collected items. Order is not significant.
func (r *Result) Items() []Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// Count returns the number of items with the given severity.
func (r *Result) Count(severity Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, it := range r.items {
		if it.Severity == severity {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error-severity item was collected.
func (r *Result) HasErrors() bool {
	return r.Count(SeverityError) > 0
}
