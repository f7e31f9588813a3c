package router

import "sync"

// History is a linear navigation stack with a cursor, like a browser tab.
type History struct {
	mu      sync.Mutex
	entries []string
	index   int
}

// NewHistory starts a history at initial.
func NewHistory(initial string) *History {
	return &History{entries: []string{initial}}
}

// Push appends loc after the current entry, dropping any forward entries.
func (h *History) Push(loc string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.index+1], loc)
	h.index++
}

// Replace overwrites the current entry. The replaced location cannot be
// reached again with Back.
func (h *History) Replace(loc string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.index] = loc
}

// Back moves the cursor one entry back and reports whether it moved.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return false
	}
	h.index--
	return true
}

// CanGoBack reports whether Back would move.
func (h *History) CanGoBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.index > 0
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Entries returns a copy of the entries up to and including the current one.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, h.index+1)
	copy(out, h.entries[:h.index+1])
	return out
}
