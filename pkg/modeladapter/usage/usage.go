// Package usage keeps running token totals for the model round-trips of a
// studio session.
package usage

import "sync"

// TokenCount is the token usage reported for one or more model calls.
type TokenCount struct {
	InputTokens  int
	OutputTokens int
}

// Total returns input plus output tokens.
func (tc TokenCount) Total() int {
	return tc.InputTokens + tc.OutputTokens
}

// Sub returns the usage accumulated since an earlier snapshot.
func (tc TokenCount) Sub(earlier TokenCount) TokenCount {
	return TokenCount{
		InputTokens:  tc.InputTokens - earlier.InputTokens,
		OutputTokens: tc.OutputTokens - earlier.OutputTokens,
	}
}

// Tracker sums usage as calls complete. The zero value is ready for use and
// it is safe for concurrent use. Only totals are kept so long chat sessions
// do not grow it.
type Tracker struct {
	mu    sync.Mutex
	total TokenCount
	last  TokenCount
	calls int
}

// Add records the usage of one call.
func (t *Tracker) Add(tc TokenCount) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total.InputTokens += tc.InputTokens
	t.total.OutputTokens += tc.OutputTokens
	t.last = tc
	t.calls++
}

// Last returns the usage of the most recent call. The bool is false before
// the first call.
func (t *Tracker) Last() (TokenCount, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.last, t.calls > 0
}

// Total returns the usage summed over all calls.
func (t *Tracker) Total() TokenCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.total
}

// Count returns the number of calls recorded.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.calls
}

// Reset forgets everything recorded so far.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total, t.last, t.calls = TokenCount{}, TokenCount{}, 0
}
