package fetchers

import (
	"strconv"
	"sync"
	"sync/atomic"
)

const callbackPrefix = "jsonp_callback_"

// callbackSeq is shared by every client so names never repeat within a
// process, even when several clients are alive at once.
var callbackSeq atomic.Uint64

// NextCallbackName returns a process-unique callback name
func NextCallbackName() string {
	return callbackPrefix + strconv.FormatUint(callbackSeq.Add(1)-1, 10)
}

// outcome is what a resolver delivers to the waiting caller.
type outcome struct {
	body []byte
	err  error
}

// pendingTable maps in-flight request IDs to their resolvers.
type pendingTable struct {
	mu      sync.Mutex
	waiters map[string]chan outcome
}

func newPendingTable() *pendingTable {
	return &pendingTable{waiters: make(map[string]chan outcome)}
}

// register adds id and returns the channel its outcome will arrive on.
func (t *pendingTable) register(id string) <-chan outcome {
	ch := make(chan outcome, 1)

	t.mu.Lock()
	t.waiters[id] = ch
	t.mu.Unlock()

	return ch
}

// resolve delivers o to id and removes it. It reports false when id is
// not (or no longer) pending.
func (t *pendingTable) resolve(id string, o outcome) bool {
	t.mu.Lock()
	ch, ok := t.waiters[id]
	delete(t.waiters, id)
	t.mu.Unlock()

	if !ok {
		return false
	}
	ch <- o
	return true
}

// remove drops id whether or not it was resolved.
func (t *pendingTable) remove(id string) {
	t.mu.Lock()
	delete(t.waiters, id)
	t.mu.Unlock()
}

func (t *pendingTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiters)
}
