package store

import "sync"

// Waiter is a single blocking-command registration (BLPOP/BRPOP). Its
// signal channel is closed exactly once, the first time any key it
// watches is pushed to; the blocked goroutine then re-checks the
// relevant lists itself rather than trusting the notification to mean
// "my pop will succeed" — multiple waiters on the same key race on
// recheck, and losers go back to waiting.
type Waiter struct {
	id     uint64
	signal chan struct{}
	once   sync.Once
}

// Done returns the channel that closes when this waiter should wake
// up and recheck its keys.
func (w *Waiter) Done() <-chan struct{} { return w.signal }

func (w *Waiter) wake() { w.once.Do(func() { close(w.signal) }) }

// ReceiptRegistry tracks which connections are blocked waiting on
// which list keys, for BLPOP/BRPOP. Registration tokens are
// monotonically increasing and otherwise unused as anything but a
// uniqueness handle.
type ReceiptRegistry struct {
	mu      sync.Mutex
	nextID  uint64
	waiters map[Key]map[uint64]*Waiter
}

// NewReceiptRegistry returns an empty registry.
func NewReceiptRegistry() *ReceiptRegistry {
	return &ReceiptRegistry{waiters: make(map[Key]map[uint64]*Waiter)}
}

// Register creates a new Waiter watching all of keys.
func (r *ReceiptRegistry) Register(keys []Key) *Waiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	w := &Waiter{id: r.nextID, signal: make(chan struct{})}
	for _, k := range keys {
		set, ok := r.waiters[k]
		if !ok {
			set = make(map[uint64]*Waiter)
			r.waiters[k] = set
		}
		set[w.id] = w
	}
	return w
}

// Cancel removes w's registration from every key it was watching. It
// must be called once the blocked command returns, whether by
// success, timeout, or the owning connection closing.
func (r *ReceiptRegistry) Cancel(keys []Key, w *Waiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		set, ok := r.waiters[k]
		if !ok {
			continue
		}
		delete(set, w.id)
		if len(set) == 0 {
			delete(r.waiters, k)
		}
	}
}

// Notify wakes every waiter currently watching key, after a push made
// the key non-empty. Waiters are not removed here; each must Cancel
// itself once it stops waiting.
func (r *ReceiptRegistry) Notify(key Key) {
	r.mu.Lock()
	set := r.waiters[key]
	woken := make([]*Waiter, 0, len(set))
	for _, w := range set {
		woken = append(woken, w)
	}
	r.mu.Unlock()
	for _, w := range woken {
		w.wake()
	}
}
