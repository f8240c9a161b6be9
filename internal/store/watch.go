package store

// Subscribe registers a watcher that is signalled after every store
// mutation. Callers re-run their query on each signal, which turns any
// read operation into a live view. The channel has a buffer of one and
// signals coalesce, so a slow consumer sees at least one wake-up for any
// burst of changes. The returned func unsubscribes.
func (db *DB) Subscribe() (<-chan struct{}, func()) {
	db.mu.Lock()
	defer db.mu.Unlock()

	id := db.nextSub
	db.nextSub++
	ch := make(chan struct{}, 1)
	db.subs[id] = ch

	cancel := func() {
		db.mu.Lock()
		defer db.mu.Unlock()
		delete(db.subs, id)
	}
	return ch, cancel
}

// notify wakes all subscribers without blocking the mutating caller.
func (db *DB) notify() {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, ch := range db.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
