package websocket

import "sync"

// outbox is the per-connection FIFO of outbound payloads. Pushes never
// block and never fail; pop blocks until an item or the stop sentinel
// arrives. Closing drops everything still queued — once the connection
// is gone its messages are discarded, not buffered forever.
type outbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  [][]byte
	closed bool
}

func newOutbox() *outbox {
	o := &outbox{}
	o.cond = sync.NewCond(&o.mu)
	return o
}

func (o *outbox) push(payload []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.items = append(o.items, payload)
	o.cond.Signal()
}

// close is the stop sentinel: it wakes a blocked pop and makes every
// subsequent pop return false, pending items included.
func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.items = nil
	o.mu.Unlock()
	o.cond.Broadcast()
}

func (o *outbox) pop() ([]byte, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for !o.closed && len(o.items) == 0 {
		o.cond.Wait()
	}
	if o.closed {
		return nil, false
	}
	payload := o.items[0]
	o.items = o.items[1:]
	return payload, true
}
