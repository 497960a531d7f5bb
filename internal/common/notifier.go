package common

import "sync"

// Broadcaster is the publishing half of a Notifier.
type Broadcaster interface {
	Broadcast()
}

// Notifier fans out change pings to subscribers. A ping carries no data:
// listeners re-read whichever snapshot they render.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]struct{}
}

func NewNotifier() *Notifier {
	return &Notifier{
		listeners: make(map[chan struct{}]struct{}),
	}
}

// Subscribe returns a channel that receives a ping after each state change.
// Callers must Unsubscribe when done.
func (n *Notifier) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a listener channel.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	if _, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(ch)
	}
	n.mu.Unlock()
}

// Broadcast pings every listener without blocking. A listener whose buffer
// is already full has a ping pending and skips this one.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
