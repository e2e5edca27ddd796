package multimap

import "sync"

// eventKind distinguishes the two mutations a watcher can observe.
type eventKind int

const (
	insertEvent eventKind = iota
	removeEvent
)

// Event is delivered to a Notifier when a value is inserted into or
// removed from the watched key's set.
type Event[V any] struct {
	Value V
	Kind  eventKind
	err   error
}

// Err reports the error, if any, that ended this notifier's stream.
func (e Event[V]) Err() error { return e.err }

var (
	errTableClosed    = perror("multimap: watched table closed")
	errNotifierClosed = perror("multimap: notifier canceled")
)

// queue decouples producers (Insert/Remove/Close) from a slow
// consumer with an unbounded pending buffer.
func queue[V any](in <-chan Event[V], out chan<- Event[V]) {
	var pending []Event[V]
	defer func() {
		for _, v := range pending {
			out <- v
		}
		close(out)
	}()

	for {
		if len(pending) == 0 {
			v, ok := <-in
			if !ok {
				return
			}
			pending = append(pending, v)
		}

		select {
		case v, ok := <-in:
			if !ok {
				return
			}
			pending = append(pending, v)
		case out <- pending[0]:
			pending = pending[1:]
		}
	}
}

const notifierCapacity = 64

// Notifier is a cancelable, buffered stream of Events for one Watch
// call.
type Notifier[V any] struct {
	cancel func(*Notifier[V])
	out    chan Event[V]
	in     chan Event[V]
	mu     sync.Mutex
	id     int64
	live   bool
}

func newNotifier[V any](id int64, cancel func(*Notifier[V])) *Notifier[V] {
	n := &Notifier[V]{
		out:    make(chan Event[V], notifierCapacity),
		in:     make(chan Event[V], notifierCapacity),
		id:     id,
		cancel: cancel,
		live:   true,
	}
	go queue(n.in, n.out)
	return n
}

// Recv returns the channel Events are delivered on.
func (n *Notifier[V]) Recv() <-chan Event[V] { return n.out }

// Cancel stops the notifier; Recv's channel closes once any buffered
// events have drained.
func (n *Notifier[V]) Cancel() {
	n.mu.Lock()
	if !n.live {
		n.mu.Unlock()
		return
	}
	n.cancel(n)
	n.shutdown(errNotifierClosed)
}

func (n *Notifier[V]) send(value V, kind eventKind) {
	n.mu.Lock()
	if n.live {
		n.in <- Event[V]{Value: value, Kind: kind}
	}
	n.mu.Unlock()
}

func (n *Notifier[V]) close(err error) {
	n.mu.Lock()
	if n.live {
		n.shutdown(err)
		return
	}
	n.mu.Unlock()
}

// shutdown must be called with n.mu held; it releases the lock.
func (n *Notifier[V]) shutdown(err error) {
	n.in <- Event[V]{err: err}
	close(n.in)
	n.live = false
	n.mu.Unlock()
}

// stream is a table-wide registry of per-key watchers, keyed by the
// key's serialized bytes.
type stream[V any] struct {
	mu    sync.Mutex
	byKey map[string]map[int64]*Notifier[V]
	num   int64
}

func newStream[V any]() *stream[V] {
	return &stream[V]{byKey: make(map[string]map[int64]*Notifier[V])}
}

func (s *stream[V]) register(keyBytes []byte) *Notifier[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := string(keyBytes)
	s.num++
	id := s.num
	n := newNotifier(id, func(n *Notifier[V]) {
		s.mu.Lock()
		if m := s.byKey[k]; m != nil {
			delete(m, n.id)
			if len(m) == 0 {
				delete(s.byKey, k)
			}
		}
		s.mu.Unlock()
	})

	if s.byKey[k] == nil {
		s.byKey[k] = make(map[int64]*Notifier[V])
	}
	s.byKey[k][id] = n
	return n
}

func (s *stream[V]) notify(keyBytes []byte, value V, kind eventKind) {
	s.mu.Lock()
	notifiers := s.byKey[string(keyBytes)]
	s.mu.Unlock()

	for _, n := range notifiers {
		n.send(value, kind)
	}
}

// cancelAll closes every live notifier, as if every watched key had
// been deleted out from under it (called when the owning table
// closes).
func (s *stream[V]) cancelAll() {
	s.mu.Lock()
	all := s.byKey
	s.byKey = make(map[string]map[int64]*Notifier[V])
	s.mu.Unlock()

	for _, m := range all {
		for _, n := range m {
			n.close(errTableClosed)
		}
	}
}
