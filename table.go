package multimap

import "github.com/azmodb/llrb"

// txReader is satisfied by both *llrb.Tree (a committed, immutable
// root) and *llrb.Txn (a transaction's in-progress working tree) so
// that get/range/len can share one implementation across the writable
// and read-only tables, which expose an identical query surface.
type txReader interface {
	Get(llrb.Element) llrb.Element
	Range(lo, hi llrb.Element, fn llrb.Visitor) bool
	Len() int
}

var (
	_ txReader = (*llrb.Tree)(nil)
	_ txReader = (*llrb.Txn)(nil)
)

func getValues[V any](r txReader, key []byte, cmp *comparator, vc Serializer[V]) *ValueIterator[V] {
	lo := newSentinelElement(key, tagKeyMinus, cmp)
	hi := newSentinelElement(key, tagKeyPlus, cmp)
	defer putElement(lo)
	defer putElement(hi)

	bufs, err := collectReader(r, lo, hi)
	return newValueIterator(bufs, err, vc)
}

func rangePairs[K, V any](r txReader, lo, hi Bound[K], cmp *comparator, kc Serializer[K], vc Serializer[V]) *PairIterator[K, V] {
	loBuf, hiBuf := inclusiveRange(lo, hi, kc.ToBytes)
	var loElem, hiElem *entryElement
	if loBuf != nil {
		loElem = elementPool.Get().(*entryElement)
		loElem.buf, loElem.cmp = loBuf, cmp
		defer putElement(loElem)
	}
	if hiBuf != nil {
		hiElem = elementPool.Get().(*entryElement)
		hiElem.buf, hiElem.cmp = hiBuf, cmp
		defer putElement(hiElem)
	}

	bufs, err := collectReader(r, loElem, hiElem)
	return newPairIterator(bufs, err, kc, vc)
}

// collectReader runs an inclusive [lo, hi] range scan (nil on either
// side means unbounded on that side), decoding and validating every
// entry and stopping at the first corrupted one it finds. It is
// generalized over txReader instead of a concrete *llrb.Tree, since a
// live write transaction must observe its own uncommitted mutations.
func collectReader(r txReader, lo, hi *entryElement) ([][]byte, error) {
	var bufs [][]byte
	var rangeErr error

	r.Range(asElement(lo), asElement(hi), func(elem llrb.Element) bool {
		buf := elem.(*entryElement).buf
		if err := validateEntry(buf); err != nil {
			rangeErr = err
			return true
		}
		bufs = append(bufs, buf)
		return false
	})
	return bufs, rangeErr
}

// MultimapTable is the writable multimap table: insert, remove,
// remove-all, get, range and len, tied to a live write transaction.
// Opened through OpenMultimapTable(wtx, ...).
type MultimapTable[K, V any] struct {
	name string
	kc   Serializer[K]
	vc   Serializer[V]
	cmp  *comparator
	txn  *llrb.Txn
	wtx  *WriteTransaction
	notifiers *stream[V]
	closed bool
}

func newMultimapTable[K, V any](name string, txn *llrb.Txn, kc Serializer[K], vc Serializer[V], wtx *WriteTransaction) *MultimapTable[K, V] {
	return &MultimapTable[K, V]{
		name: name,
		kc:   kc,
		vc:   vc,
		cmp:  &comparator{keyCmp: kc.Compare, valCmp: vc.Compare},
		txn:  txn,
		wtx:  wtx,
	}
}

// Insert adds value to key's set. It returns whether an identical
// (key, value) pair was already present; a repeat insert is idempotent
// at the storage level.
func (t *MultimapTable[K, V]) Insert(key K, value V) (wasPresent bool, err error) {
	elem := newPairElement(t.kc.ToBytes(key), t.vc.ToBytes(value), t.cmp)
	_, existed, err := t.txn.Insert(elem)
	if err != nil {
		return false, ErrOutOfSpace
	}
	if t.notifiers != nil {
		t.notifiers.notify(t.kc.ToBytes(key), value, insertEvent)
	}
	return existed, nil
}

// Remove deletes the (key, value) pair. It is idempotent if the pair
// was already absent, and returns whether it had been present.
func (t *MultimapTable[K, V]) Remove(key K, value V) (wasPresent bool, err error) {
	query := newSentinelElementPair(t.kc.ToBytes(key), t.vc.ToBytes(value), t.cmp)
	defer putElement(query)

	_, existed, err := t.txn.Delete(query)
	if err != nil {
		return false, ErrOutOfSpace
	}
	if existed && t.notifiers != nil {
		t.notifiers.notify(t.kc.ToBytes(key), value, removeEvent)
	}
	return existed, nil
}

// RemoveAll removes every value mapped to key, returning an iterator
// over exactly the values that were present immediately before the
// call.
//
// The underlying engine, github.com/azmodb/llrb, is itself a
// persistent, copy-on-write structure: nodes reachable from an older
// root are never mutated by a later transaction. Capturing the current
// working root before the removal loop therefore already gives us a
// snapshot immune to the deletes that follow — no distinct
// non-freeing removal primitive is needed.
func (t *MultimapTable[K, V]) RemoveAll(key K) (*ValueIterator[V], error) {
	keyBytes := t.kc.ToBytes(key)
	snapshot := t.txn.Peek()

	keyOnly := newSentinelElement(keyBytes, tagKeyOnly, t.cmp)
	defer putElement(keyOnly)

	for {
		_, existed, err := t.txn.Delete(keyOnly)
		if err != nil {
			return nil, ErrOutOfSpace
		}
		if !existed {
			break
		}
	}

	return getValues(snapshot, keyBytes, t.cmp, t.vc), nil
}

// Get returns an iterator over the values mapped to key, in ascending
// V order.
func (t *MultimapTable[K, V]) Get(key K) *ValueIterator[V] {
	return getValues(t.txn, t.kc.ToBytes(key), t.cmp, t.vc)
}

// Range returns an iterator over (key, value) pairs whose key falls
// within [lo, hi].
func (t *MultimapTable[K, V]) Range(lo, hi Bound[K]) *PairIterator[K, V] {
	return rangePairs(t.txn, lo, hi, t.cmp, t.kc, t.vc)
}

// Len returns the total number of (key, value) pairs in the table.
func (t *MultimapTable[K, V]) Len() int { return t.txn.Len() }

// IsEmpty reports whether the table holds no pairs.
func (t *MultimapTable[K, V]) IsEmpty() bool { return t.Len() == 0 }

// Watch returns a Notifier that receives an Event[V] each time a value
// is inserted into or removed from key's set.
func (t *MultimapTable[K, V]) Watch(key K) *Notifier[V] {
	if t.notifiers == nil {
		t.notifiers = newStream[V]()
	}
	return t.notifiers.register(t.kc.ToBytes(key))
}

// Close notifies the owning transaction to record this table's current
// root under its name, so that the transaction's commit persists it.
// Database.Update calls Close on every table it opened once the
// caller's function returns, so an explicit call is optional; Close is
// idempotent, so calling it early for clarity is also safe.
func (t *MultimapTable[K, V]) Close() {
	if t.closed {
		return
	}
	t.closed = true
	if t.notifiers != nil {
		t.notifiers.cancelAll()
	}
	t.wtx.closeTable(t.name, t.txn)
}

// ReadOnlyMultimapTable is the read-only multimap table: the same
// query surface as MultimapTable, bound to an immutable root pinned by
// a read transaction.
type ReadOnlyMultimapTable[K, V any] struct {
	kc   Serializer[K]
	vc   Serializer[V]
	cmp  *comparator
	tree *llrb.Tree
}

func newReadOnlyMultimapTable[K, V any](tree *llrb.Tree, kc Serializer[K], vc Serializer[V]) *ReadOnlyMultimapTable[K, V] {
	return &ReadOnlyMultimapTable[K, V]{
		kc:   kc,
		vc:   vc,
		cmp:  &comparator{keyCmp: kc.Compare, valCmp: vc.Compare},
		tree: tree,
	}
}

// Get returns an iterator over the values mapped to key.
func (t *ReadOnlyMultimapTable[K, V]) Get(key K) *ValueIterator[V] {
	return getValues(t.tree, t.kc.ToBytes(key), t.cmp, t.vc)
}

// Range returns an iterator over (key, value) pairs within [lo, hi].
func (t *ReadOnlyMultimapTable[K, V]) Range(lo, hi Bound[K]) *PairIterator[K, V] {
	return rangePairs(t.tree, lo, hi, t.cmp, t.kc, t.vc)
}

// Len returns the total number of (key, value) pairs in the table.
func (t *ReadOnlyMultimapTable[K, V]) Len() int { return t.tree.Len() }

// IsEmpty reports whether the table holds no pairs.
func (t *ReadOnlyMultimapTable[K, V]) IsEmpty() bool { return t.Len() == 0 }

// newSentinelElementPair is newSentinelElement's Pair-tagged twin: it
// builds a pooled entryElement that encodes a real (key, value) pair
// rather than a sentinel, for use as a point query (Remove) rather
// than a range bound.
func newSentinelElementPair(key, value []byte, cmp *comparator) *entryElement {
	e := elementPool.Get().(*entryElement)
	e.buf = encodePair(key, value)
	e.cmp = cmp
	return e
}
