package multimap

// Iterators materialize their underlying range eagerly, in one forward
// pass over the tree or write transaction they were built from, when
// the query is made (later writes are not seen), rather than
// holding a live cursor into the tree. This layer is single-threaded
// and synchronous, and never suspends on I/O of its own; the
// underlying tree only exposes a push-style Range(lo, hi, visitor)
// walk, so turning it into a lazy pull iterator would mean a generator
// goroutine purely to simulate laziness that buys nothing for a
// bounded, already-pinned in-memory scan. Reverse() is then just
// walking the materialized slice from the other end, with no second
// tree traversal. table.go's collectReader performs the actual range
// scan, generalized over both *llrb.Tree and *llrb.Txn readers, and
// hands its result to newValueIterator/newPairIterator below.

// ValueIterator yields the values associated with a single key, in
// ascending order.
type ValueIterator[V any] struct {
	bufs []([]byte)
	pos  int
	rev  bool
	dec  Serializer[V]
	err  error
}

func newValueIterator[V any](bufs [][]byte, err error, dec Serializer[V]) *ValueIterator[V] {
	return &ValueIterator[V]{bufs: bufs, dec: dec, err: err}
}

// Next returns the next value and true, or the zero value and false
// once the iterator is exhausted. Once it has returned false, every
// subsequent call keeps returning false.
func (it *ValueIterator[V]) Next() (V, bool) {
	var zero V
	if it.rev {
		if it.pos < 0 {
			return zero, false
		}
		buf := it.bufs[it.pos]
		it.pos--
		return it.dec.FromBytes(entryValue(buf)), true
	}
	if it.pos >= len(it.bufs) {
		return zero, false
	}
	buf := it.bufs[it.pos]
	it.pos++
	return it.dec.FromBytes(entryValue(buf)), true
}

// Reverse returns a new iterator walking the same values back to
// front; it does not consume or invalidate the receiver.
func (it *ValueIterator[V]) Reverse() *ValueIterator[V] {
	return &ValueIterator[V]{bufs: it.bufs, dec: it.dec, err: it.err, pos: len(it.bufs) - 1, rev: true}
}

// Err returns the error, if any, that caused iteration to end early,
// distinct from ordinary end-of-stream.
func (it *ValueIterator[V]) Err() error { return it.err }

// PairIterator yields (key, value) pairs across a range of keys, in
// ascending (K, V) lexicographic order.
type PairIterator[K, V any] struct {
	bufs  [][]byte
	pos   int
	rev   bool
	kdec  Serializer[K]
	vdec  Serializer[V]
	err   error
}

func newPairIterator[K, V any](bufs [][]byte, err error, kdec Serializer[K], vdec Serializer[V]) *PairIterator[K, V] {
	return &PairIterator[K, V]{bufs: bufs, kdec: kdec, vdec: vdec, err: err}
}

// Next returns the next (key, value) pair and true, or zero values and
// false once exhausted.
func (it *PairIterator[K, V]) Next() (K, V, bool) {
	var zk K
	var zv V
	if it.rev {
		if it.pos < 0 {
			return zk, zv, false
		}
		buf := it.bufs[it.pos]
		it.pos--
		return it.kdec.FromBytes(entryKey(buf)), it.vdec.FromBytes(entryValue(buf)), true
	}
	if it.pos >= len(it.bufs) {
		return zk, zv, false
	}
	buf := it.bufs[it.pos]
	it.pos++
	return it.kdec.FromBytes(entryKey(buf)), it.vdec.FromBytes(entryValue(buf)), true
}

// Reverse returns a new iterator walking the same pairs back to front.
func (it *PairIterator[K, V]) Reverse() *PairIterator[K, V] {
	return &PairIterator[K, V]{bufs: it.bufs, kdec: it.kdec, vdec: it.vdec, err: it.err, pos: len(it.bufs) - 1, rev: true}
}

// Err returns the error, if any, that caused iteration to end early.
func (it *PairIterator[K, V]) Err() error { return it.err }
