package multimap

import (
	"sync"

	"github.com/azmodb/llrb"
)

// comparator holds the per-table key/value ordering, shared by every
// entryElement a table produces. Bundling the funcs on the element
// (rather than threading them through llrb's Element.Compare, which
// only ever sees the other Element) is what lets one llrb.Tree stay
// completely ignorant of K and V: the comparator lives on our side of
// the boundary, never the engine's.
type comparator struct {
	keyCmp CompareFunc
	valCmp CompareFunc
}

// entryElement adapts an encoded entry to llrb.Element, the opaque
// B-tree primitive's comparable key type. Only entries with
// tag == tagPair are ever inserted into the tree;
// sentinel-tagged entryElements exist solely as transient query bounds
// and are never passed to Txn.Insert.
type entryElement struct {
	buf []byte
	cmp *comparator
}

var _ llrb.Element = (*entryElement)(nil)

// Compare implements llrb.Element. It is the sole integration point
// between the opaque ordered-map engine and the multimap comparator
// trick: the engine calls this to order two entries, never knowing
// that one of them might be a sentinel.
func (e *entryElement) Compare(other llrb.Element) int {
	o := other.(*entryElement)
	return compareEntries(e.buf, o.buf, e.cmp.keyCmp, e.cmp.valCmp)
}

var elementPool = sync.Pool{New: func() any { return &entryElement{} }}

// newPairElement builds a freshly allocated (not pooled) entryElement
// wrapping a real, to-be-persisted Pair. table.go's Insert hands it to
// Txn.Insert, and the tree retains it, so it is never passed to
// putElement.
func newPairElement(key, value []byte, cmp *comparator) *entryElement {
	return &entryElement{buf: encodePair(key, value), cmp: cmp}
}

// newSentinelElement builds a pooled entryElement wrapping a transient
// query bound. Sentinels are always released back to the pool by the
// caller once the query that needed them completes (get/range/
// remove_all never retain a sentinel past the call that built it).
func newSentinelElement(key []byte, t tag, cmp *comparator) *entryElement {
	e := elementPool.Get().(*entryElement)
	e.buf = encodeSentinel(key, t)
	e.cmp = cmp
	return e
}

func putElement(e *entryElement) {
	e.buf = nil
	e.cmp = nil
	elementPool.Put(e)
}

// asElement widens a possibly-nil entryElement to the llrb.Element
// interface. A nil *entryElement must become a nil interface value (an
// unbounded side of a range), not a non-nil interface wrapping a nil
// pointer, so this is not simply a type assertion at call sites.
func asElement(e *entryElement) llrb.Element {
	if e == nil {
		return nil
	}
	return e
}
