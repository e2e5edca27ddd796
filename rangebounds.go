package multimap

// BoundKind classifies one endpoint of a user-supplied key range.
type BoundKind int

const (
	// Unbounded means the range is open on this side.
	Unbounded BoundKind = iota
	// Included means the endpoint key itself is part of the range.
	Included
	// Excluded means the endpoint key itself is not part of the range.
	Excluded
)

// Bound is one endpoint (start or end) of a range over keys, expressed
// in domain terms before encoding.
type Bound[K any] struct {
	Kind BoundKind
	Key  K
}

// UnboundedBound, IncludedBound and ExcludedBound build a Bound of the
// given kind; they read better than a struct literal at call sites.
func UnboundedBound[K any]() Bound[K]        { var z K; return Bound[K]{Kind: Unbounded, Key: z} }
func IncludedBound[K any](key K) Bound[K]    { return Bound[K]{Kind: Included, Key: key} }
func ExcludedBound[K any](key K) Bound[K]    { return Bound[K]{Kind: Excluded, Key: key} }

// inclusiveRange translates a user range over keys into a pair of
// inclusive sentinel bounds on encoded entries. A nil returned bound
// means unbounded on that side.
func inclusiveRange[K any](lo, hi Bound[K], keyToBytes func(K) []byte) (loBuf, hiBuf []byte) {
	switch lo.Kind {
	case Included:
		loBuf = encodeSentinel(keyToBytes(lo.Key), tagKeyMinus)
	case Excluded:
		loBuf = encodeSentinel(keyToBytes(lo.Key), tagKeyPlus)
	case Unbounded:
		loBuf = nil
	}

	switch hi.Kind {
	case Included:
		hiBuf = encodeSentinel(keyToBytes(hi.Key), tagKeyPlus)
	case Excluded:
		hiBuf = encodeSentinel(keyToBytes(hi.Key), tagKeyMinus)
	case Unbounded:
		hiBuf = nil
	}

	return loBuf, hiBuf
}
