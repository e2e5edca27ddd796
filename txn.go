package multimap

import "github.com/azmodb/llrb"

// closer is satisfied by an open table handle. WriteTransaction tracks
// every table it opens through this interface so Database.Update can
// close them all on return without naming their concrete type.
type closer interface {
	Close()
}

// WriteTransaction is the transaction context a writable table holds a
// back-reference to purely to notify on Close. It tracks which table
// roots this transaction has produced so Database.Update can fold them
// into the next snapshot, and which tables are currently open so
// Database.Update can close every one of them once the caller's
// function returns, whether or not the caller closed them itself.
type WriteTransaction struct {
	db      *Database
	base    *snapshot
	rev     int64
	pending map[string]*llrb.Tree
	tables  []closer
}

// Rev returns the revision this transaction will commit as.
func (wtx *WriteTransaction) Rev() int64 { return wtx.rev }

// OpenMultimapTable opens the named table for read and write access
// within this transaction, creating it empty if it does not yet exist.
// Only one mutable handle for a given name may be open at a time across
// the whole database; a second attempt returns ErrTableAlreadyOpen. The
// returned table is tracked by wtx and closed automatically when the
// enclosing Database.Update returns; calling Close on it directly
// beforehand is also safe.
func OpenMultimapTable[K, V any](wtx *WriteTransaction, name string, kc Serializer[K], vc Serializer[V]) (*MultimapTable[K, V], error) {
	if err := wtx.db.acquireTable(name); err != nil {
		return nil, err
	}

	root := wtx.tableRoot(name)
	txn := root.Txn()
	table := newMultimapTable(name, txn, kc, vc, wtx)
	wtx.tables = append(wtx.tables, table)
	return table, nil
}

func (wtx *WriteTransaction) tableRoot(name string) *llrb.Tree {
	if root, ok := wtx.pending[name]; ok {
		return root
	}
	if root, ok := wtx.base.tables[name]; ok {
		return root
	}
	return &llrb.Tree{}
}

// closeTable is the MultimapTable.Close drop notification: it records
// the table's new root for this transaction and releases the
// registry's exclusivity lock on name.
func (wtx *WriteTransaction) closeTable(name string, txn *llrb.Txn) {
	wtx.pending[name] = txn.Commit()
	wtx.db.releaseTable(name)
}

// closeOpenTables closes every table this transaction opened, whether
// or not the caller already closed it itself (Close is idempotent), so
// Database.Update always records each table's final root and releases
// its registry lock on every exit path, including an early return after
// an error.
func (wtx *WriteTransaction) closeOpenTables() {
	for _, table := range wtx.tables {
		table.Close()
	}
}

// commitSnapshot merges this transaction's pending table roots over
// its base snapshot, producing the database's next snapshot.
func (wtx *WriteTransaction) commitSnapshot() *snapshot {
	tables := make(map[string]*llrb.Tree, len(wtx.base.tables)+len(wtx.pending))
	for name, root := range wtx.base.tables {
		tables[name] = root
	}
	for name, root := range wtx.pending {
		tables[name] = root
	}
	return &snapshot{tables: tables, rev: wtx.rev}
}

// ReadTransaction is a read-only view pinned to a single snapshot for
// its whole lifetime.
type ReadTransaction struct {
	snap *snapshot
}

// Rev returns the revision this transaction's snapshot was committed
// at.
func (rtx *ReadTransaction) Rev() int64 { return rtx.snap.rev }

// OpenReadOnlyMultimapTable opens the named table for read access
// against this transaction's pinned snapshot. A name with no table yet
// behaves as an empty table rather than an error, matching
// OpenMultimapTable's create-on-open behavior for writers.
func OpenReadOnlyMultimapTable[K, V any](rtx *ReadTransaction, name string, kc Serializer[K], vc Serializer[V]) *ReadOnlyMultimapTable[K, V] {
	root, ok := rtx.snap.tables[name]
	if !ok {
		root = &llrb.Tree{}
	}
	return newReadOnlyMultimapTable(root, kc, vc)
}
