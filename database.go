// Package multimap implements the multimap table layer of an embedded,
// transactional key/value store: each key maps to a set of values, with
// point lookup, ranged lookup, insertion, single-pair removal, bulk
// removal-by-key and ordered iteration, all participating in the
// store's copy-on-write, MVCC-style transactions.
//
// The store itself — Database, WriteTransaction, ReadTransaction and
// the table registry — is immutable and consistent: every write
// transaction produces a brand new, atomically-swapped snapshot built
// on github.com/azmodb/llrb, an immutable left-leaning red-black tree.
// Being in-memory by default, it does not provide durability on its
// own; Snapshot/Load round-trip through the backend package for that.
package multimap

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/azmodb/llrb"
)

// snapshot is one immutable, consistent view of every table in the
// database: a table name to llrb.Tree root mapping, plus the database
// revision that produced it.
type snapshot struct {
	tables map[string]*llrb.Tree
	rev    int64
}

func emptySnapshot() *snapshot {
	return &snapshot{tables: make(map[string]*llrb.Tree)}
}

// Database is an immutable, consistent, in-memory multimap store. All
// access is through a write or read transaction obtained from it.
type Database struct {
	writer sync.Mutex // serializes write transactions
	snap   unsafe.Pointer

	openMu     sync.Mutex // protects openTables
	openTables map[string]bool
}

// OpenMem returns a fresh, empty, in-memory-only database.
func OpenMem() *Database {
	return newDatabase(emptySnapshot())
}

func newDatabase(s *snapshot) *Database {
	return &Database{
		snap:       unsafe.Pointer(s),
		openTables: make(map[string]bool),
	}
}

func (db *Database) load() *snapshot {
	return (*snapshot)(atomic.LoadPointer(&db.snap))
}

func (db *Database) store(s *snapshot) {
	atomic.StorePointer(&db.snap, unsafe.Pointer(s))
}

// Rev returns the current revision of the database.
func (db *Database) Rev() int64 { return db.load().rev }

// acquireTable marks name as mutably open, or returns
// ErrTableAlreadyOpen if it already is.
func (db *Database) acquireTable(name string) error {
	db.openMu.Lock()
	defer db.openMu.Unlock()
	if db.openTables[name] {
		return ErrTableAlreadyOpen
	}
	db.openTables[name] = true
	return nil
}

func (db *Database) releaseTable(name string) {
	db.openMu.Lock()
	delete(db.openTables, name)
	db.openMu.Unlock()
}

// Update runs fn inside one write transaction. If fn returns a non-nil
// error, every change it made is discarded; otherwise the
// transaction's effects are committed atomically and become the
// database's new current snapshot.
func (db *Database) Update(fn func(*WriteTransaction) error) error {
	db.writer.Lock()
	defer db.writer.Unlock()

	base := db.load()
	wtx := &WriteTransaction{
		db:      db,
		base:    base,
		pending: make(map[string]*llrb.Tree),
		rev:     base.rev + 1,
	}

	err := fn(wtx)
	wtx.closeOpenTables()
	if err != nil {
		return err
	}

	db.store(wtx.commitSnapshot())
	return nil
}

// View runs fn against a read-only snapshot of the database, pinned at
// fn's start for fn's entire duration.
func (db *Database) View(fn func(*ReadTransaction) error) error {
	rtx := &ReadTransaction{snap: db.load()}
	return fn(rtx)
}
