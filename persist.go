package multimap

import (
	"errors"

	"github.com/azmodb/multimap/backend"
)

// Snapshot writes every entry currently in the table to store under
// the table's own name, tagged with rev. A later Load against the same
// store and name restores exactly this set of pairs.
func (t *MultimapTable[K, V]) Snapshot(store *backend.Store, rev int64) error {
	entries, err := collectReader(t.txn, nil, nil)
	if err != nil {
		return err
	}
	return store.SaveTable(t.name, rev, entries)
}

// Load replaces the table's contents with whatever was last persisted
// for its name in store. It is meant to be called once, immediately
// after OpenMultimapTable, before any Insert/Remove on the same table.
func (t *MultimapTable[K, V]) Load(store *backend.Store) error {
	entries, _, err := store.LoadTable(t.name)
	if err != nil {
		var corruptErr *backend.CorruptedError
		if errors.As(err, &corruptErr) {
			return corrupted(corruptErr.Reason)
		}
		return err
	}
	existing, err := collectReader(t.txn, nil, nil)
	if err != nil {
		return err
	}
	for _, buf := range existing {
		if _, _, err := t.txn.Delete(&entryElement{buf: buf, cmp: t.cmp}); err != nil {
			return ErrOutOfSpace
		}
	}
	for _, buf := range entries {
		if err := validateEntry(buf); err != nil {
			return err
		}
		elem := &entryElement{buf: buf, cmp: t.cmp}
		if _, _, err := t.txn.Insert(elem); err != nil {
			return ErrOutOfSpace
		}
	}
	return nil
}

// Snapshot writes every entry in this read-only view to store under
// name, tagged with rev.
func (t *ReadOnlyMultimapTable[K, V]) Snapshot(store *backend.Store, name string, rev int64) error {
	entries, err := collectReader(t.tree, nil, nil)
	if err != nil {
		return err
	}
	return store.SaveTable(name, rev, entries)
}
