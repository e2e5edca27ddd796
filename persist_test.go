package multimap

import (
	"fmt"
	"os"
	"testing"

	"github.com/azmodb/multimap/backend"
)

func tempBackendStore(t *testing.T) (*backend.Store, func()) {
	t.Helper()
	path := fmt.Sprintf("test_persist_%d.db", os.Getpid())
	store, err := backend.Open(path, 0)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	return store, func() {
		store.Close()
		os.RemoveAll(path)
	}
}

func TestSnapshotThenLoadRestoresTable(t *testing.T) {
	store, cleanup := tempBackendStore(t)
	defer cleanup()

	db := OpenMem()
	err := db.Update(func(wtx *WriteTransaction) error {
		table := openWidgets(t, wtx)
		defer table.Close()

		table.Insert("a", "1")
		table.Insert("a", "2")
		table.Insert("b", "3")

		return table.Snapshot(store, wtx.Rev())
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	db2 := OpenMem()
	err = db2.Update(func(wtx *WriteTransaction) error {
		table := openWidgets(t, wtx)
		defer table.Close()

		if err := table.Load(store); err != nil {
			return err
		}
		if table.Len() != 3 {
			t.Fatalf("expected 3 pairs after load, got %d", table.Len())
		}

		var got []string
		it := table.Get("a")
		for v, ok := it.Next(); ok; v, ok = it.Next() {
			got = append(got, v)
		}
		if len(got) != 2 || got[0] != "1" || got[1] != "2" {
			t.Fatalf("expected [1 2] for key a, got %v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
}
