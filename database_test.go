package multimap

import "testing"

func TestOpenMemStartsAtRevisionZero(t *testing.T) {
	db := OpenMem()
	if db.Rev() != 0 {
		t.Fatalf("expected fresh database at rev 0, got %d", db.Rev())
	}
}

func TestUpdateAdvancesRevision(t *testing.T) {
	db := OpenMem()
	err := db.Update(func(wtx *WriteTransaction) error {
		if wtx.Rev() != 1 {
			t.Fatalf("expected first write transaction at rev 1, got %d", wtx.Rev())
		}
		table := openWidgets(t, wtx)
		table.Close()
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if db.Rev() != 1 {
		t.Fatalf("expected db rev 1 after commit, got %d", db.Rev())
	}
}

func TestFailedUpdateDoesNotAdvanceRevision(t *testing.T) {
	db := OpenMem()
	boom := perror("boom")
	err := db.Update(func(wtx *WriteTransaction) error {
		return boom
	})
	if err != boom {
		t.Fatalf("expected boom, got %v", err)
	}
	if db.Rev() != 0 {
		t.Fatalf("expected rev to stay 0 after aborted update, got %d", db.Rev())
	}
}

func TestReadOnlyTableOnUnwrittenNameIsEmpty(t *testing.T) {
	db := OpenMem()
	err := db.View(func(rtx *ReadTransaction) error {
		table := OpenReadOnlyMultimapTable(rtx, "nonexistent", String{}, String{})
		if !table.IsEmpty() {
			t.Fatal("expected empty table for a name never written")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestOpenMultimapTableCreatesTableOnFirstUse(t *testing.T) {
	db := OpenMem()
	err := db.Update(func(wtx *WriteTransaction) error {
		table, err := OpenMultimapTable(wtx, "fresh", String{}, String{})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer table.Close()
		if !table.IsEmpty() {
			t.Fatal("expected freshly created table to be empty")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
}

func TestTableReleasedAfterUpdateAllowsReopen(t *testing.T) {
	db := OpenMem()
	for i := 0; i < 2; i++ {
		err := db.Update(func(wtx *WriteTransaction) error {
			table := openWidgets(t, wtx)
			defer table.Close()
			_, err := table.Insert("a", "1")
			return err
		})
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
}
