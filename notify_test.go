package multimap

import "testing"

func TestWatchReceivesInsertEvent(t *testing.T) {
	db := OpenMem()
	var notifier *Notifier[string]

	err := db.Update(func(wtx *WriteTransaction) error {
		table := openWidgets(t, wtx)
		defer table.Close()

		notifier = table.Watch("a")
		if _, err := table.Insert("a", "1"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	ev := <-notifier.Recv()
	if ev.Err() != nil {
		t.Fatalf("unexpected error event: %v", ev.Err())
	}
	if ev.Kind != insertEvent || ev.Value != "1" {
		t.Fatalf("expected insert event for value 1, got %+v", ev)
	}
}

func TestWatchReceivesRemoveEvent(t *testing.T) {
	db := OpenMem()
	var notifier *Notifier[string]

	err := db.Update(func(wtx *WriteTransaction) error {
		table := openWidgets(t, wtx)
		defer table.Close()

		table.Insert("a", "1")
		notifier = table.Watch("a")
		_, err := table.Remove("a", "1")
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	ev := <-notifier.Recv()
	if ev.Kind != removeEvent || ev.Value != "1" {
		t.Fatalf("expected remove event for value 1, got %+v", ev)
	}
}

func TestNotifierCancelEndsStreamWithError(t *testing.T) {
	db := OpenMem()
	var notifier *Notifier[string]

	err := db.Update(func(wtx *WriteTransaction) error {
		table := openWidgets(t, wtx)
		defer table.Close()
		notifier = table.Watch("a")
		// Cancel while the table is still open: closing the table first
		// would end the stream with errTableClosed instead.
		notifier.Cancel()
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	ev, ok := <-notifier.Recv()
	if !ok {
		t.Fatal("expected one final event before channel close")
	}
	if ev.Err() != errNotifierClosed {
		t.Fatalf("expected errNotifierClosed, got %v", ev.Err())
	}
	if _, ok := <-notifier.Recv(); ok {
		t.Fatal("expected channel closed after final event")
	}
}

func TestCloseTableCancelsOutstandingNotifiers(t *testing.T) {
	db := OpenMem()
	var notifier *Notifier[string]

	err := db.Update(func(wtx *WriteTransaction) error {
		table, err := OpenMultimapTable(wtx, "widgets", String{}, String{})
		if err != nil {
			return err
		}
		notifier = table.Watch("a")
		table.Close()
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	ev := <-notifier.Recv()
	if ev.Err() != errTableClosed {
		t.Fatalf("expected errTableClosed, got %v", ev.Err())
	}
}
