package multimap

import (
	"bytes"
	"testing"
)

func TestEncodePairRoundTrip(t *testing.T) {
	buf := encodePair([]byte("key"), []byte("value"))

	if got := entryTag(buf); got != tagPair {
		t.Fatalf("tag: expected %d, got %d", tagPair, got)
	}
	if got := entryKey(buf); !bytes.Equal(got, []byte("key")) {
		t.Fatalf("key: expected %q, got %q", "key", got)
	}
	if got := entryValue(buf); !bytes.Equal(got, []byte("value")) {
		t.Fatalf("value: expected %q, got %q", "value", got)
	}
}

func TestEncodePairEmptyValue(t *testing.T) {
	buf := encodePair([]byte("key"), nil)
	if got := entryValue(buf); len(got) != 0 {
		t.Fatalf("value: expected empty, got %q", got)
	}
}

func TestEncodeSentinelHasNoValue(t *testing.T) {
	for _, tg := range []tag{tagKeyMinus, tagKeyPlus, tagKeyOnly} {
		buf := encodeSentinel([]byte("key"), tg)
		if got := entryTag(buf); got != tg {
			t.Fatalf("tag: expected %d, got %d", tg, got)
		}
		if got := entryKey(buf); !bytes.Equal(got, []byte("key")) {
			t.Fatalf("key: expected %q, got %q", "key", got)
		}
		if got := entryValue(buf); len(got) != 0 {
			t.Fatalf("sentinel value: expected empty, got %q", got)
		}
	}
}

func TestValidateEntryRejectsShortBuffer(t *testing.T) {
	if err := validateEntry([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for buffer shorter than header")
	}
}

func TestValidateEntryRejectsUnknownTag(t *testing.T) {
	buf := encodeSentinel([]byte("key"), tagKeyOnly)
	buf[0] = 0xFF
	if err := validateEntry(buf); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}

func TestValidateEntryRejectsTruncatedKey(t *testing.T) {
	buf := encodePair([]byte("key"), []byte("value"))
	if err := validateEntry(buf[:headerSize+1]); err == nil {
		t.Fatal("expected error for key truncated before declared length")
	}
}

func TestValidateEntryAcceptsWellFormed(t *testing.T) {
	buf := encodePair([]byte("key"), []byte("value"))
	if err := validateEntry(buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
