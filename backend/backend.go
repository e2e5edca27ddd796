// Package backend persists multimap table roots to a single bolt file,
// giving the in-memory Database durability across restarts. A table is
// always written and read back whole: there is no incremental
// per-commit diffing of the underlying tree, only full dump-and-reload
// snapshots keyed by table name.
package backend

import (
	"fmt"
	"hash/crc32"
	"time"

	"github.com/azmodb/multimap/pb"
	"github.com/boltdb/bolt"
)

var (
	metaBucket = []byte("meta")
	dataBucket = []byte("data")

	rootBuckets = [][]byte{metaBucket, dataBucket}

	castagnoli = crc32.MakeTable(crc32.Castagnoli)
)

// Store is a durable, file-backed home for table snapshots. The same
// file can hold any number of named tables side by side.
type Store struct {
	db *bolt.DB
}

// CorruptedError reports that a table's persisted snapshot does not
// match its recorded metadata: a missing entry, an extra entry, or a
// checksum that no longer matches the stored bytes. Callers can detect
// it with errors.As to distinguish corruption from an ordinary I/O
// failure.
type CorruptedError struct {
	Table  string
	Reason string
}

func (e *CorruptedError) Error() string {
	return fmt.Sprintf("backend: table %q corrupted: %s", e.Table, e.Reason)
}

// Open opens (creating if necessary) a bolt-backed store at path.
// Timeout bounds how long Open waits to acquire the file lock; zero
// waits indefinitely.
func Open(path string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range rootBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying file and its lock.
func (s *Store) Close() error { return s.db.Close() }

// tableDataBucket returns (creating if necessary) the nested bucket
// holding one table's raw entries, namespaced under dataBucket so
// distinct tables never collide on key bytes.
func tableDataBucket(tx *bolt.Tx, name string, create bool) (*bolt.Bucket, error) {
	root := tx.Bucket(dataBucket)
	if create {
		return root.CreateBucketIfNotExists([]byte(name))
	}
	b := root.Bucket([]byte(name))
	if b == nil {
		return nil, nil
	}
	return b, nil
}

// SaveTable replaces name's persisted snapshot with entries, recording
// rev and a CRC32C checksum over the entries in table root metadata.
// entries are the raw encoded pairs of a multimap table, in any order.
// Each is stored under its position in entries, and the checksum is
// computed over the entries in that same order, which is the order
// LoadTable reads them back in.
func (s *Store) SaveTable(name string, rev int64, entries [][]byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(dataBucket)
		if old := root.Bucket([]byte(name)); old != nil {
			if err := root.DeleteBucket([]byte(name)); err != nil {
				return err
			}
		}
		data, err := root.CreateBucket([]byte(name))
		if err != nil {
			return err
		}

		checksum := crc32.New(castagnoli)
		for i, entry := range entries {
			checksum.Write(entry)
			key := seqKey(i)
			if err := data.Put(key, entry); err != nil {
				return err
			}
		}

		root2 := &pb.TableRoot{
			Name:     name,
			Rev:      rev,
			Count:    int64(len(entries)),
			Checksum: checksum.Sum32(),
		}
		return tx.Bucket(metaBucket).Put([]byte(name), pb.MustMarshal(root2))
	})
}

// LoadTable reads back name's persisted snapshot, verifying its
// checksum. A name with no persisted snapshot returns zero entries,
// revision zero and a nil error: an unpersisted table is not an error,
// it simply starts empty.
func (s *Store) LoadTable(name string) (entries [][]byte, rev int64, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		metaData := tx.Bucket(metaBucket).Get([]byte(name))
		if metaData == nil {
			return nil
		}
		meta := &pb.TableRoot{}
		pb.MustUnmarshal(metaData, meta)

		data, lookupErr := tableDataBucket(tx, name, false)
		if lookupErr != nil {
			return lookupErr
		}
		checksum := crc32.New(castagnoli)
		if data != nil {
			c := data.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				checksum.Write(v)
				entries = append(entries, append([]byte(nil), v...))
			}
		}

		if int64(len(entries)) != meta.Count {
			return &CorruptedError{Table: name, Reason: fmt.Sprintf("expected %d entries, found %d", meta.Count, len(entries))}
		}
		if checksum.Sum32() != meta.Checksum {
			return &CorruptedError{Table: name, Reason: "checksum mismatch"}
		}
		rev = meta.Rev
		return nil
	})
	return entries, rev, err
}

// seqKey encodes a bucket-local sequence number as a fixed-width,
// order-preserving bolt key. The multimap entries it wraps carry their
// own ordering; this key only needs to be unique per table.
func seqKey(i int) []byte {
	key := make([]byte, 8)
	for j := 7; j >= 0; j-- {
		key[j] = byte(i)
		i >>= 8
	}
	return key
}
