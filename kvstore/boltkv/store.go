// Package boltkv adapts github.com/boltdb/bolt, a direct dependency of the
// teacher's go.mod, to the kvstore.OrderedStore contract. It is the
// embeddable default and the fixture store used by the DataGraph and
// executor tests.
package boltkv

import (
	"bytes"

	"github.com/boltdb/bolt"

	"github.com/graphcore-db/graphcore/kvstore"
)

var rootBucket = []byte("graphcore")

// Store wraps a single bolt.DB, storing every key in one flat bucket; the
// ordering and prefix-scan semantics the core relies on come entirely from
// bolt's own byte-ordered B+tree, not from any bucket hierarchy.
type Store struct {
	db *bolt.DB
}

// Open creates or opens a bolt database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(rootBucket).Get(key)
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

func (s *Store) SeekPrefix(prefix []byte) (kvstore.Cursor, error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, err
	}
	c := tx.Bucket(rootBucket).Cursor()
	k, v := c.Seek(prefix)
	cur := &cursor{tx: tx, c: c, prefix: append([]byte(nil), prefix...), key: k, value: v}
	cur.checkPrefix()
	return cur, nil
}

type cursor struct {
	tx          *bolt.Tx
	c           *bolt.Cursor
	prefix      []byte
	key, value  []byte
	exhausted   bool
}

func (c *cursor) checkPrefix() {
	if c.key == nil || !bytes.HasPrefix(c.key, c.prefix) {
		c.exhausted = true
	}
}

func (c *cursor) Valid() bool { return !c.exhausted }
func (c *cursor) Key() []byte   { return c.key }
func (c *cursor) Value() []byte { return c.value }

func (c *cursor) Next() {
	if c.exhausted {
		return
	}
	c.key, c.value = c.c.Next()
	c.checkPrefix()
}

func (c *cursor) Close() error { return c.tx.Rollback() }

type batch struct {
	puts    map[string][]byte
	deletes map[string]struct{}
}

func (b *batch) Put(key, value []byte) {
	b.puts[string(key)] = append([]byte(nil), value...)
	delete(b.deletes, string(key))
}

func (b *batch) Delete(key []byte) {
	b.deletes[string(key)] = struct{}{}
	delete(b.puts, string(key))
}

func (s *Store) NewBatch() kvstore.Batch {
	return &batch{puts: map[string][]byte{}, deletes: map[string]struct{}{}}
}

func (s *Store) CommitBatch(kb kvstore.Batch) error {
	b := kb.(*batch)
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(rootBucket)
		for k, v := range b.puts {
			if err := bucket.Put([]byte(k), v); err != nil {
				return err
			}
		}
		for k := range b.deletes {
			if err := bucket.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

type snapshot struct {
	tx *bolt.Tx
}

func (s *Store) Snapshot() (kvstore.Snapshot, error) {
	tx, err := s.db.Begin(false)
	if err != nil {
		return nil, err
	}
	return &snapshot{tx: tx}, nil
}

func (sn *snapshot) Get(key []byte) ([]byte, error) {
	v := sn.tx.Bucket(rootBucket).Get(key)
	if v == nil {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (sn *snapshot) SeekPrefix(prefix []byte) (kvstore.Cursor, error) {
	c := sn.tx.Bucket(rootBucket).Cursor()
	k, v := c.Seek(prefix)
	cur := &snapshotCursor{c: c, prefix: append([]byte(nil), prefix...), key: k, value: v}
	cur.checkPrefix()
	return cur, nil
}

func (sn *snapshot) Release() { sn.tx.Rollback() }

type snapshotCursor struct {
	c          *bolt.Cursor
	prefix     []byte
	key, value []byte
	exhausted  bool
}

func (c *snapshotCursor) checkPrefix() {
	if c.key == nil || !bytes.HasPrefix(c.key, c.prefix) {
		c.exhausted = true
	}
}

func (c *snapshotCursor) Valid() bool   { return !c.exhausted }
func (c *snapshotCursor) Key() []byte   { return c.key }
func (c *snapshotCursor) Value() []byte { return c.value }
func (c *snapshotCursor) Next() {
	if c.exhausted {
		return
	}
	c.key, c.value = c.c.Next()
	c.checkPrefix()
}
func (c *snapshotCursor) Close() error { return nil }

func (s *Store) Close() error { return s.db.Close() }
