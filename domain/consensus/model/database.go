package model

// DBBucket is a key prefix. Buckets nest: a sub-bucket's path extends the
// path of its parent.
type DBBucket interface {
	Bucket(bucketBytes []byte) DBBucket
	Key(suffix []byte) DBKey
	Path() []byte
}

// DBKey addresses a single value inside a bucket
type DBKey interface {
	Bytes() []byte
	Bucket() DBBucket
	Suffix() []byte
}

// DBCursor walks the entries of one bucket in key order. Key and Value
// return an ErrNotFound error once the cursor is exhausted. Their results
// must not be modified, and are only valid until the next call to Next.
type DBCursor interface {
	First() bool
	Next() bool
	Key() (DBKey, error)
	Value() ([]byte, error)
	Close() error
}

// DBReader is the read access shared by the database and its transactions.
// Get returns an ErrNotFound error for a missing key.
type DBReader interface {
	Get(key DBKey) ([]byte, error)
	Has(key DBKey) (bool, error)
	Cursor(bucket DBBucket) (DBCursor, error)
}

// DBTransaction stages writes that become visible together on Commit.
type DBTransaction interface {
	DBReader

	Put(key DBKey, value []byte) error
	Delete(key DBKey) error

	Commit() error
	Rollback() error

	// RollbackUnlessClosed is a no-op after Commit or Rollback, so it can
	// be deferred right after Begin.
	RollbackUnlessClosed() error
}

// DBManager is the consensus view of the node database. Stores only write
// through transactions, so a staging area is always committed atomically.
type DBManager interface {
	DBReader
	Begin() (DBTransaction, error)
}
