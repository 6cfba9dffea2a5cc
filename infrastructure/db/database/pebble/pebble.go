package pebble

import (
	"github.com/Hoosat-Oy/treegraphd/infrastructure/db/database"
	"github.com/cockroachdb/pebble/v2"
	"github.com/pkg/errors"
)

// PebbleDB defines a thin wrapper around pebble.
type PebbleDB struct {
	db *pebble.DB
}

// NewPebbleDB opens a pebble instance defined by the given path.
func NewPebbleDB(path string, tuning database.Tuning) (*PebbleDB, error) {
	err := tuning.Validate()
	if err != nil {
		return nil, err
	}
	opts := options(tuning)
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed opening pebble database at %s", path)
	}
	log.Debugf("Opened pebble database at %s", path)
	return &PebbleDB{db: db}, nil
}

// Close closes the pebble instance.
func (db *PebbleDB) Close() error {
	return errors.WithStack(db.db.Close())
}

// Put sets the value for the given key. It overwrites
// any previous value for that key.
func (db *PebbleDB) Put(key *database.Key, value []byte) error {
	return errors.WithStack(db.db.Set(key.Bytes(), value, pebble.Sync))
}

// Get gets the value for the given key. It returns
// ErrNotFound if the given key does not exist.
func (db *PebbleDB) Get(key *database.Key) ([]byte, error) {
	return get(db.db, key)
}

// Has returns true if the database does contains the
// given key.
func (db *PebbleDB) Has(key *database.Key) (bool, error) {
	return has(db.db, key)
}

// Delete deletes the value for the given key. Will not
// return an error if the key doesn't exist.
func (db *PebbleDB) Delete(key *database.Key) error {
	return errors.WithStack(db.db.Delete(key.Bytes(), pebble.Sync))
}

// Cursor begins a new cursor over the given bucket.
func (db *PebbleDB) Cursor(bucket *database.Bucket) (database.Cursor, error) {
	return newCursor(db.db, bucket)
}

func get(reader pebble.Reader, key *database.Key) ([]byte, error) {
	value, closer, err := reader.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.Wrapf(database.ErrNotFound, "key %s not found", key)
		}
		return nil, errors.WithStack(err)
	}
	defer closer.Close()

	// The returned slice is only valid until closer is closed.
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy, nil
}

func has(reader pebble.Reader, key *database.Key) (bool, error) {
	_, closer, err := reader.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, errors.WithStack(err)
	}
	return true, closer.Close()
}

var _ database.Database = (*PebbleDB)(nil)
