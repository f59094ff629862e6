package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

// DefaultStoreFile is the resolution store name under the build output dir
const DefaultStoreFile = "index.db"

// bucketName is the BoltDB bucket holding resolved files
const bucketName = "files"

// Record is a stored resolution
type Record struct {
	File File `json:"file"`

	// Timestamp when the lookup was made
	Timestamp time.Time `json:"timestamp"`
}

// Store remembers resolutions between builds so that unchanged indexed
// files do not hit the metadata service again. It is kept outside the
// artifact cache directory.
type Store struct {
	db *bbolt.DB
}

// OpenStore opens or creates the BoltDB store at path
func OpenStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open resolution store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create resolution bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the store database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// Get returns the stored resolution, ok is false when there is none
func (s *Store) Get(projectID, fileID int) (rec Record, ok bool, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get(key(projectID, fileID))
		if data == nil {
			return nil
		}

		ok = true
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to read resolution: %w", err)
	}

	return rec, ok, nil
}

// Put stores a resolution, replacing any previous one
func (s *Store) Put(f File) error {
	data, err := json.Marshal(Record{File: f, Timestamp: time.Now()})
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put(key(f.ProjectID, f.FileID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store resolution: %w", err)
	}

	return nil
}

// Count returns the number of stored resolutions
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})

	return count, err
}

func key(projectID, fileID int) []byte {
	return []byte(fmt.Sprintf("%d/%d", projectID, fileID))
}

// CachingResolver answers from a Store before asking the next Resolver,
// and records fresh lookups
type CachingResolver struct {
	next  Resolver
	store *Store
	log   *slog.Logger
}

// NewCachingResolver wraps next with store
func NewCachingResolver(next Resolver, store *Store, log *slog.Logger) *CachingResolver {
	return &CachingResolver{next: next, store: store, log: log}
}

// Resolve implements Resolver
func (r *CachingResolver) Resolve(ctx context.Context, projectID, fileID int) (File, error) {
	rec, ok, err := r.store.Get(projectID, fileID)
	if err != nil {
		r.log.Warn("ignoring resolution store", "error", err)
	} else if ok && rec.File.validate() == nil {
		return rec.File, nil
	}

	f, err := r.next.Resolve(ctx, projectID, fileID)
	if err != nil {
		return File{}, err
	}

	if err := r.store.Put(f); err != nil {
		r.log.Warn("could not record resolution", "project", projectID, "file", fileID, "error", err)
	}

	return f, nil
}
