package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	sgErrors "github.com/javanhut/simplegit/internal/errors"
	"github.com/javanhut/simplegit/internal/snapshot"
)

// CatalogFile is the bbolt database inside the control directory.
const CatalogFile = "catalog.db"

// Buckets
var (
	BucketCommits = []byte("commits") // commit id -> commit_info JSON
)

// ErrLocked is returned when another process holds the catalog open.
var ErrLocked = errors.New("repository is in use by another simplegit process")

// DB is the commit catalog. It is a cache of the commit_info.json records
// on disk and can be rebuilt from them at any time.
type DB struct{ *bbolt.DB }

// Open opens or creates the catalog at path. bbolt holds an exclusive file
// lock, so a concurrent invocation fails after a short timeout.
func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, fmt.Errorf("open catalog %s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	// Ensure buckets exist
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(BucketCommits)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db}, nil
}

func (db *DB) Close() error { return db.DB.Close() }

// PutCommit stores the metadata of a commit. It implements snapshot.Recorder.
func (db *DB) PutCommit(info snapshot.Info) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal commit %s: %w", info.ID, err)
	}
	return db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketCommits).Put([]byte(info.ID), data)
	})
}

// GetCommit looks up one commit by exact id.
func (db *DB) GetCommit(id string) (snapshot.Info, error) {
	var info snapshot.Info
	err := db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(BucketCommits).Get([]byte(id))
		if v == nil {
			return sgErrors.Wrapf(sgErrors.ErrNotFound, "commit %s in catalog", id)
		}
		return json.Unmarshal(v, &info)
	})
	return info, err
}

// Commits returns every catalogued commit in id order.
func (db *DB) Commits() ([]snapshot.Info, error) {
	var infos []snapshot.Info
	err := db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(BucketCommits).ForEach(func(k, v []byte) error {
			var info snapshot.Info
			if err := json.Unmarshal(v, &info); err != nil {
				return fmt.Errorf("decode catalog entry %s: %w", k, err)
			}
			infos = append(infos, info)
			return nil
		})
	})
	return infos, err
}

// Replace drops the catalog content and stores infos in one transaction.
func (db *DB) Replace(infos []snapshot.Info) error {
	return db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(BucketCommits); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		b, err := tx.CreateBucket(BucketCommits)
		if err != nil {
			return err
		}
		for _, info := range infos {
			data, err := json.Marshal(info)
			if err != nil {
				return fmt.Errorf("marshal commit %s: %w", info.ID, err)
			}
			if err := b.Put([]byte(info.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}
