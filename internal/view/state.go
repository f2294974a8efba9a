package view

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketExpanded = "expanded"

// StateStore persists which goals are expanded between sessions.
type StateStore interface {
	LoadExpanded() ([]string, error)
	SaveExpanded(ids []string) error
	Close() error
}

type boltStateStore struct {
	db *bolt.DB
}

// OpenBoltStateStore opens or creates the bbolt file at path.
func OpenBoltStateStore(path string) (StateStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating view state directory: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening view state: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketExpanded))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing view state: %w", err)
	}
	return &boltStateStore{db: db}, nil
}

func (s *boltStateStore) LoadExpanded() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketExpanded)).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("loading view state: %w", err)
	}
	return ids, nil
}

// SaveExpanded replaces the stored set with ids.
func (s *boltStateStore) SaveExpanded(ids []string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketExpanded)); err != nil {
			return err
		}
		b, err := tx.CreateBucket([]byte(bucketExpanded))
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := b.Put([]byte(id), []byte{1}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving view state: %w", err)
	}
	return nil
}

func (s *boltStateStore) Close() error {
	return s.db.Close()
}

// Load restores the expanded set from store.
func (p *Projector) Load(store StateStore) error {
	ids, err := store.LoadExpanded()
	if err != nil {
		return err
	}
	p.Restore(ids)
	return nil
}

// Save writes the expanded set to store.
func (p *Projector) Save(store StateStore) error {
	return store.SaveExpanded(p.ExpandedIDs())
}
