package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	locationsBucket = []byte("locations")
	metaBucket      = []byte("metadata")
)

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

// NewStoreWithTimeout waits at most timeout for the file lock held by
// another newsdesk process.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{locationsBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveLocation records the location query string for page. The leading "?"
// is dropped; the last write wins.
func (s *Store) SaveLocation(page Page, query string) error {
	loc := Location{
		Page:      page,
		Query:     strings.TrimPrefix(query, "?"),
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(locationsBucket)
		data, err := json.Marshal(loc)
		if err != nil {
			return err
		}
		return b.Put([]byte(page), data)
	})
}

// GetLocation returns the stored location for page, or "" if none exists.
func (s *Store) GetLocation(page Page) (string, error) {
	loc, err := s.getLocation(page)
	if err != nil || loc == nil {
		return "", err
	}
	return loc.Query, nil
}

// Locations returns every stored location keyed by page.
func (s *Store) Locations() (map[Page]Location, error) {
	out := make(map[Page]Location)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(locationsBucket)
		return b.ForEach(func(_ []byte, v []byte) error {
			var loc Location
			if err := json.Unmarshal(v, &loc); err != nil {
				return nil
			}
			out[loc.Page] = loc
			return nil
		})
	})
	return out, err
}

// ClearLocation forgets the stored location for page.
func (s *Store) ClearLocation(page Page) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(locationsBucket).Delete([]byte(page))
	})
}

func (s *Store) getLocation(page Page) (*Location, error) {
	var loc *Location
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(locationsBucket).Get([]byte(page))
		if data == nil {
			return nil
		}
		var l Location
		if err := json.Unmarshal(data, &l); err != nil {
			return fmt.Errorf("decoding location %q: %w", page, err)
		}
		loc = &l
		return nil
	})
	return loc, err
}

func (s *Store) SetMeta(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put([]byte(key), []byte(value))
	})
}

// GetMeta returns the value for key, or "" if it was never set.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(metaBucket).Get([]byte(key)); data != nil {
			value = string(data)
		}
		return nil
	})
	return value, err
}

// TouchLastRun stamps the current time and version into the metadata bucket.
func (s *Store) TouchLastRun(version string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(metaBucket)
		if err := b.Put([]byte(MetaLastRun), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
			return err
		}
		return b.Put([]byte(MetaVersion), []byte(version))
	})
}
