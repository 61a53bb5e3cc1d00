package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"queryblast/internal/report"
	"queryblast/internal/runner"
)

const bucketRuns = "runs"

// RunRecord is one finished run as persisted to history.
type RunRecord struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Config    runner.Config `json:"config"`
	Report    report.Report `json:"report"`
}

// NewRecord stamps a finished report for storage.
func NewRecord(cfg runner.Config, rep report.Report) RunRecord {
	return RunRecord{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Config:    cfg,
		Report:    rep,
	}
}

// Store is the bolt-backed run history.
type Store struct {
	db *bbolt.DB
}

// Open opens the default history database under the user's home.
func Open() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".queryblast")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return OpenAt(filepath.Join(dir, "history.db"))
}

func OpenAt(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRuns))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists a record. Keys sort chronologically so a reverse cursor
// walk yields newest first.
func (s *Store) Save(rec RunRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))

		key := []byte(fmt.Sprintf("%020d:%s", rec.Timestamp.UnixNano(), rec.ID))
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// List returns stored runs, newest first.
func (s *Store) List() ([]RunRecord, error) {
	var recs []RunRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		c := b.Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec RunRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Get looks a record up by its ID.
func (s *Store) Get(id string) (*RunRecord, error) {
	var rec RunRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketRuns))
		c := b.Cursor()

		for k, v := c.First(); k != nil; k, v = c.Next() {
			var candidate RunRecord
			if err := json.Unmarshal(v, &candidate); err != nil {
				continue
			}
			if candidate.ID == id {
				rec = candidate
				return nil
			}
		}
		return fmt.Errorf("run %s not found", id)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
