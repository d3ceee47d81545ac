// Package storage provides persistent prediction history for the churn
// service using BoltDB. Every served prediction can be recorded for
// later label-joining and drift review, with time-range queries over
// the log.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"

	"churnd/internal/churn"
)

const predictionsBucket = "predictions"

// PredictionRecord is one served prediction as persisted for review.
type PredictionRecord struct {
	Timestamp    time.Time      `json:"timestamp"`
	Probability  float64        `json:"probability"`
	Prediction   int            `json:"prediction"`
	Label        string         `json:"label"`
	RiskTier     churn.RiskTier `json:"risk_tier"`
	ModelVersion string         `json:"model_version"`
	Batch        bool           `json:"batch"`
}

// Store is a thread-safe BoltDB-backed prediction log.
type Store struct {
	db  *bbolt.DB
	seq atomic.Uint64
}

// New opens the database under dataPath and creates the bucket.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "churnd-data.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(predictionsBucket)); err != nil {
			return fmt.Errorf("create predictions bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StorePrediction appends one prediction record. Keys are zero-padded
// nanosecond timestamps plus a process-local sequence number, so range
// scans come back in serving order even when two predictions land in
// the same nanosecond.
func (s *Store) StorePrediction(record PredictionRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal prediction record: %w", err)
		}

		key := fmt.Sprintf("%020d_%012d", record.Timestamp.UnixNano(), s.seq.Add(1))
		return b.Put([]byte(key), data)
	})
}

// GetPredictionsInRange returns predictions served within [start, end],
// in serving order.
func (s *Store) GetPredictionsInRange(start, end time.Time) ([]PredictionRecord, error) {
	var records []PredictionRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))
		c := b.Cursor()

		startKey := []byte(fmt.Sprintf("%020d", start.UnixNano()))
		endKey := []byte(fmt.Sprintf("%020d_999999999999", end.UnixNano()))

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			var record PredictionRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue // Skip malformed records
			}
			records = append(records, record)
		}
		return nil
	})

	return records, err
}

// Count returns the number of stored prediction records.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(predictionsBucket)).Stats().KeyN
		return nil
	})
	return n, err
}
