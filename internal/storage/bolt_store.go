package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samvad-hq/memegen-client/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	renderBucket     = "renders"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB. Each value is an 8-byte big-endian
// expiry followed by the JSON-encoded record.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	recordTTL       time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(renderBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		recordTTL:       opts.RecordTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record stores rec under its image id, replacing any earlier entry.
func (b *boltStore) Record(rec domain.RenderRecord) error {
	if b == nil || b.db == nil {
		return nil
	}
	id := strings.TrimSpace(rec.ImageID)
	if id == "" {
		return errors.New("render record has no image id")
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now.UTC()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode render record: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(renderBucket))
		if bucket == nil {
			return fmt.Errorf("render bucket missing")
		}
		buf := make([]byte, expiryValueBytes, expiryValueBytes+len(payload))
		binary.BigEndian.PutUint64(buf, uint64(now.Add(b.recordTTL).Unix()))
		return bucket.Put([]byte(id), append(buf, payload...))
	})
}

// Lookup returns the live record for imageID; expired entries are deleted on access.
func (b *boltStore) Lookup(imageID string) (domain.RenderRecord, bool, error) {
	if b == nil || b.db == nil {
		return domain.RenderRecord{}, false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return domain.RenderRecord{}, false, err
	}

	var (
		rec   domain.RenderRecord
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(renderBucket))
		if bucket == nil {
			return fmt.Errorf("render bucket missing")
		}

		key := []byte(imageID)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}

		decoded, ok := decodeRecord(value, now)
		if !ok {
			return bucket.Delete(key)
		}
		rec, found = decoded, true
		return nil
	})
	return rec, found, err
}

// Recent returns up to limit live records, newest first. limit <= 0 returns all.
func (b *boltStore) Recent(limit int) ([]domain.RenderRecord, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	var out []domain.RenderRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(renderBucket))
		if bucket == nil {
			return fmt.Errorf("render bucket missing")
		}
		return bucket.ForEach(func(_, v []byte) error {
			if rec, ok := decodeRecord(v, now); ok {
				out = append(out, rec)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// maybeCleanupExpired removes expired records on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(renderBucket))
		if bucket == nil {
			return fmt.Errorf("render bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func decodeRecord(value []byte, now time.Time) (domain.RenderRecord, bool) {
	expiry, ok := decodeExpiry(value)
	if !ok || !expiry.After(now) {
		return domain.RenderRecord{}, false
	}
	var rec domain.RenderRecord
	if err := json.Unmarshal(value[expiryValueBytes:], &rec); err != nil {
		return domain.RenderRecord{}, false
	}
	return rec, true
}

// decodeExpiry decodes the expiry time from the stored byte slice.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
