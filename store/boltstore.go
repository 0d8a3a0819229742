package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jinzhu/copier"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libcryptonote-go/fork"
)

var (
	bucketTemplates = []byte("templates")
	bucketTips      = []byte("templates_tip")
)

// templateRecord is the persisted form of a Template.
type templateRecord struct {
	JobID          string
	Profile        fork.BlobType
	Height         uint64
	Blob           []byte
	ReservedOffset int
	CreatedAt      int64
}

var recordConverters = []copier.TypeConverter{
	{
		SrcType: time.Time{},
		DstType: int64(0),
		Fn: func(src interface{}) (interface{}, error) {
			return src.(time.Time).UnixNano(), nil
		},
	},
	{
		SrcType: int64(0),
		DstType: time.Time{},
		Fn: func(src interface{}) (interface{}, error) {
			return time.Unix(0, src.(int64)), nil
		},
	},
}

func toRecord(t *Template) (*templateRecord, error) {
	var rec templateRecord
	if err := copier.CopyWithOption(&rec, t, copier.Option{DeepCopy: true, Converters: recordConverters}); err != nil {
		return nil, fmt.Errorf("store: map template: %w", err)
	}
	return &rec, nil
}

func fromRecord(rec *templateRecord) (*Template, error) {
	var t Template
	if err := copier.CopyWithOption(&t, rec, copier.Option{DeepCopy: true, Converters: recordConverters}); err != nil {
		return nil, fmt.Errorf("store: map record: %w", err)
	}
	return &t, nil
}

// profileKey encodes a profile id as a one-byte bucket key.
func profileKey(p fork.BlobType) []byte {
	return []byte{byte(p)}
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// BoltTemplateStore persists templates in a bbolt database. Entries older
// than the TTL read as missing and are removed by Prune.
type BoltTemplateStore struct {
	db  *bbolt.DB
	ttl time.Duration
	now func() time.Time
}

// Compile-time interface check.
var _ TemplateStore = (*BoltTemplateStore)(nil)

// OpenBoltTemplateStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist. A zero ttl keeps
// entries until they are deleted.
func OpenBoltTemplateStore(dbPath string, ttl time.Duration) (*BoltTemplateStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketTemplates, bucketTips} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltTemplateStore{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *BoltTemplateStore) Close() error { return s.db.Close() }

func (s *BoltTemplateStore) expired(rec *templateRecord) bool {
	return s.ttl > 0 && s.now().Sub(time.Unix(0, rec.CreatedAt)) > s.ttl
}

func readRecord(b *bbolt.Bucket, jobID []byte) (*templateRecord, error) {
	data := b.Get(jobID)
	if data == nil {
		return nil, ErrTemplateNotFound
	}
	var rec templateRecord
	if err := decodeGob(data, &rec); err != nil {
		return nil, fmt.Errorf("boltstore: decode template: %w", err)
	}
	return &rec, nil
}

// Put stores t keyed by job id and advances the profile tip when t is at
// least as high as the current one.
func (s *BoltTemplateStore) Put(t *Template) error {
	if err := validate(t); err != nil {
		return err
	}
	rec, err := toRecord(t)
	if err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UnixNano()
	}
	data, err := encodeGob(rec)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		tb := tx.Bucket(bucketTemplates)
		key := []byte(rec.JobID)
		if old, err := readRecord(tb, key); err == nil && !s.expired(old) {
			return ErrDuplicateTemplate
		}
		if err := tb.Put(key, data); err != nil {
			return fmt.Errorf("boltstore: put template: %w", err)
		}

		tips := tx.Bucket(bucketTips)
		if tipID := tips.Get(profileKey(rec.Profile)); tipID != nil {
			tip, err := readRecord(tb, tipID)
			if err == nil && !s.expired(tip) && tip.Height > rec.Height {
				return nil
			}
		}
		if err := tips.Put(profileKey(rec.Profile), key); err != nil {
			return fmt.Errorf("boltstore: put tip: %w", err)
		}
		return nil
	})
}

// Get retrieves a live template by job id.
func (s *BoltTemplateStore) Get(jobID string) (*Template, error) {
	var rec *templateRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		rec, err = readRecord(tx.Bucket(bucketTemplates), []byte(jobID))
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.expired(rec) {
		return nil, ErrTemplateNotFound
	}
	return fromRecord(rec)
}

// Delete removes a template and any tip pointing at it.
func (s *BoltTemplateStore) Delete(jobID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return deleteTemplate(tx, []byte(jobID))
	})
}

func deleteTemplate(tx *bbolt.Tx, key []byte) error {
	if err := tx.Bucket(bucketTemplates).Delete(key); err != nil {
		return fmt.Errorf("boltstore: delete template: %w", err)
	}
	tips := tx.Bucket(bucketTips)
	var stale [][]byte
	err := tips.ForEach(func(k, v []byte) error {
		if bytes.Equal(v, key) {
			stale = append(stale, bytes.Clone(k))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range stale {
		if err := tips.Delete(k); err != nil {
			return fmt.Errorf("boltstore: delete tip: %w", err)
		}
	}
	return nil
}

// Latest returns the tip template of profile.
func (s *BoltTemplateStore) Latest(profile fork.BlobType) (*Template, error) {
	var jobID string
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketTips).Get(profileKey(profile))
		if v == nil {
			return ErrTemplateNotFound
		}
		jobID = string(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(jobID)
}

// Prune removes expired templates and returns how many were removed.
func (s *BoltTemplateStore) Prune() (int, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	var removed int
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var expired [][]byte
		err := tx.Bucket(bucketTemplates).ForEach(func(k, v []byte) error {
			var rec templateRecord
			if err := decodeGob(v, &rec); err != nil {
				return fmt.Errorf("boltstore: decode template: %w", err)
			}
			if s.expired(&rec) {
				expired = append(expired, bytes.Clone(k))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := deleteTemplate(tx, k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
