// Package store caches block templates handed out to miners so a share can
// be matched back to the template it was built on.
package store

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/bitfsorg/libcryptonote-go/fork"
)

// Template is a block template issued under a job id.
type Template struct {
	JobID   string
	Profile fork.BlobType
	Height  uint64
	Blob    []byte

	// ReservedOffset is the position of the reserved extra nonce space in Blob.
	ReservedOffset int

	CreatedAt time.Time
}

// TemplateStore persists templates by job id.
type TemplateStore interface {
	// Put stores a template. Job ids are never overwritten.
	Put(t *Template) error

	// Get returns the template stored under jobID.
	Get(jobID string) (*Template, error)

	// Delete removes a template. Deleting a missing job id is not an error.
	Delete(jobID string) error

	// Latest returns the highest template stored for a profile.
	Latest(profile fork.BlobType) (*Template, error)

	// Close releases the store.
	Close() error
}

func validate(t *Template) error {
	if t == nil {
		return fmt.Errorf("%w: template", ErrNilParam)
	}
	if t.JobID == "" {
		return fmt.Errorf("%w: empty job id", ErrInvalidTemplate)
	}
	if len(t.Blob) == 0 {
		return fmt.Errorf("%w: empty blob", ErrInvalidTemplate)
	}
	if _, err := fork.ByID(t.Profile); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	return nil
}

func cloneTemplate(t *Template) *Template {
	c := *t
	c.Blob = bytes.Clone(t.Blob)
	return &c
}

// MemTemplateStore keeps templates in memory and drops them after a TTL.
type MemTemplateStore struct {
	mu    sync.Mutex
	cache *ttlcache.Cache[string, *Template]
	tips  map[fork.BlobType]string
}

// Compile-time interface check.
var _ TemplateStore = (*MemTemplateStore)(nil)

// NewMemTemplateStore creates an in-memory store whose entries expire ttl
// after insertion. A zero ttl keeps entries until they are deleted.
func NewMemTemplateStore(ttl time.Duration) *MemTemplateStore {
	cache := ttlcache.New[string, *Template](
		ttlcache.WithTTL[string, *Template](ttl),
		ttlcache.WithDisableTouchOnHit[string, *Template](),
	)
	go cache.Start()

	return &MemTemplateStore{
		cache: cache,
		tips:  make(map[fork.BlobType]string),
	}
}

// Put stores a copy of t.
func (s *MemTemplateStore) Put(t *Template) error {
	if err := validate(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache.Get(t.JobID) != nil {
		return ErrDuplicateTemplate
	}
	c := cloneTemplate(t)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.cache.Set(c.JobID, c, ttlcache.DefaultTTL)

	if tip := s.cache.Get(s.tips[c.Profile]); tip == nil || c.Height >= tip.Value().Height {
		s.tips[c.Profile] = c.JobID
	}
	return nil
}

// Get returns a copy of the template stored under jobID.
func (s *MemTemplateStore) Get(jobID string) (*Template, error) {
	item := s.cache.Get(jobID)
	if item == nil {
		return nil, ErrTemplateNotFound
	}
	return cloneTemplate(item.Value()), nil
}

// Delete removes the template stored under jobID.
func (s *MemTemplateStore) Delete(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Delete(jobID)
	for p, id := range s.tips {
		if id == jobID {
			delete(s.tips, p)
		}
	}
	return nil
}

// Latest returns the highest live template for profile.
func (s *MemTemplateStore) Latest(profile fork.BlobType) (*Template, error) {
	s.mu.Lock()
	id, ok := s.tips[profile]
	s.mu.Unlock()
	if !ok {
		return nil, ErrTemplateNotFound
	}
	return s.Get(id)
}

// Len returns the number of live templates.
func (s *MemTemplateStore) Len() int { return s.cache.Len() }

// Close stops the expiry loop.
func (s *MemTemplateStore) Close() error {
	s.cache.Stop()
	return nil
}
