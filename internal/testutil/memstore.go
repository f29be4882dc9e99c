package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/storage"
)

// CopyCall records one CopyObjectVersion invocation.
type CopyCall struct {
	Key       string
	VersionID string
}

// PutCall records one PutObject invocation.
type PutCall struct {
	Key         string
	ContentType string
	Data        []byte
}

type record struct {
	version storage.ObjectVersion
	body    []byte
}

// MemoryStore is an in-memory versioned bucket implementing storage.ObjectStorage.
// Histories are kept newest first.
type MemoryStore struct {
	mu        sync.Mutex
	histories map[string][]record
	seq       int
	clock     time.Time

	// Injected failures, keyed by object key.
	GetErrors          map[string]error
	CopyErrors         map[string]error
	ListVersionsErrors map[string]error
	ListErr            error
	PutErr             error

	Copies       []CopyCall
	Puts         []PutCall
	Gets         []string
	VersionLists []string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		histories:          make(map[string][]record),
		clock:              time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		GetErrors:          make(map[string]error),
		CopyErrors:         make(map[string]error),
		ListVersionsErrors: make(map[string]error),
	}
}

// AddVersion pushes a content version as the latest version of key.
func (s *MemoryStore) AddVersion(key, versionID string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push(key, versionID, body, false)
}

// AddDeleteMarker pushes a delete marker as the latest record of key.
func (s *MemoryStore) AddDeleteMarker(key, versionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push(key, versionID, nil, true)
}

// SetHistory replaces the history of key with versions exactly as given.
func (s *MemoryStore) SetHistory(key string, versions ...storage.ObjectVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make([]record, 0, len(versions))
	for _, v := range versions {
		v.Key = key
		records = append(records, record{version: v})
	}
	s.histories[key] = records
}

// Body returns the body of the current version of key.
func (s *MemoryStore) Body(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.current(key)
	if !ok {
		return nil, false
	}
	return rec.body, true
}

func (s *MemoryStore) push(key, versionID string, body []byte, deleteMarker bool) {
	s.seq++
	s.clock = s.clock.Add(time.Minute)
	if versionID == "" {
		versionID = fmt.Sprintf("gen-%d", s.seq)
	}

	history := s.histories[key]
	for i := range history {
		history[i].version.IsLatest = false
	}

	rec := record{
		version: storage.ObjectVersion{
			Key:            key,
			VersionID:      versionID,
			IsLatest:       true,
			IsDeleteMarker: deleteMarker,
			LastModified:   s.clock,
			Size:           int64(len(body)),
		},
		body: body,
	}
	s.histories[key] = append([]record{rec}, history...)
}

func (s *MemoryStore) current(key string) (record, bool) {
	for _, rec := range s.histories[key] {
		if rec.version.IsLatest {
			if rec.version.IsDeleteMarker {
				return record{}, false
			}
			return rec, true
		}
	}
	return record{}, false
}

func (s *MemoryStore) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	var out []storage.ObjectInfo
	for key := range s.histories {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rec, ok := s.current(key)
		if !ok {
			continue
		}
		out = append(out, storage.ObjectInfo{
			Key:          key,
			Size:         int64(len(rec.body)),
			LastModified: rec.version.LastModified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Gets = append(s.Gets, key)
	if err := s.GetErrors[key]; err != nil {
		return nil, err
	}
	rec, ok := s.current(key)
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, storage.ErrObjectNotFound)
	}
	return rec.body, nil
}

func (s *MemoryStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PutErr != nil {
		return s.PutErr
	}
	body := append([]byte(nil), data...)
	s.Puts = append(s.Puts, PutCall{Key: key, ContentType: contentType, Data: body})
	s.push(key, "", body, false)
	return nil
}

func (s *MemoryStore) ListObjectVersions(ctx context.Context, key string) ([]storage.ObjectVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.VersionLists = append(s.VersionLists, key)
	if err := s.ListVersionsErrors[key]; err != nil {
		return nil, err
	}
	history := s.histories[key]
	out := make([]storage.ObjectVersion, 0, len(history))
	for _, rec := range history {
		out = append(out, rec.version)
	}
	return out, nil
}

func (s *MemoryStore) CopyObjectVersion(ctx context.Context, key, versionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Copies = append(s.Copies, CopyCall{Key: key, VersionID: versionID})
	if err := s.CopyErrors[key]; err != nil {
		return err
	}
	for _, rec := range s.histories[key] {
		if rec.version.VersionID == versionID && !rec.version.IsDeleteMarker {
			s.push(key, "", rec.body, false)
			return nil
		}
	}
	return fmt.Errorf("copy %s@%s: no such version", key, versionID)
}

var _ storage.ObjectStorage = (*MemoryStore)(nil)
