package filemeta

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and single-process
// deployments. It is safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	records    map[string]*Record // id -> record
	liveHashes map[string]string  // content hash -> id, live records only
	names      map[string]string  // stored name -> id
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:    make(map[string]*Record),
		liveHashes: make(map[string]string),
		names:      make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; ok {
		return fmt.Errorf("%w: id %s", ErrInvalidRecord, record.ID)
	}
	if _, ok := s.names[record.StoredName]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateStoredName, record.StoredName)
	}
	if !record.Deleted {
		if _, ok := s.liveHashes[record.ContentHash]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateHash, record.ContentHash)
		}
	}

	s.records[record.ID] = record.Clone()
	s.names[record.StoredName] = record.ID
	if !record.Deleted {
		s.liveHashes[record.ContentHash] = record.ID
	}
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return record.Clone(), nil
}

func (s *MemoryStore) GetByHash(_ context.Context, hash string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.liveHashes[hash]
	if !ok {
		return nil, fmt.Errorf("%w: hash %s", ErrNotFound, hash)
	}
	return s.records[id].Clone(), nil
}

func (s *MemoryStore) GetByStoredName(_ context.Context, name string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: stored name %s", ErrNotFound, name)
	}
	return s.records[id].Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, record *Record) error {
	if record == nil || record.ID == "" {
		return ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[record.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, record.ID)
	}

	s.reindex(existing, record)
	s.records[record.ID] = record.Clone()
	return nil
}

func (s *MemoryStore) UpdateAccessStats(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	record.DownloadCount++
	record.LastAccessTime = at
	return nil
}

func (s *MemoryStore) SetImageMeta(_ context.Context, id string, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	record.ImageWidth = width
	record.ImageHeight = height
	return nil
}

func (s *MemoryStore) SetThumbnail(_ context.Context, id string, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	record.ThumbnailPath = path
	return nil
}

func (s *MemoryStore) SoftDelete(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if record.Deleted {
		return nil
	}
	record.MarkDeleted(at)
	delete(s.liveHashes, record.ContentHash)
	return nil
}

func (s *MemoryStore) Restore(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !record.Deleted {
		return fmt.Errorf("%w: %s", ErrNotDeleted, id)
	}
	record.Restore()
	s.liveHashes[record.ContentHash] = record.ID
	return nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string, filter ListFilter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(filter, func(r *Record) bool {
		return r.OwnerID == ownerID && !r.Deleted &&
			(filter.Category == "" || r.Category == filter.Category)
	}), nil
}

func (s *MemoryStore) SearchByName(_ context.Context, ownerID, query string, filter ListFilter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(query)
	return s.collect(filter, func(r *Record) bool {
		return r.OwnerID == ownerID && !r.Deleted &&
			strings.Contains(strings.ToLower(r.OriginalName), query)
	}), nil
}

func (s *MemoryStore) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.records {
		if r.OwnerID == ownerID && !r.Deleted {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) SumSizeByOwner(_ context.Context, ownerID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, r := range s.records {
		if r.OwnerID == ownerID && !r.Deleted {
			total += r.Size
		}
	}
	return total, nil
}

func (s *MemoryStore) ListDeletedBefore(_ context.Context, cutoff time.Time) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(ListFilter{}, func(r *Record) bool {
		return r.Deleted && r.DeleteTime != nil && !r.DeleteTime.After(cutoff)
	}), nil
}

func (s *MemoryStore) HardDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(s.records, id)
	delete(s.names, record.StoredName)
	if !record.Deleted {
		delete(s.liveHashes, record.ContentHash)
	}
	return nil
}

// collect gathers matching records newest-first with paging applied.
// Callers must hold at least the read lock.
func (s *MemoryStore) collect(filter ListFilter, match func(*Record) bool) []*Record {
	var out []*Record
	for _, r := range s.records {
		if match(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadTime.After(out[j].UploadTime)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

// reindex keeps the secondary indexes consistent when Update changes
// indexed fields. Callers must hold the write lock.
func (s *MemoryStore) reindex(old, updated *Record) {
	if old.StoredName != updated.StoredName {
		delete(s.names, old.StoredName)
		s.names[updated.StoredName] = updated.ID
	}
	if !old.Deleted {
		delete(s.liveHashes, old.ContentHash)
	}
	if !updated.Deleted {
		s.liveHashes[updated.ContentHash] = updated.ID
	}
}
