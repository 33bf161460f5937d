package permission

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and single-process use.
// It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	grants map[string]*Grant // id -> grant
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{grants: make(map[string]*Grant)}
}

func (s *MemoryStore) Create(_ context.Context, grant *Grant) error {
	if grant == nil || grant.ID == "" || !grant.Kind.Valid() {
		return ErrInvalidGrant
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.grants[grant.ID]; ok {
		return fmt.Errorf("%w: id %s", ErrInvalidGrant, grant.ID)
	}
	s.grants[grant.ID] = grant.Clone()
	return nil
}

func (s *MemoryStore) FindActive(_ context.Context, fileID, granteeID string, kind Kind) (*Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.grants {
		if g.Active && g.FileID == fileID && g.GranteeID == granteeID && g.Kind == kind {
			return g.Clone(), nil
		}
	}
	return nil, ErrGrantNotFound
}

func (s *MemoryStore) HasValidGrant(_ context.Context, fileID, userID string, kind Kind, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.grants {
		if g.FileID == fileID && g.GranteeID == userID && g.Kind == kind && g.ValidAt(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Revoke(_ context.Context, fileID, granteeID string, kind Kind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, g := range s.grants {
		if g.Active && g.FileID == fileID && g.GranteeID == granteeID && g.Kind == kind {
			g.Active = false
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) RevokeAllForFile(_ context.Context, fileID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, g := range s.grants {
		if g.Active && g.FileID == fileID {
			g.Active = false
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DeleteByFile(_ context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, g := range s.grants {
		if g.FileID == fileID {
			delete(s.grants, id)
		}
	}
	return nil
}

func (s *MemoryStore) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, g := range s.grants {
		if g.Active && g.ExpiresAt != nil && !g.ExpiresAt.After(now) {
			g.Active = false
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ListActiveByFile(_ context.Context, fileID string) ([]*Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Grant
	for _, g := range s.grants {
		if g.Active && g.FileID == fileID {
			out = append(out, g.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GrantedAt.Before(out[j].GrantedAt)
	})
	return out, nil
}
