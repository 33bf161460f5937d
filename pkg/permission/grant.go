package permission

import (
	"time"

	"github.com/google/uuid"
)

// Kind is a capability on a file.
type Kind string

const (
	KindRead   Kind = "read"
	KindWrite  Kind = "write"
	KindDelete Kind = "delete"
	KindManage Kind = "manage" // Allows granting and revoking other users' access
)

// Valid reports whether k is a known capability.
func (k Kind) Valid() bool {
	switch k {
	case KindRead, KindWrite, KindDelete, KindManage:
		return true
	}
	return false
}

// Grant ties a user to one capability on one file. A nil ExpiresAt means the
// grant is permanent.
//
// At most one active grant exists per (FileID, GranteeID, Kind). Validity is
// always computed at read time via ValidAt: the Active flag alone is never
// trusted, since the expiry sweep that clears it runs eventually, not
// instantly.
type Grant struct {
	ID        string
	FileID    string
	GranteeID string
	Kind      Kind
	GrantedAt time.Time
	ExpiresAt *time.Time
	Active    bool
	GrantedBy string
}

// NewGrant builds an active grant stamped at now.
func NewGrant(fileID, granteeID string, kind Kind, expiresAt *time.Time, grantedBy string, now time.Time) *Grant {
	var exp *time.Time
	if expiresAt != nil {
		t := *expiresAt
		exp = &t
	}
	return &Grant{
		ID:        uuid.NewString(),
		FileID:    fileID,
		GranteeID: granteeID,
		Kind:      kind,
		GrantedAt: now,
		ExpiresAt: exp,
		Active:    true,
		GrantedBy: grantedBy,
	}
}

// ValidAt reports whether the grant confers its capability at the given
// instant: active and either permanent or not yet expired.
func (g *Grant) ValidAt(now time.Time) bool {
	if !g.Active {
		return false
	}
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}

// Clone returns a deep copy of the grant.
func (g *Grant) Clone() *Grant {
	cp := *g
	if g.ExpiresAt != nil {
		t := *g.ExpiresAt
		cp.ExpiresAt = &t
	}
	return &cp
}
