package permission

import "errors"

var (
	ErrInvalidKind   = errors.New("invalid permission kind")
	ErrInvalidGrant  = errors.New("invalid grant")
	ErrGrantNotFound = errors.New("grant not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrStoreNil      = errors.New("store is nil")
	ErrOwnerLookup   = errors.New("owner lookup failed")
)
