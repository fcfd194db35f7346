package model

import (
	"strings"
	"time"
)

// Identity is the authenticated caller as recovered from a session token.
type Identity struct {
	UserID    uint64
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// CanModify reports whether the caller may mutate a resource owned by ownerID.
func (i Identity) CanModify(ownerID uint64) bool {
	return i.UserID == ownerID || i.IsAdmin()
}

func notBlank(s string) bool { return strings.TrimSpace(s) != "" }
