// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RoleAdmin unlocks company-wide reports and user management. Every other
// role is treated as a sales representative limited to their own records.
const RoleAdmin = "admin"

// Identity is the authenticated caller as seen by handlers.
type Identity interface {
	UserID() uuid.UUID
	Roles() []string
	HasRole(role string) bool
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID { return i.userID }
func (i *identity) Roles() []string   { return i.roles }

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

func (i *identity) IsAuthenticated() bool { return i.authenticated }

// GetIdentity reads the identity stored by AuthRequired. It never returns
// nil; without a valid user ID the identity is unauthenticated.
func GetIdentity(c *gin.Context) Identity {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	uid, ok := raw.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	var roles []string
	if v, ok := c.Get(ContextRolesKey); ok {
		roles, _ = v.([]string)
	}
	return &identity{userID: uid, roles: roles, authenticated: true}
}

// IsAdmin reports whether the identity carries the admin role.
func IsAdmin(id Identity) bool {
	return id != nil && id.HasRole(RoleAdmin)
}

// MustGetIdentity aborts with 401 and returns nil when the caller is not
// authenticated.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}

// ScopeUserID resolves whose records a report covers. Representatives are
// always pinned to themselves; admins get the optional UUID in query param,
// nil meaning everyone. ok is false when a response has been written.
func ScopeUserID(c *gin.Context, param string) (userID *uuid.UUID, ok bool) {
	id := MustGetIdentity(c)
	if id == nil {
		return nil, false
	}
	if !IsAdmin(id) {
		self := id.UserID()
		return &self, true
	}
	userID, err := ParseOptionalUUIDQuery(c, param)
	if HandleError(c, err) {
		return nil, false
	}
	return userID, true
}
