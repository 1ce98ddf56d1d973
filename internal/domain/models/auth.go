package models

import "github.com/golang-jwt/jwt/v5"

// Role is the kind of organization a user acts for
type Role string

const (
	RoleBank     Role = "bank"
	RoleClient   Role = "client"
	RoleInvestor Role = "investor"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleBank, RoleClient, RoleInvestor:
		return true
	}
	return false
}

// Claims is the JWT claim set issued to deal room users.
// OrgID is the bank, client or investor organization the user belongs to.
type Claims struct {
	jwt.RegisteredClaims        // sub, exp, iat, ...
	Email                string `json:"email,omitempty"`
	Role                 Role   `json:"role"`
	OrgID                string `json:"org_id"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// Principal returns the authenticated caller described by the claims
func (c *Claims) Principal() *Principal {
	return &Principal{
		UserID: c.Subject,
		Role:   c.Role,
		OrgID:  c.OrgID,
	}
}

// Principal is the authenticated caller attached to a request
type Principal struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	OrgID  string `json:"org_id"`
}

// HasRole reports whether the principal holds one of roles
func (p *Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
