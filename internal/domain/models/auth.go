package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the subset of bearer token claims the server reads.
type Claims struct {
	jwt.RegisteredClaims        // sub, iss, aud, exp, iat
	Email                string `json:"email,omitempty"`
	Role                 string `json:"role,omitempty"`
}

// GetSubjectID returns the principal the token was issued to.
func (c *Claims) GetSubjectID() string {
	return c.Subject
}
