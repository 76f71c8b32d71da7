package session

import "time"

// Claims are the informational claims carried by a JWT access token. They are
// read without verifying the signature and must never drive authorisation or
// refresh decisions.
type Claims struct {
	TokenType string    `json:"tokenType,omitempty" yaml:"tokenType,omitempty"`
	UserID    string    `json:"userID,omitempty" yaml:"userID,omitempty"`
	Subject   string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	TokenID   string    `json:"tokenID,omitempty" yaml:"tokenID,omitempty"`
	IssuedAt  time.Time `json:"issuedAt,omitzero" yaml:"issuedAt,omitempty"`
	Expiry    time.Time `json:"expiry,omitzero" yaml:"expiry,omitempty"`
}

// Expired reports whether the claims carry an expiry that lies before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.Expiry.IsZero() && now.After(c.Expiry)
}
