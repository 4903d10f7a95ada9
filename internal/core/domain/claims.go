package domain

import "time"

// Claims are the identity facts carried by a signed access token.
type Claims struct {
	Username  string
	SubjectID int64
	Role      Role

	// Set by the issuer when signing; zero on input.
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
