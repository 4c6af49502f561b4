package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `db:"id" bson:"_id" json:"id"`
	Name         string    `db:"name" bson:"name" json:"name"`
	Email        string    `db:"email" bson:"email" json:"email"`
	PasswordHash string    `db:"password_hash" bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `db:"created_at" bson:"createdAt" json:"createdAt"`
}

// Identity is the verified caller carried by a session token.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	// ExpiresAt is when the token stops being valid; zero when unknown.
	ExpiresAt time.Time `json:"-"`
}

// NormalizeEmail lower-cases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
