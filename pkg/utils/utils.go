package utils

import (
	"net/mail"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt looks at.
const MaxPasswordBytes = 72

// dummyHash is compared against when a login does not exist, so unknown and
// known logins cost the same.
const dummyHash = "$2a$10$.IIxpSc3OElWXLV2Wj517eUGmZ64IQgBNQ4OcFbanW85CTrgrIDQy"

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// HashPassword hashes a plain password with bcrypt. Input beyond 72 bytes is
// ignored, exactly as bcrypt itself would.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a plain password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

// BurnPasswordCheck runs a comparison whose result is discarded.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), truncate(password))
}

// IsEmail returns true if the string is a valid email address.
func IsEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
