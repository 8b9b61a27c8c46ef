package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/foyer/internal/model"
)

// HashCode hashes a 4-digit parent code for the auth.parent_code_hash
// setting.
func HashCode(code string) (string, error) {
	if len(code) != 4 || !isDigits(code) {
		return "", &model.ValidationError{Field: "code", Message: "code must be exactly 4 digits"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verifier checks parent codes against a bcrypt hash.
type Verifier struct {
	hash []byte
}

func NewVerifier(hash string) (*Verifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, errors.New("parent code hash is not a bcrypt hash")
	}
	return &Verifier{hash: []byte(hash)}, nil
}

func (v *Verifier) VerifyParentCode(input string) bool {
	return bcrypt.CompareHashAndPassword(v.hash, []byte(input)) == nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
