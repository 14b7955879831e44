// Password hashing for email accounts.
//
// WHY BCRYPT?
// A password hash should be slow on purpose. Checking one password at sign-in
// costs a fraction of a second, while an attacker holding a dumped users table
// has to pay that price for every guess.
//
// bcrypt also salts each hash with fresh random bytes and writes the salt and
// cost into its output, so two accounts with the same password store
// different strings and no separate salt column is needed:
//
//	$2a$12$<22-char salt><31-char hash>
//	    ^^
//	    cost: 2^12 rounds
package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor for stored account passwords.
//
// COST TUNING:
// Each step doubles the work. Pick the cost that takes roughly 200-300ms on
// the production host; 12 lands there on current hardware. Lower makes
// offline cracking cheap, higher makes sign-in sluggish and lets a burst of
// logins pin the CPU. Existing hashes keep the cost they were made with, so
// raising it later only affects new passwords.
const DefaultCost = 12

// MaxPasswordBytes is bcrypt's input limit. Longer input is rejected rather
// than silently truncated: otherwise two passwords sharing their first 72
// bytes would both unlock the account. Hangul takes 3 bytes per syllable in
// UTF-8, so the limit is 24 syllables, not 72.
const MaxPasswordBytes = 72

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService hashes and verifies account passwords with bcrypt.
type PasswordService struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewPasswordService creates a PasswordService with DefaultCost.
func NewPasswordService() *PasswordService {
	return NewPasswordServiceWithCost(DefaultCost)
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Tests use bcrypt.MinCost; production code should not.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the self-describing bcrypt hash of plaintext.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks plaintext against a stored hash. It returns ErrPasswordMismatch
// on a wrong password.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// VerifyNothing spends the same time as a real Verify. Sign-in calls it when
// the email is unknown so response timing does not reveal which emails exist.
func (p *PasswordService) VerifyNothing(plaintext string) {
	p.dummyOnce.Do(func() {
		p.dummy, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), p.cost)
	})
	_ = bcrypt.CompareHashAndPassword(p.dummy, []byte(plaintext))
}
