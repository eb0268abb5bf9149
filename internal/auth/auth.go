// Package auth issues and validates opaque bearer tokens for the engine's
// HTTP surface. Tokens are random UUIDs held in memory; password hashes are
// salted SHA-256. The engine itself only ever sees the resolved account id.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("user already exists")

	// ErrIncorrectCredentials is returned on a bad username or password.
	ErrIncorrectCredentials = errors.New("incorrect username or password")

	// ErrInvalidToken is returned when a token is unknown or revoked.
	ErrInvalidToken = errors.New("invalid token")
)

type credentials struct {
	userID int
	salt   [16]byte
	hash   [32]byte
}

// Authenticator is the in-memory session/credential store.
type Authenticator struct {
	mu     sync.RWMutex
	users  map[string]*credentials // by username
	tokens map[string]int          // token -> user id
	nextID int
}

// New creates an empty authenticator.
func New() *Authenticator {
	return &Authenticator{
		users:  make(map[string]*credentials),
		tokens: make(map[string]int),
		nextID: 1,
	}
}

// Register creates an account and returns its user id.
func (a *Authenticator) Register(username, password string) (int, error) {
	if username == "" || password == "" {
		return 0, fmt.Errorf("register: %w", ErrIncorrectCredentials)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, taken := a.users[username]; taken {
		return 0, fmt.Errorf("register %q: %w", username, ErrUserExists)
	}

	c := &credentials{userID: a.nextID}
	a.nextID++
	if _, err := rand.Read(c.salt[:]); err != nil {
		return 0, fmt.Errorf("generate salt: %w", err)
	}
	c.hash = hashPassword(c.salt, password)

	a.users[username] = c
	return c.userID, nil
}

// Login verifies credentials and issues a bearer token.
func (a *Authenticator) Login(username, password string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.users[username]
	if !ok {
		return "", fmt.Errorf("login %q: %w", username, ErrIncorrectCredentials)
	}

	want := hashPassword(c.salt, password)
	if subtle.ConstantTimeCompare(want[:], c.hash[:]) != 1 {
		return "", fmt.Errorf("login %q: %w", username, ErrIncorrectCredentials)
	}

	token := uuid.NewString()
	a.tokens[token] = c.userID
	return token, nil
}

// Logout revokes a token.
func (a *Authenticator) Logout(token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.tokens[token]; !ok {
		return ErrInvalidToken
	}
	delete(a.tokens, token)
	return nil
}

// UserID resolves a bearer token to the account it belongs to.
func (a *Authenticator) UserID(token string) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	id, ok := a.tokens[token]
	if !ok {
		return 0, ErrInvalidToken
	}
	return id, nil
}

func hashPassword(salt [16]byte, password string) [32]byte {
	h := sha256.New()
	h.Write(salt[:])
	h.Write([]byte(password))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
