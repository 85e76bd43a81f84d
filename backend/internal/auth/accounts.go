package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/tonpilot/backend/internal/models"
)

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrBadCredentials covers both unknown users and wrong passwords.
	ErrBadCredentials = errors.New("invalid username or password")
)

// Accounts is the in-memory gateway account store.
type Accounts struct {
	mu     sync.RWMutex
	byName map[string]*models.Account
}

// NewAccounts creates an empty account store.
func NewAccounts() *Accounts {
	return &Accounts{byName: make(map[string]*models.Account)}
}

// Register creates a new account with a bcrypt-hashed password.
func (a *Accounts) Register(username, password string) (*models.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.byName[username]; exists {
		return nil, ErrUsernameTaken
	}
	acct := &models.Account{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	a.byName[username] = acct

	cp := *acct
	return &cp, nil
}

// Authenticate checks a username/password pair.
func (a *Accounts) Authenticate(username, password string) (*models.Account, error) {
	a.mu.RLock()
	acct := a.byName[username]
	a.mu.RUnlock()

	if acct == nil {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}

	cp := *acct
	return &cp, nil
}
