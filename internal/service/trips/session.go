package trips

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/aarondkim/flights/internal/auth"
	"github.com/aarondkim/flights/internal/domain"
	"github.com/aarondkim/flights/internal/repository"
	"github.com/aarondkim/flights/internal/store"
)

// Session is per-connection state: the authenticated user, if any, and the
// itinerary list from the most recent search. The mutex serializes operations
// so a session never runs two at once; sessions are never shared across
// connections.
type Session struct {
	svc *Service

	mu         sync.Mutex
	user       string
	lastSearch []domain.Itinerary
}

func (s *Service) NewSession() *Session {
	return &Session{svc: s}
}

// User returns the logged-in username, or "" if none.
func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = ""
	s.lastSearch = nil
}

// Login authenticates and binds the session to a user. The lookup runs in an
// always-rolled-back transaction: it mutates nothing, the transaction exists
// for a consistent snapshot under the same conflict-retry umbrella as writes.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != "" {
		return domain.ErrAlreadyLoggedIn
	}
	username = strings.ToLower(username)

	var hash []byte
	err := s.svc.store.Read(ctx, func(ctx context.Context, q store.Queryer) error {
		u, err := s.svc.users.Fetch(ctx, q, username)
		if err != nil {
			return err
		}
		hash = u.PasswordHash
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if !auth.Verify(password, hash) {
		return domain.ErrInvalidCredentials
	}

	s.user = username
	s.lastSearch = nil
	return nil
}

// CreateCustomer registers a user with an initial balance. Existence check and
// insert share one transaction so two racing registrations cannot both pass
// the check.
func (s *Session) CreateCustomer(ctx context.Context, username, password string, initialBalance int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if initialBalance < 0 {
		return domain.ErrInvalidInput
	}
	username = strings.ToLower(username)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return s.svc.store.Write(ctx, func(ctx context.Context, q store.Queryer) error {
		_, err := s.svc.users.Fetch(ctx, q, username)
		if err == nil {
			return domain.ErrUserExists
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return s.svc.users.Insert(ctx, q, &domain.User{
			Username:     username,
			PasswordHash: hash,
			Balance:      initialBalance,
		})
	})
}
