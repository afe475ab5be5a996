package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/voicecart/backend/internal/domain"
)

// SessionService tracks which users are logged in. Identity is the user name
// alone; logging in again under the same name restores the same cart.
type SessionService struct {
	carts    *CartService
	mu       sync.RWMutex
	sessions map[string]*domain.UserSession
	now      func() time.Time
	logger   logrus.FieldLogger
}

// NewSessionService creates a session service backed by carts
func NewSessionService(carts *CartService, logger logrus.FieldLogger) *SessionService {
	return &SessionService{
		carts:    carts,
		sessions: make(map[string]*domain.UserSession),
		now:      time.Now,
		logger:   orStandardLogger(logger),
	}
}

// Login starts a session and returns the user's persisted cart.
// Returning is true when the user already has a stored cart with items.
func (s *SessionService) Login(ctx context.Context, userName string) (*domain.UserSession, error) {
	userName, err := validUserName(userName)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.Get(ctx, userName)
	if err != nil {
		return nil, err
	}

	session := &domain.UserSession{
		UserName:  userName,
		Cart:      cart,
		Returning: !cart.CreatedAt.IsZero(),
		StartedAt: s.now().UTC(),
	}
	session.Message = welcomeMessage(session)

	s.mu.Lock()
	s.sessions[userName] = session
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user":      userName,
		"returning": session.Returning,
		"items":     cart.TotalItems(),
	}).Info("user logged in")

	return session, nil
}

// Logout ends the session and drops the cached cart. The stored cart is kept
// for the next login. Logging out without a session is a no-op.
func (s *SessionService) Logout(ctx context.Context, userName string) error {
	userName, err := validUserName(userName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	_, active := s.sessions[userName]
	delete(s.sessions, userName)
	s.mu.Unlock()

	s.carts.Flush(ctx, userName)

	if active {
		s.logger.WithField("user", userName).Info("user logged out")
	}
	return nil
}

// Active returns the current session for a user, if any
func (s *SessionService) Active(userName string) (*domain.UserSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userName]
	if !ok {
		return nil, false
	}
	cp := *session
	return &cp, true
}

func welcomeMessage(session *domain.UserSession) string {
	if !session.Returning {
		return fmt.Sprintf("Welcome %s! Start shopping with voice commands.", session.UserName)
	}
	if n := len(session.Cart.Entries); n > 0 {
		return fmt.Sprintf("Welcome back %s! You have %d item(s) in your cart.", session.UserName, n)
	}
	return fmt.Sprintf("Welcome back %s!", session.UserName)
}
