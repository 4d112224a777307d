package service

import (
	"context"
	"fmt"
	"time"

	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/repository"
)

// Session is the authenticated caller attached to a request context.
type Session struct {
	UserID    int64
	ExpiresAt time.Time
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// SessionService confirms a session is still live right before a write.
type SessionService interface {
	Affirm(ctx context.Context, userID int64) (Session, error)
}

type sessionService struct {
	users repository.UserRepository
	now   func() time.Time
}

func NewSessionService(users repository.UserRepository) SessionService {
	return &sessionService{users: users, now: time.Now}
}

func (s *sessionService) Affirm(ctx context.Context, userID int64) (Session, error) {
	sess, ok := SessionFrom(ctx)
	if !ok {
		return Session{}, fmt.Errorf("%w: no session", apperr.ErrAuth)
	}
	if sess.UserID != userID {
		return Session{}, fmt.Errorf("%w: session belongs to another user", apperr.ErrAuth)
	}
	if !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt) {
		return Session{}, fmt.Errorf("%w: session expired", apperr.ErrAuth)
	}

	user, found, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", apperr.ErrAuth, err)
	}
	if !found || user.Disabled {
		return Session{}, fmt.Errorf("%w: user %d is not active", apperr.ErrAuth, userID)
	}
	return sess, nil
}
