package auth

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth

var (
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type usersRepo interface {
	Add(ctx context.Context, username, passwordHash string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// Service is the credential store plus session orchestration: it verifies
// credentials against the users table and binds successful logins to
// server side session state.
type Service struct {
	repo     usersRepo
	sessions *SessionStore
}

func NewService(repo usersRepo, sessions *SessionStore) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
	}
}

func (s *Service) Register(ctx context.Context, username, password, confirmPassword string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.register")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	user, err := s.repo.Add(ctx, username, pkg.HashPassword(password))
	if err != nil {
		return nil, err
	}

	log.Debugf("new user registered: %s", user.Username)
	return user, nil
}

// Login authenticates the user and, on success, creates a new session,
// returning its token. Any number of attempts is permitted.
func (s *Service) Login(ctx context.Context, username, password string) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Tracef("[username] failed login attempt for user: %s", username)
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !pkg.CheckPasswordHash(password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", username)
		return "", ErrInvalidCredentials
	}

	return s.sessions.Create(ctx, user, time.Now())
}

// Logout clears the session state unconditionally.
func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.logout")
	defer span.End()

	return s.sessions.Delete(ctx, token)
}
