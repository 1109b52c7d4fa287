package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/juantovo/task-manager-api/internal/logging"
	"github.com/juantovo/task-manager-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
)

// WelcomeMailer sends the post-registration notification. Failures are
// logged, never surfaced to the client.
type WelcomeMailer interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
}

// Service is the credential store: it verifies credentials, mints session
// tokens and maintains the per-user revocation list.
type Service struct {
	users         user.Repository
	sessions      SessionRepository
	tokens        TokenService
	mailer        WelcomeMailer
	logger        *logging.Logger
	tokenDuration time.Duration
}

func NewService(
	users user.Repository,
	sessions SessionRepository,
	tokens TokenService,
	mailer WelcomeMailer,
	logger *logging.Logger,
	tokenDuration time.Duration,
) *Service {
	return &Service{
		users:         users,
		sessions:      sessions,
		tokens:        tokens,
		mailer:        mailer,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// Register creates an account and starts its first session. The password is
// hashed before anything is persisted and the plaintext is not retained.
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, "", ErrNameRequired
	}
	if email == "" {
		return nil, "", ErrEmailRequired
	}
	if password == "" {
		return nil, "", ErrPasswordRequired
	}

	passwordHash, err := user.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, name, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, "", user.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.startSession(ctx, newUser.ID)
	if err != nil {
		return nil, "", err
	}

	if s.mailer != nil {
		go func() {
			// Detached from the request context so mail delivery survives
			// the response being sent.
			if err := s.mailer.SendWelcomeEmail(context.Background(), newUser.Email, newUser.Name); err != nil {
				s.logger.Warn("failed to send welcome email", "email", newUser.Email, "error", err)
			}
		}()
	}

	return newUser, token, nil
}

// Login verifies credentials and starts a new session. Both an unknown email
// and a wrong password yield the same ErrInvalidCredentials so the endpoint
// cannot be used to enumerate accounts.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !user.VerifyPassword(existing.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.startSession(ctx, existing.ID)
	if err != nil {
		return nil, "", err
	}

	return existing, token, nil
}

// Logout revokes the exact token the request authenticated with. Other
// sessions of the same user stay live.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, token string) error {
	if err := s.sessions.Remove(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to revoke session token: %w", err)
	}
	return nil
}

// LogoutAll revokes every live token for the user at once.
func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke session tokens: %w", err)
	}
	return nil
}

// startSession mints a token and appends it to the user's revocation list.
func (s *Service) startSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.tokens.CreateToken(userID.String(), s.tokenDuration)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	if err := s.sessions.Append(ctx, userID, token, s.tokenDuration); err != nil {
		return "", fmt.Errorf("failed to store session token: %w", err)
	}

	return token, nil
}
