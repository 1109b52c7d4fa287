package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/juantovo/task-manager-api/internal/logging"
	"github.com/juantovo/task-manager-api/internal/user"
)

// memUserRepo is an in-memory user.Repository for tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]user.User)}
}

func (r *memUserRepo) Create(ctx context.Context, name, email, passwordHash string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return nil, user.ErrDuplicateEmail
		}
	}

	u := user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	r.users[u.ID] = u
	return &u, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *memUserRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUserRepo) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	for id, other := range r.users {
		if id != u.ID && other.Email == u.Email {
			return user.ErrDuplicateEmail
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type recordingMailer struct {
	mu      sync.Mutex
	welcome []string
}

func (m *recordingMailer) SendWelcomeEmail(ctx context.Context, toEmail, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcome = append(m.welcome, toEmail)
	return nil
}

func newTestService(t *testing.T) (*Service, *memUserRepo, *RedisSessionRepository) {
	t.Helper()

	repo := newMemUserRepo()
	sessions, _ := newTestSessionRepo(t)
	tokens, err := NewPasetoService(testPasetoKey())
	require.NoError(t, err)

	svc := NewService(repo, sessions, tokens, nil, logging.NewLogger(true), 10*time.Hour)
	return svc, repo, sessions
}

func TestService_Register(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	u, token, err := svc.Register(ctx, "Juan Tovo", "juan.tovo@test.com", "test123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "Juan Tovo", u.Name)
	require.Equal(t, "juan.tovo@test.com", u.Email)

	// The plaintext never survives registration.
	require.NotEqual(t, "test123", u.PasswordHash)
	require.True(t, user.VerifyPassword(u.PasswordHash, "test123"))

	// The fresh token is live for this user.
	live, err := sessions.Contains(ctx, u.ID, token)
	require.NoError(t, err)
	require.True(t, live)
}

func TestService_Register_SendsWelcomeEmail(t *testing.T) {
	repo := newMemUserRepo()
	sessions, _ := newTestSessionRepo(t)
	tokens, err := NewPasetoService(testPasetoKey())
	require.NoError(t, err)
	mailer := &recordingMailer{}

	svc := NewService(repo, sessions, tokens, mailer, logging.NewLogger(true), 10*time.Hour)

	_, _, err = svc.Register(context.Background(), "Juan Tovo", "juan.tovo@test.com", "test123")
	require.NoError(t, err)

	// Mail goes out on a detached goroutine.
	require.Eventually(t, func() bool {
		mailer.mu.Lock()
		defer mailer.mu.Unlock()
		return len(mailer.welcome) == 1 && mailer.welcome[0] == "juan.tovo@test.com"
	}, time.Second, 10*time.Millisecond)
}

func TestService_Register_TrimsNameAndEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	u, _, err := svc.Register(context.Background(), "  Juan Tovo  ", "  juan.tovo@test.com ", "test123")
	require.NoError(t, err)
	require.Equal(t, "Juan Tovo", u.Name)
	require.Equal(t, "juan.tovo@test.com", u.Email)
}

func TestService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "", "a@test.com", "pw")
	require.ErrorIs(t, err, ErrNameRequired)

	_, _, err = svc.Register(ctx, "A", "", "pw")
	require.ErrorIs(t, err, ErrEmailRequired)

	_, _, err = svc.Register(ctx, "A", "a@test.com", "")
	require.ErrorIs(t, err, ErrPasswordRequired)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Juan Tovo", "juan.tovo@test.com", "test123")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Someone Else", "juan.tovo@test.com", "other")
	require.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestService_Login_GenericFailure(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Mike Nell", "mike.nell@test.com", "test123")
	require.NoError(t, err)

	// Unknown email and wrong password both collapse into the same error,
	// so login cannot be used to probe for accounts.
	_, _, unknownErr := svc.Login(ctx, "nobody@test.com", "test123")
	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)

	_, _, wrongErr := svc.Login(ctx, "mike.nell@test.com", "wrongPassword")
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
}

func TestService_Login_StartsNewSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	registered, first, err := svc.Register(ctx, "Mike Nell", "mike.nell@test.com", "test123")
	require.NoError(t, err)

	loggedIn, second, err := svc.Login(ctx, "mike.nell@test.com", "test123")
	require.NoError(t, err)
	require.Equal(t, registered.ID, loggedIn.ID)
	require.NotEqual(t, first, second)

	for _, token := range []string{first, second} {
		live, err := sessions.Contains(ctx, registered.ID, token)
		require.NoError(t, err)
		require.True(t, live)
	}
}

func TestService_Logout_RevokesOnlyThatToken(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	u, first, err := svc.Register(ctx, "Mike Nell", "mike.nell@test.com", "test123")
	require.NoError(t, err)
	_, second, err := svc.Login(ctx, "mike.nell@test.com", "test123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, u.ID, first))

	live, err := sessions.Contains(ctx, u.ID, first)
	require.NoError(t, err)
	require.False(t, live)

	live, err = sessions.Contains(ctx, u.ID, second)
	require.NoError(t, err)
	require.True(t, live)
}

func TestService_LogoutAll_RevokesEverySession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	u, first, err := svc.Register(ctx, "Mike Nell", "mike.nell@test.com", "test123")
	require.NoError(t, err)
	_, second, err := svc.Login(ctx, "mike.nell@test.com", "test123")
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, u.ID))

	for _, token := range []string{first, second} {
		live, err := sessions.Contains(ctx, u.ID, token)
		require.NoError(t, err)
		require.False(t, live)
	}
}
