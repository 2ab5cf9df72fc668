package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"messagely/internal/auth"
	"messagely/internal/domain"
	"messagely/internal/repository"
)

type memoryUsers struct {
	mu        sync.Mutex
	users     map[string]domain.User
	calls     int
	createErr error
	getErr    error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]domain.User{}}
}

func (m *memoryUsers) Init(context.Context) error { return nil }

func (m *memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[user.Username]; ok {
		return repository.ErrDuplicateUsername
	}
	m.users[user.Username] = *user
	return nil
}

func (m *memoryUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memoryUsers) UpdateLastLogin(_ context.Context, username string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	u, ok := m.users[username]
	if !ok {
		return repository.ErrNotFound
	}
	u.LastLogin = &at
	m.users[username] = u
	return nil
}

type countingHasher struct {
	auth.PasswordHasher
	mu     sync.Mutex
	hashes int
	checks int
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.mu.Lock()
	h.hashes++
	h.mu.Unlock()
	return h.PasswordHasher.Hash(password)
}

func (h *countingHasher) Check(password, hash string) bool {
	h.mu.Lock()
	h.checks++
	h.mu.Unlock()
	return h.PasswordHasher.Check(password, hash)
}

type fixture struct {
	svc    AuthService
	users  *memoryUsers
	hasher *countingHasher
	tokens *auth.TokenIssuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bh, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer("test_secret_key", 0)
	require.NoError(t, err)

	users := newMemoryUsers()
	hasher := &countingHasher{PasswordHasher: bh}
	svc, err := NewAuthService(users, hasher, tokens)
	require.NoError(t, err)

	hasher.hashes, hasher.checks = 0, 0
	return &fixture{svc: svc, users: users, hasher: hasher, tokens: tokens}
}

func TestRegister_ReturnsOnlyNames(t *testing.T) {
	f := newFixture(t)

	profile, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "alice", Password: "pw123", FirstName: "A", LastName: "L",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Profile{FirstName: "A", LastName: "L"}, profile)
}

func TestRegister_PersistsHashNotPlaintext(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	stored := f.users.users["alice"]
	assert.NotEqual(t, "pw123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw123")))
	assert.False(t, stored.JoinAt.IsZero())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Username: "alice", Password: "pw123", FirstName: "A"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterInput{Username: "alice", Password: "different", FirstName: "B"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	assert.Equal(t, "Username taken.", err.Error())
}

func TestRegister_StorageFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.users.createErr = errors.New("connection refused")

	_, err := f.svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "pw123"})
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestRegister_PasswordTooLong(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "alice", Password: strings.Repeat("x", 73),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, f.users.calls)
}

func TestValidationHappensBeforeStorageOrHashing(t *testing.T) {
	cases := []struct {
		name     string
		username string
		password string
	}{
		{"both missing", "", ""},
		{"username missing", "", "pw123"},
		{"password missing", "alice", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			_, err := f.svc.Register(ctx, RegisterInput{Username: tc.username, Password: tc.password})
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, "Username and password required", err.Error())

			_, err = f.svc.Login(ctx, tc.username, tc.password)
			assert.ErrorIs(t, err, domain.ErrValidation)

			assert.Zero(t, f.users.calls)
			assert.Zero(t, f.hasher.hashes)
			assert.Zero(t, f.hasher.checks)
		})
	}
}

func TestRegister_StoresUsernameVerbatim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Username: " carol ", Password: "pw123"})
	require.NoError(t, err)
	assert.Contains(t, f.users.users, " carol ")
	assert.NotContains(t, f.users.users, "carol")

	_, err = f.svc.Login(ctx, "carol", "pw123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	token, err := f.svc.Login(ctx, " carol ", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterInput{Username: "alice", Password: "pw123", FirstName: "A", LastName: "L"})
	require.NoError(t, err)

	token, err := f.svc.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := f.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	assert.NotNil(t, f.users.users["alice"].LastLogin)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterInput{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, "alice", "wrongpw")
	_, unknownUser := f.svc.Login(ctx, "nonexistent", "anything")

	assert.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownUser)
	assert.Equal(t, "Invalid username/password", unknownUser.Error())
	assert.Nil(t, f.users.users["alice"].LastLogin)
}

func TestLogin_UnknownUserStillRunsHashComparison(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), "nonexistent", "anything")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, 1, f.hasher.checks)
}

func TestLogin_StorageFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.users.getErr = errors.New("connection refused")

	_, err := f.svc.Login(context.Background(), "alice", "pw123")
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}
