package auth

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mamipapa/store-backend/internal/models"
	"github.com/mamipapa/store-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSignupAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewService(users, testLogger())

	user, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Jane Doe",
		Email:    "Jane@Example.com",
		Phone:    "0771234567",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	// Email is normalized and the password is never stored in clear.
	assert.Equal(t, "jane@example.com", user.Email)
	assert.NotEqual(t, "correct-horse-battery", user.Password)
	assert.True(t, strings.HasPrefix(user.Password, "$2a$"))

	loggedIn, tokens, err := svc.Login(context.Background(), "jane@example.com", "correct-horse-battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewService(users, testLogger())

	input := SignupInput{Name: "Jane", Email: "jane@example.com", Password: "correct-horse-battery"}
	_, err := svc.Signup(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), input)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testLogger())

	_, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "short",
	})
	assert.Error(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewService(users, testLogger())

	_, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "jane@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testLogger())

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshIssuesNewTokenPair(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewService(users, testLogger())

	user, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	_, tokens, err := svc.Login(context.Background(), "jane@example.com", "correct-horse-battery")
	require.NoError(t, err)

	refreshed, rotated, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.ID)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEmpty(t, rotated.RefreshToken)
}

func TestRefreshRejectsMalformedToken(t *testing.T) {
	svc := NewService(newFakeUserRepo(), testLogger())

	_, _, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewService(users, testLogger())

	user, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	_, tokens, err := svc.Login(context.Background(), "jane@example.com", "correct-horse-battery")
	require.NoError(t, err)

	users.mu.Lock()
	delete(users.users, user.ID)
	users.mu.Unlock()

	_, _, err = svc.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
