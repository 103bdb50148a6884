package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RestVisor/restvisor-back/internal/domain"
	"github.com/RestVisor/restvisor-back/internal/repository"
)

type fakeUserRepo struct {
	users  map[string]domain.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return domain.User{}, repository.ErrUserEmailExists
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := f.users[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo)

		user, err := svc.Signup(ctx, domain.User{
			Email:    "ana@restvisor.test",
			Password: "secret123",
			Name:     "Ana",
			Role:     domain.RoleWaiter,
		})

		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.NotEqual(t, "secret123", repo.users["ana@restvisor.test"].Password)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo)

		_, err := svc.Signup(ctx, domain.User{Email: "ana@restvisor.test", Password: "secret123"})
		require.NoError(t, err)

		_, err = svc.Signup(ctx, domain.User{Email: "ana@restvisor.test", Password: "secret123"})
		assert.ErrorIs(t, err, ErrUserEmailExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Signup(ctx, domain.User{Email: "ana@restvisor.test", Password: "secret123"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Login(ctx, "ana@restvisor.test", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "ana@restvisor.test", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "ana@restvisor.test", "nope12345")

		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "bob@restvisor.test", "secret123")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
