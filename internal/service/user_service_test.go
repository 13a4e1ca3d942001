package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"auth-service/internal/domain"
	"auth-service/internal/repository"
)

func TestUserServiceCreate(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	svc := NewUserService(repo, bcrypt.MinCost)

	user, err := svc.Create(ctx, CreateUserInput{
		FirstName: " Ann ",
		LastName:  "Lee",
		Email:     "Ann@Example.com",
		Password:  "Secr3t!",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "Ann", user.FirstName)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.Empty(t, user.PasswordHash, "returned user must not expose the hash")

	stored, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "Secr3t!", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Secr3t!")))
}

func TestUserServiceCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newFakeUserRepo(), bcrypt.MinCost)
	input := CreateUserInput{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "Secr3t!"}

	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	_, err = svc.Create(ctx, input)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserServiceCreateStoreRejectsDuplicate(t *testing.T) {
	repo := newFakeUserRepo()
	repo.createErr = repository.ErrDuplicate
	svc := NewUserService(repo, bcrypt.MinCost)

	_, err := svc.Create(context.Background(), CreateUserInput{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "Secr3t!"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserServiceCreateErrors(t *testing.T) {
	t.Run("missing field", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), bcrypt.MinCost)
		_, err := svc.Create(context.Background(), CreateUserInput{FirstName: "Ann", LastName: "Lee", Password: "Secr3t!"})
		assert.ErrorIs(t, err, ErrInvalidUserInput)
	})

	t.Run("password longer than 72 bytes", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(repo, bcrypt.MinCost)
		_, err := svc.Create(context.Background(), CreateUserInput{
			FirstName: "Ann",
			LastName:  "Lee",
			Email:     "ann@example.com",
			Password:  strings.Repeat("é", 40),
		})
		assert.ErrorIs(t, err, ErrInvalidUserInput)
		assert.Empty(t, repo.byEmail)
	})

	t.Run("store failure is forwarded", func(t *testing.T) {
		repo := newFakeUserRepo()
		boom := errors.New("disk full")
		repo.createErr = boom
		svc := NewUserService(repo, bcrypt.MinCost)

		_, err := svc.Create(context.Background(), CreateUserInput{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "Secr3t!"})
		assert.ErrorIs(t, err, boom)
	})
}
