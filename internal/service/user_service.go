package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"auth-service/internal/domain"
	"auth-service/internal/repository"
)

var (
	// ErrUserAlreadyExists is returned when the email is already registered.
	ErrUserAlreadyExists = errors.New("email already exists")
	// ErrInvalidUserInput indicates a creation request with missing fields.
	ErrInvalidUserInput = errors.New("invalid user input")
)

// CreateUserInput carries registration fields. Password is plaintext and must not be logged.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserService describes user lifecycle operations.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
}

type userService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService builds a UserService. A non-positive cost selects bcrypt.DefaultCost.
func NewUserService(users repository.UserRepository, bcryptCost int) UserService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		users:      users,
		bcryptCost: bcryptCost,
	}
}

func (s *userService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if firstName == "" || lastName == "" || email == "" || input.Password == "" {
		return nil, ErrInvalidUserInput
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password exceeds 72 bytes", ErrInvalidUserInput)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Role:         domain.RoleCustomer,
		PasswordHash: string(hash),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
