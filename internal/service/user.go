package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DukeRupert/chatquota/internal/domain"
	"github.com/DukeRupert/chatquota/internal/store"
	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// UserService defines the interface for user-related operations.
type UserService interface {
	// Create registers a new user.
	// Returns domain.EINVALID for a malformed email and domain.ECONFLICT when
	// the email is taken.
	Create(ctx context.Context, params domain.CreateUserParams) (*domain.User, error)

	// Get retrieves a user by ID.
	// Returns domain.ENOTFOUND if the user does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// =============================================================================
// Implementation
// =============================================================================

type userService struct {
	users  store.Users
	logger *slog.Logger
	now    Clock
}

// NewUserService creates a new UserService.
func NewUserService(users store.Users, logger *slog.Logger) UserService {
	return &userService{
		users:  users,
		logger: logger,
		now:    utcNow,
	}
}

func (s *userService) Create(ctx context.Context, params domain.CreateUserParams) (*domain.User, error) {
	const op = "user.create"

	email := domain.NormalizeEmail(params.Email)
	if email == "" {
		return nil, domain.NewValidationError(op, "email", "Email is required")
	}
	if !domain.ValidateEmail(email) {
		return nil, domain.NewValidationError(op, "email", "Please enter a valid email address")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, domain.Conflict(op, "A user with this email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, domain.Internal(err, op, "failed to check email")
	}

	now := s.now()
	user := &domain.User{
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, domain.Conflict(op, "A user with this email already exists")
		}
		return nil, domain.Internal(err, op, "failed to create user")
	}

	s.logger.Info("user created", "user_id", user.ID)
	return user, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "user.get"

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, storeErr(err, op, "user", id.String())
	}
	return user, nil
}
