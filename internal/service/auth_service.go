package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"cashflow_tracker/internal/log"
	"cashflow_tracker/internal/model"
	"cashflow_tracker/internal/repository"
	"cashflow_tracker/internal/utils"
)

const minPasswordLength = 6

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Profile(ctx context.Context, userID int) (*model.Profile, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
	timeout  time.Duration
	logger   *log.Logger
}

// NewAuthService creates a new AuthService. Every user store call is
// bounded by timeout when it is positive.
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, timeout time.Duration, logger *log.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
		timeout:  timeout,
		logger:   logger.WithComponent(log.ComponentAuth),
	}
}

func (s *authService) storeFailure(ctx context.Context, msg, op string, err error) error {
	s.logger.ErrorContext(ctx, msg,
		log.NewFields().WithRequestID(log.RequestIDFrom(ctx)).WithOperation(op).WithError(err).ToSlice()...)
	return unavailable(err)
}

func (s *authService) createUser(ctx context.Context, user *model.User) error {
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	return s.userRepo.Create(ctx, user)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account and returns a token for it
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, "", invalid("name", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", invalid("email", "must be a valid address")
	}
	if len(password) < minPasswordLength {
		return nil, "", invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Name: name, Email: email, PasswordHash: hashedPassword}
	if err := s.createUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", s.storeFailure(ctx, "Failed to create user", log.OpRegister, err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "User created, but failed to generate token", log.FieldOwnerID, user.ID, log.FieldError, err)
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}
	s.logger.InfoContext(ctx, "User registered", log.FieldOwnerID, user.ID)
	return user, token, nil
}

// Login authenticates a user and returns a JWT token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	user, err := s.userRepo.FindByEmail(storeCtx, normalizeEmail(email))
	if err != nil {
		return nil, "", s.storeFailure(ctx, "Failed to look up user", log.OpLogin, err)
	}
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// Profile returns the public view of the user
func (s *authService) Profile(ctx context.Context, userID int) (*model.Profile, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	user, err := s.userRepo.FindByID(storeCtx, userID)
	if err != nil {
		return nil, s.storeFailure(ctx, "Failed to load profile", log.OpProfile, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return &model.Profile{Name: user.Name, Email: user.Email}, nil
}
