package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"poll-server/internal/directory"
	"poll-server/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	// ErrInvalidRegistrationPassword indicates the registration secret is incorrect.
	ErrInvalidRegistrationPassword = fmt.Errorf("%w: invalid registration password", domain.ErrForbidden)
	// ErrUserAlreadyExists is returned when attempting to register with an existing username.
	ErrUserAlreadyExists = fmt.Errorf("%w: user already exists", domain.ErrConflict)
)

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, username, password, providedSecret string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type userService struct {
	gate           *SnapshotGate
	registerSecret string
	cost           int
}

// NewUserService builds a UserService. An empty registerSecret leaves
// registration open; cost <= 0 selects bcrypt.DefaultCost.
func NewUserService(gate *SnapshotGate, registerSecret string, cost int) UserService {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &userService{
		gate:           gate,
		registerSecret: strings.TrimSpace(registerSecret),
		cost:           cost,
	}
}

func (s *userService) Register(ctx context.Context, username, password, providedSecret string) (user *domain.User, err error) {
	defer func() { observe("register", err) }()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", domain.ErrInvalidInput)
	}
	if s.registerSecret != "" &&
		subtle.ConstantTimeCompare([]byte(strings.TrimSpace(providedSecret)), []byte(s.registerSecret)) != 1 {
		return nil, ErrInvalidRegistrationPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created domain.User
	err = s.gate.Update(ctx, func(snap domain.Snapshot, _ time.Time) (domain.Snapshot, error) {
		next, u, err := directory.Register(snap, username, string(hash))
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return snap, ErrUserAlreadyExists
			}
			return snap, err
		}
		created = u
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return sanitizeUser(&created), nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (user *domain.User, err error) {
	defer func() { observe("login", err) }()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", domain.ErrInvalidInput)
	}

	found, ok := directory.FindByUsername(s.gate.View(ctx), username)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return sanitizeUser(&found), nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	found, ok := directory.FindByUsername(s.gate.View(ctx), username)
	if !ok {
		return nil, fmt.Errorf("%w: unknown user", domain.ErrUnauthorized)
	}
	return sanitizeUser(&found), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:       user.ID,
		Username: user.Username,
	}
}
