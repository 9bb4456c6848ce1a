package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/juju/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
	"github.com/wadjakorntonsri/studio-site/pkg/ports"
)

const minPasswordLength = 8

type AuthService struct {
	repo ports.UserRepository
	cost int
	now  func() time.Time
}

func NewAuthService(repo ports.UserRepository) *AuthService {
	return &AuthService{repo: repo, cost: bcrypt.DefaultCost, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignIn checks an admin's password. Unknown e-mails and wrong passwords
// produce the same error.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.AdminUser, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, errors.NewNotValid(nil, "email and password are required")
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, errors.Annotate(err, "looking up admin")
	}
	if user == nil {
		return nil, errors.NewUnauthorized(nil, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Infof("failed sign-in for %s", email)
		return nil, errors.NewUnauthorized(nil, "invalid credentials")
	}
	return user, nil
}

func (s *AuthService) hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", errors.NewNotValid(nil, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errors.Annotate(err, "hashing password")
	}
	return string(hashed), nil
}

func (s *AuthService) CreateAdmin(ctx context.Context, email, password string) (*domain.AdminUser, error) {
	email = normalizeEmail(email)
	if err := validEmail(email); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, errors.Annotate(err, "looking up admin")
	}
	if existing != nil {
		return nil, errors.AlreadyExistsf("admin %s", email)
	}

	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user := &domain.AdminUser{Email: email, PasswordHash: hashed, CreatedAt: s.now()}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, errors.Annotate(err, "creating admin")
	}
	logger.Infof("created admin %s", email)
	return user, nil
}

func (s *AuthService) SetPassword(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return errors.Annotate(err, "looking up admin")
	}
	if user == nil {
		return errors.NotFoundf("admin %s", email)
	}

	hashed, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return errors.Annotate(err, "updating password")
	}
	return nil
}
