package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/ecomapp/storefront/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MinPasswordLength applies to profile password changes.
const MinPasswordLength = 6

var (
	ErrEmailNotRegistered = errors.New("email is not registered")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWrongAnswer        = errors.New("wrong email or answer")
	ErrPasswordTooShort   = errors.New("password is required and 6 character long")
	ErrFieldRequired      = errors.New("required field is empty")
)

// RegisterInput carries the fields of a new account. All are required.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Answer   string
}

// ProfileUpdate carries optional profile changes; empty fields keep the
// stored value.
type ProfileUpdate struct {
	Name     string
	Password string
	Phone    string
	Address  string
}

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// Normalize trims surrounding whitespace from every field but the password.
func (in *RegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.Answer = strings.TrimSpace(in.Answer)
}

// Register creates a user with the customer role and a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Normalize()
	for _, v := range []string{in.Name, in.Email, in.Password, in.Phone, in.Address, in.Answer} {
		if v == "" {
			return nil, ErrFieldRequired
		}
	}
	if len(in.Password) > MaxPasswordLength {
		return nil, ErrPasswordTooLong
	}
	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicate
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Phone:    in.Phone,
		Address:  in.Address,
		Answer:   in.Answer,
		Role:     models.RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate verifies email and password and returns the stored user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrEmailNotRegistered
	}
	if !CheckPassword(password, u.Password) {
		return nil, ErrInvalidPassword
	}
	return u, nil
}

// ResetPassword replaces the password when email and security answer match.
func (s *Service) ResetPassword(ctx context.Context, email, answer, newPassword string) error {
	if len(newPassword) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	if u == nil || subtle.ConstantTimeCompare([]byte(u.Answer), []byte(answer)) != 1 {
		return ErrWrongAnswer
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, u.ID, hash)
}

// UpdateProfile applies non-empty fields of in. Email cannot be changed.
func (s *Service) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileUpdate) (*models.User, error) {
	if in.Password != "" && len(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if len(in.Password) > MaxPasswordLength {
		return nil, ErrPasswordTooLong
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	if in.Address != "" {
		u.Address = in.Address
	}
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	return s.repo.Update(ctx, u)
}

func (s *Service) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.List(ctx)
}

// SetRole changes the role of the user registered under email.
func (s *Service) SetRole(ctx context.Context, email string, role int) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrEmailNotRegistered
	}
	if err := s.repo.SetRole(ctx, u.ID, role); err != nil {
		return nil, err
	}
	u.Role = role
	return u, nil
}
