package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidProfile     = errors.New("invalid profile data")
)

type Service interface {
	Register(ctx context.Context, newUser *User, password string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*User, error)
	// SetAvatar records the new avatar filename and returns the previous
	// one, if any, so the caller can remove the stale file.
	SetAvatar(ctx context.Context, id int64, filename string) (previous *string, err error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, newUser *User, password string) (*User, error) {
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: senha must have at least 6 characters", ErrInvalidProfile)
	}
	if err := validateName(newUser.Name); err != nil {
		return nil, err
	}
	newUser.Name = strings.TrimSpace(newUser.Name)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}
	newUser.PasswordHash = string(hash)

	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create user")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Int64("user_id", newUser.ID).Str("email", newUser.Email).Msg("service: user registered")
	return newUser, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to fetch user for authentication")
		return nil, fmt.Errorf("service: failed to authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	log.Info().Int64("user_id", u.ID).Msg("service: user authenticated")
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to fetch user")
		return nil, fmt.Errorf("service: failed to fetch user: %w", err)
	}

	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*User, error) {
	if update.Name != nil {
		if err := validateName(*update.Name); err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(*update.Name)
		update.Name = &trimmed
	}

	u, err := s.repo.UpdateProfile(ctx, id, update)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to update profile")
		return nil, fmt.Errorf("service: failed to update profile: %w", err)
	}

	log.Info().Int64("user_id", id).Msg("service: profile updated")
	return u, nil
}

func (s *service) SetAvatar(ctx context.Context, id int64, filename string) (*string, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to fetch user for avatar update")
		return nil, fmt.Errorf("service: failed to fetch user for avatar update: %w", err)
	}

	if err := s.repo.UpdateAvatar(ctx, id, filename); err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to update avatar")
		return nil, fmt.Errorf("service: failed to update avatar: %w", err)
	}

	log.Info().Int64("user_id", id).Str("avatar", filename).Msg("service: avatar updated")
	return current.AvatarFilename, nil
}

func validateName(name string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n < 2 || n > 100 {
		return fmt.Errorf("%w: nome must be between 2 and 100 characters", ErrInvalidProfile)
	}
	return nil
}
