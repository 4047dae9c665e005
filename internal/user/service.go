package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	CreateUser(ctx context.Context, u *User) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateUser(ctx context.Context, u *User) (*User, error) {
	if u.Password == "" {
		return nil, errors.New("service: password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}
	u.Password = string(hash)

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate user id: %w", err)
	}
	u.ID = id.String()

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("service: user created")
	return u, nil
}

func (s *service) GetUserByID(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("user_id", id).Msg("service: failed to fetch user by id")
		return nil, fmt.Errorf("service: failed to fetch user by id: %w", err)
	}
	return u, nil
}

func (s *service) GetAllUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch users")
		return nil, fmt.Errorf("service: failed to fetch users: %w", err)
	}
	return users, nil
}

// UpdateUser re-hashes the password only when a new one was provided; an
// empty Password keeps whatever credential is already stored.
func (s *service) UpdateUser(ctx context.Context, u *User) error {
	if u.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error().Err(err).Msg("service: failed to hash password")
			return fmt.Errorf("service: failed to hash password: %w", err)
		}
		u.Password = string(hash)
	} else {
		current, err := s.repo.GetByID(ctx, u.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("service: failed to fetch user for update: %w", err)
		}
		u.Password = current.Password
	}

	err := s.repo.Update(ctx, u)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUsernameTaken) {
			return err
		}
		log.Error().Err(err).Str("user_id", u.ID).Msg("service: failed to update user")
		return fmt.Errorf("service: failed to update user: %w", err)
	}
	return nil
}

func (s *service) DeleteUser(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Str("user_id", id).Msg("service: failed to delete user")
		return fmt.Errorf("service: failed to delete user: %w", err)
	}
	return nil
}
