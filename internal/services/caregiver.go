package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/neuraltc/capsule-service/internal/auth"
	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/store"
	"github.com/neuraltc/capsule-service/internal/validate"
)

// CaregiverService handles account registration and credential checks.
type CaregiverService struct {
	store store.Store
}

func NewCaregiverService(s store.Store) *CaregiverService {
	return &CaregiverService{store: s}
}

// Register creates a caregiver account with a hashed password.
func (s *CaregiverService) Register(ctx context.Context, name, email, password string) (*model.Caregiver, error) {
	if err := validate.Register(name, email, password); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	c := &model.Caregiver{Name: name, Email: email, PasswordHash: hash}
	return s.store.Caregivers().Create(ctx, c)
}

// Authenticate verifies email/password and returns the caregiver.
func (s *CaregiverService) Authenticate(ctx context.Context, email, password string) (*model.Caregiver, error) {
	c, err := s.store.Caregivers().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, auth.ErrBadCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(c.PasswordHash, password); err != nil {
		return nil, err
	}
	return c, nil
}
