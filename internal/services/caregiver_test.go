package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuraltc/capsule-service/internal/auth"
	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/store"
)

type fakeCaregivers struct {
	byEmail map[string]*model.Caregiver
}

func (f *fakeCaregivers) Create(_ context.Context, c *model.Caregiver) (*model.Caregiver, error) {
	if _, dup := f.byEmail[c.Email]; dup {
		return nil, model.ErrConflict
	}
	c.CaregiverID = "cg-" + c.Email
	f.byEmail[c.Email] = c
	return c, nil
}

func (f *fakeCaregivers) Get(_ context.Context, id string) (*model.Caregiver, error) {
	for _, c := range f.byEmail {
		if c.CaregiverID == id {
			return c, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeCaregivers) GetByEmail(_ context.Context, email string) (*model.Caregiver, error) {
	if c, ok := f.byEmail[email]; ok {
		return c, nil
	}
	return nil, model.ErrNotFound
}

type caregiverOnlyStore struct {
	caregivers *fakeCaregivers
}

func (s caregiverOnlyStore) Caregivers() store.Caregivers { return s.caregivers }
func (s caregiverOnlyStore) Patients() store.Patients     { return nil }
func (s caregiverOnlyStore) Memories() store.Memories     { return nil }
func (s caregiverOnlyStore) Capsules() store.Capsules     { return nil }

func newCaregiverService() *CaregiverService {
	return NewCaregiverService(caregiverOnlyStore{&fakeCaregivers{byEmail: map[string]*model.Caregiver{}}})
}

func TestRegisterHashesPassword(t *testing.T) {
	svc := newCaregiverService()

	c, err := svc.Register(context.Background(), "Ana", "ana@example.com", "correcthorse")
	require.NoError(t, err)
	assert.NotEmpty(t, c.CaregiverID)
	assert.NotEqual(t, "correcthorse", c.PasswordHash)
	assert.NoError(t, auth.CheckPassword(c.PasswordHash, "correcthorse"))
}

func TestRegisterValidation(t *testing.T) {
	svc := newCaregiverService()

	_, err := svc.Register(context.Background(), "", "ana@example.com", "correcthorse")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Register(context.Background(), "Ana", "not-an-email", "correcthorse")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = svc.Register(context.Background(), "Ana", "ana@example.com", "short")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc := newCaregiverService()

	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "correcthorse")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Other", "ana@example.com", "correcthorse")
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestAuthenticate(t *testing.T) {
	svc := newCaregiverService()
	_, err := svc.Register(context.Background(), "Ana", "ana@example.com", "correcthorse")
	require.NoError(t, err)

	c, err := svc.Authenticate(context.Background(), "ana@example.com", "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.Name)

	// Wrong password and unknown account read identically.
	_, err = svc.Authenticate(context.Background(), "ana@example.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "correcthorse")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
}
