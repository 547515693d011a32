package services

import (
	"context"
	"fmt"

	"github.com/neuraltc/capsule-service/internal/auth"
	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/store"
	"github.com/neuraltc/capsule-service/internal/validate"
)

// PatientService orchestrates patient use cases. Ownership is enforced by
// the shared guard on every by-ID operation.
type PatientService struct {
	store store.Store
	guard *auth.Guard
}

func NewPatientService(s store.Store, g *auth.Guard) *PatientService {
	return &PatientService{store: s, guard: g}
}

func (s *PatientService) CreatePatient(ctx context.Context, caregiverID string, p *model.Patient) (*model.Patient, error) {
	if err := validate.CreatePatient(p.Name); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}
	p.CaregiverID = caregiverID
	return s.store.Patients().Create(ctx, p)
}

func (s *PatientService) GetPatient(ctx context.Context, caregiverID, patientID string) (*model.Patient, error) {
	return s.guard.EnsurePatientOwner(ctx, caregiverID, patientID)
}

func (s *PatientService) ListPatients(ctx context.Context, caregiverID string) ([]*model.Patient, error) {
	return s.store.Patients().ListForCaregiver(ctx, caregiverID)
}

// DeletePatient removes the patient and, transactionally, its memories and
// capsules. Uploaded files stay on disk.
func (s *PatientService) DeletePatient(ctx context.Context, caregiverID, patientID string) error {
	if _, err := s.guard.EnsurePatientOwner(ctx, caregiverID, patientID); err != nil {
		return err
	}
	return s.store.Patients().Delete(ctx, patientID)
}
