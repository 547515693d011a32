package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/store"
)

// Guard is the single ownership check for patient-scoped resources. Every
// by-ID operation resolves the target's patient through the guard before
// touching anything else; a patient owned by a different caregiver reads
// as not found so existence is not leaked.
type Guard struct {
	patients store.Patients
}

func NewGuard(patients store.Patients) *Guard { return &Guard{patients: patients} }

// EnsurePatientOwner verifies that patientID exists and belongs to the
// caregiver. Returns the patient on success.
func (g *Guard) EnsurePatientOwner(ctx context.Context, caregiverID, patientID string) (*model.Patient, error) {
	p, err := g.patients.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("patient %s: %w", patientID, model.ErrNotFound)
		}
		return nil, err
	}
	if p.CaregiverID != caregiverID {
		return nil, fmt.Errorf("patient %s: %w", patientID, model.ErrNotFound)
	}
	return p, nil
}
