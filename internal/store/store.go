package store

import (
	"context"

	"github.com/neuraltc/capsule-service/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (e.g., postgres, sqlite).
type Store interface {
	Caregivers() Caregivers
	Patients() Patients
	Memories() Memories
	Capsules() Capsules
}

type Caregivers interface {
	Create(ctx context.Context, c *model.Caregiver) (*model.Caregiver, error)
	Get(ctx context.Context, caregiverID string) (*model.Caregiver, error)
	GetByEmail(ctx context.Context, email string) (*model.Caregiver, error)
}

type Patients interface {
	Create(ctx context.Context, p *model.Patient) (*model.Patient, error)
	GetByID(ctx context.Context, patientID string) (*model.Patient, error)
	ListForCaregiver(ctx context.Context, caregiverID string) ([]*model.Patient, error)
	// Delete removes the patient and cascades to its memories and capsules
	// in a single transaction.
	Delete(ctx context.Context, patientID string) error
}

type Memories interface {
	Create(ctx context.Context, m *model.Memory) (*model.Memory, error)
	GetByID(ctx context.Context, memoryID string) (*model.Memory, error)
	// ListByIDs returns whatever subset of the given IDs exists, in no
	// particular order. Missing IDs are not an error.
	ListByIDs(ctx context.Context, ids []string) ([]*model.Memory, error)
	// ListByPatient returns the patient's memories ordered by creation
	// time descending.
	ListByPatient(ctx context.Context, patientID string) ([]*model.Memory, error)
	Delete(ctx context.Context, memoryID string) error
}

type Capsules interface {
	// Create persists the capsule together with its memory snapshot rows
	// atomically.
	Create(ctx context.Context, c *model.Capsule) (*model.Capsule, error)
	GetByID(ctx context.Context, capsuleID string) (*model.Capsule, error)
	// ListByPatient returns the patient's capsules ordered by creation
	// time descending, snapshots populated.
	ListByPatient(ctx context.Context, patientID string) ([]*model.Capsule, error)
	Delete(ctx context.Context, capsuleID string) error
}
