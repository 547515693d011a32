package services

import (
	"context"
	"fmt"
	"io"

	"github.com/neuraltc/capsule-service/internal/auth"
	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/store"
	"github.com/neuraltc/capsule-service/internal/uploads"
	"github.com/neuraltc/capsule-service/internal/validate"
)

// MemoryService orchestrates memory-related use cases.
type MemoryService struct {
	store store.Store
	guard *auth.Guard
	files *uploads.Store
}

func NewMemoryService(s store.Store, g *auth.Guard, files *uploads.Store) *MemoryService {
	return &MemoryService{store: s, guard: g, files: files}
}

// CreateMemory persists a memory. When file is non-nil its bytes are
// written to the upload store first and the resulting relative URL becomes
// FileURL.
func (s *MemoryService) CreateMemory(ctx context.Context, caregiverID string, m *model.Memory, filename string, file io.Reader) (*model.Memory, error) {
	if err := validate.CreateMemory(m.PatientID, m.Title, m.MemoryType, m.Description); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}
	if _, err := s.guard.EnsurePatientOwner(ctx, caregiverID, m.PatientID); err != nil {
		return nil, err
	}
	if file != nil {
		url, err := s.files.Save(filename, file)
		if err != nil {
			return nil, err
		}
		m.FileURL = &url
	}
	return s.store.Memories().Create(ctx, m)
}

func (s *MemoryService) ListMemories(ctx context.Context, caregiverID, patientID string) ([]*model.Memory, error) {
	if _, err := s.guard.EnsurePatientOwner(ctx, caregiverID, patientID); err != nil {
		return nil, err
	}
	return s.store.Memories().ListByPatient(ctx, patientID)
}

// DeleteMemory removes the memory unconditionally. Capsules referencing it
// keep their snapshot.
func (s *MemoryService) DeleteMemory(ctx context.Context, caregiverID, memoryID string) error {
	m, err := s.store.Memories().GetByID(ctx, memoryID)
	if err != nil {
		return err
	}
	if _, err := s.guard.EnsurePatientOwner(ctx, caregiverID, m.PatientID); err != nil {
		return err
	}
	return s.store.Memories().Delete(ctx, memoryID)
}
