package services

import (
	"context"
	"fmt"

	"github.com/neuraltc/capsule-service/internal/auth"
	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/narrative"
	"github.com/neuraltc/capsule-service/internal/store"
	"github.com/neuraltc/capsule-service/internal/validate"
)

// CapsuleService assembles narrated capsules from selections of a
// patient's memories and manages the resulting records.
type CapsuleService struct {
	store store.Store
	guard *auth.Guard
}

func NewCapsuleService(s store.Store, g *auth.Guard) *CapsuleService {
	return &CapsuleService{store: s, guard: g}
}

// Generate builds and persists a capsule.
//
// The supplied memoryIds are kept verbatim, in caller order, on the stored
// capsule. IDs that do not resolve, or that resolve to another patient's
// memory, are silently dropped from the snapshot and the narrative. Each
// call creates a distinct capsule; there is no duplicate suppression.
func (s *CapsuleService) Generate(ctx context.Context, caregiverID, patientID string, memoryIDs []string, title string) (*model.Capsule, error) {
	if err := validate.GenerateCapsule(patientID, title, memoryIDs); err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrValidation, err)
	}
	if _, err := s.guard.EnsurePatientOwner(ctx, caregiverID, patientID); err != nil {
		return nil, err
	}

	fetched, err := s.store.Memories().ListByIDs(ctx, memoryIDs)
	if err != nil {
		return nil, err
	}
	ordered := orderByRequest(memoryIDs, patientID, fetched)

	c := &model.Capsule{
		PatientID: patientID,
		Title:     title,
		Narrative: narrative.Compose(title, ordered),
		Theme:     narrative.Theme,
		MemoryIDs: memoryIDs,
		Memories:  ordered,
	}
	return s.store.Capsules().Create(ctx, c)
}

func (s *CapsuleService) GetCapsule(ctx context.Context, caregiverID, capsuleID string) (*model.Capsule, error) {
	c, err := s.store.Capsules().GetByID(ctx, capsuleID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.EnsurePatientOwner(ctx, caregiverID, c.PatientID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CapsuleService) ListCapsules(ctx context.Context, caregiverID, patientID string) ([]*model.Capsule, error) {
	if _, err := s.guard.EnsurePatientOwner(ctx, caregiverID, patientID); err != nil {
		return nil, err
	}
	return s.store.Capsules().ListByPatient(ctx, patientID)
}

func (s *CapsuleService) DeleteCapsule(ctx context.Context, caregiverID, capsuleID string) error {
	c, err := s.store.Capsules().GetByID(ctx, capsuleID)
	if err != nil {
		return err
	}
	if _, err := s.guard.EnsurePatientOwner(ctx, caregiverID, c.PatientID); err != nil {
		return err
	}
	return s.store.Capsules().Delete(ctx, capsuleID)
}

// orderByRequest maps the store result back onto the caller-supplied ID
// order. Duplicate IDs count once, unknown IDs and other patients'
// memories are skipped.
func orderByRequest(ids []string, patientID string, fetched []*model.Memory) []*model.Memory {
	byID := make(map[string]*model.Memory, len(fetched))
	for _, m := range fetched {
		if m.PatientID == patientID {
			byID[m.MemoryID] = m
		}
	}
	seen := make(map[string]struct{}, len(ids))
	var out []*model.Memory
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out
}
