// Package storetest holds a driver-agnostic compliance suite for store
// implementations.
package storetest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/store"
)

func strptr(s string) *string { return &s }

// Run exercises a minimal compliance suite against a store.Store
// implementation. Implementations should provide a clean, isolated store
// and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Caregivers
	email := "cg-" + uuid.New().String() + "@example.test"
	cg, err := s.Caregivers().Create(ctx, &model.Caregiver{Email: email, Name: "Test Caregiver", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateCaregiver: %v", err)
	}
	if cg.CaregiverID == "" {
		t.Fatalf("CreateCaregiver: empty id")
	}
	if got, err := s.Caregivers().GetByEmail(ctx, email); err != nil || got.CaregiverID != cg.CaregiverID {
		t.Fatalf("GetCaregiverByEmail: got=%v err=%v", got, err)
	}
	if _, err := s.Caregivers().Create(ctx, &model.Caregiver{Email: email, Name: "Dup", PasswordHash: "x"}); err == nil {
		t.Fatalf("CreateCaregiver: duplicate email accepted")
	}

	// Patients
	p, err := s.Patients().Create(ctx, &model.Patient{CaregiverID: cg.CaregiverID, Name: "Pat", Diagnosis: strptr("early-stage")})
	if err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	if got, err := s.Patients().GetByID(ctx, p.PatientID); err != nil || got.Name != "Pat" || got.Diagnosis == nil {
		t.Fatalf("GetPatient: got=%v err=%v", got, err)
	}
	if lst, err := s.Patients().ListForCaregiver(ctx, cg.CaregiverID); err != nil || len(lst) != 1 {
		t.Fatalf("ListPatients: n=%d err=%v", len(lst), err)
	}

	// Memories
	m1, err := s.Memories().Create(ctx, &model.Memory{
		PatientID:      p.PatientID,
		Title:          "m1",
		MemoryType:     model.MemoryTypeImage,
		Location:       strptr("Park"),
		Description:    strptr("Walked dog"),
		PeopleInvolved: []string{"Mom"},
		FileURL:        strptr("/uploads/1-m1.jpg"),
	})
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}
	m2, err := s.Memories().Create(ctx, &model.Memory{
		PatientID:  p.PatientID,
		Title:      "m2",
		MemoryType: model.MemoryTypeText,
	})
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}
	if got, err := s.Memories().GetByID(ctx, m1.MemoryID); err != nil || got.Title != "m1" {
		t.Fatalf("GetMemory: got=%v err=%v", got, err)
	} else if len(got.PeopleInvolved) != 1 || got.PeopleInvolved[0] != "Mom" {
		t.Fatalf("GetMemory: peopleInvolved round-trip: %v", got.PeopleInvolved)
	}
	if lst, err := s.Memories().ListByPatient(ctx, p.PatientID); err != nil || len(lst) != 2 {
		t.Fatalf("ListMemoriesByPatient: n=%d err=%v", len(lst), err)
	}
	// Missing IDs are not an error; only the existing subset comes back.
	sub, err := s.Memories().ListByIDs(ctx, []string{m2.MemoryID, uuid.New().String()})
	if err != nil || len(sub) != 1 || sub[0].MemoryID != m2.MemoryID {
		t.Fatalf("ListMemoriesByIDs: got=%v err=%v", sub, err)
	}

	// Capsules
	cap1, err := s.Capsules().Create(ctx, &model.Capsule{
		PatientID: p.PatientID,
		Title:     "Sunny Day",
		Narrative: "narrative text",
		Theme:     "neural",
		MemoryIDs: []string{m1.MemoryID, m2.MemoryID, "missing-id"},
		Memories:  []*model.Memory{m1, m2},
	})
	if err != nil {
		t.Fatalf("CreateCapsule: %v", err)
	}
	if cap1.CapsuleID == "" {
		t.Fatalf("CreateCapsule: empty id")
	}
	got, err := s.Capsules().GetByID(ctx, cap1.CapsuleID)
	if err != nil {
		t.Fatalf("GetCapsule: %v", err)
	}
	if len(got.MemoryIDs) != 3 || got.MemoryIDs[2] != "missing-id" {
		t.Fatalf("GetCapsule: memoryIds not preserved verbatim: %v", got.MemoryIDs)
	}
	if len(got.Memories) != 2 || got.Memories[0].MemoryID != m1.MemoryID || got.Memories[1].MemoryID != m2.MemoryID {
		t.Fatalf("GetCapsule: snapshot order lost: %v", got.Memories)
	}

	// Deleting a snapshotted memory must not disturb the capsule.
	if err := s.Memories().Delete(ctx, m1.MemoryID); err != nil {
		t.Fatalf("DeleteMemory: %v", err)
	}
	got, err = s.Capsules().GetByID(ctx, cap1.CapsuleID)
	if err != nil || len(got.Memories) != 2 || got.Memories[0].Title != "m1" {
		t.Fatalf("GetCapsule after memory delete: got=%v err=%v", got, err)
	}

	// A second identical capsule is a distinct record.
	cap2, err := s.Capsules().Create(ctx, &model.Capsule{
		PatientID: p.PatientID, Title: "Sunny Day", Narrative: "narrative text", Theme: "neural",
		MemoryIDs: cap1.MemoryIDs, Memories: []*model.Memory{m2},
	})
	if err != nil {
		t.Fatalf("CreateCapsule (repeat): %v", err)
	}
	if cap2.CapsuleID == cap1.CapsuleID {
		t.Fatalf("CreateCapsule: repeated generation reused id %s", cap1.CapsuleID)
	}
	if lst, err := s.Capsules().ListByPatient(ctx, p.PatientID); err != nil || len(lst) != 2 {
		t.Fatalf("ListCapsulesByPatient: n=%d err=%v", len(lst), err)
	}

	// Capsule delete removes the capsule and its snapshot only.
	if err := s.Capsules().Delete(ctx, cap2.CapsuleID); err != nil {
		t.Fatalf("DeleteCapsule: %v", err)
	}
	if _, err := s.Capsules().GetByID(ctx, cap2.CapsuleID); err == nil {
		t.Fatalf("GetCapsule: deleted capsule still readable")
	}

	// Patient delete cascades.
	if err := s.Patients().Delete(ctx, p.PatientID); err != nil {
		t.Fatalf("DeletePatient: %v", err)
	}
	if _, err := s.Patients().GetByID(ctx, p.PatientID); err == nil {
		t.Fatalf("GetPatient: deleted patient still readable")
	}
	if lst, err := s.Memories().ListByPatient(ctx, p.PatientID); err != nil || len(lst) != 0 {
		t.Fatalf("ListMemories after cascade: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Capsules().ListByPatient(ctx, p.PatientID); err != nil || len(lst) != 0 {
		t.Fatalf("ListCapsules after cascade: n=%d err=%v", len(lst), err)
	}
}
