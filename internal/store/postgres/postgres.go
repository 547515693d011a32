// Package postgres provides the cloud store adapter using the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Caregivers() store.Caregivers { return &caregivers{db: s.db} }
func (s *pgStore) Patients() store.Patients     { return &patients{db: s.db} }
func (s *pgStore) Memories() store.Memories     { return &memories{db: s.db} }
func (s *pgStore) Capsules() store.Capsules     { return &capsules{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Bootstrap performs a connectivity check to ensure Postgres is reachable.
// This is a fast ping-only check since deployment migrations handle schema setup.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return db.PingContext(ctx)
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

func marshalPeople(people []string) ([]byte, error) {
	if people == nil {
		people = []string{}
	}
	return json.Marshal(people)
}

func unmarshalPeople(raw []byte) ([]string, error) {
	people := []string{}
	if len(raw) == 0 {
		return people, nil
	}
	if err := json.Unmarshal(raw, &people); err != nil {
		return nil, err
	}
	return people, nil
}

// --- Caregivers ---

type caregivers struct{ db *sql.DB }

func (c *caregivers) Create(ctx context.Context, m *model.Caregiver) (*model.Caregiver, error) {
	id := m.CaregiverID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := c.db.QueryRowContext(ctx, `
        INSERT INTO caregivers (caregiver_id, email, name, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time
    `, id, m.Email, m.Name, m.PasswordHash)
	if err := row.Scan(&created); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, fmt.Errorf("email already registered: %w", model.ErrConflict)
		}
		return nil, err
	}
	out := *m
	out.CaregiverID = id
	out.CreationTime = created
	return &out, nil
}

func (c *caregivers) Get(ctx context.Context, caregiverID string) (*model.Caregiver, error) {
	var out model.Caregiver
	row := c.db.QueryRowContext(ctx, `
        SELECT caregiver_id, email, name, password_hash, creation_time
        FROM caregivers WHERE caregiver_id=$1
    `, caregiverID)
	if err := row.Scan(&out.CaregiverID, &out.Email, &out.Name, &out.PasswordHash, &out.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

func (c *caregivers) GetByEmail(ctx context.Context, email string) (*model.Caregiver, error) {
	var out model.Caregiver
	row := c.db.QueryRowContext(ctx, `
        SELECT caregiver_id, email, name, password_hash, creation_time
        FROM caregivers WHERE email=$1
    `, email)
	if err := row.Scan(&out.CaregiverID, &out.Email, &out.Name, &out.PasswordHash, &out.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

// --- Patients ---

type patients struct{ db *sql.DB }

func (p *patients) Create(ctx context.Context, m *model.Patient) (*model.Patient, error) {
	id := m.PatientID
	if id == "" {
		id = uuid.New().String()
	}
	var created time.Time
	row := p.db.QueryRowContext(ctx, `
        INSERT INTO patients (patient_id, caregiver_id, name, age, diagnosis, profile_image)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING creation_time
    `, id, m.CaregiverID, m.Name, m.Age, m.Diagnosis, m.ProfileImage)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *m
	out.PatientID = id
	out.CreationTime = created
	return &out, nil
}

func (p *patients) GetByID(ctx context.Context, patientID string) (*model.Patient, error) {
	var out model.Patient
	row := p.db.QueryRowContext(ctx, `
        SELECT patient_id, caregiver_id, name, age, diagnosis, profile_image, creation_time
        FROM patients WHERE patient_id=$1
    `, patientID)
	if err := row.Scan(&out.PatientID, &out.CaregiverID, &out.Name, &out.Age, &out.Diagnosis, &out.ProfileImage, &out.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

func (p *patients) ListForCaregiver(ctx context.Context, caregiverID string) ([]*model.Patient, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT patient_id, caregiver_id, name, age, diagnosis, profile_image, creation_time
        FROM patients WHERE caregiver_id=$1 ORDER BY creation_time DESC
    `, caregiverID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Patient
	for rows.Next() {
		var m model.Patient
		if err := rows.Scan(&m.PatientID, &m.CaregiverID, &m.Name, &m.Age, &m.Diagnosis, &m.ProfileImage, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (p *patients) Delete(ctx context.Context, patientID string) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
        DELETE FROM capsule_memories WHERE capsule_id IN (SELECT capsule_id FROM capsules WHERE patient_id=$1)
    `, patientID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM capsules WHERE patient_id=$1`, patientID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE patient_id=$1`, patientID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM patients WHERE patient_id=$1`, patientID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrNotFound
	}
	return tx.Commit()
}

// --- Memories ---

type memories struct{ db *sql.DB }

const memoryColumns = `memory_id, patient_id, title, description, memory_type, file_url, date_occurred, location, people_involved, creation_time`

func scanMemory(row interface{ Scan(...any) error }) (*model.Memory, error) {
	var out model.Memory
	var people []byte
	if err := row.Scan(&out.MemoryID, &out.PatientID, &out.Title, &out.Description, &out.MemoryType,
		&out.FileURL, &out.DateOccurred, &out.Location, &people, &out.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	var err error
	if out.PeopleInvolved, err = unmarshalPeople(people); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *memories) Create(ctx context.Context, mm *model.Memory) (*model.Memory, error) {
	id := mm.MemoryID
	if id == "" {
		id = uuid.New().String()
	}
	people, err := marshalPeople(mm.PeopleInvolved)
	if err != nil {
		return nil, err
	}
	var created time.Time
	row := m.db.QueryRowContext(ctx, `
        INSERT INTO memories (memory_id, patient_id, title, description, memory_type, file_url, date_occurred, location, people_involved)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING creation_time
    `, id, mm.PatientID, mm.Title, mm.Description, mm.MemoryType, mm.FileURL, mm.DateOccurred, mm.Location, people)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *mm
	out.MemoryID = id
	out.CreationTime = created
	if out.PeopleInvolved == nil {
		out.PeopleInvolved = []string{}
	}
	return &out, nil
}

func (m *memories) GetByID(ctx context.Context, memoryID string) (*model.Memory, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE memory_id=$1`, memoryID)
	return scanMemory(row)
}

func (m *memories) ListByIDs(ctx context.Context, ids []string) ([]*model.Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := m.db.QueryContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE memory_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Memory
	for rows.Next() {
		mm, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mm)
	}
	return out, rows.Err()
}

func (m *memories) ListByPatient(ctx context.Context, patientID string) ([]*model.Memory, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT `+memoryColumns+` FROM memories WHERE patient_id=$1 ORDER BY creation_time DESC
    `, patientID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Memory
	for rows.Next() {
		mm, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mm)
	}
	return out, rows.Err()
}

func (m *memories) Delete(ctx context.Context, memoryID string) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM memories WHERE memory_id=$1`, memoryID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Capsules ---

type capsules struct{ db *sql.DB }

func (c *capsules) Create(ctx context.Context, cc *model.Capsule) (*model.Capsule, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	memoryIDs := cc.MemoryIDs
	if memoryIDs == nil {
		memoryIDs = []string{}
	}
	idsJSON, err := json.Marshal(memoryIDs)
	if err != nil {
		return nil, err
	}
	var created time.Time
	if err := tx.QueryRowContext(ctx, `
        INSERT INTO capsules (capsule_id, patient_id, title, narrative, theme, memory_ids)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING creation_time
    `, id, cc.PatientID, cc.Title, cc.Narrative, cc.Theme, idsJSON).Scan(&created); err != nil {
		return nil, err
	}

	for i, mm := range cc.Memories {
		people, err := marshalPeople(mm.PeopleInvolved)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO capsule_memories
                (capsule_id, ordinal, memory_id, title, description, memory_type, file_url, date_occurred, location, people_involved, memory_creation_time)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        `, id, i, mm.MemoryID, mm.Title, mm.Description, mm.MemoryType, mm.FileURL, mm.DateOccurred, mm.Location, people, mm.CreationTime); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	out := *cc
	out.CapsuleID = id
	out.MemoryIDs = memoryIDs
	out.CreationTime = created
	return &out, nil
}

func (c *capsules) GetByID(ctx context.Context, capsuleID string) (*model.Capsule, error) {
	row := c.db.QueryRowContext(ctx, `
        SELECT capsule_id, patient_id, title, narrative, theme, memory_ids, creation_time
        FROM capsules WHERE capsule_id=$1
    `, capsuleID)
	out, err := scanCapsule(row)
	if err != nil {
		return nil, err
	}
	if out.Memories, err = c.snapshot(ctx, out.CapsuleID, out.PatientID); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *capsules) ListByPatient(ctx context.Context, patientID string) ([]*model.Capsule, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT capsule_id, patient_id, title, narrative, theme, memory_ids, creation_time
        FROM capsules WHERE patient_id=$1 ORDER BY creation_time DESC
    `, patientID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Capsule
	for rows.Next() {
		cc, err := scanCapsule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, cc := range out {
		if cc.Memories, err = c.snapshot(ctx, cc.CapsuleID, cc.PatientID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *capsules) Delete(ctx context.Context, capsuleID string) error {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM capsule_memories WHERE capsule_id=$1`, capsuleID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM capsules WHERE capsule_id=$1`, capsuleID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrNotFound
	}
	return tx.Commit()
}

func scanCapsule(row interface{ Scan(...any) error }) (*model.Capsule, error) {
	var out model.Capsule
	var idsJSON []byte
	if err := row.Scan(&out.CapsuleID, &out.PatientID, &out.Title, &out.Narrative, &out.Theme, &idsJSON, &out.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	out.MemoryIDs = []string{}
	if len(idsJSON) > 0 {
		if err := json.Unmarshal(idsJSON, &out.MemoryIDs); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func (c *capsules) snapshot(ctx context.Context, capsuleID, patientID string) ([]*model.Memory, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT memory_id, title, description, memory_type, file_url, date_occurred, location, people_involved, memory_creation_time
        FROM capsule_memories WHERE capsule_id=$1 ORDER BY ordinal
    `, capsuleID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []*model.Memory{}
	for rows.Next() {
		var mm model.Memory
		var people []byte
		if err := rows.Scan(&mm.MemoryID, &mm.Title, &mm.Description, &mm.MemoryType,
			&mm.FileURL, &mm.DateOccurred, &mm.Location, &people, &mm.CreationTime); err != nil {
			return nil, err
		}
		mm.PatientID = patientID
		if mm.PeopleInvolved, err = unmarshalPeople(people); err != nil {
			return nil, err
		}
		out = append(out, &mm)
	}
	return out, rows.Err()
}
