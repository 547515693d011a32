// Package sqlite provides the local store adapter backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Open opens (or creates) a SQLite database at the given path and enables
// WAL journal mode. ":memory:" is accepted for tests.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared&_pragma=foreign_keys(ON)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Bootstrap applies the embedded schema. All statements are idempotent.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// New opens the database, applies the schema, and returns a store.
func New(ctx context.Context, path string) (store.Store, *sql.DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, nil, err
	}
	if err := Bootstrap(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return NewWithDB(db), db, nil
}

// NewWithDB wires a store over an existing connection (used by tests).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Caregivers() store.Caregivers { return &caregivers{db: s.db} }
func (s *sqliteStore) Patients() store.Patients     { return &patients{db: s.db} }
func (s *sqliteStore) Memories() store.Memories     { return &memories{db: s.db} }
func (s *sqliteStore) Capsules() store.Capsules     { return &capsules{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

func marshalPeople(people []string) (string, error) {
	if people == nil {
		people = []string{}
	}
	b, err := json.Marshal(people)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalPeople(raw string) ([]string, error) {
	people := []string{}
	if raw == "" {
		return people, nil
	}
	if err := json.Unmarshal([]byte(raw), &people); err != nil {
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
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO caregivers (caregiver_id, email, name, password_hash, creation_time)
        VALUES (?,?,?,?,?)
    `, id, m.Email, m.Name, m.PasswordHash, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("email already registered: %w", model.ErrConflict)
		}
		return nil, err
	}
	out := *m
	out.CaregiverID = id
	out.CreationTime = now
	return &out, nil
}

func (c *caregivers) Get(ctx context.Context, caregiverID string) (*model.Caregiver, error) {
	row := c.db.QueryRowContext(ctx, `
        SELECT caregiver_id, email, name, password_hash, creation_time
        FROM caregivers WHERE caregiver_id = ?
    `, caregiverID)
	return scanCaregiver(row)
}

func (c *caregivers) GetByEmail(ctx context.Context, email string) (*model.Caregiver, error) {
	row := c.db.QueryRowContext(ctx, `
        SELECT caregiver_id, email, name, password_hash, creation_time
        FROM caregivers WHERE email = ?
    `, email)
	return scanCaregiver(row)
}

func scanCaregiver(row *sql.Row) (*model.Caregiver, error) {
	var out model.Caregiver
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
	now := time.Now().UTC()
	_, err := p.db.ExecContext(ctx, `
        INSERT INTO patients (patient_id, caregiver_id, name, age, diagnosis, profile_image, creation_time)
        VALUES (?,?,?,?,?,?,?)
    `, id, m.CaregiverID, m.Name, m.Age, m.Diagnosis, m.ProfileImage, now)
	if err != nil {
		return nil, err
	}
	out := *m
	out.PatientID = id
	out.CreationTime = now
	return &out, nil
}

func (p *patients) GetByID(ctx context.Context, patientID string) (*model.Patient, error) {
	var out model.Patient
	row := p.db.QueryRowContext(ctx, `
        SELECT patient_id, caregiver_id, name, age, diagnosis, profile_image, creation_time
        FROM patients WHERE patient_id = ?
    `, patientID)
	if err := row.Scan(&out.PatientID, &out.CaregiverID, &out.Name, &out.Age, &out.Diagnosis, &out.ProfileImage, &out.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	return &out, nil
}

func (p *patients) ListForCaregiver(ctx context.Context, caregiverID string) ([]*model.Patient, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT patient_id, caregiver_id, name, age, diagnosis, profile_image, creation_time
        FROM patients WHERE caregiver_id = ? ORDER BY creation_time DESC
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
        DELETE FROM capsule_memories WHERE capsule_id IN (SELECT capsule_id FROM capsules WHERE patient_id = ?)
    `, patientID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM capsules WHERE patient_id = ?`, patientID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE patient_id = ?`, patientID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM patients WHERE patient_id = ?`, patientID)
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

func (m *memories) Create(ctx context.Context, mm *model.Memory) (*model.Memory, error) {
	id := mm.MemoryID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	people, err := marshalPeople(mm.PeopleInvolved)
	if err != nil {
		return nil, err
	}
	_, err = m.db.ExecContext(ctx, `
        INSERT INTO memories (`+memoryColumns+`)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, id, mm.PatientID, mm.Title, mm.Description, mm.MemoryType, mm.FileURL, mm.DateOccurred, mm.Location, people, now)
	if err != nil {
		return nil, err
	}
	out := *mm
	out.MemoryID = id
	out.CreationTime = now
	if out.PeopleInvolved == nil {
		out.PeopleInvolved = []string{}
	}
	return &out, nil
}

func scanMemory(rows interface{ Scan(...any) error }) (*model.Memory, error) {
	var out model.Memory
	var people string
	if err := rows.Scan(&out.MemoryID, &out.PatientID, &out.Title, &out.Description, &out.MemoryType,
		&out.FileURL, &out.DateOccurred, &out.Location, &people, &out.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	var err error
	if out.PeopleInvolved, err = unmarshalPeople(people); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *memories) GetByID(ctx context.Context, memoryID string) (*model.Memory, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE memory_id = ?`, memoryID)
	return scanMemory(row)
}

func (m *memories) ListByIDs(ctx context.Context, ids []string) ([]*model.Memory, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := m.db.QueryContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE memory_id IN (`+placeholders+`)`, args...)
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
        SELECT `+memoryColumns+` FROM memories WHERE patient_id = ? ORDER BY creation_time DESC
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
	res, err := m.db.ExecContext(ctx, `DELETE FROM memories WHERE memory_id = ?`, memoryID)
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
	now := time.Now().UTC()
	memoryIDs := cc.MemoryIDs
	if memoryIDs == nil {
		memoryIDs = []string{}
	}
	idsJSON, err := json.Marshal(memoryIDs)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO capsules (capsule_id, patient_id, title, narrative, theme, memory_ids, creation_time)
        VALUES (?,?,?,?,?,?,?)
    `, id, cc.PatientID, cc.Title, cc.Narrative, cc.Theme, string(idsJSON), now); err != nil {
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
            VALUES (?,?,?,?,?,?,?,?,?,?,?)
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
	out.CreationTime = now
	return &out, nil
}

func (c *capsules) GetByID(ctx context.Context, capsuleID string) (*model.Capsule, error) {
	row := c.db.QueryRowContext(ctx, `
        SELECT capsule_id, patient_id, title, narrative, theme, memory_ids, creation_time
        FROM capsules WHERE capsule_id = ?
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
        FROM capsules WHERE patient_id = ? ORDER BY creation_time DESC
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM capsule_memories WHERE capsule_id = ?`, capsuleID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM capsules WHERE capsule_id = ?`, capsuleID)
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
	var idsJSON string
	if err := row.Scan(&out.CapsuleID, &out.PatientID, &out.Title, &out.Narrative, &out.Theme, &idsJSON, &out.CreationTime); err != nil {
		return nil, mapNoRows(err)
	}
	out.MemoryIDs = []string{}
	if idsJSON != "" {
		if err := json.Unmarshal([]byte(idsJSON), &out.MemoryIDs); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// snapshot loads the capsule's memory copies in ordinal order.
func (c *capsules) snapshot(ctx context.Context, capsuleID, patientID string) ([]*model.Memory, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT memory_id, title, description, memory_type, file_url, date_occurred, location, people_involved, memory_creation_time
        FROM capsule_memories WHERE capsule_id = ? ORDER BY ordinal
    `, capsuleID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []*model.Memory{}
	for rows.Next() {
		var mm model.Memory
		var people string
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
