package model

import "time"

// Caregiver is an account that owns patients.
type Caregiver struct {
	CaregiverID  string    `json:"caregiverId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreationTime time.Time `json:"creationTime"`
}

// Patient is a care recipient owned by exactly one caregiver.
type Patient struct {
	PatientID    string    `json:"patientId"`
	CaregiverID  string    `json:"caregiverId"`
	Name         string    `json:"name"`
	Age          *int      `json:"age,omitempty"`
	Diagnosis    *string   `json:"diagnosis,omitempty"`
	ProfileImage *string   `json:"profileImage,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// Memory types accepted on creation.
const (
	MemoryTypeImage = "image"
	MemoryTypeAudio = "audio"
	MemoryTypeText  = "text"
	MemoryTypeVideo = "video"
	MemoryTypeFile  = "file"
)

// Memory is a single captured fragment tied to one patient. Memories are
// immutable after creation.
type Memory struct {
	MemoryID       string     `json:"memoryId"`
	PatientID      string     `json:"patientId"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	MemoryType     string     `json:"type"`
	FileURL        *string    `json:"fileUrl,omitempty"`
	DateOccurred   *time.Time `json:"dateOccurred,omitempty"`
	Location       *string    `json:"location,omitempty"`
	PeopleInvolved []string   `json:"peopleInvolved"`
	CreationTime   time.Time  `json:"creationTime"`
}

// Capsule is a narrated aggregation of memories. Memories holds a
// point-in-time snapshot taken at generation; deleting a Memory afterwards
// does not change the capsule.
type Capsule struct {
	CapsuleID    string    `json:"capsuleId"`
	PatientID    string    `json:"patientId"`
	Title        string    `json:"title"`
	Narrative    string    `json:"narrative"`
	Theme        string    `json:"theme"`
	MemoryIDs    []string  `json:"memoryIds"`
	Memories     []*Memory `json:"memories"`
	CreationTime time.Time `json:"creationTime"`
}
