// Package validate holds request field validation shared by the API layer
// and the services.
package validate

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/neuraltc/capsule-service/internal/model"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

var memoryTypes = map[string]bool{
	model.MemoryTypeImage: true,
	model.MemoryTypeAudio: true,
	model.MemoryTypeText:  true,
	model.MemoryTypeVideo: true,
	model.MemoryTypeFile:  true,
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field string, v *string, limit int) error {
	if v == nil {
		return nil
	}
	if len(*v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

// Title limits capsule/memory/patient display titles.
func Title(v string) error {
	if v == "" {
		return fmt.Errorf("title is required")
	}
	if len(v) > 200 {
		return fmt.Errorf("title exceeds 200 characters")
	}
	return nil
}

// MemoryType checks the type against the accepted set.
func MemoryType(v string) error {
	if v == "" {
		return fmt.Errorf("type is required")
	}
	if !memoryTypes[v] {
		return fmt.Errorf("unsupported memory type %q", v)
	}
	return nil
}

// PeopleInvolved parses the JSON-encoded string array carried in the
// multipart form. An empty value means no people.
func PeopleInvolved(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var people []string
	if err := json.Unmarshal([]byte(raw), &people); err != nil {
		return nil, fmt.Errorf("peopleInvolved must be a JSON string array")
	}
	return people, nil
}

// -------- Request specific helpers ----------

func Register(name, email, password string) error {
	if err := NonEmpty("name", name); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

func CreatePatient(name string) error {
	return NonEmpty("name", name)
}

func CreateMemory(patientID, title, memoryType string, description *string) error {
	if err := NonEmpty("patient", patientID); err != nil {
		return err
	}
	if err := Title(title); err != nil {
		return err
	}
	if err := MemoryType(memoryType); err != nil {
		return err
	}
	return MaxLen("description", description, 2000)
}

func GenerateCapsule(patientID, title string, memoryIDs []string) error {
	if err := NonEmpty("patientId", patientID); err != nil {
		return err
	}
	if err := Title(title); err != nil {
		return err
	}
	if len(memoryIDs) == 0 {
		return fmt.Errorf("memoryIds must not be empty")
	}
	return nil
}
