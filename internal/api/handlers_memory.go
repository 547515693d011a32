package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/neuraltc/capsule-service/internal/api/respond"
	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/services"
	"github.com/neuraltc/capsule-service/internal/validate"
)

// maxUploadBytes bounds the in-memory part of multipart parsing.
const maxUploadBytes = 32 << 20

// MemoryHandler is the HTTP transport for memory upload, listing, and deletion.
type MemoryHandler struct {
	svc *services.MemoryService
}

func NewMemoryHandler(svc *services.MemoryService) *MemoryHandler {
	return &MemoryHandler{svc: svc}
}

// CreateMemory POST /api/memories (multipart form, optional "file" part)
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respond.WriteBadRequest(w, "invalid multipart form")
		return
	}

	people, err := validate.PeopleInvolved(r.FormValue("peopleInvolved"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	dateOccurred, err := parseDate(r.FormValue("dateOccurred"))
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	m := &model.Memory{
		PatientID:      r.FormValue("patient"),
		Title:          r.FormValue("title"),
		Description:    optional(r.FormValue("description")),
		MemoryType:     r.FormValue("type"),
		DateOccurred:   dateOccurred,
		Location:       optional(r.FormValue("location")),
		PeopleInvolved: people,
	}

	var file io.Reader
	var filename string
	f, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer func() { _ = f.Close() }()
		file = f
		filename = header.Filename
	case errors.Is(err, http.ErrMissingFile):
		// memory without an attachment
	default:
		respond.WriteBadRequest(w, "invalid file part")
		return
	}

	out, err := h.svc.CreateMemory(r.Context(), identity(r).CaregiverID, m, filename, file)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListMemories GET /api/memories/patient/{patientId}
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListMemories(r.Context(), identity(r).CaregiverID, mux.Vars(r)["patientId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Memory{}
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteMemory DELETE /api/memories/{memoryId}
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMemory(r.Context(), identity(r).CaregiverID, mux.Vars(r)["memoryId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Memory deleted successfully"})
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// parseDate accepts RFC 3339 timestamps or bare dates.
func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("dateOccurred must be RFC 3339 or YYYY-MM-DD")
}
