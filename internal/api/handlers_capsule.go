package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/neuraltc/capsule-service/internal/api/respond"
	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/services"
)

// CapsuleHandler is the HTTP transport for capsule generation and reads.
type CapsuleHandler struct {
	svc *services.CapsuleService
}

func NewCapsuleHandler(svc *services.CapsuleService) *CapsuleHandler {
	return &CapsuleHandler{svc: svc}
}

// Generate POST /api/capsules/generate
func (h *CapsuleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PatientID string   `json:"patientId"`
		MemoryIDs []string `json:"memoryIds"`
		Title     string   `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.Generate(r.Context(), identity(r).CaregiverID, in.PatientID, in.MemoryIDs, in.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListCapsules GET /api/capsules/patient/{patientId}
func (h *CapsuleHandler) ListCapsules(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListCapsules(r.Context(), identity(r).CaregiverID, mux.Vars(r)["patientId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if out == nil {
		out = []*model.Capsule{}
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// GetCapsule GET /api/capsules/{capsuleId}
func (h *CapsuleHandler) GetCapsule(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetCapsule(r.Context(), identity(r).CaregiverID, mux.Vars(r)["capsuleId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteCapsule DELETE /api/capsules/{capsuleId}
func (h *CapsuleHandler) DeleteCapsule(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCapsule(r.Context(), identity(r).CaregiverID, mux.Vars(r)["capsuleId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Capsule deleted successfully"})
}
