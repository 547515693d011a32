package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/neuraltc/capsule-service/internal/api/respond"
	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/services"
)

// PatientHandler is the HTTP transport for patient CRUD.
type PatientHandler struct {
	svc *services.PatientService
}

func NewPatientHandler(svc *services.PatientService) *PatientHandler {
	return &PatientHandler{svc: svc}
}

// CreatePatient POST /api/patients
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name         string  `json:"name"`
		Age          *int    `json:"age,omitempty"`
		Diagnosis    *string `json:"diagnosis,omitempty"`
		ProfileImage *string `json:"profileImage,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	p := &model.Patient{Name: in.Name, Age: in.Age, Diagnosis: in.Diagnosis, ProfileImage: in.ProfileImage}
	out, err := h.svc.CreatePatient(r.Context(), identity(r).CaregiverID, p)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListPatients GET /api/patients
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListPatients(r.Context(), identity(r).CaregiverID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// GetPatient GET /api/patients/{patientId}
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetPatient(r.Context(), identity(r).CaregiverID, mux.Vars(r)["patientId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeletePatient DELETE /api/patients/{patientId}
func (h *PatientHandler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePatient(r.Context(), identity(r).CaregiverID, mux.Vars(r)["patientId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Patient deleted successfully"})
}
