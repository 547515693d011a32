package api

import (
	"encoding/json"
	"net/http"

	"github.com/neuraltc/capsule-service/internal/api/respond"
	"github.com/neuraltc/capsule-service/internal/auth"
	"github.com/neuraltc/capsule-service/internal/model"
	"github.com/neuraltc/capsule-service/internal/services"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	svc   *services.CaregiverService
	authn *auth.Authenticator
}

func NewAuthHandler(svc *services.CaregiverService, authn *auth.Authenticator) *AuthHandler {
	return &AuthHandler{svc: svc, authn: authn}
}

type tokenResponse struct {
	Token       string `json:"token"`
	CaregiverID string `json:"caregiverId"`
	Name        string `json:"name"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	c, err := h.svc.Register(r.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeToken(w, http.StatusCreated, c)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	c, err := h.svc.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeToken(w, http.StatusOK, c)
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, status int, c *model.Caregiver) {
	token, err := h.authn.Mint(c)
	if err != nil {
		respond.WriteInternalError(w, "could not issue token")
		return
	}
	respond.WriteJSON(w, status, tokenResponse{Token: token, CaregiverID: c.CaregiverID, Name: c.Name})
}
