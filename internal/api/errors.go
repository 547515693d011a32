package api

import (
	"errors"
	"net/http"

	"github.com/neuraltc/capsule-service/internal/api/respond"
	"github.com/neuraltc/capsule-service/internal/auth"
	"github.com/neuraltc/capsule-service/internal/model"
)

// writeServiceError maps service-layer errors onto HTTP statuses. Anything
// unrecognized is a storage/internal failure and surfaces as a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrConflict):
		respond.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrBadCredentials):
		respond.WriteUnauthorized(w, err.Error())
	default:
		respond.WriteInternalError(w, "internal error")
	}
}
