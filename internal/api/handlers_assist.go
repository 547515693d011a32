package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/neuraltc/capsule-service/internal/api/respond"
)

// TextGenerator is the opaque text-in/text-out collaborator behind the
// assist endpoint.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AssistHandler proxies chat prompts to the external model.
type AssistHandler struct {
	gen TextGenerator
}

func NewAssistHandler(gen TextGenerator) *AssistHandler { return &AssistHandler{gen: gen} }

// Chat POST /api/assist/chat
func (h *AssistHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if in.Prompt == "" {
		respond.WriteBadRequest(w, "prompt is required")
		return
	}
	reply, err := h.gen.Generate(r.Context(), in.Prompt)
	if err != nil {
		respond.WriteError(w, http.StatusBadGateway, "assist upstream unavailable")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"response": reply})
}
