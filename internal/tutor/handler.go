package tutor

import (
	"encoding/json"
	"net/http"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// HandleChat — desk widget chat endpoint.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string          `json:"message"`
		Context json.RawMessage `json:"context"`
		History json.RawMessage `json:"history"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	reply, err := h.svc.Chat(
		r.Context(),
		payload.Message,
		parseJSONArg(payload.Context),
		parseJSONArg(payload.History),
	)
	if err != nil {
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, reply)
}

// HandleConfig — widget bootstrap config (safe; no secrets).
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.TutorConfig(r.Context())
	if err != nil {
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, status)
}

// parseJSONArg normalizes arguments that arrive either as native JSON
// structures or as JSON-encoded strings (desk clients send both forms).
// Malformed strings stay opaque instead of failing the request.
func parseJSONArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}

	if s, ok := value.(string); ok {
		var nested any
		if err := json.Unmarshal([]byte(s), &nested); err == nil {
			return nested
		}
		return s
	}

	return value
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
