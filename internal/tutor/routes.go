package tutor

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/tutor/chat", h.HandleChat)
	r.Get("/tutor/config", h.HandleConfig)
}
