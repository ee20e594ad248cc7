package inquiry

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/inquiries", h.HandleCreate)
	r.Get("/inquiries", h.HandleList)
	r.Delete("/inquiries/{id}", h.HandleDelete)
}
