package chatbot

import "github.com/go-chi/chi/v5"

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/chatbot/ask", h.HandleAsk)
	r.Post("/chatbot/knowledge", h.HandleCreateKnowledge)
	r.Get("/chatbot/knowledge", h.HandleListKnowledge)
	r.Delete("/chatbot/knowledge/{id}", h.HandleDeleteKnowledge)
	r.Post("/chatbot/reindex", h.HandleReindex)
}
