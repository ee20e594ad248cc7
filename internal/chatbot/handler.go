package chatbot

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	svc Service
	log *zap.SugaredLogger
}

func NewHandler(svc Service, log *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "missing message", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Ask(r.Context(), req)
	if err != nil {
		h.log.Errorw("ask failed", "err", err)
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleCreateKnowledge(w http.ResponseWriter, r *http.Request) {
	var item KnowledgeItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(item.Question) == "" || strings.TrimSpace(item.Answer) == "" {
		http.Error(w, "missing question or answer", http.StatusBadRequest)
		return
	}

	if err := h.svc.CreateKnowledge(r.Context(), &item); err != nil {
		h.log.Errorw("create knowledge failed", "err", err)
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) HandleListKnowledge(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListKnowledge(r.Context())
	if err != nil {
		h.log.Errorw("list knowledge failed", "err", err)
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []KnowledgeItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleDeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteKnowledge(r.Context(), id); err != nil {
		if errors.Is(err, ErrKnowledgeNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		h.log.Errorw("delete knowledge failed", "id", id, "err", err)
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) HandleReindex(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Reindex(r.Context())
	if err != nil {
		h.log.Errorw("reindex failed", "err", err)
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"indexed": n})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
