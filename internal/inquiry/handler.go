package inquiry

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
	repo Repo
	log  *zap.SugaredLogger
}

func NewHandler(repo Repo, log *zap.SugaredLogger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var inq Inquiry
	if err := json.NewDecoder(r.Body).Decode(&inq); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(inq.Name) == "" || strings.TrimSpace(inq.Message) == "" {
		http.Error(w, "missing name or message", http.StatusBadRequest)
		return
	}
	if inq.InquiryType == "" {
		inq.InquiryType = "contact"
	}

	if err := h.repo.Create(r.Context(), &inq); err != nil {
		h.log.Errorw("create inquiry failed", "err", err)
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, inq)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		h.log.Errorw("list inquiries failed", "err", err)
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []Inquiry{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "inquiry not found", http.StatusNotFound)
			return
		}
		h.log.Errorw("delete inquiry failed", "id", id, "err", err)
		http.Error(w, "processing error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
