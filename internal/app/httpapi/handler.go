// Package httpapi exposes the collector's REST API.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/setorid/collector/internal/app"
	"github.com/setorid/collector/internal/app/metrics"
	"github.com/setorid/collector/internal/app/services/submissions"
	"github.com/setorid/collector/internal/app/storage"
)

// User-facing response messages, kept verbatim from the deployed frontend's
// language.
const (
	msgSubmitted     = "Akun berhasil disetor!"
	msgMarkedPaid    = "Ditandai sebagai lunas"
	msgMarkedUnpaid  = "Ditandai belum bayar"
	msgDeleted       = "Submission berhasil dihapus"
	msgCleared       = "Semua data berhasil dihapus"
	msgNotFound      = "Submission tidak ditemukan"
	msgWrongPassword = "Password salah"
)

// Config carries the HTTP-layer settings.
type Config struct {
	AdminPassword string
	TokenSecret   string
	// StaticDir, when set, is served for everything outside /api.
	StaticDir string
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app  *app.Application
	auth *authenticator
}

// NewHandler returns the router exposing the collector REST API.
func NewHandler(application *app.Application, cfg Config) http.Handler {
	h := &handler{
		app:  application,
		auth: newAuthenticator(cfg.AdminPassword, cfg.TokenSecret),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/admin/login", h.adminLogin)
		r.Get("/stats", h.stats)
		r.Route("/submissions", func(r chi.Router) {
			r.Get("/", h.listSubmissions)
			r.Post("/", h.createSubmission)
			r.Delete("/", h.clearSubmissions)
			r.Get("/export", h.exportCSV)
			r.Patch("/{id}/toggle-paid", h.togglePaid)
			r.Delete("/{id}", h.deleteSubmission)
		})
	})

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	if cfg.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.StaticDir))
		r.Handle("/*", fileServer)
	}

	return r
}

func (h *handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token, err := h.auth.login(payload.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"error":   msgWrongPassword,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
	})
}

func (h *handler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.app.Submissions.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.app.Submissions.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) createSubmission(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name   string `json:"name"`
		Email  string `json:"email"`
		Wallet string `json:"wallet"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.app.Submissions.Add(r.Context(), payload.Name, payload.Email, payload.Wallet)
	if err != nil {
		var vErr *submissions.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      created.ID,
		"message": msgSubmitted,
	})
}

func (h *handler) togglePaid(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		// A malformed id matches nothing, same as the original's parseInt.
		writeError(w, http.StatusNotFound, errors.New(msgNotFound))
		return
	}

	updated, err := h.app.Submissions.TogglePaid(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New(msgNotFound))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	message := msgMarkedUnpaid
	if updated.Paid {
		message = msgMarkedPaid
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"paid":    updated.Paid,
		"message": message,
	})
}

func (h *handler) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	// Deleting an unknown or malformed id succeeds; the operation is
	// idempotent by contract.
	if id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64); err == nil {
		if err := h.app.Submissions.Delete(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": msgDeleted,
	})
}

func (h *handler) clearSubmissions(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Submissions.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": msgCleared,
	})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "collector",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
