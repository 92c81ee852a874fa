package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"greenguardian/internal/mailer"
	"greenguardian/internal/objectstore"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// Handler wires the HTTP surface to the row store, the object store
// and the mailer.
type Handler struct {
	Log      *slog.Logger
	Store    StorageInterface
	Files    objectstore.ObjectStore
	Mail     mailer.Sender
	validate *validator.Validate

	// AdminPassword guards the admin viewer login.
	AdminPassword string
}

func NewHandler(log *slog.Logger, store StorageInterface, files objectstore.ObjectStore, mail mailer.Sender, adminPassword string) *Handler {
	return &Handler{
		Log:           log,
		Store:         store,
		Files:         files,
		Mail:          mail,
		validate:      validator.New(),
		AdminPassword: adminPassword,
	}
}

// PingHandler answers "ok" for liveness checks.
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func errResp(msg string) map[string]string {
	return map[string]string{"error": msg}
}

type paginationParams struct {
	Limit  int
	Offset int
}

func parsePaginationParams(r *http.Request) paginationParams {
	p := paginationParams{Limit: 50, Offset: 0}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			p.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.Offset = n
		}
	}
	return p
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errResp(msg))
}
