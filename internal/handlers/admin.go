package handlers

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"greenguardian/db"
	"greenguardian/internal/uploads"
	"greenguardian/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const (
	adminCookieName = "gg_admin"
	adminCookieTTL  = 8 * time.Hour
	signedReadTTL   = time.Hour
)

// AdminLoginHandler handles POST /api/admin/login: a shared-password
// check that sets the admin session cookie.
func (h *Handler) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if h.AdminPassword == "" ||
		subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.AdminPassword)) != 1 {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, map[string]any{"ok": false})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "true",
		Path:     "/",
		MaxAge:   int(adminCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	render.JSON(w, r, map[string]any{"ok": true})
}

// RequireAdmin guards the admin viewer endpoints behind the session
// cookie set by AdminLoginHandler.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(adminCookieName)
		if err != nil || c.Value != "true" {
			renderError(w, r, http.StatusUnauthorized, "Admin login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminListSubmissionsHandler handles GET /api/admin/submissions.
func (h *Handler) AdminListSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	entries, err := h.Store.GetBidEntries(r.Context(), params.Limit, params.Offset)
	if err != nil {
		h.Log.Error("admin list failed", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Failed to list submissions")
		return
	}

	render.JSON(w, r, entries)
}

type adminSubmissionResponse struct {
	*db.BidEntry
	// Documents maps each stored document to a time-limited read URL
	// for preview. A slot that fails to sign is simply absent.
	Documents      map[string]string `json:"documents"`
	SupportingDocs []string          `json:"supporting_docs"`

	EvaluationsCount int `json:"evaluations_count"`
}

// AdminGetSubmissionHandler handles GET /api/admin/submissions/{id}:
// the full record plus signed read URLs for every stored document.
func (h *Handler) AdminGetSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		renderError(w, r, http.StatusBadRequest, "The submission id is invalid")
		return
	}

	entry, err := h.Store.GetBidEntry(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		renderError(w, r, http.StatusNotFound, "Submission not found")
		return
	}
	if err != nil {
		h.Log.Error("admin detail failed", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Failed to load submission")
		return
	}

	resp := adminSubmissionResponse{
		BidEntry:       entry,
		Documents:      map[string]string{},
		SupportingDocs: []string{},
	}

	sign := func(slot, bucket string, path *string) {
		if path == nil || *path == "" {
			return
		}
		url, err := h.Files.CreateSignedURL(r.Context(), bucket, *path, signedReadTTL)
		if err != nil {
			h.Log.Warn("sign read url failed",
				slog.String("slot", slot), slog.String("error", err.Error()))
			return
		}
		resp.Documents[slot] = url
	}

	sign("key_visual", uploads.BucketKeyVisual, &entry.KeyVisualPath)
	sign("bid_document", uploads.BucketBidDocument, &entry.BidDocPath)
	sign("project_documentation", uploads.BucketProjectDocumentation, &entry.ProjectDocPath)
	sign("authorization_form_document", uploads.BucketAuthorizationForm, entry.AuthorizationFormDocPath)
	sign("business_permit_document", uploads.BucketBusinessPermit, entry.BusinessPermitPath)
	sign("dti_sec_document", uploads.BucketDTISec, entry.DTISecPermitPath)

	for _, p := range entry.SupportingDocPaths {
		url, err := h.Files.CreateSignedURL(r.Context(), uploads.BucketSupporting, p, signedReadTTL)
		if err != nil {
			h.Log.Warn("sign read url failed",
				slog.String("slot", "supporting_docs"), slog.String("error", err.Error()))
			continue
		}
		resp.SupportingDocs = append(resp.SupportingDocs, url)
	}

	if count, err := h.Store.CountEvaluations(r.Context(), entry.ID); err == nil {
		resp.EvaluationsCount = count
	}

	render.JSON(w, r, resp)
}
