package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"greenguardian/db"
	"greenguardian/internal/mailer"
	"greenguardian/internal/uploads"
	"greenguardian/models"

	"github.com/go-chi/render"
)

const (
	maxCompanyDescriptionWords = 200
	maxProjectDescriptionWords = 300
)

// InitUploadHandler handles POST /api/bid-entry/init-upload: it
// validates the manifest against the track's document rules and
// issues one signed upload ticket per slot. No ticket is issued for
// an invalid manifest.
func (h *Handler) InitUploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	var req models.InitUploadRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	defer r.Body.Close()

	if err := uploads.ValidateManifest(req.Track, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := uploads.InitUpload(r.Context(), h.Files, req.Track, &req)
	if err != nil {
		h.Log.Error("init upload failed", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Init upload failed.")
		return
	}

	render.JSON(w, r, resp)
}

// wordCount counts maximal runs of non-whitespace.
func wordCount(s string) int {
	return len(strings.Fields(s))
}

// nullable trims an optional field and collapses empty values to nil.
func nullable(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// CreateBidEntryHandler handles POST /api/create-bid-entry. All
// client-side checks are repeated here; the client is not trusted.
// On success exactly one row is inserted and the subset of fields the
// confirmation email needs is returned.
func (h *Handler) CreateBidEntryHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	var req models.CreateBidEntryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(req); err != nil {
		h.Log.Info("submission rejected", slog.String("reason", err.Error()))
		renderError(w, r, http.StatusBadRequest, "Missing required fields.")
		return
	}

	if !req.DataPrivacyConsent || !req.TermsAccepted || !req.InfoCertified {
		renderError(w, r, http.StatusBadRequest, "All consents must be given before submitting.")
		return
	}

	isLGU := req.Track == db.TrackLGU
	isBusiness := req.Track == db.TrackBusiness

	if isLGU && nullable(req.AuthorizationFormDocPath) == nil {
		renderError(w, r, http.StatusBadRequest, "Authorization form is required for LGU submissions.")
		return
	}
	if isBusiness && (nullable(req.BusinessPermitPath) == nil || nullable(req.DTISecPermitPath) == nil) {
		renderError(w, r, http.StatusBadRequest, "Business permit and DTI/SEC permit are required for business submissions.")
		return
	}

	if req.CompanyDescription != nil && wordCount(*req.CompanyDescription) > maxCompanyDescriptionWords {
		renderError(w, r, http.StatusBadRequest, "Company description must be 200 words or less.")
		return
	}
	if wordCount(req.ProjectDescription) > maxProjectDescriptionWords {
		renderError(w, r, http.StatusBadRequest, "Project description must be 300 words or less.")
		return
	}

	entry := &db.BidEntry{
		Track:              req.Track,
		OrgName:            req.OrgName,
		OrgAddress:         req.OrgAddress,
		Classification:     req.Classification,
		Website:            nullable(req.Website),
		FacebookPage:       nullable(req.FacebookPage),
		CompanyDescription: nullable(req.CompanyDescription),

		FullName:         req.FullName,
		Position:         req.Position,
		Email:            req.Email,
		ContactNumber:    req.ContactNumber,
		AltContactPerson: nullable(req.AltContactPerson),
		AltContactNumber: nullable(req.AltContactNumber),
		AltEmail:         nullable(req.AltEmail),

		AwardCategory:      req.AwardCategory,
		ProjectTitle:       req.ProjectTitle,
		ProjectDescription: req.ProjectDescription,
		VideoLink:          nullable(req.VideoLink),

		KeyVisualPath:      req.KeyVisualPath,
		BidDocPath:         req.BidDocPath,
		ProjectDocPath:     req.ProjectDocPath,
		SupportingDocPaths: req.SupportingDocPaths,

		DataPrivacyConsent: req.DataPrivacyConsent,
		TermsAccepted:      req.TermsAccepted,
		InfoCertified:      req.InfoCertified,
	}
	if entry.SupportingDocPaths == nil {
		entry.SupportingDocPaths = []string{}
	}

	// Track-foreign document paths are forced to null regardless of
	// what the client sent.
	if isLGU {
		entry.AuthorizationFormDocPath = nullable(req.AuthorizationFormDocPath)
	}
	if isBusiness {
		entry.BusinessPermitPath = nullable(req.BusinessPermitPath)
		entry.DTISecPermitPath = nullable(req.DTISecPermitPath)
	}

	if err := h.Store.CreateBidEntry(r.Context(), entry); err != nil {
		h.Log.Error("create bid entry failed", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, models.CreateBidEntryResponse{
		ID:            entry.ID,
		Email:         entry.Email,
		FullName:      entry.FullName,
		OrgName:       entry.OrgName,
		AwardCategory: entry.AwardCategory,
		ReferenceID:   entry.ReferenceID,
		CreatedAt:     entry.CreatedAt,
	})
}

// SendEmailHandler handles POST /api/send-email. The send is best
// effort: a failure is reported but the submission it refers to
// stands as accepted.
func (h *Handler) SendEmailHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	var req models.SendEmailRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(req); err != nil {
		renderError(w, r, http.StatusBadRequest, "Missing required fields.")
		return
	}

	err := h.Mail.SendAcceptance(req.Email, mailer.Acceptance{
		FullName:      req.FullName,
		OrgName:       req.OrgName,
		Track:         req.Track,
		AwardCategory: req.AwardCategory,
		ReferenceID:   req.ReferenceID,
	})
	if err != nil {
		h.Log.Warn("acceptance email failed",
			slog.String("reference_id", req.ReferenceID),
			slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]any{"success": false, "message": "Failed to send email"})
		return
	}

	render.JSON(w, r, map[string]any{"success": true})
}

// GetBidEntriesHandler handles GET /api/bids, the read-only listing
// behind the evaluator dashboard.
func (h *Handler) GetBidEntriesHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	entries, err := h.Store.GetBidEntries(r.Context(), params.Limit, params.Offset)
	if err != nil {
		h.Log.Error("list bid entries failed", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Failed to list bid entries")
		return
	}

	render.JSON(w, r, entries)
}
