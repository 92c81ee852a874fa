// Package models holds the request and response shapes of the public
// API. Database rows live in the db package; these types only carry
// what crosses the wire.
package models

import "time"

// FileManifest describes one file the client intends to upload:
// its original name and declared MIME type.
type FileManifest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// UploadTicket authorizes exactly one object-store write to the
// pre-agreed bucket/path.
type UploadTicket struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	Token  string `json:"token"`
}

// InitUploadRequest is the manifest sent before any bytes move.
// Track-conditional slots are pointers; the client omits the ones that
// do not apply to its track.
type InitUploadRequest struct {
	Track                string         `json:"track"`
	AuthorizationForm    *FileManifest  `json:"authorization_form_document,omitempty"`
	BusinessPermit       *FileManifest  `json:"business_permit_document,omitempty"`
	DTISec               *FileManifest  `json:"dti_sec_document,omitempty"`
	KeyVisual            *FileManifest  `json:"key_visual"`
	BidDocument          *FileManifest  `json:"bid_document"`
	ProjectDocumentation *FileManifest  `json:"project_documentation"`
	Supporting           []FileManifest `json:"supporting_docs"`
}

// InitUploadResponse carries one ticket per accepted slot plus the
// per-submission folder all paths share.
type InitUploadResponse struct {
	Folder               string         `json:"folder"`
	AuthorizationForm    *UploadTicket  `json:"authorization_form_document,omitempty"`
	BusinessPermit       *UploadTicket  `json:"business_permit_document,omitempty"`
	DTISec               *UploadTicket  `json:"dti_sec_document,omitempty"`
	KeyVisual            *UploadTicket  `json:"key_visual"`
	BidDocument          *UploadTicket  `json:"bid_document"`
	ProjectDocumentation *UploadTicket  `json:"project_documentation"`
	Supporting           []UploadTicket `json:"supporting_docs"`
}

// CreateBidEntryRequest is the submission payload, sent once all
// uploads have resolved. Paths reference already-stored objects.
type CreateBidEntryRequest struct {
	Track string `json:"track" validate:"required,oneof='Local Government Unit' Business"`

	OrgName            string  `json:"org_name" validate:"required"`
	OrgAddress         string  `json:"org_address" validate:"required"`
	Classification     string  `json:"classification" validate:"required"`
	Website            *string `json:"website"`
	FacebookPage       *string `json:"facebook_page"`
	CompanyDescription *string `json:"company_description"`

	FullName         string  `json:"full_name" validate:"required"`
	Position         string  `json:"position" validate:"required"`
	Email            string  `json:"email" validate:"required,email"`
	ContactNumber    string  `json:"contact_number" validate:"required"`
	AltContactPerson *string `json:"alt_contact_person"`
	AltContactNumber *string `json:"alt_contact_number"`
	AltEmail         *string `json:"alt_email"`

	AwardCategory      string  `json:"award_category" validate:"required"`
	ProjectTitle       string  `json:"project_title" validate:"required"`
	ProjectDescription string  `json:"project_description" validate:"required"`
	VideoLink          *string `json:"video_link"`

	AuthorizationFormDocPath *string  `json:"authorization_form_doc_path"`
	BusinessPermitPath       *string  `json:"business_permit_path"`
	DTISecPermitPath         *string  `json:"dti_sec_permit_path"`
	KeyVisualPath            string   `json:"key_visual_path" validate:"required"`
	BidDocPath               string   `json:"bid_doc_path" validate:"required"`
	ProjectDocPath           string   `json:"project_doc_path" validate:"required"`
	SupportingDocPaths       []string `json:"supporting_doc_paths"`

	DataPrivacyConsent bool `json:"data_privacy_consent"`
	TermsAccepted      bool `json:"terms_accepted"`
	InfoCertified      bool `json:"info_certified"`
}

// CreateBidEntryResponse is the subset of the stored row the client
// needs for the confirmation email and success screen.
type CreateBidEntryResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	OrgName       string    `json:"org_name"`
	AwardCategory string    `json:"award_category"`
	ReferenceID   string    `json:"reference_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// SendEmailRequest triggers the best-effort acceptance email.
type SendEmailRequest struct {
	Email         string `json:"email" validate:"required,email"`
	FullName      string `json:"fullName" validate:"required"`
	OrgName       string `json:"orgName" validate:"required"`
	Track         string `json:"track" validate:"required"`
	AwardCategory string `json:"awardCategory" validate:"required"`
	ReferenceID   string `json:"referenceId" validate:"required"`
}

// SubmitEvaluationRequest is a completed scoresheet. OverallScore is
// the client's optimistic echo; the server recomputes it and is the
// source of truth for the stored value. Validated field by field in
// the handler so each rejection names the offending field.
type SubmitEvaluationRequest struct {
	BidID          string         `json:"bidId"`
	EvaluatorID    string         `json:"evaluatorId"`
	EvaluatorName  string         `json:"evaluatorName"`
	EvaluatorEmail string         `json:"evaluatorEmail"`
	Scores         map[string]int `json:"scores"`
	OverallScore   float64        `json:"overallScore"`
	OverallRemarks string         `json:"overallRemarks"`
}

// AdminLoginRequest carries the shared admin password.
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}
