// Package uploads implements the file side of the submission
// pipeline: manifest validation against the per-track document rules,
// signed-ticket issuance, and the concurrent byte uploads themselves.
package uploads

import (
	"fmt"
	"strings"

	"greenguardian/db"
	"greenguardian/models"
)

// One bucket per logical slot.
const (
	BucketKeyVisual            = "key-visuals"
	BucketBidDocument          = "bid-docs"
	BucketProjectDocumentation = "project-documentations"
	BucketAuthorizationForm    = "authorization-forms"
	BucketBusinessPermit       = "business-permit-docs"
	BucketDTISec               = "dti-sec-docs"
	BucketSupporting           = "supporting-docs"
)

func isPDF(mime string) bool {
	return mime == "application/pdf"
}

func isImage(mime string) bool {
	return mime == "image/png" || mime == "image/jpeg"
}

// Ext derives the storage extension from the original filename:
// lower-cased and at most 8 characters, otherwise "bin".
func Ext(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return "bin"
	}
	ext := strings.ToLower(name[i+1:])
	if len(ext) > 8 {
		return "bin"
	}
	return ext
}

// ValidateManifest applies the required-document rules for the track.
// It must pass before any upload ticket is requested. Supporting docs
// are presence-only here; their types are checked client-side.
func ValidateManifest(track string, m *models.InitUploadRequest) error {
	switch track {
	case db.TrackLGU, db.TrackBusiness:
	default:
		return fmt.Errorf("unknown track %q", track)
	}

	if m.KeyVisual == nil {
		return fmt.Errorf("key visual is required")
	}
	if !isImage(m.KeyVisual.Type) {
		return fmt.Errorf("key visual must be a PNG or JPEG image")
	}
	if m.BidDocument == nil || !isPDF(m.BidDocument.Type) {
		return fmt.Errorf("bid document must be a PDF")
	}
	if m.ProjectDocumentation == nil || !isPDF(m.ProjectDocumentation.Type) {
		return fmt.Errorf("project documentation must be a PDF")
	}

	if track == db.TrackLGU {
		if m.AuthorizationForm == nil {
			return fmt.Errorf("authorization form is required for LGU submissions")
		}
		if !isPDF(m.AuthorizationForm.Type) {
			return fmt.Errorf("authorization form must be a PDF")
		}
		if m.BusinessPermit != nil || m.DTISec != nil {
			return fmt.Errorf("business permit and DTI/SEC permit do not apply to LGU submissions")
		}
	} else {
		if m.BusinessPermit == nil || m.DTISec == nil {
			return fmt.Errorf("business permit and DTI/SEC permit are required for business submissions")
		}
		if !isPDF(m.BusinessPermit.Type) && !isImage(m.BusinessPermit.Type) {
			return fmt.Errorf("business permit must be a PDF, PNG or JPEG")
		}
		if !isPDF(m.DTISec.Type) && !isImage(m.DTISec.Type) {
			return fmt.Errorf("DTI/SEC permit must be a PDF, PNG or JPEG")
		}
		if m.AuthorizationForm != nil {
			return fmt.Errorf("authorization form does not apply to business submissions")
		}
	}

	return nil
}
