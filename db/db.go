package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a write-once record is written twice.
	ErrAlreadyExists = errors.New("record already exists")
)

// Nomination tracks. The track decides which documents are required
// and which award-category and classification vocabularies apply.
const (
	TrackLGU      = "Local Government Unit"
	TrackBusiness = "Business"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// BidEntry is one award nomination. Inserted exactly once, never
// updated or deleted by this service.
type BidEntry struct {
	ID          string `db:"id" json:"id"`
	ReferenceID string `db:"reference_id" json:"reference_id"`
	Track       string `db:"track" json:"track"`

	OrgName            string  `db:"org_name" json:"org_name"`
	OrgAddress         string  `db:"org_address" json:"org_address"`
	Classification     string  `db:"classification" json:"classification"`
	Website            *string `db:"website" json:"website"`
	FacebookPage       *string `db:"facebook_page" json:"facebook_page"`
	CompanyDescription *string `db:"company_description" json:"company_description"`

	FullName         string  `db:"full_name" json:"full_name"`
	Position         string  `db:"position" json:"position"`
	Email            string  `db:"email" json:"email"`
	ContactNumber    string  `db:"contact_number" json:"contact_number"`
	AltContactPerson *string `db:"alt_contact_person" json:"alt_contact_person"`
	AltContactNumber *string `db:"alt_contact_number" json:"alt_contact_number"`
	AltEmail         *string `db:"alt_email" json:"alt_email"`

	AwardCategory      string  `db:"award_category" json:"award_category"`
	ProjectTitle       string  `db:"project_title" json:"project_title"`
	ProjectDescription string  `db:"project_description" json:"project_description"`
	VideoLink          *string `db:"video_link" json:"video_link"`

	AuthorizationFormDocPath *string        `db:"authorization_form_doc_path" json:"authorization_form_doc_path"`
	BusinessPermitPath       *string        `db:"business_permit_path" json:"business_permit_path"`
	DTISecPermitPath         *string        `db:"dti_sec_permit_path" json:"dti_sec_permit_path"`
	KeyVisualPath            string         `db:"key_visual_path" json:"key_visual_path"`
	BidDocPath               string         `db:"bid_doc_path" json:"bid_doc_path"`
	ProjectDocPath           string         `db:"project_doc_path" json:"project_doc_path"`
	SupportingDocPaths       pq.StringArray `db:"supporting_doc_paths" json:"supporting_doc_paths"`

	DataPrivacyConsent bool `db:"data_privacy_consent" json:"data_privacy_consent"`
	TermsAccepted      bool `db:"terms_accepted" json:"terms_accepted"`
	InfoCertified      bool `db:"info_certified" json:"info_certified"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateBidEntry inserts the entry and fills the store-generated
// fields (id, reference_id, created_at) on the passed struct.
func (s *Storage) CreateBidEntry(ctx context.Context, e *BidEntry) error {
	query := `
        INSERT INTO bid_entries (
            track, org_name, org_address, classification, website,
            facebook_page, company_description,
            full_name, position, email, contact_number,
            alt_contact_person, alt_contact_number, alt_email,
            award_category, project_title, project_description, video_link,
            authorization_form_doc_path, business_permit_path, dti_sec_permit_path,
            key_visual_path, bid_doc_path, project_doc_path, supporting_doc_paths,
            data_privacy_consent, terms_accepted, info_certified
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
            $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28
        )
        RETURNING id, reference_id, created_at`
	return s.db.QueryRowContext(ctx, query,
		e.Track, e.OrgName, e.OrgAddress, e.Classification, e.Website,
		e.FacebookPage, e.CompanyDescription,
		e.FullName, e.Position, e.Email, e.ContactNumber,
		e.AltContactPerson, e.AltContactNumber, e.AltEmail,
		e.AwardCategory, e.ProjectTitle, e.ProjectDescription, e.VideoLink,
		e.AuthorizationFormDocPath, e.BusinessPermitPath, e.DTISecPermitPath,
		e.KeyVisualPath, e.BidDocPath, e.ProjectDocPath, e.SupportingDocPaths,
		e.DataPrivacyConsent, e.TermsAccepted, e.InfoCertified).
		Scan(&e.ID, &e.ReferenceID, &e.CreatedAt)
}

func (s *Storage) GetBidEntry(ctx context.Context, id string) (*BidEntry, error) {
	e := &BidEntry{}
	query := `SELECT * FROM bid_entries WHERE id = $1`
	err := s.db.GetContext(ctx, e, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// BidEntrySummary is the listing projection used by the admin table
// and the evaluator dashboard.
type BidEntrySummary struct {
	ID            string    `db:"id" json:"id"`
	ReferenceID   string    `db:"reference_id" json:"reference_id"`
	Track         string    `db:"track" json:"track"`
	OrgName       string    `db:"org_name" json:"org_name"`
	AwardCategory string    `db:"award_category" json:"award_category"`
	ProjectTitle  string    `db:"project_title" json:"project_title"`
	Email         string    `db:"email" json:"email"`
	ContactNumber string    `db:"contact_number" json:"contact_number"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

func (s *Storage) GetBidEntries(ctx context.Context, limit, offset int) ([]BidEntrySummary, error) {
	query := `
        SELECT id, reference_id, track, org_name, award_category,
               project_title, email, contact_number, created_at
        FROM bid_entries
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2`
	entries := []BidEntrySummary{}
	err := s.db.SelectContext(ctx, &entries, query, limit, offset)
	return entries, err
}

// Evaluation is one evaluator's completed scoresheet for one bid.
// At most one row exists per (bid_id, evaluator_id) pair; the table
// carries a uniqueness constraint and CreateEvaluation surfaces a
// second write as ErrAlreadyExists.
type Evaluation struct {
	ID             int     `db:"id" json:"id"`
	BidID          string  `db:"bid_id" json:"bidId"`
	EvaluatorID    string  `db:"evaluator_id" json:"evaluatorId"`
	EvaluatorName  string  `db:"evaluator_name" json:"evaluatorName"`
	EvaluatorEmail string  `db:"evaluator_email" json:"evaluatorEmail"`
	Impact         int     `db:"impact_score" json:"-"`
	Innovation     int     `db:"innovation_score" json:"-"`
	Sustainability int     `db:"sustainability_score" json:"-"`
	Community      int     `db:"community_score" json:"-"`
	Implementation int     `db:"implementation_score" json:"-"`
	Documentation  int     `db:"documentation_score" json:"-"`
	OverallScore   float64 `db:"overall_score" json:"overallScore"`
	OverallRemarks string  `db:"overall_remarks" json:"overallRemarks"`
	Status         string  `db:"status" json:"status"`

	SubmittedAt time.Time `db:"submitted_at" json:"submittedAt"`
}

// Scores returns the per-criterion ratings keyed by criterion id.
func (e *Evaluation) Scores() map[string]int {
	return map[string]int{
		"impact":         e.Impact,
		"innovation":     e.Innovation,
		"sustainability": e.Sustainability,
		"community":      e.Community,
		"implementation": e.Implementation,
		"documentation":  e.Documentation,
	}
}

// SetScores fills the per-criterion columns from a ratings map.
func (e *Evaluation) SetScores(scores map[string]int) {
	e.Impact = scores["impact"]
	e.Innovation = scores["innovation"]
	e.Sustainability = scores["sustainability"]
	e.Community = scores["community"]
	e.Implementation = scores["implementation"]
	e.Documentation = scores["documentation"]
}

func (s *Storage) GetEvaluation(ctx context.Context, bidID, evaluatorID string) (*Evaluation, error) {
	ev := &Evaluation{}
	query := `SELECT * FROM evaluations WHERE bid_id = $1 AND evaluator_id = $2`
	err := s.db.GetContext(ctx, ev, query, bidID, evaluatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ev, err
}

// CreateEvaluation inserts the scoresheet. The insert can race against
// a concurrent submission for the same pair, so the conflict is
// detected at insert time: ON CONFLICT DO NOTHING yields no row, which
// is reported as ErrAlreadyExists without touching the first record.
func (s *Storage) CreateEvaluation(ctx context.Context, ev *Evaluation) error {
	query := `
        INSERT INTO evaluations (
            bid_id, evaluator_id, evaluator_name, evaluator_email,
            impact_score, innovation_score, sustainability_score,
            community_score, implementation_score, documentation_score,
            overall_score, overall_remarks
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (bid_id, evaluator_id) DO NOTHING
        RETURNING id, status, submitted_at`
	err := s.db.QueryRowContext(ctx, query,
		ev.BidID, ev.EvaluatorID, ev.EvaluatorName, ev.EvaluatorEmail,
		ev.Impact, ev.Innovation, ev.Sustainability,
		ev.Community, ev.Implementation, ev.Documentation,
		ev.OverallScore, ev.OverallRemarks).
		Scan(&ev.ID, &ev.Status, &ev.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAlreadyExists
	}
	return err
}

func (s *Storage) CountEvaluations(ctx context.Context, bidID string) (int, error) {
	var count int
	query := `SELECT COUNT(1) FROM evaluations WHERE bid_id = $1`
	err := s.db.GetContext(ctx, &count, query, bidID)
	return count, err
}
