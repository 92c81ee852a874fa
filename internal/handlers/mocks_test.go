package handlers_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"greenguardian/db"
	"greenguardian/internal/handlers"
	"greenguardian/internal/mailer"
)

// MockStorage implements handlers.StorageInterface in memory.
type MockStorage struct {
	mu sync.Mutex

	CreateBidEntryErr error
	Entries           []*db.BidEntry
	Evaluations       map[string]*db.Evaluation

	GetBidEntriesFunc func(ctx context.Context, limit, offset int) ([]db.BidEntrySummary, error)
}

func NewMockStorage() *MockStorage {
	return &MockStorage{Evaluations: make(map[string]*db.Evaluation)}
}

func (m *MockStorage) CreateBidEntry(ctx context.Context, e *db.BidEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateBidEntryErr != nil {
		return m.CreateBidEntryErr
	}
	e.ID = fmt.Sprintf("bid-%d", len(m.Entries)+1)
	e.ReferenceID = fmt.Sprintf("GGA-%06d", len(m.Entries)+1)
	e.CreatedAt = time.Now()
	m.Entries = append(m.Entries, e)
	return nil
}

func (m *MockStorage) GetBidEntry(ctx context.Context, id string) (*db.BidEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) GetBidEntries(ctx context.Context, limit, offset int) ([]db.BidEntrySummary, error) {
	if m.GetBidEntriesFunc != nil {
		return m.GetBidEntriesFunc(ctx, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	summaries := []db.BidEntrySummary{}
	for _, e := range m.Entries {
		summaries = append(summaries, db.BidEntrySummary{
			ID:            e.ID,
			ReferenceID:   e.ReferenceID,
			Track:         e.Track,
			OrgName:       e.OrgName,
			AwardCategory: e.AwardCategory,
			ProjectTitle:  e.ProjectTitle,
			Email:         e.Email,
			ContactNumber: e.ContactNumber,
			CreatedAt:     e.CreatedAt,
		})
	}
	return summaries, nil
}

func evalKey(bidID, evaluatorID string) string {
	return bidID + "|" + evaluatorID
}

func (m *MockStorage) GetEvaluation(ctx context.Context, bidID, evaluatorID string) (*db.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev, ok := m.Evaluations[evalKey(bidID, evaluatorID)]; ok {
		return ev, nil
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) CreateEvaluation(ctx context.Context, ev *db.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := evalKey(ev.BidID, ev.EvaluatorID)
	if _, ok := m.Evaluations[key]; ok {
		return db.ErrAlreadyExists
	}
	ev.ID = len(m.Evaluations) + 1
	ev.Status = "Completed"
	ev.SubmittedAt = time.Now()
	stored := *ev
	m.Evaluations[key] = &stored
	return nil
}

func (m *MockStorage) CountEvaluations(ctx context.Context, bidID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, ev := range m.Evaluations {
		if ev.BidID == bidID {
			count++
		}
	}
	return count, nil
}

// FakeFiles implements objectstore.ObjectStore in memory.
type FakeFiles struct {
	mu      sync.Mutex
	Signed  []string
	Uploads map[string]int
	SignErr error
}

func NewFakeFiles() *FakeFiles {
	return &FakeFiles{Uploads: make(map[string]int)}
}

func (f *FakeFiles) CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SignErr != nil {
		return "", f.SignErr
	}
	f.Signed = append(f.Signed, bucket+"/"+path)
	return fmt.Sprintf("token-%d", len(f.Signed)), nil
}

func (f *FakeFiles) UploadToSignedURL(ctx context.Context, bucket, path, token, contentType string, body io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Uploads[path]++
	return nil
}

func (f *FakeFiles) CreateSignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	return "https://signed.example/" + bucket + "/" + path, nil
}

// MockMailer records acceptance sends.
type MockMailer struct {
	mu      sync.Mutex
	Sent    []mailer.Acceptance
	SendErr error
}

func (m *MockMailer) SendAcceptance(to string, a mailer.Acceptance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, a)
	return nil
}

func newTestHandler(t *testing.T) (*handlers.Handler, *MockStorage, *FakeFiles, *MockMailer) {
	t.Helper()
	store := NewMockStorage()
	files := NewFakeFiles()
	mail := &MockMailer{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handlers.NewHandler(log, store, files, mail, "hunter2"), store, files, mail
}
