package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"greenguardian/db"
	"greenguardian/internal/handlers"
	"greenguardian/models"

	"github.com/stretchr/testify/require"
)

func fullScores() map[string]int {
	return map[string]int{
		"impact":         5,
		"innovation":     4,
		"sustainability": 4,
		"community":      3,
		"implementation": 5,
		"documentation":  5,
	}
}

func evaluationRequest() models.SubmitEvaluationRequest {
	return models.SubmitEvaluationRequest{
		BidID:          "bid-1",
		EvaluatorID:    "eval-1",
		EvaluatorName:  "Maria Santos",
		EvaluatorEmail: "maria@example.org",
		Scores:         fullScores(),
		OverallScore:   86.0,
		OverallRemarks: "Strong, replicable program.",
	}
}

func TestGetEvaluationRequiresParams(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/evaluations", nil)
	w := httptest.NewRecorder()
	h.GetEvaluationHandler(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/evaluations?bidId=bid-1", nil)
	w = httptest.NewRecorder()
	h.GetEvaluationHandler(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "evaluatorId")
}

func TestGetEvaluationNone(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/evaluations?bidId=bid-1&evaluatorId=eval-1", nil)
	w := httptest.NewRecorder()
	h.GetEvaluationHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "null", string(resp["evaluation"]))
}

func TestSubmitEvaluation(t *testing.T) {
	h, store, _, _ := newTestHandler(t)

	w := postJSON(t, h.SubmitEvaluationHandler, "/api/evaluations", evaluationRequest())
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK         bool `json:"ok"`
		Evaluation struct {
			Status       string         `json:"status"`
			OverallScore float64        `json:"overallScore"`
			Scores       map[string]int `json:"scores"`
		} `json:"evaluation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	require.Equal(t, "Completed", resp.Evaluation.Status)
	require.Equal(t, 86.0, resp.Evaluation.OverallScore)
	require.Equal(t, fullScores(), resp.Evaluation.Scores)

	stored, err := store.GetEvaluation(context.Background(), "bid-1", "eval-1")
	require.NoError(t, err)
	require.Equal(t, 86.0, stored.OverallScore)
}

func TestSubmitEvaluationTwiceConflicts(t *testing.T) {
	h, store, _, _ := newTestHandler(t)

	first := postJSON(t, h.SubmitEvaluationHandler, "/api/evaluations", evaluationRequest())
	require.Equal(t, http.StatusOK, first.Code)

	// Same pair again, different remarks: rejected, first record intact.
	second := evaluationRequest()
	second.OverallRemarks = "Changed my mind."
	w := postJSON(t, h.SubmitEvaluationHandler, "/api/evaluations", second)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "already submitted")

	stored, err := store.GetEvaluation(context.Background(), "bid-1", "eval-1")
	require.NoError(t, err)
	require.Equal(t, "Strong, replicable program.", stored.OverallRemarks)
}

// racingStorage models a second tab whose scoresheet lands between the
// existence check and the insert: the lookup still sees nothing, the
// insert hits the uniqueness constraint.
type racingStorage struct {
	*MockStorage
}

func (s *racingStorage) GetEvaluation(ctx context.Context, bidID, evaluatorID string) (*db.Evaluation, error) {
	return nil, db.ErrNotFound
}

func (s *racingStorage) CreateEvaluation(ctx context.Context, ev *db.Evaluation) error {
	return db.ErrAlreadyExists
}

func TestSubmitEvaluationConcurrentSubmitConflicts(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handlers.NewHandler(log, &racingStorage{NewMockStorage()}, NewFakeFiles(), &MockMailer{}, "hunter2")

	w := postJSON(t, h.SubmitEvaluationHandler, "/api/evaluations", evaluationRequest())
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "already submitted")
}

func TestSubmitEvaluationDifferentEvaluatorAllowed(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	require.Equal(t, http.StatusOK,
		postJSON(t, h.SubmitEvaluationHandler, "/", evaluationRequest()).Code)

	other := evaluationRequest()
	other.EvaluatorID = "eval-2"
	require.Equal(t, http.StatusOK,
		postJSON(t, h.SubmitEvaluationHandler, "/", other).Code)
}

func TestSubmitEvaluationRequiresIDs(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	req := evaluationRequest()
	req.BidID = "   "
	w := postJSON(t, h.SubmitEvaluationHandler, "/api/evaluations", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "bidId is required")

	req = evaluationRequest()
	req.EvaluatorID = ""
	w = postJSON(t, h.SubmitEvaluationHandler, "/api/evaluations", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "evaluatorId is required")
}

func TestSubmitEvaluationIncompleteScores(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	req := evaluationRequest()
	delete(req.Scores, "community")
	w := postJSON(t, h.SubmitEvaluationHandler, "/api/evaluations", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "community")
}

func TestSubmitEvaluationOutOfRangeScore(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	req := evaluationRequest()
	req.Scores["impact"] = 6
	w := postJSON(t, h.SubmitEvaluationHandler, "/api/evaluations", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitEvaluationEmptyRemarks(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	req := evaluationRequest()
	req.OverallRemarks = "   "
	w := postJSON(t, h.SubmitEvaluationHandler, "/api/evaluations", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "overallRemarks")
}

func TestSubmitEvaluationScoreMismatch(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	// The client's echo disagrees with the server's computation.
	req := evaluationRequest()
	req.OverallScore = 99.0
	w := postJSON(t, h.SubmitEvaluationHandler, "/api/evaluations", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "does not match")
}

func TestSubmitThenGetEvaluationRoundTrip(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	require.Equal(t, http.StatusOK,
		postJSON(t, h.SubmitEvaluationHandler, "/", evaluationRequest()).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/evaluations?bidId=bid-1&evaluatorId=eval-1", nil)
	w := httptest.NewRecorder()
	h.GetEvaluationHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Evaluation struct {
			OverallScore float64        `json:"overallScore"`
			Scores       map[string]int `json:"scores"`
			Status       string         `json:"status"`
		} `json:"evaluation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 86.0, resp.Evaluation.OverallScore)
	require.Equal(t, "Completed", resp.Evaluation.Status)
	require.Equal(t, fullScores(), resp.Evaluation.Scores)
}
