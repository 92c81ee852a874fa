package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"greenguardian/db"
	"greenguardian/internal/scoring"
	"greenguardian/models"

	"github.com/go-chi/render"
)

// evaluationPayload is the wire shape of a stored evaluation, with the
// per-criterion ratings expanded into a map for the scoresheet UI.
type evaluationPayload struct {
	*db.Evaluation
	Scores map[string]int `json:"scores"`
}

func toPayload(ev *db.Evaluation) *evaluationPayload {
	return &evaluationPayload{Evaluation: ev, Scores: ev.Scores()}
}

// GetEvaluationHandler handles GET /api/evaluations?bidId=&evaluatorId=.
// The response carries the existing evaluation or null; an existing
// record is what locks the scoresheet UI.
func (h *Handler) GetEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	bidID := strings.TrimSpace(r.URL.Query().Get("bidId"))
	if bidID == "" {
		renderError(w, r, http.StatusBadRequest, "bidId is required")
		return
	}
	evaluatorID := strings.TrimSpace(r.URL.Query().Get("evaluatorId"))
	if evaluatorID == "" {
		renderError(w, r, http.StatusBadRequest, "evaluatorId is required")
		return
	}

	ev, err := h.Store.GetEvaluation(r.Context(), bidID, evaluatorID)
	if errors.Is(err, db.ErrNotFound) {
		render.JSON(w, r, map[string]any{"evaluation": nil})
		return
	}
	if err != nil {
		h.Log.Error("get evaluation failed", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Failed to load evaluation")
		return
	}

	render.JSON(w, r, map[string]any{"evaluation": toPayload(ev)})
}

// SubmitEvaluationHandler handles POST /api/evaluations. An
// evaluation is write-once per (bid, evaluator) pair: the first
// complete scoresheet is stored, every later attempt gets 409. The
// overall score is recomputed here; the client's number is only an
// echo and must agree with the server's.
func (h *Handler) SubmitEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	var req models.SubmitEvaluationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	defer r.Body.Close()

	req.BidID = strings.TrimSpace(req.BidID)
	if req.BidID == "" {
		renderError(w, r, http.StatusBadRequest, "bidId is required")
		return
	}
	req.EvaluatorID = strings.TrimSpace(req.EvaluatorID)
	if req.EvaluatorID == "" {
		renderError(w, r, http.StatusBadRequest, "evaluatorId is required")
		return
	}

	if err := scoring.ValidateRatings(req.Scores); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.OverallRemarks = strings.TrimSpace(req.OverallRemarks)
	if req.OverallRemarks == "" {
		renderError(w, r, http.StatusBadRequest, "overallRemarks is required")
		return
	}

	computed := scoring.Score(req.Scores)
	if math.Abs(req.OverallScore-computed) > 0.05 {
		renderError(w, r, http.StatusBadRequest, "overallScore does not match the submitted ratings")
		return
	}

	// Defense in depth: the uniqueness constraint still rejects the
	// loser of a race between this check and the insert.
	if _, err := h.Store.GetEvaluation(r.Context(), req.BidID, req.EvaluatorID); err == nil {
		renderError(w, r, http.StatusConflict, "Evaluation already submitted. Locked.")
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		h.Log.Error("evaluation lookup failed", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Failed to check existing evaluation")
		return
	}

	ev := &db.Evaluation{
		BidID:          req.BidID,
		EvaluatorID:    req.EvaluatorID,
		EvaluatorName:  strings.TrimSpace(req.EvaluatorName),
		EvaluatorEmail: strings.TrimSpace(req.EvaluatorEmail),
		OverallScore:   computed,
		OverallRemarks: req.OverallRemarks,
	}
	ev.SetScores(req.Scores)

	if err := h.Store.CreateEvaluation(r.Context(), ev); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			renderError(w, r, http.StatusConflict, "Evaluation already submitted. Locked.")
			return
		}
		h.Log.Error("create evaluation failed", slog.String("error", err.Error()))
		renderError(w, r, http.StatusInternalServerError, "Failed to store evaluation")
		return
	}

	render.JSON(w, r, map[string]any{"ok": true, "evaluation": toPayload(ev)})
}
