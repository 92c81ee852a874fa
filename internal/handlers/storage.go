package handlers

import (
	"context"

	"greenguardian/db"
)

type StorageInterface interface {
	CreateBidEntry(ctx context.Context, e *db.BidEntry) error
	GetBidEntry(ctx context.Context, id string) (*db.BidEntry, error)
	GetBidEntries(ctx context.Context, limit, offset int) ([]db.BidEntrySummary, error)

	GetEvaluation(ctx context.Context, bidID, evaluatorID string) (*db.Evaluation, error)
	CreateEvaluation(ctx context.Context, ev *db.Evaluation) error
	CountEvaluations(ctx context.Context, bidID string) (int, error)
}
