package ingest

import (
	"context"
	"fmt"

	"eraport-ingestion/internal/db"
	"eraport-ingestion/internal/logger"
	"eraport-ingestion/internal/model"
	"eraport-ingestion/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Stager writes drafts once and reads them back by batch.
type Stager struct {
	drafts db.DraftStore
	log    zerolog.Logger
}

func NewStager(drafts db.DraftStore) *Stager {
	return &Stager{drafts: drafts, log: logger.For("stager")}
}

// Stage stores one draft per row under a new batch id in a single write.
func (s *Stager) Stage(ctx context.Context, rows []model.DraftRow) (string, error) {
	batchID := uuid.NewString()
	for i := range rows {
		rows[i].UploadBatchID = batchID
	}

	if err := s.drafts.InsertDrafts(ctx, rows); err != nil {
		return "", fmt.Errorf("failed to stage drafts: %w", err)
	}

	s.log.Info().Str("batch_id", batchID).Int("rows", len(rows)).Msg("Drafts staged")
	return batchID, nil
}

// Drafts returns the rows of a batch ordered by source row number.
func (s *Stager) Drafts(ctx context.Context, batchID string) ([]model.DraftRow, error) {
	rows, err := s.drafts.GetDraftsByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrBatchNotFound, batchID)
	}
	return rows, nil
}

func (s *Stager) Batches(ctx context.Context) ([]model.DraftBatchSummary, error) {
	return s.drafts.ListDraftBatches(ctx)
}
