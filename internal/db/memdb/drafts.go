package memdb

import (
	"context"
	"sort"

	"eraport-ingestion/internal/model"
)

func (r *repo) InsertDrafts(_ context.Context, rows []model.DraftRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, row := range rows {
		row.ID = r.t.id()
		row.CreatedAt = now
		row.Errors = append([]string(nil), row.Errors...)
		r.t.drafts = append(r.t.drafts, row)
	}
	return nil
}

func (r *repo) GetDraftsByBatch(_ context.Context, batchID string) ([]model.DraftRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []model.DraftRow
	for _, d := range r.t.drafts {
		if d.UploadBatchID == batchID {
			rows = append(rows, d)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].RowNumber != rows[j].RowNumber {
			return rows[i].RowNumber < rows[j].RowNumber
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

func (r *repo) ListDraftBatches(_ context.Context) ([]model.DraftBatchSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byBatch := make(map[string]*model.DraftBatchSummary)
	var order []string
	for _, d := range r.t.drafts {
		b, ok := byBatch[d.UploadBatchID]
		if !ok {
			b = &model.DraftBatchSummary{UploadBatchID: d.UploadBatchID, UploadedAt: d.CreatedAt}
			byBatch[d.UploadBatchID] = b
			order = append(order, d.UploadBatchID)
		}
		b.TotalRows++
		if d.IsValid {
			b.ValidRows++
		}
		if d.CreatedAt.Before(b.UploadedAt) {
			b.UploadedAt = d.CreatedAt
		}
	}

	batches := make([]model.DraftBatchSummary, 0, len(order))
	for _, id := range order {
		batches = append(batches, *byBatch[id])
	}
	sort.SliceStable(batches, func(i, j int) bool { return batches[i].UploadedAt.After(batches[j].UploadedAt) })
	return batches, nil
}
