package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"eraport-ingestion/internal/model"
)

// InsertDrafts writes all rows of one batch with a single multi-row INSERT.
func (r *repository) InsertDrafts(ctx context.Context, rows []model.DraftRow) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*8)
	for _, row := range rows {
		data, err := json.Marshal(row.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal draft row %d: %w", row.RowNumber, err)
		}

		var errs interface{}
		if len(row.Errors) > 0 {
			b, err := json.Marshal(row.Errors)
			if err != nil {
				return fmt.Errorf("failed to marshal draft errors %d: %w", row.RowNumber, err)
			}
			errs = string(b)
		}

		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, row.UploadBatchID, row.RowNumber, string(data), row.IsValid, errs,
			row.SiswaID, row.KelasID, row.WaliKelasID)
	}

	query := `INSERT INTO draft_upload (upload_batch_id, nomor_baris, data, is_valid, validation_errors, siswa_id, kelas_id, wali_kelas_id) VALUES ` +
		strings.Join(placeholders, ", ")
	_, err := r.q.ExecContext(ctx, query, args...)
	return err
}

func (r *repository) GetDraftsByBatch(ctx context.Context, batchID string) ([]model.DraftRow, error) {
	query := `SELECT id, upload_batch_id, nomor_baris, data, is_valid, validation_errors, siswa_id, kelas_id, wali_kelas_id, created_at
			  FROM draft_upload WHERE upload_batch_id = ?
			  ORDER BY nomor_baris ASC, id ASC`

	rows, err := r.q.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []model.DraftRow
	for rows.Next() {
		var (
			d    model.DraftRow
			data []byte
			errs []byte
		)
		err := rows.Scan(&d.ID, &d.UploadBatchID, &d.RowNumber, &data, &d.IsValid, &errs,
			&d.SiswaID, &d.KelasID, &d.WaliKelasID, &d.CreatedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &d.Data); err != nil {
			return nil, fmt.Errorf("failed to decode draft %d: %w", d.ID, err)
		}
		if len(errs) > 0 {
			if err := json.Unmarshal(errs, &d.Errors); err != nil {
				return nil, fmt.Errorf("failed to decode draft errors %d: %w", d.ID, err)
			}
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (r *repository) ListDraftBatches(ctx context.Context) ([]model.DraftBatchSummary, error) {
	query := `SELECT upload_batch_id,
		COUNT(*) AS total_rows,
		COUNT(CASE WHEN is_valid THEN 1 END) AS valid_rows,
		MIN(created_at) AS uploaded_at
	FROM draft_upload
	GROUP BY upload_batch_id
	ORDER BY uploaded_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []model.DraftBatchSummary
	for rows.Next() {
		var b model.DraftBatchSummary
		if err := rows.Scan(&b.UploadBatchID, &b.TotalRows, &b.ValidRows, &b.UploadedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
