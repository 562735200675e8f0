package model

import "time"

// DraftRow is written once per aggregate on upload and never updated.
type DraftRow struct {
	ID            int64            `json:"id" db:"id"`
	UploadBatchID string           `json:"upload_batch_id" db:"upload_batch_id"`
	RowNumber     int              `json:"row_number" db:"row_number"`
	Data          StudentAggregate `json:"data" db:"data"`
	IsValid       bool             `json:"is_valid" db:"is_valid"`
	Errors        []string         `json:"errors,omitempty" db:"errors"`
	SiswaID       *int64           `json:"siswa_id,omitempty" db:"siswa_id"`
	KelasID       *int64           `json:"kelas_id,omitempty" db:"kelas_id"`
	WaliKelasID   *int64           `json:"wali_kelas_id,omitempty" db:"wali_kelas_id"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}

type DraftBatchSummary struct {
	UploadBatchID string    `json:"upload_batch_id" db:"upload_batch_id"`
	TotalRows     int       `json:"total_rows" db:"total_rows"`
	ValidRows     int       `json:"valid_rows" db:"valid_rows"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
}
