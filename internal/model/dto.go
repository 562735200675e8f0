package model

type UploadResponse struct {
	Message       string `json:"message"`
	UploadBatchID string `json:"upload_batch_id"`
}

type ConfirmRequest struct {
	UploadBatchID string             `json:"upload_batch_id,omitempty"`
	ValidatedData []StudentAggregate `json:"validatedData" validate:"required,min=1,dive"`
}

type ConfirmResponse struct {
	Message        string `json:"message"`
	ProcessedCount int    `json:"processed_count"`
}

// ImportHints are the optional form fields of a direct bulk import.
type ImportHints struct {
	TahunAjaranID       *int64 `json:"tahun_ajaran_id,omitempty" form:"tahun_ajaran_id"`
	MasterTahunAjaranID *int64 `json:"master_tahun_ajaran_id,omitempty" form:"master_tahun_ajaran_id"`
}

type SheetCounter struct {
	Success int `json:"success"`
	Errors  int `json:"errors"`
	Skipped int `json:"skipped"`
}

type ImportResults struct {
	NilaiUjian      SheetCounter `json:"nilai_ujian"`
	Hafalan         SheetCounter `json:"hafalan"`
	Kehadiran       SheetCounter `json:"kehadiran"`
	Sikap           SheetCounter `json:"sikap"`
	CatatanAkademik SheetCounter `json:"catatan_akademik"`
	CatatanSikap    SheetCounter `json:"catatan_sikap"`
}

type ImportResponse struct {
	Message string        `json:"message"`
	Results ImportResults `json:"results"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
