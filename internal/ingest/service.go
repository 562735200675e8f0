package ingest

import (
	"context"
	"fmt"

	"eraport-ingestion/internal/db"
	"eraport-ingestion/internal/excel"
	"eraport-ingestion/internal/lock"
	"eraport-ingestion/internal/logger"
	"eraport-ingestion/internal/model"
	"eraport-ingestion/internal/resolver"
	"eraport-ingestion/internal/storage"
	"eraport-ingestion/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service is the entry point shared by the HTTP API and the importer CLI.
type Service struct {
	store     db.Store
	stager    *Stager
	committer *Committer
	importer  *Importer
	locker    lock.Locker
	archive   *storage.Archive
	log       zerolog.Logger
}

// NewService wires the pipeline. A nil locker falls back to an in-process
// lock; a nil archive disables archiving.
func NewService(store db.Store, locker lock.Locker, archive *storage.Archive) *Service {
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	return &Service{
		store:     store,
		stager:    NewStager(store),
		committer: NewCommitter(store),
		importer:  NewImporter(store),
		locker:    locker,
		archive:   archive,
		log:       logger.Get(),
	}
}

// UploadAndValidate parses the workbook at path, validates every student and
// stages the result. Invalid students are staged too, with their errors.
func (s *Service) UploadAndValidate(ctx context.Context, path string) (string, error) {
	wb, err := excel.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer wb.Close()

	aggs, err := excel.NewAggregator().Collect(wb)
	if err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return "", fmt.Errorf("%w: no student rows found", errors.ErrInvalidFileFormat)
	}

	validator := NewValidator(resolver.New(s.store))
	rows := make([]model.DraftRow, 0, len(aggs))
	valid := 0
	for _, agg := range aggs {
		verdict, err := validator.Validate(ctx, agg)
		if err != nil {
			return "", fmt.Errorf("failed to validate NIS %s: %w", agg.NIS, err)
		}
		if verdict.IsValid {
			valid++
		}
		rows = append(rows, model.DraftRow{
			RowNumber:   agg.RowNumber,
			Data:        *agg,
			IsValid:     verdict.IsValid,
			Errors:      verdict.Errors,
			SiswaID:     verdict.SiswaID,
			KelasID:     verdict.KelasID,
			WaliKelasID: verdict.WaliKelasID,
		})
	}

	batchID, err := s.stager.Stage(ctx, rows)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("batch_id", batchID).Int("students", len(rows)).Int("valid", valid).Msg("Upload validated")
	s.archiveUpload(ctx, batchID, path)
	return batchID, nil
}

func (s *Service) Drafts(ctx context.Context, batchID string) ([]model.DraftRow, error) {
	return s.stager.Drafts(ctx, batchID)
}

func (s *Service) Batches(ctx context.Context) ([]model.DraftBatchSummary, error) {
	return s.stager.Batches(ctx)
}

// Confirm commits the approved aggregates. When the request names its
// batch, concurrent confirms of that batch fail with errors.ErrBatchLocked.
func (s *Service) Confirm(ctx context.Context, req model.ConfirmRequest) (int, error) {
	if req.UploadBatchID != "" {
		release, err := s.locker.Acquire(ctx, req.UploadBatchID)
		if err != nil {
			return 0, err
		}
		defer release()
	}
	return s.committer.Confirm(ctx, req.ValidatedData)
}

// CompleteImport runs the bulk import of the workbook at path.
func (s *Service) CompleteImport(ctx context.Context, path string, hints model.ImportHints) (model.ImportResults, error) {
	wb, err := excel.OpenFile(path)
	if err != nil {
		return model.ImportResults{}, err
	}
	defer wb.Close()

	s.archiveUpload(ctx, "import-"+uuid.NewString(), path)
	return s.importer.Run(ctx, wb, hints)
}

func (s *Service) archiveUpload(ctx context.Context, id, path string) {
	if err := s.archive.Store(ctx, id, path); err != nil {
		s.log.Warn().Err(err).Str("archive_id", id).Msg("Upload not archived")
	}
}
