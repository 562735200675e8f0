package storage

import (
	"context"
	"fmt"
	"os"
	"path"

	"eraport-ingestion/internal/logger"

	"github.com/rs/zerolog"
)

// Archive keeps a copy of every uploaded workbook. A nil *Archive or one
// without a backend does nothing.
type Archive struct {
	storage Storage
	prefix  string
	log     zerolog.Logger
}

func NewArchive(storage Storage, prefix string) *Archive {
	return &Archive{storage: storage, prefix: prefix, log: logger.For("archive")}
}

func (a *Archive) Key(id string) string {
	return path.Join(a.prefix, id+".xlsx")
}

// Store uploads the file at filePath under id. Callers log failures and carry on.
func (a *Archive) Store(ctx context.Context, id, filePath string) error {
	if a == nil || a.storage == nil {
		return nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open upload for archive: %w", err)
	}
	defer f.Close()

	key := a.Key(id)
	if err := a.storage.Upload(ctx, key, f); err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}

	a.log.Info().Str("key", key).Msg("Upload archived")
	return nil
}
