package usecases

import (
	"commercebot/internal/entities"
	"commercebot/internal/interfaces"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// SyncCatalogueFile upserts catalogue rows from a CSV file.
func SyncCatalogueFile(ctx context.Context, store interfaces.CatalogueStore, path string, logger zerolog.Logger) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	return SyncCatalogue(ctx, store, file, logger)
}

// SyncCatalogue reads id,name,category,description,price,currency rows after
// a header line. Bad rows are skipped and logged; it returns the number of
// items written.
func SyncCatalogue(ctx context.Context, store interfaces.CatalogueStore, r io.Reader, logger zerolog.Logger) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV: %w", err)
	}

	synced := 0
	// Skip header row
	for i := 1; i < len(records); i++ {
		row := records[i]
		if len(row) < 6 {
			logger.Warn().Int("line", i+1).Msg("catalogue row has fewer than 6 columns, skipping")
			continue
		}

		price, err := strconv.ParseInt(strings.TrimSpace(row[4]), 10, 64)
		if err != nil {
			logger.Warn().Int("line", i+1).Str("price", row[4]).Msg("invalid catalogue price, skipping")
			continue
		}

		item := entities.CatalogueItem{
			ID:          strings.TrimSpace(row[0]),
			Name:        strings.TrimSpace(row[1]),
			Category:    strings.TrimSpace(row[2]),
			Description: strings.TrimSpace(row[3]),
			Price:       price,
			Currency:    strings.TrimSpace(row[5]),
		}
		if item.ID == "" || item.Name == "" {
			logger.Warn().Int("line", i+1).Msg("catalogue row missing id or name, skipping")
			continue
		}

		if err := store.UpsertCatalogueItem(ctx, item); err != nil {
			return synced, fmt.Errorf("sync item %s: %w", item.ID, err)
		}
		synced++
	}
	return synced, nil
}
