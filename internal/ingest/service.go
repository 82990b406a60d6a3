// internal/ingest/service.go
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pantrytrack/backend/internal/domain"
	"github.com/pantrytrack/backend/internal/repository"
	"github.com/rs/zerolog/log"
)

// Service imports inventory count sheets exported to Google Drive as
// CSV. Each row becomes a snapshot; unseen product names are created on
// the fly.
type Service struct {
	drive     *DriveService
	products  repository.ProductRepository
	snapshots repository.SnapshotRepository
	readings  repository.ReadingRepository
}

func NewService(drive *DriveService, products repository.ProductRepository, snapshots repository.SnapshotRepository, readings repository.ReadingRepository) *Service {
	return &Service{
		drive:     drive,
		products:  products,
		snapshots: snapshots,
		readings:  readings,
	}
}

// IngestFile downloads a count sheet from Drive and replays its rows
// into the snapshot log.
func (s *Service) IngestFile(ctx context.Context, fileID string) (*domain.IngestResult, error) {
	pr, pw := io.Pipe()
	go func() {
		err := s.drive.DownloadFile(fileID, pw)
		pw.CloseWithError(err)
	}()

	return s.ingestCSV(ctx, fileID, pr)
}

func (s *Service) ingestCSV(ctx context.Context, name string, r io.Reader) (*domain.IngestResult, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for _, col := range []string{"product", "quantity"} {
		if _, ok := colMap[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	result := &domain.IngestResult{FileName: name}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		row, err := parseRow(record, colMap)
		if err != nil {
			log.Warn().Err(err).Strs("record", record).Msg("skipping malformed count row")
			result.SkippedRows++
			continue
		}

		isNew, err := s.applyRow(ctx, row)
		if err != nil {
			return nil, err
		}

		result.TotalRows++
		if isNew {
			result.NewProducts++
		}
	}

	result.ProcessedAt = time.Now()
	log.Info().
		Str("file", name).
		Int("rows", result.TotalRows).
		Int("skipped", result.SkippedRows).
		Int("new_products", result.NewProducts).
		Msg("count sheet ingested")

	return result, nil
}

func (s *Service) applyRow(ctx context.Context, row *domain.IngestRow) (bool, error) {
	product, isNew, err := s.products.GetOrCreate(ctx, &domain.Product{
		Name:        row.ProductName,
		Inventory:   row.Quantity,
		LastUpdated: time.Now(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to resolve product %q: %w", row.ProductName, err)
	}

	// A reading only moves the on-hand count when it is at least as
	// fresh as every snapshot already on record; backfilled history
	// adds to the log without touching current state.
	freshest := true
	if existing, err := s.snapshots.ListByProduct(ctx, product.ID); err != nil {
		return false, fmt.Errorf("failed to load history for %q: %w", row.ProductName, err)
	} else if len(existing) > 0 && row.Timestamp.Before(existing[0].Timestamp) {
		freshest = false
	}

	snapshot := &domain.InventorySnapshot{
		ProductID: product.ID,
		Inventory: row.Quantity,
		Timestamp: row.Timestamp,
	}
	var level *int
	if freshest {
		level = &row.Quantity
	}
	if err := s.readings.ApplyReading(ctx, snapshot, level); err != nil {
		return false, fmt.Errorf("failed to record reading for %q: %w", row.ProductName, err)
	}

	return isNew, nil
}

func parseRow(record []string, colMap map[string]int) (*domain.IngestRow, error) {
	get := func(col string) string {
		idx, ok := colMap[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	name := get("product")
	if name == "" {
		return nil, fmt.Errorf("empty product name")
	}

	quantity, err := strconv.Atoi(get("quantity"))
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", get("quantity"), err)
	}

	row := &domain.IngestRow{
		ProductName: name,
		Quantity:    quantity,
		Timestamp:   time.Now(),
	}

	if ts := get("timestamp"); ts != "" {
		parsed, err := parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		row.Timestamp = parsed
	}

	return row, nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
