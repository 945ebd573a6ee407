package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cosmosfeed/internal/apperr"
	"cosmosfeed/internal/models"
	"cosmosfeed/internal/repository"
	"cosmosfeed/internal/utils"
)

const (
	ExportCSV   = "csv"
	ExportExcel = "xlsx"
	ExportJSON  = "json"

	defaultExportRange = 24 * time.Hour
	maxExportRange     = 30 * 24 * time.Hour
)

type ExportService interface {
	Export(ctx context.Context, source, format string, from, to time.Time) (*ExportResult, error)
}

type ExportResult struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Records  int    `json:"records"`
}

type exportService struct {
	samples   repository.SpaceCacheRepository
	outputDir string
	now       func() time.Time
}

func NewExportService(samples repository.SpaceCacheRepository, outputDir string) ExportService {
	if outputDir == "" {
		outputDir = "./data/export"
	}

	// Создаем директорию если не существует
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Printf("Failed to create export directory: %v", err)
	}

	return &exportService{
		samples:   samples,
		outputDir: outputDir,
		now:       time.Now,
	}
}

func (s *exportService) Export(ctx context.Context, source, format string, from, to time.Time) (*ExportResult, error) {
	if !isKnownSource(source) {
		return nil, fmt.Errorf("%w: unknown source %q", apperr.ErrInvalidInput, source)
	}

	format = strings.ToLower(format)
	if format == "excel" {
		format = ExportExcel
	}
	if format != ExportCSV && format != ExportExcel && format != ExportJSON {
		return nil, fmt.Errorf("%w: unsupported format %q", apperr.ErrInvalidInput, format)
	}

	from, to = s.window(from, to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: from is after to", apperr.ErrInvalidInput)
	}

	records, err := s.samples.Range(ctx, source, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s samples: %w", source, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no %s samples for the specified range", apperr.ErrNotFound, source)
	}

	timestamp := s.now().UTC().Format("20060102_150405")
	filename := fmt.Sprintf("%s_export_%s.%s", source, timestamp, format)
	path := filepath.Join(s.outputDir, filename)

	switch format {
	case ExportCSV:
		err = saveSamplesCSV(path, records)
	case ExportExcel:
		err = utils.CreateSamplesExcel(path, source, records)
	case ExportJSON:
		err = saveSamplesJSON(path, records)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write %s export: %w", format, err)
	}

	log.Printf("[export] %s: %d records -> %s", source, len(records), filename)
	return &ExportResult{Path: path, Filename: filename, Records: len(records)}, nil
}

// window подставляет последние сутки и ограничивает диапазон 30 днями.
func (s *exportService) window(from, to time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = s.now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-defaultExportRange)
	}
	if to.Sub(from) > maxExportRange {
		from = to.Add(-maxExportRange)
	}
	return from, to
}

func saveSamplesCSV(path string, records []models.SpaceCache) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write([]string{"id", "source", "fetched_at", "payload"}); err != nil {
		return err
	}
	for _, record := range records {
		row := []string{
			strconv.FormatUint(uint64(record.ID), 10),
			record.Source,
			record.FetchedAt.UTC().Format(time.RFC3339),
			string(record.Payload),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func saveSamplesJSON(path string, records []models.SpaceCache) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
