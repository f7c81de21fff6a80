// Package reftable parses uploaded reference tables into catalog entries.
// CSV is the common case; Parquet is accepted for tables exported straight
// from institutional datasets.
package reftable

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/digitizer-tools/catsync/internal/models"
)

// Parse reads a reference table from r, dispatching on the filename's
// extension. Rows without a catalog id are skipped; non-numeric years
// normalize to absent.
func Parse(filename string, r io.Reader) ([]models.CatalogEntry, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return parseCSV(r)
	case ".parquet":
		return parseParquet(r)
	default:
		return nil, fmt.Errorf("unsupported reference table format: %s (supported: .csv, .parquet)", ext)
	}
}

// parseCSV maps header names to entry fields. Headers are matched after
// trimming and lowercasing, with or without the catalog_ prefix.
func parseCSV(r io.Reader) ([]models.CatalogEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reference table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		name = strings.TrimPrefix(name, "catalog_")
		columns[name] = i
	}
	if _, ok := columns["id"]; !ok {
		return nil, fmt.Errorf("reference table has no catalog_id column")
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []models.CatalogEntry
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to parse row at line %d: %w", line, err)
		}

		id := cell(row, "id")
		if id == "" {
			slog.Debug("Skipping reference row without catalog id", "line", line)
			continue
		}

		entries = append(entries, models.CatalogEntry{
			CatalogID:              id,
			CatalogTitle:           cell(row, "title"),
			CatalogAuthor:          cell(row, "author"),
			CatalogPublicationYear: models.ParseYear(cell(row, "publication_year")),
			CatalogPublisher:       cell(row, "publisher"),
			CatalogPlace:           cell(row, "place"),
			CatalogLanguage:        cell(row, "language"),
			CatalogKeywords:        cell(row, "keywords"),
		})
	}

	return entries, nil
}

// parquetRow mirrors CatalogEntry with the year as text, since exported
// tables routinely carry years as strings.
type parquetRow struct {
	CatalogID              string `parquet:"catalog_id"`
	CatalogTitle           string `parquet:"catalog_title"`
	CatalogAuthor          string `parquet:"catalog_author"`
	CatalogPublicationYear string `parquet:"catalog_publication_year"`
	CatalogPublisher       string `parquet:"catalog_publisher"`
	CatalogPlace           string `parquet:"catalog_place"`
	CatalogLanguage        string `parquet:"catalog_language"`
	CatalogKeywords        string `parquet:"catalog_keywords"`
}

func parseParquet(r io.Reader) ([]models.CatalogEntry, error) {
	// The parquet reader needs random access, so buffer the upload.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}

	pf, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[parquetRow](pf)
	defer reader.Close()

	var entries []models.CatalogEntry
	rows := make([]parquetRow, 128)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			if strings.TrimSpace(row.CatalogID) == "" {
				continue
			}
			entries = append(entries, models.CatalogEntry{
				CatalogID:              strings.TrimSpace(row.CatalogID),
				CatalogTitle:           strings.TrimSpace(row.CatalogTitle),
				CatalogAuthor:          strings.TrimSpace(row.CatalogAuthor),
				CatalogPublicationYear: models.ParseYear(row.CatalogPublicationYear),
				CatalogPublisher:       strings.TrimSpace(row.CatalogPublisher),
				CatalogPlace:           strings.TrimSpace(row.CatalogPlace),
				CatalogLanguage:        strings.TrimSpace(row.CatalogLanguage),
				CatalogKeywords:        strings.TrimSpace(row.CatalogKeywords),
			})
		}
		if err != nil {
			break
		}
	}

	return entries, nil
}
