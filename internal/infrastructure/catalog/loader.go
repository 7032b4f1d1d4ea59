package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/furnilens/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// rows between context checks
const ctxCheckInterval = 1000

// Loader reads a product CSV into a normalized catalog
type Loader struct{}

// NewLoader creates a new catalog loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFile opens path and loads it. A missing or unreadable file yields an
// empty catalog together with an error wrapping domain.ErrCatalogUnavailable.
func (l *Loader) LoadFile(ctx context.Context, path string) (*domain.Catalog, error) {
	log.Info().Msgf("[CATALOG] Loading catalog from %s", path)

	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Msgf("[CATALOG] Failed to open catalog file %s", path)
		return domain.EmptyCatalog(path), fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer f.Close()

	return l.Load(ctx, f, path)
}

// Load reads CSV rows from r. Malformed rows and rows without a title are skipped.
// Duplicate ids keep their first occurrence.
func (l *Loader) Load(ctx context.Context, r io.Reader, source string) (*domain.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("no header row")
		}
		log.Error().Err(err).Msgf("[CATALOG] Failed to read header of %s", source)
		return domain.EmptyCatalog(source), fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	columns := indexColumns(header)

	var (
		products   []domain.ProductRecord
		seen       = make(map[string]bool)
		skipped    int
		untitled   int
		duplicates int
	)

	for line := 2; ; line++ {
		if line%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				log.Error().Err(err).Msgf("[CATALOG] Load of %s abandoned at line %d", source, line)
				return domain.EmptyCatalog(source), fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
			}
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Warn().Err(err).Msgf("[CATALOG] Skipping malformed row at line %d", line)
				skipped++
				continue
			}
			log.Error().Err(err).Msgf("[CATALOG] Read of %s failed at line %d", source, line)
			return domain.EmptyCatalog(source), fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
		}

		field := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}

		record, ok := buildRecord(field, len(products))
		if !ok {
			untitled++
			continue
		}
		if seen[record.ID] {
			duplicates++
			continue
		}
		seen[record.ID] = true
		products = append(products, record)
	}

	log.Info().Msgf("[CATALOG] Loaded %d products from %s (skipped: %d malformed, %d untitled, %d duplicate)",
		len(products), source, skipped, untitled, duplicates)

	return domain.NewCatalog(products, source), nil
}

// indexColumns maps lowercased header names to their position
func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		name = strings.ToLower(strings.TrimSpace(name))
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}
	return columns
}
