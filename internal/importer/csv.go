// Package importer loads books into the catalog from CSV exports. Expected
// columns: title, authors, genres, isbn, page_count, description, image_url.
// Authors and genres are semicolon separated within their cell.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pagekeeper/pagekeeper/internal/database/catalog"
	"github.com/pagekeeper/pagekeeper/internal/entities"
)

// Result summarizes an import run.
type Result struct {
	TotalRows  int      `json:"total_rows"`
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Errors     []string `json:"errors,omitempty"`
}

type bookRow struct {
	Title       string `validate:"required,max=350"`
	Authors     string
	Genres      string
	ISBN        string `validate:"omitempty,max=20"`
	PageCount   int    `validate:"min=0"`
	Description string
	ImageURL    string `validate:"omitempty,url,max=500"`
}

// Importer reads book rows from CSV and stores them in the catalog.
type Importer struct {
	store    *catalog.Repository
	validate *validator.Validate
}

// NewImporter creates a CSV importer for the given catalog.
func NewImporter(store *catalog.Repository) *Importer {
	return &Importer{
		store:    store,
		validate: validator.New(),
	}
}

// Import reads all rows from r and creates the books they describe. Rows
// that fail validation are reported in the result and skipped; a malformed
// CSV stream aborts the whole run.
func (i *Importer) Import(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = idx
	}
	if _, ok := columns["title"]; !ok {
		return nil, fmt.Errorf("csv is missing the title column")
	}

	result := &Result{}
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}

		result.TotalRows++

		row, err := parseRow(record, columns)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		if err := i.validate.Struct(row); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		book := &entities.Book{
			Title:       row.Title,
			ISBN:        entities.NormalizeISBN(row.ISBN),
			PageCount:   row.PageCount,
			Description: row.Description,
			ImageURL:    row.ImageURL,
		}

		_, created, err := i.store.CreateBook(book, splitList(row.Authors), splitList(row.Genres))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", line, err))
			continue
		}

		if created {
			result.Imported++
		} else {
			result.Duplicates++
		}
	}

	return result, nil
}

func parseRow(record []string, columns map[string]int) (*bookRow, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	row := &bookRow{
		Title:       cell("title"),
		Authors:     cell("authors"),
		Genres:      cell("genres"),
		ISBN:        cell("isbn"),
		Description: cell("description"),
		ImageURL:    cell("image_url"),
	}

	if raw := cell("page_count"); raw != "" {
		pages, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid page_count %q", raw)
		}
		row.PageCount = pages
	}

	return row, nil
}

// splitList breaks a semicolon separated cell into trimmed values.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
