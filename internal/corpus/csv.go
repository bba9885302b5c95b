package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/spigell/cv-screener/internal/apperrors"
)

const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// CSVOptions selects the columns that make up a document.
type CSVOptions struct {
	// TextColumns are joined with a single space to form the document text.
	TextColumns    []string
	CategoryColumn string
	Encoding       string
}

// DefaultCSVOptions matches the public résumé dataset layout.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		TextColumns:    []string{"Resume_str", "Resume_html"},
		CategoryColumn: "Category",
		Encoding:       EncodingUTF8,
	}
}

// LoadCSV reads a corpus from a CSV (or TSV by extension) file.
func LoadCSV(path string, opts CSVOptions) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}
	return ReadCSV(f, comma, opts)
}

// ReadCSV reads a corpus from r. The first row is the header.
func ReadCSV(r io.Reader, comma rune, opts CSVOptions) (*Corpus, error) {
	defaults := DefaultCSVOptions()
	if len(opts.TextColumns) == 0 {
		opts.TextColumns = defaults.TextColumns
	}
	if strings.TrimSpace(opts.CategoryColumn) == "" {
		opts.CategoryColumn = defaults.CategoryColumn
	}

	decoded, err := decoder(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.Data("load corpus", "corpus file is empty")
		}
		return nil, fmt.Errorf("read corpus header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	textIdx := make([]int, 0, len(opts.TextColumns))
	for _, name := range opts.TextColumns {
		idx, ok := columns[name]
		if !ok {
			return nil, apperrors.Data("load corpus", "text column %q not found in header", name)
		}
		textIdx = append(textIdx, idx)
	}
	categoryIdx, ok := columns[opts.CategoryColumn]
	if !ok {
		return nil, apperrors.Data("load corpus", "category column %q not found in header", opts.CategoryColumn)
	}

	var docs []Document
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus row %d: %w", line, err)
		}

		if categoryIdx >= len(row) || strings.TrimSpace(row[categoryIdx]) == "" {
			continue
		}

		parts := make([]string, len(textIdx))
		for i, idx := range textIdx {
			if idx < len(row) {
				parts[i] = row[idx]
			}
		}
		docs = append(docs, Document{
			Text:     strings.Join(parts, " "),
			Category: row[categoryIdx],
		})
	}

	return New(docs)
}

func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingUTF8, "utf8":
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder()), nil
	case EncodingLatin1, "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported corpus encoding: %s", encoding)
	}
}
