// Package extract obtains plain text from candidate résumé files.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-screener/internal/apperrors"
)

// DefaultWorkers bounds concurrent file reads.
const DefaultWorkers = 4

// ErrUnsupportedFormat is the cause of an ExtractionFailure for unparsed formats.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extractor returns the text content of one file.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// PlainText reads UTF-8 text files by extension.
type PlainText struct {
	Extensions []string
	// MaxBytes caps the file size; zero means 10 MiB.
	MaxBytes int64
}

// NewPlainText accepts .txt, .text and .md files.
func NewPlainText() *PlainText {
	return &PlainText{Extensions: []string{".txt", ".text", ".md"}}
}

func (p *PlainText) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !p.supports(ext) {
		return "", apperrors.Extraction("extract", path, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext))
	}

	limit := p.MaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", apperrors.Extraction("extract", path, err)
	}
	if info.IsDir() {
		return "", apperrors.Extraction("extract", path, fmt.Errorf("is a directory"))
	}
	if info.Size() > limit {
		return "", apperrors.Extraction("extract", path, fmt.Errorf("file is %d bytes, limit is %d", info.Size(), limit))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.Extraction("extract", path, err)
	}
	if !utf8.Valid(data) {
		return "", apperrors.Extraction("extract", path, fmt.Errorf("file is not valid UTF-8"))
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", apperrors.Extraction("extract", path, fmt.Errorf("file is empty"))
	}
	return text, nil
}

func (p *PlainText) supports(ext string) bool {
	for _, e := range p.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// Document is the extraction outcome for one input path.
type Document struct {
	Path string
	Name string
	Text string
	// Err is set when no text could be extracted; Text is empty then.
	Err error
}

// Batch extracts every path with at most workers concurrent extractions. Results keep
// the input order. Per-file failures are reported in Document.Err; only a cancelled
// context aborts the batch.
func Batch(ctx context.Context, ex Extractor, paths []string, workers int, logger *zap.Logger) ([]Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	docs := make([]Document, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			text, err := ex.Extract(gctx, path)
			docs[i] = Document{Path: path, Name: filepath.Base(path), Text: text}
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				docs[i].Err = err
				logger.Warn("skipping résumé", zap.String("file", docs[i].Name), zap.Error(err))
				return nil
			}

			logger.Debug("résumé extracted", zap.String("file", docs[i].Name), zap.Int("chars", utf8.RuneCountInString(text)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
