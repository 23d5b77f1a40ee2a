package loader

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/ledongthuc/pdf"

	"github.com/serillon/docqa/pipeline_type"
)

const wordMimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func (l *Loader) loadTextFileContent(path string) ([]pipeline_type.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load text file content from %s: %w", path, err)
	}

	return []pipeline_type.Document{
		{
			Content:  string(data),
			Metadata: map[string]string{"source": path},
		},
	}, nil
}

// loadPDFContent yields one document per page so page numbers survive into
// chunk metadata.
func (l *Loader) loadPDFContent(path string) ([]pipeline_type.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load PDF content from %s: %w", path, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to load PDF content from %s: %w", path, err)
	}

	totalPages := reader.NumPage()
	documents := make([]pipeline_type.Document, 0, totalPages)
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			l.logger.Warn("Null page encountered",
				slog.String("path", path),
				slog.Int("page_number", pageIndex))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to load PDF content from %s: page %d: %w", path, pageIndex, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		documents = append(documents, pipeline_type.Document{
			Content: text,
			Metadata: map[string]string{
				"source": path,
				"page":   strconv.Itoa(pageIndex),
			},
		})
	}

	if len(documents) == 0 {
		return nil, fmt.Errorf("failed to load PDF content from %s: no text content extracted", path)
	}

	l.logger.Debug("Extracted text from PDF",
		slog.String("path", path),
		slog.Int("total_pages", totalPages),
		slog.Int("documents", len(documents)))

	return documents, nil
}

func (l *Loader) loadWordContent(path string) ([]pipeline_type.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load Word content from %s: %w", path, err)
	}

	result, err := docconv.Convert(bytes.NewReader(data), wordMimeType, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load Word content from %s: %w", path, err)
	}
	if len(result.Body) == 0 {
		return nil, fmt.Errorf("failed to load Word content from %s: no text content extracted", path)
	}

	return []pipeline_type.Document{
		{
			Content:  result.Body,
			Metadata: map[string]string{"source": path},
		},
	}, nil
}
