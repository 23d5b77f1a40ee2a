// Package loader resolves the supported input sources (web pages, PDF
// files, plain text files, Word documents, raw text) into documents the
// rest of the pipeline can chunk and index.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/serillon/docqa/pipeline_type"
)

// ErrUnsupportedType is returned when the input descriptor names a source
// kind no loader handles.
var ErrUnsupportedType = errors.New("unsupported input type")

type Loader struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func New(logger *slog.Logger) *Loader {
	return &Loader{
		httpClient: http.DefaultClient,
		logger:     logger,
	}
}

// Load turns an input descriptor into one or more documents. URL sources
// are fetched over HTTP, file sources are read from disk, and raw text is
// wrapped as-is.
func (l *Loader) Load(ctx context.Context, inputType pipeline_type.InputType, content string) ([]pipeline_type.Document, error) {
	switch inputType {
	case pipeline_type.InputURL:
		return l.loadWebContent(ctx, content)
	case pipeline_type.InputPDF:
		return l.loadPDFContent(content)
	case pipeline_type.InputTextFile:
		return l.loadTextFileContent(content)
	case pipeline_type.InputDocx:
		return l.loadWordContent(content)
	case pipeline_type.InputText:
		return l.loadDirectTextContent(content), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, inputType)
	}
}

func (l *Loader) loadDirectTextContent(text string) []pipeline_type.Document {
	return []pipeline_type.Document{
		{
			Content:  text,
			Metadata: map[string]string{"source": "direct_text"},
		},
	}
}
