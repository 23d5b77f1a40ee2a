package pipeline_type

import "fmt"

// InputType tags the kind of source a pipeline run answers questions about.
type InputType string

const (
	InputURL      InputType = "url"
	InputPDF      InputType = "pdf"
	InputTextFile InputType = "textfile"
	InputDocx     InputType = "docx"
	InputText     InputType = "text"
)

// ParseInputType validates a source-type tag coming from a CLI flag or form field.
func ParseInputType(s string) (InputType, error) {
	switch InputType(s) {
	case InputURL, InputPDF, InputTextFile, InputDocx, InputText:
		return InputType(s), nil
	}
	return "", fmt.Errorf("unsupported input type: %s", s)
}

// Document is a unit of loaded content. Metadata always carries at least
// a "source" key; the PDF loader adds "page". Documents are never mutated
// after the loader returns them.
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// Chunk is a bounded-length fragment of a Document, the unit of embedding
// and retrieval. It keeps the parent document's metadata plus its own
// position within the source.
type Chunk struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Index    int               `json:"index"`
}

// SearchResult is a chunk returned by a vector store query together with
// the backend's similarity score (higher is closer).
type SearchResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// CloneMetadata copies a metadata map so chunks never alias their parent's map.
func CloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
