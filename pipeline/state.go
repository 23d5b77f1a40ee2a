package pipeline

import (
	"github.com/serillon/docqa/pipeline_type"
	"github.com/serillon/docqa/vectorstore"
)

// Stage names, wrapped into every error the orchestrator returns so
// callers can tell which stage aborted the run.
const (
	StageLoadContent          = "load_content"
	StageSplitDocuments       = "split_documents"
	StageCreateVectorStore    = "create_vector_store"
	StageSearchRelevantChunks = "search_relevant_chunks"
	StageAnswerQuestion       = "answer_question"
)

// Input describes a single question-answering run. ChunkSize,
// ChunkOverlap and MaxAnswerLength are optional overrides; nil means
// "use the configured default" (for MaxAnswerLength, "no constraint").
type Input struct {
	InputType       pipeline_type.InputType
	Content         string
	Question        string
	ChunkSize       *int
	ChunkOverlap    *int
	MaxAnswerLength *int
}

// State is the single record threading through the five stages. Each
// stage reads fields written by earlier stages and fills in its own;
// no stage touches a field owned by a later one.
type State struct {
	InputType       pipeline_type.InputType
	Content         string
	Question        string
	ChunkSize       int
	ChunkOverlap    int
	MaxAnswerLength *int

	Documents      []pipeline_type.Document
	Chunks         []pipeline_type.Chunk
	Index          vectorstore.Store
	RelevantChunks []pipeline_type.SearchResult
	FinalAnswer    string
}
