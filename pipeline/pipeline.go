// Package pipeline runs the fixed five-stage question-answering flow:
// load content, split it into chunks, index the chunks in a vector
// store, retrieve the chunks relevant to the question, and ask the
// language model to answer from them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/serillon/docqa/config"
	"github.com/serillon/docqa/pipeline_type"
	"github.com/serillon/docqa/services/llm_service"
	"github.com/serillon/docqa/splitter"
	"github.com/serillon/docqa/vectorstore"
)

// Loader resolves an input descriptor into documents.
type Loader interface {
	Load(ctx context.Context, inputType pipeline_type.InputType, content string) ([]pipeline_type.Document, error)
}

type Pipeline struct {
	cfg    config.Config
	loader Loader
	store  vectorstore.Store
	llm    llm_service.LLMService
	logger *slog.Logger
}

func New(cfg config.Config, ld Loader, store vectorstore.Store, llm llm_service.LLMService, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		loader: ld,
		store:  store,
		llm:    llm,
		logger: logger,
	}
}

// Run executes the five stages in order over a single State and
// returns the final answer. Any stage error aborts the run; the
// returned error is wrapped with the name of the stage that failed.
func (p *Pipeline) Run(ctx context.Context, input Input) (string, error) {
	state, err := p.newState(input)
	if err != nil {
		return "", err
	}

	start := time.Now()
	p.logger.Info("Pipeline run started",
		slog.String("input_type", string(state.InputType)),
		slog.Int("chunk_size", state.ChunkSize),
		slog.Int("chunk_overlap", state.ChunkOverlap))

	if err := p.runStage(ctx, state, StageLoadContent, p.loadContent); err != nil {
		return "", err
	}
	if err := p.runStage(ctx, state, StageSplitDocuments, p.splitDocuments); err != nil {
		return "", err
	}
	if err := p.runStage(ctx, state, StageCreateVectorStore, p.createVectorStore); err != nil {
		return "", err
	}
	if err := p.runStage(ctx, state, StageSearchRelevantChunks, p.searchRelevantChunks); err != nil {
		return "", err
	}
	if err := p.runStage(ctx, state, StageAnswerQuestion, p.answerQuestion); err != nil {
		return "", err
	}

	p.logger.Info("Pipeline run completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("documents", len(state.Documents)),
		slog.Int("chunks", len(state.Chunks)),
		slog.Int("relevant_chunks", len(state.RelevantChunks)))

	return state.FinalAnswer, nil
}

func (p *Pipeline) runStage(ctx context.Context, state *State, name string, stage func(context.Context, *State) error) error {
	stageStart := time.Now()
	if err := stage(ctx, state); err != nil {
		p.logger.Error("Pipeline stage failed",
			slog.String("stage", name),
			slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", name, err)
	}
	p.logger.Debug("Pipeline stage completed",
		slog.String("stage", name),
		slog.Duration("duration", time.Since(stageStart)))
	return nil
}

// newState resolves the optional overrides against configuration and
// validates the answer-length constraint. Chunking parameters are
// validated later by the splitter constructor.
func (p *Pipeline) newState(input Input) (*State, error) {
	if input.MaxAnswerLength != nil && *input.MaxAnswerLength <= 0 {
		return nil, fmt.Errorf("max answer length must be positive, got %d", *input.MaxAnswerLength)
	}

	state := &State{
		InputType:       input.InputType,
		Content:         input.Content,
		Question:        input.Question,
		ChunkSize:       p.cfg.ChunkSize,
		ChunkOverlap:    p.cfg.ChunkOverlap,
		MaxAnswerLength: input.MaxAnswerLength,
	}
	if input.ChunkSize != nil {
		state.ChunkSize = *input.ChunkSize
	}
	if input.ChunkOverlap != nil {
		state.ChunkOverlap = *input.ChunkOverlap
	}
	return state, nil
}

func (p *Pipeline) loadContent(ctx context.Context, state *State) error {
	documents, err := p.loader.Load(ctx, state.InputType, state.Content)
	if err != nil {
		return err
	}
	state.Documents = documents
	return nil
}

func (p *Pipeline) splitDocuments(_ context.Context, state *State) error {
	s, err := splitter.New(
		splitter.WithChunkSize(state.ChunkSize),
		splitter.WithChunkOverlap(state.ChunkOverlap),
	)
	if err != nil {
		return err
	}
	state.Chunks = s.Split(state.Documents)

	p.logger.Debug("Split documents into chunks",
		slog.Int("documents", len(state.Documents)),
		slog.Int("chunks", len(state.Chunks)))
	return nil
}

// createVectorStore rebuilds the index from this run's chunk set. The
// store is reset first so persistent backends do not leak chunks from
// earlier runs into retrieval.
func (p *Pipeline) createVectorStore(ctx context.Context, state *State) error {
	if err := p.store.Reset(ctx); err != nil {
		return fmt.Errorf("resetting vector store: %w", err)
	}
	if err := p.store.Add(ctx, state.Chunks); err != nil {
		return err
	}
	state.Index = p.store

	count, err := p.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting indexed chunks: %w", err)
	}
	p.logger.Debug("Indexed chunks",
		slog.Int("count", count))
	return nil
}

func (p *Pipeline) searchRelevantChunks(ctx context.Context, state *State) error {
	if len(state.Chunks) == 0 {
		state.RelevantChunks = nil
		return nil
	}

	results, err := state.Index.Search(ctx, state.Question, p.cfg.TopK)
	if err != nil {
		return err
	}
	state.RelevantChunks = results

	p.logger.Debug("Retrieved relevant chunks",
		slog.Int("count", len(results)),
		slog.Int("top_k", p.cfg.TopK))
	return nil
}

func (p *Pipeline) answerQuestion(ctx context.Context, state *State) error {
	if len(state.RelevantChunks) == 0 {
		state.FinalAnswer = FallbackAnswer
		p.logger.Info("No relevant chunks retrieved, returning fallback answer")
		return nil
	}

	prompt := buildPrompt(state.RelevantChunks, state.Question, state.MaxAnswerLength)
	answer, err := p.llm.CallLLM(ctx, prompt)
	if err != nil {
		return err
	}
	state.FinalAnswer = answer
	return nil
}
