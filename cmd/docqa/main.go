// Command docqa answers a question about a single content source from
// the command line: load, chunk, index, retrieve, answer, print.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/serillon/docqa/config"
	"github.com/serillon/docqa/loader"
	"github.com/serillon/docqa/pipeline"
	"github.com/serillon/docqa/pipeline_type"
	"github.com/serillon/docqa/services/embedding_service"
	"github.com/serillon/docqa/services/llm_service"
	"github.com/serillon/docqa/vectorstore"
)

var (
	urlFlag      string
	pdfFlag      string
	textFileFlag string
	docxFlag     string
	textFlag     string

	questionFlag    string
	chunkSizeFlag   int
	chunkOverlap    int
	maxAnswerLength int
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Answer questions about documents using retrieval-augmented generation",
	Long: `docqa answers a natural-language question against a single content
source (web page, PDF, text file, Word document or raw text). The source
is split into overlapping chunks, the chunks are embedded into a vector
index, and a language model answers from the most relevant chunks only.

Examples:
  docqa --url https://en.wikipedia.org/wiki/Artificial_intelligence --question "What is AI?"
  docqa --pdf report.pdf --question "What are the key findings?" --max-answer-length 3
  docqa --text "Water boils at 100 degrees Celsius." --question "At what temperature does water boil?"`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&urlFlag, "url", "", "URL of the web page to analyze")
	rootCmd.Flags().StringVar(&pdfFlag, "pdf", "", "path to the PDF file to analyze")
	rootCmd.Flags().StringVar(&textFileFlag, "textfile", "", "path to the text file to analyze")
	rootCmd.Flags().StringVar(&docxFlag, "docx", "", "path to the Word document to analyze")
	rootCmd.Flags().StringVar(&textFlag, "text", "", "direct text content to analyze")

	rootCmd.Flags().StringVar(&questionFlag, "question", "", "question to answer based on the content (required)")
	rootCmd.Flags().IntVar(&chunkSizeFlag, "chunk-size", 0, "chunk size for text splitting (default: CHUNK_SIZE env var or 500)")
	rootCmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", 0, "chunk overlap for text splitting (default: CHUNK_OVERLAP env var or 50)")
	rootCmd.Flags().IntVar(&maxAnswerLength, "max-answer-length", 0, "maximum number of sentences in the final answer")

	rootCmd.MarkFlagRequired("question")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(questionFlag) == "" {
		return errors.New("--question must not be empty")
	}

	inputType, content, err := resolveSource(urlFlag, pdfFlag, textFileFlag, docxFlag, textFlag)
	if err != nil {
		return err
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			return fmt.Errorf("%w\nPlease set it in your .env file", err)
		}
		return err
	}

	// Logs go to stderr at warn level so stdout carries only the answer.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx := context.Background()

	embedder := embedding_service.NewOpenAIEmbeddingService(
		cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, logger)

	store, err := vectorstore.New(ctx, cfg, embedder, logger)
	if err != nil {
		return fmt.Errorf("initializing vector store: %w", err)
	}
	defer store.Close()

	llm := llm_service.NewOpenRouterService(
		cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.LLMModel, logger)

	p := pipeline.New(cfg, loader.New(logger), store, llm, logger)

	input := pipeline.Input{
		InputType: inputType,
		Content:   content,
		Question:  questionFlag,
	}
	if cmd.Flags().Changed("chunk-size") {
		input.ChunkSize = &chunkSizeFlag
	}
	if cmd.Flags().Changed("chunk-overlap") {
		input.ChunkOverlap = &chunkOverlap
	}
	if cmd.Flags().Changed("max-answer-length") {
		input.MaxAnswerLength = &maxAnswerLength
	}

	answer, err := p.Run(ctx, input)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Question:", questionFlag)
	fmt.Println()
	fmt.Println("Answer:")
	fmt.Println(answer)

	return nil
}

// resolveSource maps the mutually exclusive source flags onto an input
// descriptor, checking that file-based sources exist before any network
// or model work starts.
func resolveSource(url, pdf, textFile, docx, text string) (pipeline_type.InputType, string, error) {
	type source struct {
		inputType pipeline_type.InputType
		value     string
	}

	var selected []source
	for _, s := range []source{
		{pipeline_type.InputURL, url},
		{pipeline_type.InputPDF, pdf},
		{pipeline_type.InputTextFile, textFile},
		{pipeline_type.InputDocx, docx},
		{pipeline_type.InputText, text},
	} {
		if s.value != "" {
			selected = append(selected, s)
		}
	}

	if len(selected) == 0 {
		return "", "", errors.New("one of --url, --pdf, --textfile, --docx or --text is required")
	}
	if len(selected) > 1 {
		return "", "", errors.New("only one of --url, --pdf, --textfile, --docx or --text may be given")
	}

	chosen := selected[0]
	switch chosen.inputType {
	case pipeline_type.InputPDF:
		if _, err := os.Stat(chosen.value); err != nil {
			return "", "", fmt.Errorf("PDF file %q not found", chosen.value)
		}
	case pipeline_type.InputTextFile:
		if _, err := os.Stat(chosen.value); err != nil {
			return "", "", fmt.Errorf("text file %q not found", chosen.value)
		}
	case pipeline_type.InputDocx:
		if _, err := os.Stat(chosen.value); err != nil {
			return "", "", fmt.Errorf("Word document %q not found", chosen.value)
		}
	}

	return chosen.inputType, chosen.value, nil
}
