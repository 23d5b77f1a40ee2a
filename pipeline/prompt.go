package pipeline

import (
	"fmt"
	"strings"

	"github.com/serillon/docqa/pipeline_type"
)

// FallbackAnswer is returned verbatim when retrieval yields nothing,
// and is the phrase the model is told to use when the supplied context
// cannot answer the question.
const FallbackAnswer = "I don't have enough information in the provided document to answer this question."

const answerPromptTemplate = `
Use ONLY the following relevant context to answer the question.
If the context does not contain enough information to answer the question, say "I don't have enough information in the provided document to answer this question."
Do not use any external knowledge or make assumptions beyond what is stated in the context.
Keep the answer concise and factual.

Relevant Context: %s

Question: %s

%s
`

// buildPrompt assembles the single completion request sent to the
// model: retrieved chunk texts in retrieval order joined by blank
// lines, the question, and a sentence cap only when one was asked for.
func buildPrompt(results []pipeline_type.SearchResult, question string, maxAnswerLength *int) string {
	contexts := make([]string, len(results))
	for i, r := range results {
		contexts[i] = r.Chunk.Content
	}

	lengthInstruction := ""
	if maxAnswerLength != nil {
		lengthInstruction = fmt.Sprintf("Answer in no more than %d sentences.", *maxAnswerLength)
	}

	return fmt.Sprintf(answerPromptTemplate,
		strings.Join(contexts, "\n\n"),
		question,
		lengthInstruction)
}
