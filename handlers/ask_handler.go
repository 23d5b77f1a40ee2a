// Package handlers serves the interactive question-answering form and
// the JSON endpoints around it.
package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/serillon/docqa/pipeline"
	"github.com/serillon/docqa/pipeline_type"
)

// MaxUploadBytes caps file uploads from the form. Larger files are
// rejected with a user-visible message before the pipeline runs.
const MaxUploadBytes = 1 << 20

// QuestionAnswerer runs one question-answering pipeline run.
type QuestionAnswerer interface {
	Run(ctx context.Context, input pipeline.Input) (string, error)
}

type AskHandler struct {
	qa     QuestionAnswerer
	runs   *pipeline.RunStore
	logger *slog.Logger
}

func NewAskHandler(qa QuestionAnswerer, runs *pipeline.RunStore, logger *slog.Logger) *AskHandler {
	return &AskHandler{
		qa:     qa,
		runs:   runs,
		logger: logger,
	}
}

// ShowForm renders the empty question form.
func (h *AskHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, newAskPageData())
}

// Ask runs the pipeline over a form submission and re-renders the page
// with the answer, or with the error and a diagnostic hint. Uploaded
// files live in a temporary file for the duration of the run and are
// removed afterward regardless of outcome.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	data := newAskPageData()

	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		h.logger.Error("Failed to parse form submission",
			slog.String("error", err.Error()))
		data.Error = "Failed to parse the form submission."
		h.render(w, data)
		return
	}

	inputType, err := pipeline_type.ParseInputType(r.FormValue("input_type"))
	if err != nil {
		data.Error = err.Error()
		h.render(w, data)
		return
	}
	data.InputType = string(inputType)
	data.URL = strings.TrimSpace(r.FormValue("url"))
	data.Text = r.FormValue("text")
	data.Question = strings.TrimSpace(r.FormValue("question"))

	if data.Question == "" {
		data.Error = "Please enter a question."
		h.render(w, data)
		return
	}

	content, cleanup, errMsg := h.resolveContent(r, inputType, data)
	if cleanup != nil {
		defer cleanup()
	}
	if errMsg != "" {
		data.Error = errMsg
		h.render(w, data)
		return
	}

	input := pipeline.Input{
		InputType: inputType,
		Content:   content,
		Question:  data.Question,
	}
	if errMsg := parseOptionalInts(r, &input, data); errMsg != "" {
		data.Error = errMsg
		h.render(w, data)
		return
	}

	runID := uuid.New().String()
	h.runs.Begin(runID, data.Question, string(inputType))

	h.logger.Info("Form run started",
		slog.String("run_id", runID),
		slog.String("input_type", string(inputType)))

	answer, err := h.qa.Run(r.Context(), input)
	if err != nil {
		h.runs.Fail(runID, err.Error())
		h.logger.Error("Form run failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		data.Error = err.Error()
		data.Hint = errorHint(err.Error())
		h.render(w, data)
		return
	}

	h.runs.Complete(runID, answer)
	data.Answer = answer
	h.render(w, data)
}

// resolveContent extracts the content value for the selected input type.
// File-based sources are written to a temporary file whose removal is the
// returned cleanup function; the pipeline receives the temporary path.
func (h *AskHandler) resolveContent(r *http.Request, inputType pipeline_type.InputType, data *askPageData) (content string, cleanup func(), errMsg string) {
	switch inputType {
	case pipeline_type.InputURL:
		if data.URL == "" {
			return "", nil, "Please provide a URL to analyze."
		}
		return data.URL, nil, ""

	case pipeline_type.InputText:
		if strings.TrimSpace(data.Text) == "" {
			return "", nil, "Please provide text to analyze."
		}
		return data.Text, nil, ""

	default:
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, "Please upload a file to analyze."
		}
		defer file.Close()

		if header.Size > MaxUploadBytes {
			return "", nil, "File size exceeds the 1MB limit. Please upload a smaller file."
		}

		tmp, err := os.CreateTemp("", "docqa-upload-*"+filepath.Ext(header.Filename))
		if err != nil {
			h.logger.Error("Failed to create temporary upload file",
				slog.String("error", err.Error()))
			return "", nil, "Failed to store the uploaded file."
		}
		cleanup = func() {
			if err := os.Remove(tmp.Name()); err != nil {
				h.logger.Warn("Failed to remove temporary upload file",
					slog.String("path", tmp.Name()),
					slog.String("error", err.Error()))
			}
		}

		if _, err := io.Copy(tmp, file); err != nil {
			tmp.Close()
			h.logger.Error("Failed to write temporary upload file",
				slog.String("error", err.Error()))
			return "", cleanup, "Failed to store the uploaded file."
		}
		if err := tmp.Close(); err != nil {
			return "", cleanup, "Failed to store the uploaded file."
		}

		return tmp.Name(), cleanup, ""
	}
}

// parseOptionalInts reads the optional chunk-size, chunk-overlap and
// max-answer-length fields. Empty fields stay unset; the pipeline then
// resolves them from configuration. An explicit zero answer length is not
// a way to ask for "no constraint" and is rejected like any other
// non-positive value.
func parseOptionalInts(r *http.Request, input *pipeline.Input, data *askPageData) string {
	fields := []struct {
		name   string
		target **int
		echo   *string
	}{
		{"chunk_size", &input.ChunkSize, &data.ChunkSize},
		{"chunk_overlap", &input.ChunkOverlap, &data.ChunkOverlap},
		{"max_answer_length", &input.MaxAnswerLength, &data.MaxAnswerLength},
	}

	for _, f := range fields {
		raw := strings.TrimSpace(r.FormValue(f.name))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Sprintf("Invalid value for %s: %q is not a number.", f.name, raw)
		}
		*f.target = &value
		*f.echo = raw
	}
	return ""
}

// errorHint maps common failure texts to a next step the user can take,
// matching on the status code substring the provider includes in its
// error message.
func errorHint(errText string) string {
	switch {
	case strings.Contains(errText, "401"):
		return "This error might be due to an invalid API key. Please check your OPENROUTER_API_KEY."
	case strings.Contains(errText, "404"):
		return "This error might be due to an invalid model. Please check your LLM_MODEL setting."
	}
	return ""
}

func (h *AskHandler) render(w http.ResponseWriter, data *askPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := askPage.Execute(w, data); err != nil {
		h.logger.Error("Failed to render page",
			slog.String("error", err.Error()))
	}
}
