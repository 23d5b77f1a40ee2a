package handlers

import (
	"html/template"

	"github.com/serillon/docqa/config"
)

// askPageData is everything the form page template needs: the submitted
// field values echoed back, and either the answer or the error with an
// optional hint.
type askPageData struct {
	InputType       string
	URL             string
	Text            string
	Question        string
	ChunkSize       string
	ChunkOverlap    string
	MaxAnswerLength string

	Answer string
	Error  string
	Hint   string

	DefaultChunkSize    int
	DefaultChunkOverlap int
}

func newAskPageData() *askPageData {
	return &askPageData{
		InputType:           "url",
		DefaultChunkSize:    config.DefaultChunkSize,
		DefaultChunkOverlap: config.DefaultChunkOverlap,
	}
}

var askPage = template.Must(template.New("ask").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Document Question Answering</title>
<style>
  body { font-family: sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
  label { display: block; margin-top: 1rem; font-weight: bold; }
  input[type=text], input[type=number], textarea, select { width: 100%; padding: 0.4rem; margin-top: 0.25rem; box-sizing: border-box; }
  textarea { height: 10rem; }
  button { margin-top: 1.5rem; padding: 0.6rem 1.5rem; }
  .note { color: #666; font-size: 0.85rem; }
  .answer { margin-top: 2rem; padding: 1rem; background: #eef7ee; border: 1px solid #9c9; white-space: pre-wrap; }
  .error { margin-top: 2rem; padding: 1rem; background: #fbeaea; border: 1px solid #c99; }
  .hint { margin-top: 0.5rem; padding: 0.75rem; background: #eef2fb; border: 1px solid #99c; }
  .row { display: flex; gap: 1rem; }
  .row > div { flex: 1; }
</style>
</head>
<body>
<h1>Document Question Answering</h1>
<p>Answer questions about content from a web page, PDF, text file, Word
document or raw text. File uploads are limited to 1MB.</p>

<form action="/ask" method="post" enctype="multipart/form-data">
  <label for="input_type">Content type</label>
  <select name="input_type" id="input_type">
    <option value="url" {{if eq .InputType "url"}}selected{{end}}>Web URL</option>
    <option value="pdf" {{if eq .InputType "pdf"}}selected{{end}}>PDF file</option>
    <option value="textfile" {{if eq .InputType "textfile"}}selected{{end}}>Text file</option>
    <option value="docx" {{if eq .InputType "docx"}}selected{{end}}>Word document</option>
    <option value="text" {{if eq .InputType "text"}}selected{{end}}>Direct text</option>
  </select>

  <label for="url">URL</label>
  <input type="text" name="url" id="url" placeholder="https://example.com/article" value="{{.URL}}">

  <label for="file">File (PDF, text or Word, max 1MB)</label>
  <input type="file" name="file" id="file">

  <label for="text">Direct text</label>
  <textarea name="text" id="text" placeholder="Paste your text here...">{{.Text}}</textarea>

  <label for="question">Question</label>
  <input type="text" name="question" id="question" placeholder="What is this document about?" value="{{.Question}}">

  <div class="row">
    <div>
      <label for="chunk_size">Chunk size</label>
      <input type="number" name="chunk_size" id="chunk_size" placeholder="{{.DefaultChunkSize}}" value="{{.ChunkSize}}">
    </div>
    <div>
      <label for="chunk_overlap">Chunk overlap</label>
      <input type="number" name="chunk_overlap" id="chunk_overlap" placeholder="{{.DefaultChunkOverlap}}" value="{{.ChunkOverlap}}">
    </div>
    <div>
      <label for="max_answer_length">Max answer length (sentences)</label>
      <input type="number" name="max_answer_length" id="max_answer_length" placeholder="no limit" value="{{.MaxAnswerLength}}">
    </div>
  </div>
  <p class="note">Leave the fields above empty to use the configured defaults.</p>

  <button type="submit">Answer question</button>
</form>

{{if .Answer}}
<div class="answer">
  <strong>Answer</strong>
  <p>{{.Answer}}</p>
</div>
{{end}}

{{if .Error}}
<div class="error">
  <strong>Error during question answering</strong>
  <p>{{.Error}}</p>
</div>
{{if .Hint}}
<div class="hint">{{.Hint}}</div>
{{end}}
{{end}}

</body>
</html>
`))
