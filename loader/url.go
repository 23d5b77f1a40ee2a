package loader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/serillon/docqa/pipeline_type"
)

// contentSelectors lists the markup regions tried first when extracting
// readable text; pages with none of them fall back to the whole <body>.
const contentSelectors = "article, .content, #content, main, .post, #main, .entry-content, .post-content, .blog-post, #primary, #main-content, .text, .text-content, #body-content, .post-article"

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

func (l *Loader) loadWebContent(ctx context.Context, pageURL string) ([]pipeline_type.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load web content from %s: %w", pageURL, err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load web content from %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to load web content from %s: received status code %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to load web content from %s: %w", pageURL, err)
	}

	var text string
	doc.Find(contentSelectors).Each(func(_ int, s *goquery.Selection) {
		text += s.Text() + "\n"
	})

	// No recognizable content region, take everything.
	if text == "" {
		text = doc.Find("body").Text()
	}

	text = cleanWebText(text)
	if text == "" {
		return nil, fmt.Errorf("failed to load web content from %s: no text content found", pageURL)
	}

	metadata := map[string]string{"source": pageURL}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		metadata["title"] = title
	}

	l.logger.Debug("Loaded web content",
		slog.String("url", pageURL),
		slog.Int("text_length", len(text)))

	return []pipeline_type.Document{{Content: text, Metadata: metadata}}, nil
}

// cleanWebText collapses the whitespace noise typical of rendered HTML
// while keeping blank lines, so the splitter can still see paragraph
// boundaries.
func cleanWebText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespacePattern.ReplaceAllString(line, " "))
	}
	joined := strings.Join(lines, "\n")
	joined = blankLinesPattern.ReplaceAllString(joined, "\n\n")
	return strings.TrimSpace(joined)
}
