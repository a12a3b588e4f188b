// Package render turns a raw model reply into display-ready HTML.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	// ContainerOpen starts the styled wrapper every reply is placed in
	ContainerOpen  = "<div class='response-box' style='word-wrap: break-word; overflow-wrap: break-word; padding: 10px;'>"
	containerClose = "</div>"
	listOpen       = "<ul style='margin-left: 20px; padding-left: 20px;'>"
)

var (
	reasoningBlock  = regexp.MustCompile(`(?s)<think>.*?</think>\n*`)
	repeatedBreaks  = regexp.MustCompile(`(?:<br\s*/?>\s*){2,}`)
	repeatedParas   = regexp.MustCompile(`(?:<p>\s*){2,}`)
	newlineSpacing  = regexp.MustCompile(`\s*\n\s*`)
	listItemSpacing = regexp.MustCompile(`</li>\s*<li>`)
)

// Renderer converts markdown replies to sanitized HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New creates a renderer supporting hard line breaks, tables and fenced code.
// Links are sanitized to carry rel="nofollow".
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(),
			),
		),
		policy: policy,
	}
}

// Render strips reasoning blocks, converts markdown to HTML, tidies the markup
// and wraps it in the response container.
func (r *Renderer) Render(raw string) (string, error) {
	text := StripReasoning(strings.TrimSpace(raw))

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	out := r.policy.Sanitize(buf.String())
	out = repeatedBreaks.ReplaceAllString(out, "<br>")
	out = repeatedParas.ReplaceAllString(out, "<p>")
	out = newlineSpacing.ReplaceAllString(out, "\n")
	out = strings.ReplaceAll(out, "<ul>", listOpen)
	out = listItemSpacing.ReplaceAllString(out, "</li>\n<li>")

	return ContainerOpen + out + containerClose, nil
}

// StripReasoning removes every <think>...</think> block with the blank lines
// following it. A reply that opens with <think> and never closes it, as left
// by a truncated reply, is reasoning only and becomes empty. An unpaired
// marker elsewhere is ordinary text and stays.
func StripReasoning(text string) string {
	text = strings.TrimSpace(reasoningBlock.ReplaceAllString(text, ""))
	if strings.HasPrefix(text, "<think>") && !strings.Contains(text, "</think>") {
		return ""
	}
	return text
}
