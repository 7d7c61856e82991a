package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", Arial, sans-serif; max-width: 860px; margin: 2em auto; color: #222; line-height: 1.5; }
h1 { border-bottom: 2px solid #ddd; padding-bottom: .3em; }
h2 { margin-top: 1.6em; color: #1a4d80; }
h3 { margin-bottom: .2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; }
</style>
</head>
<body>
%s</body>
</html>
`

var markdownHTML = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		gmhtml.WithHardWraps(),
		gmhtml.WithXHTML(),
	),
)

// MarkdownToHTML renders markdown as a standalone HTML document. Report
// lines are written one per line, so soft breaks are kept as <br />.
func MarkdownToHTML(markdown, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdownHTML.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return []byte(fmt.Sprintf(htmlTemplate, html.EscapeString(title), body.String())), nil
}

// StripOuterCodeFences removes a code fence wrapping the whole of content,
// as language models often return ```markdown ... ``` blocks.
func StripOuterCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	firstNewline := strings.Index(content, "\n")
	if firstNewline == -1 || !strings.HasSuffix(content, "```") {
		return content
	}

	lastFence := strings.LastIndex(content, "\n```")
	if lastFence < firstNewline {
		return content
	}
	if lastFence == firstNewline {
		return ""
	}
	return strings.TrimSpace(content[firstNewline+1 : lastFence])
}
