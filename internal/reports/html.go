package reports

import (
	"fmt"
	"os"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Test Run Summary</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; color: #1f2328; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d1d9e0; padding: 0.35rem 0.75rem; }
code { background: #f6f8fa; padding: 0.1rem 0.3rem; border-radius: 4px; }
</style>
</head>
<body>
%s</body>
</html>
`

// RenderHTML converts a markdown report into a standalone HTML page.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	doc := p.Parse([]byte(md))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags,
	})
	body := markdown.Render(doc, renderer)
	return []byte(fmt.Sprintf(htmlPage, body))
}

// WriteHTML renders the markdown report and writes it to path.
func WriteHTML(md, path string) error {
	if err := os.WriteFile(path, RenderHTML(md), 0o644); err != nil {
		return fmt.Errorf("write HTML report: %w", err)
	}
	return nil
}
