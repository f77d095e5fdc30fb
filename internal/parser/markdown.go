package parser

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"

	"pdf-rag-chat/internal/models"
)

func parseMarkdown(filePath string) ([]models.Page, error) {
	src, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(markdownToPlainText(src))
	if content == "" {
		return nil, nil
	}
	return []models.Page{{
		Content:    content,
		Source:     filePath,
		PageNumber: defaultPageNumber,
	}}, nil
}

// markdownToPlainText walks the goldmark AST and keeps only the readable
// text, with blank lines between blocks so the chunker still sees
// paragraph boundaries.
func markdownToPlainText(src []byte) string {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(gmtext.NewReader(src))

	var buf strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			blockGap(&buf)
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
		default:
			if n.Type() == ast.TypeBlock {
				blockGap(&buf)
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockGap(buf *strings.Builder) {
	if buf.Len() > 0 {
		buf.WriteString("\n\n")
	}
}
