// Package mdparse turns Markdown source into an ordered stream of typed
// segments, each tagged with the heading breadcrumb active at its position.
package mdparse

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".flac": true, ".aac": true, ".aiff": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true,
}

// classifyMediaRef returns the segment type for a link/image destination,
// overriding fallback by file extension per spec.md §4.1.
func classifyMediaRef(dest string, fallback model.ChunkType) model.ChunkType {
	ext := strings.ToLower(filepath.Ext(stripQuery(dest)))
	if audioExtensions[ext] {
		return model.ChunkTypeAudioRef
	}
	if videoExtensions[ext] {
		return model.ChunkTypeVideoRef
	}
	return fallback
}

func stripQuery(dest string) string {
	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		return dest[:i]
	}
	return dest
}

// Parser parses Markdown into Segments on top of goldmark's CommonMark AST.
type Parser struct {
	md goldmark.Markdown
}

// New returns a Parser configured with GFM table support.
func New() *Parser {
	return &Parser{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Parse converts content into an ordered Segment stream. Malformed Markdown
// is tolerated as text; only non-UTF-8 input fails.
func (p *Parser) Parse(content string) ([]model.Segment, error) {
	if !utf8.ValidString(content) {
		return nil, errdefs.NewParseError("markdown input is not valid UTF-8", nil)
	}
	if strings.TrimSpace(content) == "" {
		return []model.Segment{}, nil
	}

	src := []byte(content)
	doc := p.md.Parser().Parse(text.NewReader(src))

	w := &walker{src: src}
	_ = ast.Walk(doc, w.visit)
	w.flushText()
	return w.segments, nil
}

type headingFrame struct {
	level int
	title string
}

type walker struct {
	src      []byte
	stack    []headingFrame
	segments []model.Segment
	textBuf  strings.Builder
	inQuote  int
}

func (w *walker) breadcrumb() []string {
	out := make([]string, 0, len(w.stack))
	for _, f := range w.stack {
		if f.title != "" {
			out = append(out, f.title)
		}
	}
	return out
}

func (w *walker) flushText() {
	content := strings.TrimSpace(w.textBuf.String())
	w.textBuf.Reset()
	if content == "" {
		return
	}
	seg := model.Segment{
		Type:        model.ChunkTypeText,
		Content:     content,
		HeadingPath: w.breadcrumb(),
	}
	if w.inQuote > 0 {
		seg.Metadata = map[string]string{"quote": "true"}
	}
	w.segments = append(w.segments, seg)
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if !entering {
			return ast.WalkContinue, nil
		}
		w.flushText()
		title := strings.TrimSpace(string(node.Text(w.src)))
		for len(w.stack) > 0 && w.stack[len(w.stack)-1].level >= node.Level {
			w.stack = w.stack[:len(w.stack)-1]
		}
		w.stack = append(w.stack, headingFrame{level: node.Level, title: title})
		return ast.WalkSkipChildren, nil

	case *ast.FencedCodeBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		w.flushText()
		lang := ""
		if l := node.Language(w.src); l != nil {
			lang = string(l)
		}
		var body strings.Builder
		for i := 0; i < node.Lines().Len(); i++ {
			line := node.Lines().At(i)
			body.Write(line.Value(w.src))
		}
		w.segments = append(w.segments, model.Segment{
			Type:        model.ChunkTypeCode,
			Content:     body.String(),
			Language:    lang,
			HeadingPath: w.breadcrumb(),
		})
		return ast.WalkSkipChildren, nil

	case *ast.CodeBlock:
		if !entering {
			return ast.WalkContinue, nil
		}
		w.flushText()
		var body strings.Builder
		for i := 0; i < node.Lines().Len(); i++ {
			line := node.Lines().At(i)
			body.Write(line.Value(w.src))
		}
		w.segments = append(w.segments, model.Segment{
			Type:        model.ChunkTypeCode,
			Content:     body.String(),
			HeadingPath: w.breadcrumb(),
		})
		return ast.WalkSkipChildren, nil

	case *ast.Image:
		if !entering {
			return ast.WalkContinue, nil
		}
		dest := string(node.Destination)
		segType := classifyMediaRef(dest, model.ChunkTypeImageRef)
		meta := map[string]string{}
		if alt := strings.TrimSpace(string(node.Text(w.src))); alt != "" {
			meta["alt"] = alt
		}
		if title := strings.TrimSpace(string(node.Title)); title != "" {
			meta["title"] = title
		}
		w.segments = append(w.segments, model.Segment{
			Type:        segType,
			Content:     dest,
			HeadingPath: w.breadcrumb(),
			Metadata:    meta,
		})
		return ast.WalkSkipChildren, nil

	case *ast.Link:
		if !entering {
			return ast.WalkContinue, nil
		}
		dest := string(node.Destination)
		ext := strings.ToLower(filepath.Ext(stripQuery(dest)))
		if audioExtensions[ext] || videoExtensions[ext] {
			w.flushText()
			segType := classifyMediaRef(dest, model.ChunkTypeAudioRef)
			w.segments = append(w.segments, model.Segment{
				Type:        segType,
				Content:     dest,
				HeadingPath: w.breadcrumb(),
			})
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil

	case *ast.Blockquote:
		if entering {
			w.flushText()
			w.inQuote++
		} else {
			w.flushText()
			w.inQuote--
		}
		return ast.WalkContinue, nil

	case *extast.Table:
		if !entering {
			return ast.WalkContinue, nil
		}
		w.flushText()
		rendered := renderTable(node, w.src)
		w.segments = append(w.segments, model.Segment{
			Type:        model.ChunkTypeTable,
			Content:     rendered,
			HeadingPath: w.breadcrumb(),
		})
		return ast.WalkSkipChildren, nil

	case *ast.Text:
		if entering {
			w.textBuf.Write(node.Segment.Value(w.src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				w.textBuf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil

	case *ast.ListItem:
		if entering {
			w.textBuf.WriteString("- ")
		} else {
			w.textBuf.WriteByte('\n')
		}
		return ast.WalkContinue, nil
	}

	return ast.WalkContinue, nil
}

// renderTable reconstructs a pipe-table's plain text from its cells.
func renderTable(table *extast.Table, src []byte) string {
	var out strings.Builder
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(string(cell.Text(src))))
		}
		fmt.Fprintf(&out, "| %s |\n", strings.Join(cells, " | "))
		if _, ok := row.(*extast.TableHeader); ok {
			sep := make([]string, len(cells))
			for i := range sep {
				sep[i] = "---"
			}
			fmt.Fprintf(&out, "| %s |\n", strings.Join(sep, " | "))
		}
	}
	return strings.TrimSpace(out.String())
}
