package splitter

import (
	"context"
	"strings"

	"github.com/Aman-CERP/knowledgeengine/internal/chunk"
)

// statementSnapper refines line-boundary code splits by moving each cut to
// the next top-level statement boundary, so a split rarely
// bisects a function body. Parse failures are reported via the ok return so
// callers fall back to plain line splitting silently.
type statementSnapper struct {
	parser   *chunk.Parser
	registry *chunk.LanguageRegistry
}

// NewStatementSnapper returns a snapper backed by tree-sitter grammars for
// the languages chunk.DefaultRegistry knows about.
func NewStatementSnapper() *statementSnapper {
	registry := chunk.DefaultRegistry()
	return &statementSnapper{
		parser:   chunk.NewParserWithRegistry(registry),
		registry: registry,
	}
}

// Close releases the underlying tree-sitter parser.
func (s *statementSnapper) Close() {
	if s != nil && s.parser != nil {
		s.parser.Close()
	}
}

// split divides content at top-level statement boundaries: a piece ends at
// the first boundary line reached once it holds at least maxSize bytes, so a
// piece can be larger than maxSize. ok is false when language is unsupported
// or parsing fails.
func (s *statementSnapper) split(language, content string, maxSize int) ([]string, bool) {
	if s == nil || language == "" {
		return nil, false
	}
	if _, supported := s.registry.GetByName(language); !supported {
		return nil, false
	}

	tree, err := s.parser.Parse(context.Background(), []byte(content), language)
	if err != nil || tree == nil || tree.Root == nil {
		return nil, false
	}

	boundaries := topLevelLineBoundaries(tree.Root)
	if len(boundaries) == 0 {
		return nil, false
	}

	lines := strings.Split(content, "\n")
	var parts []string
	var buf strings.Builder
	start := 0

	isBoundary := make(map[int]bool, len(boundaries))
	for _, b := range boundaries {
		isBoundary[b] = true
	}

	for i, line := range lines {
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		atBoundary := isBoundary[i]
		if buf.Len() >= maxSize && atBoundary {
			parts = append(parts, buf.String())
			buf.Reset()
			start = i + 1
		}
	}
	if buf.Len() > 0 {
		parts = append(parts, buf.String())
	}
	if len(parts) <= 1 && start == 0 {
		return nil, false
	}
	return parts, true
}

// topLevelLineBoundaries returns the 0-indexed end line of every direct
// child of the parse tree's root, in ascending order.
func topLevelLineBoundaries(root *chunk.Node) []int {
	var ends []int
	for _, child := range root.Children {
		ends = append(ends, int(child.EndPoint.Row))
	}
	return ends
}
