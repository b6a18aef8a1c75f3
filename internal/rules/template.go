package rules

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// NodeKind classifies a span of template source.
type NodeKind int

const (
	NodeText NodeKind = iota
	NodeElement
	NodeMustache
	NodeComment
	NodeHTMLComment
	NodeRaw
)

// Node is a contiguous span of the source. Start and End are byte offsets.
type Node struct {
	Kind   NodeKind
	Start  int
	End    int
	Triple bool
}

// Template is the lightweight token view rules work against. It splits a
// template into text, element tags, mustaches and comments; it does not build
// a tree.
type Template struct {
	Source     string
	Nodes      []Node
	lineStarts []int
}

// Parse tokenizes source. Unterminated constructs run to the end of input.
func Parse(source string) *Template {
	t := &Template{Source: source, lineStarts: []int{0}}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			t.lineStarts = append(t.lineStarts, i+1)
		}
	}

	i := 0
	for i < len(source) {
		rest := source[i:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			end := spanEnd(source, i+4, "-->")
			t.Nodes = append(t.Nodes, Node{Kind: NodeHTMLComment, Start: i, End: end})
			i = end
		case strings.HasPrefix(rest, "{{!--"):
			end := spanEnd(source, i+5, "--}}")
			t.Nodes = append(t.Nodes, Node{Kind: NodeComment, Start: i, End: end})
			i = end
		case strings.HasPrefix(rest, "{{!"):
			end := spanEnd(source, i+3, "}}")
			t.Nodes = append(t.Nodes, Node{Kind: NodeComment, Start: i, End: end})
			i = end
		case strings.HasPrefix(rest, "{{{"):
			end := spanEnd(source, i+3, "}}}")
			t.Nodes = append(t.Nodes, Node{Kind: NodeMustache, Start: i, End: end, Triple: true})
			i = end
		case strings.HasPrefix(rest, "{{"):
			end := spanEnd(source, i+2, "}}")
			t.Nodes = append(t.Nodes, Node{Kind: NodeMustache, Start: i, End: end})
			i = end
		case isTagOpen(rest):
			end := tagEnd(source, i+1)
			t.Nodes = append(t.Nodes, Node{Kind: NodeElement, Start: i, End: end})
			i = end
			if name := tagName(source[t.Nodes[len(t.Nodes)-1].Start:end]); name == "script" || name == "style" {
				closeTag := "</" + name
				j := strings.Index(strings.ToLower(source[i:]), closeTag)
				rawEnd := len(source)
				if j >= 0 {
					rawEnd = i + j
				}
				if rawEnd > i {
					t.Nodes = append(t.Nodes, Node{Kind: NodeRaw, Start: i, End: rawEnd})
				}
				i = rawEnd
			}
		default:
			end := textEnd(source, i)
			t.Nodes = append(t.Nodes, Node{Kind: NodeText, Start: i, End: end})
			i = end
		}
	}
	return t
}

// Text returns the source covered by n.
func (t *Template) Text(n Node) string {
	return t.Source[n.Start:n.End]
}

// Position converts a byte offset to a 1-based line and a 0-based column
// counted in characters.
func (t *Template) Position(offset int) (line, column int) {
	idx := sort.Search(len(t.lineStarts), func(i int) bool { return t.lineStarts[i] > offset }) - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1, utf8.RuneCountInString(t.Source[t.lineStarts[idx]:offset])
}

// FindingAt builds a Finding positioned at the start of n.
func (t *Template) FindingAt(n Node, message string) Finding {
	line, col := t.Position(n.Start)
	return Finding{Line: line, Column: col, Message: message, Source: t.Text(n)}
}

func spanEnd(source string, from int, terminator string) int {
	j := strings.Index(source[from:], terminator)
	if j < 0 {
		return len(source)
	}
	return from + j + len(terminator)
}

func isTagOpen(rest string) bool {
	if len(rest) < 2 || rest[0] != '<' {
		return false
	}
	c := rest[1]
	return c == '/' || c == '!' || c == ':' || c == '@' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// tagEnd finds the '>' closing a tag, skipping quoted attribute values and
// mustaches so `<div title="a > b">` stays one node.
func tagEnd(source string, from int) int {
	var quote byte
	for i := from; i < len(source); i++ {
		c := source[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case strings.HasPrefix(source[i:], "{{"):
			i = spanEnd(source, i+2, "}}") - 1
		case c == '>':
			return i + 1
		}
	}
	return len(source)
}

func tagName(tag string) string {
	tag = strings.TrimPrefix(tag, "<")
	end := strings.IndexAny(tag, " \t\r\n/>")
	if end < 0 {
		end = len(tag)
	}
	return strings.ToLower(tag[:end])
}

func textEnd(source string, from int) int {
	for i := from + 1; i < len(source); i++ {
		if strings.HasPrefix(source[i:], "{{") || isTagOpen(source[i:]) {
			return i
		}
	}
	return len(source)
}
