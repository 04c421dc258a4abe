// Package markdown turns a document written in a small Markdown dialect into
// an htmlnode tree.
//
// Supported blocks are headings, fenced code, quotes, unordered and ordered
// lists and paragraphs; inline content may carry bold, italic, code, links
// and images. Anything else is rendered as paragraph text.
package markdown

import (
	"errors"
	"fmt"
	"strings"

	"mdsite/internal/block"
	"mdsite/internal/htmlnode"
	"mdsite/internal/inline"
)

// ErrTitleNotFound is returned by ExtractTitle for documents without a
// level-1 heading.
var ErrTitleNotFound = errors.New("no level-1 heading found")

// RootTag is the tag of the container wrapping all blocks of a document.
const RootTag = "div"

// BlockError reports which block of a document could not be built.
type BlockError struct {
	Index int
	Type  block.Type
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d (%s): %v", e.Index, e.Type, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// BuildDocumentTree parses document and returns a container holding one child
// per block. A document without any block fails with htmlnode.ErrNoChildren.
func BuildDocumentTree(document string) (htmlnode.Node, error) {
	blocks := block.Segment(document)
	children := make([]htmlnode.Node, 0, len(blocks))
	for i, b := range blocks {
		typ := block.Classify(b)
		n, err := BuildBlock(b, typ)
		if err != nil {
			return nil, &BlockError{Index: i, Type: typ, Err: err}
		}
		children = append(children, n)
	}
	root, err := htmlnode.NewContainer(RootTag, children, htmlnode.Attrs{})
	if err != nil {
		return nil, fmt.Errorf("empty document: %w", err)
	}
	return root, nil
}

// ToHTML converts document to an HTML fragment.
func ToHTML(document string) (string, error) {
	root, err := BuildDocumentTree(document)
	if err != nil {
		return "", err
	}
	return htmlnode.Render(root), nil
}

// BuildBlock converts one classified block into a node.
func BuildBlock(b string, typ block.Type) (htmlnode.Node, error) {
	switch typ {
	case block.Heading:
		return headingNode(b)
	case block.Code:
		return codeNode(b)
	case block.Quote:
		return quoteNode(b)
	case block.UnorderedList:
		return listNode(b, "ul", func(_ int, line string) string {
			return strings.TrimPrefix(line, block.UnorderedMarker(line))
		})
	case block.OrderedList:
		return listNode(b, "ol", func(i int, line string) string {
			return strings.TrimPrefix(line, block.OrderedMarker(i+1))
		})
	case block.Paragraph:
		return inlineContainer("p", b)
	}
	return nil, fmt.Errorf("unsupported block type %s", typ)
}

// ExtractTitle returns the text of the first level-1 heading in document.
// Only the heading's first line counts.
func ExtractTitle(document string) (string, error) {
	for _, b := range block.Segment(document) {
		if block.HeadingLevel(b) != 1 {
			continue
		}
		return strings.TrimSpace(block.Lines(b)[0][2:]), nil
	}
	return "", ErrTitleNotFound
}

func headingNode(b string) (htmlnode.Node, error) {
	level := block.HeadingLevel(b)
	return inlineContainer(fmt.Sprintf("h%d", level), b[level+1:])
}

func codeNode(b string) (htmlnode.Node, error) {
	content := ""
	if len(b) >= 2*len(block.Fence) {
		content = b[len(block.Fence) : len(b)-len(block.Fence)]
	}
	code, err := htmlnode.NewLeaf("code", htmlnode.Text(content), htmlnode.Attrs{})
	if err != nil {
		return nil, err
	}
	return container("pre", []htmlnode.Node{code})
}

func quoteNode(b string) (htmlnode.Node, error) {
	lines := block.Lines(b)
	stripped := make([]string, len(lines))
	for i, l := range lines {
		l = strings.TrimPrefix(l, ">")
		stripped[i] = strings.TrimPrefix(l, " ")
	}
	return inlineContainer("blockquote", strings.Join(stripped, "\n"))
}

func listNode(b, tag string, strip func(i int, line string) string) (htmlnode.Node, error) {
	lines := block.Lines(b)
	items := make([]htmlnode.Node, 0, len(lines))
	for i, l := range lines {
		li, err := inlineContainer("li", strip(i, l))
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, li)
	}
	return container(tag, items)
}

// inlineContainer tokenizes text and wraps the resulting leaves in tag.
func inlineContainer(tag, text string) (htmlnode.Node, error) {
	children, err := inline.ToNodes(inline.Tokenize(text))
	if err != nil {
		return nil, err
	}
	return container(tag, children)
}

func container(tag string, children []htmlnode.Node) (htmlnode.Node, error) {
	c, err := htmlnode.NewContainer(tag, children, htmlnode.Attrs{})
	if err != nil {
		return nil, err
	}
	return c, nil
}
