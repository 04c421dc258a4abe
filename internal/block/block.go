package block

import (
	"fmt"
	"strconv"
	"strings"
)

// Type classifies a block.
type Type int

const (
	Paragraph Type = iota
	Heading
	Code
	Quote
	UnorderedList
	OrderedList
)

func (t Type) String() string {
	switch t {
	case Paragraph:
		return "paragraph"
	case Heading:
		return "heading"
	case Code:
		return "code"
	case Quote:
		return "quote"
	case UnorderedList:
		return "unordered_list"
	case OrderedList:
		return "ordered_list"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Fence delimits code blocks.
const Fence = "```"

// Segment splits a document into blocks separated by blank lines. Each block
// is trimmed and empty blocks are dropped. A run of two or more newlines is a
// single separator.
func Segment(document string) []string {
	doc := normalizeNewlines(document)
	var blocks []string
	start := 0
	for i := 0; i < len(doc); {
		if doc[i] != '\n' {
			i++
			continue
		}
		j := i
		for j < len(doc) && doc[j] == '\n' {
			j++
		}
		if j-i >= 2 {
			blocks = appendBlock(blocks, doc[start:i])
			start = j
		}
		i = j
	}
	return appendBlock(blocks, doc[start:])
}

func appendBlock(blocks []string, raw string) []string {
	if b := strings.TrimSpace(raw); b != "" {
		return append(blocks, b)
	}
	return blocks
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Lines splits a block into lines. "\n", "\r\n" and "\r" all end a line; a
// trailing line break does not produce an empty last line.
func Lines(block string) []string {
	s := normalizeNewlines(block)
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// Classify determines the type of a trimmed block. Rules are tried in order:
// heading, code, quote, unordered list, ordered list; anything else is a
// paragraph.
func Classify(block string) Type {
	if HeadingLevel(block) > 0 {
		return Heading
	}
	if isCode(block) {
		return Code
	}
	lines := Lines(block)
	if len(lines) == 0 {
		return Paragraph
	}
	if allLines(lines, func(_ int, l string) bool { return strings.HasPrefix(l, ">") }) {
		return Quote
	}
	if allLines(lines, func(_ int, l string) bool { return UnorderedMarker(l) != "" }) {
		return UnorderedList
	}
	if allLines(lines, func(i int, l string) bool { return strings.HasPrefix(l, OrderedMarker(i+1)) }) {
		return OrderedList
	}
	return Paragraph
}

// HeadingLevel returns the number of leading '#' characters if block starts
// with 1 to 6 of them followed by a space, and 0 otherwise.
func HeadingLevel(block string) int {
	n := 0
	for n < len(block) && block[n] == '#' {
		n++
	}
	if n == 0 || n > 6 || n >= len(block) || block[n] != ' ' {
		return 0
	}
	return n
}

func isCode(block string) bool {
	return len(block) >= len(Fence) && strings.HasPrefix(block, Fence) && strings.HasSuffix(block, Fence)
}

// UnorderedMarker returns the list marker ("* " or "- ") line starts with, or
// "" if there is none.
func UnorderedMarker(line string) string {
	for _, m := range []string{"* ", "- "} {
		if strings.HasPrefix(line, m) {
			return m
		}
	}
	return ""
}

// OrderedMarker returns the marker expected on the i-th (1-based) line of an
// ordered list.
func OrderedMarker(i int) string {
	return strconv.Itoa(i) + ". "
}

func allLines(lines []string, pred func(i int, line string) bool) bool {
	for i, l := range lines {
		if !pred(i, l) {
			return false
		}
	}
	return true
}
