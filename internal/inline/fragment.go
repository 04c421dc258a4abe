package inline

import (
	"errors"
	"fmt"

	"mdsite/internal/htmlnode"
)

var (
	ErrMissingURL  = errors.New("link or image fragment must have a URL")
	ErrUnknownKind = errors.New("unknown fragment kind")
)

// Kind is the type of an inline fragment.
type Kind int

const (
	Plain Kind = iota
	Bold
	Italic
	Code
	Link
	Image
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Code:
		return "code"
	case Link:
		return "link"
	case Image:
		return "image"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Fragment is one typed run of inline text. URL is only meaningful for Link
// and Image fragments.
type Fragment struct {
	Text string
	Kind Kind
	URL  string
}

func (f Fragment) String() string {
	if f.URL != "" {
		return fmt.Sprintf("Fragment(%q, %s, %s)", f.Text, f.Kind, f.URL)
	}
	return fmt.Sprintf("Fragment(%q, %s)", f.Text, f.Kind)
}

// ToNode converts a fragment into a leaf node.
func ToNode(f Fragment) (htmlnode.Node, error) {
	var (
		tag   string
		value = f.Text
		attrs htmlnode.Attrs
	)
	switch f.Kind {
	case Plain:
	case Bold:
		tag = "b"
	case Italic:
		tag = "i"
	case Code:
		tag = "code"
	case Link:
		if f.URL == "" {
			return nil, fmt.Errorf("link %q: %w", f.Text, ErrMissingURL)
		}
		tag = "a"
		attrs = htmlnode.NewAttrs("href", f.URL)
	case Image:
		if f.URL == "" {
			return nil, fmt.Errorf("image %q: %w", f.Text, ErrMissingURL)
		}
		tag = "img"
		value = ""
		attrs = htmlnode.NewAttrs("src", f.URL, "alt", f.Text)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, f.Kind)
	}
	leaf, err := htmlnode.NewLeaf(tag, htmlnode.Text(value), attrs)
	if err != nil {
		return nil, err
	}
	return leaf, nil
}

// ToNodes converts fragments in order, stopping at the first failure.
func ToNodes(frags []Fragment) ([]htmlnode.Node, error) {
	nodes := make([]htmlnode.Node, 0, len(frags))
	for _, f := range frags {
		n, err := ToNode(f)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
