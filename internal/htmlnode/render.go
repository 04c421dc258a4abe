package htmlnode

import (
	"io"
	"strings"
)

// Render serializes n to HTML. Text and attribute values are emitted verbatim.
func Render(n Node) string {
	var sb strings.Builder
	_ = render(&sb, n) // strings.Builder never fails
	return sb.String()
}

// Write streams the HTML of n to w without building the whole page in
// memory first.
func Write(w io.Writer, n Node) error {
	return render(w, n)
}

func render(w io.Writer, n Node) error {
	switch n := n.(type) {
	case *Leaf:
		if n.tag == "" {
			_, err := io.WriteString(w, n.value)
			return err
		}
		if err := openTag(w, n.tag, n.attrs); err != nil {
			return err
		}
		if _, err := io.WriteString(w, n.value); err != nil {
			return err
		}
		return closeTag(w, n.tag)
	case *Container:
		if err := openTag(w, n.tag, n.attrs); err != nil {
			return err
		}
		for _, c := range n.children {
			if err := render(w, c); err != nil {
				return err
			}
		}
		return closeTag(w, n.tag)
	}
	return nil
}

func openTag(w io.Writer, tag string, attrs Attrs) error {
	_, err := io.WriteString(w, "<"+tag+attrs.HTML()+">")
	return err
}

func closeTag(w io.Writer, tag string) error {
	_, err := io.WriteString(w, "</"+tag+">")
	return err
}
