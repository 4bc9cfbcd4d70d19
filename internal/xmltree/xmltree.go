// =============================================================================
// SBA Report Converter - XML Tree
// =============================================================================
//
// This package holds the output document model: a named node with optional
// text and an ordered sequence of children, with repeated tags allowed
// (e.g. several Race/Code children). Section builders grow the tree
// bottom-up; it is serialized once per run with an XML declaration and
// two-space indentation.
//
// Parse reads an existing document back into the same model, which is what
// the post-hoc fixer operates on.
//
// =============================================================================

package xmltree

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Attr is one attribute on a node.
type Attr struct {
	Name  string
	Value string
}

// Node is one element in the output tree.
type Node struct {
	Tag      string
	Text     string
	Attrs    []Attr
	Children []*Node
}

// New creates a root node.
func New(tag string) *Node {
	return &Node{Tag: tag}
}

// Add appends a new child element and returns it, mirroring how sections
// are assembled top-down while building bottom-up values.
func (n *Node) Add(tag string) *Node {
	child := &Node{Tag: tag}
	n.Children = append(n.Children, child)
	return child
}

// AddText appends a new child element carrying text and returns it.
func (n *Node) AddText(tag, text string) *Node {
	child := &Node{Tag: tag, Text: text}
	n.Children = append(n.Children, child)
	return child
}

// SetAttr adds an attribute to the node.
func (n *Node) SetAttr(name, value string) *Node {
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return n
}

// Find returns the first direct child with the given tag, or nil.
func (n *Node) Find(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// FindAll returns every direct child with the given tag in order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Serialization
// -----------------------------------------------------------------------------

const declaration = `<?xml version="1.0" encoding="UTF-8"?>`

// Write serializes the tree to w with an XML declaration and two-space
// indentation.
func Write(w io.Writer, root *Node) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, declaration); err != nil {
		return err
	}
	writeNode(bw, root, 0)
	return bw.Flush()
}

// WriteFile serializes the tree to path.
func WriteFile(path string, root *Node) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating XML file: %w", err)
	}
	defer f.Close()
	if err := Write(f, root); err != nil {
		return fmt.Errorf("writing XML file %s: %w", path, err)
	}
	return nil
}

// String renders the tree, mainly for tests and debugging.
func String(root *Node) string {
	var sb strings.Builder
	_ = Write(&sb, root)
	return sb.String()
}

func writeNode(w *bufio.Writer, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	w.WriteString(indent)
	w.WriteByte('<')
	w.WriteString(n.Tag)
	for _, a := range n.Attrs {
		fmt.Fprintf(w, ` %s="%s"`, a.Name, escapeAttr(a.Value))
	}

	switch {
	case len(n.Children) > 0:
		w.WriteString(">\n")
		for _, c := range n.Children {
			writeNode(w, c, depth+1)
		}
		w.WriteString(indent)
		w.WriteString("</")
		w.WriteString(n.Tag)
		w.WriteString(">\n")
	case n.Text != "":
		w.WriteByte('>')
		w.WriteString(escapeText(n.Text))
		w.WriteString("</")
		w.WriteString(n.Tag)
		w.WriteString(">\n")
	default:
		w.WriteString("/>\n")
	}
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	s = escapeText(s)
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

// -----------------------------------------------------------------------------
// Parsing
// -----------------------------------------------------------------------------

// Parse reads an XML document into a Node tree, preserving child order and
// repeated tags. Whitespace-only text (indentation) is dropped.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Tag: t.Name.Local}
			for _, a := range t.Attr {
				name := a.Name.Local
				if a.Name.Space != "" {
					// Keep prefixed attributes such as xmlns:xsi readable.
					name = prefixFor(a.Name.Space) + a.Name.Local
				}
				n.Attrs = append(n.Attrs, Attr{Name: name, Value: a.Value})
			}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				if text := strings.TrimSpace(string(t)); text != "" {
					stack[len(stack)-1].Text += text
				}
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("parsing XML: no root element")
	}
	return root, nil
}

// ParseFile reads the XML document at path into a Node tree.
func ParseFile(path string) (*Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening XML file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func prefixFor(space string) string {
	if space == "xmlns" {
		return "xmlns:"
	}
	// Best effort for foreign namespaces; the converter only emits xmlns:xsi.
	return ""
}
