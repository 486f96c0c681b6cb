// Package sirixml navigates inbound, partially trusted SIRI documents by dotted element paths.
//
// Every lookup fails soft: a missing segment yields false, the supplied default or an empty
// slice. Nothing here panics on absent or unexpected structure.
package sirixml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ErrNoRoot is returned by Parse when the input has no root element.
var ErrNoRoot = errors.New("document has no root element")

// Tree is a parsed inbound document. Paths on Tree start with the root element name,
// e.g. "Siri.CheckStatusResponse.Status".
type Tree struct {
	doc *etree.Document
}

// Parse reads an XML document.
func Parse(b []byte) (*Tree, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(b); err != nil {
		return nil, fmt.Errorf("read xml: %w", err)
	}
	if doc.Root() == nil {
		return nil, ErrNoRoot
	}
	return &Tree{doc: doc}, nil
}

// Root returns the document element.
func (t *Tree) Root() *etree.Element {
	if t == nil || t.doc == nil {
		return nil
	}
	return t.doc.Root()
}

// Exists reports whether the element at path is present.
func (t *Tree) Exists(path string) bool {
	return t.resolve(path) != nil
}

// Value returns the trimmed text of the element at path, or def.
func (t *Tree) Value(path, def string) string {
	el := t.resolve(path)
	if el == nil {
		return def
	}
	return strings.TrimSpace(el.Text())
}

// Elements returns every element matching the last path segment under the parent path.
func (t *Tree) Elements(path string) []*etree.Element {
	segs := split(path)
	root := t.Root()
	if len(segs) == 0 || root == nil || root.Tag != segs[0] {
		return []*etree.Element{}
	}
	if len(segs) == 1 {
		return []*etree.Element{root}
	}
	return Elements(root, strings.Join(segs[1:], "."))
}

// Attribute returns the attribute named by the last path segment of the element named by the
// preceding segments, e.g. "Siri.version".
func (t *Tree) Attribute(path, def string) string {
	segs := split(path)
	if len(segs) < 2 {
		return def
	}
	el := t.resolve(strings.Join(segs[:len(segs)-1], "."))
	if el == nil {
		return def
	}
	return el.SelectAttrValue(segs[len(segs)-1], def)
}

func (t *Tree) resolve(path string) *etree.Element {
	segs := split(path)
	root := t.Root()
	if len(segs) == 0 || root == nil || root.Tag != segs[0] {
		return nil
	}
	return walk(root, segs[1:])
}

// Exists reports whether the descendant of el at the relative path is present.
func Exists(el *etree.Element, path string) bool {
	return walk(el, split(path)) != nil
}

// Value returns the trimmed text of the descendant of el at the relative path, or def.
func Value(el *etree.Element, path, def string) string {
	found := walk(el, split(path))
	if found == nil {
		return def
	}
	return strings.TrimSpace(found.Text())
}

// Bool interprets the text at path as an xsd:boolean, falling back to def when the element is
// absent or the text is not a boolean literal.
func Bool(el *etree.Element, path string, def bool) bool {
	switch strings.ToLower(Value(el, path, "")) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return def
	}
}

// Elements returns all children matching the last segment of path under the element named by
// the preceding segments.
func Elements(el *etree.Element, path string) []*etree.Element {
	segs := split(path)
	if el == nil || len(segs) == 0 {
		return []*etree.Element{}
	}
	parent := walk(el, segs[:len(segs)-1])
	if parent == nil {
		return []*etree.Element{}
	}
	last := segs[len(segs)-1]
	out := []*etree.Element{}
	for _, c := range parent.ChildElements() {
		if c.Tag == last {
			out = append(out, c)
		}
	}
	return out
}

// Attribute returns the attribute named by the last segment of path on the descendant named by
// the preceding segments. A single-segment path reads an attribute of el itself.
func Attribute(el *etree.Element, path, def string) string {
	segs := split(path)
	if el == nil || len(segs) == 0 {
		return def
	}
	owner := walk(el, segs[:len(segs)-1])
	if owner == nil {
		return def
	}
	return owner.SelectAttrValue(segs[len(segs)-1], def)
}

// Serialize writes el and its subtree as a standalone XML fragment without declaration.
func Serialize(el *etree.Element) (string, error) {
	if el == nil {
		return "", ErrNoRoot
	}
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	return doc.WriteToString()
}

// walk descends one child per segment, matching local names so default-namespace documents and
// prefixed documents resolve the same way.
func walk(el *etree.Element, segs []string) *etree.Element {
	cur := el
	for _, seg := range segs {
		if cur == nil {
			return nil
		}
		cur = child(cur, seg)
	}
	return cur
}

func child(el *etree.Element, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}
