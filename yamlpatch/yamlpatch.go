// Package yamlpatch applies docpatch edit lists directly to yaml.v3 node
// trees. Nodes a patch does not touch keep their comments, styles and key
// order, and a moved node carries its comments to the new location.
package yamlpatch

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yamledit/docpatch"
	"github.com/yamledit/docpatch/pointer"
	"github.com/yamledit/docpatch/value"
)

// Apply applies p to the tree rooted at node, which is usually a
// DocumentNode. The patch is validated before anything is touched; on an
// application failure node may be left partially patched.
func Apply(node *yaml.Node, p docpatch.Patch, flags docpatch.CompatFlags) error {
	if node == nil {
		return errors.New("yamlpatch: nil node")
	}
	if err := docpatch.Validate(p, flags); err != nil {
		return err
	}
	e := &editor{top: node, flags: flags}
	for _, op := range p {
		if err := e.apply(op); err != nil {
			return err
		}
	}
	return nil
}

// ApplyBytes parses a YAML document, applies p and re-encodes it with the
// indentation the input used. Empty input is an empty mapping.
func ApplyBytes(data []byte, p docpatch.Patch, flags docpatch.CompatFlags) ([]byte, error) {
	var doc yaml.Node
	if len(bytes.TrimSpace(data)) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	} else if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yamlpatch: invalid YAML: %w", err)
	}
	if err := Apply(&doc, p, flags); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(detectIndent(data))
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Diff converts both trees and diffs them.
func Diff(source, target *yaml.Node, flags docpatch.DiffFlags) (docpatch.Patch, error) {
	s, err := value.FromYAMLNode(source)
	if err != nil {
		return nil, err
	}
	t, err := value.FromYAMLNode(target)
	if err != nil {
		return nil, err
	}
	return docpatch.Diff(s, t, flags), nil
}

type editor struct {
	top   *yaml.Node
	flags docpatch.CompatFlags
}

func fail(op docpatch.Op, path pointer.Path, err error, format string, args ...any) error {
	msg := err.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &docpatch.ApplicationError{Op: op, Path: path, Msg: msg, Err: err}
}

func (e *editor) root() *yaml.Node {
	if e.top.Kind != yaml.DocumentNode {
		return e.top
	}
	if len(e.top.Content) == 0 {
		return nil
	}
	return e.top.Content[0]
}

func (e *editor) setRoot(n *yaml.Node) {
	if e.top.Kind == yaml.DocumentNode {
		if len(e.top.Content) > 0 {
			keepComments(e.top.Content[0], n)
		}
		e.top.Content = []*yaml.Node{n}
		return
	}
	*e.top = *n
}

func (e *editor) apply(op docpatch.Operation) error {
	switch op.Op {
	case docpatch.Add:
		return e.set(op.Op, op.Path, e.node(op.Value))
	case docpatch.Remove:
		_, err := e.remove(op.Op, op.Path)
		return err
	case docpatch.Replace:
		return e.replace(op.Path, e.node(op.Value))
	case docpatch.Move:
		if _, err := e.lookup(op.Op, op.From); err != nil {
			return err
		}
		if op.From.IsRoot() {
			return fail(op.Op, op.From, docpatch.ErrRootRemoval, "")
		}
		n, err := e.remove(op.Op, op.From)
		if err != nil {
			return err
		}
		if n != nil && n.Kind == yaml.AliasNode {
			d := detach(deref(n))
			keepComments(n, d)
			n = d
		}
		return e.set(op.Op, op.Path, n)
	case docpatch.Copy:
		n, err := e.lookup(op.Op, op.From)
		if err != nil {
			return err
		}
		return e.set(op.Op, op.Path, detach(n))
	case docpatch.Test:
		return e.test(op.Path, op.Value)
	}
	return fmt.Errorf("yamlpatch: unknown operation %q", op.Op)
}

// node builds the tree for an operation payload. A nil payload only gets
// past validation under MissingValuesAsNulls.
func (e *editor) node(v *value.Value) *yaml.Node {
	if v == nil {
		v = value.Null()
	}
	return value.ToYAMLNode(v)
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// keyIndex returns the index in m.Content of the value stored under key,
// or -1.
func keyIndex(m *yaml.Node, key string) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if k := m.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
			return i + 1
		}
	}
	return -1
}

func (e *editor) lookup(op docpatch.Op, path pointer.Path) (*yaml.Node, error) {
	return e.walk(op, path, nil)
}

// walk resolves path. A non-nil shared set prepares the route for an edit:
// alias slots on the way are swapped for private copies and the anchored
// nodes passed through are recorded in shared.
func (e *editor) walk(op docpatch.Op, path pointer.Path, shared map[*yaml.Node]bool) (*yaml.Node, error) {
	cur := deref(e.root())
	for i := 0; i < path.Len(); i++ {
		if cur == nil {
			return nil, fail(op, path, docpatch.ErrPathNotFound, "")
		}
		if shared != nil && cur.Anchor != "" {
			shared[cur] = true
		}
		tok := path.Get(i)
		switch cur.Kind {
		case yaml.MappingNode:
			j := keyIndex(cur, tok.Field())
			if j < 0 {
				return nil, fail(op, path, docpatch.ErrPathNotFound, "")
			}
			cur = step(cur, j, shared != nil)
		case yaml.SequenceNode:
			idx, ok := tok.Index()
			if !ok {
				return nil, fail(op, path, docpatch.ErrInvalidIndex, "invalid array index %q", tok.Field())
			}
			if idx >= len(cur.Content) {
				return nil, fail(op, path, docpatch.ErrIndexOutOfBounds, "array index %d out of bounds", idx)
			}
			cur = step(cur, idx, shared != nil)
		default:
			return nil, fail(op, path, docpatch.ErrNotContainer, "")
		}
	}
	if cur == nil {
		return nil, fail(op, path, docpatch.ErrPathNotFound, "")
	}
	if shared != nil && cur.Anchor != "" {
		shared[cur] = true
	}
	return cur, nil
}

// step returns the node at c.Content[i]. With unshare set an alias there
// is replaced by a copy of its target, so edits below it leave the anchor
// alone.
func step(c *yaml.Node, i int, unshare bool) *yaml.Node {
	n := c.Content[i]
	if n.Kind != yaml.AliasNode {
		return n
	}
	if !unshare {
		return deref(n)
	}
	d := detach(deref(n))
	keepComments(n, d)
	c.Content[i] = d
	return d
}

// parent resolves the container of path for an edit. Any alias of a node
// the edit can reach, whether on the route or in the slot being replaced,
// is expanded first so the change shows up only at path.
func (e *editor) parent(op docpatch.Op, path pointer.Path) (*yaml.Node, pointer.Token, error) {
	pp, _ := path.Parent()
	last, _ := path.Last()
	shared := map[*yaml.Node]bool{}
	c, err := e.walk(op, pp, shared)
	if err != nil {
		return nil, last, err
	}
	switch c.Kind {
	case yaml.MappingNode:
		if j := keyIndex(c, last.Field()); j >= 0 {
			anchored(c.Content[j], shared)
		}
	case yaml.SequenceNode:
		if idx, ok := last.Index(); ok && idx < len(c.Content) {
			anchored(c.Content[idx], shared)
		}
	default:
		return nil, last, fail(op, path, docpatch.ErrNotContainer, "")
	}
	if len(shared) > 0 {
		expand(e.top, shared)
	}
	return c, last, nil
}

func (e *editor) set(op docpatch.Op, path pointer.Path, n *yaml.Node) error {
	if path.IsRoot() {
		e.setRoot(n)
		return nil
	}
	c, last, err := e.parent(op, path)
	if err != nil {
		return err
	}
	if c.Kind == yaml.MappingNode {
		if j := keyIndex(c, last.Field()); j >= 0 {
			overwrite(c, j, n)
			return nil
		}
		k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: last.Field()}
		c.Content = append(c.Content, k, n)
		return nil
	}
	if last.IsAppend() {
		c.Content = append(c.Content, n)
		return nil
	}
	idx, ok := last.Index()
	if !ok {
		return fail(op, path, docpatch.ErrInvalidIndex, "invalid array index %q", last.Field())
	}
	if idx > len(c.Content) {
		return fail(op, path, docpatch.ErrIndexOutOfBounds, "array index %d out of bounds", idx)
	}
	c.Content = append(c.Content, nil)
	copy(c.Content[idx+1:], c.Content[idx:])
	c.Content[idx] = n
	return nil
}

// remove detaches the node at path and returns it. A missing mapping key
// is not an error and yields nil.
func (e *editor) remove(op docpatch.Op, path pointer.Path) (*yaml.Node, error) {
	if path.IsRoot() {
		return nil, fail(op, path, docpatch.ErrRootRemoval, "")
	}
	c, last, err := e.parent(op, path)
	if err != nil {
		return nil, err
	}
	if c.Kind == yaml.MappingNode {
		j := keyIndex(c, last.Field())
		if j < 0 {
			return nil, nil
		}
		n := c.Content[j]
		if k := c.Content[j-1]; n.LineComment == "" {
			n.LineComment = k.LineComment
		}
		c.Content = append(c.Content[:j-1], c.Content[j+1:]...)
		return n, nil
	}
	idx, ok := last.Index()
	if !ok && !last.IsAppend() {
		return nil, fail(op, path, docpatch.ErrInvalidIndex, "invalid array index %q", last.Field())
	}
	if !ok || idx >= len(c.Content) {
		if op == docpatch.Remove && e.flags.Has(docpatch.RemoveNonexistentArrayElement) {
			return nil, nil
		}
		return nil, fail(op, path, docpatch.ErrIndexOutOfBounds, "array index %s out of bounds", last.Field())
	}
	n := c.Content[idx]
	c.Content = append(c.Content[:idx], c.Content[idx+1:]...)
	return n, nil
}

func (e *editor) replace(path pointer.Path, n *yaml.Node) error {
	if path.IsRoot() {
		e.setRoot(n)
		return nil
	}
	c, last, err := e.parent(docpatch.Replace, path)
	if err != nil {
		return err
	}
	if c.Kind == yaml.MappingNode {
		j := keyIndex(c, last.Field())
		if j < 0 {
			return fail(docpatch.Replace, path, docpatch.ErrMissingField, "missing field %q", last.Field())
		}
		overwrite(c, j, n)
		return nil
	}
	idx, ok := last.Index()
	if !ok {
		return fail(docpatch.Replace, path, docpatch.ErrInvalidIndex, "invalid array index %q", last.Field())
	}
	if idx >= len(c.Content) {
		return fail(docpatch.Replace, path, docpatch.ErrIndexOutOfBounds, "array index %d out of bounds", idx)
	}
	overwrite(c, idx, n)
	return nil
}

func (e *editor) test(path pointer.Path, want *value.Value) error {
	n, err := e.lookup(docpatch.Test, path)
	if err != nil {
		return err
	}
	got, err := value.FromYAMLNode(n)
	if err != nil {
		return fail(docpatch.Test, path, err, "")
	}
	if want == nil {
		want = value.Null()
	}
	if !got.Equal(want) {
		return fail(docpatch.Test, path, docpatch.ErrTestFailed, "expected value %s but found %s", want.Short(), got.Short())
	}
	return nil
}

// overwrite stores n at c.Content[i]. A scalar overwriting a scalar is
// written into the existing node so its comments and quoting survive.
func overwrite(c *yaml.Node, i int, n *yaml.Node) {
	old := c.Content[i]
	if old.Kind == yaml.ScalarNode && n.Kind == yaml.ScalarNode {
		style := old.Style
		if old.Tag != n.Tag || n.Tag != "!!str" {
			style = 0
		}
		setScalarNode(old, n.Tag, n.Value)
		old.Style = style
		return
	}
	keepComments(old, n)
	if c.Kind == yaml.MappingNode && old.Kind == yaml.ScalarNode && n.Kind != yaml.ScalarNode {
		// a block value cannot carry a line comment; hang it on the key
		if key := c.Content[i-1]; key.LineComment == "" {
			key.LineComment = n.LineComment
		}
		n.LineComment = ""
	}
	c.Content[i] = n
}

func setScalarNode(n *yaml.Node, tag, val string) {
	head, line, foot := n.HeadComment, n.LineComment, n.FootComment
	*n = yaml.Node{
		Kind:        yaml.ScalarNode,
		Tag:         tag,
		Value:       val,
		Anchor:      n.Anchor,
		Line:        n.Line,
		Column:      n.Column,
		HeadComment: head,
		LineComment: line,
		FootComment: foot,
	}
}

func keepComments(old, n *yaml.Node) {
	if n.HeadComment == "" {
		n.HeadComment = old.HeadComment
	}
	if n.LineComment == "" {
		n.LineComment = old.LineComment
	}
	if n.FootComment == "" {
		n.FootComment = old.FootComment
	}
}

func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, x := range n.Content {
			c.Content[i] = cloneNode(x)
		}
	}
	return &c
}

// detach returns a deep copy of n without anchors.
func detach(n *yaml.Node) *yaml.Node {
	c := cloneNode(n)
	var strip func(*yaml.Node)
	strip = func(n *yaml.Node) {
		if n.Kind == yaml.AliasNode {
			return
		}
		n.Anchor = ""
		for _, x := range n.Content {
			strip(x)
		}
	}
	if c != nil {
		strip(c)
	}
	return c
}

func anchored(n *yaml.Node, set map[*yaml.Node]bool) {
	if n == nil || n.Kind == yaml.AliasNode {
		return
	}
	if n.Anchor != "" {
		set[n] = true
	}
	for _, c := range n.Content {
		anchored(c, set)
	}
}

// expand replaces every alias under n whose target is in shared with a
// detached copy of that target.
func expand(n *yaml.Node, shared map[*yaml.Node]bool) {
	for i, c := range n.Content {
		if c.Kind == yaml.AliasNode && shared[c.Alias] {
			d := detach(c.Alias)
			keepComments(c, d)
			n.Content[i] = d
			c = d
		}
		expand(c, shared)
	}
}
