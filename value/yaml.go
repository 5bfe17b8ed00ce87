package value

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ParseYAML reads a single YAML document into a Value. Empty input yields
// an empty document.
func ParseYAML(data []byte) (*Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Doc(), nil
	}
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(false)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("value: invalid YAML: %w", err)
	}
	return FromYAMLNode(&doc)
}

// FromYAMLNode converts a yaml.v3 node tree. Aliases are expanded.
func FromYAMLNode(n *yaml.Node) (*Value, error) {
	if n == nil {
		return Null(), nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return FromYAMLNode(n.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(n.Alias)
	case yaml.MappingNode:
		d := Doc()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("value: line %d: mapping key must be a scalar", k.Line)
			}
			child, err := FromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			d.Put(k.Value, child)
		}
		return d, nil
	case yaml.SequenceNode:
		a := Arr()
		for _, c := range n.Content {
			child, err := FromYAMLNode(c)
			if err != nil {
				return nil, err
			}
			a.Items = append(a.Items, child)
		}
		return a, nil
	case yaml.ScalarNode:
		return scalarFromYAML(n)
	}
	return nil, fmt.Errorf("value: unsupported YAML node kind %v", n.Kind)
}

func scalarFromYAML(n *yaml.Node) (*Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, fmt.Errorf("value: line %d: %w", n.Line, err)
		}
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return Int32(int32(i)), nil
		}
		return Int64(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("value: line %d: %w", n.Line, err)
		}
		return Double(f), nil
	case "!!binary":
		clean := strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\n', '\r', '\t':
				return -1
			}
			return r
		}, n.Value)
		data, err := base64.StdEncoding.DecodeString(clean)
		if err != nil {
			return nil, fmt.Errorf("value: line %d: bad !!binary: %w", n.Line, err)
		}
		return Binary(0, data), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, fmt.Errorf("value: line %d: %w", n.Line, err)
		}
		return DateTime(t.UnixMilli()), nil
	}
	return String(n.Value), nil
}

// ToYAMLNode converts v into a yaml.v3 node tree. Int64 values inside the
// int32 range, binary subtypes and code scopes do not survive a YAML round
// trip; use JSON when kinds must be preserved.
func ToYAMLNode(v *Value) *yaml.Node {
	if v == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch v.Kind {
	case NullKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case BoolKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool)}
	case Int32Kind, Int64Kind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.Int, 10)}
	case DoubleKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(v.Double)}
	case StringKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str}
	case BinaryKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!binary", Value: base64.StdEncoding.EncodeToString(v.Data)}
	case DateTimeKind:
		ts := time.UnixMilli(v.Int).UTC().Format(time.RFC3339Nano)
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: ts}
	case CodeWithScopeKind:
		mp := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		mp.Content = append(mp.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "$code"},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "$scope"},
			ToYAMLNode(v.Scope),
		)
		return mp
	case ArrayKind:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range v.Items {
			seq.Content = append(seq.Content, ToYAMLNode(it))
		}
		return seq
	case DocumentKind:
		mp := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range v.Fields {
			mp.Content = append(mp.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
				ToYAMLNode(f.Value),
			)
		}
		return mp
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(v)}
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return formatDouble(f)
}

// MarshalYAML renders v as a YAML document with two-space indentation.
func MarshalYAML(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ToYAMLNode(v)); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var errNotYAMLNode = errors.New("value: yaml node is nil")

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	if n == nil {
		return errNotYAMLNode
	}
	x, err := FromYAMLNode(n)
	if err != nil {
		return err
	}
	*v = *x
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v *Value) MarshalYAML() (any, error) {
	return ToYAMLNode(v), nil
}
