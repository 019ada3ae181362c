package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/docsift/internal/tree"
)

const mergeTag = "!!merge"

// YAML is the gopkg.in/yaml.v3 codec. Documents are decoded through
// yaml.Node so that mapping order survives.
type YAML struct {
	indent int
}

// NewYAML returns a YAML codec indenting by two spaces.
func NewYAML() *YAML {
	return &YAML{indent: 2}
}

// Name returns "yaml".
func (y *YAML) Name() string { return FormatYAML }

// Decode parses a YAML stream. Aliases are expanded and merge keys applied.
func (y *YAML) Decode(data []byte) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var docs []any

	for {
		var n yaml.Node

		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("decoding YAML document %d: %w", len(docs)+1, err)
		}

		d := &nodeDecoder{}

		v, err := d.fromNode(&n, 0)
		if err != nil {
			return nil, fmt.Errorf("decoding YAML document %d: %w", len(docs)+1, err)
		}

		docs = append(docs, v)
	}

	return docs, nil
}

// Encode writes docs as a YAML stream separated by "---".
func (y *YAML) Encode(docs []any) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(y.indent)

	for i, doc := range docs {
		n, err := toNode(doc)
		if err != nil {
			return nil, fmt.Errorf("encoding YAML document %d: %w", i+1, err)
		}

		if err := enc.Encode(n); err != nil {
			return nil, fmt.Errorf("encoding YAML document %d: %w", i+1, err)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing YAML encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// nodeDecoder converts one yaml.Node document. Aliases are expanded into
// copies, so their expansion is metered.
type nodeDecoder struct {
	meter      expansion
	aliasDepth int
}

func (d *nodeDecoder) fromNode(n *yaml.Node, depth int) (any, error) {
	if err := tree.CheckDepth(depth); err != nil {
		return nil, err
	}

	if n.Kind != yaml.DocumentNode && n.Kind != yaml.AliasNode {
		if err := d.meter.add(d.aliasDepth > 0); err != nil {
			return nil, err
		}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}

		return d.fromNode(n.Content[0], depth)
	case yaml.AliasNode:
		d.aliasDepth++
		defer func() { d.aliasDepth-- }()

		return d.fromNode(n.Alias, depth+1)
	case yaml.MappingNode:
		return d.mappingFromNode(n, depth)
	case yaml.SequenceNode:
		seq := make([]any, 0, len(n.Content))

		for i, item := range n.Content {
			v, err := d.fromNode(item, depth+1)
			if err != nil {
				return nil, tree.AtIndex(err, i)
			}

			seq = append(seq, v)
		}

		return seq, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}

		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func (d *nodeDecoder) mappingFromNode(n *yaml.Node, depth int) (tree.Map, error) {
	m := tree.NewMap(len(n.Content) / 2)

	var merged []tree.Map

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]

		if k.Tag == mergeTag {
			sources, err := d.mergeSources(v, depth)
			if err != nil {
				return nil, err
			}

			merged = append(merged, sources...)

			continue
		}

		key, err := keyFromNode(k)
		if err != nil {
			return nil, err
		}

		val, err := d.fromNode(v, depth+1)
		if err != nil {
			return nil, tree.AtKey(err, key)
		}

		m = m.Set(key, val)
	}

	// Explicit keys win over merged ones; earlier merge sources win over
	// later ones.
	for _, src := range merged {
		for _, e := range src {
			if !m.Has(e.Key) {
				m = append(m, e)
			}
		}
	}

	return m, nil
}

func (d *nodeDecoder) mergeSources(v *yaml.Node, depth int) ([]tree.Map, error) {
	val, err := d.fromNode(v, depth+1)
	if err != nil {
		return nil, err
	}

	switch src := val.(type) {
	case tree.Map:
		return []tree.Map{src}, nil
	case []any:
		out := make([]tree.Map, 0, len(src))

		for _, item := range src {
			m, ok := item.(tree.Map)
			if !ok {
				return nil, fmt.Errorf("line %d: merge sequence must hold mappings", v.Line)
			}

			out = append(out, m)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping or a sequence of mappings", v.Line)
	}
}

func keyFromNode(k *yaml.Node) (string, error) {
	for k.Kind == yaml.AliasNode {
		k = k.Alias
	}

	if k.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
	}

	return k.Value, nil
}

func toNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case tree.Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

		for _, e := range val {
			k := &yaml.Node{}
			if err := k.Encode(e.Key); err != nil {
				return nil, err
			}

			child, err := toNode(e.Value)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", e.Key, err)
			}

			n.Content = append(n.Content, k, child)
		}

		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}

		for _, item := range val {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}

			n.Content = append(n.Content, child)
		}

		return n, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(val); err != nil {
			return nil, err
		}

		return n, nil
	}
}
