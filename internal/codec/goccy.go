package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	goyaml "github.com/goccy/go-yaml"

	"github.com/hupe1980/docsift/internal/tree"
)

// Goccy is the github.com/goccy/go-yaml codec. Mappings are decoded as
// ordered map slices.
type Goccy struct {
	indent int
}

// NewGoccy returns a goccy codec indenting by two spaces.
func NewGoccy() *Goccy {
	return &Goccy{indent: 2}
}

// Name returns "goccy".
func (g *Goccy) Name() string { return FormatGoccy }

// Decode parses a YAML stream.
func (g *Goccy) Decode(data []byte) ([]any, error) {
	dec := goyaml.NewDecoder(bytes.NewReader(data), goyaml.UseOrderedMap())

	var docs []any

	for {
		var v any

		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("decoding YAML document %d: %w", len(docs)+1, err)
		}

		d := &valueDecoder{sourceSize: len(data)}

		n, err := d.fromGoccy(v, 0)
		if err != nil {
			return nil, fmt.Errorf("decoding YAML document %d: %w", len(docs)+1, err)
		}

		docs = append(docs, n)
	}

	return docs, nil
}

// Encode writes docs as a YAML stream separated by "---".
func (g *Goccy) Encode(docs []any) ([]byte, error) {
	var buf bytes.Buffer

	for i, doc := range docs {
		out, err := goyaml.MarshalWithOptions(toGoccy(doc),
			goyaml.Indent(g.indent),
			goyaml.IndentSequence(true),
			goyaml.UseLiteralStyleIfMultiline(true),
		)
		if err != nil {
			return nil, fmt.Errorf("encoding YAML document %d: %w", i+1, err)
		}

		if i > 0 {
			buf.WriteString("---\n")
		}

		buf.Write(out)
	}

	return buf.Bytes(), nil
}

// valueDecoder converts one decoded goccy value. goccy resolves aliases
// by sharing values, so nodes beyond what the source can hold are counted
// as alias expansions.
type valueDecoder struct {
	meter      expansion
	sourceSize int
}

func (d *valueDecoder) fromGoccy(v any, depth int) (any, error) {
	if err := tree.CheckDepth(depth); err != nil {
		return nil, err
	}

	if err := d.meter.add(d.meter.expanded >= d.sourceSize); err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case goyaml.MapSlice:
		m := tree.NewMap(len(val))

		for _, item := range val {
			key := scalarText(item.Key)

			child, err := d.fromGoccy(item.Value, depth+1)
			if err != nil {
				return nil, tree.AtKey(err, key)
			}

			m = m.Set(key, child)
		}

		return m, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		m := tree.NewMap(len(val))

		for _, k := range keys {
			child, err := d.fromGoccy(val[k], depth+1)
			if err != nil {
				return nil, tree.AtKey(err, k)
			}

			m = append(m, tree.Entry{Key: k, Value: child})
		}

		return m, nil
	case []any:
		seq := make([]any, 0, len(val))

		for i, item := range val {
			child, err := d.fromGoccy(item, depth+1)
			if err != nil {
				return nil, tree.AtIndex(err, i)
			}

			seq = append(seq, child)
		}

		return seq, nil
	case int64:
		if val >= math.MinInt && val <= math.MaxInt {
			return int(val), nil
		}

		return val, nil
	case uint64:
		if val <= math.MaxInt {
			return int(val), nil
		}

		return val, nil
	default:
		return val, nil
	}
}

func toGoccy(v any) any {
	switch val := v.(type) {
	case tree.Map:
		out := make(goyaml.MapSlice, 0, len(val))
		for _, e := range val {
			out = append(out, goyaml.MapItem{Key: e.Key, Value: toGoccy(e.Value)})
		}

		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toGoccy(item)
		}

		return out
	default:
		return val
	}
}

func scalarText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}
