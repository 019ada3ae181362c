package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/docsift/internal/tree"
)

// JSON reads JSON through the YAML decoder and writes indented JSON. A
// stream of several documents is written as one value per document.
type JSON struct {
	yaml *YAML
}

// NewJSON returns a JSON codec.
func NewJSON() *JSON {
	return &JSON{yaml: NewYAML()}
}

// Name returns "json".
func (j *JSON) Name() string { return FormatJSON }

// Decode parses JSON (or any YAML) input.
func (j *JSON) Decode(data []byte) ([]any, error) {
	return j.yaml.Decode(data)
}

// Encode writes every document as indented JSON, keeping key order.
func (j *JSON) Encode(docs []any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	for i, doc := range docs {
		if err := enc.Encode(tree.JSONValue(doc)); err != nil {
			return nil, fmt.Errorf("encoding JSON document %d: %w", i+1, err)
		}
	}

	return buf.Bytes(), nil
}
