// Package codec loads and dumps docsift documents.
//
// Every codec decodes a stream of documents into the node model of package
// tree, keeping mapping keys in source order, and encodes documents back
// in that order. Three codecs are built in:
//
//   - yaml: gopkg.in/yaml.v3, the default
//   - goccy: github.com/goccy/go-yaml
//   - json: YAML 1.2 decoding (JSON is a subset) and encoding/json output
package codec

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Codec converts between bytes and documents.
type Codec interface {
	// Name is the format name the codec is registered under.
	Name() string
	// Decode parses every document of a stream.
	Decode(data []byte) ([]any, error)
	// Encode serializes docs as one stream.
	Encode(docs []any) ([]byte, error)
}

// Registry maps format names to codecs.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

// NewRegistry creates an empty codec registry.
func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Codec),
	}
}

// Register adds c under its name. Existing entries for the same name are
// overwritten.
func (r *Registry) Register(c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[c.Name()] = c
}

// Lookup returns the codec for the given format, or an error if not found.
func (r *Registry) Lookup(name string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.codecs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (available: %s)", name, r.availableLocked())
	}

	return c, nil
}

// Formats returns the sorted list of registered format names.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.formatsLocked()
}

// AvailableFormats returns a comma-separated string of registered format names.
func (r *Registry) AvailableFormats() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.availableLocked()
}

func (r *Registry) formatsLocked() []string {
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (r *Registry) availableLocked() string {
	formats := r.formatsLocked()
	if len(formats) == 0 {
		return "none"
	}

	return strings.Join(formats, ", ")
}

// Default returns a registry with the built-in codecs.
func Default() *Registry {
	r := NewRegistry()

	r.Register(NewYAML())
	r.Register(NewGoccy())
	r.Register(NewJSON())

	return r
}

// Detect guesses the format of a file from its extension. Anything that is
// not JSON is read as YAML.
func Detect(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}

	return FormatYAML
}

// Format names of the built-in codecs.
const (
	FormatYAML  = "yaml"
	FormatGoccy = "goccy"
	FormatJSON  = "json"
)
