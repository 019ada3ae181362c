// Package docsift provides a public Go API for filtering, collapsing and
// unwrapping annotated YAML/JSON documents.
//
// Documents are the trees produced by decoding YAML or JSON: [Map] for
// mappings (keeping key order), []any for sequences and plain Go scalars.
//
// Basic usage:
//
//	out, err := docsift.Process(ctx, yamlBytes,
//	    docsift.WithUserKey("de"),
//	    docsift.WithTargetVerbosity(2),
//	)
//
// Working on decoded trees:
//
//	filtered, err := docsift.Filter(doc,
//	    docsift.WithTargetVerbosity(1),
//	    docsift.WithExcludeTags(docsift.ModeAny, "private"),
//	)
package docsift

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hupe1980/docsift/internal/codec"
	"github.com/hupe1980/docsift/internal/collapse"
	"github.com/hupe1980/docsift/internal/filter"
	"github.com/hupe1980/docsift/internal/logging"
	"github.com/hupe1980/docsift/internal/pipeline"
	"github.com/hupe1980/docsift/internal/scope"
	"github.com/hupe1980/docsift/internal/tree"
	"github.com/hupe1980/docsift/internal/unwrap"
)

// Map is an insertion-ordered mapping node.
type Map = tree.Map

// Entry is one key/value pair of a Map.
type Entry = tree.Entry

// M builds a Map from alternating keys and values.
func M(kv ...any) Map { return tree.M(kv...) }

// Keys names the document keys the filter passes look at.
type Keys = filter.Keys

// Mode decides how a tag list is matched.
type Mode = filter.Mode

// Tag matching modes.
const (
	ModeAny = filter.ModeAny
	ModeAll = filter.ModeAll
)

// Error kinds. Every error returned for a bad document or configuration
// wraps one of them.
var (
	ErrConfig       = tree.ErrConfig
	ErrMalformed    = tree.ErrMalformed
	ErrMissingValue = tree.ErrMissingValue
	ErrTooDeep      = tree.ErrTooDeep
	ErrTooLarge     = tree.ErrTooLarge
)

// Supported serialization formats for Process.
const (
	FormatYAML  = codec.FormatYAML
	FormatGoccy = codec.FormatGoccy
	FormatJSON  = codec.FormatJSON
)

// DefaultTargetVerbosity is the verbosity kept when none is given.
const DefaultTargetVerbosity = 1.0

// CollapseKeys names the configuration entries used by Collapse.
type CollapseKeys struct {
	// ConfigKey names the embedded configuration mapping.
	ConfigKey string
	// KeysKey is the configuration entry listing the collapsible keys.
	KeysKey string
	// DefaultKey is the configuration entry naming the fallback key.
	DefaultKey string
}

// Option configures the transformations.
// Use the With* functions to create Options.
type Option func(*options)

type options struct {
	target       float64
	include      *filter.TagRule
	exclude      *filter.TagRule
	keys         Keys
	noUnwrap     bool
	userKey      string
	lenient      bool
	collapseKeys CollapseKeys
	format       string
	inherited    Map
	logger       *slog.Logger
	skipCollapse bool
	skipFilter   bool
}

// WithTargetVerbosity sets the highest verbosity level kept. Use
// math.Inf(1) to keep every level.
func WithTargetVerbosity(v float64) Option { return func(o *options) { o.target = v } }

// WithIncludeTags keeps only content nodes matching tags under mode. An
// empty mode means ModeAny.
func WithIncludeTags(mode Mode, tags ...string) Option {
	return func(o *options) { o.include = filter.Include(modeOrAny(mode), tags...) }
}

// WithExcludeTags prunes content nodes matching tags under mode. An empty
// mode means ModeAny.
func WithExcludeTags(mode Mode, tags ...string) Option {
	return func(o *options) { o.exclude = filter.Exclude(modeOrAny(mode), tags...) }
}

func modeOrAny(m Mode) Mode {
	if m == "" {
		return ModeAny
	}

	return m
}

// WithKeys overrides the filter key names. Empty fields keep their default.
func WithKeys(k Keys) Option { return func(o *options) { o.keys = k } }

// WithoutUnwrap keeps content wrappers and their metadata in filter results.
func WithoutUnwrap() Option { return func(o *options) { o.noUnwrap = true } }

// WithUserKey selects the variant Collapse resolves to.
func WithUserKey(k string) Option { return func(o *options) { o.userKey = k } }

// WithLenient makes Collapse fall back to the default key when the user key
// is not collapsible.
func WithLenient() Option { return func(o *options) { o.lenient = true } }

// WithCollapseKeys overrides the collapse configuration key names.
func WithCollapseKeys(k CollapseKeys) Option { return func(o *options) { o.collapseKeys = k } }

// WithFormat sets the serialization format used by Process (yaml, goccy or
// json). YAML is the default.
func WithFormat(f string) Option { return func(o *options) { o.format = f } }

// WithInherited sets configuration values in force at the document root,
// as if the root carried them in its configuration mapping.
func WithInherited(values Map) Option { return func(o *options) { o.inherited = values } }

// WithLogger sets the logger Process reports stage progress to.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithoutCollapse makes Process skip the collapse pass.
func WithoutCollapse() Option { return func(o *options) { o.skipCollapse = true } }

// WithoutFilter makes Process skip the filter pass.
func WithoutFilter() Option { return func(o *options) { o.skipFilter = true } }

func newOptions(opts []Option) *options {
	o := &options{target: DefaultTargetVerbosity, format: FormatYAML}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logging.Discard()
	}

	return o
}

func (o *options) rules() filter.TagRules {
	return filter.TagRules{Include: o.include, Exclude: o.exclude}
}

func (o *options) filterOptions() filter.Options {
	return filter.Options{
		Keys:      o.keys,
		Inherited: scope.New(o.inherited),
		Unwrap:    !o.noUnwrap,
	}
}

func (o *options) collapseOptions() collapse.Options {
	return collapse.Options{
		ConfigKey:  o.collapseKeys.ConfigKey,
		KeysKey:    o.collapseKeys.KeysKey,
		DefaultKey: o.collapseKeys.DefaultKey,
		UserKey:    o.userKey,
		Inherited:  scope.New(o.inherited),
		Strict:     !o.lenient,
	}
}

// Filter prunes content nodes above the target verbosity or failing the tag
// rules and returns the filtered document, nil when the root was pruned.
func Filter(doc any, opts ...Option) (any, error) {
	o := newOptions(opts)

	r, err := filter.Compound(doc, o.target, o.rules(), o.filterOptions())
	if err != nil {
		return nil, err
	}

	return r.Doc, nil
}

// FilterVerbosity prunes content nodes whose verbosity exceeds target.
// Tag options are ignored.
func FilterVerbosity(doc any, target float64, opts ...Option) (any, error) {
	o := newOptions(opts)

	r, err := filter.ByVerbosity(doc, target, o.filterOptions())
	if err != nil {
		return nil, err
	}

	return r.Doc, nil
}

// FilterTags prunes content nodes failing the tag rules. The target
// verbosity is ignored.
func FilterTags(doc any, opts ...Option) (any, error) {
	o := newOptions(opts)

	r, err := filter.ByTags(doc, o.rules(), o.filterOptions())
	if err != nil {
		return nil, err
	}

	return r.Doc, nil
}

// Collapse resolves every multi-variant mapping to the selected variant.
func Collapse(doc any, opts ...Option) (any, error) {
	return collapse.Keys(doc, newOptions(opts).collapseOptions())
}

// Unwrap replaces content nodes by their content and drops the filter
// configuration without filtering anything.
func Unwrap(doc any, opts ...Option) (any, error) {
	o := newOptions(opts)

	return unwrap.Content(doc, o.keys.ConfigKey, o.keys.ContentKey, scope.New(o.inherited))
}

// Process decodes data, collapses and filters every document of the stream
// and encodes the result in the same format.
func Process(ctx context.Context, data []byte, opts ...Option) ([]byte, error) {
	o := newOptions(opts)

	c, err := codec.Default().Lookup(o.format)
	if err != nil {
		return nil, err
	}

	docs, err := c.Decode(data)
	if err != nil {
		return nil, err
	}

	var stages []pipeline.Stage

	if !o.skipCollapse {
		stages = append(stages, &pipeline.CollapseStage{Options: o.collapseOptions()})
	}

	if !o.skipFilter {
		stages = append(stages, &pipeline.FilterStage{
			Target:  o.target,
			Rules:   o.rules(),
			Options: o.filterOptions(),
		})
	}

	chain := pipeline.NewChain(stages...)
	ctx = logging.NewContext(ctx, o.logger)

	out := make([]any, 0, len(docs))

	for i, doc := range docs {
		r, err := chain.Apply(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i+1, err)
		}

		out = append(out, r.Doc)
	}

	return c.Encode(out)
}
