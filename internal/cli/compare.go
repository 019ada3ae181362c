package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/docsift/internal/codec"
	"github.com/hupe1980/docsift/internal/compare"
	"github.com/hupe1980/docsift/internal/config"
	"github.com/hupe1980/docsift/internal/output"
)

// Compare output formats.
const (
	compareSummary = "summary"
	compareUnified = "unified"
)

type compareOptions struct {
	to          string
	format      string
	inputFormat string
	context     int
}

func newCompareCommand() *cobra.Command {
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare [from|-] --to <file>",
		Short: "Compare two documents structurally",
		Long: `Compare loads two documents and reports how they differ. Mapping key
order is ignored; sequence order is not.

The summary format lists every added, removed and modified value by its
path. The unified format prints a line diff of both documents after
normalising them to YAML.

Exits with code 5 when the documents differ.`,
		Example: `  docsift compare expected.yaml --to actual.yaml
  docsift run cv.yaml -k en | docsift compare --to cv.en.yaml --format unified`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, inputArg(args), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.to, "to", "", "document to compare against (required)")
	f.StringVar(&opts.format, "format", compareSummary, "report format: summary, unified")
	f.StringVar(&opts.inputFormat, "input-format", "", "input format of both documents (default: from file extension)")
	f.IntVar(&opts.context, "context", 3, "lines of context in unified diffs")

	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runCompare(cmd *cobra.Command, from string, opts *compareOptions) error {
	if opts.format != compareSummary && opts.format != compareUnified {
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("invalid format %q: must be one of summary, unified", opts.format)}
	}

	registry := codec.Default()

	fromDoc, err := loadDocument(registry, from, opts.inputFormat, cmd.InOrStdin())
	if err != nil {
		return err
	}

	toDoc, err := loadDocument(registry, opts.to, opts.inputFormat, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg := config.FromContext(cmd.Context())
	w := cmd.OutOrStdout()
	printer := compare.NewPrinter(w, compare.ShouldColor(w, cfg.NoColor))

	result := compare.Documents(fromDoc, toDoc)
	if result.Equal() {
		_, _ = fmt.Fprintln(w, "The contents are identical.")
		return nil
	}

	_, _ = fmt.Fprintln(w, "The contents are different:")

	switch opts.format {
	case compareUnified:
		if err := printUnified(printer, registry, fromDoc, toDoc, from, opts); err != nil {
			return err
		}
	default:
		printer.Summary(result)
	}

	return &ExitError{Code: ExitDifferent}
}

func printUnified(p *compare.Printer, registry *codec.Registry, fromDoc, toDoc any, from string, opts *compareOptions) error {
	yc, err := registry.Lookup(codec.FormatYAML)
	if err != nil {
		return err
	}

	a, err := yc.Encode([]any{fromDoc})
	if err != nil {
		return err
	}

	b, err := yc.Encode([]any{toDoc})
	if err != nil {
		return err
	}

	d, err := compare.Unified(string(a), string(b), compare.DiffOptions{
		FromLabel: from,
		ToLabel:   opts.to,
		Context:   opts.context,
	})
	if err != nil {
		return err
	}

	p.Unified(d)

	return nil
}

// loadDocument reads path and returns its document. A stream of several
// documents is returned as a sequence, an empty one as nil.
func loadDocument(registry *codec.Registry, path, format string, stdin io.Reader) (any, error) {
	if format == "" {
		format = codec.Detect(path)
	}

	c, err := registry.Lookup(format)
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Err: err}
	}

	data, err := output.ReadInput(path, stdin)
	if err != nil {
		return nil, err
	}

	docs, err := c.Decode(data)
	if err != nil {
		return nil, &ExitError{Code: ExitDocument, Err: fmt.Errorf("%s: %w", path, err)}
	}

	switch len(docs) {
	case 0:
		return nil, nil
	case 1:
		return docs[0], nil
	default:
		return docs, nil
	}
}
