package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/docsift/internal/codec"
	"github.com/hupe1980/docsift/internal/logging"
	"github.com/hupe1980/docsift/internal/output"
	"github.com/hupe1980/docsift/internal/pipeline"
)

// processor runs a stage chain over every document of an input stream.
type processor struct {
	io       ioOptions
	chain    *pipeline.Chain
	registry *codec.Registry
}

// processed is the outcome of one processor run.
type processed struct {
	data   []byte
	docs   []any
	pruned int
}

func newProcessor(opts ioOptions, stages ...pipeline.Stage) *processor {
	return &processor{
		io:       opts,
		chain:    pipeline.NewChain(stages...),
		registry: codec.Default(),
	}
}

// codecs resolves the input and output codecs for the given input path.
func (p *processor) codecs(input string) (in, out codec.Codec, err error) {
	inName := p.io.inputFormat
	if inName == "" {
		inName = codec.Detect(input)
	}

	outName := p.io.outputFormat
	if outName == "" {
		outName = inName
		if p.io.output != "" && p.io.output != output.StdioPath {
			outName = codec.Detect(p.io.output)
		}
	}

	if in, err = p.registry.Lookup(inName); err != nil {
		return nil, nil, &ExitError{Code: ExitUsage, Err: err}
	}

	if out, err = p.registry.Lookup(outName); err != nil {
		return nil, nil, &ExitError{Code: ExitUsage, Err: err}
	}

	return in, out, nil
}

// transform reads input, runs the chain over each document and encodes
// the results.
func (p *processor) transform(ctx context.Context, input string, stdin io.Reader) (*processed, error) {
	ctx = logging.With(ctx, slog.String("input", input))
	logger := logging.FromContext(ctx)

	in, out, err := p.codecs(input)
	if err != nil {
		return nil, err
	}

	data, err := output.ReadInput(input, stdin)
	if err != nil {
		return nil, err
	}

	docs, err := in.Decode(data)
	if err != nil {
		return nil, &ExitError{Code: ExitDocument, Err: err}
	}

	result := &processed{docs: make([]any, 0, len(docs))}

	for i, doc := range docs {
		r, err := p.chain.Apply(ctx, doc)
		if err != nil {
			return nil, engineError(fmt.Errorf("document %d: %w", i+1, err))
		}

		result.docs = append(result.docs, r.Doc)
		result.pruned += r.Pruned
	}

	logger.Debug("documents processed",
		slog.Int("documents", len(docs)),
		slog.Int("pruned", result.pruned),
	)

	result.data, err = out.Encode(result.docs)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// run transforms input and writes the result to the configured output.
func (p *processor) run(cmd *cobra.Command, input string) error {
	ctx := cmd.Context()

	result, err := p.transform(ctx, input, cmd.InOrStdin())
	if err != nil {
		return err
	}

	w := output.New(p.io.output, cmd.OutOrStdout(), output.WithLogger(logging.FromContext(ctx)))
	if err := w.Write(result.data); err != nil {
		return err
	}

	if fw, ok := w.(*output.FileWriter); ok {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Written to %s\n", fw.Path())
	}

	return nil
}

// inputArg returns the input path given on the command line, "-" when
// omitted.
func inputArg(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return output.StdioPath
	}

	return args[0]
}
