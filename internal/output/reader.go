package output

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// StdioPath is the path naming stdin for input and stdout for output.
const StdioPath = "-"

// maxInputSize caps how much is read from a single input.
const maxInputSize = 64 << 20

// ErrInputTooLarge is returned when an input exceeds the size limit.
var ErrInputTooLarge = errors.New("input too large")

// ReadInput reads the document at path, or all of stdin when path is "-".
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	if path == StdioPath {
		if stdin == nil {
			stdin = os.Stdin
		}

		return readLimited(stdin, "stdin")
	}

	f, err := os.Open(path) //nolint:gosec // path is user-provided input
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	return readLimited(f, path)
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	if len(data) > maxInputSize {
		return nil, fmt.Errorf("reading %s: %w (limit %d bytes)", name, ErrInputTooLarge, maxInputSize)
	}

	return data, nil
}
