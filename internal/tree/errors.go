package tree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error kinds. Every *Error unwraps to exactly one of them, so callers can
// classify failures with errors.Is.
var (
	// ErrConfig reports an invalid engine configuration: an unknown tag
	// mode, or a selection key outside the declared collapsible set.
	ErrConfig = errors.New("configuration error")

	// ErrMalformed reports a document that violates a structural rule,
	// such as a mapping mixing collapsible and regular keys.
	ErrMalformed = errors.New("malformed document")

	// ErrMissingValue reports a collapsible mapping that has neither the
	// selected nor the default key.
	ErrMissingValue = errors.New("missing value")

	// ErrTooDeep reports a document nested deeper than MaxDepth.
	ErrTooDeep = errors.New("document too deep")

	// ErrTooLarge reports a document whose aliases expand to far more
	// nodes than the source holds.
	ErrTooLarge = errors.New("document too large")
)

// MaxDepth bounds the recursion of every pass. Documents nested deeper are
// rejected with ErrTooDeep rather than exhausting the stack.
const MaxDepth = 10000

// Error is a pass failure located inside a document.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Msg describes the failure.
	Msg string

	// rev holds the path segments innermost first, as they are recorded
	// while the error unwinds the recursion.
	rev []any
}

// Errorf creates an *Error of the given kind at the current node.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, FormatPath(e.Path()), e.Msg)
}

// Path returns the keys (string) and sequence indices (int) leading from
// the document root to the failing node, outermost first.
func (e *Error) Path() []any {
	path := make([]any, len(e.rev))
	for i, seg := range e.rev {
		path[len(e.rev)-1-i] = seg
	}

	return path
}

func (e *Error) Unwrap() error { return e.Kind }

// AtKey records that err happened below the mapping key k. Errors that are
// not an *Error are returned unchanged.
func AtKey(err error, k string) error {
	return record(err, k)
}

// AtIndex records that err happened below sequence index i.
func AtIndex(err error, i int) error {
	return record(err, i)
}

func record(err error, seg any) error {
	var te *Error
	if !errors.As(err, &te) {
		return err
	}

	te.rev = append(te.rev, seg)

	return err
}

// CheckDepth returns an ErrTooDeep error once depth exceeds MaxDepth.
func CheckDepth(depth int) error {
	if depth > MaxDepth {
		return Errorf(ErrTooDeep, "nesting exceeds %d levels", MaxDepth)
	}

	return nil
}

// FormatPath renders a path as "$.key[0].other".
func FormatPath(path []any) string {
	var b strings.Builder

	b.WriteString("$")

	for _, seg := range path {
		switch s := seg.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(s) + "]")
		default:
			b.WriteString("." + fmt.Sprint(s))
		}
	}

	return b.String()
}
