// Package cli holds the pieces shared by the command entry points: the
// interactive prompt and the single place where errors become exit codes.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fitsync/fitsync/client/garmin"
	"github.com/fitsync/fitsync/internal/config"
)

// ErrCancelled is returned when the operator declines a confirmation.
var ErrCancelled = errors.New("cancelled by operator")

// Prompter asks yes/no questions on a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm prints "question (yes/no): " and reports whether the answer was
// "yes" or "y", ignoring case and surrounding space. End of input is a no.
func (p *Prompter) Confirm(question string) (bool, error) {
	if _, err := fmt.Fprintf(p.out, "%s (yes/no): ", question); err != nil {
		return false, err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}

// Handler maps errors returned by a command to operator-facing messages.
type Handler struct {
	// Hint is printed after unexpected errors, e.g. which settings to check.
	Hint string
	// Cancelled is printed when the command returns ErrCancelled.
	Cancelled string
	// Expected errors are printed as-is without the hint.
	Expected []error
}

// Report writes the message for err to w and returns the exit code.
func (h Handler) Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, ErrCancelled):
		msg := h.Cancelled
		if msg == "" {
			msg = "Cancelled."
		}
		fmt.Fprintln(w, msg)
		return 0
	case errors.Is(err, config.ErrInvalid):
		fmt.Fprintf(w, "Error: configuration: %v\n", err)
		return 1
	case garmin.IsAuthenticationError(err):
		fmt.Fprintf(w, "Error: authentication failed: %v\n", err)
		return 1
	}

	for _, target := range h.Expected {
		if errors.Is(err, target) {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 1
		}
	}

	log.Debug().Stack().Err(err).Msg("unexpected error")
	fmt.Fprintf(w, "\nError: %v\n", err)
	if h.Hint != "" {
		fmt.Fprintln(w, h.Hint)
	}
	return 1
}
