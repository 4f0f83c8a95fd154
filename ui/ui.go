package ui

import (
	"encoding/json"
	"io"
)

// Severity classifies the visual weight of a piece of inline text, mirroring
// the output methods on UI. The print layer maps each value to the
// corresponding terminal style; data consumers (JSON, tests) see plain text.
type Severity uint8

const (
	SeverityInfo    Severity = iota // plain, no colour emphasis
	SeveritySuccess                 // green, positive outcome
	SeverityWarn                    // yellow, uncertain / needs attention
	SeverityError                   // red, failure
)

// StyledText pairs a plain string with a Severity annotation.
//
// JSON serialization: the struct marshals as just the plain Text string so
// consumers receive clean output with no ANSI codes and no extra structure.
//
// Terminal rendering: pass the value to [UI.Style] to obtain the
// appropriately coloured string for embedding in a format call:
//
//	u.Info("Hash: %s", u.Style(h))
type StyledText struct {
	Text     string
	Severity Severity
}

// MarshalJSON serializes StyledText as a plain JSON string (just Text).
func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

// UI provides all terminal output for chainstash commands.
//
// Commands never print directly: production code uses TerminalUI (writes to
// os.Stdout), tests use RecordingUI (captures all output for assertions).
// Everything here is output-only: chainstash commands take their inputs as
// arguments and flags, never interactively.
type UI interface {
	// Style returns the text from t coloured according to its Severity.
	// When colours are disabled (piped output, RecordingUI) the plain text
	// is returned unchanged.
	Style(t StyledText) string

	// Info writes a neutral status line (no prefix, no color).
	Info(format string, args ...any)

	// Success writes a positive outcome in green.
	Success(format string, args ...any)

	// Warn writes a non-fatal warning in yellow.
	Warn(format string, args ...any)

	// Error writes a failure in red.
	// This does NOT exit or return an error; callers decide what to do next.
	Error(format string, args ...any)

	// Section writes a visual separator centred around a title.
	// Example: "===== Resolved metadata ====="
	Section(title string)

	// KeyValue renders an aligned 2-column block (label on the left,
	// value on the right) with all values left-aligned to the same column.
	// Use for compact metadata like Name/Description/Image.
	KeyValue(rows [][2]string)

	// Table renders a full bordered table with a header row followed by data
	// rows. Use when the data is inherently tabular (e.g. a transaction
	// listing).
	Table(headers []string, rows [][]string)

	// TableWithGroups renders a bordered table where each group of rows is
	// visually separated from the next by a horizontal divider line.
	TableWithGroups(headers []string, groups [][][]string)

	// Spinner starts an animated spinner with the given message and returns
	// a stop function. Call the stop function (or defer it) to clear the
	// spinner once the work is done:
	//
	//	stop := u.Spinner("Fetching content...")
	//	defer stop()
	//
	// In RecordingUI and non-terminal contexts the stop function is a no-op.
	Spinner(msg string) func()

	// Indent returns a child UI with indent level increased by one,
	// sharing the same underlying writer as the parent.
	Indent() UI

	// Writer returns an io.Writer that prepends the current indentation
	// to every line, for functions that take io.Writer directly.
	Writer() io.Writer
}
