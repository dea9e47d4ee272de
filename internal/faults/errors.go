package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat marks malformed timestamps and header or cell lines.
	ErrFormat = errors.New("format error")
	// ErrStructure marks documents whose shape is invalid, such as a cell
	// line before any column header or a write to an undeclared code.
	ErrStructure = errors.New("structural error")
	// ErrMissingMember marks archives without the expected member.
	ErrMissingMember = errors.New("missing archive member")
	// ErrIO marks archive open, lock, and rewrite failures.
	ErrIO = errors.New("i/o error")
)

// Exit statuses follow the BSD sysexits convention.
const (
	exitGeneric = 1
	exitDataErr = 65
	exitNoInput = 66
	exitIOErr   = 74
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker. The marker should be one of the sentinels above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind reports the taxonomy label for err, or "internal" when untagged.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrStructure):
		return "structure"
	case errors.Is(err, ErrMissingMember):
		return "missing_member"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "internal"
	}
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	switch Kind(err) {
	case "":
		return 0
	case "format", "structure":
		return exitDataErr
	case "missing_member":
		return exitNoInput
	case "io":
		return exitIOErr
	default:
		return exitGeneric
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
