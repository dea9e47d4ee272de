package faults_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"govyu/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := faults.Wrap(faults.ErrIO, "archive", "rewrite", "rename failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, faults.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"archive", "rewrite", "rename failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := faults.Wrap(faults.ErrFormat, "", " ", "", nil)
	if err.Error() != "format error: failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"format", faults.Wrap(faults.ErrFormat, "timestamp", "parse", "bad", nil), 65},
		{"structure", faults.Wrap(faults.ErrStructure, "opf", "decode", "orphan cell", nil), 65},
		{"missing member", faults.Wrap(faults.ErrMissingMember, "archive", "read", "db", nil), 66},
		{"io wrapped twice", fmt.Errorf("save: %w", faults.Wrap(faults.ErrIO, "archive", "lock", "", nil)), 74},
		{"untagged", errors.New("other"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := faults.ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}
