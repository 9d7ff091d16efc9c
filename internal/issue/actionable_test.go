// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{"operation only", &ActionableError{Operation: "write archive"}, "failed to write archive"},
		{
			"operation with resource",
			&ActionableError{Operation: "write archive", Resource: "target/mylib.zip"},
			"failed to write archive: target/mylib.zip",
		},
		{
			"operation with cause",
			&ActionableError{Operation: "unpack artifact", Cause: errors.New("zip: not a valid zip file")},
			"failed to unpack artifact: zip: not a valid zip file",
		},
		{
			"full context",
			&ActionableError{Operation: "read source", Resource: "bin/app.exe", Cause: errors.New("permission denied")},
			"failed to read source: bin/app.exe: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := fmt.Errorf("outer: %w", &ActionableError{Operation: "test", Cause: cause})

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	var ae *ActionableError
	if !errors.As(err, &ae) || ae.Operation != "test" {
		t.Error("errors.As should find the ActionableError")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil without a cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name: "suggestions",
			err: &ActionableError{
				Operation:   "load project",
				Resource:    "natpack.cue",
				Suggestions: []string{"Run natpack from the project root", "Check field names"},
			},
			contains: []string{"failed to load project: natpack.cue", "• Run natpack from the project root", "• Check field names"},
		},
		{
			name:     "no chain without verbose",
			err:      &ActionableError{Operation: "parse config", Cause: errors.New("syntax error")},
			contains: []string{"failed to parse config: syntax error"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "nested chain in verbose mode",
			err: &ActionableError{
				Operation: "package",
				Cause:     &ActionableError{Operation: "read source", Cause: errors.New("file not found")},
			},
			verbose:  true,
			contains: []string{"Error chain:", "1. failed to read source: file not found", "2. file not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestErrorContext_Build(t *testing.T) {
	cause := errors.New("boom")
	err := NewErrorContext().
		WithOperation("write archive").
		WithResource("target/x.zip").
		WithSuggestion("one").
		WithSuggestions("two", "three").
		WithIssue(ArchiveWriteFailedId).
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build() returned nil")
	}
	if err.Operation != "write archive" || err.Resource != "target/x.zip" {
		t.Errorf("unexpected context: %+v", err)
	}
	if len(err.Suggestions) != 3 || !err.HasSuggestions() {
		t.Errorf("Suggestions = %v", err.Suggestions)
	}
	if err.Issue != ArchiveWriteFailedId || !errors.Is(err, cause) {
		t.Errorf("issue %d cause %v", err.Issue, err.Cause)
	}

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without an operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without an operation should return a nil interface")
	}
}

func TestWrapHelpers(t *testing.T) {
	if WrapWithOperation(nil, "x") != nil || WrapWithContext(nil, "x", "y") != nil {
		t.Error("wrapping nil must yield nil")
	}
	cause := errors.New("c")
	if got := WrapWithContext(cause, "op", "res").Error(); got != "failed to op: res: c" {
		t.Errorf("WrapWithContext = %q", got)
	}
	if got := WrapWithOperation(cause, "op").Error(); got != "failed to op: c" {
		t.Errorf("WrapWithOperation = %q", got)
	}
	if NewActionableError("op").HasSuggestions() {
		t.Error("a fresh error has no suggestions")
	}
}
