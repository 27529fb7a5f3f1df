package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestBuilder(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := WrapError(cause, CategoryFileSystem, "write retry queue").
		WithContext("path", ".github/scripts/.zenn-retry-queue.json").
		WithHint("check the workspace permissions").
		Build()

	if err.Category() != CategoryFileSystem {
		t.Errorf("category = %s", err.Category())
	}
	if err.Severity() != SeverityError {
		t.Errorf("severity = %s", err.Severity())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected error to wrap its cause")
	}
	if got := err.Context()["path"]; got != ".github/scripts/.zenn-retry-queue.json" {
		t.Errorf("context path = %v", got)
	}
	if err.Hint() == "" {
		t.Error("expected hint")
	}
	if got := err.Error(); got != "[filesystem] write retry queue: permission denied" {
		t.Errorf("Error() = %q", got)
	}
}

func TestBuilder_BuildCopies(t *testing.T) {
	b := NewError(CategoryConfig, "bad")
	first := b.Build()
	second := b.Fatal().Build()
	if first.IsFatal() {
		t.Error("earlier Build result changed")
	}
	if !second.IsFatal() {
		t.Error("expected fatal")
	}
}

func TestHasCategory(t *testing.T) {
	wrapped := fmt.Errorf("verify: %w", FileSystemError("write").Build())
	if !HasCategory(wrapped, CategoryFileSystem) {
		t.Error("expected wrapped error to keep its category")
	}
	if HasCategory(stderrors.New("plain"), CategoryInternal) {
		t.Error("plain errors have no category")
	}
	if !ConfigError("x").Build().IsFatal() || !LockedError("x").Build().IsFatal() {
		t.Error("config and lock errors are fatal")
	}
}

func TestCategoryExitCode(t *testing.T) {
	codes := map[ErrorCategory]int{
		CategoryValidation: 1,
		CategoryConfig:     2,
		CategoryLocked:     3,
		CategoryNetwork:    8,
		CategoryGit:        8,
		CategoryInternal:   10,
		CategoryFileSystem: 11,
		CategoryNotFound:   11,
		ErrorCategory("x"): 1,
	}
	for c, want := range codes {
		if got := c.ExitCode(); got != want {
			t.Errorf("%s.ExitCode() = %d, want %d", c, got, want)
		}
	}
}
