package apierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load quiz: %w", Wrap(CodeNotFound, errors.New("record not found"), "quiz"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound match")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unexpected ErrUnauthorized match")
	}
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("CodeOf=%q", CodeOf(err))
	}
	if MessageOf(err) != "quiz" {
		t.Fatalf("MessageOf=%q", MessageOf(err))
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if CodeOf(errors.New("boom")) != CodeInternal {
		t.Fatalf("plain error should be internal")
	}
	if CodeOf(nil) != "" {
		t.Fatalf("nil should have no code")
	}
}

func TestFatalCodes(t *testing.T) {
	fatal := map[Code]bool{
		CodeUnauthorized:       true,
		CodeUpstreamFailure:    true,
		CodeConfiguration:      true,
		CodeNotFound:           false,
		CodeInvalidArgument:    false,
		CodePreconditionFailed: false,
		CodeInternal:           false,
	}
	for code, want := range fatal {
		if code.Fatal() != want {
			t.Fatalf("%s: Fatal()=%v", code, !want)
		}
	}
}
