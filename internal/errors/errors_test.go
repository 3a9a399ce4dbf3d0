package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	base := errors.New("disk full")
	cases := []struct {
		name string
		err  Error
		want string
	}{
		{"MessageAndCause", New(CodeStorageFailed, "save filter", base), "save filter: disk full"},
		{"MessageOnly", New(CodeNotFound, "filter \"x\" not found", nil), "filter \"x\" not found"},
		{"CauseOnly", New(CodeStorageFailed, "", base), "disk full"},
		{"CodeOnly", New(CodeInvalidSchema, "", nil), "invalid_schema"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Errorf("expected '%s', got '%s'", tc.want, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	t.Run("Wrapped", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeParseFailed, "bad query", nil))
		if CodeOf(err) != CodeParseFailed {
			t.Errorf("expected parse_failed, got %s", CodeOf(err))
		}
		if !IsCode(err, CodeParseFailed) {
			t.Error("expected IsCode to match")
		}
	})

	t.Run("Plain", func(t *testing.T) {
		if CodeOf(errors.New("x")) != CodeUnknown {
			t.Error("expected unknown for plain errors")
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		base := errors.New("boom")
		if !errors.Is(New(CodeStorageFailed, "x", base), base) {
			t.Error("expected cause to be reachable")
		}
	})
}
