package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/sitevault/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "parse_failure_error",
			code:    errors.ErrParseFailure,
			message: "file could not be loaded",
			wantStr: "[PARSE_FAILURE] file could not be loaded",
		},
		{
			name:    "invalid_site_error",
			code:    errors.ErrInvalidSite,
			message: "missing host",
			wantStr: "[INVALID_SITE] missing host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}

			if err.Message != tt.message {
				t.Errorf("New() message = %q, want %q", err.Message, tt.message)
			}

			if err.Details == nil {
				t.Error("New() details should be initialized")
			}

			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	inner := stderrors.New("disk full")
	err := errors.Wrap(inner, errors.ErrWriteFailure, "failed to write xml file")

	if !stderrors.Is(err, inner) {
		t.Error("Wrap() should preserve the wrapped error for errors.Is")
	}

	want := "[WRITE_FAILURE] failed to write xml file: disk full"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if errors.Wrap(nil, errors.ErrWriteFailure, "ignored") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestIsByCode(t *testing.T) {
	err := errors.Newf(errors.ErrForeignRoot, "unknown root element %q", "Settings")
	wrapped := fmt.Errorf("loading store: %w", err)

	if !stderrors.Is(wrapped, errors.New(errors.ErrForeignRoot, "")) {
		t.Error("errors.Is should match by code through wrapping")
	}

	if stderrors.Is(wrapped, errors.New(errors.ErrParseFailure, "")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestIsErrorCode(t *testing.T) {
	err := errors.New(errors.ErrBackupCreate, "failed to create backup copy")
	wrapped := fmt.Errorf("save: %w", err)

	if !errors.IsErrorCode(wrapped, errors.ErrBackupCreate) {
		t.Error("IsErrorCode should find the code through wrapping")
	}

	if errors.IsErrorCode(wrapped, errors.ErrWriteFailure) {
		t.Error("IsErrorCode should not match a different code")
	}

	if errors.IsErrorCode(stderrors.New("plain"), errors.ErrBackupCreate) {
		t.Error("IsErrorCode should be false for plain errors")
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := errors.GetErrorCode(errors.New(errors.ErrPathUnbound, "no path")); got != errors.ErrPathUnbound {
		t.Errorf("GetErrorCode() = %v, want %v", got, errors.ErrPathUnbound)
	}

	if got := errors.GetErrorCode(stderrors.New("plain")); got != errors.ErrUnknown {
		t.Errorf("GetErrorCode() = %v, want %v", got, errors.ErrUnknown)
	}
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrParseFailure, "bad xml").
		WithDetail("path", "/tmp/sites.xml").
		WithDetail("line", 14)

	if err.Details["path"] != "/tmp/sites.xml" {
		t.Errorf("Details[path] = %v, want /tmp/sites.xml", err.Details["path"])
	}
	if err.Details["line"] != 14 {
		t.Errorf("Details[line] = %v, want 14", err.Details["line"])
	}
}
