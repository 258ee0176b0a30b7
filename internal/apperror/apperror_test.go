package apperror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  &Error{Code: "test_error", Message: "Test error message"},
			want: "Test error message",
		},
		{
			name: "with path",
			err:  &Error{Code: "test_error", Message: "bad file", Path: "in/a.jpg"},
			want: "in/a.jpg: bad file",
		},
		{
			name: "with path and internal",
			err:  &Error{Code: "test_error", Message: "bad file", Path: "in/a.jpg", Internal: errors.New("eof")},
			want: "in/a.jpg: bad file: eof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	err := &Error{
		Code:     "wrapped_error",
		Message:  "Wrapped error",
		Internal: innerErr,
	}

	if got := err.Unwrap(); got != innerErr {
		t.Errorf("Unwrap() = %v, want %v", got, innerErr)
	}
}

func TestWrap(t *testing.T) {
	innerErr := errors.New("disk full")
	wrapped := Wrap(innerErr, ErrWriteFailed)

	if wrapped.Code != ErrWriteFailed.Code {
		t.Errorf("Code = %q, want %q", wrapped.Code, ErrWriteFailed.Code)
	}
	if wrapped.Kind != KindEncode {
		t.Errorf("Kind = %q, want %q", wrapped.Kind, KindEncode)
	}
	if !errors.Is(wrapped, innerErr) {
		t.Error("errors.Is should return true for wrapped inner error")
	}
}

func TestWrapPath(t *testing.T) {
	wrapped := WrapPath(errors.New("eof"), ErrCorrupted, "stories/a.jpg")

	if wrapped.Path != "stories/a.jpg" {
		t.Errorf("Path = %q, want stories/a.jpg", wrapped.Path)
	}
	if !strings.Contains(wrapped.Error(), "stories/a.jpg") {
		t.Errorf("Error() = %q, want path included", wrapped.Error())
	}
	if ErrCorrupted.Path != "" {
		t.Error("WrapPath must not mutate the sentinel")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"configuration", Configuration(nil, "bad scale"), KindConfiguration},
		{"decode", Decode(errors.New("x"), "a"), KindDecode},
		{"encode", Encode(errors.New("x"), "a"), KindEncode},
		{"wrapped with fmt", fmt.Errorf("render: %w", Decode(errors.New("x"), "a")), KindDecode},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsConfiguration(t *testing.T) {
	if IsConfiguration(nil) {
		t.Error("nil must not be a configuration error")
	}
	if !IsConfiguration(WrapPath(errors.New("stat"), ErrLogoMissing, "logo.png")) {
		t.Error("logo missing should be a configuration error")
	}
	if IsConfiguration(Decode(errors.New("x"), "a")) {
		t.Error("decode error should not be a configuration error")
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("publish: %w", Wrap(errors.New("403"), ErrPublishFailed))

	if !Is(err, ErrPublishFailed) {
		t.Error("Is should match by code through wrapping")
	}
	if Is(err, ErrWriteFailed) {
		t.Error("Is should not match a different code")
	}
	if Is(errors.New("plain"), ErrPublishFailed) {
		t.Error("Is should not match a plain error")
	}
}

func TestCode(t *testing.T) {
	if got := Code(Wrap(nil, ErrTranscodeFailed)); got != "transcode_failed" {
		t.Errorf("Code() = %q, want transcode_failed", got)
	}
	if got := Code(errors.New("plain")); got != ErrInternal.Code {
		t.Errorf("Code() = %q, want %q", got, ErrInternal.Code)
	}
}
