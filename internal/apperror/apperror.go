package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how far it is allowed to propagate.
type Kind string

const (
	// KindConfiguration aborts the whole run.
	KindConfiguration Kind = "configuration"
	// KindDecode and KindEncode are reported per file.
	KindDecode   Kind = "decode"
	KindEncode   Kind = "encode"
	KindInternal Kind = "internal"
)

type Error struct {
	Kind     Kind
	Code     string
	Message  string
	Path     string
	Internal error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", msg, e.Internal)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Internal
}

var (
	ErrLogoMissing = &Error{
		Kind:    KindConfiguration,
		Code:    "logo_missing",
		Message: "logo file not found",
	}

	ErrLogoInvalid = &Error{
		Kind:    KindConfiguration,
		Code:    "logo_invalid",
		Message: "logo file could not be decoded",
	}

	ErrInvalidPolicy = &Error{
		Kind:    KindConfiguration,
		Code:    "invalid_policy",
		Message: "invalid overlay policy",
	}

	ErrInvalidConfig = &Error{
		Kind:    KindConfiguration,
		Code:    "invalid_config",
		Message: "invalid configuration",
	}

	ErrUnreadable = &Error{
		Kind:    KindDecode,
		Code:    "unreadable",
		Message: "file could not be opened",
	}

	ErrCorrupted = &Error{
		Kind:    KindDecode,
		Code:    "corrupted",
		Message: "file appears corrupted",
	}

	ErrVideoProbe = &Error{
		Kind:    KindDecode,
		Code:    "video_probe_failed",
		Message: "video could not be probed",
	}

	ErrWriteFailed = &Error{
		Kind:    KindEncode,
		Code:    "write_failed",
		Message: "output could not be written",
	}

	ErrTranscodeFailed = &Error{
		Kind:    KindEncode,
		Code:    "transcode_failed",
		Message: "video re-encode failed",
	}

	ErrPublishFailed = &Error{
		Kind:    KindEncode,
		Code:    "publish_failed",
		Message: "output could not be published",
	}

	ErrCancelled = &Error{
		Kind:    KindInternal,
		Code:    "cancelled",
		Message: "cancelled before processing",
	}

	ErrInternal = &Error{
		Kind:    KindInternal,
		Code:    "internal_error",
		Message: "unexpected error",
	}
)

func Wrap(err error, appErr *Error) *Error {
	return &Error{
		Kind:     appErr.Kind,
		Code:     appErr.Code,
		Message:  appErr.Message,
		Internal: err,
	}
}

// WrapPath is Wrap with the offending file attached.
func WrapPath(err error, appErr *Error, path string) *Error {
	e := Wrap(err, appErr)
	e.Path = path
	return e
}

func Configuration(err error, message string) *Error {
	return &Error{Kind: KindConfiguration, Code: ErrInvalidConfig.Code, Message: message, Internal: err}
}

func Decode(err error, path string) *Error {
	return WrapPath(err, ErrCorrupted, path)
}

func Encode(err error, path string) *Error {
	return WrapPath(err, ErrWriteFailed, path)
}

func Is(err error, target *Error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsConfiguration(err error) bool {
	return err != nil && KindOf(err) == KindConfiguration
}

func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal.Code
}
