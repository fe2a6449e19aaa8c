package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindAuth
	KindForbidden
	KindValidation
	KindNotFound
	KindConflict
	KindUpstream
)

const (
	msgInternal   = "Internal server error"
	msgAuth       = "Unauthorized"
	msgForbidden  = "Forbidden"
	msgValidation = "Bad request"
	msgNotFound   = "Not found"
	msgConflict   = "Conflict"
	msgUpstream   = "Upstream service error"
)

// Error mang theo loại lỗi và thông điệp trả về client.
// cause không bao giờ được trả ra ngoài.
type Error struct {
	Kind           Kind
	Message        string
	UpstreamStatus int
	cause          error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Status ánh xạ loại lỗi sang HTTP status, lỗi upstream trả 500
func (e *Error) Status() int {
	switch e.Kind {
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func orDefault(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindAuth, Message: orDefault(msg, msgAuth)}
}

func UnauthorizedWrap(msg string, cause error) *Error {
	return &Error{Kind: KindAuth, Message: orDefault(msg, msgAuth), cause: cause}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: orDefault(msg, msgForbidden)}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: orDefault(msg, msgValidation)}
}

func ValidationWrap(msg string, cause error) *Error {
	return &Error{Kind: KindValidation, Message: orDefault(msg, msgValidation), cause: cause}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: orDefault(msg, msgNotFound)}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: orDefault(msg, msgConflict)}
}

// Upstream giữ nguyên status và body của dịch vụ bên thứ ba trong message
func Upstream(service string, status int, body string) *Error {
	return &Error{
		Kind:           KindUpstream,
		Message:        fmt.Sprintf("%s error (%d): %s", service, status, body),
		UpstreamStatus: status,
	}
}

func UpstreamWrap(msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, Message: orDefault(msg, msgUpstream), cause: cause}
}

// Internal giấu cause sau một thông điệp chung
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: msgInternal, cause: cause}
}

// From trả err dạng *Error, lỗi lạ được bọc thành internal
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
