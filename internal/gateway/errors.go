package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// Code is the machine-readable category of a gateway failure.
type Code string

// Error codes. Status-derived codes come from the HTTP response; transport
// codes come from the dial or read failure; MalformedResponse means the
// body did not have the expected shape.
const (
	CodeInvalidRequest     Code = "invalid_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeMethodNotSupported Code = "method_not_supported"
	CodeValidationFailed   Code = "validation_failed"
	CodeServerFault        Code = "server_fault"
	CodeConnectionRefused  Code = "connection_refused"
	CodeTimeout            Code = "timeout"
	CodeNetworkUnreachable Code = "network_unreachable"
	CodeUnknown            Code = "unknown"
	CodeMalformedResponse  Code = "malformed_response"
)

var defaultMessages = map[Code]string{
	CodeInvalidRequest:     "Invalid request",
	CodeUnauthorized:       "Unauthorized",
	CodeForbidden:          "Access forbidden",
	CodeNotFound:           "Resource not found",
	CodeMethodNotSupported: "Method not supported",
	CodeValidationFailed:   "Validation failed",
	CodeServerFault:        "Server error, please try again later",
	CodeConnectionRefused:  "Cannot connect to server",
	CodeTimeout:            "Request timed out",
	CodeNetworkUnreachable: "Network unreachable",
	CodeUnknown:            "Unexpected error",
	CodeMalformedResponse:  "Malformed response from server",
}

// Error is the single error shape returned by every gateway operation.
// Success is always false; it mirrors the server's error envelope so an
// Error can be rendered or re-encoded as-is.
type Error struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    Code              `json:"error_code"`
	Fields  map[string]string `json:"errors,omitempty"`

	// Status is the HTTP status, or 0 for local and transport failures.
	Status int `json:"-"`

	// Op is the request that failed, e.g. "GET /api/todos".
	Op string `json:"-"`

	Err error `json:"-"`
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	fmt.Fprintf(&b, " (%s)", e.Code)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying transport or decoding error.
func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a gateway Error from err's chain.
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// IsCode reports whether err (or any error in its chain) is a gateway
// Error with the given code.
func IsCode(err error, code Code) bool {
	gwErr, ok := AsError(err)
	return ok && gwErr.Code == code
}

// Message returns the human-readable message for err, preferring the
// gateway message when err is a gateway Error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if gwErr, ok := AsError(err); ok {
		return gwErr.Message
	}
	return err.Error()
}

// InvalidRequestError builds the error returned when a payload fails a
// local precondition before any request is sent.
func InvalidRequestError(message string, fields map[string]string) *Error {
	return newError(CodeInvalidRequest, message, fields)
}

func newError(code Code, message string, fields map[string]string) *Error {
	if message == "" {
		message = defaultMessages[code]
	}
	return &Error{
		Success: false,
		Message: message,
		Code:    code,
		Fields:  fields,
	}
}

// codeForStatus maps a non-2xx HTTP status to an error code.
func codeForStatus(status int) Code {
	switch {
	case status == http.StatusBadRequest:
		return CodeInvalidRequest
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusMethodNotAllowed:
		return CodeMethodNotSupported
	case status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return CodeValidationFailed
	case status >= 500:
		return CodeServerFault
	default:
		return CodeUnknown
	}
}

// transportError classifies a failure from http.Client.Do.
func transportError(op string, err error) *Error {
	code := CodeUnknown

	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = CodeTimeout
	case errors.Is(err, syscall.ECONNREFUSED):
		code = CodeConnectionRefused
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		code = CodeNetworkUnreachable
	case errors.As(err, &dnsErr):
		code = CodeNetworkUnreachable
	case errors.As(err, &netErr) && netErr.Timeout():
		code = CodeTimeout
	}

	e := newError(code, "", nil)
	e.Op = op
	e.Err = err
	return e
}

// errorEnvelope is the error body written by the API server. Detail covers
// servers that answer with {"detail": "..."} or a list of field issues.
type errorEnvelope struct {
	Message   string            `json:"message"`
	ErrorCode string            `json:"error_code"`
	Errors    map[string]string `json:"errors"`
	Detail    json.RawMessage   `json:"detail"`
}

type detailIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// statusError builds the error for a non-2xx response, lifting the message
// and field map out of the body when it has one.
func statusError(op string, status int, body []byte) *Error {
	code := codeForStatus(status)
	e := newError(code, "", nil)
	e.Op = op
	e.Status = status

	var env errorEnvelope
	if len(body) == 0 || json.Unmarshal(body, &env) != nil {
		return e
	}

	if env.Message != "" {
		e.Message = env.Message
	}
	if len(env.Errors) > 0 {
		e.Fields = env.Errors
	}

	if len(env.Detail) > 0 {
		var detail string
		var issues []detailIssue
		switch {
		case json.Unmarshal(env.Detail, &detail) == nil && detail != "":
			if env.Message == "" {
				e.Message = detail
			}
		case json.Unmarshal(env.Detail, &issues) == nil && len(issues) > 0:
			if e.Fields == nil {
				e.Fields = make(map[string]string, len(issues))
			}
			for _, issue := range issues {
				e.Fields[issueField(issue.Loc)] = issue.Msg
			}
		}
	}

	return e
}

func issueField(loc []any) string {
	if len(loc) == 0 {
		return "_"
	}
	return fmt.Sprint(loc[len(loc)-1])
}

func malformedError(op string, err error) *Error {
	e := newError(CodeMalformedResponse, "", nil)
	e.Op = op
	e.Err = err
	return e
}
