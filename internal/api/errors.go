package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a failed call by where it went wrong.
type Kind int

const (
	KindOther Kind = iota
	// KindNetwork means no response was received.
	KindNetwork
	// KindAuth covers 401 and 403 responses.
	KindAuth
	// KindValidation covers 400 responses.
	KindValidation
	KindNotFound
	// KindServer covers 5xx responses.
	KindServer
	// KindAmbiguous means a 2xx body matched none of the expected shapes.
	KindAmbiguous
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindServer:
		return "server"
	case KindAmbiguous:
		return "ambiguous"
	default:
		return "other"
	}
}

// Error is returned for every failed API call.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 when no response was received
	Message string // server-supplied message, if any
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("api ")
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of an API error, or KindOther for anything else.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindOther
}

// IsAuth reports whether err is a 401/403 from the backend.
func IsAuth(err error) bool { return KindOf(err) == KindAuth }

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindOther
	}
}

// Describe turns a failed action into the text shown to the user, e.g.
// Describe("create group", err) -> "Failed to create group. Invalid data provided."
func Describe(action string, err error) string {
	return fmt.Sprintf("Failed to %s. %s", action, Reason(err))
}

// Reason is the human-readable part of Describe.
func Reason(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if err == nil {
			return "Unknown error occurred."
		}
		return sentence(err.Error())
	}

	switch apiErr.Kind {
	case KindNetwork:
		return "Cannot connect to server. Make sure the backend is running."
	case KindAuth:
		if apiErr.Status == http.StatusForbidden && apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Status == http.StatusForbidden {
			return "You do not have permission to do this."
		}
		return "You are not authenticated. Please log in again."
	case KindValidation:
		return orDefault(apiErr.Message, "Invalid data provided.")
	case KindNotFound:
		return orDefault(apiErr.Message, "Not found.")
	case KindServer:
		return orDefault(apiErr.Message, fmt.Sprintf("Server error (%d).", apiErr.Status))
	case KindAmbiguous:
		return "Unexpected response from server."
	default:
		return orDefault(apiErr.Message, "Please try again.")
	}
}

// sentence capitalizes s and ends it with a period.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
